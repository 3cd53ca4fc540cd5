package store

const schema = `
CREATE TABLE IF NOT EXISTS publications (
	id           INTEGER PRIMARY KEY,
	dof_date     TEXT,
	issue_number TEXT NOT NULL DEFAULT '',
	type         TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT '',
	source_url   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS files (
	id             INTEGER PRIMARY KEY,
	publication_id INTEGER NOT NULL REFERENCES publications(id) ON DELETE CASCADE,
	storage_uri    TEXT NOT NULL,
	public_url     TEXT,
	mime           TEXT,
	bytes          INTEGER,
	sha256         TEXT,
	has_ocr        INTEGER NOT NULL DEFAULT 0,
	pages_count    INTEGER
);
CREATE INDEX IF NOT EXISTS idx_files_publication ON files(publication_id);
CREATE INDEX IF NOT EXISTS idx_files_storage_uri ON files(storage_uri);

CREATE TABLE IF NOT EXISTS pages (
	id        INTEGER PRIMARY KEY,
	file_id   INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	page_no   INTEGER NOT NULL,
	text      TEXT NOT NULL DEFAULT '',
	image_uri TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_pages_file ON pages(file_id, page_no);

CREATE TABLE IF NOT EXISTS sections (
	id             INTEGER PRIMARY KEY,
	publication_id INTEGER NOT NULL REFERENCES publications(id) ON DELETE CASCADE,
	name           TEXT NOT NULL DEFAULT '',
	seq            INTEGER NOT NULL DEFAULT 0,
	page_start     INTEGER,
	page_end       INTEGER
);
CREATE INDEX IF NOT EXISTS idx_sections_publication ON sections(publication_id, seq);

CREATE TABLE IF NOT EXISTS items (
	id             INTEGER PRIMARY KEY,
	section_id     INTEGER NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
	item_type      TEXT NOT NULL DEFAULT '',
	title          TEXT NOT NULL DEFAULT '',
	issuing_entity TEXT NOT NULL DEFAULT '',
	page_from      INTEGER,
	page_to        INTEGER,
	raw_text       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_items_section ON items(section_id, page_from);

CREATE TABLE IF NOT EXISTS entities (
	id        INTEGER PRIMARY KEY,
	name      TEXT NOT NULL,
	type      TEXT NOT NULL DEFAULT '',
	norm_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS item_entities (
	id        INTEGER PRIMARY KEY,
	item_id   INTEGER NOT NULL,
	entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
	span      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_item_entities_item ON item_entities(item_id);

CREATE TABLE IF NOT EXISTS summaries (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	object_type  TEXT NOT NULL CHECK (object_type IN ('publication', 'section', 'item')),
	object_id    INTEGER NOT NULL,
	summary_text TEXT NOT NULL,
	model        TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_summaries_object ON summaries(object_type, object_id, created_at);
`
