package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgallion1/dofcatalog/internal/catalog"
)

// PublicationListing is one row of the publications index.
type PublicationListing struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	IssueNumber string `json:"issue_number"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	SourceURL   string `json:"source_url"`
	FileCount   int    `json:"file_count"`
}

// ListPublications pages through publications, newest date first.
func (s *Store) ListPublications(ctx context.Context, limit, offset int) ([]PublicationListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, COALESCE(p.dof_date, ''), p.issue_number, p.type, p.status, p.source_url,
		       (SELECT COUNT(*) FROM files f WHERE f.publication_id = p.id)
		FROM publications p
		ORDER BY p.dof_date DESC, p.id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query publications: %w", err)
	}
	defer rows.Close()

	out := []PublicationListing{}
	for rows.Next() {
		var p PublicationListing
		if err := rows.Scan(&p.ID, &p.Date, &p.IssueNumber, &p.Type, &p.Status, &p.SourceURL, &p.FileCount); err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PublicationRows holds the flat result sets of one publication.
type PublicationRows struct {
	Publication  catalog.PublicationRow
	SectionItems []catalog.SectionItemRow
	Entities     []catalog.EntityRow
	Pages        []catalog.PageRecord
}

// PublicationRows fetches everything the assembler needs for one
// publication. Section/item rows are ordered by (seq, page_from); pages are
// fetched only when the publication has a file.
func (s *Store) PublicationRows(ctx context.Context, id int64) (*PublicationRows, error) {
	pub, err := s.publicationHeader(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &PublicationRows{Publication: *pub}

	if out.SectionItems, err = s.sectionItems(ctx, id); err != nil {
		return nil, err
	}
	if out.Entities, err = s.entityRows(ctx, id); err != nil {
		return nil, err
	}
	if pub.File != nil {
		if out.Pages, err = s.pages(ctx, pub.File.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) publicationHeader(ctx context.Context, id int64) (*catalog.PublicationRow, error) {
	var (
		p                    catalog.PublicationRow
		date                 sql.NullString
		fileID, pagesCount   sql.NullInt64
		mime, uri, publicURL sql.NullString
		hasOCR               sql.NullBool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.dof_date, p.issue_number, p.type, p.status, p.source_url,
		       f.id, f.mime, f.pages_count, f.has_ocr, f.storage_uri, f.public_url
		FROM publications p
		LEFT JOIN files f ON f.id = (SELECT MIN(id) FROM files WHERE publication_id = p.id)
		WHERE p.id = ?`, id).
		Scan(&p.ID, &date, &p.IssueNumber, &p.Type, &p.Status, &p.SourceURL,
			&fileID, &mime, &pagesCount, &hasOCR, &uri, &publicURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query publication %d: %w", id, err)
	}
	p.Date = date.String
	if fileID.Valid {
		p.File = &catalog.FileSummary{
			ID:             fileID.Int64,
			Mime:           mime.String,
			PagesCount:     int(pagesCount.Int64),
			HasOCR:         hasOCR.Bool,
			StorageLocator: uri.String,
			PublicURL:      publicURL.String,
		}
	}
	return &p, nil
}

func (s *Store) sectionItems(ctx context.Context, pubID int64) ([]catalog.SectionItemRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.seq, COALESCE(s.page_start, 0), COALESCE(s.page_end, 0),
		       i.id, i.item_type, i.title, i.issuing_entity, i.page_from, i.page_to, i.raw_text,
		       (SELECT sm.summary_text FROM summaries sm
		         WHERE sm.object_type = 'item' AND sm.object_id = i.id
		         ORDER BY sm.created_at DESC, sm.id DESC LIMIT 1)
		FROM sections s
		LEFT JOIN items i ON i.section_id = s.id
		WHERE s.publication_id = ?
		ORDER BY s.seq, i.page_from, s.id, i.id`, pubID)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	var out []catalog.SectionItemRow
	for rows.Next() {
		var (
			r                                  catalog.SectionItemRow
			itemID, pageFrom, pageTo           sql.NullInt64
			itemType, title, issuer, raw, summ sql.NullString
		)
		if err := rows.Scan(&r.SectionID, &r.SectionName, &r.SectionSeq, &r.SectionPageStart, &r.SectionPageEnd,
			&itemID, &itemType, &title, &issuer, &pageFrom, &pageTo, &raw, &summ); err != nil {
			return nil, fmt.Errorf("scan section row: %w", err)
		}
		r.ItemID = nullInt(itemID)
		r.ItemType, r.ItemTitle, r.IssuingEntity, r.RawText = itemType.String, title.String, issuer.String, raw.String
		r.ItemPageFrom, r.ItemPageTo = int(pageFrom.Int64), int(pageTo.Int64)
		r.Summary = nullString(summ)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) entityRows(ctx context.Context, pubID int64) ([]catalog.EntityRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ie.item_id, e.id, e.name, e.type, e.norm_name, ie.span
		FROM item_entities ie
		JOIN entities e ON e.id = ie.entity_id
		WHERE ie.item_id IN (
			SELECT i.id FROM items i
			JOIN sections s ON s.id = i.section_id
			WHERE s.publication_id = ?)
		ORDER BY ie.item_id, ie.id`, pubID)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var out []catalog.EntityRow
	for rows.Next() {
		var r catalog.EntityRow
		if err := rows.Scan(&r.ItemID, &r.EntityID, &r.Name, &r.Type, &r.NormalizedName, &r.EvidenceSpan); err != nil {
			return nil, fmt.Errorf("scan entity row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
