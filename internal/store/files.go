package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgallion1/dofcatalog/internal/catalog"
)

// FileListing is one row of the latest-files view.
type FileListing struct {
	ID              int64   `json:"id"`
	PublicationID   int64   `json:"publication_id"`
	StorageURI      string  `json:"storage_uri"`
	Mime            *string `json:"mime"`
	Bytes           *int64  `json:"bytes"`
	SHA256          *string `json:"sha256"`
	HasOCR          bool    `json:"has_ocr"`
	PagesCount      *int64  `json:"pages_count"`
	PublicationDate *string `json:"publication_date"`
	PublicationType string  `json:"publication_type"`
	SourceURL       string  `json:"source_url"`
}

// LatestFiles returns up to limit files, newest gazette date first. The
// date comes from the DDMMYYYY- prefix of the file name, falling back to
// the publication's own date; catalog.PublicationDate is the Go rendition
// of the same rule.
func (s *Store) LatestFiles(ctx context.Context, limit int) ([]FileListing, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, latestFilesQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	out := []FileListing{}
	for rows.Next() {
		var (
			f                  FileListing
			mime, sha, pubDate sql.NullString
			size, pages        sql.NullInt64
		)
		if err := rows.Scan(&f.ID, &f.PublicationID, &f.StorageURI, &mime, &size, &sha,
			&f.HasOCR, &pages, &pubDate, &f.PublicationType, &f.SourceURL); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.Mime, f.SHA256 = nullString(mime), nullString(sha)
		f.Bytes, f.PagesCount = nullInt(size), nullInt(pages)
		f.PublicationDate = nullString(pubDate)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return out, nil
}

// latestFilesQuery takes the base name after the last slash (either
// separator) and accepts its DDMMYYYY prefix only when it is a real
// calendar date.
const latestFilesQuery = `
	WITH slashed AS (
		SELECT id, replace(storage_uri, '\', '/') AS uri FROM files
	), named AS (
		SELECT id, substr(uri, length(rtrim(uri, replace(uri, '/', ''))) + 1) AS base FROM slashed
	), dated AS (
		SELECT id, base,
		       substr(base, 5, 4) || '-' || substr(base, 3, 2) || '-' || substr(base, 1, 2) AS name_date
		FROM named
	)
	SELECT f.id, f.publication_id, f.storage_uri, f.mime, f.bytes, f.sha256,
	       f.has_ocr, f.pages_count,
	       CASE WHEN d.base GLOB '[0-9][0-9][0-9][0-9][0-9][0-9][0-9][0-9]-*'
	                 AND date(d.name_date) IS d.name_date
	            THEN d.name_date ELSE p.dof_date END AS publication_date,
	       p.type, p.source_url
	FROM files f
	JOIN dated d ON d.id = f.id
	JOIN publications p ON f.publication_id = p.id
	ORDER BY publication_date DESC, f.id DESC
	LIMIT ?`

// FileDetail is a file with its OCR pages and latest publication summary.
type FileDetail struct {
	ID            int64                `json:"id"`
	PublicationID int64                `json:"publication_id"`
	StorageURI    string               `json:"storage_uri"`
	Mime          *string              `json:"mime"`
	HasOCR        bool                 `json:"has_ocr"`
	Pages         []catalog.PageRecord `json:"pages"`
	Summary       *string              `json:"summary"`
}

func (s *Store) FileDetail(ctx context.Context, id int64) (*FileDetail, error) {
	var (
		d    FileDetail
		mime sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, publication_id, storage_uri, mime, has_ocr
		FROM files WHERE id = ?`, id).
		Scan(&d.ID, &d.PublicationID, &d.StorageURI, &mime, &d.HasOCR)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query file %d: %w", id, err)
	}
	d.Mime = nullString(mime)

	if d.Pages, err = s.pages(ctx, id); err != nil {
		return nil, err
	}

	latest, err := s.LatestSummary(ctx, ObjectPublication, d.PublicationID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		d.Summary = &latest.Text
	}
	return &d, nil
}

func (s *Store) pages(ctx context.Context, fileID int64) ([]catalog.PageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page_no, text, image_uri
		FROM pages WHERE file_id = ?
		ORDER BY page_no`, fileID)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	out := []catalog.PageRecord{}
	for rows.Next() {
		var p catalog.PageRecord
		if err := rows.Scan(&p.PageNumber, &p.Text, &p.ImageLocator); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DownloadInfo is what the binary download needs from the catalog.
type DownloadInfo struct {
	FileID          int64
	PublicationID   int64
	StorageURI      string
	PublicURL       string
	Mime            string
	PublicationType string
	PublicationDate string
}

func (s *Store) DownloadInfo(ctx context.Context, id int64) (*DownloadInfo, error) {
	var (
		d                   DownloadInfo
		publicURL, mime, pd sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT f.id, f.publication_id, f.storage_uri, f.public_url, f.mime, p.type, p.dof_date
		FROM files f
		JOIN publications p ON f.publication_id = p.id
		WHERE f.id = ?`, id).
		Scan(&d.FileID, &d.PublicationID, &d.StorageURI, &publicURL, &mime, &d.PublicationType, &pd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query download %d: %w", id, err)
	}
	d.PublicURL, d.Mime = publicURL.String, mime.String
	d.PublicationDate = catalog.PublicationDate(d.StorageURI)
	if d.PublicationDate == "" {
		d.PublicationDate = pd.String
	}
	return &d, nil
}

// SweepFile is one input of the page-count sweep.
type SweepFile struct {
	ID         int64
	StorageURI string
}

// SweepInput lists every file, by id.
func (s *Store) SweepInput(ctx context.Context) ([]SweepFile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, storage_uri FROM files ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sweep input: %w", err)
	}
	defer rows.Close()

	var out []SweepFile
	for rows.Next() {
		var f SweepFile
		if err := rows.Scan(&f.ID, &f.StorageURI); err != nil {
			return nil, fmt.Errorf("scan sweep input: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpdatePagesCount stores a new page count for one file.
func (s *Store) UpdatePagesCount(ctx context.Context, id int64, pages int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE files SET pages_count = ? WHERE id = ?`, pages, id)
	if err != nil {
		return fmt.Errorf("update pages_count for file %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pages_count for file %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
