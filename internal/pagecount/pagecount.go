// Package pagecount counts the pages of locally stored gazette PDFs.
package pagecount

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dgallion1/dofcatalog/internal/resolve"
)

func init() {
	// pdfcpu would otherwise write a config dir under the user's home.
	api.DisableConfigDir()
}

// ParseError means the bytes could not be read as a PDF by either reader.
type ParseError struct {
	Primary  error
	Fallback error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unreadable pdf: %v; fallback: %v", e.Primary, e.Fallback)
}

func (e *ParseError) Unwrap() []error { return []error{e.Primary, e.Fallback} }

// Count returns the page count of a PDF. It tries ledongthuc/pdf first and
// falls back to pdfcpu. On failure it returns 0 and a *ParseError.
func Count(data []byte) (int, error) {
	n, primaryErr := countPrimary(data)
	if primaryErr == nil && n > 0 {
		return n, nil
	}
	m, fallbackErr := countFallback(data)
	if fallbackErr == nil {
		return m, nil
	}
	if primaryErr == nil {
		return n, nil
	}
	return 0, &ParseError{Primary: primaryErr, Fallback: fallbackErr}
}

func countPrimary(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}

func countFallback(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()
	return api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
}

// Inspector counts pages of documents reachable through a local-only
// resolution chain.
type Inspector struct {
	chain *resolve.Chain
	log   *slog.Logger
}

func NewInspector(chain *resolve.Chain, log *slog.Logger) *Inspector {
	return &Inspector{chain: chain, log: log}
}

// CountPages resolves loc and counts its pages. The count is always >= 0;
// it is 0 whenever err is non-nil. A resolution failure is returned as the
// chain reported it, a parse failure as *ParseError.
func (i *Inspector) CountPages(ctx context.Context, loc resolve.Locator) (int, error) {
	doc, err := i.chain.Resolve(ctx, loc)
	if err != nil {
		return 0, err
	}
	n, err := Count(doc.Bytes)
	if err != nil {
		i.log.Debug("page count failed", "storage_uri", loc.StorageLocator, "error", err)
		return 0, err
	}
	return n, nil
}

// IsParseError reports whether err came from an unreadable PDF.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
