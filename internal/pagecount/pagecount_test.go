package pagecount

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/dofcatalog/internal/pdftest"
	"github.com/dgallion1/dofcatalog/internal/resolve"
)

func TestCount_ValidPDF(t *testing.T) {
	for _, pages := range []int{1, 3, 12} {
		n, err := Count(pdftest.Build(pages))
		if err != nil {
			t.Fatalf("pages=%d: unexpected error: %v", pages, err)
		}
		if n != pages {
			t.Errorf("expected %d pages, got %d", pages, n)
		}
	}
}

func TestCount_GarbageIsParseErrorWithZero(t *testing.T) {
	inputs := map[string][]byte{
		"empty":     {},
		"text":      []byte("this is not a pdf"),
		"truncated": pdftest.Build(2)[:40],
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			n, err := Count(data)
			if n != 0 {
				t.Errorf("expected 0 pages, got %d", n)
			}
			if !IsParseError(err) {
				t.Errorf("expected ParseError, got %v", err)
			}
		})
	}
}

func newInspector(t *testing.T) (*Inspector, string) {
	t.Helper()
	project := t.TempDir()
	root := filepath.Join(project, "DOF_PDF")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	chain := resolve.NewLocal(resolve.Options{ProjectRoot: project, DocumentRoot: "DOF_PDF"}, log)
	return NewInspector(chain, log), root
}

func TestInspector_CountPages(t *testing.T) {
	insp, root := newInspector(t)
	if err := os.WriteFile(filepath.Join(root, "04112025-MAT.pdf"), pdftest.Build(4), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := insp.CountPages(context.Background(), resolve.Locator{StorageLocator: "04112025-MAT.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 pages, got %d", n)
	}
}

func TestInspector_CorruptFileDegradesToZero(t *testing.T) {
	insp, root := newInspector(t)
	if err := os.WriteFile(filepath.Join(root, "bad.pdf"), []byte("%PDF-1.4 garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := insp.CountPages(context.Background(), resolve.Locator{StorageLocator: "bad.pdf"})
	if n != 0 {
		t.Errorf("expected 0 pages, got %d", n)
	}
	if !IsParseError(err) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestInspector_MissingFileIsNotFound(t *testing.T) {
	insp, _ := newInspector(t)

	n, err := insp.CountPages(context.Background(), resolve.Locator{StorageLocator: "missing.pdf"})
	if n != 0 {
		t.Errorf("expected 0 pages, got %d", n)
	}
	if !errors.Is(err, resolve.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if IsParseError(err) {
		t.Error("missing file must not be reported as a parse error")
	}
}
