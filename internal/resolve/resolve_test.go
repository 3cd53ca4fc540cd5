package resolve

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

var pdfBytes = []byte("%PDF-1.4\n% test document\n")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestChain creates a project root with an empty DOF_PDF directory.
func newTestChain(t *testing.T) (*Chain, Options) {
	t.Helper()
	project := t.TempDir()
	if err := os.MkdirAll(filepath.Join(project, "DOF_PDF"), 0o755); err != nil {
		t.Fatal(err)
	}
	opts := Options{
		ProjectRoot:  project,
		DocumentRoot: "DOF_PDF",
		FetchTimeout: 2 * time.Second,
	}
	return New(opts, testLogger()), opts
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// countingServer serves body with status and counts requests.
func countingServer(t *testing.T, status int, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestResolve_LocalRootWins(t *testing.T) {
	chain, opts := newTestChain(t)
	writeFile(t, filepath.Join(opts.LocalRoot(), "04112025-MAT.pdf"), pdfBytes)
	srv, hits := countingServer(t, http.StatusOK, []byte("remote"))

	doc, err := chain.Resolve(context.Background(), Locator{
		StorageLocator: "04112025-MAT.pdf",
		PublicHint:     srv.URL + "/x.pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(doc.Bytes) != string(pdfBytes) {
		t.Errorf("expected local bytes, got %q", doc.Bytes)
	}
	if doc.Source != "local_root" {
		t.Errorf("expected source local_root, got %q", doc.Source)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no remote calls, got %d", hits.Load())
	}
}

func TestResolve_LiteralPathRelativeToProject(t *testing.T) {
	chain, opts := newTestChain(t)
	writeFile(t, filepath.Join(opts.ProjectRoot, "archive", "2024", "a.pdf"), pdfBytes)

	doc, err := chain.Resolve(context.Background(), Locator{StorageLocator: "archive/2024/a.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Source != "literal_path" {
		t.Errorf("expected source literal_path, got %q", doc.Source)
	}
}

func TestResolve_LiteralAbsolutePath(t *testing.T) {
	chain, _ := newTestChain(t)
	abs := filepath.Join(t.TempDir(), "elsewhere.pdf")
	writeFile(t, abs, pdfBytes)

	doc, err := chain.Resolve(context.Background(), Locator{StorageLocator: abs})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Source != "literal_path" {
		t.Errorf("expected source literal_path, got %q", doc.Source)
	}
}

func TestResolve_DirectoryIsNotADocument(t *testing.T) {
	chain, opts := newTestChain(t)
	if err := os.MkdirAll(filepath.Join(opts.LocalRoot(), "folder.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := chain.Resolve(context.Background(), Locator{StorageLocator: "folder.pdf"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_PublicHintSuccess(t *testing.T) {
	chain, _ := newTestChain(t)
	srv, hits := countingServer(t, http.StatusOK, pdfBytes)

	doc, err := chain.Resolve(context.Background(), Locator{
		StorageLocator: "04112025-MAT.pdf",
		PublicHint:     srv.URL + "/x.pdf",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(doc.Bytes) != string(pdfBytes) {
		t.Errorf("expected remote bytes, got %q", doc.Bytes)
	}
	if doc.Source != "public_url" {
		t.Errorf("expected source public_url, got %q", doc.Source)
	}
	if hits.Load() != 1 {
		t.Errorf("expected exactly one GET, got %d", hits.Load())
	}
}

func TestResolve_PublicHintSchemeCaseInsensitive(t *testing.T) {
	chain, _ := newTestChain(t)
	srv, hits := countingServer(t, http.StatusOK, pdfBytes)

	hint := "HTTP" + strings.TrimPrefix(srv.URL, "http") + "/x.pdf"
	if _, err := chain.Resolve(context.Background(), Locator{StorageLocator: "missing.pdf", PublicHint: hint}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected exactly one GET, got %d", hits.Load())
	}
}

func TestResolve_PublicHintNotFound(t *testing.T) {
	chain, _ := newTestChain(t)
	srv, hits := countingServer(t, http.StatusNotFound, nil)

	_, err := chain.Resolve(context.Background(), Locator{
		StorageLocator: srv.URL + "/also-remote.pdf",
		PublicHint:     srv.URL + "/x.pdf",
	})
	var rfe *RemoteFetchError
	if !errors.As(err, &rfe) {
		t.Fatalf("expected RemoteFetchError, got %v", err)
	}
	if rfe.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rfe.StatusCode)
	}
	if !errors.Is(err, ErrRemoteFetch) {
		t.Error("expected errors.Is(err, ErrRemoteFetch)")
	}
	// The failed hint is terminal: the locator URL is never tried.
	if hits.Load() != 1 {
		t.Errorf("expected exactly one GET, got %d", hits.Load())
	}
}

func TestResolve_LocatorURL(t *testing.T) {
	chain, _ := newTestChain(t)
	srv, hits := countingServer(t, http.StatusOK, pdfBytes)

	doc, err := chain.Resolve(context.Background(), Locator{StorageLocator: srv.URL + "/doc.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Source != "storage_url" {
		t.Errorf("expected source storage_url, got %q", doc.Source)
	}
	if hits.Load() != 1 {
		t.Errorf("expected exactly one GET, got %d", hits.Load())
	}
}

func TestResolve_TransportFailure(t *testing.T) {
	chain, _ := newTestChain(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := chain.Resolve(context.Background(), Locator{StorageLocator: "x.pdf", PublicHint: url + "/x.pdf"})
	var rfe *RemoteFetchError
	if !errors.As(err, &rfe) {
		t.Fatalf("expected RemoteFetchError, got %v", err)
	}
	if rfe.StatusCode != 0 || rfe.Err == nil {
		t.Errorf("expected transport error without status, got %+v", rfe)
	}
}

func TestResolve_RemoteTimeout(t *testing.T) {
	project := t.TempDir()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	chain := New(Options{ProjectRoot: project, DocumentRoot: "DOF_PDF", FetchTimeout: 50 * time.Millisecond}, testLogger())
	start := time.Now()
	_, err := chain.Resolve(context.Background(), Locator{StorageLocator: "x.pdf", PublicHint: srv.URL})
	if !errors.Is(err, ErrRemoteFetch) {
		t.Fatalf("expected ErrRemoteFetch, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("fetch was not bounded by the timeout")
	}
}

func TestResolve_RemoteBodyLimit(t *testing.T) {
	srv, _ := countingServer(t, http.StatusOK, make([]byte, 64))
	chain := New(Options{ProjectRoot: t.TempDir(), DocumentRoot: "DOF_PDF", MaxRemoteBytes: 16}, testLogger())

	_, err := chain.Resolve(context.Background(), Locator{StorageLocator: "x.pdf", PublicHint: srv.URL})
	if !errors.Is(err, errBodyTooLarge) {
		t.Fatalf("expected errBodyTooLarge, got %v", err)
	}
}

func TestResolve_ObjectStorageUnsupported(t *testing.T) {
	chain, opts := newTestChain(t)
	locator := "s3://bucket/04112025-MAT.pdf"
	// Same name present both under the document root and literally.
	writeFile(t, filepath.Join(opts.LocalRoot(), locator), pdfBytes)
	writeFile(t, filepath.Join(opts.ProjectRoot, locator), pdfBytes)

	_, err := chain.Resolve(context.Background(), Locator{StorageLocator: locator})
	var ule *UnsupportedLocatorError
	if !errors.As(err, &ule) {
		t.Fatalf("expected UnsupportedLocatorError, got %v", err)
	}
	if ule.Scheme != "s3" {
		t.Errorf("expected scheme s3, got %q", ule.Scheme)
	}
	if !errors.Is(err, ErrUnsupportedLocator) {
		t.Error("expected errors.Is(err, ErrUnsupportedLocator)")
	}
}

func TestResolve_ObjectStorageWithHint(t *testing.T) {
	chain, _ := newTestChain(t)
	srv, _ := countingServer(t, http.StatusOK, pdfBytes)

	doc, err := chain.Resolve(context.Background(), Locator{
		StorageLocator: "s3://bucket/x.pdf",
		PublicHint:     srv.URL + "/presigned",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Source != "public_url" {
		t.Errorf("expected source public_url, got %q", doc.Source)
	}
}

func TestResolve_NotFoundCarriesContext(t *testing.T) {
	chain, opts := newTestChain(t)

	_, err := chain.Resolve(context.Background(), Locator{StorageLocator: "04112025-MAT.pdf", PublicHint: "ftp://mirror/x.pdf"})
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nfe.Locator != "04112025-MAT.pdf" {
		t.Errorf("expected locator in error, got %q", nfe.Locator)
	}
	if nfe.Root != opts.LocalRoot() {
		t.Errorf("expected root %q, got %q", opts.LocalRoot(), nfe.Root)
	}
	if !strings.Contains(err.Error(), "04112025-MAT.pdf") {
		t.Errorf("expected locator in message, got %q", err.Error())
	}
}

func TestResolve_EmptyLocator(t *testing.T) {
	chain, _ := newTestChain(t)
	if _, err := chain.Resolve(context.Background(), Locator{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_MimeDeclaredOrSniffed(t *testing.T) {
	chain, opts := newTestChain(t)
	writeFile(t, filepath.Join(opts.LocalRoot(), "a.pdf"), pdfBytes)

	doc, err := chain.Resolve(context.Background(), Locator{StorageLocator: "a.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.MimeType != "application/pdf" {
		t.Errorf("expected sniffed application/pdf, got %q", doc.MimeType)
	}

	doc, err = chain.Resolve(context.Background(), Locator{StorageLocator: "a.pdf", DeclaredMime: "application/x-dof"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.MimeType != "application/x-dof" {
		t.Errorf("expected declared mime, got %q", doc.MimeType)
	}
}

func TestNewLocal_NeverFetches(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, pdfBytes)
	chain := NewLocal(Options{ProjectRoot: t.TempDir(), DocumentRoot: "DOF_PDF"}, testLogger())

	_, err := chain.Resolve(context.Background(), Locator{StorageLocator: srv.URL + "/x.pdf", PublicHint: srv.URL})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no remote calls, got %d", hits.Load())
	}
}

func TestResolve_RecordsStats(t *testing.T) {
	srv, _ := countingServer(t, http.StatusOK, pdfBytes)
	stats := NewFetchStats(time.Hour)
	chain := New(Options{ProjectRoot: t.TempDir(), DocumentRoot: "DOF_PDF", Stats: stats}, testLogger())

	if _, err := chain.Resolve(context.Background(), Locator{StorageLocator: srv.URL}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := stats.Snapshot(); snap.Count != 1 || snap.Failures != 0 {
		t.Errorf("expected one successful sample, got %+v", snap)
	}
}

type stubStrategy struct {
	name string
	data []byte
	err  error
	hits int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(context.Context, Locator) ([]byte, error) {
	s.hits++
	return s.data, s.err
}

func TestChain_NotApplicableVersusFailure(t *testing.T) {
	boom := errors.New("boom")
	skip := &stubStrategy{name: "skip", err: ErrNotApplicable}
	fail := &stubStrategy{name: "fail", err: boom}
	after := &stubStrategy{name: "after", data: []byte("x")}

	chain := NewChain("/root", testLogger(), skip, fail, after)
	_, err := chain.Resolve(context.Background(), Locator{StorageLocator: "a"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected terminal failure, got %v", err)
	}
	if skip.hits != 1 || fail.hits != 1 || after.hits != 0 {
		t.Errorf("unexpected call counts: skip=%d fail=%d after=%d", skip.hits, fail.hits, after.hits)
	}
}
