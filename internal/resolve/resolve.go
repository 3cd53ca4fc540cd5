// Package resolve turns a file locator into the document's bytes by
// trying an ordered list of storage strategies.
//
// The default order is: the local document root, the locator as a literal
// path, the public URL hint, the locator as a URL, and finally the
// object-storage guard. The first strategy that returns bytes wins. A
// strategy that does not apply returns ErrNotApplicable; any other error
// stops the chain and is returned as is.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Locator identifies one binary document.
type Locator struct {
	StorageLocator string
	PublicHint     string
	DeclaredMime   string
}

// Document is the result of one resolution. It is never cached.
type Document struct {
	Bytes    []byte
	MimeType string
	Source   string // name of the strategy that produced the bytes
}

// Strategy is one step of the chain.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, loc Locator) ([]byte, error)
}

// Options configures the default chain.
type Options struct {
	ProjectRoot    string
	DocumentRoot   string // joined to ProjectRoot unless absolute
	FetchTimeout   time.Duration
	MaxRemoteBytes int64
	HTTPClient     *http.Client
	Stats          *FetchStats
}

// DefaultFetchTimeout bounds remote fetches when Options leaves it unset.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxRemoteBytes caps remote bodies when Options leaves it unset.
const DefaultMaxRemoteBytes int64 = 200 << 20

// LocalRoot returns the absolute document root described by opts.
func (o Options) LocalRoot() string {
	if filepath.IsAbs(o.DocumentRoot) {
		return filepath.Clean(o.DocumentRoot)
	}
	return filepath.Join(o.ProjectRoot, o.DocumentRoot)
}

// Chain evaluates strategies in order.
type Chain struct {
	strategies []Strategy
	root       string
	log        *slog.Logger
}

// NewChain builds a chain from explicit strategies. root is only used to
// describe the search in NotFoundError.
func NewChain(root string, log *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, root: root, log: log}
}

// New returns the full chain: local root, literal path, public hint,
// locator URL, object-storage guard.
func New(opts Options, log *slog.Logger) *Chain {
	f := newFetcher(opts)
	return NewChain(opts.LocalRoot(), log,
		LocalRoot{Dir: opts.LocalRoot()},
		LiteralPath{ProjectRoot: opts.ProjectRoot},
		PublicHint{fetcher: f},
		LocatorURL{fetcher: f},
		ObjectStorage{},
	)
}

// NewLocal returns the local-only subset used by the page-count sweep.
func NewLocal(opts Options, log *slog.Logger) *Chain {
	return NewChain(opts.LocalRoot(), log,
		LocalRoot{Dir: opts.LocalRoot()},
		LiteralPath{ProjectRoot: opts.ProjectRoot},
	)
}

// Resolve runs the chain for loc.
func (c *Chain) Resolve(ctx context.Context, loc Locator) (*Document, error) {
	if loc.StorageLocator == "" {
		return nil, &NotFoundError{Locator: loc.StorageLocator, Root: c.root}
	}
	for _, s := range c.strategies {
		data, err := s.Attempt(ctx, loc)
		if errors.Is(err, ErrNotApplicable) {
			c.log.Debug("resolve step missed", "step", s.Name(), "storage_uri", loc.StorageLocator)
			continue
		}
		if err != nil {
			return nil, err
		}
		return &Document{
			Bytes:    data,
			MimeType: mimeFor(loc.DeclaredMime, data),
			Source:   s.Name(),
		}, nil
	}
	return nil, &NotFoundError{Locator: loc.StorageLocator, Root: c.root}
}

func mimeFor(declared string, data []byte) string {
	if declared != "" {
		return declared
	}
	return mimetype.Detect(data).String()
}
