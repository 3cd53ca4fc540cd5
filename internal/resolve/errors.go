package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrNotApplicable is returned by a Strategy that does not handle the
	// locator. The chain moves on to the next strategy.
	ErrNotApplicable = errors.New("resolve: strategy not applicable")

	ErrNotFound           = errors.New("resolve: document not found")
	ErrUnsupportedLocator = errors.New("resolve: unsupported locator")
	ErrRemoteFetch        = errors.New("resolve: remote fetch failed")
)

// NotFoundError means no strategy produced the document.
type NotFoundError struct {
	Locator string
	Root    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document not found: storage_uri=%q (searched %s and as a literal path)", e.Locator, e.Root)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnsupportedLocatorError is returned for object-storage locators that
// have no http(s) public URL to fetch from.
type UnsupportedLocatorError struct {
	Locator string
	Scheme  string
}

func (e *UnsupportedLocatorError) Error() string {
	return fmt.Sprintf("storage_uri %q uses %s://, which needs a presigned public_url", e.Locator, e.Scheme)
}

func (e *UnsupportedLocatorError) Is(target error) bool { return target == ErrUnsupportedLocator }

// RemoteFetchError is a transport failure or non-2xx answer from a remote
// mirror. StatusCode is 0 for transport failures.
type RemoteFetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RemoteFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("remote fetch %s: %v", e.URL, e.Err)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

func (e *RemoteFetchError) Is(target error) bool { return target == ErrRemoteFetch }
