package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// hasScheme reports whether s looks like a URL rather than a path.
func hasScheme(s string) bool {
	return schemeRe.MatchString(s)
}

func scheme(s string) string {
	if !hasScheme(s) {
		return ""
	}
	before, _, _ := strings.Cut(s, "://")
	return strings.ToLower(before)
}

// LocalRoot reads the locator as a file name under the document root.
type LocalRoot struct {
	Dir string
}

func (LocalRoot) Name() string { return "local_root" }

func (s LocalRoot) Attempt(_ context.Context, loc Locator) ([]byte, error) {
	if hasScheme(loc.StorageLocator) {
		return nil, ErrNotApplicable
	}
	return readRegular(filepath.Join(s.Dir, loc.StorageLocator))
}

// LiteralPath reads the locator as a path, absolute or relative to the
// project root.
type LiteralPath struct {
	ProjectRoot string
}

func (LiteralPath) Name() string { return "literal_path" }

func (s LiteralPath) Attempt(_ context.Context, loc Locator) ([]byte, error) {
	if hasScheme(loc.StorageLocator) {
		return nil, ErrNotApplicable
	}
	p := loc.StorageLocator
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.ProjectRoot, p)
	}
	return readRegular(p)
}

// readRegular returns ErrNotApplicable for anything that is not a
// readable regular file so the chain keeps going.
func readRegular(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, ErrNotApplicable
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotApplicable, err)
	}
	return data, nil
}
