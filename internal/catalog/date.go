package catalog

import (
	"path"
	"strings"
	"time"
)

// PublicationDate derives the gazette date from a file locator named
// DDMMYYYY-<edition>.pdf, e.g. "04112025-MAT.pdf" -> "2025-11-04".
// It returns "" when the locator does not follow that convention.
func PublicationDate(locator string) string {
	base := path.Base(strings.ReplaceAll(locator, `\`, "/"))
	prefix, _, ok := strings.Cut(base, "-")
	if !ok || len(prefix) != 8 {
		return ""
	}
	t, err := time.Parse("02012006", prefix)
	if err != nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
