// Package filename builds safe download names for gazette files.
package filename

import (
	"fmt"
	"strings"
	"unicode"
)

// Fallback is returned when nothing survives sanitization.
const Fallback = "document"

// Sanitize keeps letters, digits, '-', '_', '.' and ' ', drops every other
// rune and trims surrounding spaces. It never returns an empty string.
func Sanitize(candidate string) string {
	var b strings.Builder
	b.Grow(len(candidate))
	for _, r := range candidate {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			continue
		}
		switch r {
		case '-', '_', '.', ' ':
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		return Fallback
	}
	return name
}

// Download returns the attachment name for a file, e.g.
// "DOF_2025-11-04_MAT_file12.pdf". An empty date becomes "undated".
func Download(date, publicationType string, fileID int64) string {
	if date == "" {
		date = "undated"
	}
	return Sanitize(fmt.Sprintf("DOF_%s_%s_file%d", date, publicationType, fileID)) + ".pdf"
}
