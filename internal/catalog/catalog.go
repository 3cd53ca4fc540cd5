// Package catalog holds the gazette publication tree served by the API
// and the flat row shapes the catalog store produces for it.
package catalog

// PublicationNode is the root of an assembled publication.
type PublicationNode struct {
	ID          int64         `json:"id"`
	Date        string        `json:"date"`
	IssueNumber string        `json:"issue_number"`
	Type        string        `json:"type"`
	Status      string        `json:"status"`
	SourceURL   string        `json:"source_url"`
	File        *FileSummary  `json:"file"`
	Sections    []SectionNode `json:"sections"`
	Pages       []PageRecord  `json:"pages"`
}

// FileSummary describes the binary attached to a publication (zero or one).
type FileSummary struct {
	ID             int64  `json:"id"`
	Mime           string `json:"mime"`
	PagesCount     int    `json:"pages_count"`
	HasOCR         bool   `json:"has_ocr"`
	StorageLocator string `json:"storage_uri"`
	PublicURL      string `json:"public_url,omitempty"`
}

// PageRange is an inclusive page span. Zero means unknown.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SectionNode groups the items of one gazette section.
type SectionNode struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Sequence  int        `json:"seq"`
	PageRange PageRange  `json:"page_range"`
	Items     []ItemNode `json:"items"`
}

// ItemNode is a single published act (decree, notice, agreement...).
type ItemNode struct {
	ID            int64       `json:"id"`
	Type          string      `json:"type"`
	Title         string      `json:"title"`
	IssuingEntity string      `json:"issuing_entity"`
	PageRange     PageRange   `json:"page_range"`
	RawText       string      `json:"raw_text"`
	Summary       *string     `json:"summary"`
	Entities      []EntityRef `json:"entities"`
}

// EntityRef is one extracted entity attached to one item.
type EntityRef struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	NormalizedName string `json:"norm_name"`
	EvidenceSpan   string `json:"span"`
}

// PageRecord is one OCR page of the publication's file.
type PageRecord struct {
	PageNumber   int    `json:"page_no"`
	Text         string `json:"text"`
	ImageLocator string `json:"image_uri"`
}

// PublicationRow is the publication header plus its optional file.
type PublicationRow struct {
	ID          int64
	Date        string
	IssueNumber string
	Type        string
	Status      string
	SourceURL   string
	File        *FileSummary
}

// SectionItemRow is one row of the sections LEFT JOIN items query.
// ItemID is nil for a section without items.
type SectionItemRow struct {
	SectionID        int64
	SectionName      string
	SectionSeq       int
	SectionPageStart int
	SectionPageEnd   int

	ItemID        *int64
	ItemType      string
	ItemTitle     string
	IssuingEntity string
	ItemPageFrom  int
	ItemPageTo    int
	RawText       string
	Summary       *string
}

// EntityRow is one row of the item_entities JOIN entities query.
type EntityRow struct {
	ItemID         int64
	EntityID       int64
	Name           string
	Type           string
	NormalizedName string
	EvidenceSpan   string
}
