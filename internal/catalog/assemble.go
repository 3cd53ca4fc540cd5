package catalog

import (
	"cmp"
	"slices"
)

// Inconsistencies counts rows Assemble dropped because their parent was
// missing or because they would have duplicated a branch already built.
type Inconsistencies struct {
	OrphanEntities int // entity rows whose item is not in the tree
	DuplicateItems int // item ids seen more than once
}

// Any reports whether anything was dropped.
func (i Inconsistencies) Any() bool {
	return i.OrphanEntities > 0 || i.DuplicateItems > 0
}

type itemBuilder struct {
	node     ItemNode
	entities []EntityRef
}

type sectionBuilder struct {
	node  SectionNode
	items []*itemBuilder
}

// assembly is scoped to a single Assemble call.
type assembly struct {
	order    []int64
	sections map[int64]*sectionBuilder
	items    map[int64]*itemBuilder
	dropped  Inconsistencies
}

// Assemble folds the flat join rows of one publication into its tree.
//
// sectionItems must arrive ordered by (section seq, item page_from); the
// output keeps sections and items in first-seen order. A section row with
// a nil item id yields a section with no items. Entity rows whose item is
// absent are dropped and counted, never attached elsewhere. Pages are
// returned only when the publication has a file, sorted by page number.
func Assemble(pub PublicationRow, sectionItems []SectionItemRow, entities []EntityRow, pages []PageRecord) (*PublicationNode, Inconsistencies) {
	a := &assembly{
		sections: make(map[int64]*sectionBuilder),
		items:    make(map[int64]*itemBuilder),
	}

	for _, row := range sectionItems {
		a.addSectionItem(row)
	}
	for _, row := range entities {
		a.addEntity(row)
	}

	out := &PublicationNode{
		ID:          pub.ID,
		Date:        pub.Date,
		IssueNumber: pub.IssueNumber,
		Type:        pub.Type,
		Status:      pub.Status,
		SourceURL:   pub.SourceURL,
		File:        pub.File,
		Sections:    a.build(),
		Pages:       []PageRecord{},
	}
	if pub.File != nil && len(pages) > 0 {
		out.Pages = slices.Clone(pages)
		slices.SortStableFunc(out.Pages, func(x, y PageRecord) int {
			return cmp.Compare(x.PageNumber, y.PageNumber)
		})
	}
	return out, a.dropped
}

func (a *assembly) addSectionItem(row SectionItemRow) {
	sec, ok := a.sections[row.SectionID]
	if !ok {
		sec = &sectionBuilder{node: SectionNode{
			ID:        row.SectionID,
			Name:      row.SectionName,
			Sequence:  row.SectionSeq,
			PageRange: PageRange{Start: row.SectionPageStart, End: row.SectionPageEnd},
		}}
		a.sections[row.SectionID] = sec
		a.order = append(a.order, row.SectionID)
	}

	if row.ItemID == nil {
		return
	}
	// An item belongs to exactly one section; repeats are join fan-out.
	if _, seen := a.items[*row.ItemID]; seen {
		a.dropped.DuplicateItems++
		return
	}
	it := &itemBuilder{node: ItemNode{
		ID:            *row.ItemID,
		Type:          row.ItemType,
		Title:         row.ItemTitle,
		IssuingEntity: row.IssuingEntity,
		PageRange:     PageRange{Start: row.ItemPageFrom, End: row.ItemPageTo},
		RawText:       row.RawText,
		Summary:       row.Summary,
	}}
	sec.items = append(sec.items, it)
	a.items[it.node.ID] = it
}

func (a *assembly) addEntity(row EntityRow) {
	it, ok := a.items[row.ItemID]
	if !ok {
		a.dropped.OrphanEntities++
		return
	}
	it.entities = append(it.entities, EntityRef{
		ID:             row.EntityID,
		Name:           row.Name,
		Type:           row.Type,
		NormalizedName: row.NormalizedName,
		EvidenceSpan:   row.EvidenceSpan,
	})
}

func (a *assembly) build() []SectionNode {
	sections := make([]SectionNode, 0, len(a.order))
	for _, id := range a.order {
		sb := a.sections[id]
		sec := sb.node
		sec.Items = make([]ItemNode, 0, len(sb.items))
		for _, ib := range sb.items {
			item := ib.node
			item.Entities = ib.entities
			if item.Entities == nil {
				item.Entities = []EntityRef{}
			}
			sec.Items = append(sec.Items, item)
		}
		sections = append(sections, sec)
	}
	return sections
}
