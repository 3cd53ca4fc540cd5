package api

import (
	"net/http"

	"github.com/dgallion1/dofcatalog/internal/catalog"
	"github.com/dgallion1/dofcatalog/internal/store"
	"github.com/dgallion1/dofcatalog/internal/summary"
)

func (s *Server) handleListPublications(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 50, maxListLimit)
	if !ok || limit == 0 {
		jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
		return
	}
	offset, ok := queryInt(r, "offset", 0, 0)
	if !ok {
		jsonError(w, "offset must be a non-negative integer", http.StatusBadRequest)
		return
	}
	pubs, err := s.store.ListPublications(r.Context(), limit, offset)
	if err != nil {
		s.log.Error("list publications failed", "error", err)
		jsonError(w, "failed to list publications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"publications": pubs,
		"limit":        limit,
		"offset":       offset,
	})
}

// handlePublication returns the assembled section/item/entity tree of one
// publication.
func (s *Server) handlePublication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "pubID")
	if !ok {
		jsonError(w, "invalid publication id", http.StatusBadRequest)
		return
	}
	log := s.log.With("publication_id", id)

	rows, err := s.store.PublicationRows(r.Context(), id)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusNotFound {
			jsonError(w, "publication not found", code)
			return
		}
		log.Error("publication query failed", "error", err)
		jsonError(w, "failed to load publication", code)
		return
	}

	tree, dropped := catalog.Assemble(rows.Publication, rows.SectionItems, rows.Entities, rows.Pages)
	if dropped.Any() {
		log.Warn("catalog inconsistencies dropped from tree",
			"orphan_entities", dropped.OrphanEntities,
			"duplicate_items", dropped.DuplicateItems,
		)
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handlePublicationSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "pubID")
	if !ok {
		jsonError(w, "invalid publication id", http.StatusBadRequest)
		return
	}
	format, err := summary.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sm, err := s.store.LatestSummary(r.Context(), store.ObjectPublication, id)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusNotFound {
			jsonError(w, "summary not found", code)
			return
		}
		s.log.Error("summary query failed", "publication_id", id, "error", err)
		jsonError(w, "failed to load summary", code)
		return
	}

	out, err := summary.Render(sm.Text, format)
	if err != nil {
		s.log.Error("summary render failed", "summary_id", sm.ID, "error", err)
		jsonError(w, "failed to render summary", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}
