package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dgallion1/dofcatalog/internal/store"
)

const maxSummaryBody = 1 << 20

type createSummaryRequest struct {
	ObjectType string `json:"object_type" validate:"required,oneof=publication section item"`
	ObjectID   int64  `json:"object_id" validate:"required,gt=0"`
	Text       string `json:"summary_text" validate:"required,max=200000"`
	Model      string `json:"model" validate:"max=100"`
}

type updateSummaryRequest struct {
	Text  string `json:"summary_text" validate:"required,max=200000"`
	Model string `json:"model" validate:"max=100"`
}

// decodeValid decodes a JSON body into v and validates its tags. The
// returned message is safe to show to the client.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, v any) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSummaryBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return "invalid JSON body: " + err.Error(), false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return "validation failed: " + strings.Join(msgs, "; "), false
		}
		return err.Error(), false
	}
	return "", true
}

func (s *Server) handleCreateSummary(w http.ResponseWriter, r *http.Request) {
	var req createSummaryRequest
	if msg, ok := s.decodeValid(w, r, &req); !ok {
		jsonError(w, msg, http.StatusBadRequest)
		return
	}

	sm := &store.Summary{
		ObjectType: req.ObjectType,
		ObjectID:   req.ObjectID,
		Text:       req.Text,
		Model:      req.Model,
	}
	if err := s.store.CreateSummary(r.Context(), sm); err != nil {
		s.log.Error("create summary failed", "object_type", req.ObjectType, "object_id", req.ObjectID, "error", err)
		jsonError(w, "failed to create summary", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Location", "/dof/summaries/"+strconv.FormatInt(sm.ID, 10))
	writeJSON(w, http.StatusCreated, sm)
}

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	objectType := q.Get("object_type")
	switch objectType {
	case store.ObjectPublication, store.ObjectSection, store.ObjectItem:
	default:
		jsonError(w, "object_type must be publication, section or item", http.StatusBadRequest)
		return
	}
	objectID, err := strconv.ParseInt(q.Get("object_id"), 10, 64)
	if err != nil || objectID <= 0 {
		jsonError(w, "object_id must be a positive integer", http.StatusBadRequest)
		return
	}

	list, err := s.store.ListSummaries(r.Context(), objectType, objectID)
	if err != nil {
		s.log.Error("list summaries failed", "error", err)
		jsonError(w, "failed to list summaries", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": list})
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "summaryID")
	if !ok {
		jsonError(w, "invalid summary id", http.StatusBadRequest)
		return
	}
	sm, err := s.store.GetSummary(r.Context(), id)
	if err != nil {
		s.summaryError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, sm)
}

func (s *Server) handleUpdateSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "summaryID")
	if !ok {
		jsonError(w, "invalid summary id", http.StatusBadRequest)
		return
	}
	var req updateSummaryRequest
	if msg, ok := s.decodeValid(w, r, &req); !ok {
		jsonError(w, msg, http.StatusBadRequest)
		return
	}
	sm, err := s.store.UpdateSummary(r.Context(), id, req.Text, req.Model)
	if err != nil {
		s.summaryError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, sm)
}

func (s *Server) handleDeleteSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "summaryID")
	if !ok {
		jsonError(w, "invalid summary id", http.StatusBadRequest)
		return
	}
	if err := s.store.DeleteSummary(r.Context(), id); err != nil {
		s.summaryError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) summaryError(w http.ResponseWriter, id int64, err error) {
	code := statusFor(err)
	if code == http.StatusNotFound {
		jsonError(w, "summary not found", code)
		return
	}
	s.log.Error("summary operation failed", "summary_id", id, "error", err)
	jsonError(w, "summary operation failed", code)
}
