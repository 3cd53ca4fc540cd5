package api

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/dgallion1/dofcatalog/internal/filename"
	"github.com/dgallion1/dofcatalog/internal/resolve"
)

const maxListLimit = 500

func (s *Server) handleLatestFiles(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", s.cfg.LatestFilesLimit, maxListLimit)
	if !ok || limit == 0 {
		jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
		return
	}
	files, err := s.store.LatestFiles(r.Context(), limit)
	if err != nil {
		s.log.Error("list files failed", "error", err)
		jsonError(w, "failed to list files", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleFileDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "fileID")
	if !ok {
		jsonError(w, "invalid file id", http.StatusBadRequest)
		return
	}
	detail, err := s.store.FileDetail(r.Context(), id)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusNotFound {
			jsonError(w, "file not found", code)
			return
		}
		s.log.Error("file detail failed", "file_id", id, "error", err)
		jsonError(w, "failed to load file", code)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleDownload streams the PDF of a file as an attachment, resolved
// through the full chain (local root, literal path, public URL, locator
// URL).
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "fileID")
	if !ok {
		jsonError(w, "invalid file id", http.StatusBadRequest)
		return
	}
	log := s.log.With("file_id", id)

	info, err := s.store.DownloadInfo(r.Context(), id)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusNotFound {
			jsonError(w, "file not found", code)
			return
		}
		log.Error("download lookup failed", "error", err)
		jsonError(w, "failed to prepare download", code)
		return
	}

	doc, err := s.resolver.Resolve(r.Context(), resolve.Locator{
		StorageLocator: info.StorageURI,
		PublicHint:     info.PublicURL,
		DeclaredMime:   info.Mime,
	})
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			log.Error("resolve failed", "storage_uri", info.StorageURI, "error", err)
		} else {
			log.Warn("resolve failed", "storage_uri", info.StorageURI, "status", code, "error", err)
		}
		jsonError(w, err.Error(), code)
		return
	}

	name := filename.Download(info.PublicationDate, info.PublicationType, info.FileID)
	h := w.Header()
	h.Set("Content-Type", doc.MimeType)
	h.Set("Content-Length", strconv.Itoa(len(doc.Bytes)))
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("X-Resolved-From", doc.Source)
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Bytes)
}
