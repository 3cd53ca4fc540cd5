package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/dgallion1/dofcatalog/internal/config"
	"github.com/dgallion1/dofcatalog/internal/reindex"
	"github.com/dgallion1/dofcatalog/internal/resolve"
	"github.com/dgallion1/dofcatalog/internal/store"
)

// Server is the HTTP API of the gazette catalog.
type Server struct {
	router   chi.Router
	store    *store.Store
	resolver *resolve.Chain
	stats    *resolve.FetchStats
	sweeper  *reindex.Sweeper
	validate *validator.Validate
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil when
// remote fetches are not measured.
func NewServer(st *store.Store, resolver *resolve.Chain, sweeper *reindex.Sweeper, stats *resolve.FetchStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:    st,
		resolver: resolver,
		stats:    stats,
		sweeper:  sweeper,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(CORS(s.cfg.CORSAllowedOrigins))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Route("/dof", func(r chi.Router) {
		r.Get("/files", s.handleLatestFiles)
		r.Get("/files/{fileID}", s.handleFileDetail)
		r.Get("/files/{fileID}/download", s.handleDownload)

		r.Get("/publications", s.handleListPublications)
		r.Get("/publications/{pubID}", s.handlePublication)
		r.Get("/publications/{pubID}/summary", s.handlePublicationSummary)

		r.Get("/summaries", s.handleListSummaries)
		r.Post("/summaries", s.handleCreateSummary)
		r.Get("/summaries/{summaryID}", s.handleGetSummary)
		r.Put("/summaries/{summaryID}", s.handleUpdateSummary)
		r.Delete("/summaries/{summaryID}", s.handleDeleteSummary)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/reindex_pages", s.handleReindex)
		r.Get("/reindex_pages/{runID}", s.handleReindexRun)
		r.Get("/stats/remote", s.handleRemoteStats)
	})

	s.router = r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "DOF Files API",
		"endpoints": []string{
			"GET /dof/files",
			"GET /dof/files/{file_id}",
			"GET /dof/files/{file_id}/download",
			"GET /dof/publications",
			"GET /dof/publications/{pub_id}",
			"GET /dof/publications/{pub_id}/summary",
			"GET|POST /dof/summaries",
			"GET|PUT|DELETE /dof/summaries/{summary_id}",
			"POST /admin/reindex_pages",
			"GET /admin/reindex_pages/{run_id}",
			"GET /admin/stats/remote",
		},
		"notes": map[string]string{
			"publication_date": "derived from the PDF file name (DDMMYYYY-*.pdf)",
			"download":         "returns the PDF only; summaries are served separately",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.DB().PingContext(ctx); err != nil {
		s.log.Warn("health check failed", "error", err)
		jsonError(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
