package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/artisanswear/artisans/internal/domain"
	"github.com/artisanswear/artisans/internal/usecase"
)

type Server struct {
	mux     *http.ServeMux
	catalog *usecase.CatalogUC
	exports *usecase.ExportUC
	ready   func(ctx context.Context) error

	adminUser string
	adminPass string
	jwtSecret []byte
	tokenTTL  time.Duration
}

// Config carries the credential-gate settings and the readiness probe.
type Config struct {
	AdminUser     string
	AdminPassword string
	JWTSecret     []byte
	TokenTTL      time.Duration
	Ready         func(ctx context.Context) error
}

func New(catalog *usecase.CatalogUC, exports *usecase.ExportUC, cfg Config) http.Handler {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	s := &Server{
		mux:       http.NewServeMux(),
		catalog:   catalog,
		exports:   exports,
		ready:     cfg.Ready,
		adminUser: cfg.AdminUser,
		adminPass: cfg.AdminPassword,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
	}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)

	s.mux.HandleFunc("/api/login", s.handleLogin)

	s.mux.HandleFunc("/api/products", s.apiProducts)
	s.mux.HandleFunc("/api/products/", s.apiProductByID)
	s.mux.HandleFunc("/api/categories", s.apiCategories)
	s.mux.HandleFunc("/api/images", s.apiImages)

	s.mux.HandleFunc("/admin/export/xlsx", s.handleExport)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, errStatus(err), map[string]any{"status": "error", "message": err.Error()})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRetrieval):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "json", http.StatusBadRequest)
		return
	}
	if !s.checkCredentials(req.Username, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	tok, exp, err := s.issueToken(req.Username, time.Now())
	if err != nil {
		http.Error(w, "token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "expires_at": exp.UTC()})
}

// ensureLoaded refreshes the cached list, falling back to the stale copy
// when the store is unreachable but a previous fetch succeeded.
func (s *Server) ensureLoaded(r *http.Request) error {
	err := s.catalog.Refresh(r.Context())
	if err == nil {
		return nil
	}
	if s.catalog.Loaded() {
		log.Warn().Err(err).Msg("refresh failed, serving cached list")
		return nil
	}
	return err
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if err := s.ensureLoaded(r); err != nil {
			writeErr(w, err)
			return
		}
		list := s.catalog.List(r.URL.Query().Get("category"), r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
	case http.MethodPost:
		if !s.requireAuth(w, r) {
			return
		}
		var draft domain.ProductDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			http.Error(w, "json", http.StatusBadRequest)
			return
		}
		id, err := s.catalog.Create(r.Context(), draft)
		if err != nil {
			if id == "" {
				writeErr(w, err)
				return
			}
			// Created but the follow-up refresh failed; the next list
			// request resynchronizes.
			log.Warn().Err(err).Str("id", id).Msg("refresh after create failed")
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		if err := s.ensureLoaded(r); err != nil {
			writeErr(w, err)
			return
		}
		p, err := s.catalog.Get(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		if !s.requireAuth(w, r) {
			return
		}
		var draft domain.ProductDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			http.Error(w, "json", http.StatusBadRequest)
			return
		}
		if err := s.catalog.Update(r.Context(), id, draft); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
	case http.MethodDelete:
		if !s.requireAuth(w, r) {
			return
		}
		if err := s.catalog.Delete(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "id": id})
	default:
		http.Error(w, "method", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if err := s.ensureLoaded(r); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": s.catalog.CategoryCounts()})
}

func (s *Server) apiImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAuth(w, r) {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "multipart", http.StatusBadRequest)
		return
	}
	existing := 0
	if v := r.FormValue("existing"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "existing", http.StatusBadRequest)
			return
		}
		existing = n
	}
	headers := r.MultipartForm.File["images"]
	files := make([]io.Reader, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			http.Error(w, "upload", http.StatusBadRequest)
			return
		}
		defer f.Close()
		files = append(files, f)
	}
	uris, err := s.catalog.IngestImages(r.Context(), existing, files)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": uris})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireAuth(w, r) {
		return
	}
	f, err := s.exports.CatalogXLSX(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=products.xlsx")
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("export write")
	}
}
