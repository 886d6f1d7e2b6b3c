package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ajitpratap0/thoughtboard/internal/board"
	"github.com/ajitpratap0/thoughtboard/internal/catalog"
	"github.com/ajitpratap0/thoughtboard/internal/transfer"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 1 << 20 // 1 MB

// Server is an HTTP API server that exposes board operations.
type Server struct {
	board     *board.Board
	metrics   http.Handler // nil = no /metrics route
	logger    *slog.Logger
	authToken string // empty = no auth required

	validateOnce sync.Once
	validate     *validator.Validate
}

// NewServer creates a new Server with the given dependencies.
func NewServer(b *board.Board, metricsHandler http.Handler, logger *slog.Logger, authToken string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		board:     b,
		metrics:   metricsHandler,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics, no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	mux.HandleFunc("GET /v1/board", s.auth(s.handleBoard))
	mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))

	mux.HandleFunc("POST /v1/categories", s.auth(s.handleCreateCategory))
	mux.HandleFunc("PATCH /v1/categories/{id}", s.auth(s.handleRenameCategory))
	mux.HandleFunc("DELETE /v1/categories/{id}", s.auth(s.handleDeleteCategory))
	mux.HandleFunc("POST /v1/categories/{id}/toggle", s.auth(s.handleToggleCollapse))
	mux.HandleFunc("POST /v1/categories/{id}/knowledge", s.auth(s.handleCreateKnowledge))
	mux.HandleFunc("DELETE /v1/categories/{cid}/knowledge/{id}", s.auth(s.handleDeleteKnowledge))
	mux.HandleFunc("PATCH /v1/knowledge/{id}", s.auth(s.handleEditKnowledge))

	mux.HandleFunc("POST /v1/thoughts", s.auth(s.handleCreateThought))
	mux.HandleFunc("PATCH /v1/thoughts/{id}", s.auth(s.handleRenameThought))
	mux.HandleFunc("PUT /v1/thoughts/{id}/text", s.auth(s.handleSetThoughtText))
	mux.HandleFunc("DELETE /v1/thoughts/{id}", s.auth(s.handleDeleteThought))

	mux.HandleFunc("GET /v1/drag/{id}", s.auth(s.handleDrag))
	mux.HandleFunc("POST /v1/thoughts/{id}/drop", s.auth(s.handleDrop))
	mux.HandleFunc("DELETE /v1/thoughts/{id}/dropped/{index}", s.auth(s.handleRemovePlaced))

	mux.HandleFunc("GET /v1/templates", s.auth(s.handleListTemplates))
	mux.HandleFunc("POST /v1/templates/{name}/load", s.auth(s.handleLoadTemplate))
	mux.HandleFunc("PUT /v1/templates/{name}", s.auth(s.handleSaveTemplate))
	mux.HandleFunc("DELETE /v1/templates/{name}", s.auth(s.handleDeleteTemplate))
	mux.HandleFunc("GET /v1/templates/{name}/export", s.auth(s.handleExportTemplate))
	mux.HandleFunc("POST /v1/templates/{name}/import", s.auth(s.handleImportTemplate))

	mux.HandleFunc("POST /v1/reset", s.auth(s.handleReset))

	return s.requestID(mux)
}

// --- middleware ---

// requestID tags every request and response with an X-Request-ID.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "request_id", id)
		next.ServeHTTP(w, r)
	})
}

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.board.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.board.Stats())
}

// nameRequest is the body of create and rename routes.
type nameRequest struct {
	Name string `json:"name" validate:"required"`
}

// renameRequest allows an empty name, which leaves the entity unchanged.
type renameRequest struct {
	Name string `json:"name"`
}

// knowledgeRequest is the body of POST /v1/categories/{id}/knowledge.
type knowledgeRequest struct {
	Name     string `json:"name" validate:"required"`
	Relation string `json:"relation" validate:"required"`
}

// editKnowledgeRequest is the body of PATCH /v1/knowledge/{id}.
type editKnowledgeRequest struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
}

// textRequest is the body of PUT /v1/thoughts/{id}/text.
type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !s.decode(w, r, &req) {
		return
	}
	cat, err := s.board.CreateCategory(r.Context(), req.Name)
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req renameRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.board.RenameCategory(r.Context(), id, req.Name); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeCategory(w, id)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.board.DeleteCategory(r.Context(), r.PathValue("id"), queryFlag(r, "confirm")); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleToggleCollapse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.board.ToggleCollapse(r.Context(), id); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeCategory(w, id)
}

func (s *Server) handleCreateKnowledge(w http.ResponseWriter, r *http.Request) {
	var req knowledgeRequest
	if !s.decode(w, r, &req) {
		return
	}
	k, err := s.board.CreateKnowledge(r.Context(), r.PathValue("id"), req.Name, req.Relation)
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, k)
}

func (s *Server) handleEditKnowledge(w http.ResponseWriter, r *http.Request) {
	var req editKnowledgeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.board.EditKnowledge(r.Context(), r.PathValue("id"), req.Name, req.Relation); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleDeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	err := s.board.DeleteKnowledge(r.Context(), r.PathValue("cid"), r.PathValue("id"), queryFlag(r, "confirm"))
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleCreateThought(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !s.decode(w, r, &req) {
		return
	}
	th, err := s.board.CreateThought(r.Context(), req.Name)
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, th)
}

func (s *Server) handleRenameThought(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req renameRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.board.RenameThought(r.Context(), id, req.Name); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeThought(w, id)
}

func (s *Server) handleSetThoughtText(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.board.SetThoughtText(r.Context(), id, req.Text); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeThought(w, id)
}

func (s *Server) handleDeleteThought(w http.ResponseWriter, r *http.Request) {
	if err := s.board.DeleteThought(r.Context(), r.PathValue("id"), queryFlag(r, "confirm")); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleDrag returns the drag payload for a category or knowledge item.
func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ref, ok := s.board.DragSource(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "drag source not found")
		return
	}
	payload, err := transfer.Encode(ref)
	if err != nil {
		s.logger.Error("failed to encode drag payload", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to encode drag payload")
		return
	}
	w.Header().Set("Content-Type", transfer.MIMEType+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// handleDrop places the raw drag payload in the body onto a thought.
func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	payload, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := s.board.Drop(r.Context(), id, payload); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeThought(w, id)
}

func (s *Server) handleRemovePlaced(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	if err := s.board.RemovePlacedReference(r.Context(), id, index); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeThought(w, id)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]catalog.Entry{"templates": s.board.Templates()})
}

// loadResponse is returned by POST /v1/templates/{name}/load.
type loadResponse struct {
	Template        string `json:"template"`
	CategoriesAdded int    `json:"categories_added"`
}

func (s *Server) handleLoadTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	n, err := s.board.LoadNamedTemplate(r.Context(), name)
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, loadResponse{Template: name, CategoriesAdded: n})
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.board.SaveAsTemplate(r.Context(), name, queryFlag(r, "overwrite")); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"saved": name})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.board.DeleteTemplate(r.Context(), r.PathValue("name")); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleExportTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, err := s.board.ExportTemplate(name)
	if err != nil {
		s.writeBoardError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".json"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := s.board.ImportTemplate(r.Context(), name, data, queryFlag(r, "overwrite")); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"imported": name})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Reset(r.Context(), queryFlag(r, "confirm")); err != nil {
		s.writeBoardError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// --- helpers ---

func (s *Server) requestValidator() *validator.Validate {
	s.validateOnce.Do(func() {
		s.validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return s.validate
}

// decode reads a JSON body into dst and validates it. On failure it writes
// a 400 and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.requestValidator().Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			s.writeError(w, http.StatusBadRequest, strings.ToLower(verrs[0].Field())+" is required")
			return false
		}
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return data, true
}

func (s *Server) writeCategory(w http.ResponseWriter, id string) {
	cat, ok := s.board.Category(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "category not found")
		return
	}
	s.writeJSON(w, http.StatusOK, cat)
}

func (s *Server) writeThought(w http.ResponseWriter, id string) {
	th, ok := s.board.Thought(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "thought not found")
		return
	}
	s.writeJSON(w, http.StatusOK, th)
}

// writeBoardError maps board errors onto HTTP status codes.
func (s *Server) writeBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrNotConfirmed):
		s.writeError(w, http.StatusPreconditionRequired, "confirmation required: repeat with confirm=true")
	case errors.Is(err, board.ErrTemplateExists):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, board.ErrTemplateNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, board.ErrValidation), errors.Is(err, catalog.ErrFormat):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("board operation failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "board state not persisted")
	}
}

func queryFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
