// Package api exposes the study and admin flows over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mirrorsensei/sensei/internal/logging"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/tutor"
)

// maxBodyBytes bounds request bodies. Prompts are free text but not books.
const maxBodyBytes = 1 << 20

// Handler serves the API. Each visitor works through its own session.
type Handler struct {
	svc      *tutor.Service
	sessions *session.Manager
	log      *logging.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(svc *tutor.Service, sessions *session.Manager, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{svc: svc, sessions: sessions, log: log.With("component", "api")}
}

// NewRouter builds the chi router with the global middleware stack and
// every route registered.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(RequestLogger(h.log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(CORS(allowedOrigins))

	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the API routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/catalogue", h.GetCatalogue)
		r.Get("/history", h.ListHistory)
		r.Get("/prompts", h.ListPrompts)

		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(h.withSession)

			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/navigate", h.Navigate)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/back", h.Back)
			r.Patch("/preferences", h.UpdatePreferences)

			r.Post("/study", h.Study)
			r.Post("/translate", h.Translate)
			r.Post("/qa", h.InstantQA)

			r.Put("/prompts/category", h.PutCategoryPrompt)
			r.Put("/prompts/level", h.PutLevelPrompt)
		})
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON body into v, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type sessionKey struct{}

// withSession resolves {id} to a live session or answers 404.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := h.sessions.Get(chi.URLParam(r, "id"))
		if !ok {
			Error(w, http.StatusNotFound, "session not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}

// writeServiceError maps tutor errors onto status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tutor.ErrUnauthorized):
		Error(w, http.StatusForbidden, "Unauthorized")
	case errors.Is(err, tutor.ErrEmptyInput):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tutor.ErrBusy):
		Error(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("request failed", "path", r.URL.Path, "request_id", chiMiddleware.GetReqID(r.Context()), "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
