package api

import (
	"errors"
	"net/http"

	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/study"
)

// CreateSession starts a session in the default state.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	h.log.Debug("session created", "session_id", sess.ID())
	JSON(w, http.StatusCreated, sess.State())
}

// GetSession returns the session state, including the resolved screen.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, sessionFrom(r.Context()).State())
}

// DeleteSession ends a session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(sessionFrom(r.Context()).ID())
	w.WriteHeader(http.StatusNoContent)
}

type navigateRequest struct {
	View string `json:"view"`
}

// Navigate jumps to a view the way a link or bookmark would.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := session.ParseView(req.View)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	sess := sessionFrom(r.Context())
	sess.Navigate(v)
	JSON(w, http.StatusOK, sess.State())
}

// Login checks credentials. It answers 409 unless the session is on the
// login view. A rejection answers 401 and leaves the session on the login
// view with the inline error set.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if !decode(w, r, &creds) {
		return
	}
	sess := sessionFrom(r.Context())
	ok, err := sess.Login(r.Context(), creds)
	if errors.Is(err, session.ErrNotOnLogin) {
		Error(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.log.Warn("authenticator failed", "session_id", sess.ID(), "error", err)
	}
	if !ok {
		Error(w, http.StatusUnauthorized, auth.InvalidCredentialsMessage)
		return
	}
	h.log.Info("admin login", "session_id", sess.ID())
	JSON(w, http.StatusOK, sess.State())
}

// Logout clears the admin flag and returns to the user view.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Logout()
	JSON(w, http.StatusOK, sess.State())
}

// Back leaves the login view.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Back()
	JSON(w, http.StatusOK, sess.State())
}

type preferencesRequest struct {
	Language string `json:"language"`
	Category string `json:"category"`
	Level    string `json:"level"`
}

// UpdatePreferences changes any of language, category and level. Empty
// fields are left as they are. Nothing changes if any value is invalid.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		lang  study.Language
		cat   study.Category
		level study.Level
		err   error
	)
	if req.Language != "" {
		if lang, err = study.ParseLanguage(req.Language); err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Category != "" {
		if cat, err = study.ParseCategory(req.Category); err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Level != "" {
		if level, err = study.ParseLevel(req.Level); err != nil {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	sess := sessionFrom(r.Context())
	if lang != "" {
		sess.SetLanguage(lang)
	}
	if cat != "" {
		sess.SetCategory(cat)
	}
	if level != "" {
		sess.SetLevel(level)
	}
	JSON(w, http.StatusOK, sess.State())
}
