package api

import (
	"context"
	"net/http"

	"github.com/mirrorsensei/sensei/internal/study"
)

// detached keeps the request values but not its cancellation, so a client
// that hangs up does not abort a generation already under way. The result
// still lands in the session and the history.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

type textResponse struct {
	Text string `json:"text"`
}

type studyRequest struct {
	Query string `json:"query"`
}

// Study generates content for the session's category, level and language.
// Backend failures still answer 200 with the fixed unavailability text.
func (h *Handler) Study(w http.ResponseWriter, r *http.Request) {
	var req studyRequest
	if !decode(w, r, &req) {
		return
	}
	text, err := h.svc.Ask(detached(r), sessionFrom(r.Context()), req.Query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, textResponse{Text: text})
}

type translateRequest struct {
	Text string `json:"text"`
}

// Translate translates away from the session's current language.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decode(w, r, &req) {
		return
	}
	text, err := h.svc.Translate(detached(r), sessionFrom(r.Context()), req.Text)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, textResponse{Text: text})
}

type qaRequest struct {
	Question string `json:"question"`
}

// InstantQA answers from the session's latest study response.
func (h *Handler) InstantQA(w http.ResponseWriter, r *http.Request) {
	var req qaRequest
	if !decode(w, r, &req) {
		return
	}
	text, err := h.svc.InstantQA(detached(r), sessionFrom(r.Context()), req.Question)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, textResponse{Text: text})
}

type historyResponse struct {
	Items []study.HistoryItem `json:"items"`
}

// ListHistory returns the recent history window, optionally filtered by
// ?search=.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.History(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []study.HistoryItem{}
	}
	JSON(w, http.StatusOK, historyResponse{Items: items})
}

// GetCatalogue lists the selectable categories, sub-categories, levels and
// languages.
func (h *Handler) GetCatalogue(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, study.DefaultCatalogue())
}
