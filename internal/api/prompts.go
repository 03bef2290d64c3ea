package api

import (
	"net/http"

	"github.com/mirrorsensei/sensei/internal/study"
)

// ListPrompts returns both prompt collections. Reading is open to everyone,
// like the student flow that consumes them.
func (h *Handler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	set, err := h.svc.Prompts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if set.Category == nil {
		set.Category = []study.AdminPrompt{}
	}
	if set.Level == nil {
		set.Level = []study.LevelPrompt{}
	}
	JSON(w, http.StatusOK, set)
}

type categoryPromptRequest struct {
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	Prompt      string `json:"prompt"`
}

// PutCategoryPrompt overwrites one category prompt. Admin sessions only.
func (h *Handler) PutCategoryPrompt(w http.ResponseWriter, r *http.Request) {
	var req categoryPromptRequest
	if !decode(w, r, &req) {
		return
	}
	cat, err := study.ParseCategory(req.Category)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SubCategory == "" {
		Error(w, http.StatusBadRequest, "subCategory is required")
		return
	}
	if err := h.svc.SaveCategoryPrompt(r.Context(), sessionFrom(r.Context()), cat, req.SubCategory, req.Prompt); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{
		"id":     study.CategoryPromptKey(cat, req.SubCategory),
		"status": "saved",
	})
}

type levelPromptRequest struct {
	Level  string `json:"level"`
	Prompt string `json:"prompt"`
}

// PutLevelPrompt overwrites one level prompt. Admin sessions only.
func (h *Handler) PutLevelPrompt(w http.ResponseWriter, r *http.Request) {
	var req levelPromptRequest
	if !decode(w, r, &req) {
		return
	}
	level, err := study.ParseLevel(req.Level)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.SaveLevelPrompt(r.Context(), sessionFrom(r.Context()), level, req.Prompt); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{
		"id":     study.LevelPromptKey(level),
		"status": "saved",
	})
}
