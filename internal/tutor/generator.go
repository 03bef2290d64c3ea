// Package tutor turns study requests into generation calls and ties the
// results to the session and the stores.
package tutor

import (
	"context"

	"github.com/mirrorsensei/sensei/internal/llm"
	"github.com/mirrorsensei/sensei/internal/logging"
	"github.com/mirrorsensei/sensei/internal/study"
)

// Fixed texts returned in place of generated content.
const (
	StudyEmptyText       = "Sensei is reflecting... please try your question again."
	StudyUnavailableText = "Error: Sensei is currently unavailable. Please check your connection."
	TranslateFailedText  = "Translation temporarily unavailable."
	QAFailedText         = "QA module failed to load. Please try again."
)

// StudyRequest is everything one study call needs.
type StudyRequest struct {
	Query        string
	Category     study.Category
	Level        study.Level
	Language     study.Language
	AdminPrompts []study.AdminPrompt
	LevelPrompts []study.LevelPrompt
}

// Generator issues single-turn calls. It never returns an error: failures
// become fixed user-facing texts and are logged. Calls are not retried,
// cached or deduplicated.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *logging.Logger
}

// NewGenerator creates a Generator. A nil logger discards output.
func NewGenerator(provider llm.Provider, cfg Config, log *logging.Logger) *Generator {
	if log == nil {
		log = logging.Nop()
	}
	return &Generator{provider: provider, config: cfg, log: log.With("component", "generator")}
}

// Study answers a study query. The query is sent verbatim.
func (g *Generator) Study(ctx context.Context, req StudyRequest) string {
	ctx = llm.WithPurpose(ctx, llm.PurposeStudy)
	system := BuildSystemInstruction(req.Category, req.Level, req.Language, req.AdminPrompts, req.LevelPrompts)

	text, err := g.generate(ctx, system, req.Query, g.config.StudyTemperature)
	if err != nil {
		g.log.Error("study generation failed", "category", req.Category, "level", req.Level, "error", err)
		return StudyUnavailableText
	}
	if text == "" {
		return StudyEmptyText
	}
	return text
}

// Translate translates text into the language opposite to current.
func (g *Generator) Translate(ctx context.Context, text string, current study.Language) string {
	ctx = llm.WithPurpose(ctx, llm.PurposeTranslate)
	target := current.Other()

	out, err := g.generate(ctx, translatorSystemPrompt, translatePrompt(text, target), g.config.TranslateTemperature)
	if err != nil {
		g.log.Error("translation failed", "target", target, "error", err)
		return TranslateFailedText
	}
	return out
}

// InstantQA answers a question against the context material. A blank
// context is replaced by a placeholder.
func (g *Generator) InstantQA(ctx context.Context, question, contextText string) string {
	ctx = llm.WithPurpose(ctx, llm.PurposeInstantQA)

	out, err := g.generate(ctx, qaSystemPrompt, qaPrompt(question, contextText), g.config.QATemperature)
	if err != nil {
		g.log.Error("instant QA failed", "error", err)
		return QAFailedText
	}
	return out
}

func (g *Generator) generate(ctx context.Context, system, user string, temperature float64) (string, error) {
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    llm.UserMessage(user),
		MaxTokens:   g.config.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
