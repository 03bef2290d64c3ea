package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mirrorsensei/sensei/internal/logging"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/store"
	"github.com/mirrorsensei/sensei/internal/study"
)

var (
	// ErrUnauthorized is returned for admin operations on a session that
	// has not logged in.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmptyInput is returned when the submitted text is blank. Nothing
	// is sent and nothing is recorded.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy is returned when the same operation is already in flight for
	// the session.
	ErrBusy = errors.New("operation already in progress")
)

// ContentGenerator produces the texts shown to the student. Implementations
// never fail; backend problems come back as fixed texts.
type ContentGenerator interface {
	Study(ctx context.Context, req StudyRequest) string
	Translate(ctx context.Context, text string, current study.Language) string
	InstantQA(ctx context.Context, question, contextText string) string
}

var _ ContentGenerator = (*Generator)(nil)

// PromptSet is both prompt collections as loaded together.
type PromptSet struct {
	Category []study.AdminPrompt `json:"categoryPrompts"`
	Level    []study.LevelPrompt `json:"levelPrompts"`
}

// Service runs the student and admin flows against one session at a time.
type Service struct {
	prompts store.PromptRepo
	history store.HistoryRepo
	gen     ContentGenerator
	log     *logging.Logger
}

// NewService wires the stores and the generator. A nil logger discards output.
func NewService(prompts store.PromptRepo, history store.HistoryRepo, gen ContentGenerator, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{prompts: prompts, history: history, gen: gen, log: log.With("component", "tutor")}
}

// Ask generates study content for query with the session's preferences,
// records it in history and keeps it as the Q&A context. Prompt and history
// store failures are logged and do not stop the response.
func (s *Service) Ask(ctx context.Context, sess *session.Session, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyInput
	}
	if !sess.Begin(session.OpStudy) {
		return "", ErrBusy
	}
	defer sess.End(session.OpStudy)

	category, level, lang := sess.Preferences()
	set := s.loadPrompts(ctx)

	text := s.gen.Study(ctx, StudyRequest{
		Query:        query,
		Category:     category,
		Level:        level,
		Language:     lang,
		AdminPrompts: set.Category,
		LevelPrompts: set.Level,
	})
	sess.SetResponse(text)

	_, err := s.history.Append(ctx, store.HistoryEntry{
		Query:    query,
		Response: text,
		Category: category,
		Level:    level,
	})
	if err != nil {
		s.log.Error("failed to save history", "session_id", sess.ID(), "error", err)
	}
	return text, nil
}

// Translate translates text away from the session's current language.
func (s *Service) Translate(ctx context.Context, sess *session.Session, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	if !sess.Begin(session.OpTranslate) {
		return "", ErrBusy
	}
	defer sess.End(session.OpTranslate)

	_, _, lang := sess.Preferences()
	out := s.gen.Translate(ctx, text, lang)
	sess.SetTranslation(out)
	return out, nil
}

// InstantQA answers question against the session's latest main response.
func (s *Service) InstantQA(ctx context.Context, sess *session.Session, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyInput
	}
	if !sess.Begin(session.OpInstantQA) {
		return "", ErrBusy
	}
	defer sess.End(session.OpInstantQA)

	out := s.gen.InstantQA(ctx, question, sess.Response())
	sess.SetAnswer(out)
	return out, nil
}

// History returns the recent history window, filtered by search.
func (s *Service) History(ctx context.Context, search string) ([]study.HistoryItem, error) {
	items, err := s.history.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return items, nil
}

// Prompts loads both prompt collections.
func (s *Service) Prompts(ctx context.Context) (PromptSet, error) {
	var set PromptSet
	var err error
	if set.Category, err = s.prompts.ListCategoryPrompts(ctx); err != nil {
		return PromptSet{}, fmt.Errorf("list category prompts: %w", err)
	}
	if set.Level, err = s.prompts.ListLevelPrompts(ctx); err != nil {
		return PromptSet{}, fmt.Errorf("list level prompts: %w", err)
	}
	return set, nil
}

// SaveCategoryPrompt overwrites the prompt for (category, subCategory).
func (s *Service) SaveCategoryPrompt(ctx context.Context, sess *session.Session, category study.Category, subCategory, text string) error {
	if !sess.Authenticated() {
		return ErrUnauthorized
	}
	if err := s.prompts.PutCategoryPrompt(ctx, category, subCategory, text); err != nil {
		return fmt.Errorf("save category prompt: %w", err)
	}
	s.log.Info("category prompt saved", "category", category, "sub_category", subCategory)
	return nil
}

// SaveLevelPrompt overwrites the prompt for level.
func (s *Service) SaveLevelPrompt(ctx context.Context, sess *session.Session, level study.Level, text string) error {
	if !sess.Authenticated() {
		return ErrUnauthorized
	}
	if err := s.prompts.PutLevelPrompt(ctx, level, text); err != nil {
		return fmt.Errorf("save level prompt: %w", err)
	}
	s.log.Info("level prompt saved", "level", level)
	return nil
}

// loadPrompts falls back to an empty set on failure so the fallback
// instructions take over.
func (s *Service) loadPrompts(ctx context.Context) PromptSet {
	set, err := s.Prompts(ctx)
	if err != nil {
		s.log.Warn("failed to load prompts, using fallback instructions", "error", err)
		return PromptSet{}
	}
	return set
}
