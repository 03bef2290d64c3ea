package store

import (
	"context"
	"errors"
	"time"

	"github.com/mirrorsensei/sensei/internal/study"
)

// HistoryLimit is the number of most recent history items List returns.
const HistoryLimit = 20

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// PromptRepo persists admin-authored instructions. Writes are upserts keyed
// by study.CategoryPromptKey / study.LevelPromptKey; the last write wins.
type PromptRepo interface {
	// PutCategoryPrompt stores text for (category, subCategory), replacing
	// any previous prompt for that pair.
	PutCategoryPrompt(ctx context.Context, category study.Category, subCategory, text string) error

	// PutLevelPrompt stores text for level, replacing any previous prompt.
	PutLevelPrompt(ctx context.Context, level study.Level, text string) error

	// ListCategoryPrompts returns every category prompt. Order is unspecified.
	ListCategoryPrompts(ctx context.Context) ([]study.AdminPrompt, error)

	// ListLevelPrompts returns every level prompt. Order is unspecified.
	ListLevelPrompts(ctx context.Context) ([]study.LevelPrompt, error)
}

// HistoryEntry is the caller-supplied part of a history item. The store
// assigns the ID and the timestamp.
type HistoryEntry struct {
	Query    string
	Response string
	Category study.Category
	Level    study.Level
}

// HistoryRepo is the append-only log of answered queries.
type HistoryRepo interface {
	// Append stores entry and returns the created item.
	Append(ctx context.Context, entry HistoryEntry) (*study.HistoryItem, error)

	// List returns the HistoryLimit most recent items, newest first. When
	// search is non-empty, only items whose query or response contains it
	// (case-insensitively) are kept. The filter runs after the cap, so an
	// older matching item is never returned.
	List(ctx context.Context, search string) ([]study.HistoryItem, error)
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // only events with this purpose, when set
}

// LLMRequestEventData captures the data for a single generation request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored generation request.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates generation requests under one key (purpose or model).
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records generation requests for cost tracking and debugging.
type EventRepo interface {
	// AppendLLMRequest records a generation call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns recorded calls, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns the call with the given id, or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates calls per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates calls per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// Repos bundles the repositories a backend provides.
type Repos interface {
	PromptRepo() PromptRepo
	HistoryRepo() HistoryRepo
	EventRepo() EventRepo
	Close() error
}
