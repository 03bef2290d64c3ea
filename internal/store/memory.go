package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mirrorsensei/sensei/internal/study"
)

// Memory is an in-process backend holding everything in maps and slices.
// It serves tests and the --ephemeral mode; nothing survives Close.
type Memory struct {
	mu             sync.RWMutex
	categoryPrompt map[string]study.AdminPrompt
	levelPrompt    map[string]study.LevelPrompt
	history        []study.HistoryItem // oldest first
	events         []LLMEventRecord
	seq            int64
	now            func() time.Time
}

var _ Repos = (*Memory)(nil)

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		categoryPrompt: make(map[string]study.AdminPrompt),
		levelPrompt:    make(map[string]study.LevelPrompt),
		now:            time.Now,
	}
}

func (m *Memory) PromptRepo() PromptRepo   { return (*memoryPrompts)(m) }
func (m *Memory) HistoryRepo() HistoryRepo { return (*memoryHistory)(m) }
func (m *Memory) EventRepo() EventRepo     { return (*memoryEvents)(m) }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func (m *Memory) nextSeq() int64 {
	m.seq++
	return m.seq
}

type memoryPrompts Memory

func (p *memoryPrompts) PutCategoryPrompt(_ context.Context, category study.Category, subCategory, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := study.CategoryPromptKey(category, subCategory)
	p.categoryPrompt[id] = study.AdminPrompt{
		ID:          id,
		Category:    category,
		SubCategory: subCategory,
		Prompt:      text,
		UpdatedAt:   p.now().UTC(),
	}
	return nil
}

func (p *memoryPrompts) PutLevelPrompt(_ context.Context, level study.Level, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := study.LevelPromptKey(level)
	p.levelPrompt[id] = study.LevelPrompt{
		ID:        id,
		Level:     level,
		Prompt:    text,
		UpdatedAt: p.now().UTC(),
	}
	return nil
}

func (p *memoryPrompts) ListCategoryPrompts(context.Context) ([]study.AdminPrompt, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]study.AdminPrompt, 0, len(p.categoryPrompt))
	for _, v := range p.categoryPrompt {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b study.AdminPrompt) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (p *memoryPrompts) ListLevelPrompts(context.Context) ([]study.LevelPrompt, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]study.LevelPrompt, 0, len(p.levelPrompt))
	for _, v := range p.levelPrompt {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b study.LevelPrompt) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

type memoryHistory Memory

func (h *memoryHistory) Append(_ context.Context, entry HistoryEntry) (*study.HistoryItem, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ts := h.now().UTC().Truncate(time.Millisecond)
	// Keep timestamps non-decreasing even if the clock steps back.
	if n := len(h.history); n > 0 && ts.Before(h.history[n-1].Timestamp) {
		ts = h.history[n-1].Timestamp
	}
	(*Memory)(h).nextSeq()

	item := study.HistoryItem{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Query:     entry.Query,
		Response:  entry.Response,
		Category:  entry.Category,
		Level:     entry.Level,
	}
	h.history = append(h.history, item)
	return &item, nil
}

func (h *memoryHistory) List(_ context.Context, search string) ([]study.HistoryItem, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := min(len(h.history), HistoryLimit)
	recent := make([]study.HistoryItem, 0, n)
	for i := len(h.history) - 1; i >= len(h.history)-n; i-- {
		recent = append(recent, h.history[i])
	}
	return filterHistory(recent, search), nil
}

type memoryEvents Memory

func (e *memoryEvents) AppendLLMRequest(_ context.Context, data LLMRequestEventData) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	seq := (*Memory)(e).nextSeq()
	e.events = append(e.events, LLMEventRecord{
		ID:                  len(e.events) + 1,
		Sequence:            seq,
		Timestamp:           e.now().UTC(),
		LLMRequestEventData: data,
	})
	return nil
}

func (e *memoryEvents) QueryLLMEvents(_ context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []LLMEventRecord
	for i := len(e.events) - 1; i >= 0; i-- {
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
		if opts.Purpose != "" && e.events[i].Purpose != opts.Purpose {
			continue
		}
		out = append(out, e.events[i])
	}
	return out, nil
}

func (e *memoryEvents) GetLLMEvent(_ context.Context, id int) (*LLMEventRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if id < 1 || id > len(e.events) {
		return nil, ErrNotFound
	}
	rec := e.events[id-1]
	return &rec, nil
}

func (e *memoryEvents) LLMUsageByPurpose(context.Context) ([]LLMUsage, error) {
	return e.usageBy(func(d LLMRequestEventData) string { return d.Purpose }, func(u *LLMUsage, k string) { u.Purpose = k }), nil
}

func (e *memoryEvents) LLMUsageByModel(context.Context) ([]LLMUsage, error) {
	return e.usageBy(func(d LLMRequestEventData) string { return d.Model }, func(u *LLMUsage, k string) { u.Model = k }), nil
}

func (e *memoryEvents) usageBy(key func(LLMRequestEventData) string, set func(*LLMUsage, string)) []LLMUsage {
	e.mu.RLock()
	defer e.mu.RUnlock()

	type acc struct {
		usage   LLMUsage
		latency int64
	}
	byKey := make(map[string]*acc)
	var keys []string
	for _, ev := range e.events {
		k := key(ev.LLMRequestEventData)
		a, ok := byKey[k]
		if !ok {
			a = &acc{}
			set(&a.usage, k)
			byKey[k] = a
			keys = append(keys, k)
		}
		a.usage.Calls++
		a.usage.InputTokens += ev.InputTokens
		a.usage.OutputTokens += ev.OutputTokens
		a.latency += ev.LatencyMs
	}
	slices.Sort(keys)

	out := make([]LLMUsage, 0, len(keys))
	for _, k := range keys {
		a := byKey[k]
		a.usage.AvgLatencyMs = a.latency / int64(a.usage.Calls)
		out = append(out, a.usage)
	}
	return out
}
