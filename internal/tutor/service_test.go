package tutor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/llm"
	"github.com/mirrorsensei/sensei/internal/session"
	"github.com/mirrorsensei/sensei/internal/store"
	"github.com/mirrorsensei/sensei/internal/study"
)

type brokenHistory struct{}

func (brokenHistory) Append(context.Context, store.HistoryEntry) (*study.HistoryItem, error) {
	return nil, errors.New("disk full")
}

func (brokenHistory) List(context.Context, string) ([]study.HistoryItem, error) {
	return nil, errors.New("disk full")
}

type brokenPrompts struct{ store.PromptRepo }

func (brokenPrompts) ListCategoryPrompts(context.Context) ([]study.AdminPrompt, error) {
	return nil, errors.New("locked")
}

// blockingGenerator holds Study until release is closed.
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingGenerator) Study(context.Context, StudyRequest) string {
	close(b.started)
	<-b.release
	return "done"
}

func (b *blockingGenerator) Translate(context.Context, string, study.Language) string { return "" }
func (b *blockingGenerator) InstantQA(context.Context, string, string) string         { return "" }

func newTestService(t *testing.T, responses ...llm.MockResponse) (*Service, *llm.MockProvider, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	mock := llm.NewMockProvider(responses...)
	svc := NewService(mem.PromptRepo(), mem.HistoryRepo(), NewGenerator(mock, DefaultConfig(), nil), nil)
	return svc, mock, mem
}

func newSession() *session.Session {
	return session.New("test", auth.NewPlaceholder())
}

func TestAsk_RecordsHistoryAndContext(t *testing.T) {
	svc, mock, _ := newTestService(t, llm.MockResponse{Text: "Imagery is..."})
	ctx := context.Background()
	sess := newSession()
	sess.SetCategory(study.CategoryLiterature)
	sess.SetLevel(study.Level2)
	sess.SetTranslation("old translation")

	got, err := svc.Ask(ctx, sess, "Explain imagery in Daffodils")
	require.NoError(t, err)
	assert.Equal(t, "Imagery is...", got)
	assert.Equal(t, "Explain imagery in Daffodils", mock.Calls[0].Messages[0].Content)
	assert.Contains(t, mock.Calls[0].System, "specialized in Literature")

	st := sess.State()
	assert.Equal(t, "Imagery is...", st.Response)
	assert.Empty(t, st.Translation)
	assert.Empty(t, st.Pending)

	items, err := svc.History(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Explain imagery in Daffodils", items[0].Query)
	assert.Equal(t, "Imagery is...", items[0].Response)
	assert.Equal(t, study.CategoryLiterature, items[0].Category)
	assert.Equal(t, study.Level2, items[0].Level)
}

func TestAsk_UsesStoredPrompts(t *testing.T) {
	svc, mock, mem := newTestService(t, llm.MockResponse{Text: "ok"})
	ctx := context.Background()
	require.NoError(t, mem.PromptRepo().PutCategoryPrompt(ctx, study.CategoryPoem, "Line by Line", "Go line by line."))
	require.NoError(t, mem.PromptRepo().PutLevelPrompt(ctx, study.Level1, "Keep it simple."))

	_, err := svc.Ask(ctx, newSession(), "Explain")
	require.NoError(t, err)
	assert.Contains(t, mock.Calls[0].System, "[Line by Line Context]: Go line by line.")
	assert.Contains(t, mock.Calls[0].System, "Keep it simple.")
}

func TestAsk_EmptyQueryIsNoop(t *testing.T) {
	svc, mock, _ := newTestService(t)
	_, err := svc.Ask(context.Background(), newSession(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, 0, mock.CallCount())

	items, err := svc.History(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAsk_BackendFailureReturnsTextAndClearsPending(t *testing.T) {
	svc, _, _ := newTestService(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	sess := newSession()

	got, err := svc.Ask(context.Background(), sess, "Explain")
	require.NoError(t, err)
	assert.Equal(t, StudyUnavailableText, got)
	assert.False(t, sess.Pending(session.OpStudy))

	items, err := svc.History(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, StudyUnavailableText, items[0].Response)
}

func TestAsk_StoreFailuresDoNotSurface(t *testing.T) {
	mem := store.NewMemory()
	mock := llm.NewMockProvider(llm.MockResponse{Text: "answer"})
	svc := NewService(brokenPrompts{mem.PromptRepo()}, brokenHistory{}, NewGenerator(mock, DefaultConfig(), nil), nil)
	sess := newSession()

	got, err := svc.Ask(context.Background(), sess, "Explain")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.Contains(t, mock.Calls[0].System, "Provide detailed educational analysis.")
	assert.False(t, sess.Pending(session.OpStudy))

	_, err = svc.History(context.Background(), "")
	assert.Error(t, err)
}

func TestAsk_RefusesConcurrentSubmission(t *testing.T) {
	mem := store.NewMemory()
	gen := &blockingGenerator{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(mem.PromptRepo(), mem.HistoryRepo(), gen, nil)
	sess := newSession()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, err := svc.Ask(context.Background(), sess, "first")
		assert.NoError(t, err)
		assert.Equal(t, "done", got)
	}()

	<-gen.started
	_, err := svc.Ask(context.Background(), sess, "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(gen.release)
	wg.Wait()
	assert.False(t, sess.Pending(session.OpStudy))

	items, err := mem.HistoryRepo().List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestTranslate_UsesSessionLanguage(t *testing.T) {
	svc, mock, _ := newTestService(t, llm.MockResponse{Text: "ওহে বিশ্ব"}, llm.MockResponse{Err: errors.New("x")})
	sess := newSession()

	got, err := svc.Translate(context.Background(), sess, "Hello world")
	require.NoError(t, err)
	assert.Equal(t, "ওহে বিশ্ব", got)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "educational Bengali: Hello world")
	assert.Equal(t, "ওহে বিশ্ব", sess.State().Translation)

	sess.SetLanguage(study.Bengali)
	got, err = svc.Translate(context.Background(), sess, "ওহে")
	require.NoError(t, err)
	assert.Equal(t, TranslateFailedText, got)
	assert.Contains(t, mock.Calls[1].Messages[0].Content, "academic English")
	assert.False(t, sess.Pending(session.OpTranslate))

	_, err = svc.Translate(context.Background(), sess, "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestInstantQA_UsesLatestResponse(t *testing.T) {
	svc, mock, _ := newTestService(t,
		llm.MockResponse{Text: "no context answer"},
		llm.MockResponse{Text: "Daffodils text"},
		llm.MockResponse{Text: "Wordsworth"},
	)
	ctx := context.Background()
	sess := newSession()

	got, err := svc.InstantQA(ctx, sess, "Who?")
	require.NoError(t, err)
	assert.Equal(t, "no context answer", got)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "No current context.")

	_, err = svc.Ask(ctx, sess, "Explain Daffodils")
	require.NoError(t, err)
	_, err = svc.InstantQA(ctx, sess, "Who wrote it?")
	require.NoError(t, err)
	assert.Contains(t, mock.Calls[2].Messages[0].Content, "CONTEXT MATERIAL:\nDaffodils text")
	assert.Equal(t, "Wordsworth", sess.State().Answer)
	assert.False(t, sess.Pending(session.OpInstantQA))
}

func TestSavePrompts_RequireAuthentication(t *testing.T) {
	svc, _, mem := newTestService(t)
	ctx := context.Background()
	sess := newSession()

	err := svc.SaveCategoryPrompt(ctx, sess, study.CategoryPoem, "Q & A", "text")
	assert.ErrorIs(t, err, ErrUnauthorized)
	err = svc.SaveLevelPrompt(ctx, sess, study.Level1, "text")
	assert.ErrorIs(t, err, ErrUnauthorized)

	sess.OpenLogin()
	ok, err := sess.Login(ctx, auth.Credentials{Username: "Hacker", Passcode: "444"})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.SaveCategoryPrompt(ctx, sess, study.CategoryPoem, "Q & A", "first"))
	require.NoError(t, svc.SaveCategoryPrompt(ctx, sess, study.CategoryPoem, "Q & A", "second"))
	require.NoError(t, svc.SaveLevelPrompt(ctx, sess, study.Level2, "level text"))

	set, err := svc.Prompts(ctx)
	require.NoError(t, err)
	require.Len(t, set.Category, 1)
	assert.Equal(t, "Poem_Q_&_A", set.Category[0].ID)
	assert.Equal(t, "second", set.Category[0].Prompt)
	require.Len(t, set.Level, 1)
	assert.Equal(t, "Level_2", set.Level[0].ID)

	sess.Logout()
	assert.ErrorIs(t, svc.SaveLevelPrompt(ctx, sess, study.Level2, "x"), ErrUnauthorized)

	levels, err := mem.PromptRepo().ListLevelPrompts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "level text", levels[0].Prompt)
}
