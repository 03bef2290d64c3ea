package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorsensei/sensei/internal/llm"
	"github.com/mirrorsensei/sensei/internal/study"
)

func TestStudy_SendsQueryVerbatimWithFallbackInstruction(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "Daffodils uses vivid imagery."})
	g := NewGenerator(mock, DefaultConfig(), nil)

	got := g.Study(context.Background(), StudyRequest{
		Query:    "Explain imagery in Daffodils",
		Category: study.CategoryPoem,
		Level:    study.Level1,
		Language: study.English,
	})

	assert.Equal(t, "Daffodils uses vivid imagery.", got)
	req, ok := mock.LastCall()
	require.True(t, ok)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "Explain imagery in Daffodils", req.Messages[0].Content)
	assert.Contains(t, req.System, "Provide detailed educational analysis.")
	assert.Contains(t, req.System, "Adjust vocabulary and complexity to suit the selected level.")
	assert.Equal(t, 0.7, req.Temperature)
	assert.Zero(t, req.MaxTokens, "no output cap unless configured")
}

func TestStudy_EmptyAndFailure(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: ""},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("dial tcp: timeout")}},
	)
	g := NewGenerator(mock, DefaultConfig(), nil)
	req := StudyRequest{Query: "q", Category: study.CategoryDrama, Level: study.Level2, Language: study.English}

	assert.Equal(t, "Sensei is reflecting... please try your question again.", g.Study(context.Background(), req))
	assert.Equal(t, "Error: Sensei is currently unavailable. Please check your connection.", g.Study(context.Background(), req))
	assert.Equal(t, 2, mock.CallCount(), "failures are not retried")
}

func TestTranslate_Direction(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "ওহে বিশ্ব"}, llm.MockResponse{Text: "Hello"})
	g := NewGenerator(mock, DefaultConfig(), nil)

	assert.Equal(t, "ওহে বিশ্ব", g.Translate(context.Background(), "Hello world", study.English))
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "into natural, educational Bengali: Hello world")
	assert.Equal(t, translatorSystemPrompt, mock.Calls[0].System)
	assert.Equal(t, 0.3, mock.Calls[0].Temperature)

	g.Translate(context.Background(), "anything", study.Bengali)
	assert.Contains(t, mock.Calls[1].Messages[0].Content, "into clear, academic English: anything")
}

func TestTranslate_EmptyAndFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: ""}, llm.MockResponse{Err: errors.New("boom")})
	g := NewGenerator(mock, DefaultConfig(), nil)

	assert.Equal(t, "", g.Translate(context.Background(), "x", study.English))
	assert.Equal(t, "Translation temporarily unavailable.", g.Translate(context.Background(), "x", study.English))
}

func TestInstantQA(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: "Wordsworth."},
		llm.MockResponse{Text: ""},
		llm.MockResponse{Err: errors.New("boom")},
	)
	g := NewGenerator(mock, DefaultConfig(), nil)
	ctx := context.Background()

	assert.Equal(t, "Wordsworth.", g.InstantQA(ctx, "Who wrote it?", "Daffodils by Wordsworth"))
	assert.Equal(t, qaSystemPrompt, mock.Calls[0].System)
	assert.Equal(t, 0.4, mock.Calls[0].Temperature)
	assert.Equal(t, "CONTEXT MATERIAL:\nDaffodils by Wordsworth\n\nSTUDENT QUESTION:\nWho wrote it?", mock.Calls[0].Messages[0].Content)

	assert.Equal(t, "", g.InstantQA(ctx, "q", ""))
	assert.Contains(t, mock.Calls[1].Messages[0].Content, "No current context.")

	assert.Equal(t, "QA module failed to load. Please try again.", g.InstantQA(ctx, "q", "c"))
}
