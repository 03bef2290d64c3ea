package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mirrorsensei/sensei/internal/logging"
	"github.com/mirrorsensei/sensei/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event
// and writes a structured log line for it.
type LoggingProvider struct {
	inner     Provider
	name      string
	eventRepo store.EventRepo
	log       *logging.Logger
}

// WithLogging wraps a Provider with event logging. name is the provider
// setting ("gemini", "openai", ...) recorded with each event.
func WithLogging(p Provider, name string, repo store.EventRepo, log *logging.Logger) Provider {
	if log == nil {
		log = logging.Nop()
	}
	return &LoggingProvider{inner: p, name: name, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latencyMs,
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = resp.Text
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", "provider", l.name, "purpose", purpose, "latency_ms", latencyMs, "error", err)
	} else {
		l.log.Debug("llm request", "provider", l.name, "model", data.Model, "purpose", purpose,
			"latency_ms", latencyMs, "input_tokens", data.InputTokens, "output_tokens", data.OutputTokens)
	}

	// Recording is best effort; the caller still gets the response.
	if logErr := l.eventRepo.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil {
		l.log.Warn("failed to record LLM request event", "error", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "[temperature: %.2f]\n", req.Temperature)
	return b.String()
}
