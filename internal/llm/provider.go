package llm

import "context"

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive generated text.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its text response.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system instruction. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation. Every call in Sensei is single-turn,
	// so this holds exactly one user message.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	// Zero leaves the provider default in place where the API allows it.
	MaxTokens int

	// Temperature controls randomness. It is always sent to the backend,
	// including an explicit 0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Response holds the LLM's output.
type Response struct {
	// Text is the generated output. It may be empty.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
