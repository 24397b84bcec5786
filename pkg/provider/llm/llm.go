// Package llm defines the Provider interface for Large Language Model backends.
//
// A provider wraps a remote or local chat-completion API (e.g. OpenAI, an
// OpenRouter-compatible endpoint, or a local Ollama instance) and exposes a
// uniform interface the narrative engine can call without coupling to any
// specific SDK. The engine only ever needs a single bounded completion per
// interrogation turn, so the interface is deliberately small: no streaming,
// no tool calling.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly.
package llm

import "context"

// Message is a single entry in a chat conversation.
type Message struct {
	// Role is one of "system", "user" or "assistant".
	Role string

	// Content is the text content of the message.
	Content string

	// Name is an optional participant name (the character speaking).
	Name string
}

// Usage holds token accounting returned by the backend. Counts are in the
// model's native token unit and may differ between providers for the same text.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the model needs to produce a reply.
// A zero-value request is invalid; at minimum Messages must be non-empty.
type CompletionRequest struct {
	// SystemPrompt is a high-priority instruction injected before the
	// conversation. Providers that lack a dedicated system slot prepend it
	// as a "system"-role message.
	SystemPrompt string

	// Messages is the ordered conversation history; the last message is the
	// player's current question and drives the response.
	Messages []Message

	// Temperature controls output randomness in [0.0, 2.0]. Zero means the
	// provider default.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
}

// CompletionResponse is the full (non-streamed) model reply.
type CompletionResponse struct {
	// Content is the raw text of the reply, before any marker parsing.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// ModelCapabilities describes static limits of the configured model.
type ModelCapabilities struct {
	// ContextWindow is the maximum token count for input + output.
	ContextWindow int

	// MaxOutputTokens is the maximum tokens one completion may generate.
	MaxOutputTokens int
}

// Provider is the abstraction over any chat-completion backend.
//
// Implementations must be safe for concurrent use from multiple goroutines
// and must return as soon as possible once ctx is cancelled.
type Provider interface {
	// Complete sends req to the model and waits for the full reply. Returns
	// an error if the request fails or ctx expires first; the caller decides
	// how to degrade (the engine falls back to canned character replies).
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CountTokens estimates how many tokens messages would consume in the
	// model's context window. The result need not be exact but should not
	// undercount.
	CountTokens(messages []Message) (int, error)

	// Capabilities returns static metadata about the underlying model,
	// assumed constant for the lifetime of the Provider instance.
	Capabilities() ModelCapabilities
}
