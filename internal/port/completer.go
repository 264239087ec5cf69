package port

import "context"

// CompletionRequest carries a single prompt for an LLM provider.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	JSONOutput  bool // ask the provider for a JSON-only response where supported
}

// Completion is the raw text returned by an LLM provider.
type Completion struct {
	Text     string
	Model    string
	Provider string
}

// Completer abstracts a text-completion LLM provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}
