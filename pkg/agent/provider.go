package agent

import "context"

// CompletionRequest is a single-turn completion call to an LLM provider.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
	Temperature  float64
	MaxTokens    int
}

// LLMProvider abstracts the model backend used for research, solve, and
// refine calls.
type LLMProvider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
