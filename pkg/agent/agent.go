// Package agent implements the research, solve, and refine capabilities
// behind the session pipeline: a math-focused LLM agent with input
// guardrails, knowledge-base retrieval, and output formatting.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harun/mathwise/pkg/knowledge"
	"github.com/harun/mathwise/pkg/session"
)

const defaultRetrievalLimit = 5

// Retriever is the knowledge-base lookup used before falling back to a
// direct LLM research call.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]knowledge.SearchResult, error)
}

// Config holds math agent configuration.
type Config struct {
	Provider    LLMProvider
	Model       string
	Temperature float64
	MaxTokens   int
	Retriever   Retriever // optional
	Logger      zerolog.Logger
}

// MathAgent implements the pipeline's Researcher and Solver capabilities.
type MathAgent struct {
	provider    LLMProvider
	model       string
	temperature float64
	maxTokens   int
	retriever   Retriever
	logger      zerolog.Logger
}

// New creates a math agent.
func New(cfg Config) (*MathAgent, error) {
	if cfg.Provider == nil {
		return nil, errors.New("llm provider is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}
	return &MathAgent{
		provider:    cfg.Provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		retriever:   cfg.Retriever,
		logger:      cfg.Logger.With().Str("component", "math_agent").Str("provider", cfg.Provider.Name()).Logger(),
	}, nil
}

// Research gathers mathematical context for a topic: knowledge-base
// retrieval first, then a direct LLM research call seeded with whatever
// the corpus returned. Errors are reported to the caller, which owns the
// degraded-mode policy.
func (a *MathAgent) Research(ctx context.Context, topic string) (string, error) {
	if ok, _ := ValidateMathInput(topic); !ok {
		// Solve rejects non-math input with a final answer; there is
		// nothing to research.
		return "", nil
	}

	references := a.retrieve(ctx, topic)

	findings, err := a.provider.Complete(ctx, CompletionRequest{
		Model:        a.model,
		SystemPrompt: researcherSystemPrompt,
		Prompt:       researchPrompt(topic, references),
		Temperature:  a.temperature,
		MaxTokens:    a.maxTokens,
	})
	if err != nil {
		if references != "" {
			// The corpus already produced usable context; better a
			// citation-only answer than none.
			a.logger.Warn().Err(err).Msg("Research completion failed, returning raw references")
			return references, nil
		}
		return "", fmt.Errorf("research completion failed: %w", err)
	}

	return findings, nil
}

// Solve produces a step-by-step solution draft. Non-math input yields a
// final rejection draft that skips the review round.
func (a *MathAgent) Solve(ctx context.Context, topic, findings string) (session.Draft, error) {
	if ok, msg := ValidateMathInput(topic); !ok {
		return session.Draft{Content: msg, Final: true}, nil
	}

	solution, err := a.provider.Complete(ctx, CompletionRequest{
		Model:        a.model,
		SystemPrompt: solverSystemPrompt,
		Prompt:       solvePrompt(topic, findings),
		Temperature:  a.temperature,
		MaxTokens:    a.maxTokens,
	})
	if err != nil {
		return session.Draft{}, fmt.Errorf("solve completion failed: %w", err)
	}

	return session.Draft{Content: FormatMathOutput(solution)}, nil
}

// Refine revises a draft based on user feedback.
func (a *MathAgent) Refine(ctx context.Context, draft, feedback, topic string) (session.Draft, error) {
	revised, err := a.provider.Complete(ctx, CompletionRequest{
		Model:        a.model,
		SystemPrompt: solverSystemPrompt,
		Prompt:       refinePrompt(topic, draft, feedback),
		Temperature:  a.temperature,
		MaxTokens:    a.maxTokens,
	})
	if err != nil {
		return session.Draft{}, fmt.Errorf("refine completion failed: %w", err)
	}

	return session.Draft{Content: FormatMathOutput(revised)}, nil
}

// retrieve formats the knowledge-base hits for a topic as reference
// material. Retrieval failures degrade to no references.
func (a *MathAgent) retrieve(ctx context.Context, topic string) string {
	if a.retriever == nil {
		return ""
	}

	results, err := a.retriever.Search(ctx, topic, defaultRetrievalLimit)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Knowledge retrieval failed, continuing without references")
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s] %s\n%s", r.Entry.ID, r.Entry.Title, r.Entry.Content)
	}
	return sb.String()
}
