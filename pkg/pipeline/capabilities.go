package pipeline

import (
	"context"
	"fmt"

	"github.com/harun/mathwise/pkg/session"
)

// Pipeline stage names, used in errors and metrics labels.
const (
	StageResearch = "research"
	StageSolve    = "solve"
	StageRefine   = "refine"
)

// Researcher gathers context for a topic. Implementations may be slow and
// may fail; the runner degrades to empty findings on failure.
type Researcher interface {
	Research(ctx context.Context, topic string) (string, error)
}

// Solver produces and revises solution drafts. A failed Solve or Refine
// is fatal to the current step.
type Solver interface {
	Solve(ctx context.Context, topic, findings string) (session.Draft, error)
	Refine(ctx context.Context, draft, feedback, topic string) (session.Draft, error)
}

// CapabilityError records a failed call into an external capability. It
// never escapes the runner or gate boundary: it is translated into the
// session's terminal error status and surfaced through polling.
type CapabilityError struct {
	Stage string
	Err   error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s capability failed: %v", e.Stage, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}
