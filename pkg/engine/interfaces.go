package engine

import "context"

// Placeable is implemented by every object that can be placed on or removed
// from a grid coordinate of the remote service.
type Placeable interface {
	// Name returns the canonical lowercase variant name.
	Name() string

	// Place validates the attribute and issues exactly one create request.
	// An empty attribute means none was supplied.
	Place(ctx context.Context, row, column int, attribute string) error

	// Remove issues exactly one delete request for the coordinate.
	Remove(ctx context.Context, row, column int) error
}

// Resolver maps a variant name to a freshly constructed Placeable.
type Resolver interface {
	// Resolve performs a case-insensitive lookup. It fails with an
	// UnknownVariant error when no variant is registered under name.
	Resolve(name string) (Placeable, error)
}

// GoalSource fetches the goal grid for the configured candidate.
type GoalSource interface {
	FetchGoal(ctx context.Context) (GoalGrid, error)
}

// Journal records run history. Implementations must tolerate being called
// sequentially from a single goroutine; no concurrent use is required.
type Journal interface {
	// BeginRun records the start of a run.
	BeginRun(ctx context.Context, run RunRecord) error

	// RecordPlacement records the terminal state of one cell.
	RecordPlacement(ctx context.Context, rec PlacementRecord) error

	// FinishRun records the final status, and the error message on failure.
	FinishRun(ctx context.Context, runID string, status RunStatus, errMsg string) error
}
