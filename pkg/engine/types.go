package engine

import (
	"fmt"
	"strings"
	"time"
)

// GoalGrid is the target layout fetched from the remote service. Row and
// column indices are positions in the nested slices.
type GoalGrid [][]string

// Rows returns the number of rows in the grid.
func (g GoalGrid) Rows() int {
	return len(g)
}

// Count returns the number of cells that are not the reserved no-op label.
func (g GoalGrid) Count() int {
	n := 0
	for _, row := range g {
		for _, label := range row {
			if !strings.EqualFold(label, SpaceLabel) {
				n++
			}
		}
	}
	return n
}

// String renders the grid one row per line.
func (g GoalGrid) String() string {
	var b strings.Builder
	for i, row := range g {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(row, " "))
	}
	return b.String()
}

// PlacementCommand is the per-cell instruction derived from a grid label.
// An empty Attribute means the command carries no attribute.
type PlacementCommand struct {
	Row       int    `json:"row"`
	Column    int    `json:"column"`
	Variant   string `json:"variant"`
	Attribute string `json:"attribute,omitempty"`
}

// String returns a compact description used in logs.
func (c PlacementCommand) String() string {
	if c.Attribute == "" {
		return fmt.Sprintf("%s@(%d,%d)", c.Variant, c.Row, c.Column)
	}
	return fmt.Sprintf("%s[%s]@(%d,%d)", c.Variant, c.Attribute, c.Row, c.Column)
}

// CellState tracks a single cell through the placement state machine:
// Pending -> Attempting -> {Succeeded | RateLimited -> Attempting | FailedFatal}.
type CellState string

const (
	CellStatePending     CellState = "pending"
	CellStateAttempting  CellState = "attempting"
	CellStateRateLimited CellState = "rate_limited"
	CellStateSucceeded   CellState = "succeeded"
	CellStateFailedFatal CellState = "failed_fatal"
	CellStateSkipped     CellState = "skipped"
)

// IsTerminal returns true if no further transitions are possible.
func (s CellState) IsTerminal() bool {
	return s == CellStateSucceeded || s == CellStateFailedFatal || s == CellStateSkipped
}

// String implements fmt.Stringer.
func (s CellState) String() string {
	return string(s)
}

// RunStatus represents the overall status of a synchronization run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal returns true if the run status represents a final state.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSucceeded || s == RunStatusFailed || s == RunStatusCancelled
}

// RunResult summarizes a completed run.
type RunResult struct {
	RunID    string        `json:"run_id"`
	Mode     RunMode       `json:"mode"`
	Status   RunStatus     `json:"status"`
	Placed   int           `json:"placed"`
	Skipped  int           `json:"skipped"`
	Calls    int           `json:"calls"`
	Duration time.Duration `json:"duration"`
}

// RunRecord is what the synchronizer hands to a Journal when a run begins.
type RunRecord struct {
	ID        string
	Mode      RunMode
	Cells     int
	StartedAt time.Time
}

// PlacementRecord is the journaled outcome of a single cell.
type PlacementRecord struct {
	RunID     string
	Command   PlacementCommand
	Operation string
	State     CellState
	Attempts  int
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}
