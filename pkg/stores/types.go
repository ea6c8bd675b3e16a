package stores

import (
	"time"
)

// Run is a journaled synchronization run.
type Run struct {
	ID          string     `json:"id"`
	Mode        int        `json:"mode"`
	Status      string     `json:"status"`
	Cells       int        `json:"cells"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Placement is the journaled terminal state of one cell within a run.
type Placement struct {
	ID        int64         `json:"id"`
	RunID     string        `json:"run_id"`
	Row       int           `json:"row"`
	Column    int           `json:"column"`
	Variant   string        `json:"variant"`
	Attribute *string       `json:"attribute,omitempty"`
	Operation string        `json:"operation"`
	State     string        `json:"state"`
	Attempts  int           `json:"attempts"`
	Error     *string       `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// RunSummary aggregates the placements of a run.
type RunSummary struct {
	Run       *Run `json:"run"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Calls     int  `json:"calls"`
}
