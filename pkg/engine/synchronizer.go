package engine

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/megaverse/megaverse/pkg/telemetry"
)

// DefaultBaseDelay is the backoff unit. The delay before attempt k (k >= 2)
// is DefaultBaseDelay * 2^(k-2).
const DefaultBaseDelay = time.Second

// DefaultMaxAttempts is the attempt budget per cell when none is configured.
const DefaultMaxAttempts = 5

// MaxBackoff is the longest delay backoff ever returns. Delays for large
// attempt numbers saturate here instead of overflowing.
const MaxBackoff = time.Duration(math.MaxInt64)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures a Synchronizer. Zero values select defaults.
type Options struct {
	// Logger overrides the logger carried by the run context.
	Logger  *telemetry.Logger
	Metrics *telemetry.Metrics
	Tracer  *telemetry.Tracer

	// Journal records run history. Nil disables journaling.
	Journal Journal

	// BaseDelay is the backoff unit.
	BaseDelay time.Duration

	// Sleep replaces the backoff wait, mainly for tests.
	Sleep SleepFunc
}

// Synchronizer reproduces a goal grid on the remote service. Placements run
// sequentially in row-major order and the first fatal error aborts the run.
type Synchronizer struct {
	goals    GoalSource
	resolver Resolver

	logger    *telemetry.Logger
	metrics   *telemetry.Metrics
	tracer    *telemetry.Tracer
	journal   Journal
	baseDelay time.Duration
	sleep     SleepFunc
}

// NewSynchronizer creates a new synchronizer.
func NewSynchronizer(goals GoalSource, resolver Resolver, opts Options) *Synchronizer {
	s := &Synchronizer{
		goals:     goals,
		resolver:  resolver,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		journal:   opts.Journal,
		baseDelay: opts.BaseDelay,
		sleep:     opts.Sleep,
	}
	if s.tracer == nil {
		s.tracer = telemetry.NewNopTracer()
	}
	if s.baseDelay <= 0 {
		s.baseDelay = DefaultBaseDelay
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}
	if s.logger != nil {
		s.logger = s.logger.NewComponentLogger("synchronizer")
	}
	return s
}

// loggerFor returns the configured logger, falling back to the one carried
// by ctx.
func (s *Synchronizer) loggerFor(ctx context.Context) *telemetry.Logger {
	if s.logger != nil {
		return s.logger
	}
	return telemetry.FromContext(ctx).NewComponentLogger("synchronizer")
}

// FetchGoal retrieves the goal grid. Errors are fatal and never retried.
func (s *Synchronizer) FetchGoal(ctx context.Context) (GoalGrid, error) {
	logger := s.loggerFor(ctx)
	grid, err := s.goals.FetchGoal(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to fetch goal map")
		return nil, withContext(err, func(e *EngineError) {
			if e.Operation == "" {
				e.Operation = OperationFetchGoal
			}
		})
	}
	logger.WithField("rows", grid.Rows()).WithField("cells", grid.Count()).Info("Goal map retrieved")
	return grid, nil
}

// Run fetches the goal grid and applies it.
func (s *Synchronizer) Run(ctx context.Context, mode RunMode, maxAttempts int) (*RunResult, error) {
	grid, err := s.FetchGoal(ctx)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, grid, mode, maxAttempts)
}

// Apply places every non-skipped cell of grid in row-major order. Only
// rate-limited placements are retried; any other error, or exhausting
// maxAttempts, aborts the run with no further cells processed.
func (s *Synchronizer) Apply(ctx context.Context, grid GoalGrid, mode RunMode, maxAttempts int) (*RunResult, error) {
	parse, err := mode.Parser()
	if err != nil {
		return nil, err
	}
	if maxAttempts < 1 {
		return nil, NewValidationError("max attempts must be at least 1, got %d", maxAttempts)
	}

	result := &RunResult{
		RunID:  uuid.New().String(),
		Mode:   mode,
		Status: RunStatusRunning,
	}
	timer := telemetry.NewTimer()
	logger := s.loggerFor(ctx).WithRunID(result.RunID).WithField("mode", mode.String())

	ctx, span := s.tracer.StartRunSpan(ctx, result.RunID, mode.String())
	defer span.End()

	s.metrics.RecordRunStarted(mode.String())
	if s.journal != nil {
		if err := s.journal.BeginRun(ctx, RunRecord{
			ID:        result.RunID,
			Mode:      mode,
			Cells:     grid.Count(),
			StartedAt: time.Now(),
		}); err != nil {
			logger.WithError(err).Warn("Failed to journal run start")
		}
	}
	logger.WithField("max_attempts", maxAttempts).Info("Starting run")

	// Instances live for this run only.
	instances := make(map[string]Placeable)

	runErr := s.applyGrid(ctx, grid, parse, maxAttempts, instances, result, logger)

	result.Duration = timer.Duration()
	switch {
	case runErr == nil:
		result.Status = RunStatusSucceeded
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded):
		result.Status = RunStatusCancelled
	default:
		result.Status = RunStatusFailed
	}

	s.metrics.RecordRunCompleted(string(result.Status), result.Duration)
	if s.journal != nil {
		msg := ""
		if runErr != nil {
			msg = runErr.Error()
		}
		if err := s.journal.FinishRun(ctx, result.RunID, result.Status, msg); err != nil {
			logger.WithError(err).Warn("Failed to journal run completion")
		}
	}

	if runErr != nil {
		telemetry.RecordError(span, runErr)
		s.recordFatal(runErr)
		logger.WithError(runErr).
			WithField("placed", result.Placed).
			WithField("calls", result.Calls).
			Error("Run aborted")
		return result, runErr
	}

	telemetry.RecordSuccess(span)
	logger.WithFields(map[string]interface{}{
		"placed":   result.Placed,
		"skipped":  result.Skipped,
		"calls":    result.Calls,
		"duration": result.Duration.String(),
	}).Info("Run completed")
	return result, nil
}

func (s *Synchronizer) applyGrid(
	ctx context.Context,
	grid GoalGrid,
	parse LabelParser,
	maxAttempts int,
	instances map[string]Placeable,
	result *RunResult,
	logger *telemetry.Logger,
) error {
	for row, cells := range grid {
		for column, raw := range cells {
			if err := ctx.Err(); err != nil {
				return err
			}

			label, err := parse(raw)
			if err != nil {
				return withContext(err, func(e *EngineError) {
					e.WithCell(row, column).WithOperation(OperationPlace)
				})
			}
			if label.Skip {
				result.Skipped++
				s.metrics.RecordCell(string(CellStateSkipped))
				continue
			}

			placeable, err := s.instance(instances, label.Variant)
			if err != nil {
				return withContext(err, func(e *EngineError) {
					e.WithCell(row, column).WithOperation(OperationPlace)
				})
			}

			cmd := PlacementCommand{
				Row:       row,
				Column:    column,
				Variant:   label.Variant,
				Attribute: label.Attribute,
			}
			calls, err := s.placeWithRetry(ctx, result.RunID, placeable, cmd, maxAttempts, logger)
			result.Calls += calls
			if err != nil {
				return err
			}
			result.Placed++
		}
	}
	return nil
}

// instance resolves a variant, caching it for the remainder of the run.
func (s *Synchronizer) instance(instances map[string]Placeable, variant string) (Placeable, error) {
	if p, ok := instances[variant]; ok {
		return p, nil
	}
	p, err := s.resolver.Resolve(variant)
	if err != nil {
		return nil, err
	}
	instances[variant] = p
	return p, nil
}

// Remove deletes a single cell, retrying rate-limited responses the same
// way placements are retried.
func (s *Synchronizer) Remove(ctx context.Context, variant string, row, column, maxAttempts int) error {
	if maxAttempts < 1 {
		return NewValidationError("max attempts must be at least 1, got %d", maxAttempts)
	}
	if row < 0 || column < 0 {
		return NewValidationError("row and column must be non-negative, got (%d,%d)", row, column)
	}
	label, err := ParseBareLabel(variant)
	if err != nil {
		return err
	}
	if label.Skip {
		return NewValidationError("%q cannot be removed", variant)
	}
	placeable, err := s.resolver.Resolve(label.Variant)
	if err != nil {
		return withContext(err, func(e *EngineError) {
			e.WithCell(row, column).WithOperation(OperationRemove)
		})
	}

	cmd := PlacementCommand{Row: row, Column: column, Variant: placeable.Name()}
	op := func(ctx context.Context) error {
		return placeable.Remove(ctx, row, column)
	}
	_, err = s.attempt(ctx, "", OperationRemove, cmd, maxAttempts, op, s.loggerFor(ctx))
	if err != nil {
		s.recordFatal(err)
	}
	return err
}

func (s *Synchronizer) placeWithRetry(
	ctx context.Context,
	runID string,
	p Placeable,
	cmd PlacementCommand,
	maxAttempts int,
	logger *telemetry.Logger,
) (int, error) {
	op := func(ctx context.Context) error {
		return p.Place(ctx, cmd.Row, cmd.Column, cmd.Attribute)
	}
	return s.attempt(ctx, runID, OperationPlace, cmd, maxAttempts, op, logger)
}

// attempt drives one cell through the state machine and returns the number
// of calls made.
func (s *Synchronizer) attempt(
	ctx context.Context,
	runID, operation string,
	cmd PlacementCommand,
	maxAttempts int,
	op func(ctx context.Context) error,
	logger *telemetry.Logger,
) (int, error) {
	cellLogger := logger.WithCell(cmd.Row, cmd.Column, cmd.Variant)
	if cmd.Attribute != "" {
		cellLogger = cellLogger.WithField("attribute", cmd.Attribute)
	}

	ctx, span := s.tracer.StartCellSpan(ctx, operation, cmd.Row, cmd.Column, cmd.Variant)
	defer span.End()

	started := time.Now()
	state := CellStatePending
	var lastErr error
	calls := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := s.backoff(attempt)
			cellLogger.Warnf("Rate limit reached, retrying in %s (attempt %d/%d)", delay, attempt, maxAttempts)
			s.metrics.RecordRetry(cmd.Variant)
			if err := s.sleep(ctx, delay); err != nil {
				state = CellStateFailedFatal
				lastErr = err
				break
			}
		}

		state = CellStateAttempting
		telemetry.AddEvent(span, "attempt", telemetry.AttrAttempt.Int(attempt))
		cellLogger.Debugf("Attempt %d/%d: %s", attempt, maxAttempts, cmd)

		callTimer := telemetry.NewTimer()
		err := op(ctx)
		calls++

		if err == nil {
			s.metrics.RecordCall(cmd.Variant, operation, "success", callTimer.Duration())
			state = CellStateSucceeded
			lastErr = nil
			break
		}
		lastErr = err

		if IsRetryable(err) {
			s.metrics.RecordCall(cmd.Variant, operation, "rate_limited", callTimer.Duration())
			state = CellStateRateLimited
			continue
		}

		s.metrics.RecordCall(cmd.Variant, operation, "error", callTimer.Duration())
		state = CellStateFailedFatal
		break
	}

	var result error
	switch state {
	case CellStateSucceeded:
		cellLogger.WithField("attempts", calls).Info("Cell " + operation + " succeeded")
		telemetry.RecordSuccess(span)
	case CellStateRateLimited:
		// The budget ran out while still rate limited.
		state = CellStateFailedFatal
		result = NewMaxRetriesExceededError(calls, lastErr).
			WithResource(cmd.Variant).
			WithCell(cmd.Row, cmd.Column).
			WithOperation(operation)
		cellLogger.Errorf("Failed to %s item after %d attempts", operation, calls)
	default:
		result = withContext(lastErr, func(e *EngineError) {
			e.WithResource(cmd.Variant).WithCell(cmd.Row, cmd.Column).WithOperation(operation).WithAttempts(calls)
		})
		cellLogger.WithError(lastErr).Error("Cell " + operation + " failed")
	}
	if result != nil {
		telemetry.RecordError(span, result)
	}

	s.metrics.RecordCell(string(state))
	s.journalPlacement(ctx, runID, operation, cmd, state, calls, result, started)

	return calls, result
}

func (s *Synchronizer) journalPlacement(
	ctx context.Context,
	runID, operation string,
	cmd PlacementCommand,
	state CellState,
	attempts int,
	err error,
	started time.Time,
) {
	if s.journal == nil || runID == "" {
		return
	}
	rec := PlacementRecord{
		RunID:     runID,
		Command:   cmd,
		Operation: operation,
		State:     state,
		Attempts:  attempts,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	// A cancelled run context must not prevent the journal write.
	if jerr := s.journal.RecordPlacement(context.WithoutCancel(ctx), rec); jerr != nil {
		s.loggerFor(ctx).WithError(jerr).Warn("Failed to journal placement")
	}
}

// backoff returns the delay before the given 1-indexed attempt.
func (s *Synchronizer) backoff(attempt int) time.Duration {
	if attempt < 2 {
		return 0
	}
	shift := uint(attempt - 2)
	if shift >= 63 || s.baseDelay > MaxBackoff>>shift {
		return MaxBackoff
	}
	return s.baseDelay << shift
}

func (s *Synchronizer) recordFatal(err error) {
	var e *EngineError
	if errors.As(err, &e) {
		s.metrics.RecordError(e.Code)
	}
}

// withContext returns a copy of the first EngineError in err's chain with
// fn applied. When that EngineError sits under other wrapping, the result
// keeps the outer message and chain and exposes the copy to errors.As.
// Errors without an EngineError are returned unchanged.
func withContext(err error, fn func(e *EngineError)) error {
	var e *EngineError
	if !errors.As(err, &e) {
		return err
	}
	c := *e
	fn(&c)
	if err == error(e) {
		return &c
	}
	return &contextError{outer: err, inner: &c}
}

// contextError pairs a wrapped error with a contextualized copy of the
// EngineError it carries. The copy is searched first.
type contextError struct {
	outer error
	inner *EngineError
}

func (c *contextError) Error() string { return c.outer.Error() }

func (c *contextError) Unwrap() []error { return []error{c.inner, c.outer} }

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
