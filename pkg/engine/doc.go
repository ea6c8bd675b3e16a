// Package engine synchronizes a remote megaverse with a goal grid.
//
// # Overview
//
// A run has three phases:
//
//  1. Fetch - retrieve the goal grid from a GoalSource
//  2. Parse - turn each raw cell label into a Label using the run mode's parser
//  3. Place - resolve the label's variant and place it, retrying rate limits
//
// Cells are processed one at a time in row-major order. The reserved label
// "SPACE" is skipped without a call.
//
// # Run Modes
//
// RunMode selects the label grammar:
//
//   - ModeBasic (1): every label is a bare variant name ("POLYANET")
//   - ModeAttributed (2): labels may be "ATTRIBUTE_VARIANT" ("UP_COMETH")
//
// # Retry Policy
//
// Only rate-limited calls (HTTP 429) are retried. Before attempt k, for k >= 2,
// the synchronizer waits BaseDelay * 2^(k-2), so with the default one second
// unit the waits are 1s, 2s, 4s and so on. When maxAttempts calls have all been
// rate limited the run fails with ErrMaxRetriesExceeded. Any other error is
// fatal on the first occurrence and no further cells are processed.
//
// # Error Handling
//
// Errors are EngineError values classified as transient, throttled, or
// permanent:
//
//	if errors.Is(err, engine.ErrMaxRetriesExceeded) {
//	    // budget spent on 429s
//	}
//	if code, ok := engine.StatusCode(err); ok {
//	    // remote status available
//	}
//
// # Example Usage
//
//	registry := astral.NewRegistry(candidateID, client)
//	sync := engine.NewSynchronizer(client.GoalSource(candidateID), registry, engine.Options{
//	    Logger: logger,
//	})
//	result, err := sync.Run(ctx, engine.ModeAttributed, engine.DefaultMaxAttempts)
package engine
