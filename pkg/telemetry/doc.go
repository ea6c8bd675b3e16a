// Package telemetry provides observability instrumentation for megaverse runs.
//
// It integrates structured logging (zerolog), tracing (OpenTelemetry), and
// metrics (Prometheus) behind a single Telemetry value that is built once at
// startup and passed explicitly to the synchronizer.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
// # Structured Logging
//
// Child loggers carry run and cell fields:
//
//	logger := tel.Logger.NewComponentLogger("synchronizer").WithRunID(runID)
//	logger.WithCell(1, 0, "cometh").Info("placed")
//
// # Tracing
//
// One span covers a run and one span covers each non-skipped cell. The
// exporter is "none" by default; "stdout" and "otlp" are available.
//
// # Metrics
//
// Counters track runs, remote calls by variant and outcome, rate-limit
// retries, and fatal errors by code. The endpoint is served only when a
// listen address is configured.
package telemetry
