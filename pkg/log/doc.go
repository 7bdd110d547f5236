// Package log provides structured diagnostics capture for a LoMesh
// node.
//
// This package defines the Logger interface and Event types for
// recording registry, persistence and configuration events in a
// machine-readable form. It is separate from operational logging
// (slog): diagnostics capture produces a complete event trace a
// companion application can pull off the device, which is how
// recovered-locally failures (corrupt snapshots, failed saves) stay
// observable without ever blocking boot.
//
// Applications configure capture by providing a Logger:
//
//	// Development: events on the console via slog
//	cfg.Diagnostics = log.NewSlogAdapter(slog.Default())
//
//	// Production: binary event file
//	cfg.Diagnostics, _ = log.NewFileLogger("/var/log/lomesh/node.llog")
//
//	// Both
//	cfg.Diagnostics = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// Event files use CBOR encoding with integer keys; Reader streams
// them back with optional filtering.
package log
