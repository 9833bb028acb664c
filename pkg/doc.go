// Package pkg provides shared utilities for the flashlog packages.
//
// This package contains common functionality used by the flash, store,
// volume and datalog packages, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error values for flash, record and volume failures
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with component context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentStore, "entry replaced", "size", 34)
//
// # Errors
//
// Failures are reported as sentinel values, usually wrapped with context:
//
//	if errors.Is(err, pkg.ErrNoFlash) {
//	    // chip did not answer the identify command
//	}
package pkg
