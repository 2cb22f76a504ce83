// Package logging provides structured logging for the device utility.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the tool. It provides both general logging
// functions and specialized helpers for provisioning and synchronization.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (store API requests, per-file diffs)
//   - Info: Normal operations (steps completed, replacement passes)
//   - Warn: Non-fatal issues (skipped host pass, best-effort step failures)
//   - Error: Fatal issues (missing state, aborted runs)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Device provisioned",
//	    zap.String("device_uid", "a1b2c3"),
//	    zap.String("server_url", "http://orion.field.demo"),
//	)
//
// # Configuration
//
// Logging is silent by default so CLI output stays clean. Set the
// REDUCT_DEVICE_LOG_LEVEL environment variable to enable it:
//
//	REDUCT_DEVICE_LOG_LEVEL=debug reduct-device sync
//
// Initialize at command startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
