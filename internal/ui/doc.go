// Package ui provides terminal UI components for the reduct-device CLI.
//
// This package uses Bubble Tea and Lipgloss to render polished terminal output
// for device commands. These components follow a "run once and exit" pattern -
// they render output compellingly but don't require user interaction beyond
// the setup prompts.
//
// # Architecture
//
// The UI package provides four main component types:
//
//   - Header: Command banner showing operation name and parameters
//   - Progress: Progress bar with step list showing real-time status
//   - Result: Success/failure boxes with styled information
//   - CommandOutput: Raw subprocess output box for verbose mode
//
// These components are orchestrated by the StepRunner, which manages the
// header → progress → result flow for multi-step operations such as
// provisioning and configuration sync.
//
// # Usage Pattern
//
// Commands use this package by:
//
//  1. Creating a StepRunner with command metadata
//  2. Calling Run() with their operation function
//  3. The operation reports progress via a step callback
//  4. StepRunner handles all UI rendering automatically
//
// Example:
//
//	runner := ui.NewStepRunner(ui.StepRunnerConfig{
//	    Title:      "Device Setup",
//	    Command:    "reduct-device setup",
//	    Params:     map[string]string{"Device": "orion"},
//	    TotalSteps: 7,
//	    Verbose:    verbose,
//	})
//
//	err := runner.Run(ctx, func(onStep ui.StepCallback) error {
//	    onStep(1, "Installing reductstore snap", ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, "Installing reductstore snap", ui.StepComplete, "")
//	    return nil
//	})
//
// # Logging Integration
//
// This package expects logging to be controlled via the REDUCT_DEVICE_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Set REDUCT_DEVICE_LOG_LEVEL to
// "debug", "info", "warn", or "error" to enable logging output.
//
// # Verbose Mode
//
// When --verbose is passed to commands, the CommandOutput component displays
// raw subprocess output in a styled box after the result. This is useful for
// debugging failed snap installs and interface connections.
package ui
