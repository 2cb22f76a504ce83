package provision

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/reductstore/ros-reductstore-demo/internal/logging"
)

// DefaultStepTimeout bounds a single snap operation. Installs pull images
// over the network and can legitimately take minutes.
const DefaultStepTimeout = 10 * time.Minute

// Policy controls how the runner reacts to a failed step.
type Policy int

const (
	// BestEffort attempts every step and reports a combined summary.
	// This is the default: a device with a partially failed setup is
	// still more useful than one where nothing past the first failure
	// was attempted.
	BestEffort Policy = iota

	// FailFast stops at the first failed step
	FailFast
)

// String returns the flag-style name of the policy.
func (p Policy) String() string {
	if p == FailFast {
		return "fail-fast"
	}
	return "best-effort"
}

// CommandRunner abstracts external command execution so tests can record
// invocations instead of shelling out.
type CommandRunner interface {
	// Run executes a command, waits for it to finish, and returns its
	// trimmed combined output
	Run(ctx context.Context, name string, args ...string) (string, error)

	// Output executes a command and returns its trimmed stdout
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// Run implements CommandRunner. Combined output is captured on success and
// failure so verbose mode can replay what the package manager printed.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed != "" {
			return trimmed, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, trimmed)
		}
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return trimmed, nil
}

// Output implements CommandRunner.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// StepError records one failed step.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step.Description(), e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepOutput is the captured subprocess output of one attempted step.
type StepOutput struct {
	Step   Step
	Output string
}

// Summary is the outcome of a provisioning run.
type Summary struct {
	// Total is the number of steps in the plan
	Total int

	// Attempted is the number of steps that were actually run
	Attempted int

	// Succeeded is the number of steps that completed without error
	Succeeded int

	// Failures holds one entry per failed step, in plan order
	Failures []*StepError

	// Outputs holds the captured output of every attempted step, in
	// plan order
	Outputs []StepOutput
}

// CombinedOutput concatenates every step's captured output, each block
// prefixed with the command that produced it. Steps with no output are
// omitted.
func (s *Summary) CombinedOutput() string {
	var b strings.Builder
	for _, o := range s.Outputs {
		if o.Output == "" {
			continue
		}
		name, args := o.Step.Command()
		fmt.Fprintf(&b, "$ %s %s\n%s\n", name, strings.Join(args, " "), o.Output)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Err returns all step failures combined, or nil when every attempted step
// succeeded.
func (s *Summary) Err() error {
	var combined error
	for _, f := range s.Failures {
		combined = multierr.Append(combined, f)
	}
	return combined
}

// Runner executes a provisioning plan.
type Runner struct {
	// Commands executes the external package manager
	Commands CommandRunner

	// Policy is the failure policy (default BestEffort)
	Policy Policy

	// StepTimeout bounds each individual step (default DefaultStepTimeout)
	StepTimeout time.Duration

	// OnStepStart, when set, is called before each step runs. The index
	// is the step's position in the plan, starting at zero.
	OnStepStart func(index int, step Step)

	// OnStep, when set, is called after each attempted step with its
	// result. A nil error means the step succeeded.
	OnStep func(index int, step Step, err error)
}

// NewRunner creates a runner that shells out to snap with the default
// best-effort policy.
func NewRunner() *Runner {
	return &Runner{
		Commands:    ExecRunner{},
		Policy:      BestEffort,
		StepTimeout: DefaultStepTimeout,
	}
}

// Execute runs the steps strictly in sequence. Earlier steps are never
// rolled back. Under FailFast the first failure ends the run; under
// BestEffort all steps are attempted and the summary carries every failure.
func (r *Runner) Execute(ctx context.Context, steps []Step) *Summary {
	timeout := r.StepTimeout
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}

	summary := &Summary{Total: len(steps)}

	for i, step := range steps {
		if ctx.Err() != nil {
			summary.Failures = append(summary.Failures, &StepError{Step: step, Err: ctx.Err()})
			break
		}

		summary.Attempted++
		if r.OnStepStart != nil {
			r.OnStepStart(i, step)
		}
		name, args := step.Command()

		logging.Debug("Running provisioning step",
			zap.String("step", step.Description()),
			zap.String("command", name+" "+strings.Join(args, " ")),
		)

		stepCtx, cancel := context.WithTimeout(ctx, timeout)
		out, err := r.Commands.Run(stepCtx, name, args...)
		cancel()

		summary.Outputs = append(summary.Outputs, StepOutput{Step: step, Output: out})

		logging.LogStep(step.Description(), err)
		if r.OnStep != nil {
			r.OnStep(i, step, err)
		}

		if err != nil {
			summary.Failures = append(summary.Failures, &StepError{Step: step, Err: err})
			if r.Policy == FailFast {
				break
			}
			continue
		}
		summary.Succeeded++
	}

	return summary
}
