package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeRunner records commands and fails those listed in failOn.
type fakeRunner struct {
	commands []string
	failOn   map[string]error
	stdout   string
}

func (f *fakeRunner) record(name string, args []string) string {
	cmd := name + " " + strings.Join(args, " ")
	f.commands = append(f.commands, cmd)
	return cmd
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	cmd := f.record(name, args)
	for needle, err := range f.failOn {
		if strings.Contains(cmd, needle) {
			return "", err
		}
	}
	return f.stdout, nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	return f.Run(context.Background(), name, args...)
}

func TestDefaultPlanShape(t *testing.T) {
	steps := DefaultPlan("abc123", "http://10.0.0.5")

	// Installs strictly before connects
	lastInstall, firstConnect := -1, -1
	for i, s := range steps {
		switch s.Kind {
		case StepInstall:
			lastInstall = i
		case StepConnect:
			if firstConnect == -1 {
				firstConnect = i
			}
		}
	}
	if lastInstall == -1 || firstConnect == -1 {
		t.Fatalf("DefaultPlan() should contain installs and connects, got %+v", steps)
	}
	if lastInstall > firstConnect {
		t.Errorf("installs must precede connects: last install at %d, first connect at %d", lastInstall, firstConnect)
	}
}

func TestDefaultPlanCarriesValues(t *testing.T) {
	steps := DefaultPlan("abc123", "http://10.0.0.5/orion")

	var setStep *Step
	for i := range steps {
		if steps[i].Kind == StepSet {
			setStep = &steps[i]
		}
	}
	if setStep == nil {
		t.Fatal("DefaultPlan() missing configure step")
	}
	if setStep.Properties[PropDeviceUID] != "abc123" {
		t.Errorf("device-uid property = %q, want abc123", setStep.Properties[PropDeviceUID])
	}
	if setStep.Properties[PropServerURL] != "http://10.0.0.5/orion" {
		t.Errorf("server-url property = %q, want the full URL", setStep.Properties[PropServerURL])
	}
}

func TestStepCommand(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want string
	}{
		{
			name: "install with channel",
			step: Step{Kind: StepInstall, Snap: "reductstore", Channel: "latest/stable"},
			want: "snap install reductstore --channel=latest/stable",
		},
		{
			name: "install default channel",
			step: Step{Kind: StepInstall, Snap: "reduct-cli"},
			want: "snap install reduct-cli",
		},
		{
			name: "connect",
			step: Step{Kind: StepConnect, Plug: "a:plug", Slot: "b:slot"},
			want: "snap connect a:plug b:slot",
		},
		{
			name: "set properties sorted",
			step: Step{Kind: StepSet, Snap: "cfg", Properties: map[string]string{"b": "2", "a": "1"}},
			want: "snap set cfg a=1 b=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args := tt.step.Command()
			got := name + " " + strings.Join(args, " ")
			if got != tt.want {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecuteAllSucceed(t *testing.T) {
	fake := &fakeRunner{}
	r := &Runner{Commands: fake, Policy: BestEffort}

	steps := DefaultPlan("abc123", "http://10.0.0.5")
	summary := r.Execute(context.Background(), steps)

	if summary.Err() != nil {
		t.Errorf("Execute() err = %v, want nil", summary.Err())
	}
	if summary.Attempted != len(steps) || summary.Succeeded != len(steps) {
		t.Errorf("Execute() attempted=%d succeeded=%d, want both %d",
			summary.Attempted, summary.Succeeded, len(steps))
	}
	if len(fake.commands) != len(steps) {
		t.Errorf("Execute() ran %d commands, want %d", len(fake.commands), len(steps))
	}
}

func TestExecuteCapturesOutput(t *testing.T) {
	fake := &fakeRunner{stdout: "reductstore 1.12.0 installed"}
	r := &Runner{Commands: fake, Policy: BestEffort}

	steps := DefaultPlan("abc123", "http://10.0.0.5")
	summary := r.Execute(context.Background(), steps)

	if len(summary.Outputs) != len(steps) {
		t.Fatalf("Outputs = %d, want %d", len(summary.Outputs), len(steps))
	}
	combined := summary.CombinedOutput()
	if !strings.Contains(combined, "reductstore 1.12.0 installed") {
		t.Errorf("CombinedOutput() missing subprocess output: %q", combined)
	}
	if !strings.Contains(combined, "$ snap install") {
		t.Errorf("CombinedOutput() missing command prefix: %q", combined)
	}
}

func TestExecuteBestEffortContinues(t *testing.T) {
	bootErr := errors.New("snap unavailable")
	fake := &fakeRunner{failOn: map[string]error{"install ros-reduct-agent": bootErr}}
	r := &Runner{Commands: fake, Policy: BestEffort}

	steps := DefaultPlan("abc123", "http://10.0.0.5")
	summary := r.Execute(context.Background(), steps)

	if summary.Attempted != len(steps) {
		t.Errorf("BestEffort attempted = %d, want all %d", summary.Attempted, len(steps))
	}
	if len(summary.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(summary.Failures))
	}
	if !errors.Is(summary.Err(), bootErr) {
		t.Errorf("Err() should wrap the step error, got %v", summary.Err())
	}
}

func TestExecuteFailFastStops(t *testing.T) {
	fake := &fakeRunner{failOn: map[string]error{"install reductstore": errors.New("boom")}}
	r := &Runner{Commands: fake, Policy: FailFast}

	steps := DefaultPlan("abc123", "http://10.0.0.5")
	summary := r.Execute(context.Background(), steps)

	if summary.Attempted != 1 {
		t.Errorf("FailFast attempted = %d, want 1", summary.Attempted)
	}
	if len(fake.commands) != 1 {
		t.Errorf("FailFast ran %d commands, want 1", len(fake.commands))
	}
	if summary.Err() == nil {
		t.Error("Err() = nil, want failure")
	}
}

func TestExecuteBestEffortCollectsAllFailures(t *testing.T) {
	fake := &fakeRunner{failOn: map[string]error{
		"install reductstore": errors.New("e1"),
		"install reduct-cli":  errors.New("e2"),
	}}
	r := &Runner{Commands: fake, Policy: BestEffort}

	summary := r.Execute(context.Background(), DefaultPlan("a", "http://h"))

	if len(summary.Failures) != 2 {
		t.Errorf("Failures = %d, want 2", len(summary.Failures))
	}
	msg := fmt.Sprint(summary.Err())
	if !strings.Contains(msg, "e1") || !strings.Contains(msg, "e2") {
		t.Errorf("Err() = %q, should mention both failures", msg)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeRunner{}
	r := &Runner{Commands: fake, Policy: BestEffort}
	summary := r.Execute(ctx, DefaultPlan("a", "http://h"))

	if summary.Attempted != 0 {
		t.Errorf("cancelled context attempted = %d, want 0", summary.Attempted)
	}
	if summary.Err() == nil {
		t.Error("cancelled context should surface an error")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, PropDeviceUID); !errors.Is(err, ErrPropertyNotSet) {
		t.Errorf("Get() on empty store error = %v, want ErrPropertyNotSet", err)
	}

	if err := store.Set(ctx, PropDeviceUID, "abc123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := store.Get(ctx, PropDeviceUID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "abc123" {
		t.Errorf("Get() = %q, want abc123", got)
	}
}

func TestSnapctlStoreCommands(t *testing.T) {
	fake := &fakeRunner{}
	store := &SnapctlStore{Commands: fake}
	ctx := context.Background()

	if err := store.Set(ctx, PropServerURL, "http://10.0.0.5"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	want := "snapctl set server-url=http://10.0.0.5"
	if len(fake.commands) != 1 || fake.commands[0] != want {
		t.Errorf("Set() ran %v, want [%s]", fake.commands, want)
	}

	// Empty snapctl output means the key is unset
	if _, err := store.Get(ctx, PropDeviceUID); !errors.Is(err, ErrPropertyNotSet) {
		t.Errorf("Get() with empty output error = %v, want ErrPropertyNotSet", err)
	}
}
