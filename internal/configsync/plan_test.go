package configsync

import (
	"strings"
	"testing"
)

func TestBuildPlanAllDifferent(t *testing.T) {
	plan := BuildPlan(
		Values{DeviceUID: "abc123", ServerURL: "http://10.0.0.5/path"},
		Values{DeviceUID: "xyz789", ServerURL: "http://10.0.0.9/path"},
	)

	if len(plan.Pairs) != 3 {
		t.Fatalf("BuildPlan() pairs = %d, want 3", len(plan.Pairs))
	}
	if plan.Pairs[0].Kind != KindIdentity {
		t.Errorf("pair[0].Kind = %v, want identity", plan.Pairs[0].Kind)
	}
	if plan.Pairs[1].Kind != KindURL {
		t.Errorf("pair[1].Kind = %v, want url", plan.Pairs[1].Kind)
	}
	if plan.Pairs[2].Kind != KindHost {
		t.Errorf("pair[2].Kind = %v, want host", plan.Pairs[2].Kind)
	}
	if plan.Pairs[2].Old != "10.0.0.5" || plan.Pairs[2].New != "10.0.0.9" {
		t.Errorf("host pair = %q -> %q, want 10.0.0.5 -> 10.0.0.9", plan.Pairs[2].Old, plan.Pairs[2].New)
	}
}

func TestBuildPlanEqualPairsSkipped(t *testing.T) {
	plan := BuildPlan(
		Values{DeviceUID: "abc123", ServerURL: "http://10.0.0.5"},
		Values{DeviceUID: "abc123", ServerURL: "http://10.0.0.5"},
	)
	if !plan.Empty() {
		t.Errorf("BuildPlan() with identical values should be empty, got %d pairs", len(plan.Pairs))
	}
	if len(plan.Warnings) != 0 {
		t.Errorf("BuildPlan() warnings = %v, want none", plan.Warnings)
	}
}

func TestBuildPlanIdentityOnly(t *testing.T) {
	plan := BuildPlan(
		Values{DeviceUID: "abc123", ServerURL: "http://10.0.0.5"},
		Values{DeviceUID: "xyz789", ServerURL: "http://10.0.0.5"},
	)
	if len(plan.Pairs) != 1 || plan.Pairs[0].Kind != KindIdentity {
		t.Errorf("BuildPlan() = %+v, want single identity pair", plan.Pairs)
	}
}

func TestBuildPlanSameHostDifferentPath(t *testing.T) {
	// URL changes but host stays: no host pair should be emitted
	plan := BuildPlan(
		Values{DeviceUID: "a", ServerURL: "http://10.0.0.5/old-path"},
		Values{DeviceUID: "a", ServerURL: "http://10.0.0.5/new-path"},
	)
	if len(plan.Pairs) != 1 || plan.Pairs[0].Kind != KindURL {
		t.Errorf("BuildPlan() = %+v, want single url pair", plan.Pairs)
	}
}

func TestBuildPlanMalformedURLWarns(t *testing.T) {
	plan := BuildPlan(
		Values{DeviceUID: "a", ServerURL: "10.0.0.5/path"},
		Values{DeviceUID: "a", ServerURL: "http://10.0.0.9/path"},
	)

	// URL pair still applies; host pass is skipped with a warning
	if len(plan.Pairs) != 1 || plan.Pairs[0].Kind != KindURL {
		t.Errorf("BuildPlan() pairs = %+v, want single url pair", plan.Pairs)
	}
	if len(plan.Warnings) != 1 {
		t.Fatalf("BuildPlan() warnings = %v, want exactly one", plan.Warnings)
	}
	if !strings.Contains(plan.Warnings[0], "host replacement skipped") {
		t.Errorf("warning = %q, should mention skipped host replacement", plan.Warnings[0])
	}
}

func TestBuildPlanUsesStoredHost(t *testing.T) {
	// A stored host takes precedence over re-derivation
	plan := BuildPlan(
		Values{DeviceUID: "a", ServerURL: "http://10.0.0.5:80/path", ServerHost: "10.0.0.5"},
		Values{DeviceUID: "a", ServerURL: "http://10.0.0.9/path"},
	)

	var hostPair *Pair
	for i := range plan.Pairs {
		if plan.Pairs[i].Kind == KindHost {
			hostPair = &plan.Pairs[i]
		}
	}
	if hostPair == nil {
		t.Fatal("BuildPlan() missing host pair")
	}
	if hostPair.Old != "10.0.0.5" {
		t.Errorf("host pair old = %q, want stored value 10.0.0.5", hostPair.Old)
	}
}
