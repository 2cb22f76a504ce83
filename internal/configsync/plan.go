package configsync

import (
	"fmt"

	"github.com/reductstore/ros-reductstore-demo/internal/urls"
)

// PairKind identifies what a replacement pair represents.
type PairKind string

const (
	// KindIdentity is the device identity token pair
	KindIdentity PairKind = "identity"
	// KindURL is the full server base URL pair
	KindURL PairKind = "url"
	// KindHost is the bare host pair derived from the URL pair
	KindHost PairKind = "host"
)

// Pair is a single (old, new) literal replacement.
type Pair struct {
	Kind PairKind
	Old  string
	New  string
}

// Values are the device configuration values a plan compares.
type Values struct {
	// DeviceUID is the opaque device identity token
	DeviceUID string

	// ServerURL is the server base URL
	ServerURL string

	// ServerHost is the bare host derived from ServerURL. When empty it
	// is derived at plan time; the stored value takes precedence so the
	// synchronizer replaces exactly what was written into the files.
	ServerHost string
}

// Plan is the ordered list of replacement pairs for one synchronization
// run, plus any warnings produced while building it.
type Plan struct {
	Pairs []Pair

	// Warnings describe skipped passes (e.g. a malformed URL whose host
	// could not be derived). They are surfaced to the operator but do
	// not abort the run.
	Warnings []string
}

// Empty reports whether the plan has nothing to do.
func (p *Plan) Empty() bool {
	return len(p.Pairs) == 0
}

// BuildPlan computes the replacement pairs needed to move a configuration
// tree from old values to new values.
//
// Ordering matters: the full URL pair runs before the derived host pair so
// complete URL occurrences are rewritten as URLs, and the host pass only
// picks up remaining bare host references.
func BuildPlan(old, new Values) *Plan {
	plan := &Plan{}

	if old.DeviceUID != new.DeviceUID {
		plan.Pairs = append(plan.Pairs, Pair{Kind: KindIdentity, Old: old.DeviceUID, New: new.DeviceUID})
	}

	if old.ServerURL != new.ServerURL {
		plan.Pairs = append(plan.Pairs, Pair{Kind: KindURL, Old: old.ServerURL, New: new.ServerURL})

		oldHost, oldErr := resolveHost(old)
		newHost, newErr := resolveHost(new)
		switch {
		case oldErr != nil:
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("host replacement skipped: old URL: %v", oldErr))
		case newErr != nil:
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("host replacement skipped: new URL: %v", newErr))
		case oldHost != newHost:
			plan.Pairs = append(plan.Pairs, Pair{Kind: KindHost, Old: oldHost, New: newHost})
		}
	}

	return plan
}

func resolveHost(v Values) (string, error) {
	if v.ServerHost != "" {
		return v.ServerHost, nil
	}
	return urls.Host(v.ServerURL)
}
