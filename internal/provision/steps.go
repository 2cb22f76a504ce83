package provision

import (
	"fmt"
	"sort"
)

// StepKind identifies what a provisioning step does.
type StepKind int

const (
	// StepInstall installs a snap package
	StepInstall StepKind = iota
	// StepConnect connects a snap plug to a slot
	StepConnect
	// StepSet writes key-value properties into a snap's configuration
	StepSet
)

// Step is a single provisioning operation. Exactly one group of fields is
// used depending on Kind.
type Step struct {
	Kind StepKind

	// Snap is the package name (install, set)
	Snap string

	// Channel is the install channel (install only, empty for default)
	Channel string

	// Plug and Slot are "snap:interface" references (connect only)
	Plug string
	Slot string

	// Properties are the key=value pairs to set (set only)
	Properties map[string]string
}

// Description returns a short human-readable label for the step.
func (s Step) Description() string {
	switch s.Kind {
	case StepInstall:
		if s.Channel != "" {
			return fmt.Sprintf("install %s (%s)", s.Snap, s.Channel)
		}
		return fmt.Sprintf("install %s", s.Snap)
	case StepConnect:
		return fmt.Sprintf("connect %s to %s", s.Plug, s.Slot)
	case StepSet:
		return fmt.Sprintf("configure %s", s.Snap)
	default:
		return "unknown step"
	}
}

// Command returns the snap command line for the step.
func (s Step) Command() (string, []string) {
	switch s.Kind {
	case StepInstall:
		args := []string{"install", s.Snap}
		if s.Channel != "" {
			args = append(args, "--channel="+s.Channel)
		}
		return "snap", args
	case StepConnect:
		return "snap", []string{"connect", s.Plug, s.Slot}
	case StepSet:
		args := []string{"set", s.Snap}
		for _, key := range sortedKeys(s.Properties) {
			args = append(args, key+"="+s.Properties[key])
		}
		return "snap", args
	default:
		return "", nil
	}
}

// ConfigSnap is the device configuration snap: a sandboxed bundle of config
// files rendered with the device identity and server URL, exposed to the
// other snaps over the content interface.
const ConfigSnap = "reduct-device-config"

// DefaultPlan returns the fixed setup sequence for a robot device: the
// store server, the CLI, the ROS recording agent, and the configuration
// snap, wired together and parameterized with the device values.
func DefaultPlan(deviceUID, serverURL string) []Step {
	return []Step{
		{Kind: StepInstall, Snap: "reductstore", Channel: "latest/stable"},
		{Kind: StepInstall, Snap: "reduct-cli"},
		{Kind: StepInstall, Snap: "ros-reduct-agent"},
		{Kind: StepInstall, Snap: ConfigSnap},
		{Kind: StepSet, Snap: ConfigSnap, Properties: map[string]string{
			"device-uid": deviceUID,
			"server-url": serverURL,
		}},
		{Kind: StepConnect, Plug: "ros-reduct-agent:device-config", Slot: ConfigSnap + ":config"},
		{Kind: StepConnect, Plug: "reduct-cli:device-config", Slot: ConfigSnap + ":config"},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
