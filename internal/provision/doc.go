// Package provision runs the fixed device setup sequence: snap package
// installs followed by cross-snap interface connections, parameterized by
// the device identity and server base URL.
//
// The sequence is a flat list of steps with no branching and no rollback;
// a step that fails never undoes earlier steps. What happens to the
// remaining steps is an explicit policy choice:
//
//   - BestEffort (default): every step is attempted and failures are
//     collected into a single summarized error, so one unavailable snap
//     does not block the interface connections that can still succeed.
//   - FailFast: the run stops at the first failed step.
//
// External commands run through the CommandRunner interface; tests inject a
// fake recorder instead of shelling out to snap/snapctl.
//
// The package also wraps snapd's key-value property store (snapctl
// get/set), which carries the newly requested identity and server URL when
// the tool runs inside a snap hook.
package provision
