// Package state persists the last-known device provisioning values: the
// device identity token and the server base URL (plus its derived host).
//
// The synchronizer in internal/configsync is stateless per invocation; it is
// the caller's job to load the previous values from this registry, run the
// synchronization, and re-persist the newly applied values. The registry
// enforces that read-modify-write shape: Load returns a snapshot, the caller
// mutates it, Save writes it back atomically (temp file + rename), so a
// crash never leaves a half-written state file.
//
// The state file lives under an OS-appropriate directory by default and can
// be redirected with the REDUCT_DEVICE_STATE_DIR environment variable. Snap
// deployments point it at $SNAP_COMMON so the values survive refreshes.
//
// A missing state file is not an error for Setup (first provisioning run),
// but Sync treats it as fatal: without previous values there is nothing to
// replace. That case surfaces as ErrNotProvisioned.
package state
