package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reductstore/ros-reductstore-demo/internal/configsync"
	"github.com/reductstore/ros-reductstore-demo/internal/identity"
	"github.com/reductstore/ros-reductstore-demo/internal/provision"
	"github.com/reductstore/ros-reductstore-demo/internal/state"
	"github.com/reductstore/ros-reductstore-demo/internal/ui"
	"github.com/reductstore/ros-reductstore-demo/internal/urls"
)

var (
	syncDeviceUID string
	syncServerURL string
)

var syncCmd = &cobra.Command{
	Use:   "sync <config-dir>",
	Short: "Synchronize a configuration tree with the device identity and server URL",
	Long: `Rewrite every occurrence of the previously applied device identity
and server URL across the configuration tree under <config-dir>.

The old values come from the persisted device state; the new values come
from --device-uid and --server-url, from the snap configuration when
running inside a snap hook, or default to the stored values (making the
run a no-op). Three literal replacement passes are applied in order:
identity token, full server URL, then the bare host derived from the URL.

Files are rewritten in place with their mode preserved. The run is
idempotent: repeating it makes no further changes. If the stored server
URL is malformed the host pass is skipped with a warning and the other
passes still run.`,
	Example: `  # Apply new values from flags
  reduct-device sync /var/snap/ros-reduct-agent/common/config \
    --device-uid xyz789 --server-url http://10.0.0.9:8383

  # Inside a snap configure hook, values come from snapctl
  reduct-device sync $SNAP_COMMON/config`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncDeviceUID, "device-uid", "", "New device identity token (default: current snap or stored value)")
	syncCmd.Flags().StringVar(&syncServerURL, "server-url", "", "New server base URL (default: current snap or stored value)")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	configDir := args[0]

	st, err := state.Load()
	if err != nil {
		if errors.Is(err, state.ErrNotProvisioned) {
			return fmt.Errorf("cannot sync: %w (run 'reduct-device setup' first)", err)
		}
		return fmt.Errorf("cannot sync: %w", err)
	}

	newUID, newURL, err := resolveSyncTargets(cmd, st)
	if err != nil {
		return err
	}

	oldValues := configsync.Values{
		DeviceUID:  st.DeviceUID,
		ServerURL:  st.ServerURL,
		ServerHost: st.ServerHost,
	}
	newValues := configsync.Values{
		DeviceUID: newUID,
		ServerURL: newURL,
	}

	plan := configsync.BuildPlan(oldValues, newValues)

	result, err := configsync.Synchronize(configDir, plan)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	// Record the applied values so the next run compares against them.
	if err := st.Apply(newUID, newURL); err != nil {
		return err
	}
	if err := st.Save(); err != nil {
		return fmt.Errorf("sync applied but state not persisted: %w", err)
	}

	printSyncResult(result)
	return nil
}

// resolveSyncTargets picks the new values: explicit flags win, then the
// snap configuration when running inside a hook, then the stored values.
func resolveSyncTargets(cmd *cobra.Command, st *state.DeviceState) (string, string, error) {
	newUID := syncDeviceUID
	newURL := syncServerURL

	if newUID == "" || newURL == "" {
		if store := provision.NewSnapctlStore(); store.Available() {
			if newUID == "" {
				if v, err := store.Get(cmd.Context(), provision.PropDeviceUID); err == nil {
					newUID = v
				}
			}
			if newURL == "" {
				if v, err := store.Get(cmd.Context(), provision.PropServerURL); err == nil {
					newURL = v
				}
			}
		}
	}

	if newUID == "" {
		newUID = st.DeviceUID
	}
	if newURL == "" {
		newURL = st.ServerURL
	}

	if newUID != st.DeviceUID {
		if err := identity.Validate(newUID); err != nil {
			return "", "", fmt.Errorf("invalid device identity: %w", err)
		}
	}
	if newURL != st.ServerURL {
		if _, err := urls.Parse(newURL); err != nil {
			return "", "", fmt.Errorf("invalid server URL: %w", err)
		}
	}
	return newUID, newURL, nil
}

func printSyncResult(result *configsync.Result) {
	details := map[string]string{
		"Directory":     result.Dir,
		"Files scanned": fmt.Sprintf("%d", result.FilesScanned),
		"Files changed": fmt.Sprintf("%d", result.FilesChanged),
		"Substitutions": fmt.Sprintf("%d", result.Occurrences()),
	}
	for _, pass := range result.Passes {
		key := fmt.Sprintf("Pass (%s)", pass.Pair.Kind)
		details[key] = fmt.Sprintf("%d in %d file(s)", pass.Occurrences, pass.FilesChanged)
	}

	if len(result.Warnings) > 0 {
		warnDetails := map[string]string{}
		for i, warning := range result.Warnings {
			warnDetails[fmt.Sprintf("Warning %d", i+1)] = warning
		}
		ui.PrintWarning("Configuration synchronized with warnings", mergeDetails(details, warnDetails))
		return
	}

	ui.PrintSuccess("Configuration synchronized", details)
}

func mergeDetails(a, b map[string]string) map[string]string {
	merged := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}
