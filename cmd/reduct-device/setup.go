package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/reductstore/ros-reductstore-demo/internal/configsync"
	"github.com/reductstore/ros-reductstore-demo/internal/discovery"
	"github.com/reductstore/ros-reductstore-demo/internal/identity"
	"github.com/reductstore/ros-reductstore-demo/internal/provision"
	"github.com/reductstore/ros-reductstore-demo/internal/state"
	"github.com/reductstore/ros-reductstore-demo/internal/ui"
	"github.com/reductstore/ros-reductstore-demo/internal/urls"
)

var (
	setupDeviceUID      string
	setupServerURL      string
	setupConfigDir      string
	setupNonInteractive bool
	setupFailFast       bool
	setupSkipInstall    bool
	setupVerbose        bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision this device for the demo deployment",
	Long: `Provision this device: choose a device identity and server URL,
persist them, and install and wire the demo snap set.

The device identity defaults to the machine ID; the server URL is
suggested from a quick mDNS scan for ReductStore servers. Both can be
overridden interactively or via flags.

Installation is best-effort by default: every step is attempted and
failures are reported together at the end. Use --fail-fast to stop at
the first failure instead. Completed steps are never rolled back.

With --config-dir, an existing configuration tree is synchronized to
the new values after provisioning (see 'reduct-device sync').`,
	Example: `  # Interactive setup with discovery
  reduct-device setup

  # Scripted setup
  reduct-device setup --device-uid orion --server-url http://10.0.0.5:8383 --non-interactive

  # Record identity and server without touching snaps
  reduct-device setup --skip-install --non-interactive --device-uid orion --server-url http://10.0.0.5:8383

  # Re-provision and rewrite an existing config tree in one go
  reduct-device setup --non-interactive --device-uid vega --server-url http://10.0.0.9:8383 \
    --config-dir /var/snap/ros-reduct-agent/common/config`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&setupDeviceUID, "device-uid", "", "Device identity token (default: derived from machine ID)")
	setupCmd.Flags().StringVar(&setupServerURL, "server-url", "", "ReductStore server base URL")
	setupCmd.Flags().StringVar(&setupConfigDir, "config-dir", "", "Config tree to synchronize after provisioning")
	setupCmd.Flags().BoolVar(&setupNonInteractive, "non-interactive", false, "Fail instead of prompting for missing values")
	setupCmd.Flags().BoolVar(&setupFailFast, "fail-fast", false, "Stop at the first failed installation step")
	setupCmd.Flags().BoolVar(&setupSkipInstall, "skip-install", false, "Persist identity and server URL without installing snaps")
	setupCmd.Flags().BoolVar(&setupVerbose, "verbose", false, "Show raw snap output")

	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	deviceUID := setupDeviceUID
	serverURL := setupServerURL

	if deviceUID == "" {
		suggested, err := identity.Resolve(identity.MachineIDPath)
		if err != nil {
			return fmt.Errorf("could not derive a device identity: %w", err)
		}
		deviceUID = suggested
	}

	if !setupNonInteractive {
		if serverURL == "" {
			serverURL = discoverServerURL()
		}
		if err := promptSetupValues(&deviceUID, &serverURL); err != nil {
			return err
		}
	}

	if err := identity.Validate(deviceUID); err != nil {
		return fmt.Errorf("invalid device identity: %w", err)
	}
	if _, err := urls.Parse(serverURL); err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Persist before installing so a partially failed install can be
	// retried without re-entering values.
	st, prev, err := loadOrCreateState(deviceUID, serverURL)
	if err != nil {
		return err
	}
	if err := st.Save(); err != nil {
		return fmt.Errorf("could not persist device state: %w", err)
	}

	if setupSkipInstall {
		ui.PrintSuccess("Device state recorded", map[string]string{
			"Device":  deviceUID,
			"Server":  serverURL,
			"Install": "skipped (--skip-install)",
		})
	} else if err := runInstall(cmd, deviceUID, serverURL); err != nil {
		return err
	}

	if setupConfigDir != "" {
		return runInitialSync(setupConfigDir, prev, deviceUID, serverURL)
	}
	return nil
}

// runInitialSync rewrites an existing config tree with the freshly
// provisioned values. On a re-setup the previous state supplies the old
// values; on a first setup there is nothing to compare against and the
// run is a no-op.
func runInitialSync(configDir string, prev *state.DeviceState, deviceUID, serverURL string) error {
	old := configsync.Values{DeviceUID: deviceUID, ServerURL: serverURL}
	if prev != nil {
		old = configsync.Values{
			DeviceUID:  prev.DeviceUID,
			ServerURL:  prev.ServerURL,
			ServerHost: prev.ServerHost,
		}
	}
	plan := configsync.BuildPlan(old, configsync.Values{DeviceUID: deviceUID, ServerURL: serverURL})

	result, err := configsync.Synchronize(configDir, plan)
	if err != nil {
		return fmt.Errorf("initial sync failed: %w", err)
	}
	printSyncResult(result)
	return nil
}

// discoverServerURL suggests a server URL from a quick mDNS scan. An
// empty string means nothing was found.
func discoverServerURL() string {
	ui.PrintPleaseWait("Scanning for ReductStore servers", "3 seconds")
	servers, err := discovery.QuickScan()
	if err != nil || len(servers) == 0 {
		return ""
	}
	return servers[0].BaseURL()
}

func promptSetupValues(deviceUID, serverURL *string) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Device identity").
				Description("Opaque token identifying this device, e.g. the robot name").
				Value(deviceUID).
				Validate(identity.Validate),
			huh.NewInput().
				Title("Server URL").
				Description("ReductStore base URL, e.g. http://10.0.0.5:8383").
				Value(serverURL).
				Validate(func(s string) error {
					_, err := urls.Parse(s)
					return err
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	return nil
}

// loadOrCreateState refreshes existing state or creates a new one. The
// second return value is a copy of the state before the new values were
// applied, nil when the device had none; the initial sync compares
// against it.
func loadOrCreateState(deviceUID, serverURL string) (*state.DeviceState, *state.DeviceState, error) {
	st, err := state.Load()
	if err == nil {
		prev := *st
		if err := st.Apply(deviceUID, serverURL); err != nil {
			return nil, nil, err
		}
		return st, &prev, nil
	}
	st, err = state.New(deviceUID, serverURL)
	return st, nil, err
}

func runInstall(cmd *cobra.Command, deviceUID, serverURL string) error {
	steps := provision.DefaultPlan(deviceUID, serverURL)

	stepNames := make([]string, len(steps))
	for i, s := range steps {
		stepNames[i] = s.Description()
	}

	policy := "best-effort"
	if setupFailFast {
		policy = "fail-fast"
	}

	runner := ui.NewStepRunner(ui.StepRunnerConfig{
		Title:   "Device Setup",
		Command: "reduct-device setup",
		Params: map[string]string{
			"Device": deviceUID,
			"Server": serverURL,
			"Policy": policy,
		},
		TotalSteps: len(steps),
		StepNames:  stepNames,
		Verbose:    setupVerbose,
	})

	var summary *provision.Summary
	err := runner.Run(cmd.Context(), func(onStep ui.StepCallback) error {
		exec := provision.NewRunner()
		if setupFailFast {
			exec.Policy = provision.FailFast
		}
		exec.OnStepStart = func(i int, step provision.Step) {
			onStep(i+1, step.Description(), ui.StepRunning, "")
		}
		exec.OnStep = func(i int, step provision.Step, stepErr error) {
			if stepErr != nil {
				onStep(i+1, step.Description(), ui.StepFailed, stepErr.Error())
				return
			}
			onStep(i+1, step.Description(), ui.StepComplete, "")
		}

		summary = exec.Execute(cmd.Context(), steps)
		runner.SetCommandOutput(summary.CombinedOutput())
		return summary.Err()
	})

	if err != nil && summary != nil && summary.Succeeded > 0 && !setupFailFast {
		fmt.Printf("\n%d of %d steps succeeded; rerun 'reduct-device setup' after fixing the failures above.\n",
			summary.Succeeded, summary.Total)
	}
	return err
}
