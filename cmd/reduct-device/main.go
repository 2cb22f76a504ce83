// Reduct-device is the device-side utility for ReductStore robotics demo
// deployments.
//
// It provisions edge devices with the demo snap set, keeps the on-disk
// configuration tree aligned with the device identity and server URL, and
// seeds the store with replayed robot telemetry for dashboards.
//
// Usage:
//
//	reduct-device [command] [flags]
//
// See 'reduct-device --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reductstore/ros-reductstore-demo/internal/logging"
	"github.com/reductstore/ros-reductstore-demo/internal/version"
)

func main() {
	// Initialize logging from environment variable (silent by default)
	// Set REDUCT_DEVICE_LOG_LEVEL=debug to see detailed logs
	if err := logging.InitializeFromEnv(); err != nil {
		// Ignore error, GetLogger will create fallback logger
		_ = err
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reduct-device",
	Short: "ReductStore demo device utility",
	Long: `Device-side utility for ReductStore robotics demo deployments.

Provides first-boot provisioning, configuration synchronization after
identity or server changes, ReductStore server discovery, and telemetry
seeding for demo dashboards.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reduct-device %s (commit: %s)\n", version.Version, version.Commit)
	},
}
