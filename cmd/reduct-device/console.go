package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/reductstore/ros-reductstore-demo/internal/state"
	"github.com/reductstore/ros-reductstore-demo/internal/wizard/tui"
)

var (
	consoleServerURL string
	consoleToken     string
	consoleBucket    string
)

// consoleCmd launches the interactive full-screen console
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Launch the interactive server console",
	Long: `Launch a full-screen terminal console for ReductStore servers.

The console scans the local network for servers, lets you pick one (or
enter a URL manually), and then shows live server status: version, disk
usage, uptime, and the entries of this device's bucket.

When the device is provisioned, the console defaults to its configured
server and bucket.`,
	Example: `  # Scan the network and pick a server
  reduct-device console

  # Jump straight to a known server
  reduct-device console --server-url http://192.168.1.50:8383`,
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().StringVar(&consoleServerURL, "server-url", "", "Skip discovery and open this server directly")
	consoleCmd.Flags().StringVar(&consoleToken, "token", "", "API token")
	consoleCmd.Flags().StringVar(&consoleBucket, "bucket", "", "Bucket to inspect (default: device identity)")

	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	st, err := state.Load()
	if err != nil && !errors.Is(err, state.ErrNotProvisioned) {
		return err
	}
	serverURL, bucket := resolveConsoleTarget(st)

	var model tui.AppModel
	if serverURL != "" {
		// Skip discovery and open the dashboard directly
		model = tui.NewAppModel(tui.ScreenDashboard, serverURL, consoleToken, bucket)
	} else {
		model = tui.NewAppModel(tui.ScreenDiscovery, "", consoleToken, bucket)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console error: %w", err)
	}

	return nil
}

// resolveConsoleTarget picks the server URL and bucket: flags win, then a
// provisioned device's stored server and own bucket. An empty server URL
// means the console starts on the discovery screen.
func resolveConsoleTarget(st *state.DeviceState) (serverURL, bucket string) {
	serverURL = consoleServerURL
	bucket = consoleBucket
	if st != nil {
		if serverURL == "" {
			serverURL = st.ServerURL
		}
		if bucket == "" {
			bucket = st.DeviceUID
		}
	}
	return serverURL, bucket
}
