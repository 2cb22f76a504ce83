package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reductstore/ros-reductstore-demo/internal/reduct"
	"github.com/reductstore/ros-reductstore-demo/internal/state"
	"github.com/reductstore/ros-reductstore-demo/internal/ui"
)

var (
	showFormat string
	showProbe  bool
	showToken  string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the persisted device state",
	Long: `Display the device identity and server URL recorded by setup.

With --probe the configured ReductStore server is contacted and its
version, bucket count and disk usage are shown alongside the state.`,
	Example: `  # Show persisted state
  reduct-device show

  # Also probe the configured server
  reduct-device show --probe

  # JSON output for scripting
  reduct-device show --format json`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "detailed", "Output format (detailed, compact, json)")
	showCmd.Flags().BoolVar(&showProbe, "probe", false, "Contact the configured server and show its info")
	showCmd.Flags().StringVar(&showToken, "token", "", "API token for the probe")

	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	st, err := state.Load()
	if err != nil {
		if errors.Is(err, state.ErrNotProvisioned) {
			fmt.Println("Device is not provisioned. Run 'reduct-device setup' first.")
			return nil
		}
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())

	var info *reduct.ServerInfo
	if showProbe {
		client := reduct.NewClient(st.ServerURL, showToken)
		info, err = client.ServerInfo(cmd.Context())
		if err != nil && showFormat != "json" {
			p.PrintError("Server probe failed", err, []string{
				"Verify the server URL is reachable from this device",
				"Pass --token if the server requires authentication",
			})
		}
	}

	switch showFormat {
	case "json":
		return printShowJSON(st, info)
	case "compact":
		p.Println(fmt.Sprintf("%s %s (host %s)", st.DeviceUID, st.ServerURL, st.ServerHost))
		if info != nil {
			p.Println(fmt.Sprintf("server %s, %d bucket(s), %d bytes used", info.Version, info.BucketCount, info.Usage))
		}
	case "detailed":
		fallthrough
	default:
		printShowDetailed(p, st, info)
	}
	return nil
}

func printShowDetailed(p *ui.Printer, st *state.DeviceState, info *reduct.ServerInfo) {
	p.PrintLines(
		"Device state:",
		fmt.Sprintf("  Device UID:     %s", st.DeviceUID),
		fmt.Sprintf("  Server URL:     %s", st.ServerURL),
		fmt.Sprintf("  Server host:    %s", st.ServerHost),
		fmt.Sprintf("  Provisioned at: %s", st.ProvisionedAt.Format("2006-01-02 15:04:05 MST")),
		fmt.Sprintf("  Updated at:     %s", st.UpdatedAt.Format("2006-01-02 15:04:05 MST")),
	)

	if info != nil {
		p.Newline()
		p.PrintSuccess("Server reachable", map[string]string{
			"Version":    info.Version,
			"Buckets":    fmt.Sprintf("%d", info.BucketCount),
			"Disk usage": fmt.Sprintf("%d bytes", info.Usage),
			"Uptime":     fmt.Sprintf("%ds", info.Uptime),
		})
	}
}

func printShowJSON(st *state.DeviceState, info *reduct.ServerInfo) error {
	out := struct {
		State  *state.DeviceState `json:"state"`
		Server *reduct.ServerInfo `json:"server,omitempty"`
	}{State: st, Server: info}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
