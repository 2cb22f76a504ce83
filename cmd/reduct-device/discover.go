package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reductstore/ros-reductstore-demo/internal/discovery"
)

var discoverTimeout int

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan for ReductStore servers on the network",
	Long: `Scan for ReductStore servers using mDNS/DNS-SD discovery.

This command listens for HTTP service broadcasts and displays every
server that identifies itself as a ReductStore, with its address and
advertised metadata.`,
	Example: `  # Scan for 10 seconds (default)
  reduct-device discover

  # Quick 3-second scan
  reduct-device discover --timeout 3`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 10, "Scan timeout in seconds")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for ReductStore servers (timeout: %ds)...\n\n", discoverTimeout)

	servers, err := discovery.ScanForServers(time.Duration(discoverTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(servers) == 0 {
		fmt.Println("No servers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the server is running and on the same network segment")
		fmt.Println("  - Check that the firewall allows mDNS (UDP port 5353)")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Pass --server-url to setup manually if discovery fails")
		return nil
	}

	fmt.Printf("Found %d server(s):\n\n", len(servers))

	for i, server := range servers {
		fmt.Printf("%d. %s\n", i+1, server.Instance)
		fmt.Printf("   Address: %s\n", server.BaseURL())
		if len(server.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", server.Metadata)
		}
		fmt.Println()
	}

	fmt.Println("Use 'reduct-device setup --server-url <url>' to provision against a server")

	return nil
}
