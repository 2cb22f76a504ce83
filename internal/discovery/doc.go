// Package discovery provides mDNS-based discovery of ReductStore servers.
//
// This package implements multicast DNS (mDNS) service discovery to locate
// ReductStore servers on the local network during device setup. The demo
// deployments advertise the store behind an "_http._tcp" service whose
// instance name or "app" TXT record contains "reduct".
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for HTTP service advertisements
//  3. Filters responses down to ReductStore servers
//  4. Collects server information (hostname, IP, port, TXT metadata)
//  5. Returns a list of discovered servers after the timeout period
//
// # Usage Example
//
//	// Discover servers with 10-second timeout
//	servers, err := discovery.ScanForServers(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, server := range servers {
//	    fmt.Printf("Found: %s\n", server.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
