package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type ReductStore demo deployments
	// advertise under
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for server discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default HTTP port for ReductStore servers
	DefaultPort = 8383
)

// Scanner handles mDNS server discovery
type Scanner struct {
	// Timeout is the maximum time to wait for server discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForServers discovers all ReductStore servers on the local network
// Returns a list of discovered servers or an error
func (s *Scanner) ScanForServers() ([]*Server, error) {
	return s.ScanForServersWithContext(context.Background())
}

// ScanForServersWithContext discovers servers with a custom context
func (s *Scanner) ScanForServersWithContext(ctx context.Context) ([]*Server, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	results := s.collectServers(entries)

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Start browsing for HTTP services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for context to complete (timeout or cancellation)
	<-ctx.Done()

	// The resolver closes entries after the context ends; the collected
	// list is only read after the collector has drained the channel.
	return <-results, nil
}

// collectServers drains service entries into a server list, delivered on
// the returned channel once the entries channel closes.
func (s *Scanner) collectServers(entries <-chan *zeroconf.ServiceEntry) <-chan []*Server {
	results := make(chan []*Server, 1)
	go func() {
		servers := make([]*Server, 0)
		for entry := range entries {
			if server := s.parseServiceEntry(entry); server != nil {
				servers = append(servers, server)
			}
		}
		results <- servers
	}()
	return results
}

// WaitForServer waits for a server whose instance name contains name
// Returns the server or an error if not found within timeout
func (s *Scanner) WaitForServer(name string) (*Server, error) {
	return s.WaitForServerWithContext(context.Background(), name)
}

// WaitForServerWithContext waits for a specific server with a custom context
func (s *Scanner) WaitForServerWithContext(ctx context.Context, name string) (*Server, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	serverChan := make(chan *Server, 1)

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Browse for services in a goroutine
	go func() {
		for entry := range entries {
			server := s.parseServiceEntry(entry)
			if server != nil && strings.Contains(strings.ToLower(server.Instance), strings.ToLower(name)) {
				serverChan <- server
				cancel() // Found the server, cancel context
				return
			}
		}
	}()

	// Start browsing for HTTP services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for server or timeout
	select {
	case server := <-serverChan:
		return server, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("server matching %q not found within timeout", name)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Server
// Returns nil if the entry does not look like a ReductStore server
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Server {
	if !isReductEntry(entry) {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	// Get port (default if not specified)
	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Server{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// isReductEntry filters generic HTTP advertisements down to ReductStore
// servers. The demo deployments put "reduct" in the instance name or
// an app TXT record.
func isReductEntry(entry *zeroconf.ServiceEntry) bool {
	if strings.Contains(strings.ToLower(entry.Instance), "reduct") {
		return true
	}
	for _, txt := range entry.Text {
		lower := strings.ToLower(txt)
		if strings.HasPrefix(lower, "app=") && strings.Contains(lower, "reduct") {
			return true
		}
	}
	return false
}

// ScanForServers is a convenience function to scan with a custom timeout
func ScanForServers(timeout time.Duration) ([]*Server, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForServers()
}

// QuickScan performs a fast scan with a 3-second timeout
func QuickScan() ([]*Server, error) {
	scanner := NewScanner()
	scanner.Timeout = 3 * time.Second
	return scanner.ScanForServers()
}
