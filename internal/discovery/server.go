package discovery

import (
	"fmt"
	"time"
)

// Server represents a discovered ReductStore server on the network
type Server struct {
	// Instance is the advertised mDNS instance name
	Instance string

	// Hostname is the mDNS hostname (e.g., "reductstore.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.178.94")
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "path=/", "version=1.12.0"
	Metadata map[string]string

	// DiscoveredAt is when the server was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the server
func (s *Server) String() string {
	return fmt.Sprintf("ReductStore %s (%s) at %s:%d", s.Instance, s.Hostname, s.IP, s.Port)
}

// BaseURL returns the HTTP base URL for the server, including any
// advertised base path
func (s *Server) BaseURL() string {
	url := fmt.Sprintf("http://%s:%d", s.IP, s.Port)
	if path := s.GetMetadata("path"); path != "" && path != "/" {
		url += path
	}
	return url
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Server) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
