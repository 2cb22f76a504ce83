package discovery

import (
	"testing"
	"time"
)

func TestServer_String(t *testing.T) {
	server := &Server{
		Instance: "reductstore",
		Hostname: "reductstore.local.",
		IP:       "192.168.4.16",
		Port:     8383,
	}

	expected := "ReductStore reductstore (reductstore.local.) at 192.168.4.16:8383"
	if server.String() != expected {
		t.Errorf("Server.String() = %v, want %v", server.String(), expected)
	}
}

func TestServer_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		server   *Server
		expected string
	}{
		{
			name: "default port",
			server: &Server{
				IP:   "192.168.4.16",
				Port: 8383,
			},
			expected: "http://192.168.4.16:8383",
		},
		{
			name: "root path is not appended",
			server: &Server{
				IP:       "10.0.0.5",
				Port:     80,
				Metadata: map[string]string{"path": "/"},
			},
			expected: "http://10.0.0.5:80",
		},
		{
			name: "ingress base path",
			server: &Server{
				IP:       "192.168.178.94",
				Port:     80,
				Metadata: map[string]string{"path": "/cos-robotics-model-reductstore"},
			},
			expected: "http://192.168.178.94:80/cos-robotics-model-reductstore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.server.BaseURL(); got != tt.expected {
				t.Errorf("Server.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestServer_GetMetadata(t *testing.T) {
	server := &Server{
		Metadata: map[string]string{
			"path":    "/",
			"version": "1.12.0",
		},
	}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "existing key",
			key:      "path",
			expected: "/",
		},
		{
			name:     "another existing key",
			key:      "version",
			expected: "1.12.0",
		},
		{
			name:     "non-existent key",
			key:      "missing",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := server.GetMetadata(tt.key); got != tt.expected {
				t.Errorf("Server.GetMetadata(%v) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestServer_GetMetadata_NilMap(t *testing.T) {
	server := &Server{
		Metadata: nil,
	}

	if got := server.GetMetadata("anything"); got != "" {
		t.Errorf("Server.GetMetadata() with nil map = %v, want empty string", got)
	}
}

func TestServer_DiscoveredAt(t *testing.T) {
	now := time.Now()
	server := &Server{
		Instance:     "reductstore",
		DiscoveredAt: now,
	}

	if server.DiscoveredAt != now {
		t.Errorf("Server.DiscoveredAt = %v, want %v", server.DiscoveredAt, now)
	}
}
