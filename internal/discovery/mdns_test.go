package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantInstance string
		wantIP       string
		wantPort     int
	}{
		{
			name: "reduct instance with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "reductstore"},
				HostName:      "reductstore.local.",
				Port:          8383,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"path=/", "version=1.12.0"},
			},
			wantNil:      false,
			wantInstance: "reductstore",
			wantIP:       "192.168.4.16",
			wantPort:     8383,
		},
		{
			name: "reduct app TXT record",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "storage"},
				HostName:      "storage.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
				Text:          []string{"app=reductstore"},
			},
			wantNil:      false,
			wantInstance: "storage",
			wantIP:       "10.0.0.5",
			wantPort:     80,
		},
		{
			name: "no port specified defaults to 8383",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "cos-robotics-model-reductstore"},
				HostName:      "ingress.local.",
				Port:          0,
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantNil:      false,
			wantInstance: "cos-robotics-model-reductstore",
			wantIP:       "172.16.0.1",
			wantPort:     8383,
		},
		{
			name: "unrelated HTTP service",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "printer"},
				HostName:      "printer.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "reductstore"},
				HostName:      "reductstore.local.",
				Port:          8383,
				AddrIPv4:      []net.IP{},
				AddrIPv6:      []net.IP{},
			},
			wantNil: true,
		},
		{
			name: "IPv6 only server",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "reductstore"},
				HostName:      "reductstore.local.",
				Port:          8383,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantNil:      false,
			wantInstance: "reductstore",
			wantIP:       "fe80::1",
			wantPort:     8383,
		},
		{
			name: "both IPv4 and IPv6 prefers IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "reductstore"},
				HostName:      "reductstore.local.",
				Port:          8383,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantNil:      false,
			wantInstance: "reductstore",
			wantIP:       "192.168.1.50",
			wantPort:     8383,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if server != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", server)
				}
				return
			}

			if server == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil server")
			}

			if server.Instance != tt.wantInstance {
				t.Errorf("server.Instance = %v, want %v", server.Instance, tt.wantInstance)
			}

			if server.IP != tt.wantIP {
				t.Errorf("server.IP = %v, want %v", server.IP, tt.wantIP)
			}

			if server.Port != tt.wantPort {
				t.Errorf("server.Port = %v, want %v", server.Port, tt.wantPort)
			}

			if server.Hostname != tt.entry.HostName {
				t.Errorf("server.Hostname = %v, want %v", server.Hostname, tt.entry.HostName)
			}

			// Check that DiscoveredAt is recent (within last second)
			if time.Since(server.DiscoveredAt) > time.Second {
				t.Errorf("server.DiscoveredAt is not recent: %v", server.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "reductstore"},
		HostName:      "reductstore.local.",
		Port:          8383,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
		Text:          []string{"path=/", "version=1.12.0", "flag", "app=reductstore"},
	}

	server := scanner.parseServiceEntry(entry)
	if server == nil {
		t.Fatal("parseServiceEntry() = nil, want server")
	}

	expectedMetadata := map[string]string{
		"path":    "/",
		"version": "1.12.0",
		"flag":    "", // Key without value
		"app":     "reductstore",
	}

	if len(server.Metadata) != len(expectedMetadata) {
		t.Errorf("server.Metadata has %d entries, want %d", len(server.Metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := server.Metadata[key]; !ok {
			t.Errorf("server.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("server.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestCollectServers(t *testing.T) {
	scanner := NewScanner()
	entries := make(chan *zeroconf.ServiceEntry)
	results := scanner.collectServers(entries)

	entries <- &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "reductstore"},
		HostName:      "reductstore.local.",
		Port:          8383,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
	}
	entries <- &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "printer"},
		HostName:      "printer.local.",
		Port:          631,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.4.17")},
	}
	close(entries)

	servers := <-results
	if len(servers) != 1 {
		t.Fatalf("collected %d servers, want 1", len(servers))
	}
	if servers[0].Instance != "reductstore" {
		t.Errorf("Instance = %q, want reductstore", servers[0].Instance)
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestIsReductEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *zeroconf.ServiceEntry
		want  bool
	}{
		{
			name:  "instance contains reduct",
			entry: &zeroconf.ServiceEntry{ServiceRecord: zeroconf.ServiceRecord{Instance: "ReductStore on orion"}},
			want:  true,
		},
		{
			name: "app TXT names reduct",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "storage"},
				Text:          []string{"app=ReductStore"},
			},
			want: true,
		},
		{
			name: "unrelated app TXT",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "storage"},
				Text:          []string{"app=minio"},
			},
			want: false,
		},
		{
			name:  "no hint at all",
			entry: &zeroconf.ServiceEntry{ServiceRecord: zeroconf.ServiceRecord{Instance: "printer"}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isReductEntry(tt.entry); got != tt.want {
				t.Errorf("isReductEntry() = %v, want %v", got, tt.want)
			}
		})
	}
}
