package main

import (
	"testing"

	"github.com/reductstore/ros-reductstore-demo/internal/state"
)

func TestResolveConsoleTarget(t *testing.T) {
	provisioned := &state.DeviceState{
		DeviceUID: "orion",
		ServerURL: "http://10.0.0.5:8383",
	}

	tests := []struct {
		name       string
		st         *state.DeviceState
		flagURL    string
		flagBucket string
		wantURL    string
		wantBucket string
	}{
		{
			name:       "provisioned device defaults to stored server and own bucket",
			st:         provisioned,
			wantURL:    "http://10.0.0.5:8383",
			wantBucket: "orion",
		},
		{
			name:       "flags override stored values",
			st:         provisioned,
			flagURL:    "http://192.168.1.50:8383",
			flagBucket: "other",
			wantURL:    "http://192.168.1.50:8383",
			wantBucket: "other",
		},
		{
			name:       "unprovisioned device starts with discovery",
			st:         nil,
			wantURL:    "",
			wantBucket: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consoleServerURL = tt.flagURL
			consoleBucket = tt.flagBucket
			defer func() {
				consoleServerURL = ""
				consoleBucket = ""
			}()

			gotURL, gotBucket := resolveConsoleTarget(tt.st)
			if gotURL != tt.wantURL {
				t.Errorf("serverURL = %q, want %q", gotURL, tt.wantURL)
			}
			if gotBucket != tt.wantBucket {
				t.Errorf("bucket = %q, want %q", gotBucket, tt.wantBucket)
			}
		})
	}
}
