// Package identity derives and validates the opaque device identity token
// that names a robot to the observability stack.
//
// The preferred source is the systemd machine ID (/etc/machine-id), which is
// stable across reboots and unique per installation. When no machine ID is
// available (containers, stripped-down images), a hostname-based token with a
// random suffix is generated instead.
package identity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// MachineIDPath is the default location of the systemd machine ID.
const MachineIDPath = "/etc/machine-id"

// MaxTokenLength bounds identity tokens. Tokens are substituted verbatim
// into config files and used as bucket names, so they stay short.
const MaxTokenLength = 64

// ValidationError describes an identity token that cannot be used.
type ValidationError struct {
	// Token is the offending value
	Token string

	// Reason is a human-readable description of the problem
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid device identity %q: %s", e.Token, e.Reason)
}

// Validate checks that a token is usable as a device identity.
//
// Tokens end up verbatim inside configuration files and store bucket names,
// so anything that could change meaning in those contexts is rejected:
// whitespace, path separators, and control characters.
func Validate(token string) error {
	if token == "" {
		return &ValidationError{Token: token, Reason: "empty"}
	}
	if len(token) > MaxTokenLength {
		return &ValidationError{Token: token, Reason: fmt.Sprintf("longer than %d characters", MaxTokenLength)}
	}
	for _, r := range token {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return &ValidationError{Token: token, Reason: "contains whitespace"}
		case r == '/' || r == '\\':
			return &ValidationError{Token: token, Reason: "contains path separator"}
		case r < 0x20 || r == 0x7f:
			return &ValidationError{Token: token, Reason: "contains control character"}
		}
	}
	return nil
}

// FromMachineID reads the device identity from the machine ID file at path.
// An empty path means MachineIDPath.
func FromMachineID(path string) (string, error) {
	if path == "" {
		path = MachineIDPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read machine ID: %w", err)
	}

	id := strings.TrimSpace(string(data))
	if err := Validate(id); err != nil {
		return "", fmt.Errorf("machine ID at %s: %w", path, err)
	}
	return id, nil
}

// Generate builds a fallback identity from the hostname plus a random
// suffix. Used when no machine ID file exists.
func Generate() (string, error) {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "device"
	}
	// Hostname may contain dots; keep only the first label
	if idx := strings.IndexByte(hostname, '.'); idx > 0 {
		hostname = hostname[:idx]
	}
	hostname = strings.ToLower(hostname)

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate identity suffix: %w", err)
	}

	token := fmt.Sprintf("%s-%s", hostname, hex.EncodeToString(suffix))
	if len(token) > MaxTokenLength {
		token = token[len(token)-MaxTokenLength:]
	}
	if err := Validate(token); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the device identity: machine ID when present, generated
// fallback otherwise. An empty machineIDPath means MachineIDPath.
func Resolve(machineIDPath string) (string, error) {
	id, err := FromMachineID(machineIDPath)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Generate()
	}
	return "", err
}
