package state

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/reductstore/ros-reductstore-demo/internal/identity"
	"github.com/reductstore/ros-reductstore-demo/internal/logging"
	"github.com/reductstore/ros-reductstore-demo/internal/urls"
)

// CurrentVersion is the state file schema version.
const CurrentVersion = 1

// DeviceState is the persisted record of the last applied provisioning
// values. These are the "old" values the next synchronization run compares
// against.
type DeviceState struct {
	// Version is the state file schema version
	Version int `yaml:"version"`

	// DeviceUID is the opaque identity token last applied to the config set
	DeviceUID string `yaml:"device_uid"`

	// ServerURL is the server base URL last applied to the config set
	ServerURL string `yaml:"server_url"`

	// ServerHost is the bare host derived from ServerURL at the time it
	// was applied. Stored rather than re-derived so the synchronizer
	// replaces exactly what was written into the files, even if the
	// derivation rules ever change.
	ServerHost string `yaml:"server_host"`

	// ProvisionedAt is when the device was first set up
	ProvisionedAt time.Time `yaml:"provisioned_at"`

	// UpdatedAt is when the values were last re-applied
	UpdatedAt time.Time `yaml:"updated_at"`
}

// New creates a DeviceState for a freshly provisioned device.
// The server host is derived from the URL; the URL must be well-formed.
func New(deviceUID, serverURL string) (*DeviceState, error) {
	if err := identity.Validate(deviceUID); err != nil {
		return nil, err
	}
	host, err := urls.Host(serverURL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &DeviceState{
		Version:       CurrentVersion,
		DeviceUID:     deviceUID,
		ServerURL:     serverURL,
		ServerHost:    host,
		ProvisionedAt: now,
		UpdatedAt:     now,
	}, nil
}

// Apply records newly applied values, refreshing the derived host and the
// update timestamp. Called after a successful synchronization run.
//
// A URL whose host cannot be derived leaves the stored host empty instead
// of failing: by the time Apply runs the config tree has already been
// rewritten, and the state must still be persisted or every later run
// would repeat the same error. The synchronizer treats a missing host as
// a skipped host pass with a warning.
func (s *DeviceState) Apply(deviceUID, serverURL string) error {
	if err := identity.Validate(deviceUID); err != nil {
		return err
	}
	host, err := urls.Host(serverURL)
	if err != nil {
		logging.Warn("Could not derive server host, clearing stored host",
			zap.String("server_url", serverURL),
			zap.Error(err),
		)
		host = ""
	}

	s.DeviceUID = deviceUID
	s.ServerURL = serverURL
	s.ServerHost = host
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate checks a loaded state file for the fields Sync depends on.
func (s *DeviceState) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported state version: %d (expected %d)", s.Version, CurrentVersion)
	}
	if err := identity.Validate(s.DeviceUID); err != nil {
		return fmt.Errorf("stored device UID: %w", err)
	}
	if s.ServerURL == "" {
		return fmt.Errorf("stored server URL is empty")
	}
	return nil
}
