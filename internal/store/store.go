package store

import (
	"errors"
	"time"

	"zigbee-things/internal/thing"
)

// ErrNotFound is returned when a requested entity does not exist in the store.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface.
type Store interface {
	// Device operations
	SaveDevice(dev *Device) error
	GetDevice(ieee string) (*Device, error)
	DeleteDevice(ieee string) error
	ListDevices() ([]*Device, error)

	// UpdateDevice atomically reads, modifies, and saves a device in a single
	// transaction. Returns ErrNotFound if the device does not exist.
	UpdateDevice(ieee string, fn func(dev *Device) error) error

	// Property snapshots
	SaveSnapshots(st DeviceState) error
	PropertySnapshot(ieee, name string) (*thing.Snapshot, bool)

	// Close the store
	Close() error
}

// DeviceState is a detached copy of a device's persisted state. It holds no
// reference into the live device, so it can be saved after the device's lock
// is released.
type DeviceState struct {
	IEEE      string
	Type      string
	Snapshots map[string]*thing.Snapshot
	LastSeen  time.Time
}

// CaptureState copies the snapshots of td's topology-bound properties. A zero
// seen leaves the stored last-seen time untouched on save.
func CaptureState(td *thing.Device, seen time.Time) DeviceState {
	snaps := make(map[string]*thing.Snapshot)
	for _, p := range td.Properties() {
		if snap := p.Snapshot(); snap != nil {
			snaps[p.Name] = snap
		}
	}
	return DeviceState{IEEE: td.ID, Type: td.Type, Snapshots: snaps, LastSeen: seen}
}
