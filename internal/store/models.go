package store

import (
	"time"

	"zigbee-things/internal/classifier"
	"zigbee-things/internal/thing"
)

// Device is the persisted record of a classified device: the descriptor it
// was classified from and the last known state of its topology-bound
// properties.
type Device struct {
	IEEEAddress  string                     `json:"ieee_address"`
	FriendlyName string                     `json:"friendly_name,omitempty"`
	Descriptor   classifier.Descriptor      `json:"descriptor"`
	Type         string                     `json:"type,omitempty"`
	JoinedAt     time.Time                  `json:"joined_at"`
	LastSeen     time.Time                  `json:"last_seen"`
	Snapshots    map[string]*thing.Snapshot `json:"snapshots,omitempty"`
}

// Name returns the friendly name, falling back to the IEEE address.
func (d *Device) Name() string {
	if d.FriendlyName != "" {
		return d.FriendlyName
	}
	return d.IEEEAddress
}
