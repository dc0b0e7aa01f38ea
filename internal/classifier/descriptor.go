package classifier

import (
	"slices"
	"strings"
)

// PowerSource is the primary power source reported by a device.
type PowerSource int

const (
	PowerUnknown PowerSource = iota
	PowerMains
	PowerBattery
)

func (p PowerSource) String() string {
	switch p {
	case PowerMains:
		return "mains"
	case PowerBattery:
		return "battery"
	default:
		return "unknown"
	}
}

// MarshalText encodes the power source by name.
func (p PowerSource) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts "mains", "battery" or anything else as unknown.
func (p *PowerSource) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "mains":
		*p = PowerMains
	case "battery":
		*p = PowerBattery
	default:
		*p = PowerUnknown
	}
	return nil
}

// Endpoint is one addressable sub-unit of a device.
type Endpoint struct {
	ID          uint8    `json:"id" yaml:"id"`
	ProfileID   uint16   `json:"profile_id" yaml:"profile_id"`
	DeviceID    uint16   `json:"device_id" yaml:"device_id"`
	InClusters  []uint16 `json:"in_clusters" yaml:"in_clusters"`
	OutClusters []uint16 `json:"out_clusters" yaml:"out_clusters"`
}

// HasIn reports whether the endpoint serves a cluster.
func (e Endpoint) HasIn(clusterID uint16) bool {
	return slices.Contains(e.InClusters, clusterID)
}

// HasOut reports whether the endpoint is a client of a cluster.
func (e Endpoint) HasOut(clusterID uint16) bool {
	return slices.Contains(e.OutClusters, clusterID)
}

// Descriptor is the discovered capability set of one device. It is the only
// input to classification.
type Descriptor struct {
	IEEEAddress       string             `json:"ieee_address" yaml:"ieee_address"`
	Model             string             `json:"model" yaml:"model"`
	Endpoints         map[uint8]Endpoint `json:"endpoints" yaml:"endpoints"`
	ZoneType          *uint16            `json:"zone_type,omitempty" yaml:"zone_type,omitempty"`
	ColorCapabilities *uint16            `json:"color_capabilities,omitempty" yaml:"color_capabilities,omitempty"`
	PowerSource       PowerSource        `json:"power_source" yaml:"power_source"`
	BatteryBackup     bool               `json:"battery_backup,omitempty" yaml:"battery_backup,omitempty"`
	Coordinator       bool               `json:"coordinator,omitempty" yaml:"coordinator,omitempty"`
}

// batteryVoltageModels report BatteryVoltage even though they do not declare
// a battery power source.
var batteryVoltageModels = []string{
	"lumi.sensor_switch",
	"lumi.sensor_switch.aq2",
	"lumi.sensor_magnet",
	"lumi.sensor_ht",
	"lumi.weather",
	"SML001",
}

// EndpointIDs returns the endpoint ids in ascending order.
func (d *Descriptor) EndpointIDs() []uint8 {
	ids := make([]uint8, 0, len(d.Endpoints))
	for id := range d.Endpoints {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// InEndpoints returns, in ascending order, the endpoints serving a cluster.
func (d *Descriptor) InEndpoints(clusterID uint16) []Endpoint {
	var out []Endpoint
	for _, id := range d.EndpointIDs() {
		if ep := d.Endpoints[id]; ep.HasIn(clusterID) {
			out = append(out, ep)
		}
	}
	return out
}

// OutEndpoints returns, in ascending order, the endpoints that are clients of
// a cluster.
func (d *Descriptor) OutEndpoints(clusterID uint16) []Endpoint {
	var out []Endpoint
	for _, id := range d.EndpointIDs() {
		if ep := d.Endpoints[id]; ep.HasOut(clusterID) {
			out = append(out, ep)
		}
	}
	return out
}

// FirstIn returns the lowest endpoint serving a cluster.
func (d *Descriptor) FirstIn(clusterID uint16) (Endpoint, bool) {
	eps := d.InEndpoints(clusterID)
	if len(eps) == 0 {
		return Endpoint{}, false
	}
	return eps[0], true
}

// FirstOut returns the lowest endpoint that is a client of a cluster.
func (d *Descriptor) FirstOut(clusterID uint16) (Endpoint, bool) {
	eps := d.OutEndpoints(clusterID)
	if len(eps) == 0 {
		return Endpoint{}, false
	}
	return eps[0], true
}

// HasIn reports whether any endpoint serves a cluster.
func (d *Descriptor) HasIn(clusterID uint16) bool {
	_, ok := d.FirstIn(clusterID)
	return ok
}

// HasOut reports whether any endpoint is a client of a cluster.
func (d *Descriptor) HasOut(clusterID uint16) bool {
	_, ok := d.FirstOut(clusterID)
	return ok
}

// DeviceID returns the device id of the lowest endpoint using a profile.
func (d *Descriptor) DeviceID(profileID uint16) (uint16, bool) {
	for _, id := range d.EndpointIDs() {
		if ep := d.Endpoints[id]; ep.ProfileID == profileID {
			return ep.DeviceID, true
		}
	}
	return 0, false
}

// ReportsBatteryVoltage reports whether BatteryVoltage should be exposed.
func (d *Descriptor) ReportsBatteryVoltage() bool {
	return d.PowerSource == PowerBattery || d.BatteryBackup || slices.Contains(batteryVoltageModels, d.Model)
}
