package thing

import (
	"fmt"
	"strings"

	"zigbee-things/internal/zcl"
)

// PrivatePrefix marks a property as internal: it is tracked and bound like any
// other property but never exposed to external consumers.
const PrivatePrefix = "_"

// ValueType is the primitive type of a property value.
type ValueType string

const (
	TypeBoolean ValueType = "boolean"
	TypeInteger ValueType = "integer"
	TypeNumber  ValueType = "number"
	TypeString  ValueType = "string"
)

// Schema describes the shape of a property value.
type Schema struct {
	SemanticType string    `json:"@type,omitempty"`
	Title        string    `json:"title,omitempty"`
	Type         ValueType `json:"type"`
	Unit         string    `json:"unit,omitempty"`
	Minimum      *float64  `json:"minimum,omitempty"`
	Maximum      *float64  `json:"maximum,omitempty"`
	MultipleOf   float64   `json:"multipleOf,omitempty"`
	Enum         []string  `json:"enum,omitempty"`
	ReadOnly     bool      `json:"readOnly,omitempty"`
}

// Float returns a pointer to v, for filling Schema bounds.
func Float(v float64) *float64 {
	return &v
}

// ReportConfig is the attribute reporting configuration pushed to a device.
type ReportConfig struct {
	MinInterval      uint16  `json:"min_interval"`
	MaxInterval      uint16  `json:"max_interval"`
	ReportableChange float64 `json:"reportable_change"`
}

// TopologyBinding ties a property to one or more attributes of a cluster on
// a device endpoint. Attrs holds attribute names as registered in the ZCL
// registry; AttrIDs and DataTypes are resolved from it.
type TopologyBinding struct {
	ProfileID uint16   `json:"profile_id"`
	Endpoint  uint8    `json:"endpoint"`
	ClusterID uint16   `json:"cluster_id"`
	Attrs     []string `json:"attrs,omitempty"`
	AttrIDs   []uint16 `json:"attr_ids,omitempty"`
	DataTypes []uint8  `json:"data_types,omitempty"`
}

// AttrIndex returns the position of an attribute in the binding, or -1 when
// the binding does not cover it.
func (b *TopologyBinding) AttrIndex(endpoint uint8, clusterID uint16, attrID uint16) int {
	if b.Endpoint != endpoint || b.ClusterID != clusterID {
		return -1
	}
	for i, id := range b.AttrIDs {
		if id == attrID {
			return i
		}
	}
	return -1
}

// ExposeBinding ties a property to a remote bridge expose.
type ExposeBinding struct {
	Expose   string `json:"expose"`
	Property string `json:"property"`
}

// Codec converts between device-native values and property values.
// Decode receives one raw value per bound attribute, nil where no value has
// arrived yet, and returns nil when the property cannot be derived yet.
type Codec struct {
	Decode func(raw []any) (any, error)
	Encode func(v any) ([]any, error)
}

// CommandFunc maps a property write to a cluster command, for attributes
// that cannot be written directly.
type CommandFunc func(v any) (command string, payload []byte, err error)

// Property is the unit of exposed device state.
type Property struct {
	Name   string `json:"name"`
	Schema Schema `json:"schema"`

	Topology *TopologyBinding `json:"topology,omitempty"`
	Expose   *ExposeBinding   `json:"expose,omitempty"`

	FireAndForget      bool         `json:"fire_and_forget"`
	BindNeeded         bool         `json:"bind_needed"`
	ConfigReportNeeded bool         `json:"config_report_needed"`
	Report             ReportConfig `json:"report"`
	InitialReadNeeded  bool         `json:"initial_read_needed"`

	Value       any    `json:"value,omitempty"`
	Default     any    `json:"default,omitempty"`
	Mask        uint64 `json:"mask,omitempty"`
	ButtonIndex int    `json:"button_index,omitempty"`

	Codec   Codec       `json:"-"`
	Command CommandFunc `json:"-"`

	raw []any
	dev *Device
}

// Visible reports whether the property is exposed to external consumers.
func (p *Property) Visible() bool {
	return !strings.HasPrefix(p.Name, PrivatePrefix)
}

// Current returns the cached value, or the default until a value arrives.
func (p *Property) Current() any {
	if p.Value != nil {
		return p.Value
	}
	return p.Default
}

// Known reports whether a real value has arrived.
func (p *Property) Known() bool {
	return p.Value != nil
}

// Number returns the cached value as float64. Defaults do not count.
func (p *Property) Number() (float64, bool) {
	if p.Value == nil {
		return 0, false
	}
	return zcl.Numeric(p.Value)
}

// SetMinimum sets the schema minimum, clamped so it never exceeds the
// maximum, and notifies the owning device when the bound changes.
func (p *Property) SetMinimum(v float64) {
	if p.Schema.Maximum != nil && v > *p.Schema.Maximum {
		v = *p.Schema.Maximum
	}
	if p.Schema.Minimum != nil && *p.Schema.Minimum == v {
		return
	}
	p.Schema.Minimum = Float(v)
	p.notify()
}

// SetMaximum sets the schema maximum, clamped so it never drops below the
// minimum, and notifies the owning device when the bound changes.
func (p *Property) SetMaximum(v float64) {
	if p.Schema.Minimum != nil && v < *p.Schema.Minimum {
		v = *p.Schema.Minimum
	}
	if p.Schema.Maximum != nil && *p.Schema.Maximum == v {
		return
	}
	p.Schema.Maximum = Float(v)
	p.notify()
}

// Validate checks the flag invariants of a constructed property.
func (p *Property) Validate() error {
	if (p.Topology == nil) == (p.Expose == nil) {
		return fmt.Errorf("property %q: exactly one binding must be set", p.Name)
	}
	if p.FireAndForget && p.ConfigReportNeeded {
		return fmt.Errorf("property %q: fire-and-forget property cannot need report config", p.Name)
	}
	if p.Topology != nil && !p.FireAndForget && len(p.Topology.Attrs) == 0 {
		return fmt.Errorf("property %q: reported property has no attribute path", p.Name)
	}
	return nil
}

func (p *Property) notify() {
	if p.dev != nil {
		p.dev.changed(p)
	}
}
