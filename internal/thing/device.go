package thing

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"zigbee-things/internal/zcl"
)

var (
	// ErrUnknownProperty is returned when a property name is not registered.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrReadOnly is returned when writing a read-only property.
	ErrReadOnly = errors.New("property is read-only")
)

// Action is an invocable operation on a device.
type Action struct {
	Name         string  `json:"name"`
	Title        string  `json:"title,omitempty"`
	SemanticType string  `json:"@type,omitempty"`
	Input        *Schema `json:"input,omitempty"`
	Endpoint     uint8   `json:"endpoint"`
	ClusterID    uint16  `json:"cluster_id"`
	Command      string  `json:"command"`
}

// EventDef is an event a device can raise. Button events carry the button
// index they correlate with. When Property is set, raising the event also
// stores Value into that property.
type EventDef struct {
	Name         string `json:"name"`
	Title        string `json:"title,omitempty"`
	SemanticType string `json:"@type,omitempty"`
	ButtonIndex  int    `json:"button_index,omitempty"`
	Endpoint     uint8  `json:"endpoint"`
	ClusterID    uint16 `json:"cluster_id"`
	Command      string `json:"command"`
	Property     string `json:"property,omitempty"`
	Value        any    `json:"value,omitempty"`
}

// ChangeFunc is called after a property value or schema bound changes.
type ChangeFunc func(d *Device, p *Property)

// Device is the classified result for one physical or bridged device: an
// owned property table, tag set, and action and event tables.
type Device struct {
	ID    string   `json:"id"`
	Model string   `json:"model,omitempty"`
	Type  string   `json:"type"`
	Tags  []string `json:"@type"`

	props   map[string]*Property
	order   []string
	actions map[string]*Action
	events  map[string]*EventDef
	graph   *Graph

	onChange ChangeFunc
}

// NewDevice creates an empty device.
func NewDevice(id, model string) *Device {
	return &Device{
		ID:      id,
		Model:   model,
		Tags:    []string{},
		props:   make(map[string]*Property),
		actions: make(map[string]*Action),
		events:  make(map[string]*EventDef),
		graph:   NewGraph(),
	}
}

// OnChange installs the change notification hook.
func (d *Device) OnChange(fn ChangeFunc) {
	d.onChange = fn
}

// AddTag adds a semantic tag, keeping tags unique and in insertion order.
func (d *Device) AddTag(tag string) {
	if !slices.Contains(d.Tags, tag) {
		d.Tags = append(d.Tags, tag)
	}
}

// HasTag reports whether the device carries a tag.
func (d *Device) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// AddProperty registers p under its name, replacing any existing property of
// the same name in place.
func (d *Device) AddProperty(p *Property) {
	if _, ok := d.props[p.Name]; !ok {
		d.order = append(d.order, p.Name)
	}
	p.dev = d
	d.props[p.Name] = p
}

// Property returns the named property, or nil.
func (d *Device) Property(name string) *Property {
	return d.props[name]
}

// Properties returns all properties in registration order.
func (d *Device) Properties() []*Property {
	out := make([]*Property, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.props[name])
	}
	return out
}

// VisibleProperties returns the properties exposed to external consumers.
func (d *Device) VisibleProperties() []*Property {
	var out []*Property
	for _, p := range d.Properties() {
		if p.Visible() {
			out = append(out, p)
		}
	}
	return out
}

// AddAction registers an action.
func (d *Device) AddAction(a *Action) {
	d.actions[a.Name] = a
}

// Action returns the named action, or nil.
func (d *Device) Action(name string) *Action {
	return d.actions[name]
}

// Actions returns all actions sorted by name.
func (d *Device) Actions() []*Action {
	names := make([]string, 0, len(d.actions))
	for n := range d.actions {
		names = append(names, n)
	}
	slices.Sort(names)
	out := make([]*Action, 0, len(names))
	for _, n := range names {
		out = append(out, d.actions[n])
	}
	return out
}

// AddEvent registers an event.
func (d *Device) AddEvent(e *EventDef) {
	d.events[e.Name] = e
}

// Event returns the named event, or nil.
func (d *Device) Event(name string) *EventDef {
	return d.events[name]
}

// Events returns all events sorted by name.
func (d *Device) Events() []*EventDef {
	names := make([]string, 0, len(d.events))
	for n := range d.events {
		names = append(names, n)
	}
	slices.Sort(names)
	out := make([]*EventDef, 0, len(names))
	for _, n := range names {
		out = append(out, d.events[n])
	}
	return out
}

// EventFor finds the event raised by a cluster command from an endpoint.
func (d *Device) EventFor(endpoint uint8, clusterID uint16, command string) *EventDef {
	for _, e := range d.Events() {
		if e.Endpoint == endpoint && e.ClusterID == clusterID && e.Command == command {
			return e
		}
	}
	return nil
}

// RaiseEvent resolves a received cluster command to the event it raises and
// applies the event's property side effect. It returns nil when the command
// raises no event.
func (d *Device) RaiseEvent(endpoint uint8, clusterID uint16, command string) (*EventDef, error) {
	e := d.EventFor(endpoint, clusterID, command)
	if e == nil || e.Property == "" {
		return e, nil
	}
	if err := d.SetValue(e.Property, e.Value); err != nil {
		return e, fmt.Errorf("event %s: %w", e.Name, err)
	}
	return e, nil
}

// Graph returns the device's constraint propagation graph.
func (d *Device) Graph() *Graph {
	return d.graph
}

// SetValue updates a property's cached value and synchronously runs every
// graph edge leaving it before returning.
func (d *Device) SetValue(name string, v any) error {
	p := d.props[name]
	if p == nil {
		return fmt.Errorf("%s: %w", name, ErrUnknownProperty)
	}
	d.set(p, v)
	return nil
}

func (d *Device) set(p *Property, v any) {
	p.Value = v
	d.changed(p)
	d.graph.fire(d, p.Name)
}

// ApplyAttribute decodes a raw attribute value into every property bound to
// it. A decode failure affects only that property; the remaining properties
// are still updated and the failures are returned joined.
func (d *Device) ApplyAttribute(endpoint uint8, clusterID, attrID uint16, raw any) ([]*Property, error) {
	var (
		updated []*Property
		errs    []error
	)
	for _, p := range d.Properties() {
		if p.Topology == nil {
			continue
		}
		idx := p.Topology.AttrIndex(endpoint, clusterID, attrID)
		if idx < 0 {
			continue
		}
		if p.raw == nil {
			p.raw = make([]any, len(p.Topology.AttrIDs))
		}
		p.raw[idx] = raw

		v, err := p.decode()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		if v == nil {
			continue
		}
		d.set(p, v)
		updated = append(updated, p)
	}
	return updated, errors.Join(errs...)
}

func (p *Property) decode() (any, error) {
	if p.Mask != 0 {
		n, ok := zcl.Numeric(p.raw[0])
		if !ok {
			return nil, fmt.Errorf("masked value is %T, not numeric", p.raw[0])
		}
		return uint64(n)&p.Mask != 0, nil
	}
	if p.Codec.Decode == nil {
		return p.raw[0], nil
	}
	return p.Codec.Decode(p.raw)
}

func (d *Device) changed(p *Property) {
	if d.onChange != nil {
		d.onChange(d, p)
	}
}

// MarshalJSON renders the device with its properties in registration order.
func (d *Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         string      `json:"id"`
		Model      string      `json:"model,omitempty"`
		Type       string      `json:"type"`
		Tags       []string    `json:"@type"`
		Properties []*Property `json:"properties"`
		Actions    []*Action   `json:"actions,omitempty"`
		Events     []*EventDef `json:"events,omitempty"`
	}{d.ID, d.Model, d.Type, d.Tags, d.Properties(), d.Actions(), d.Events()})
}
