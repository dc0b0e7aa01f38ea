package thing

import "slices"

// Snapshot is the persisted state of a topology-bound property, used to
// rehydrate the property when the same device is classified again.
type Snapshot struct {
	ProfileID uint16   `json:"profile_id"`
	Endpoint  uint8    `json:"endpoint"`
	ClusterID uint16   `json:"cluster_id"`
	Attrs     []string `json:"attrs,omitempty"`
	Value     any      `json:"value,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	Enum      []string `json:"enum,omitempty"`
}

// Snapshot captures the property's binding and state. Expose-bound
// properties return nil.
func (p *Property) Snapshot() *Snapshot {
	if p.Topology == nil {
		return nil
	}
	return &Snapshot{
		ProfileID: p.Topology.ProfileID,
		Endpoint:  p.Topology.Endpoint,
		ClusterID: p.Topology.ClusterID,
		Attrs:     slices.Clone(p.Topology.Attrs),
		Value:     p.Value,
		Minimum:   p.Schema.Minimum,
		Maximum:   p.Schema.Maximum,
		Enum:      slices.Clone(p.Schema.Enum),
	}
}

// Matches reports whether the snapshot was taken from the same profile,
// endpoint, cluster and attribute path as b.
func (s *Snapshot) Matches(b *TopologyBinding) bool {
	return b != nil &&
		s.ProfileID == b.ProfileID &&
		s.Endpoint == b.Endpoint &&
		s.ClusterID == b.ClusterID &&
		slices.Equal(s.Attrs, b.Attrs)
}

// Restore copies the snapshot's value, bounds and enum into p.
func (s *Snapshot) Restore(p *Property) {
	if s.Value != nil {
		p.Value = s.Value
	}
	if s.Minimum != nil {
		p.Schema.Minimum = Float(*s.Minimum)
	}
	if s.Maximum != nil {
		p.Schema.Maximum = Float(*s.Maximum)
	}
	if len(s.Enum) > 0 {
		p.Schema.Enum = slices.Clone(s.Enum)
	}
}
