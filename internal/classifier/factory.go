package classifier

import (
	"fmt"
	"strings"

	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

// SnapshotSource provides the persisted state of properties from an earlier
// classification of the same device.
type SnapshotSource interface {
	PropertySnapshot(deviceID, name string) (*thing.Snapshot, bool)
}

// Factory constructs topology-bound properties and derives their flags.
type Factory struct {
	registry  *zcl.Registry
	snapshots SnapshotSource
}

// NewFactory creates a factory. snapshots may be nil.
func NewFactory(registry *zcl.Registry, snapshots SnapshotSource) *Factory {
	return &Factory{registry: registry, snapshots: snapshots}
}

// AddProperty builds a property bound to the comma separated attribute names
// in attrPath and registers it on dev, replacing any property of the same
// name. The light-link profile is rewritten to Home Automation and, because
// it forbids reporting, makes the property fire-and-forget. A property gets a
// report configuration only when report is non-nil, attrPath is non-empty and
// it is not already fire-and-forget; otherwise nothing would ever update it
// after the initial read, so it is marked fire-and-forget.
func (f *Factory) AddProperty(
	dev *thing.Device,
	name string,
	schema thing.Schema,
	profileID uint16,
	endpoint uint8,
	clusterID uint16,
	attrPath string,
	codec thing.Codec,
	report *thing.ReportConfig,
	def any,
) (*thing.Property, error) {
	p := &thing.Property{
		Name:    name,
		Schema:  schema,
		Codec:   codec,
		Default: def,
	}
	if profileID == zcl.ProfileLightLink {
		profileID = zcl.ProfileHA
		p.FireAndForget = true
	}

	binding := &thing.TopologyBinding{ProfileID: profileID, Endpoint: endpoint, ClusterID: clusterID}
	for _, attr := range splitAttrs(attrPath) {
		a, err := f.registry.ResolveAttr(clusterID, attr)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		binding.Attrs = append(binding.Attrs, a.Name)
		binding.AttrIDs = append(binding.AttrIDs, a.ID)
		binding.DataTypes = append(binding.DataTypes, a.Type)
	}
	p.Topology = binding

	if f.snapshots != nil {
		if snap, ok := f.snapshots.PropertySnapshot(dev.ID, name); ok && snap.Matches(binding) {
			snap.Restore(p)
		}
	}

	if report != nil && len(binding.Attrs) > 0 && !p.FireAndForget {
		p.ConfigReportNeeded = true
		p.Report = *report
	} else {
		p.FireAndForget = true
	}
	p.BindNeeded = p.ConfigReportNeeded
	p.InitialReadNeeded = true

	dev.AddProperty(p)
	return p, nil
}

func splitAttrs(path string) []string {
	var out []string
	for _, s := range strings.Split(path, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
