// Package classifier turns a discovered Zigbee capability descriptor into a
// typed device: a device type, semantic tags and a set of bindable
// properties, actions and events. Classification is an ordered decision list
// over the endpoint and cluster topology; the first matching rule picks the
// archetype and common post-processing runs regardless of the match.
package classifier

import (
	"errors"
	"fmt"
	"log/slog"

	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

// ErrCoordinator is returned for the network coordinator, which is never
// classified.
var ErrCoordinator = errors.New("device is the network coordinator")

// Config holds the classifier options.
type Config struct {
	LastSeen bool `yaml:"last_seen"`
}

// Classifier classifies descriptors. It holds no per-device state.
type Classifier struct {
	factory *Factory
	cfg     Config
	logger  *slog.Logger
}

// New creates a classifier. snapshots may be nil.
func New(registry *zcl.Registry, snapshots SnapshotSource, cfg Config, logger *slog.Logger) *Classifier {
	return &Classifier{
		factory: NewFactory(registry, snapshots),
		cfg:     cfg,
		logger:  logger.With("component", "classifier"),
	}
}

// Classify builds the device for a descriptor. The result depends only on
// the descriptor, the configuration and the snapshot source.
func (c *Classifier) Classify(desc *Descriptor) (*thing.Device, error) {
	if desc.Coordinator {
		return nil, ErrCoordinator
	}

	b := &builder{
		desc:    desc,
		dev:     thing.NewDevice(desc.IEEEAddress, desc.Model),
		factory: c.factory,
	}
	arch := Match(desc)
	build(b, arch)
	b.postProcess(arch, c.cfg)
	if b.err != nil {
		return nil, fmt.Errorf("classify %s: %w", desc.IEEEAddress, b.err)
	}
	for _, p := range b.dev.Properties() {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("classify %s: %w", desc.IEEEAddress, err)
		}
	}

	c.logger.Debug("device classified",
		"ieee", desc.IEEEAddress,
		"model", desc.Model,
		"archetype", arch.String(),
		"type", b.dev.Type,
		"properties", len(b.dev.Properties()),
	)
	return b.dev, nil
}

// builder accumulates the classified device. The first construction error is
// kept and reported once classification finishes.
type builder struct {
	desc    *Descriptor
	dev     *thing.Device
	factory *Factory
	err     error
}

func (b *builder) setType(typ string, tags ...string) {
	b.dev.Type = typ
	for _, t := range tags {
		b.dev.AddTag(t)
	}
}

// prop adds a property bound to attrs of a cluster on ep. After an error the
// returned property is detached from the device so callers can keep going.
func (b *builder) prop(name string, schema thing.Schema, ep Endpoint, clusterID uint16, attrs string, codec thing.Codec, report *thing.ReportConfig) *thing.Property {
	if b.err != nil {
		return &thing.Property{Name: name}
	}
	p, err := b.factory.AddProperty(b.dev, name, schema, ep.ProfileID, ep.ID, clusterID, attrs, codec, report, nil)
	if err != nil {
		b.err = err
		return &thing.Property{Name: name}
	}
	return p
}

// event registers an event raised by a received cluster command.
func (b *builder) event(e thing.EventDef) {
	b.dev.AddEvent(&e)
}

func report(minInterval, maxInterval uint16, change float64) *thing.ReportConfig {
	return &thing.ReportConfig{MinInterval: minInterval, MaxInterval: maxInterval, ReportableChange: change}
}

// indexed returns name for the first instance and name2, name3... after it.
func indexed(name string, i int) string {
	if i == 0 {
		return name
	}
	return fmt.Sprintf("%s%d", name, i+1)
}
