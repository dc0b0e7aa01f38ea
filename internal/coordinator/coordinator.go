package coordinator

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"zigbee-things/internal/classifier"
	"zigbee-things/internal/store"
	"zigbee-things/internal/zcl"
)

// Config holds coordinator configuration.
type Config struct {
	// LocalIEEE is the coordinator's own address, used as the bind target.
	LocalIEEE string `yaml:"local_ieee"`
	// LocalEndpoint is the coordinator endpoint that receives bound traffic.
	LocalEndpoint uint8 `yaml:"local_endpoint"`
}

// Address is a 64-bit IEEE address. It marshals as 16 upper-case hex digits.
type Address [8]byte

func (a Address) String() string {
	return fmt.Sprintf("%016X", a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseIEEE(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseIEEE parses "DD:DD:DD:DD:DD:DD:DD:DD" or "DDDDDDDDDDDDDDDD".
func ParseIEEE(s string) (Address, error) {
	var result Address
	s = strings.ReplaceAll(s, ":", "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return result, fmt.Errorf("parse ieee address: %w", err)
	}
	if len(b) != 8 {
		return result, fmt.Errorf("ieee address must be 8 bytes, got %d", len(b))
	}
	copy(result[:], b)
	return result, nil
}

// Coordinator owns the classified devices of the network and drives the
// transport according to each property's binding flags.
type Coordinator struct {
	transport  Transport
	store      store.Store
	registry   *zcl.Registry
	classifier *classifier.Classifier
	events     *EventBus
	devices    *DeviceManager
	logger     *slog.Logger
	localIEEE  Address
	localEP    uint8
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a coordinator. The classifier should consult st for property
// snapshots so that restored devices come back with their last known state.
func New(transport Transport, st store.Store, registry *zcl.Registry, cls *classifier.Classifier, events *EventBus, cfg Config, logger *slog.Logger) (*Coordinator, error) {
	var local Address
	if cfg.LocalIEEE != "" {
		var err error
		if local, err = ParseIEEE(cfg.LocalIEEE); err != nil {
			return nil, fmt.Errorf("local ieee: %w", err)
		}
	}
	ep := cfg.LocalEndpoint
	if ep == 0 {
		ep = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		transport:  transport,
		store:      st,
		registry:   registry,
		classifier: cls,
		events:     events,
		logger:     logger,
		localIEEE:  local,
		localEP:    ep,
		ctx:        ctx,
		cancel:     cancel,
	}
	c.devices = NewDeviceManager(c)
	return c, nil
}

// Context returns the coordinator's context, which is cancelled on Stop().
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Start reclassifies every persisted device. Devices are not reconfigured:
// their bindings and reporting survive on the device itself.
func (c *Coordinator) Start() error {
	n, err := c.devices.Restore()
	if err != nil {
		return fmt.Errorf("restore devices: %w", err)
	}
	c.logger.Info("coordinator started", "devices", n, "local_ieee", c.localIEEE.String())
	return nil
}

// Stop cancels the coordinator context.
func (c *Coordinator) Stop() {
	c.cancel()
}

// LocalIEEE returns the coordinator's own IEEE address.
func (c *Coordinator) LocalIEEE() Address {
	return c.localIEEE
}

// Transport returns the radio transport.
func (c *Coordinator) Transport() Transport {
	return c.transport
}

// Store returns the store.
func (c *Coordinator) Store() store.Store {
	return c.store
}

// Registry returns the ZCL registry.
func (c *Coordinator) Registry() *zcl.Registry {
	return c.registry
}

// Events returns the event bus.
func (c *Coordinator) Events() *EventBus {
	return c.events
}

// Devices returns the device manager.
func (c *Coordinator) Devices() *DeviceManager {
	return c.devices
}
