package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"zigbee-things/internal/classifier"
	"zigbee-things/internal/store"
	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

var (
	// ErrUnknownDevice is returned for an address with no classified device.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnknownCommand is returned when a cluster command cannot be resolved.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnknownAction is returned when invoking an action a device lacks.
	ErrUnknownAction = errors.New("unknown action")
)

// Report is an attribute value received from a device, still in wire format.
type Report struct {
	IEEE      string `json:"ieee"`
	Endpoint  uint8  `json:"endpoint"`
	ClusterID uint16 `json:"cluster_id"`
	AttrID    uint16 `json:"attr_id"`
	DataType  uint8  `json:"data_type"`
	Value     []byte `json:"value"`
}

// ClusterCommand is a cluster-specific command received from a device. Name
// is set by transports that decode vendor gestures themselves; otherwise it
// is resolved from CommandID.
type ClusterCommand struct {
	IEEE      string `json:"ieee"`
	Endpoint  uint8  `json:"endpoint"`
	ClusterID uint16 `json:"cluster_id"`
	CommandID uint8  `json:"command_id"`
	Name      string `json:"name,omitempty"`
}

// DeviceManager holds the classified devices and applies incoming reports
// and commands to them. A thing.Device is not safe for concurrent use, so
// every access goes through mu.
type DeviceManager struct {
	coord  *Coordinator
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	devices map[string]*thing.Device
	pending []PropertyUpdate
}

// NewDeviceManager creates a new device manager.
func NewDeviceManager(coord *Coordinator) *DeviceManager {
	return &DeviceManager{
		coord:   coord,
		logger:  coord.logger.With("component", "device_manager"),
		now:     time.Now,
		devices: make(map[string]*thing.Device),
	}
}

// collect is installed as the change hook of every managed device and runs
// with mu held.
func (dm *DeviceManager) collect(d *thing.Device, p *thing.Property) {
	if !p.Visible() {
		return
	}
	dm.pending = append(dm.pending, PropertyUpdate{
		IEEE:     d.ID,
		Property: p.Name,
		Value:    p.Value,
		Minimum:  p.Schema.Minimum,
		Maximum:  p.Schema.Maximum,
	})
}

// unlockAndFlush releases mu and emits the updates collected while it was
// held, so handlers may call back into the manager.
func (dm *DeviceManager) unlockAndFlush() {
	pending := dm.pending
	dm.pending = nil
	dm.mu.Unlock()
	for _, u := range pending {
		dm.coord.Events().Emit(Event{Type: EventPropertyUpdate, Data: u})
	}
}

func (dm *DeviceManager) register(td *thing.Device) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	td.OnChange(dm.collect)
	dm.devices[td.ID] = td
}

// Add classifies a newly interviewed device, persists its descriptor, and
// configures it according to its property flags. A configuration failure is
// returned but the device stays registered.
func (dm *DeviceManager) Add(ctx context.Context, desc *classifier.Descriptor) (*thing.Device, error) {
	td, err := dm.coord.classifier.Classify(desc)
	if err != nil {
		return nil, err
	}
	if err := dm.persist(desc, td); err != nil {
		return nil, err
	}
	dm.save(store.CaptureState(td, time.Time{}))
	dm.register(td)

	dm.logger.Info("device classified",
		"ieee", td.ID,
		"model", td.Model,
		"type", td.Type,
		"properties", len(td.Properties()),
	)
	dm.coord.Events().Emit(Event{Type: EventDeviceClassified, Data: DeviceInfo{IEEE: td.ID, Type: td.Type}})

	return td, dm.Configure(ctx, td)
}

func (dm *DeviceManager) persist(desc *classifier.Descriptor, td *thing.Device) error {
	st := dm.coord.Store()
	now := dm.now()
	err := st.UpdateDevice(desc.IEEEAddress, func(dev *store.Device) error {
		dev.Descriptor = *desc
		dev.Type = td.Type
		dev.LastSeen = now
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		err = st.SaveDevice(&store.Device{
			IEEEAddress: desc.IEEEAddress,
			Descriptor:  *desc,
			Type:        td.Type,
			JoinedAt:    now,
			LastSeen:    now,
		})
	}
	if err != nil {
		return fmt.Errorf("persist %s: %w", desc.IEEEAddress, err)
	}
	return nil
}

// Restore reclassifies every persisted device from its stored descriptor.
// Devices that no longer classify are logged and skipped.
func (dm *DeviceManager) Restore() (int, error) {
	devs, err := dm.coord.Store().ListDevices()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, dev := range devs {
		desc := dev.Descriptor
		if desc.IEEEAddress == "" {
			desc.IEEEAddress = dev.IEEEAddress
		}
		td, err := dm.coord.classifier.Classify(&desc)
		if err != nil {
			dm.logger.Warn("restore: classify", "err", err, "ieee", dev.IEEEAddress)
			continue
		}
		dm.register(td)
		n++
	}
	return n, nil
}

// touch refreshes the lastSeen property and captures the state to persist.
// Called with mu held; the capture is saved after mu is released.
func (dm *DeviceManager) touch(td *thing.Device) store.DeviceState {
	now := dm.now()
	if td.Property("lastSeen") != nil {
		_ = td.SetValue("lastSeen", now.UTC().Format(time.RFC3339))
	}
	return store.CaptureState(td, now)
}

func (dm *DeviceManager) save(st store.DeviceState) {
	if err := dm.coord.Store().SaveSnapshots(st); err != nil {
		dm.logger.Error("save snapshots", "err", err, "ieee", st.IEEE)
	}
}

// HandleReport decodes a received attribute and applies it to every property
// bound to it. Attributes no property is bound to are ignored.
func (dm *DeviceManager) HandleReport(r Report) error {
	val, _, err := zcl.DecodeValue(r.DataType, r.Value)
	if err != nil {
		return fmt.Errorf("decode %s 0x%04X/0x%04X: %w", r.IEEE, r.ClusterID, r.AttrID, err)
	}

	dm.mu.Lock()
	td := dm.devices[r.IEEE]
	if td == nil {
		dm.mu.Unlock()
		return fmt.Errorf("report from %s: %w", r.IEEE, ErrUnknownDevice)
	}
	updated, applyErr := td.ApplyAttribute(r.Endpoint, r.ClusterID, r.AttrID, val)
	st := dm.touch(td)
	dm.unlockAndFlush()
	dm.save(st)

	dm.logger.Debug("attribute report",
		"ieee", r.IEEE,
		"cluster", fmt.Sprintf("0x%04X", r.ClusterID),
		"attr", dm.coord.Registry().AttrName(r.ClusterID, r.AttrID),
		"value", val,
		"updated", len(updated),
	)
	if applyErr != nil {
		dm.logger.Warn("attribute decode", "err", applyErr, "ieee", r.IEEE)
	}
	return applyErr
}

// HandleCommand raises the event a received cluster command maps to.
func (dm *DeviceManager) HandleCommand(cmd ClusterCommand) error {
	name := cmd.Name
	if name == "" {
		if c := dm.coord.Registry().Get(cmd.ClusterID); c != nil {
			if def := c.FindCommand(cmd.CommandID); def != nil {
				name = def.Name
			}
		}
	}
	if name == "" {
		return fmt.Errorf("command 0x%02X on cluster 0x%04X: %w", cmd.CommandID, cmd.ClusterID, ErrUnknownCommand)
	}

	dm.mu.Lock()
	td := dm.devices[cmd.IEEE]
	if td == nil {
		dm.mu.Unlock()
		return fmt.Errorf("command from %s: %w", cmd.IEEE, ErrUnknownDevice)
	}
	ev, err := td.RaiseEvent(cmd.Endpoint, cmd.ClusterID, name)
	st := dm.touch(td)
	dm.unlockAndFlush()
	dm.save(st)

	if ev == nil {
		dm.logger.Debug("unhandled command", "ieee", cmd.IEEE, "ep", cmd.Endpoint,
			"cluster", fmt.Sprintf("0x%04X", cmd.ClusterID), "command", name)
		return err
	}
	dm.logger.Debug("device event", "ieee", cmd.IEEE, "event", ev.Name)
	dm.coord.Events().Emit(Event{Type: EventDeviceEvent, Data: DeviceEvent{IEEE: cmd.IEEE, Event: ev.Name}})
	return err
}

// Remove forgets a device and deletes its persisted record.
func (dm *DeviceManager) Remove(ieee string) error {
	dm.mu.Lock()
	delete(dm.devices, ieee)
	dm.mu.Unlock()

	if err := dm.coord.Store().DeleteDevice(ieee); err != nil {
		return fmt.Errorf("remove %s: %w", ieee, err)
	}
	dm.logger.Info("device removed", "ieee", ieee)
	dm.coord.Events().Emit(Event{Type: EventDeviceRemoved, Data: DeviceInfo{IEEE: ieee}})
	return nil
}

// Rename sets the friendly name of a managed device. An empty name reverts
// to the IEEE address.
func (dm *DeviceManager) Rename(ieee, name string) error {
	dm.mu.Lock()
	_, ok := dm.devices[ieee]
	dm.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", ieee, ErrUnknownDevice)
	}

	err := dm.coord.Store().UpdateDevice(ieee, func(dev *store.Device) error {
		dev.FriendlyName = name
		return nil
	})
	if err != nil {
		return fmt.Errorf("rename %s: %w", ieee, err)
	}
	dm.logger.Info("device renamed", "ieee", ieee, "name", name)
	dm.coord.Events().Emit(Event{Type: EventDeviceRenamed, Data: DeviceInfo{IEEE: ieee, Name: name}})
	return nil
}

// IEEEs returns the addresses of all managed devices in ascending order.
func (dm *DeviceManager) IEEEs() []string {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	ids := make([]string, 0, len(dm.devices))
	for id := range dm.devices {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MarshalDevice returns the JSON description of a managed device.
func (dm *DeviceManager) MarshalDevice(ieee string) ([]byte, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	td := dm.devices[ieee]
	if td == nil {
		return nil, fmt.Errorf("%s: %w", ieee, ErrUnknownDevice)
	}
	return json.Marshal(td)
}

// View calls fn with a managed device while holding the manager lock. fn
// must not call back into the manager.
func (dm *DeviceManager) View(ieee string, fn func(*thing.Device)) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	td := dm.devices[ieee]
	if td == nil {
		return fmt.Errorf("%s: %w", ieee, ErrUnknownDevice)
	}
	fn(td)
	return nil
}

// State returns the known values of a device's visible properties.
func (dm *DeviceManager) State(ieee string) (map[string]any, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	td := dm.devices[ieee]
	if td == nil {
		return nil, fmt.Errorf("%s: %w", ieee, ErrUnknownDevice)
	}
	state := make(map[string]any)
	for _, p := range td.VisibleProperties() {
		if p.Known() {
			state[p.Name] = p.Current()
		}
	}
	return state, nil
}
