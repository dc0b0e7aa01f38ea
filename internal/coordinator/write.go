package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

// WriteProperty writes a value to a device property. Properties with a
// command encoder are written by sending that command, the rest by writing
// their bound attributes. A fire-and-forget property takes the value as soon
// as the transport accepts the write, since the device never reports it.
func (dm *DeviceManager) WriteProperty(ctx context.Context, ieee, name string, value any) error {
	dm.mu.Lock()
	td := dm.devices[ieee]
	var p *thing.Property
	if td != nil {
		p = td.Property(name)
	}
	dm.mu.Unlock()

	switch {
	case td == nil:
		return fmt.Errorf("write %s: %w", ieee, ErrUnknownDevice)
	case p == nil:
		return fmt.Errorf("write %s.%s: %w", ieee, name, thing.ErrUnknownProperty)
	case p.Schema.ReadOnly:
		return fmt.Errorf("write %s.%s: %w", ieee, name, thing.ErrReadOnly)
	case p.Topology == nil:
		return fmt.Errorf("write %s.%s: property has no device binding", ieee, name)
	}

	addr, err := ParseIEEE(ieee)
	if err != nil {
		return fmt.Errorf("write %s.%s: %w", ieee, name, err)
	}

	reqID := uuid.NewString()
	if p.Command != nil {
		err = dm.sendPropertyCommand(ctx, addr, p, value)
	} else {
		err = dm.writeAttributes(ctx, addr, p, value)
	}
	if err != nil {
		dm.logger.Warn("write property", "err", err, "req", reqID, "ieee", ieee, "property", name)
		return fmt.Errorf("write %s.%s: %w", ieee, name, err)
	}
	dm.logger.Info("write property", "req", reqID, "ieee", ieee, "property", name, "value", value)

	if !p.FireAndForget {
		return nil
	}
	dm.mu.Lock()
	err = td.SetValue(name, value)
	dm.unlockAndFlush()
	return err
}

func (dm *DeviceManager) sendPropertyCommand(ctx context.Context, addr Address, p *thing.Property, value any) error {
	name, payload, err := p.Command(value)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	id, err := dm.commandID(p.Topology.ClusterID, name)
	if err != nil {
		return err
	}
	return dm.coord.Transport().SendCommand(ctx, CommandRequest{
		IEEE:      addr,
		Endpoint:  p.Topology.Endpoint,
		ClusterID: p.Topology.ClusterID,
		CommandID: id,
		Payload:   payload,
	})
}

func (dm *DeviceManager) writeAttributes(ctx context.Context, addr Address, p *thing.Property, value any) error {
	raws := []any{value}
	if p.Codec.Encode != nil {
		var err error
		if raws, err = p.Codec.Encode(value); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}

	b := p.Topology
	req := WriteRequest{IEEE: addr, Endpoint: b.Endpoint, ClusterID: b.ClusterID}
	for i, raw := range raws {
		if raw == nil || i >= len(b.AttrIDs) {
			continue
		}
		data, err := zcl.EncodeValue(b.DataTypes[i], raw)
		if err != nil {
			return fmt.Errorf("encode %s: %w", b.Attrs[i], err)
		}
		req.Records = append(req.Records, WriteRecord{AttrID: b.AttrIDs[i], DataType: b.DataTypes[i], Value: data})
	}
	if len(req.Records) == 0 {
		return errors.New("no attribute to write")
	}
	return dm.coord.Transport().WriteAttributes(ctx, req)
}

// InvokeAction sends the cluster command behind a device action.
func (dm *DeviceManager) InvokeAction(ctx context.Context, ieee, name string) error {
	dm.mu.Lock()
	td := dm.devices[ieee]
	var a *thing.Action
	if td != nil {
		a = td.Action(name)
	}
	dm.mu.Unlock()

	if td == nil {
		return fmt.Errorf("invoke %s: %w", ieee, ErrUnknownDevice)
	}
	if a == nil {
		return fmt.Errorf("invoke %s.%s: %w", ieee, name, ErrUnknownAction)
	}
	addr, err := ParseIEEE(ieee)
	if err != nil {
		return fmt.Errorf("invoke %s.%s: %w", ieee, name, err)
	}
	id, err := dm.commandID(a.ClusterID, a.Command)
	if err != nil {
		return fmt.Errorf("invoke %s.%s: %w", ieee, name, err)
	}
	if err := dm.coord.Transport().SendCommand(ctx, CommandRequest{
		IEEE:      addr,
		Endpoint:  a.Endpoint,
		ClusterID: a.ClusterID,
		CommandID: id,
	}); err != nil {
		return fmt.Errorf("invoke %s.%s: %w", ieee, name, err)
	}
	dm.logger.Info("action invoked", "ieee", ieee, "action", name)
	return nil
}

func (dm *DeviceManager) commandID(clusterID uint16, name string) (uint8, error) {
	c := dm.coord.Registry().Get(clusterID)
	if c == nil {
		return 0, fmt.Errorf("cluster 0x%04X: %w", clusterID, ErrUnknownCommand)
	}
	def := c.FindCommandByName(name)
	if def == nil {
		return 0, fmt.Errorf("%s on cluster 0x%04X: %w", name, clusterID, ErrUnknownCommand)
	}
	return def.ID, nil
}
