package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"zigbee-things/internal/classifier"
)

// Adapter event kinds. A radio adapter process reports what it hears with
// one of these kinds and a JSON body.
const (
	AdapterReport  = "report"  // Report
	AdapterCommand = "command" // ClusterCommand
	AdapterDevice  = "device"  // classifier.Descriptor of an interviewed device
	AdapterLeave   = "leave"   // LeaveEvent
)

// Adapter request operations, one per Transport method.
const (
	OpBind               = "bind"
	OpConfigureReporting = "configure_reporting"
	OpRead               = "read"
	OpWrite              = "write"
	OpCommand            = "command"
)

// ErrUnknownEvent is returned for an adapter event kind Dispatch does not know.
var ErrUnknownEvent = errors.New("unknown adapter event")

// LeaveEvent reports that a device left the network.
type LeaveEvent struct {
	IEEE string `json:"ieee"`
}

// Dispatch decodes an adapter event and feeds it into the device manager.
func (c *Coordinator) Dispatch(kind string, payload []byte) error {
	dm := c.Devices()
	switch kind {
	case AdapterReport:
		var r Report
		if err := json.Unmarshal(payload, &r); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		return dm.HandleReport(r)
	case AdapterCommand:
		var cmd ClusterCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		return dm.HandleCommand(cmd)
	case AdapterDevice:
		var desc classifier.Descriptor
		if err := json.Unmarshal(payload, &desc); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		defer cancel()
		_, err := dm.Add(ctx, &desc)
		return err
	case AdapterLeave:
		var ev LeaveEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		return dm.Remove(ev.IEEE)
	}
	return fmt.Errorf("%q: %w", kind, ErrUnknownEvent)
}
