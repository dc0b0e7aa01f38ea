//go:build !no_mqtt

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"zigbee-things/internal/coordinator"
)

// The bridge doubles as the coordinator's transport: requests are published
// as JSON to <prefix>/adapter/request/<op> for a radio adapter process, which
// answers on <prefix>/adapter/event/<kind>. Read responses come back as
// ordinary reports.

var _ coordinator.Transport = (*Bridge)(nil)

func (b *Bridge) request(ctx context.Context, op string, req any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := b.publishWait(ctx, b.prefix+"/adapter/request/"+op, payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (b *Bridge) Bind(ctx context.Context, req coordinator.BindRequest) error {
	return b.request(ctx, coordinator.OpBind, req)
}

func (b *Bridge) ConfigureReporting(ctx context.Context, req coordinator.ReportingRequest) error {
	return b.request(ctx, coordinator.OpConfigureReporting, req)
}

func (b *Bridge) ReadAttributes(ctx context.Context, req coordinator.ReadRequest) error {
	return b.request(ctx, coordinator.OpRead, req)
}

func (b *Bridge) WriteAttributes(ctx context.Context, req coordinator.WriteRequest) error {
	return b.request(ctx, coordinator.OpWrite, req)
}

func (b *Bridge) SendCommand(ctx context.Context, req coordinator.CommandRequest) error {
	return b.request(ctx, coordinator.OpCommand, req)
}

// handleAdapterEvent feeds an adapter event into the coordinator.
func (b *Bridge) handleAdapterEvent(kind string, payload []byte) {
	coord := b.coordinator()
	if coord == nil {
		b.logger.Warn("adapter event dropped", "kind", kind, "err", errNotConnected)
		return
	}
	if err := coord.Dispatch(kind, payload); err != nil {
		b.logger.Warn("adapter event failed", "kind", kind, "err", err)
	}
}
