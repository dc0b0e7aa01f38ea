package main

import (
	"context"
	"fmt"
	"log/slog"

	"zigbee-things/internal/coordinator"
)

// logTransport accepts every request and only logs it. It lets the API and
// the classifier be exercised without a radio.
type logTransport struct {
	logger *slog.Logger
}

var _ coordinator.Transport = (*logTransport)(nil)

func (t *logTransport) Bind(_ context.Context, req coordinator.BindRequest) error {
	t.logger.Info("bind", "ieee", req.SrcIEEE, "ep", req.SrcEP, "cluster", fmt.Sprintf("0x%04X", req.ClusterID))
	return nil
}

func (t *logTransport) ConfigureReporting(_ context.Context, req coordinator.ReportingRequest) error {
	t.logger.Info("configure reporting", "ieee", req.IEEE, "ep", req.Endpoint,
		"cluster", fmt.Sprintf("0x%04X", req.ClusterID), "attr", fmt.Sprintf("0x%04X", req.AttrID))
	return nil
}

func (t *logTransport) ReadAttributes(_ context.Context, req coordinator.ReadRequest) error {
	t.logger.Info("read attributes", "ieee", req.IEEE, "ep", req.Endpoint,
		"cluster", fmt.Sprintf("0x%04X", req.ClusterID), "attrs", req.AttrIDs)
	return nil
}

func (t *logTransport) WriteAttributes(_ context.Context, req coordinator.WriteRequest) error {
	t.logger.Info("write attributes", "ieee", req.IEEE, "ep", req.Endpoint,
		"cluster", fmt.Sprintf("0x%04X", req.ClusterID), "records", len(req.Records))
	return nil
}

func (t *logTransport) SendCommand(_ context.Context, req coordinator.CommandRequest) error {
	t.logger.Info("send command", "ieee", req.IEEE, "ep", req.Endpoint,
		"cluster", fmt.Sprintf("0x%04X", req.ClusterID), "command", fmt.Sprintf("0x%02X", req.CommandID))
	return nil
}
