package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

type clusterKey struct {
	endpoint  uint8
	clusterID uint16
}

type attrKey struct {
	clusterKey
	attrID uint16
}

// configPlan is the set of transport requests a device's flags ask for.
type configPlan struct {
	binds   []BindRequest
	reports []ReportingRequest
	reads   []ReadRequest
}

// plan derives the configuration requests from the device's topology-bound
// properties. Each cluster is bound and read at most once; reporting is
// configured once per reportable attribute.
func (dm *DeviceManager) plan(td *thing.Device, addr Address) configPlan {
	var (
		p         configPlan
		bound     = make(map[clusterKey]bool)
		reporting = make(map[attrKey]bool)
		reads     = make(map[clusterKey]int)
	)
	for _, prop := range td.Properties() {
		b := prop.Topology
		if b == nil || len(b.AttrIDs) == 0 {
			continue
		}
		k := clusterKey{b.Endpoint, b.ClusterID}

		if prop.BindNeeded && !bound[k] {
			bound[k] = true
			p.binds = append(p.binds, BindRequest{
				SrcIEEE:   addr,
				SrcEP:     b.Endpoint,
				ClusterID: b.ClusterID,
				DstIEEE:   dm.coord.localIEEE,
				DstEP:     dm.coord.localEP,
			})
		}

		if prop.ConfigReportNeeded {
			for i, id := range b.AttrIDs {
				ak := attrKey{k, id}
				if reporting[ak] || !dm.reportable(b.ClusterID, id) {
					continue
				}
				reporting[ak] = true
				p.reports = append(p.reports, ReportingRequest{
					IEEE:         addr,
					Endpoint:     b.Endpoint,
					ClusterID:    b.ClusterID,
					AttrID:       id,
					DataType:     b.DataTypes[i],
					MinInterval:  prop.Report.MinInterval,
					MaxInterval:  prop.Report.MaxInterval,
					ReportChange: reportChange(b.DataTypes[i], prop.Report.ReportableChange),
				})
			}
		}

		if prop.InitialReadNeeded {
			idx, ok := reads[k]
			if !ok {
				idx = len(p.reads)
				reads[k] = idx
				p.reads = append(p.reads, ReadRequest{IEEE: addr, Endpoint: b.Endpoint, ClusterID: b.ClusterID})
			}
			for _, id := range b.AttrIDs {
				if !slices.Contains(p.reads[idx].AttrIDs, id) {
					p.reads[idx].AttrIDs = append(p.reads[idx].AttrIDs, id)
				}
			}
		}
	}
	return p
}

func (dm *DeviceManager) reportable(clusterID, attrID uint16) bool {
	c := dm.coord.Registry().Get(clusterID)
	if c == nil {
		return false
	}
	a := c.FindAttribute(attrID)
	return a != nil && a.IsReportable()
}

func reportChange(dataType uint8, change float64) []byte {
	if zcl.IsDiscrete(dataType) {
		return nil
	}
	b, err := zcl.EncodeValue(dataType, change)
	if err != nil {
		return nil
	}
	return b
}

// Configure binds, configures reporting and reads the attributes the
// device's properties ask for, in that order. Failures are logged and do not
// stop the remaining requests; they are returned joined.
func (dm *DeviceManager) Configure(ctx context.Context, td *thing.Device) error {
	addr, err := ParseIEEE(td.ID)
	if err != nil {
		return fmt.Errorf("configure %s: %w", td.ID, err)
	}
	p := dm.plan(td, addr)
	tr := dm.coord.Transport()

	var errs []error
	for _, req := range p.binds {
		if err := tr.Bind(ctx, req); err != nil {
			dm.logger.Warn("configure: bind", "err", err, "ieee", td.ID, "ep", req.SrcEP, "cluster", fmt.Sprintf("0x%04X", req.ClusterID))
			errs = append(errs, fmt.Errorf("bind 0x%04X: %w", req.ClusterID, err))
			continue
		}
		dm.logger.Info("bound cluster", "ieee", td.ID, "ep", req.SrcEP, "cluster", fmt.Sprintf("0x%04X", req.ClusterID))
	}
	for _, req := range p.reports {
		if err := tr.ConfigureReporting(ctx, req); err != nil {
			dm.logger.Warn("configure: reporting", "err", err, "ieee", td.ID,
				"ep", req.Endpoint,
				"cluster", fmt.Sprintf("0x%04X", req.ClusterID),
				"attr", fmt.Sprintf("0x%04X", req.AttrID))
			errs = append(errs, fmt.Errorf("reporting 0x%04X/0x%04X: %w", req.ClusterID, req.AttrID, err))
			continue
		}
		dm.logger.Info("configured reporting", "ieee", td.ID,
			"ep", req.Endpoint,
			"cluster", fmt.Sprintf("0x%04X", req.ClusterID),
			"attr", fmt.Sprintf("0x%04X", req.AttrID))
	}
	for _, req := range p.reads {
		if err := tr.ReadAttributes(ctx, req); err != nil {
			dm.logger.Warn("configure: read", "err", err, "ieee", td.ID, "ep", req.Endpoint, "cluster", fmt.Sprintf("0x%04X", req.ClusterID))
			errs = append(errs, fmt.Errorf("read 0x%04X: %w", req.ClusterID, err))
		}
	}
	return errors.Join(errs...)
}
