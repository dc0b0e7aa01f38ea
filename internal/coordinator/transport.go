package coordinator

import "context"

// Transport is the radio side of the coordinator. Read responses are not
// returned: they arrive later as attribute reports through
// DeviceManager.HandleReport, like any other report.
type Transport interface {
	Bind(ctx context.Context, req BindRequest) error
	ConfigureReporting(ctx context.Context, req ReportingRequest) error
	ReadAttributes(ctx context.Context, req ReadRequest) error
	WriteAttributes(ctx context.Context, req WriteRequest) error
	SendCommand(ctx context.Context, req CommandRequest) error
}

// BindRequest binds a device cluster to the coordinator.
type BindRequest struct {
	SrcIEEE   Address `json:"src_ieee"`
	SrcEP     uint8   `json:"src_ep"`
	ClusterID uint16  `json:"cluster_id"`
	DstIEEE   Address `json:"dst_ieee"`
	DstEP     uint8   `json:"dst_ep"`
}

// ReportingRequest configures reporting of one attribute.
type ReportingRequest struct {
	IEEE         Address `json:"ieee"`
	Endpoint     uint8   `json:"endpoint"`
	ClusterID    uint16  `json:"cluster_id"`
	AttrID       uint16  `json:"attr_id"`
	DataType     uint8   `json:"data_type"`
	MinInterval  uint16  `json:"min_interval"`
	MaxInterval  uint16  `json:"max_interval"`
	ReportChange []byte  `json:"report_change,omitempty"`
}

// ReadRequest reads attributes of one cluster.
type ReadRequest struct {
	IEEE      Address  `json:"ieee"`
	Endpoint  uint8    `json:"endpoint"`
	ClusterID uint16   `json:"cluster_id"`
	AttrIDs   []uint16 `json:"attr_ids"`
}

// WriteRecord is a single encoded attribute write.
type WriteRecord struct {
	AttrID   uint16 `json:"attr_id"`
	DataType uint8  `json:"data_type"`
	Value    []byte `json:"value"`
}

// WriteRequest writes attributes of one cluster.
type WriteRequest struct {
	IEEE      Address       `json:"ieee"`
	Endpoint  uint8         `json:"endpoint"`
	ClusterID uint16        `json:"cluster_id"`
	Records   []WriteRecord `json:"records"`
}

// CommandRequest sends a cluster-specific command.
type CommandRequest struct {
	IEEE      Address `json:"ieee"`
	Endpoint  uint8   `json:"endpoint"`
	ClusterID uint16  `json:"cluster_id"`
	CommandID uint8   `json:"command_id"`
	Payload   []byte  `json:"payload,omitempty"`
}
