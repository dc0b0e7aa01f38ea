package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"zigbee-things/internal/classifier"
	"zigbee-things/internal/thing"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetDevice(t *testing.T) {
	s := newTestStore(t)

	dev := &Device{
		IEEEAddress: "00158D00012A3B4C",
		Type:        "doorSensor",
		JoinedAt:    time.Now().Truncate(time.Millisecond),
		LastSeen:    time.Now().Truncate(time.Millisecond),
		Descriptor: classifier.Descriptor{
			IEEEAddress: "00158D00012A3B4C",
			Model:       "lumi.sensor_magnet.aq2",
			PowerSource: classifier.PowerBattery,
			Endpoints: map[uint8]classifier.Endpoint{
				1: {ID: 1, ProfileID: 0x0104, DeviceID: 0x0402, InClusters: []uint16{0, 0x0500}, OutClusters: []uint16{6}},
			},
		},
	}

	if err := s.SaveDevice(dev); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetDevice(dev.IEEEAddress)
	if err != nil {
		t.Fatal(err)
	}

	if got.IEEEAddress != dev.IEEEAddress {
		t.Errorf("ieee = %q, want %q", got.IEEEAddress, dev.IEEEAddress)
	}
	if got.Type != dev.Type {
		t.Errorf("type = %q, want %q", got.Type, dev.Type)
	}
	if got.Descriptor.Model != dev.Descriptor.Model {
		t.Errorf("model = %q, want %q", got.Descriptor.Model, dev.Descriptor.Model)
	}
	if got.Descriptor.PowerSource != classifier.PowerBattery {
		t.Errorf("power source = %v, want battery", got.Descriptor.PowerSource)
	}
	ep, ok := got.Descriptor.Endpoints[1]
	if !ok {
		t.Fatalf("endpoint 1 missing: %+v", got.Descriptor.Endpoints)
	}
	if !ep.HasIn(0x0500) {
		t.Errorf("ep in clusters = %v, want IAS zone", ep.InClusters)
	}
	if !got.JoinedAt.Equal(dev.JoinedAt) {
		t.Errorf("joined_at = %v, want %v", got.JoinedAt, dev.JoinedAt)
	}
}

func TestDeleteDevice(t *testing.T) {
	s := newTestStore(t)

	dev := &Device{IEEEAddress: "00158D00012A3B4C"}
	if err := s.SaveDevice(dev); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteDevice(dev.IEEEAddress); err != nil {
		t.Fatal(err)
	}

	_, err := s.GetDevice(dev.IEEEAddress)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteDevice(dev.IEEEAddress); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestListDevices(t *testing.T) {
	s := newTestStore(t)

	devs := []*Device{
		{IEEEAddress: "0000000000000001"},
		{IEEEAddress: "0000000000000002"},
		{IEEEAddress: "0000000000000003"},
	}
	for _, d := range devs {
		if err := s.SaveDevice(d); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListDevices()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("list count = %d, want 3", len(list))
	}

	found := make(map[string]bool)
	for _, d := range list {
		found[d.IEEEAddress] = true
	}
	for _, d := range devs {
		if !found[d.IEEEAddress] {
			t.Errorf("device %s not in list", d.IEEEAddress)
		}
	}
}

func TestGetDeviceNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetDevice("FFFFFFFFFFFFFFFF")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateDevice(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveDevice(&Device{IEEEAddress: "0000000000000001"}); err != nil {
		t.Fatal(err)
	}

	err := s.UpdateDevice("0000000000000001", func(d *Device) error {
		d.FriendlyName = "hall_light"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetDevice("0000000000000001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name() != "hall_light" {
		t.Errorf("name = %q, want hall_light", got.Name())
	}

	err = s.UpdateDevice("0000000000000002", func(d *Device) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateDeviceAbort(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveDevice(&Device{IEEEAddress: "0000000000000001", FriendlyName: "a"}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := s.UpdateDevice("0000000000000001", func(d *Device) error {
		d.FriendlyName = "b"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, err := s.GetDevice("0000000000000001")
	if err != nil {
		t.Fatal(err)
	}
	if got.FriendlyName != "a" {
		t.Errorf("friendly name = %q, want unchanged", got.FriendlyName)
	}
}

func TestSaveSnapshots(t *testing.T) {
	s := newTestStore(t)

	const ieee = "00124B0012345678"
	if err := s.SaveDevice(&Device{IEEEAddress: ieee}); err != nil {
		t.Fatal(err)
	}

	td := thing.NewDevice(ieee, "thermostat")
	td.Type = "thermostat"
	td.AddProperty(&thing.Property{
		Name:   "heatTarget",
		Schema: thing.Schema{Type: thing.TypeNumber, Minimum: thing.Float(7), Maximum: thing.Float(30)},
		Topology: &thing.TopologyBinding{
			ProfileID: 0x0104,
			Endpoint:  1,
			ClusterID: 0x0201,
			Attrs:     []string{"OccupiedHeatingSetpoint"},
		},
		Value: 21.5,
	})
	td.AddProperty(&thing.Property{
		Name:   "brightness",
		Schema: thing.Schema{Type: thing.TypeInteger},
		Expose: &thing.ExposeBinding{Expose: "brightness"},
		Value:  40,
	})

	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.SaveSnapshots(CaptureState(td, seen)); err != nil {
		t.Fatal(err)
	}

	snap, ok := s.PropertySnapshot(ieee, "heatTarget")
	if !ok {
		t.Fatal("heatTarget snapshot missing")
	}
	if snap.Value != 21.5 {
		t.Errorf("value = %v, want 21.5", snap.Value)
	}
	if snap.Maximum == nil || *snap.Maximum != 30 {
		t.Errorf("maximum = %v, want 30", snap.Maximum)
	}
	if !snap.Matches(td.Property("heatTarget").Topology) {
		t.Error("snapshot does not match its own binding")
	}

	if _, ok := s.PropertySnapshot(ieee, "brightness"); ok {
		t.Error("expose-bound property should not be snapshotted")
	}
	if _, ok := s.PropertySnapshot("FFFFFFFFFFFFFFFF", "heatTarget"); ok {
		t.Error("snapshot for unknown device")
	}

	got, err := s.GetDevice(ieee)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != "thermostat" {
		t.Errorf("type = %q, want thermostat", got.Type)
	}
	if !got.LastSeen.Equal(seen) {
		t.Errorf("last_seen = %v, want %v", got.LastSeen, seen)
	}
}

func TestSaveSnapshotsUnknownDevice(t *testing.T) {
	s := newTestStore(t)

	td := thing.NewDevice("FFFFFFFFFFFFFFFF", "")
	if err := s.SaveSnapshots(CaptureState(td, time.Time{})); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCaptureStateIsDetached(t *testing.T) {
	td := thing.NewDevice("00124B0012345678", "")
	td.AddProperty(&thing.Property{
		Name:     "on",
		Schema:   thing.Schema{Type: thing.TypeBoolean},
		Topology: &thing.TopologyBinding{ProfileID: 0x0104, Endpoint: 1, ClusterID: 0x0006, Attrs: []string{"OnOff"}},
		Value:    false,
	})

	st := CaptureState(td, time.Time{})
	td.Property("on").Value = true

	if got := st.Snapshots["on"].Value; got != false {
		t.Errorf("captured value = %v, want false", got)
	}
	if st.IEEE != td.ID {
		t.Errorf("ieee = %q, want %q", st.IEEE, td.ID)
	}
}
