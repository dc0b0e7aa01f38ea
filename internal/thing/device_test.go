package thing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topoProp(name string, attrIDs ...uint16) *Property {
	attrs := make([]string, len(attrIDs))
	for i := range attrIDs {
		attrs[i] = "attr"
	}
	return &Property{
		Name:   name,
		Schema: Schema{Type: TypeBoolean},
		Topology: &TopologyBinding{
			ProfileID: 0x0104,
			Endpoint:  1,
			ClusterID: 0x0500,
			Attrs:     attrs,
			AttrIDs:   attrIDs,
		},
	}
}

func TestVisibility(t *testing.T) {
	assert.True(t, (&Property{Name: "on"}).Visible())
	assert.False(t, (&Property{Name: "_deadband"}).Visible())
	assert.True(t, (&Property{Name: "level_"}).Visible())
}

func TestAddPropertyReplacesInPlace(t *testing.T) {
	d := NewDevice("dev1", "")
	d.AddProperty(&Property{Name: "a"})
	d.AddProperty(&Property{Name: "b"})
	d.AddProperty(&Property{Name: "a", Default: 5})

	props := d.Properties()
	require.Len(t, props, 2)
	assert.Equal(t, "a", props[0].Name)
	assert.Equal(t, 5, props[0].Default)
}

func TestMaskedPropertiesShareOneAttribute(t *testing.T) {
	d := NewDevice("dev1", "")
	alarm := topoProp("contact", 0x0002)
	alarm.Mask = 0x0001
	tamper := topoProp("tamper", 0x0002)
	tamper.Mask = 0x0004
	lowBattery := topoProp("lowBattery", 0x0002)
	lowBattery.Mask = 0x0008
	d.AddProperty(alarm)
	d.AddProperty(tamper)
	d.AddProperty(lowBattery)

	updated, err := d.ApplyAttribute(1, 0x0500, 0x0002, uint64(0x0009))
	require.NoError(t, err)
	assert.Len(t, updated, 3)
	assert.Equal(t, true, alarm.Value)
	assert.Equal(t, false, tamper.Value)
	assert.Equal(t, true, lowBattery.Value)
}

func TestMaskedDecodeAcceptsCodecInputs(t *testing.T) {
	tests := []struct {
		raw  any
		want bool
	}{
		{uint(0x0001), true},
		{uint(0x0002), false},
		{true, true},
		{false, false},
		{int16(0x0001), true},
		{float64(0x0003), true},
	}
	for _, tt := range tests {
		d := NewDevice("dev1", "")
		alarm := topoProp("contact", 0x0002)
		alarm.Mask = 0x0001
		d.AddProperty(alarm)

		_, err := d.ApplyAttribute(1, 0x0500, 0x0002, tt.raw)
		require.NoError(t, err, "raw %T", tt.raw)
		assert.Equal(t, tt.want, alarm.Value, "raw %T(%v)", tt.raw, tt.raw)
	}

	d := NewDevice("dev1", "")
	alarm := topoProp("contact", 0x0002)
	alarm.Mask = 0x0001
	d.AddProperty(alarm)
	_, err := d.ApplyAttribute(1, 0x0500, 0x0002, "open")
	assert.Error(t, err)
}

func TestApplyAttributeErrorIsScoped(t *testing.T) {
	d := NewDevice("dev1", "")
	bad := topoProp("bad", 0x0000)
	bad.Codec.Decode = func([]any) (any, error) { return nil, errors.New("boom") }
	good := topoProp("good", 0x0000)
	good.Value = false
	d.AddProperty(bad)
	d.AddProperty(good)

	updated, err := d.ApplyAttribute(1, 0x0500, 0x0000, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	require.Len(t, updated, 1)
	assert.Equal(t, true, good.Value)
	assert.Nil(t, bad.Value)
}

func TestApplyAttributeMultiAttrWaitsForAllParts(t *testing.T) {
	d := NewDevice("dev1", "")
	p := topoProp("pair", 0x0003, 0x0004)
	p.Codec.Decode = func(raw []any) (any, error) {
		if raw[0] == nil || raw[1] == nil {
			return nil, nil
		}
		return [2]any{raw[0], raw[1]}, nil
	}
	d.AddProperty(p)

	updated, err := d.ApplyAttribute(1, 0x0500, 0x0003, 1)
	require.NoError(t, err)
	assert.Empty(t, updated)
	assert.False(t, p.Known())

	updated, err = d.ApplyAttribute(1, 0x0500, 0x0004, 2)
	require.NoError(t, err)
	assert.Len(t, updated, 1)
	assert.Equal(t, [2]any{1, 2}, p.Value)
}

func TestSetValueFiresEdgesAndNotifies(t *testing.T) {
	d := NewDevice("dev1", "")
	src := &Property{Name: "src"}
	dst := &Property{Name: "dst"}
	d.AddProperty(src)
	d.AddProperty(dst)
	d.Graph().Connect("src", "dst", func(d *Device) {
		v, ok := d.Property("src").Number()
		if ok {
			d.Property("dst").SetMaximum(v * 2)
		}
	})

	var changed []string
	d.OnChange(func(_ *Device, p *Property) { changed = append(changed, p.Name) })

	require.NoError(t, d.SetValue("src", 4.0))
	require.NotNil(t, dst.Schema.Maximum)
	assert.Equal(t, 8.0, *dst.Schema.Maximum)
	assert.Equal(t, []string{"src", "dst"}, changed)
	assert.Equal(t, []string{"dst"}, d.Graph().Dependents("src"))

	err := d.SetValue("missing", 1)
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestSetBoundsClamp(t *testing.T) {
	p := &Property{Name: "t", Schema: Schema{Minimum: Float(10), Maximum: Float(30)}}
	p.SetMinimum(40)
	assert.Equal(t, 30.0, *p.Schema.Minimum)
	p.SetMaximum(5)
	assert.Equal(t, 30.0, *p.Schema.Maximum)
}

func TestValidate(t *testing.T) {
	p := topoProp("on", 0)
	p.ConfigReportNeeded = true
	assert.NoError(t, p.Validate())

	p.FireAndForget = true
	assert.Error(t, p.Validate())

	both := topoProp("x", 0)
	both.Expose = &ExposeBinding{Expose: "x"}
	assert.Error(t, both.Validate())

	noPath := &Property{Name: "y", Topology: &TopologyBinding{}}
	assert.Error(t, noPath.Validate())
	noPath.FireAndForget = true
	assert.NoError(t, noPath.Validate())
}

func TestEventFor(t *testing.T) {
	d := NewDevice("dev1", "")
	d.AddEvent(&EventDef{Name: "button1Pressed", Endpoint: 1, ClusterID: 6, Command: "On", ButtonIndex: 1})
	d.AddEvent(&EventDef{Name: "button2Pressed", Endpoint: 1, ClusterID: 6, Command: "Off", ButtonIndex: 2})

	e := d.EventFor(1, 6, "Off")
	require.NotNil(t, e)
	assert.Equal(t, 2, e.ButtonIndex)
	assert.Nil(t, d.EventFor(2, 6, "Off"))
}

func TestRaiseEventSetsProperty(t *testing.T) {
	d := NewDevice("dev", "remote")
	d.AddProperty(&Property{Name: "button1", Schema: Schema{Type: TypeBoolean}})
	d.AddEvent(&EventDef{Name: "1-pressed", ButtonIndex: 1, Endpoint: 1, ClusterID: 0x0006, Command: "On", Property: "button1", Value: true})
	d.AddEvent(&EventDef{Name: "1-released", ButtonIndex: 1, Endpoint: 1, ClusterID: 0x0008, Command: "Stop", Property: "button1", Value: false})

	e, err := d.RaiseEvent(1, 0x0006, "On")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "1-pressed", e.Name)
	assert.Equal(t, true, d.Property("button1").Value)

	_, err = d.RaiseEvent(1, 0x0008, "Stop")
	require.NoError(t, err)
	assert.Equal(t, false, d.Property("button1").Value)

	e, err = d.RaiseEvent(2, 0x0006, "On")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestSnapshotMatchAndRestore(t *testing.T) {
	p := &Property{
		Name:     "heatTarget",
		Schema:   Schema{Type: TypeNumber, Minimum: Float(10), Maximum: Float(23)},
		Topology: &TopologyBinding{ProfileID: 0x0104, Endpoint: 1, ClusterID: 0x0201, Attrs: []string{"OccupiedHeatingSetpoint"}},
		Value:    20.5,
	}
	snap := p.Snapshot()
	require.NotNil(t, snap)
	assert.True(t, snap.Matches(p.Topology))
	assert.False(t, snap.Matches(&TopologyBinding{ProfileID: 0x0104, Endpoint: 2, ClusterID: 0x0201, Attrs: []string{"OccupiedHeatingSetpoint"}}))
	assert.False(t, snap.Matches(nil))

	fresh := &Property{Name: "heatTarget", Schema: Schema{Type: TypeNumber}}
	snap.Restore(fresh)
	assert.Equal(t, 20.5, fresh.Value)
	assert.Equal(t, 10.0, *fresh.Schema.Minimum)
	assert.Equal(t, 23.0, *fresh.Schema.Maximum)

	assert.Nil(t, (&Property{Name: "x", Expose: &ExposeBinding{}}).Snapshot())
}
