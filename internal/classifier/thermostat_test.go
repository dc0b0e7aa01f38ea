package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

func thermostatDevice(t *testing.T) *thing.Device {
	t.Helper()
	return classify(t, descriptor("trv", endpoint(1, zcl.ProfileHA, 0x0301, []uint16{zcl.ClusterThermostat}, nil)))
}

func bounds(t *testing.T, p *thing.Property) (lo, hi float64) {
	t.Helper()
	require.NotNil(t, p.Schema.Minimum, "%s minimum", p.Name)
	require.NotNil(t, p.Schema.Maximum, "%s maximum", p.Name)
	return *p.Schema.Minimum, *p.Schema.Maximum
}

func setAll(t *testing.T, d *thing.Device, values map[string]float64) {
	t.Helper()
	for name, v := range values {
		require.NoError(t, d.SetValue(name, v))
	}
}

func TestThermostatConstraintPropagation(t *testing.T) {
	dev := thermostatDevice(t)
	setAll(t, dev, map[string]float64{
		propAbsMinHeat: 10,
		propAbsMaxHeat: 30,
		propAbsMinCool: 15,
		propAbsMaxCool: 35,
		propDeadband:   2,
	})

	heat, cool := dev.Property(propHeatTarget), dev.Property(propCoolTarget)
	lo, hi := bounds(t, heat)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 30.0, hi)
	lo, hi = bounds(t, cool)
	assert.Equal(t, 15.0, lo)
	assert.Equal(t, 35.0, hi)

	require.NoError(t, dev.SetValue(propHeatTarget, 20.0))
	lo, _ = bounds(t, cool)
	assert.GreaterOrEqual(t, lo, 22.0)

	require.NoError(t, dev.SetValue(propCoolTarget, 25.0))
	_, hi = bounds(t, heat)
	assert.LessOrEqual(t, hi, 23.0)

	// Recomputes only move bounds.
	assert.Equal(t, 20.0, heat.Value)
	assert.Equal(t, 25.0, cool.Value)
}

func TestThermostatDefersUntilDeadbandKnown(t *testing.T) {
	dev := thermostatDevice(t)
	heat, cool := dev.Property(propHeatTarget), dev.Property(propCoolTarget)

	require.NoError(t, dev.SetValue(propHeatTarget, 20.0))
	assert.Nil(t, cool.Schema.Minimum, "no limits known yet")

	require.NoError(t, dev.SetValue(propCoolTarget, 21.0))
	setAll(t, dev, map[string]float64{propAbsMinCool: 15, propAbsMaxHeat: 30})
	assert.Nil(t, cool.Schema.Minimum, "heat target known, deadband not")
	assert.Nil(t, heat.Schema.Maximum, "cool target known, deadband not")

	require.NoError(t, dev.SetValue(propDeadband, 2.0))
	require.NotNil(t, cool.Schema.Minimum)
	require.NotNil(t, heat.Schema.Maximum)
	assert.Equal(t, 22.0, *cool.Schema.Minimum)
	assert.Equal(t, 19.0, *heat.Schema.Maximum)
}

func TestThermostatLimitAppliesWithoutOpposingTarget(t *testing.T) {
	dev := thermostatDevice(t)
	setAll(t, dev, map[string]float64{propAbsMaxHeat: 30, propAbsMinCool: 15})

	heat, cool := dev.Property(propHeatTarget), dev.Property(propCoolTarget)
	require.NotNil(t, heat.Schema.Maximum)
	require.NotNil(t, cool.Schema.Minimum)
	assert.Equal(t, 30.0, *heat.Schema.Maximum)
	assert.Equal(t, 15.0, *cool.Schema.Minimum)
}

func TestThermostatUserLimitsOverrideAbsolute(t *testing.T) {
	dev := thermostatDevice(t)
	setAll(t, dev, map[string]float64{propAbsMinHeat: 5, propAbsMaxHeat: 35})
	setAll(t, dev, map[string]float64{propMinHeat: 12, propMaxHeat: 28})

	lo, hi := bounds(t, dev.Property(propHeatTarget))
	assert.Equal(t, 12.0, lo)
	assert.Equal(t, 28.0, hi)

	lo, hi = bounds(t, dev.Property(propMinHeat))
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 35.0, hi)
}

func TestThermostatGraphShape(t *testing.T) {
	g := thermostatDevice(t).Graph()
	assert.Equal(t, []string{propCoolTarget}, g.Dependents(propHeatTarget))
	assert.Equal(t, []string{propHeatTarget}, g.Dependents(propCoolTarget))
	assert.ElementsMatch(t, []string{propHeatTarget, propCoolTarget}, g.Dependents(propDeadband))

	for _, e := range g.Edges() {
		assert.NotEqual(t, e.From, e.To)
	}
}

func TestThermostatDecodesCentiDegrees(t *testing.T) {
	dev := thermostatDevice(t)
	_, err := dev.ApplyAttribute(1, zcl.ClusterThermostat, 0x0012, int64(2150))
	require.NoError(t, err)
	assert.Equal(t, 21.5, dev.Property(propHeatTarget).Value)

	_, err = dev.ApplyAttribute(1, zcl.ClusterThermostat, 0x0019, int64(25))
	require.NoError(t, err)
	assert.Equal(t, 2.5, dev.Property(propDeadband).Value)

	_, err = dev.ApplyAttribute(1, zcl.ClusterThermostat, 0x001E, uint64(4))
	require.NoError(t, err)
	assert.Equal(t, "heating", dev.Property("runMode").Value)

	enc, err := dev.Property(propHeatTarget).Codec.Encode(22.0)
	require.NoError(t, err)
	assert.Equal(t, []any{2200.0}, enc)
}
