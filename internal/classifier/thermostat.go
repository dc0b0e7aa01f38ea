package classifier

import (
	"math"

	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

// Thermostat property names. The private ones carry the device limits that
// bound the two user-facing targets.
const (
	propAbsMinHeat = "_absMinHeatTarget"
	propAbsMaxHeat = "_absMaxHeatTarget"
	propAbsMinCool = "_absMinCoolTarget"
	propAbsMaxCool = "_absMaxCoolTarget"
	propMinHeat    = "_minHeatTarget"
	propMaxHeat    = "_maxHeatTarget"
	propMinCool    = "_minCoolTarget"
	propMaxCool    = "_maxCoolTarget"
	propHeatTarget = "heatTarget"
	propCoolTarget = "coolTarget"
	propDeadband   = "_deadband"
)

var systemModes = map[uint64]string{
	0x00: "off",
	0x01: "auto",
	0x03: "cool",
	0x04: "heat",
	0x05: "emergencyHeat",
	0x07: "fanOnly",
}

var runningModes = map[uint64]string{
	0x00: "off",
	0x03: "cooling",
	0x04: "heating",
}

var centiDegrees = scaled(100)

func (b *builder) thermostat() {
	ep, _ := b.desc.FirstIn(zcl.ClusterThermostat)
	b.setType("thermostat", "Thermostat", "TemperatureSensor")

	b.prop("temperature", thing.Schema{
		SemanticType: "TemperatureProperty",
		Title:        "Temperature",
		Type:         thing.TypeNumber,
		Unit:         "degree celsius",
		ReadOnly:     true,
	}, ep, zcl.ClusterThermostat, "LocalTemperature", centiDegrees, report(10, 300, 10))

	limits := []struct{ name, attr string }{
		{propAbsMinHeat, "AbsMinHeatSetpointLimit"},
		{propAbsMaxHeat, "AbsMaxHeatSetpointLimit"},
		{propAbsMinCool, "AbsMinCoolSetpointLimit"},
		{propAbsMaxCool, "AbsMaxCoolSetpointLimit"},
		{propMinHeat, "MinHeatSetpointLimit"},
		{propMaxHeat, "MaxHeatSetpointLimit"},
		{propMinCool, "MinCoolSetpointLimit"},
		{propMaxCool, "MaxCoolSetpointLimit"},
	}
	for _, l := range limits {
		b.prop(l.name, thing.Schema{Type: thing.TypeNumber, Unit: "degree celsius"},
			ep, zcl.ClusterThermostat, l.attr, centiDegrees, nil)
	}
	b.prop(propDeadband, thing.Schema{Type: thing.TypeNumber, Unit: "degree celsius"},
		ep, zcl.ClusterThermostat, "MinSetpointDeadBand", scaled(10), nil)

	b.prop(propHeatTarget, thing.Schema{
		SemanticType: "TargetTemperatureProperty",
		Title:        "Heating target",
		Type:         thing.TypeNumber,
		Unit:         "degree celsius",
		MultipleOf:   0.5,
	}, ep, zcl.ClusterThermostat, "OccupiedHeatingSetpoint", centiDegrees, report(1, 600, 10))
	b.prop(propCoolTarget, thing.Schema{
		SemanticType: "TargetTemperatureProperty",
		Title:        "Cooling target",
		Type:         thing.TypeNumber,
		Unit:         "degree celsius",
		MultipleOf:   0.5,
	}, ep, zcl.ClusterThermostat, "OccupiedCoolingSetpoint", centiDegrees, report(1, 600, 10))

	b.prop("hvacMode", thing.Schema{
		SemanticType: "ThermostatModeProperty",
		Title:        "Mode",
		Type:         thing.TypeString,
		Enum:         enumNames(systemModes),
	}, ep, zcl.ClusterThermostat, "SystemMode", enumCodec(systemModes), report(1, 3600, 0))
	b.prop("runMode", thing.Schema{
		SemanticType: "HeatingCoolingProperty",
		Title:        "Run mode",
		Type:         thing.TypeString,
		Enum:         enumNames(runningModes),
		ReadOnly:     true,
	}, ep, zcl.ClusterThermostat, "ThermostatRunningMode", enumCodec(runningModes), nil)

	if b.err != nil {
		return
	}
	connectThermostat(b.dev.Graph())
	primeGraph(b.dev)
}

// connectThermostat wires the setpoint constraint edges. Every recompute
// writes bounds only, so no edge ever causes another to fire.
func connectThermostat(g *thing.Graph) {
	g.Connect(propAbsMinHeat, propMinHeat, limitBounds(propAbsMinHeat, propMinHeat, propMaxHeat, true))
	g.Connect(propAbsMinHeat, propHeatTarget, recomputeHeatMin)
	g.Connect(propAbsMaxHeat, propMaxHeat, limitBounds(propAbsMaxHeat, propMinHeat, propMaxHeat, false))
	g.Connect(propAbsMaxHeat, propHeatTarget, recomputeHeatMax)
	g.Connect(propAbsMinCool, propMinCool, limitBounds(propAbsMinCool, propMinCool, propMaxCool, true))
	g.Connect(propAbsMinCool, propCoolTarget, recomputeCoolMin)
	g.Connect(propAbsMaxCool, propMaxCool, limitBounds(propAbsMaxCool, propMinCool, propMaxCool, false))
	g.Connect(propAbsMaxCool, propCoolTarget, recomputeCoolMax)

	g.Connect(propMinHeat, propHeatTarget, recomputeHeatMin)
	g.Connect(propMaxHeat, propHeatTarget, recomputeHeatMax)
	g.Connect(propMinCool, propCoolTarget, recomputeCoolMin)
	g.Connect(propMaxCool, propCoolTarget, recomputeCoolMax)

	g.Connect(propCoolTarget, propHeatTarget, recomputeHeatMax)
	g.Connect(propHeatTarget, propCoolTarget, recomputeCoolMin)
	g.Connect(propDeadband, propHeatTarget, recomputeHeatMax)
	g.Connect(propDeadband, propCoolTarget, recomputeCoolMin)
}

// primeGraph runs every edge once so rehydrated values are reflected in the
// bounds before the first update arrives.
func primeGraph(d *thing.Device) {
	for _, e := range d.Graph().Edges() {
		e.Fn(d)
	}
}

func known(d *thing.Device, name string) (float64, bool) {
	p := d.Property(name)
	if p == nil {
		return 0, false
	}
	return p.Number()
}

// effectiveLimit is the user limit, falling back to the absolute device
// limit until the user limit is known.
func effectiveLimit(d *thing.Device, user, abs string) (float64, bool) {
	if v, ok := known(d, user); ok {
		return v, true
	}
	return known(d, abs)
}

// limitBounds applies an absolute limit to both user limit properties.
func limitBounds(abs, minName, maxName string, lower bool) thing.Recompute {
	return func(d *thing.Device) {
		v, ok := known(d, abs)
		if !ok {
			return
		}
		for _, name := range []string{minName, maxName} {
			p := d.Property(name)
			if p == nil {
				continue
			}
			if lower {
				p.SetMinimum(v)
			} else {
				p.SetMaximum(v)
			}
		}
	}
}

func recomputeHeatMin(d *thing.Device) {
	lo, ok := effectiveLimit(d, propMinHeat, propAbsMinHeat)
	if !ok {
		return
	}
	d.Property(propHeatTarget).SetMinimum(lo)
}

// deadbandOffset returns the opposing target and the deadband. coupled is
// false while the opposing target is unknown, in which case only the limit
// applies. ok is false when the target is known but the deadband is not: the
// bound then waits for the deadband.
func deadbandOffset(d *thing.Device, opposing string) (target, db float64, coupled, ok bool) {
	target, coupled = known(d, opposing)
	if !coupled {
		return 0, 0, false, true
	}
	db, ok = known(d, propDeadband)
	return target, db, true, ok
}

// recomputeHeatMax sets heatTarget.maximum = min(max heat, coolTarget - deadband).
func recomputeHeatMax(d *thing.Device) {
	hi, ok := effectiveLimit(d, propMaxHeat, propAbsMaxHeat)
	if !ok {
		return
	}
	cool, db, coupled, ok := deadbandOffset(d, propCoolTarget)
	if !ok {
		return
	}
	if coupled {
		hi = math.Min(hi, cool-db)
	}
	d.Property(propHeatTarget).SetMaximum(hi)
}

// recomputeCoolMin sets coolTarget.minimum = max(min cool, heatTarget + deadband).
func recomputeCoolMin(d *thing.Device) {
	lo, ok := effectiveLimit(d, propMinCool, propAbsMinCool)
	if !ok {
		return
	}
	heat, db, coupled, ok := deadbandOffset(d, propHeatTarget)
	if !ok {
		return
	}
	if coupled {
		lo = math.Max(lo, heat+db)
	}
	d.Property(propCoolTarget).SetMinimum(lo)
}

func recomputeCoolMax(d *thing.Device) {
	hi, ok := effectiveLimit(d, propMaxCool, propAbsMaxCool)
	if !ok {
		return
	}
	d.Property(propCoolTarget).SetMaximum(hi)
}
