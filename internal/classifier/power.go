package classifier

import (
	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

func (b *builder) meteredDimmer() {
	ep, _ := b.desc.FirstIn(zcl.ClusterLevelControl)
	b.setType("meteredDimmer", "MultiLevelSwitch", "OnOffSwitch", "EnergyMonitor")
	if onEp, ok := b.onOffFor(ep); ok {
		b.onOff("on", onEp)
	}
	b.level(ep, "LevelProperty")
	b.metering()
}

func (b *builder) electricalPlug() {
	ep, _ := b.desc.FirstIn(zcl.ClusterElectricalMeasurement)
	b.plug(ep)
	b.measurement("instantaneousPower", "Power", "InstantaneousPowerProperty", "watt",
		ep, "ActivePower,ACPowerMultiplier,ACPowerDivisor", report(5, 600, 10))
	b.measurement("voltage", "Voltage", "VoltageProperty", "volt",
		ep, "RMSVoltage,ACVoltageMultiplier,ACVoltageDivisor", report(5, 600, 5))
	b.measurement("current", "Current", "CurrentProperty", "ampere",
		ep, "RMSCurrent,ACCurrentMultiplier,ACCurrentDivisor", report(5, 600, 10))
}

func (b *builder) meteringPlug() {
	ep, _ := b.desc.FirstIn(zcl.ClusterMetering)
	b.plug(ep)
	b.metering()
}

func (b *builder) plug(ep Endpoint) {
	b.setType("smartPlug", "SmartPlug", "EnergyMonitor")
	if onEp, ok := b.onOffFor(ep); ok {
		b.dev.AddTag("OnOffSwitch")
		b.onOff("on", onEp)
	}
}

// metering adds power and energy from the Metering cluster, scaled by its
// Multiplier and Divisor.
func (b *builder) metering() {
	ep, _ := b.desc.FirstIn(zcl.ClusterMetering)
	b.prop("instantaneousPower", thing.Schema{
		SemanticType: "InstantaneousPowerProperty",
		Title:        "Power",
		Type:         thing.TypeNumber,
		Unit:         "watt",
		ReadOnly:     true,
	}, ep, zcl.ClusterMetering, "InstantaneousDemand,Multiplier,Divisor", metered, report(5, 600, 1))
	b.prop("energy", thing.Schema{
		Title:    "Energy",
		Type:     thing.TypeNumber,
		Unit:     "kilowatt hour",
		ReadOnly: true,
	}, ep, zcl.ClusterMetering, "CurrentSummationDelivered,Multiplier,Divisor", metered, report(60, 3600, 1))
}

func (b *builder) measurement(name, title, semantic, unit string, ep Endpoint, attrs string, rc *thing.ReportConfig) {
	b.prop(name, thing.Schema{
		SemanticType: semantic,
		Title:        title,
		Type:         thing.TypeNumber,
		Unit:         unit,
		ReadOnly:     true,
	}, ep, zcl.ClusterElectricalMeasurement, attrs, metered, rc)
}
