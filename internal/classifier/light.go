package classifier

import (
	"slices"

	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

var (
	haLights = []uint16{
		zcl.DeviceHAOnOffLight,
		zcl.DeviceHADimmableLight,
		zcl.DeviceHAColorDimmableLight,
		zcl.DeviceHAColorTemperatureLight,
		zcl.DeviceHAExtendedColorLight,
	}
	zllLights = []uint16{
		zcl.DeviceZLLOnOffLight,
		zcl.DeviceZLLDimmableLight,
		zcl.DeviceZLLColorLight,
		zcl.DeviceZLLExtendedColorLight,
		zcl.DeviceZLLColorTemperatureLight,
	}
)

func hasLightLink(d *Descriptor) bool {
	return d.HasIn(zcl.ClusterLightLink) || d.HasOut(zcl.ClusterLightLink)
}

// isLightDevice decides from the device ids alone. The light-link id is only
// trusted when the device has the light-link cluster.
func isLightDevice(d *Descriptor) bool {
	if id, ok := d.DeviceID(zcl.ProfileHA); ok && slices.Contains(haLights, id) {
		return true
	}
	if hasLightLink(d) {
		if id, ok := d.DeviceID(zcl.ProfileLightLink); ok && slices.Contains(zllLights, id) {
			return true
		}
	}
	return false
}

type colorModel int

const (
	colorNone colorModel = iota
	colorHueSat
	colorXY
)

// colorFeatures reports the color model and color temperature support. An
// explicit ColorCapabilities bitmask wins; without it the device ids decide
// and color lights are assumed to support hue and saturation.
func colorFeatures(d *Descriptor) (colorModel, bool) {
	if !d.HasIn(zcl.ClusterColorControl) {
		return colorNone, false
	}
	if d.ColorCapabilities != nil {
		caps := *d.ColorCapabilities
		model := colorNone
		switch {
		case caps&zcl.ColorCapXY != 0:
			model = colorXY
		case caps&zcl.ColorCapHueSat != 0:
			model = colorHueSat
		}
		return model, caps&zcl.ColorCapColorTemp != 0
	}

	ha, _ := d.DeviceID(zcl.ProfileHA)
	zll, hasZLL := d.DeviceID(zcl.ProfileLightLink)
	if !hasLightLink(d) {
		hasZLL = false
	}
	isColor := ha == zcl.DeviceHAColorDimmableLight || ha == zcl.DeviceHAExtendedColorLight ||
		hasZLL && (zll == zcl.DeviceZLLColorLight || zll == zcl.DeviceZLLExtendedColorLight)
	isTemp := ha == zcl.DeviceHAColorTemperatureLight || ha == zcl.DeviceHAExtendedColorLight ||
		hasZLL && (zll == zcl.DeviceZLLColorTemperatureLight || zll == zcl.DeviceZLLExtendedColorLight)

	model := colorNone
	if isColor {
		model = colorHueSat
	}
	return model, isTemp
}

func (b *builder) onOff(name string, ep Endpoint) *thing.Property {
	p := b.prop(name, thing.Schema{
		SemanticType: "OnOffProperty",
		Title:        "On/Off",
		Type:         thing.TypeBoolean,
	}, ep, zcl.ClusterOnOff, "OnOff", boolCodec, report(1, 3600, 0))
	p.Command = onOffCommand
	return p
}

func (b *builder) level(ep Endpoint, semantic string) *thing.Property {
	p := b.prop("level", thing.Schema{
		SemanticType: semantic,
		Title:        "Level",
		Type:         thing.TypeInteger,
		Unit:         "percent",
		Minimum:      thing.Float(0),
		Maximum:      thing.Float(100),
	}, ep, zcl.ClusterLevelControl, "CurrentLevel", levelCodec, report(1, 3600, 1))
	p.Command = levelCommand
	return p
}

// onOffFor picks the on/off endpoint matching ep, or the first one.
func (b *builder) onOffFor(ep Endpoint) (Endpoint, bool) {
	if ep.HasIn(zcl.ClusterOnOff) {
		return ep, true
	}
	return b.desc.FirstIn(zcl.ClusterOnOff)
}

func (b *builder) light() {
	ep, _ := b.desc.FirstIn(zcl.ClusterLevelControl)
	model, temp := colorFeatures(b.desc)
	isLight := isLightDevice(b.desc) || model != colorNone || temp

	if onEp, ok := b.onOffFor(ep); ok {
		b.onOff("on", onEp)
	}
	if !isLight {
		b.setType("multiLevelSwitch", "MultiLevelSwitch", "OnOffSwitch")
		b.level(ep, "LevelProperty")
		return
	}

	b.dev.AddTag("Light")
	b.dev.AddTag("OnOffSwitch")
	b.level(ep, "BrightnessProperty")

	switch {
	case model != colorNone && temp:
		b.dev.Type = "extendedColorLight"
	case model != colorNone:
		b.dev.Type = "colorLight"
	case temp:
		b.dev.Type = "colorTemperatureLight"
	default:
		b.dev.Type = "dimmableLight"
	}

	colorEp, _ := b.desc.FirstIn(zcl.ClusterColorControl)
	if model != colorNone {
		b.dev.AddTag("ColorControl")
		schema := thing.Schema{SemanticType: "ColorProperty", Title: "Color", Type: thing.TypeString}
		if model == colorXY {
			p := b.prop("color", schema, colorEp, zcl.ClusterColorControl, "CurrentX,CurrentY", xyCodec, report(1, 3600, 16))
			p.Command = xyCommand
		} else {
			p := b.prop("color", schema, colorEp, zcl.ClusterColorControl, "CurrentHue,CurrentSaturation", hueSatCodec, report(1, 3600, 1))
			p.Command = hueSatCommand
		}
	}
	if temp {
		b.dev.AddTag("ColorControl")
		p := b.prop("colorTemperature", thing.Schema{
			SemanticType: "ColorTemperatureProperty",
			Title:        "Color temperature",
			Type:         thing.TypeInteger,
			Unit:         "kelvin",
			Minimum:      thing.Float(2000),
			Maximum:      thing.Float(6500),
		}, colorEp, zcl.ClusterColorControl, "ColorTemperatureMireds", kelvinCodec, report(1, 3600, 1))
		p.Command = colorTempCommand
	}
}

func (b *builder) onOffSwitch() {
	b.setType("switch", "OnOffSwitch")
	for i, ep := range b.desc.InEndpoints(zcl.ClusterOnOff) {
		b.onOff(indexed("on", i), ep)
	}
}
