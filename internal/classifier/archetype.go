package classifier

import (
	"slices"
	"strings"
)

// Archetype is the primary device kind selected by the ordered rule list.
type Archetype int

const (
	ArchetypeNone Archetype = iota
	ArchetypeZone
	ArchetypeOccupancy
	ArchetypeThermostat
	ArchetypeMeteredDimmer
	ArchetypeElectricalPlug
	ArchetypeMeteringPlug
	ArchetypeLight
	ArchetypeOnOffSwitch
	ArchetypeRemote
	ArchetypeButton
	ArchetypeDoorLock
	ArchetypeBinarySensor
)

var archetypeNames = [...]string{
	ArchetypeNone:           "none",
	ArchetypeZone:           "zone",
	ArchetypeOccupancy:      "occupancy",
	ArchetypeThermostat:     "thermostat",
	ArchetypeMeteredDimmer:  "metered-dimmer",
	ArchetypeElectricalPlug: "electrical-plug",
	ArchetypeMeteringPlug:   "metering-plug",
	ArchetypeLight:          "light",
	ArchetypeOnOffSwitch:    "on-off-switch",
	ArchetypeRemote:         "remote",
	ArchetypeButton:         "button",
	ArchetypeDoorLock:       "door-lock",
	ArchetypeBinarySensor:   "binary-sensor",
}

func (a Archetype) String() string {
	if int(a) < len(archetypeNames) {
		return archetypeNames[a]
	}
	return "unknown"
}

// ButtonLayout is the button semantics of a multi-button remote.
type ButtonLayout int

const (
	LayoutGeneric2 ButtonLayout = iota
	LayoutIkeaRemote5
	LayoutOsram2
	LayoutHueDimmer4
	LayoutSceneController
)

func (l ButtonLayout) String() string {
	switch l {
	case LayoutIkeaRemote5:
		return "ikea-remote-5"
	case LayoutOsram2:
		return "osram-2"
	case LayoutHueDimmer4:
		return "hue-dimmer-4"
	case LayoutSceneController:
		return "scene-controller"
	default:
		return "generic-2"
	}
}

var layoutModels = map[string]ButtonLayout{
	"TRADFRI remote control": LayoutIkeaRemote5,
	"Lightify Switch Mini":   LayoutOsram2,
	"Switch 2x EU-IM":        LayoutOsram2,
	"Switch-LIGHTIFY":        LayoutOsram2,
	"RWL020":                 LayoutHueDimmer4,
	"RWL021":                 LayoutHueDimmer4,
	"RWL022":                 LayoutHueDimmer4,
	"ZGRC-KEY-013":           LayoutSceneController,
	"TS0044":                 LayoutSceneController,
	"ZBT-Remote-ALL-RGBW":    LayoutSceneController,
}

// layoutFor maps a model identifier to its button layout.
func layoutFor(model string) ButtonLayout {
	if l, ok := layoutModels[model]; ok {
		return l
	}
	return LayoutGeneric2
}

// motionModels identify devices that only send on/off commands but are
// motion sensors rather than buttons.
var motionModels = []string{
	"TRADFRI motion sensor",
	"LIGHTIFY Motion Sensor",
	"SML001",
	"SML002",
}

func isMotionModel(model string) bool {
	return slices.Contains(motionModels, model) ||
		strings.Contains(strings.ToLower(model), "motion")
}
