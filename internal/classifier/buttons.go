package classifier

import (
	"fmt"

	"zigbee-things/internal/thing"
	"zigbee-things/internal/zcl"
)

// gesture is a command received from a button. The zero value means the
// button does not send it.
type gesture struct {
	cluster uint16
	command string
}

type buttonDef struct {
	title         string
	pressed       gesture
	doublePressed gesture
	longPressed   gesture
	released      gesture
}

func onOffCmd(cmd string) gesture  { return gesture{zcl.ClusterOnOff, cmd} }
func levelCmd(cmd string) gesture  { return gesture{zcl.ClusterLevelControl, cmd} }
func scenesCmd(cmd string) gesture { return gesture{zcl.ClusterScenes, cmd} }

// IKEA arrow buttons use manufacturer specific Scenes commands; the
// transport names them by direction.
var buttonLayouts = map[ButtonLayout][]buttonDef{
	LayoutGeneric2: {
		{title: "On", pressed: onOffCmd("On")},
		{title: "Off", pressed: onOffCmd("Off")},
	},
	LayoutIkeaRemote5: {
		{title: "Toggle", pressed: onOffCmd("Toggle")},
		{title: "Brighten", pressed: levelCmd("StepWithOnOff"), longPressed: levelCmd("MoveWithOnOff"), released: levelCmd("StopWithOnOff")},
		{title: "Dim", pressed: levelCmd("Step"), longPressed: levelCmd("Move"), released: levelCmd("Stop")},
		{title: "Left", pressed: scenesCmd("ArrowLeftClick"), longPressed: scenesCmd("ArrowLeftHold"), released: scenesCmd("ArrowLeftRelease")},
		{title: "Right", pressed: scenesCmd("ArrowRightClick"), longPressed: scenesCmd("ArrowRightHold"), released: scenesCmd("ArrowRightRelease")},
	},
	LayoutOsram2: {
		{title: "Up", pressed: onOffCmd("On"), longPressed: levelCmd("MoveWithOnOff"), released: levelCmd("StopWithOnOff")},
		{title: "Down", pressed: onOffCmd("Off"), longPressed: levelCmd("Move"), released: levelCmd("Stop")},
	},
	LayoutHueDimmer4: {
		{title: "On", pressed: onOffCmd("On")},
		{title: "Dim up", pressed: levelCmd("StepWithOnOff"), released: levelCmd("StopWithOnOff")},
		{title: "Dim down", pressed: levelCmd("Step"), released: levelCmd("Stop")},
		{title: "Off", pressed: onOffCmd("OffWithEffect")},
	},
}

// sceneButton is repeated once per on/off client endpoint of a scene
// controller.
var sceneButton = buttonDef{
	pressed:       onOffCmd("Toggle"),
	doublePressed: onOffCmd("On"),
	longPressed:   onOffCmd("Off"),
}

func (b *builder) remote(layout ButtonLayout) {
	b.setType("remote", "PushButton")

	eps := b.desc.OutEndpoints(zcl.ClusterOnOff)
	if layout == LayoutSceneController {
		for i, ep := range eps {
			def := sceneButton
			def.title = fmt.Sprintf("Scene %d", i+1)
			b.button(i+1, ep, def)
		}
		return
	}
	for i, def := range buttonLayouts[layout] {
		b.button(i+1, eps[0], def)
	}
}

// button adds a string property holding the last gesture of button n and
// one event per gesture the button sends.
func (b *builder) button(n int, ep Endpoint, def buttonDef) {
	name := fmt.Sprintf("button%d", n)
	gestures := []struct {
		suffix, title, semantic, value string
		g                              gesture
	}{
		{"Pressed", "pressed", "PressedEvent", "pressed", def.pressed},
		{"DoublePressed", "double pressed", "DoublePressedEvent", "doublePressed", def.doublePressed},
		{"LongPressed", "long pressed", "LongPressedEvent", "longPressed", def.longPressed},
		{"Released", "released", "", "released", def.released},
	}

	var values []string
	for _, g := range gestures {
		if g.g.command == "" {
			continue
		}
		values = append(values, g.value)
		b.event(thing.EventDef{
			Name:         name + g.suffix,
			Title:        def.title + " " + g.title,
			SemanticType: g.semantic,
			ButtonIndex:  n,
			Endpoint:     ep.ID,
			ClusterID:    g.g.cluster,
			Command:      g.g.command,
			Property:     name,
			Value:        g.value,
		})
	}

	p := b.prop(name, thing.Schema{
		Title:    def.title,
		Type:     thing.TypeString,
		Enum:     values,
		ReadOnly: true,
	}, ep, zcl.ClusterOnOff, "", thing.Codec{}, nil)
	p.ButtonIndex = n
}

// pushButton handles devices that only send on/off commands. Motion sensors
// that switch lights directly look the same and are told apart by model.
func (b *builder) pushButton() {
	ep, _ := b.desc.FirstOut(zcl.ClusterOnOff)
	if isMotionModel(b.desc.Model) {
		b.commandMotion(ep)
		return
	}

	b.setType("pushButton", "PushButton")
	p := b.prop("pushed", thing.Schema{
		SemanticType: "PushedProperty",
		Title:        "Pushed",
		Type:         thing.TypeBoolean,
		ReadOnly:     true,
	}, ep, zcl.ClusterOnOff, "", thing.Codec{}, nil)
	p.ButtonIndex = 1
	p.Default = false

	b.event(thing.EventDef{
		Name: "pressed", Title: "Pressed", SemanticType: "PressedEvent", ButtonIndex: 1,
		Endpoint: ep.ID, ClusterID: zcl.ClusterOnOff, Command: "On",
		Property: "pushed", Value: true,
	})
	b.event(thing.EventDef{
		Name: "released", Title: "Released", ButtonIndex: 1,
		Endpoint: ep.ID, ClusterID: zcl.ClusterOnOff, Command: "Off",
		Property: "pushed", Value: false,
	})
}

func (b *builder) commandMotion(ep Endpoint) {
	b.setType("motionSensor", "MotionSensor")
	p := b.prop("motion", thing.Schema{
		SemanticType: "MotionProperty",
		Title:        "Motion",
		Type:         thing.TypeBoolean,
		ReadOnly:     true,
	}, ep, zcl.ClusterOnOff, "", thing.Codec{}, nil)
	p.Default = false

	b.event(thing.EventDef{
		Name: "motion", Title: "Motion detected",
		Endpoint: ep.ID, ClusterID: zcl.ClusterOnOff, Command: "OnWithTimedOff",
		Property: "motion", Value: true,
	})
	b.event(thing.EventDef{
		Name: "motionCleared", Title: "Motion cleared",
		Endpoint: ep.ID, ClusterID: zcl.ClusterOnOff, Command: "Off",
		Property: "motion", Value: false,
	})
}
