//go:build !no_mqtt

package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"zigbee-things/internal/expose"
	"zigbee-things/internal/thing"
)

var errUnknownRemote = errors.New("unknown remote device")

// remoteDevice is a device of the remote bridge, compiled from its exposes.
type remoteDevice struct {
	name  string // friendly name on the remote bridge
	bound *expose.Bound
}

func remoteKey(topic string) string {
	return "remote/" + topic
}

func (b *Bridge) isRemote(topic string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.remotes[topic]
	return ok
}

// handleRemoteDevices compiles the remote bridge's device list. Devices that
// disappeared from the list have their discovery removed.
func (b *Bridge) handleRemoteDevices(payload []byte) {
	var devices []expose.BridgeDevice
	if err := json.Unmarshal(payload, &devices); err != nil {
		b.logger.Warn("invalid bridge/devices JSON", "err", err)
		return
	}

	next := make(map[string]*remoteDevice)
	for _, bd := range devices {
		if !bd.Usable() {
			continue
		}
		bound, err := expose.CompileDevice(bd)
		if err != nil {
			b.logger.Warn("compile remote device", "device", bd.FriendlyName, "err", err)
			continue
		}
		next[deviceTopicName(bd.FriendlyName)] = &remoteDevice{name: bd.FriendlyName, bound: bound}
	}

	var stale []discoveryMsg
	b.mu.Lock()
	for topic := range b.remotes {
		if _, ok := next[topic]; !ok {
			stale = append(stale, b.announced[remoteKey(topic)]...)
			delete(b.announced, remoteKey(topic))
		}
	}
	b.remotes = next
	b.mu.Unlock()

	for _, msg := range buildRemoveDiscovery(stale) {
		b.publish(msg.Topic, msg.Payload, true)
	}
	b.publishRemoteDiscovery()
	b.logger.Info("remote devices compiled", "count", len(next), "listed", len(devices))
}

func (b *Bridge) publishRemoteDiscovery() {
	var msgs []discoveryMsg
	b.mu.Lock()
	for topic, rd := range b.remotes {
		m := buildDiscovery(rd.bound.Device, rd.name, b.prefix)
		b.announced[remoteKey(topic)] = m
		msgs = append(msgs, m...)
	}
	b.mu.Unlock()

	for _, msg := range msgs {
		b.publish(msg.Topic, msg.Payload, true)
	}
}

// handleRemoteState applies a remote state message and republishes the
// device's property values under the local prefix.
func (b *Bridge) handleRemoteState(name string, payload []byte) {
	var state map[string]any
	if err := json.Unmarshal(payload, &state); err != nil {
		b.logger.Debug("ignoring non-JSON remote message", "device", name)
		return
	}
	topic := deviceTopicName(name)

	b.mu.Lock()
	rd := b.remotes[topic]
	if rd == nil {
		b.mu.Unlock()
		return
	}
	updated, err := rd.bound.ApplyState(state)
	out := propertyState(rd.bound.Device)
	b.mu.Unlock()

	if err != nil {
		b.logger.Warn("remote state", "device", name, "err", err)
	}
	if len(updated) > 0 {
		b.publish(b.prefix+"/"+topic, mustJSON(out), true)
	}
}

// WriteRemote encodes property writes for a remote device and publishes them
// as one message to the remote bridge's /set topic. Properties that fail to
// encode are reported in the returned error; the rest are still sent.
func (b *Bridge) WriteRemote(ctx context.Context, name string, values map[string]any) error {
	b.mu.Lock()
	rd := b.remotes[deviceTopicName(name)]
	if rd == nil {
		b.mu.Unlock()
		return fmt.Errorf("%s: %w", name, errUnknownRemote)
	}
	out := make(map[string]any, len(values))
	var errs []error
	for prop, v := range values {
		kv, err := rd.bound.Encode(prop, v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		maps.Copy(out, kv)
	}
	friendly := rd.name
	b.mu.Unlock()

	if len(out) > 0 {
		if err := b.publishWait(ctx, b.remote+"/"+friendly+"/set", mustJSON(out)); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", friendly, err))
		}
	}
	return errors.Join(errs...)
}

// propertyState returns the known values of a device's visible properties.
func propertyState(td *thing.Device) map[string]any {
	state := make(map[string]any)
	for _, p := range td.VisibleProperties() {
		if p.Known() {
			state[p.Name] = p.Current()
		}
	}
	return state
}
