//go:build !no_mqtt

package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"zigbee-things/internal/coordinator"
	"zigbee-things/internal/thing"
)

// Config holds MQTT bridge configuration.
type Config struct {
	Broker       string `yaml:"broker"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	TopicPrefix  string `yaml:"topic_prefix"`
	// RemotePrefix is the base topic of a zigbee2mqtt instance whose devices
	// are compiled from their exposes. Empty disables the expose path.
	RemotePrefix string `yaml:"remote_prefix"`
}

// Bridge connects the coordinator to MQTT. It publishes device state and
// Home Assistant discovery, carries coordinator.Transport requests to a radio
// adapter, and drives devices bridged by a remote zigbee2mqtt instance.
type Bridge struct {
	client pahomqtt.Client
	prefix string
	remote string
	logger *slog.Logger

	mu        sync.Mutex
	coord     *coordinator.Coordinator
	unsub     func()
	topics    map[string]string         // IEEE -> device topic name
	announced map[string][]discoveryMsg // IEEE or remote name -> discovery
	remotes   map[string]*remoteDevice  // topic name -> bridged device

	events *inbox
}

// NewBridge creates and connects an MQTT bridge.
func NewBridge(cfg Config, logger *slog.Logger) (*Bridge, error) {
	b := newBridge(nil, cfg, logger)

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("zigbee-things-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOrderMatters(false).
		SetWill(cfg.TopicPrefix+"/bridge/state", "offline", 1, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			b.logger.Info("MQTT connected")
			b.publishBridgeState("online")
			b.subscribe()
			b.publishAllDiscovery()
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			b.logger.Warn("MQTT connection lost", "err", err)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	b.client = client
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return b, nil
}

func newBridge(client pahomqtt.Client, cfg Config, logger *slog.Logger) *Bridge {
	b := &Bridge{
		client:    client,
		prefix:    cfg.TopicPrefix,
		remote:    cfg.RemotePrefix,
		logger:    logger.With("component", "mqtt"),
		topics:    make(map[string]string),
		announced: make(map[string][]discoveryMsg),
		remotes:   make(map[string]*remoteDevice),
		events:    newInbox(),
	}
	go b.events.run(b.route)
	return b
}

// Start subscribes to coordinator events and announces the devices the
// coordinator already manages.
func (b *Bridge) Start(coord *coordinator.Coordinator) {
	b.mu.Lock()
	b.coord = coord
	b.mu.Unlock()

	b.unsub = coord.Events().OnAll(b.handleEvent)
	b.publishAllDiscovery()
	b.logger.Info("MQTT bridge started", "prefix", b.prefix, "remote", b.remote)
}

// Stop publishes offline state, unsubscribes, and disconnects.
func (b *Bridge) Stop() {
	if b.unsub != nil {
		b.unsub()
	}
	b.events.stop()
	b.publishBridgeState("offline")
	b.client.Disconnect(1000)
	b.logger.Info("MQTT bridge stopped")
}

func (b *Bridge) coordinator() *coordinator.Coordinator {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.coord
}

func (b *Bridge) subscribe() {
	filters := map[string]byte{
		b.prefix + "/adapter/event/+": 1,
		b.prefix + "/+/set":           1,
	}
	if b.remote != "" {
		filters[b.remote+"/bridge/devices"] = 1
		filters[b.remote+"/+"] = 1
	}
	token := b.client.SubscribeMultiple(filters, b.onMessage)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			b.logger.Warn("MQTT subscribe timeout")
		} else if err := token.Error(); err != nil {
			b.logger.Warn("MQTT subscribe error", "err", err)
		}
	}()
}

// onMessage receives messages from paho. Adapter events go through the
// ordered inbox; everything else is routed on paho's goroutine.
func (b *Bridge) onMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	if strings.HasPrefix(msg.Topic(), b.prefix+"/adapter/event/") {
		b.events.push(msg.Topic(), msg.Payload())
		return
	}
	b.route(msg.Topic(), msg.Payload())
}

// route dispatches an inbound message by topic.
func (b *Bridge) route(topic string, payload []byte) {
	switch {
	case strings.HasPrefix(topic, b.prefix+"/adapter/event/"):
		b.handleAdapterEvent(strings.TrimPrefix(topic, b.prefix+"/adapter/event/"), payload)
	case b.remote != "" && topic == b.remote+"/bridge/devices":
		b.handleRemoteDevices(payload)
	case strings.HasPrefix(topic, b.prefix+"/") && strings.HasSuffix(topic, "/set"):
		name := strings.TrimSuffix(strings.TrimPrefix(topic, b.prefix+"/"), "/set")
		b.handleSet(name, payload)
	case b.remote != "" && strings.HasPrefix(topic, b.remote+"/"):
		b.handleRemoteState(strings.TrimPrefix(topic, b.remote+"/"), payload)
	}
}

func (b *Bridge) handleEvent(event coordinator.Event) {
	switch data := event.Data.(type) {
	case coordinator.DeviceInfo:
		switch event.Type {
		case coordinator.EventDeviceClassified:
			b.publishDeviceDiscovery(data.IEEE)
			b.publishState(data.IEEE)
		case coordinator.EventDeviceRemoved:
			b.removeDevice(data.IEEE)
		case coordinator.EventDeviceRenamed:
			// The state topic follows the name.
			b.removeDevice(data.IEEE)
			b.publishDeviceDiscovery(data.IEEE)
			b.publishState(data.IEEE)
		}
	case coordinator.PropertyUpdate:
		b.publishState(data.IEEE)
	case coordinator.DeviceEvent:
		b.publish(b.prefix+"/"+b.topicName(data.IEEE)+"/action", []byte(data.Event), false)
	}
}

// topicName returns the MQTT topic name for a device by IEEE.
func (b *Bridge) topicName(ieee string) string {
	b.mu.Lock()
	name, ok := b.topics[ieee]
	coord := b.coord
	b.mu.Unlock()
	if ok {
		return name
	}
	if coord != nil {
		if dev, err := coord.Store().GetDevice(ieee); err == nil {
			return deviceTopicName(dev.Name())
		}
	}
	return deviceTopicName(ieee)
}

// deviceForTopic resolves a topic name back to a managed device.
func (b *Bridge) deviceForTopic(name string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ieee, topic := range b.topics {
		if topic == name {
			return ieee, true
		}
	}
	return "", false
}

func (b *Bridge) publishBridgeState(state string) {
	b.publish(b.prefix+"/bridge/state", []byte(state), true)
}

func (b *Bridge) publishAllDiscovery() {
	coord := b.coordinator()
	if coord == nil {
		return
	}
	for _, ieee := range coord.Devices().IEEEs() {
		b.publishDeviceDiscovery(ieee)
		b.publishState(ieee)
	}
	b.publishRemoteDiscovery()
}

func (b *Bridge) publishDeviceDiscovery(ieee string) {
	coord := b.coordinator()
	if coord == nil {
		return
	}
	name := ieee
	if dev, err := coord.Store().GetDevice(ieee); err == nil {
		name = dev.Name()
	}

	var msgs []discoveryMsg
	err := coord.Devices().View(ieee, func(td *thing.Device) {
		msgs = buildDiscovery(td, name, b.prefix)
	})
	if err != nil {
		b.logger.Warn("discovery for unknown device", "ieee", ieee)
		return
	}

	b.mu.Lock()
	b.topics[ieee] = deviceTopicName(name)
	b.announced[ieee] = msgs
	b.mu.Unlock()

	for _, msg := range msgs {
		b.publish(msg.Topic, msg.Payload, true)
	}
	b.logger.Info("published HA discovery", "ieee", ieee, "name", name, "entities", len(msgs))
}

func (b *Bridge) publishState(ieee string) {
	coord := b.coordinator()
	if coord == nil {
		return
	}
	state, err := coord.Devices().State(ieee)
	if err != nil {
		return
	}
	b.publish(b.prefix+"/"+b.topicName(ieee), mustJSON(state), true)
}

func (b *Bridge) removeDevice(ieee string) {
	topic := b.topicName(ieee)

	b.mu.Lock()
	msgs := b.announced[ieee]
	delete(b.announced, ieee)
	delete(b.topics, ieee)
	b.mu.Unlock()

	for _, msg := range buildRemoveDiscovery(msgs) {
		b.publish(msg.Topic, msg.Payload, true)
	}
	b.publish(b.prefix+"/"+topic, nil, true)
	b.logger.Info("removed HA discovery", "ieee", ieee)
}

// handleSet applies a {property: value} write received on a device's /set
// topic. The "action" key invokes an action instead.
func (b *Bridge) handleSet(name string, payload []byte) {
	var cmd map[string]any
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.logger.Warn("invalid command JSON", "device", name, "err", err)
		return
	}

	base := context.Background()
	coord := b.coordinator()
	if coord != nil {
		base = coord.Context()
	}
	ctx, cancel := context.WithTimeout(base, 10*time.Second)
	defer cancel()

	if b.isRemote(name) {
		if err := b.WriteRemote(ctx, name, cmd); err != nil {
			b.logger.Warn("remote write failed", "device", name, "err", err)
		}
		return
	}

	ieee, ok := b.deviceForTopic(name)
	if coord == nil || !ok {
		b.logger.Warn("command for unknown device", "device", name)
		return
	}

	keys := make([]string, 0, len(cmd))
	for k := range cmd {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		var err error
		if action, ok := cmd[key].(string); ok && key == "action" {
			err = coord.Devices().InvokeAction(ctx, ieee, action)
		} else {
			err = coord.Devices().WriteProperty(ctx, ieee, key, cmd[key])
		}
		if err != nil {
			b.logger.Warn("command failed", "ieee", ieee, "key", key, "err", err)
		}
	}
}

func (b *Bridge) publish(topic string, payload []byte, retained bool) {
	token := b.client.Publish(topic, 1, retained, payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			b.logger.Warn("MQTT publish timeout", "topic", topic)
		} else if err := token.Error(); err != nil {
			b.logger.Warn("MQTT publish error", "topic", topic, "err", err)
		}
	}()
}

// publishWait publishes and blocks until the broker acknowledges or ctx ends.
func (b *Bridge) publishWait(ctx context.Context, topic string, payload []byte) error {
	token := b.client.Publish(topic, 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

var errNotConnected = errors.New("mqtt bridge not started")

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
