// Package emitter mirrors delivered notifications to an MQTT broker.
package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Bajtii/Object-detection/internal/logger"
	"github.com/Bajtii/Object-detection/internal/model"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
	qosAtLeastOnce = 1
)

// publisher is the part of mqtt.Client the emitter needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTEmitter publishes each delivered notification as JSON to one topic.
type MQTTEmitter struct {
	client    mqtt.Client
	pub       publisher
	topic     string
	logger    *logger.Logger
	published atomic.Uint64
	errors    atomic.Uint64
}

// NewMQTTEmitter creates an emitter for broker (host:port or URL).
func NewMQTTEmitter(broker, topic, clientID string, logger *logger.Logger) *MQTTEmitter {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL(broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		logger.Info("MQTT connection established (broker %s)", broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warning("MQTT connection lost, reconnecting: %v", err)
	}

	client := mqtt.NewClient(opts)
	return &MQTTEmitter{client: client, pub: client, topic: topic, logger: logger}
}

func brokerURL(broker string) string {
	for _, scheme := range []string{"tcp://", "ssl://", "ws://", "wss://", "mqtt://", "mqtts://"} {
		if strings.HasPrefix(broker, scheme) {
			return broker
		}
	}
	return "tcp://" + broker
}

// Connect starts the connection. With connect-retry enabled the client
// keeps retrying in the background, so a timeout here is not fatal.
func (e *MQTTEmitter) Connect(ctx context.Context) error {
	token := e.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connection failed: %w", err)
		}
		return nil
	case <-time.After(connectTimeout):
		e.logger.Warning("MQTT broker not reachable yet, retrying in background")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NotificationSent publishes n without blocking the caller.
func (e *MQTTEmitter) NotificationSent(n model.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		e.errors.Add(1)
		e.logger.Error("Failed to encode notification: %v", err)
		return
	}

	token := e.pub.Publish(e.topic, qosAtLeastOnce, false, payload)
	go e.await(token)
}

func (e *MQTTEmitter) await(token mqtt.Token) {
	if !token.WaitTimeout(publishTimeout) {
		e.errors.Add(1)
		e.logger.Warning("MQTT publish to %s timed out", e.topic)
		return
	}
	if err := token.Error(); err != nil {
		e.errors.Add(1)
		e.logger.Error("MQTT publish to %s failed: %v", e.topic, err)
		return
	}
	e.published.Add(1)
}

// Counts returns how many publishes succeeded and failed.
func (e *MQTTEmitter) Counts() (published, failed uint64) {
	return e.published.Load(), e.errors.Load()
}

// Disconnect closes the connection with a short grace period.
func (e *MQTTEmitter) Disconnect() {
	if e.client != nil && e.client.IsConnectionOpen() {
		e.client.Disconnect(250)
		e.logger.Info("MQTT disconnected")
	}
}
