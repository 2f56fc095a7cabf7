package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// publisher is the subset of mqtt.Client used by the MQTT sink.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes notifications as JSON to a broker topic, e.g. for home
// automation bridges.
type MQTT struct {
	client  publisher
	conn    mqtt.Client
	topic   string
	timeout time.Duration
}

// DialMQTT connects to brokerURL and returns a sink publishing to topic.
func DialMQTT(brokerURL, clientID, topic string, timeout time.Duration) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", brokerURL)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", brokerURL, err)
	}

	m := newMQTT(c, topic, timeout)
	m.conn = c
	return m, nil
}

func newMQTT(client publisher, topic string, timeout time.Duration) *MQTT {
	return &MQTT{client: client, topic: topic, timeout: timeout}
}

func (m *MQTT) Name() string {
	return "mqtt"
}

func (m *MQTT) Send(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	tok := m.client.Publish(m.topic, 1, false, payload)

	wait := m.timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d < wait || wait <= 0 {
			wait = d
		}
	}
	if !tok.WaitTimeout(wait) {
		return errors.New("mqtt publish timed out")
	}
	return tok.Error()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	if m.conn != nil {
		m.conn.Disconnect(250)
	}
}
