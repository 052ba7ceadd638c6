// Package broker publishes simulation state to an MQTT broker.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ukydev/city-traffic/internal/models"
)

// ErrPublishTimeout is returned when the broker does not acknowledge a publish in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Client is the part of mqtt.Client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Connect opens a connection to the broker at url.
func Connect(url, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(url)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", token.Error())
	}
	return client, nil
}

// Publisher writes snapshots and accidents under a topic prefix.
type Publisher struct {
	client  Client
	prefix  string
	timeout time.Duration
}

// NewPublisher returns a Publisher using topics below prefix.
func NewPublisher(client Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix, timeout: 5 * time.Second}
}

// SnapshotTopic carries the latest world snapshot as a retained message.
func (p *Publisher) SnapshotTopic() string { return p.prefix + "/snapshot" }

// AccidentTopic carries one message per accident.
func (p *Publisher) AccidentTopic() string { return p.prefix + "/accidents" }

// PublishSnapshot publishes snap at QoS 0, retained.
func (p *Publisher) PublishSnapshot(snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	token := p.client.Publish(p.SnapshotTopic(), 0, true, payload)
	if !token.WaitTimeout(p.timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// PublishAccident publishes rec at QoS 1 and waits for the acknowledgement or ctx.
func (p *Publisher) PublishAccident(ctx context.Context, rec models.AccidentRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal accident: %w", err)
	}
	token := p.client.Publish(p.AccidentTopic(), 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("accident %d not acknowledged: %w", rec.AccidentID, ctx.Err())
	}
}
