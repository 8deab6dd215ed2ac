// Package mqttevents publishes route lifecycle events to an MQTT broker.
package mqttevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fleet/internal/core/domain/model/route"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qosAtLeastOnce = 1
	ackTimeout     = 5 * time.Second
	connectTimeout = 10 * time.Second
)

// client is the part of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Publisher implements ports.EventPublisher. Each event goes to
// "<prefix>/routes/<route id>/<event type>" with QoS 1. Acknowledgements are
// awaited in the background and failures are only logged.
type Publisher struct {
	client client
	prefix string
	logger *slog.Logger

	inflight sync.WaitGroup
}

func NewPublisher(c client, topicPrefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: c,
		prefix: topicPrefix,
		logger: logger.With("component", "mqtt_publisher"),
	}
}

// Connect dials the broker with auto-reconnect enabled.
//
// Example:
//
//	c, err := mqttevents.Connect("tcp://localhost:1883", "fleet-api")
//	if err != nil {
//	    return err
//	}
//	defer c.Disconnect(250)
//	publisher := mqttevents.NewPublisher(c, "fleet", logger)
func Connect(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(connectTimeout)

	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", brokerURL, err)
	}
	return c, nil
}

type message struct {
	Type       route.EventType `json:"type"`
	RouteID    string          `json:"routeId"`
	StopID     string          `json:"stopId,omitempty"`
	OrderID    string          `json:"orderId,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func (p *Publisher) Publish(ctx context.Context, events []route.Event) {
	for _, event := range events {
		payload, err := json.Marshal(toMessage(event))
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to encode event", "type", event.Type, "error", err)
			continue
		}

		topic := p.Topic(event)
		token := p.client.Publish(topic, qosAtLeastOnce, false, payload)

		p.inflight.Add(1)
		go func() {
			defer p.inflight.Done()
			if !token.WaitTimeout(ackTimeout) {
				p.logger.Warn("event publish not acknowledged", "topic", topic)
				return
			}
			if err := token.Error(); err != nil {
				p.logger.Warn("event publish failed", "topic", topic, "error", err)
			}
		}()
	}
}

// Topic returns the topic an event is published to.
func (p *Publisher) Topic(event route.Event) string {
	return fmt.Sprintf("%s/routes/%s/%s", p.prefix, event.RouteID.String(), event.Type)
}

// Wait blocks until every published event was acknowledged or timed out.
func (p *Publisher) Wait() {
	p.inflight.Wait()
}

func toMessage(event route.Event) message {
	m := message{
		Type:       event.Type,
		RouteID:    event.RouteID.String(),
		OccurredAt: event.OccurredAt.UTC(),
	}
	if event.StopID != nil {
		m.StopID = event.StopID.String()
	}
	if event.OrderID != nil {
		m.OrderID = event.OrderID.String()
	}
	return m
}
