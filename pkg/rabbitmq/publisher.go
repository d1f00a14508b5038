package rabbitmq

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher publishes payloads on a fixed topic.
type IPublisher interface {
	PublishMessageQos(qos byte, retained bool, message []byte) error
	Close()
}

// Publisher publishes on one topic through a shared client.
type Publisher struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewPublisher creates a publisher bound to topic.
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic, timeout: 2 * time.Second}
}

func (p *Publisher) Topic() string { return p.topic }

// PublishMessageQos publishes message and waits for the broker ack up to the
// publisher timeout.
func (p *Publisher) PublishMessageQos(qos byte, retained bool, message []byte) error {
	if p.client == nil || !p.client.IsConnectionOpen() {
		return fmt.Errorf("publish on %s: client not connected", p.topic)
	}
	token := p.client.Publish(p.topic, qos, retained, message)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish on %s: timed out after %s", p.topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish on %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	CloseRabbitMQConn(p.client)
}
