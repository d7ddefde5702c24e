package publish

import (
	"context"
	"encoding/json"

	"github.com/wassimk/elgato-light/internal/executor"
	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
	"github.com/wassimk/elgato-light/internal/infrastructure/mqtt"
)

// Publisher is the subset of *mqtt.Client the MQTT sink uses.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	QoS() byte
}

// MQTTObserver publishes a retained state message for every light that
// succeeded and one invocation summary per command.
type MQTTObserver struct {
	publisher Publisher
	topics    mqtt.Topics
	logger    *logging.Logger
}

// NewMQTTObserver returns an observer publishing under topics.
func NewMQTTObserver(p Publisher, topics mqtt.Topics, logger *logging.Logger) *MQTTObserver {
	return &MQTTObserver{
		publisher: p,
		topics:    topics,
		logger:    logger.With("component", "publish.mqtt"),
	}
}

// Observe implements executor.Observer.
func (m *MQTTObserver) Observe(_ context.Context, r executor.Report) {
	qos := m.publisher.QoS()

	for _, o := range r.Outcomes {
		if !o.OK() {
			continue
		}
		m.publish(m.topics.LightState(o.Target.Name), NewStateMessage(r, o), qos, true)
	}

	m.publish(m.topics.Invocation(), NewInvocationMessage(r), qos, false)
}

func (m *MQTTObserver) publish(topic string, msg any, qos byte, retained bool) {
	payload, err := json.Marshal(msg)
	if err != nil {
		m.logger.Warn("failed to marshal MQTT message", "topic", topic, "error", err)
		return
	}
	if err := m.publisher.Publish(topic, payload, qos, retained); err != nil {
		m.logger.Warn("failed to publish MQTT message", "topic", topic, "error", err)
	}
}
