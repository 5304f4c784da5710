// Package engine implements the scan side of VigiaGuard: the block-list
// client, the snapshot reconciler, the element matcher and the observer
// loop that reacts to page mutations and control messages.
package engine

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/VigiaStudios/VigiaGuardGo/pkg/logger"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/mqtt"
)

// Control message actions understood by the observer.
const (
	ActionSettingsUpdated   = "SETTINGS_UPDATED"
	ActionReEvaluatePosts   = "RE_EVALUATE_POSTS"
	ActionCheckAndBlockPost = "CHECK_AND_BLOCK_POST"
)

// Message is a control message delivered to a scan agent.
type Message struct {
	Action  string `json:"action"`
	Setting string `json:"setting,omitempty"`
	Value   bool   `json:"value,omitempty"`
	PostURL string `json:"postUrl,omitempty"`
}

// MessageBus delivers control messages to the observer loop.
type MessageBus interface {
	// Messages returns the channel the observer consumes.
	Messages() <-chan Message
	// Close releases the bus resources.
	Close() error
}

// MemoryBus is an in-process MessageBus, used by tests and by agents
// driven directly from code.
type MemoryBus struct {
	ch chan Message
}

// NewMemoryBus creates a bus with a small delivery buffer.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{ch: make(chan Message, 16)}
}

// Send delivers a message to the observer. Messages are dropped when
// the buffer is full, matching how a disconnected agent behaves.
func (b *MemoryBus) Send(msg Message) {
	select {
	case b.ch <- msg:
	default:
		logger.Warn(fmt.Sprintf("Mensaje descartado, el bus está lleno: %s", msg.Action), "BUS")
	}
}

func (b *MemoryBus) Messages() <-chan Message { return b.ch }

func (b *MemoryBus) Close() error {
	close(b.ch)
	return nil
}

// MqttBus receives control messages over MQTT. It listens on the
// agent's own topic and on the broadcast topic shared by all agents.
type MqttBus struct {
	ch     chan Message
	comm   *mqtt.MqttCommunicator
	topics []string
}

// NewMqttBus subscribes the agent identified by uuid to its event topics.
func NewMqttBus(comm *mqtt.MqttCommunicator, uuid string) (*MqttBus, error) {
	b := &MqttBus{
		ch:   make(chan Message, 16),
		comm: comm,
		topics: []string{
			fmt.Sprintf("vigia/events/%s", uuid),
			"vigia/events/broadcast",
		},
	}

	for _, topic := range b.topics {
		if err := comm.Subscribe(topic, b.onMessage); err != nil {
			return nil, fmt.Errorf("error suscribiendo al topic %s: %w", topic, err)
		}
	}

	logger.Success(fmt.Sprintf("Agente suscrito a eventos (%s)", uuid), "BUS")
	return b, nil
}

func (b *MqttBus) onMessage(topic string, payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		logger.Error(fmt.Sprintf("Mensaje de control inválido en %s: %v", topic, err), "BUS")
		return
	}
	select {
	case b.ch <- msg:
	default:
		logger.Warn(fmt.Sprintf("Mensaje descartado, el bus está lleno: %s", msg.Action), "BUS")
	}
}

func (b *MqttBus) Messages() <-chan Message { return b.ch }

func (b *MqttBus) Close() error {
	for _, topic := range b.topics {
		if err := b.comm.Unsubscribe(topic); err != nil {
			return err
		}
	}
	return nil
}
