package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TopicUsers   = "user_events"
	TopicDiaries = "diary_events"
)

const (
	UserRegistered = "user_registered"
	RoleGranted    = "role_granted"
	RoleRevoked    = "role_revoked"
	DiaryCreated   = "diary_created"
	DiaryUpdated   = "diary_updated"
	DiaryDeleted   = "diary_deleted"
	DiaryAnalyzed  = "diary_analyzed"
)

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	UserID     uint           `json:"user_id"`
	DiaryID    uint           `json:"diary_id,omitempty"`
	Attrs      map[string]any `json:"attrs,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func New(typ string, userID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) Key() string { return strconv.FormatUint(uint64(e.UserID), 10) }

type Publisher interface {
	Publish(ctx context.Context, topic string, e Event) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(e.Key()),
		Value: data,
		Time:  e.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// EnsureTopics creates the topics through the cluster controller. Topics
// that already exist are left alone.
func EnsureTopics(ctx context.Context, broker string, topics ...string) error {
	var d kafka.Dialer
	conn, err := d.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	admin, err := d.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer admin.Close()

	cfgs := make([]kafka.TopicConfig, 0, len(topics))
	for _, tp := range topics {
		cfgs = append(cfgs, kafka.TopicConfig{Topic: tp, NumPartitions: 1, ReplicationFactor: 1})
	}
	err = admin.CreateTopics(cfgs...)
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) && !strings.Contains(err.Error(), "already exists") {
		return err
	}
	return nil
}

type Noop struct{}

func (Noop) Publish(context.Context, string, Event) error { return nil }
func (Noop) Close() error                                 { return nil }

// Memory keeps published events in order. Useful in tests and for local
// runs without a broker.
type Memory struct {
	mu     sync.Mutex
	events []Published
}

type Published struct {
	Topic string
	Event Event
}

func (m *Memory) Publish(_ context.Context, topic string, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Published{Topic: topic, Event: e})
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Events() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Published, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Memory) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, p := range m.events {
		out = append(out, p.Event.Type)
	}
	return out
}
