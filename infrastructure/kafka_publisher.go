package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"clubbet/domain/interfaces"
	"clubbet/events"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// KafkaPublisher delivers bet lifecycle events to Kafka. The event type is
// used as the topic and the event key as the partition key, so all events
// for one bet land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given broker list
// ("host1:9092,host2:9092").
func NewKafkaPublisher(brokers string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}

	return &KafkaPublisher{writer: writer}
}

// Publish marshals the event as JSON and writes it to the topic named by
// the event type
func (p *KafkaPublisher) Publish(event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: event.Type(),
		Key:   []byte(event.Key()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}

	log.WithFields(log.Fields{
		"topic": event.Type(),
		"key":   event.Key(),
	}).Debug("Published event")

	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventPublisher = (*KafkaPublisher)(nil)
