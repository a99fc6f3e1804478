package kafka

import (
	"context"
	"encoding/json"
	"log"

	"ms-pricing/internal/models"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a Kafka consumer for the given topic and group.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// StartInventoryUpdates consumes upstream stock events until ctx is done.
// Remaining counts are snapshots; the handler must only ever overwrite, never
// derive, local inventory from them.
func (c *Consumer) StartInventoryUpdates(ctx context.Context, handler func(update models.InventoryUpdate)) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("kafka: error reading message: %v", err)
			continue
		}

		var update models.InventoryUpdate
		if err := json.Unmarshal(msg.Value, &update); err != nil {
			log.Printf("kafka: failed to unmarshal inventory update: %v", err)
			continue
		}

		handler(update)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
