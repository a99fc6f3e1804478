package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"ms-pricing/internal/models"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
	Topics Topics
}

type Topics struct {
	PricingConfirmed string
	FlashSaleExpired string
}

func NewProducer(brokers []string, topics Topics) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics}
}

// Publish writes a single message to the given topic.
func (p *Producer) Publish(topic, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

// PublishPriceConfirmed streams a server-confirmed cart total so downstream
// services (payments, fulfilment) see the exact figure the buyer was shown.
func (p *Producer) PublishPriceConfirmed(conf models.PriceConfirmation) error {
	msgBytes, err := json.Marshal(conf)
	if err != nil {
		return fmt.Errorf("marshal price confirmation: %w", err)
	}
	return p.Publish(p.Topics.PricingConfirmed, conf.ID, msgBytes)
}

// PublishFlashSaleExpired announces that a sale crossed its end date.
func (p *Producer) PublishFlashSaleExpired(ev models.FlashSaleExpired) error {
	msgBytes, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal flash sale expiry: %w", err)
	}
	return p.Publish(p.Topics.FlashSaleExpired, ev.FlashSaleID, msgBytes)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
