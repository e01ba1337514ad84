package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"taxi-booking/internal/config"
	"taxi-booking/internal/logger"
	"taxi-booking/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const eventTypeHeader = "event_type"

// Producer публикует события сервиса в Kafka
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает синхронного продюсера Kafka
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает продюсера
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

func (p *Producer) publishEvent(topic, key string, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(eventTypeHeader), Value: []byte(event.Type)},
		},
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.WithError(err).WithField("topic", topic).WithField("event_type", event.Type).Error("Failed to publish event")
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"topic":      topic,
		"partition":  partition,
		"offset":     offset,
		"event_id":   event.ID,
		"event_type": event.Type,
	}).Debug("Event published")

	return nil
}

// PublishFareCalculated публикует рассчитанную стоимость поездки
func (p *Producer) PublishFareCalculated(b *models.FareBreakdown) error {
	if b == nil {
		return fmt.Errorf("fare breakdown is nil")
	}

	data := map[string]interface{}{
		"quote_id":       b.QuoteID,
		"service_type":   b.ServiceType,
		"vehicle_id":     b.VehicleID,
		"vehicle":        b.Vehicle,
		"distance_miles": b.DistanceMiles,
		"base_fare":      b.BaseFare,
		"total_fare":     b.TotalFare,
		"calculated_at":  b.CalculatedAt,
	}
	if b.CardPaymentTotal != nil {
		data["card_payment_total"] = *b.CardPaymentTotal
	}

	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeFareCalculated,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	return p.publishEvent(p.topics.Fares, b.QuoteID.String(), event)
}

// PublishReferenceChanged сообщает об изменении справочника
func (p *Producer) PublishReferenceChanged(entity string, action models.ReferenceAction, id int64) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeReferenceChanged,
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"entity": entity,
			"action": action,
			"id":     id,
		},
	}
	return p.publishEvent(p.topics.Reference, entity, event)
}
