package kafka

import (
	"context"
	"log/slog"

	"github.com/IBM/sarama"
)

const clientID = "staybeyond-events"

// Producer publishes outbox event envelopes synchronously. Every message is
// keyed by its aggregate id so all events for one booking land on the same
// partition in order.
type Producer struct {
	sync   sarama.SyncProducer
	logger *slog.Logger
}

// NewProducer connects a synchronous producer. A nil cfg gets the event-bus
// profile below; a caller-supplied cfg is taken as-is apart from the
// acknowledgement settings, which the outbox delivery contract requires.
func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	sync, err := sarama.NewSyncProducer(brokers, producerConfig(cfg))
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync}, nil
}

// producerConfig enforces the delivery settings the outbox relies on:
// full-ISR acks, idempotent producer, and the single in-flight request
// idempotence needs to keep per-partition ordering.
func producerConfig(cfg *sarama.Config) *sarama.Config {
	if cfg == nil {
		cfg = sarama.NewConfig()
		cfg.ClientID = clientID
		cfg.Producer.Compression = sarama.CompressionSnappy
		cfg.Producer.Retry.Max = 5
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

// WithLogger enables per-publish delivery logging.
func (p *Producer) WithLogger(logger *slog.Logger) *Producer {
	p.logger = logger
	return p
}

func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	partition, offset, err := p.sync.SendMessage(buildMessage(topic, key, payload, headers))
	if err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.Debug("event published", "topic", topic, "key", key, "partition", partition, "offset", offset)
	}
	return nil
}

func buildMessage(topic, key string, payload []byte, headers map[string]string) *sarama.ProducerMessage {
	hs := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	return &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
