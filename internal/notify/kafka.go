package notify

import (
	"context"
	"fmt"

	"auction-dashboard/utils"

	"github.com/IBM/sarama"
)

// NewKafkaConfig returns the sarama config shared by the source and publisher
func NewKafkaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Consumer.Return.Errors = true
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	return config
}

// KafkaSource reads the notification topic once and fans messages out by
// key. Messages keyed by an email go to that user; unkeyed messages are
// broadcasts.
type KafkaSource struct {
	*Hub
	consumer sarama.Consumer
	topic    string
}

// NewKafkaSource creates a source over consumer; call Run to start reading
func NewKafkaSource(consumer sarama.Consumer, topic string) *KafkaSource {
	return &KafkaSource{Hub: NewHub(), consumer: consumer, topic: topic}
}

// Run consumes partition 0 from the newest offset until ctx is done
func (s *KafkaSource) Run(ctx context.Context) error {
	pc, err := s.consumer.ConsumePartition(s.topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("notify: consume topic %s: %w", s.topic, err)
	}
	defer pc.Close()

	utils.Info("notify: listening on kafka topic", map[string]any{"topic": s.topic})

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-pc.Messages():
			if !ok {
				return nil
			}
			s.Dispatch(string(msg.Key), msg.Value)
		case cerr, ok := <-pc.Errors():
			if !ok {
				return nil
			}
			utils.Warn("notify: kafka consumer error", map[string]any{"topic": s.topic, "error": cerr.Error()})
		}
	}
}

// KafkaPublisher writes notifications to the topic keyed by recipient
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher wraps a sync producer
func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish sends payload; an empty recipient produces an unkeyed broadcast
func (p *KafkaPublisher) Publish(_ context.Context, recipient string, payload []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(payload),
	}
	if recipient != "" {
		msg.Key = sarama.StringEncoder(recipient)
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("notify: kafka publish to %s: %w", p.topic, err)
	}
	return nil
}
