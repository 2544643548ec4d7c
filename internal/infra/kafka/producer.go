package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/infra/config"
)

// Producer wraps a sarama async producer. Sends never block the request
// path: messages are handed to sarama's input channel and delivery errors
// are drained into the log by a background goroutine.
type Producer struct {
	async       sarama.AsyncProducer
	logger      *zap.Logger
	topicPrefix string
	done        chan struct{}
}

// NewProducer connects to the configured brokers.
func NewProducer(cfg config.KafkaSettings, logger *zap.Logger) (*Producer, error) {
	sc := sarama.NewConfig()
	sc.Version = sarama.V3_5_0_0

	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Flush.Frequency = 100 * time.Millisecond
	sc.Producer.Flush.Messages = 100
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = false
	sc.Producer.Return.Errors = true

	sc.Metadata.Retry.Max = 3
	sc.Metadata.Retry.Backoff = 250 * time.Millisecond

	async, err := sarama.NewAsyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := &Producer{
		async:       async,
		logger:      logger,
		topicPrefix: cfg.TopicPrefix,
		done:        make(chan struct{}),
	}
	go p.drainErrors()

	logger.Info("kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic_prefix", cfg.TopicPrefix),
	)

	return p, nil
}

// Send enqueues value on the event type's topic. It returns once sarama has
// accepted the message or ctx is done; delivery is asynchronous.
func (p *Producer) Send(ctx context.Context, eventType string, value []byte) error {
	message := &sarama.ProducerMessage{
		Topic: p.topicName(eventType),
		Value: sarama.ByteEncoder(value),
	}

	select {
	case p.async.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Producer) drainErrors() {
	for {
		select {
		case perr, ok := <-p.async.Errors():
			if !ok {
				return
			}
			p.logger.Error("kafka publish failed",
				zap.String("topic", perr.Msg.Topic),
				zap.Error(perr.Err),
			)
		case <-p.done:
			return
		}
	}
}

// Close flushes pending messages and stops the error drain.
func (p *Producer) Close() error {
	p.logger.Info("closing kafka producer")
	close(p.done)
	if err := p.async.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

func (p *Producer) topicName(eventType string) string {
	if p.topicPrefix == "" {
		return eventType
	}
	prefix := p.topicPrefix + "."
	if strings.HasPrefix(eventType, prefix) {
		return eventType
	}
	return prefix + eventType
}
