// Package kafka wraps a segmentio/kafka-go writer for the outbox publisher.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

// Message is one record handed to the broker.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
	Time    time.Time
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes messages to Kafka. The topic is chosen per message.
type Publisher struct {
	writer  messageWriter
	brokers []string
	timeout time.Duration
	logg    *logger.Logger
}

// NewPublisher builds a publisher over the configured brokers.
func NewPublisher(cfg config.KafkaConfig, logg *logger.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: cfg.WriteTimeout,
		Transport: &kafkago.Transport{
			ClientID: cfg.ClientID,
		},
	}
	return newPublisher(writer, cfg, logg), nil
}

func newPublisher(writer messageWriter, cfg config.KafkaConfig, logg *logger.Logger) *Publisher {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{writer: writer, brokers: cfg.Brokers, timeout: timeout, logg: logg}
}

// PermanentError marks a write failure that retrying cannot fix, such as an
// oversized message or a topic the client may not write to.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string { return e.Err.Error() }
func (e PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var permanent PermanentError
	return errors.As(err, &permanent)
}

// BatchError is returned when only some messages of a Publish failed. Errs
// holds one slot per message, nil for the ones written.
type BatchError struct {
	Errs []error
}

func (e *BatchError) Error() string {
	var failed []string
	for i, err := range e.Errs {
		if err != nil {
			failed = append(failed, fmt.Sprintf("#%d: %v", i, err))
		}
	}
	return fmt.Sprintf("%d of %d kafka messages failed: %s", len(failed), len(e.Errs), strings.Join(failed, "; "))
}

// MessageErrors expands a Publish error over n messages: nil for all on
// success, the per-message slots of a BatchError, or err for every message.
func MessageErrors(err error, n int) []error {
	out := make([]error, n)
	if err == nil {
		return out
	}
	var batch *BatchError
	if errors.As(err, &batch) && len(batch.Errs) == n {
		copy(out, batch.Errs)
		return out
	}
	for i := range out {
		out[i] = err
	}
	return out
}

// Publish writes msgs in one batch bounded by the configured write timeout.
// Keys pick the partition, so messages sharing a key stay in order.
func (p *Publisher) Publish(ctx context.Context, msgs ...Message) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka publisher not initialized")
	}
	if len(msgs) == 0 {
		return nil
	}
	records := make([]kafkago.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Topic == "" {
			return PermanentError{Err: errors.New("kafka message topic is required")}
		}
		ts := m.Time
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		records = append(records, kafkago.Message{
			Topic:   m.Topic,
			Key:     m.Key,
			Value:   m.Value,
			Headers: toHeaders(m.Headers),
			Time:    ts,
		})
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, records...); err != nil {
		var writeErrs kafkago.WriteErrors
		if errors.As(err, &writeErrs) && len(writeErrs) == len(records) {
			errs := make([]error, len(writeErrs))
			for i, e := range writeErrs {
				errs[i] = classify(e)
			}
			return &BatchError{Errs: errs}
		}
		return fmt.Errorf("write %d kafka messages: %w", len(records), classify(err))
	}
	if p.logg != nil {
		p.logg.Debug(p.logg.WithField(ctx, "count", len(records)), "kafka messages written")
	}
	return nil
}

// Ping dials the first reachable broker.
func (p *Publisher) Ping(ctx context.Context) error {
	if p == nil {
		return errors.New("kafka publisher not initialized")
	}
	var lastErr error
	for _, broker := range p.brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no kafka brokers configured")
	}
	return fmt.Errorf("kafka ping: %w", lastErr)
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// classify wraps broker errors that kafka-go reports as not temporary.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var kerr kafkago.Error
	if errors.As(err, &kerr) && !kerr.Temporary() {
		return PermanentError{Err: err}
	}
	return err
}

func toHeaders(values map[string]string) []kafkago.Header {
	if len(values) == 0 {
		return nil
	}
	headers := make([]kafkago.Header, 0, len(values))
	for k, v := range values {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(v)})
	}
	return headers
}
