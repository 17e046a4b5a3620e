package kafka

import (
	"context"
	"log/slog"
	"sort"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/storm-claims-analysis/internal/config"
	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer the Writer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces analysis results to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes all results in a single WriteMessages call. Results are
// keyed by request id so retries of one request land on one partition.
func (w *Writer) LoadBatch(ctx context.Context, out []domain.OutputMessage) error {
	if len(out) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(out))
	for i := range out {
		msgs[i] = toKafkaMessage(out[i])
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Debug("results published", "count", len(msgs))
	return nil
}

// Close flushes pending writes and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// toKafkaMessage copies headers in key order so output is deterministic.
func toKafkaMessage(out domain.OutputMessage) kafkago.Message {
	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(out.Headers[k])})
	}
	return kafkago.Message{Key: out.Key, Value: out.Value, Headers: headers}
}
