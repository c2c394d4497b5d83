package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/storefront/internal/config"
	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	"github.com/nguyentranbao-ct/storefront/pkg/logger"
	log "github.com/nguyentranbao-ct/storefront/pkg/logger/logctx"
	"github.com/nguyentranbao-ct/storefront/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Publisher sends store events to Kafka without blocking the caller.
type Publisher interface {
	repository.EventPublisher
	// Close waits for queued events then closes the writer.
	Close(ctx context.Context) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer       messageWriter
	topic        string
	metrics      *prometheus.HistogramVec
	writeTimeout time.Duration
	workerPool   *workerpool.WorkerPool
}

// NewPublisher creates a Kafka event publisher, or a no-op one when Kafka is disabled.
func NewPublisher(cfg *config.KafkaConfig) (Publisher, error) {
	if !cfg.Enabled {
		return &noopPublisher{}, nil
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(writer, cfg.Topic, cfg.Workers)
}

func newPublisher(writer messageWriter, topic string, numWorkers int) (*kafkaPublisher, error) {
	metrics, err := util.GetHistogramVec("kafka_events_published", "status", "topic", "type")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &kafkaPublisher{
		writer:       writer,
		topic:        topic,
		metrics:      metrics,
		writeTimeout: 10 * time.Second,
		workerPool:   workerpool.New(numWorkers),
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event models.StoreEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		log.Errorw(ctx, "Failed to marshal store event", "error", err, "type", event.Type)
		return
	}
	msg := kafka.Message{
		// events of one shopper stay ordered within a partition
		Key:   []byte(event.ShopperID),
		Value: value,
		Time:  event.OccurredAt,
	}

	// the request context ends with the response; keep only its values
	msgCtx := context.WithoutCancel(ctx)
	p.workerPool.Submit(func() {
		p.write(msgCtx, msg, event.Type)
	})
}

func (p *kafkaPublisher) write(ctx context.Context, msg kafka.Message, eventType models.EventType) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	err := p.writer.WriteMessages(ctx, msg)
	duration := time.Since(start)

	code := getCode(err)
	content := "published"
	if err != nil {
		content = err.Error()
	}
	log.Logw(ctx, getLogLevel(code), content,
		"code", code,
		"duration_ms", duration.Milliseconds(),
		"topic", p.topic,
		"type", eventType,
		"key", string(msg.Key),
		"value", json.RawMessage(msg.Value),
	)

	p.metrics.
		WithLabelValues(code.String(), p.topic, string(eventType)).
		Observe(duration.Seconds())
}

func (p *kafkaPublisher) Close(ctx context.Context) error {
	log.Infof(ctx, "Stopping Kafka publisher, draining %d queued events", p.workerPool.WaitingQueueSize())
	p.workerPool.StopWait()
	return p.writer.Close()
}

func getCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return codes.DeadlineExceeded
	}
	if errors.Is(err, context.Canceled) {
		return codes.Canceled
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Unavailable
}

func getLogLevel(code codes.Code) logger.Level {
	switch code {
	case codes.OK:
		return logger.DebugLevel
	case codes.Canceled, codes.DeadlineExceeded:
		return logger.WarnLevel
	default:
		return logger.ErrorLevel
	}
}

// noopPublisher is used when Kafka is disabled
type noopPublisher struct{}

func (n *noopPublisher) Publish(ctx context.Context, event models.StoreEvent) {
	log.Debugw(ctx, "Kafka publisher is disabled, dropping event", "type", event.Type)
}

func (n *noopPublisher) Close(ctx context.Context) error {
	return nil
}
