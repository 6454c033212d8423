package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/fitquest/internal/telemetry/metrics"
	"github.com/2beens/fitquest/internal/telemetry/tracing"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	outcomeOK     = "ok"
	outcomeFailed = "failed"

	defaultWriteTimeout = 5 * time.Second
)

var _ Publisher = (*KafkaPublisher)(nil)

//go:generate mockgen -source=$GOFILE -destination=kafka_mocks_test.go -package=events_test
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by profile id so one
// profile's events stay ordered within a partition.
type KafkaPublisher struct {
	writer         messageWriter
	writeTimeout   time.Duration
	metricsManager *metrics.Manager
}

type KafkaPublisherParams struct {
	Brokers        []string
	Topic          string
	WriteTimeout   time.Duration
	MetricsManager *metrics.Manager
	// Writer replaces the kafka writer built from Brokers and Topic.
	Writer messageWriter
}

func NewKafkaPublisher(params KafkaPublisherParams) *KafkaPublisher {
	writer := params.Writer
	if writer == nil {
		writer = &kafka.Writer{
			Addr:         kafka.TCP(params.Brokers...),
			Topic:        params.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		}
	}

	writeTimeout := params.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	return &KafkaPublisher{
		writer:         writer,
		writeTimeout:   writeTimeout,
		metricsManager: params.MetricsManager,
	}
}

func (p *KafkaPublisher) PublishWorkoutCompleted(ctx context.Context, event WorkoutCompleted) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "events.publishWorkoutCompleted")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		p.countPublish(err)
	}()
	span.SetAttributes(attribute.String("profile.id", event.ProfileID))

	event.Type = TypeWorkoutCompleted
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(event.ProfileID),
		Value: value,
		Time:  event.CompletedAt.UTC(),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeWorkoutCompleted)},
		},
	}); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	log.Debugf("events: published %s for %s", TypeWorkoutCompleted, event.ProfileID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) countPublish(err error) {
	if p.metricsManager == nil {
		return
	}
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFailed
	}
	p.metricsManager.CounterEventsPublished.WithLabelValues(outcome).Inc()
}
