package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	apperrors "stylesync-backend/internal/errors"
)

// maxBatch is the PutEvents entry limit.
const maxBatch = 10

// Publisher announces events. Publishing is best-effort from the caller's
// point of view; the operation that produced the event has already happened.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Recorder receives one call per published event.
type Recorder interface {
	EventPublished(eventType string, err error)
}

// PutEventsAPI is the part of the EventBridge client the publisher uses.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher sends events to one bus in batches of ten.
type EventBridgePublisher struct {
	client   PutEventsAPI
	eventBus string
	source   string
	recorder Recorder
	logger   *zap.Logger
}

// NewEventBridgePublisher returns a publisher for eventBus. Empty bus and
// source fall back to "default" and "stylesync.storefront".
func NewEventBridgePublisher(client PutEventsAPI, eventBus, source string, recorder Recorder, logger *zap.Logger) *EventBridgePublisher {
	if eventBus == "" {
		eventBus = "default"
	}
	if source == "" {
		source = "stylesync.storefront"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBridgePublisher{
		client:   client,
		eventBus: eventBus,
		source:   source,
		recorder: recorder,
		logger:   logger,
	}
}

func (p *EventBridgePublisher) Publish(ctx context.Context, events ...Event) error {
	for start := 0; start < len(events); start += maxBatch {
		end := start + maxBatch
		if end > len(events) {
			end = len(events)
		}
		batch := events[start:end]
		err := p.publishBatch(ctx, batch)
		p.record(batch, err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *EventBridgePublisher) record(batch []Event, err error) {
	if p.recorder == nil {
		return
	}
	for _, e := range batch {
		p.recorder.EventPublished(e.Type, err)
	}
}

func (p *EventBridgePublisher) publishBatch(ctx context.Context, batch []Event) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	for _, e := range batch {
		entry, err := p.entry(e)
		if err != nil {
			return apperrors.Internal(apperrors.CodeEventPublishFailed, "failed to encode event").
				WithResource(e.Type).
				WithCause(err).
				Build()
		}
		entries = append(entries, entry)
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return apperrors.Transport(apperrors.CodeEventBridgeError, "PutEvents", err).Build()
	}
	if out.FailedEntryCount > 0 {
		for i, entry := range out.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("Event rejected by EventBridge",
					zap.String("event_type", batch[i].Type),
					zap.String("event_id", batch[i].ID),
					zap.String("error_code", aws.ToString(entry.ErrorCode)),
					zap.String("error_message", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return apperrors.Transport(apperrors.CodeEventBridgeError, "PutEvents",
			fmt.Errorf("%d events failed to publish", out.FailedEntryCount)).Build()
	}

	p.logger.Debug("Published events", zap.Int("count", len(entries)), zap.String("bus", p.eventBus))
	return nil
}

func (p *EventBridgePublisher) entry(e Event) (types.PutEventsRequestEntry, error) {
	detail, err := json.Marshal(e)
	if err != nil {
		return types.PutEventsRequestEntry{}, err
	}
	return types.PutEventsRequestEntry{
		EventBusName: aws.String(p.eventBus),
		Source:       aws.String(p.source),
		DetailType:   aws.String(e.Type),
		Detail:       aws.String(string(detail)),
		Time:         aws.Time(e.OccurredAt),
		Resources:    []string{e.AggregateID},
	}, nil
}

// AsyncPublisher queues events and publishes them from a background
// goroutine so request handlers never wait on EventBridge.
type AsyncPublisher struct {
	inner   Publisher
	queue   chan Event
	done    chan struct{}
	stopped chan struct{}
	timeout time.Duration
	logger  *zap.Logger
}

// NewAsyncPublisher starts the background worker. Close must be called to
// flush queued events.
func NewAsyncPublisher(inner Publisher, queueSize int, logger *zap.Logger) *AsyncPublisher {
	if queueSize <= 0 {
		queueSize = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &AsyncPublisher{
		inner:   inner,
		queue:   make(chan Event, queueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		timeout: 5 * time.Second,
		logger:  logger,
	}
	go p.worker()
	return p
}

// Publish enqueues events. It fails only when the queue is full or ctx ends.
func (p *AsyncPublisher) Publish(ctx context.Context, events ...Event) error {
	for _, e := range events {
		select {
		case p.queue <- e:
		case <-ctx.Done():
			return ctx.Err()
		default:
			return apperrors.Internal(apperrors.CodeEventPublishFailed, "event queue is full").
				WithResource(e.Type).
				Build()
		}
	}
	return nil
}

func (p *AsyncPublisher) worker() {
	defer close(p.stopped)

	batch := make([]Event, 0, maxBatch)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case e := <-p.queue:
			batch = append(batch, e)
			if len(batch) >= maxBatch {
				p.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				p.flush(batch)
				batch = batch[:0]
			}
		case <-p.done:
			for {
				select {
				case e := <-p.queue:
					batch = append(batch, e)
				default:
					if len(batch) > 0 {
						p.flush(batch)
					}
					return
				}
			}
		}
	}
}

func (p *AsyncPublisher) flush(batch []Event) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.inner.Publish(ctx, batch...); err != nil {
		p.logger.Error("Failed to publish events", zap.Int("count", len(batch)), zap.Error(err))
	}
}

// Close drains the queue and waits for the worker to exit.
func (p *AsyncPublisher) Close() {
	close(p.done)
	<-p.stopped
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }

var (
	_ Publisher = (*EventBridgePublisher)(nil)
	_ Publisher = (*AsyncPublisher)(nil)
	_ Publisher = NoopPublisher{}
)
