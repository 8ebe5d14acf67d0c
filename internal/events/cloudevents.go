package events

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"

	"github.com/threadlane/delegator/pkg/logger"
	"github.com/threadlane/delegator/pkg/utils"
)

const (
	// emitTimeout bounds a single delivery attempt.
	emitTimeout = 5 * time.Second

	// defaultQueueDepth is the emission buffer size; emissions beyond it
	// are dropped rather than blocking the evaluator.
	defaultQueueDepth = 256
)

type emission struct {
	topic     Topic
	ownerID   *string
	eventType EventType
	contextID uuid.UUID
	payload   interface{}
	page      interface{}
}

// CloudEventSink ships user-action events as CloudEvents POSTed to the
// topic's queue URL. Delivery happens on a background goroutine so Emit
// never blocks the evaluator; delivery failures are logged and dropped.
type CloudEventSink struct {
	client cloudevents.Client
	source string
	log    logger.Logger
	queue  chan emission
	done   chan struct{}
}

// NewCloudEventSink creates and starts a sink identified by source in the
// emitted events. Close must be called to drain the queue on shutdown.
func NewCloudEventSink(log logger.Logger, source string) (*CloudEventSink, error) {
	client, err := cloudevents.NewClientHTTP()
	if err != nil {
		return nil, err
	}
	s := &CloudEventSink{
		client: client,
		source: source,
		log:    log,
		queue:  make(chan emission, defaultQueueDepth),
		done:   make(chan struct{}),
	}
	go s.deliver()
	return s, nil
}

// Emit implements Sink. It enqueues the event and returns immediately.
// When the queue is full the event is dropped with a warning. The payload is
// deep copied so the delivery goroutine never shares data with a live
// evaluation.
func (s *CloudEventSink) Emit(topic Topic, ownerID *string, eventType EventType, contextID uuid.UUID, payload interface{}, page interface{}) {
	e := emission{
		topic:     topic,
		ownerID:   ownerID,
		eventType: eventType,
		contextID: contextID,
		payload:   utils.DeepCopyValue(context.Background(), payload, s.log),
		page:      page,
	}
	select {
	case s.queue <- e:
	default:
		s.log.Warnf(context.Background(), "Event queue full, dropping %s event for topic %s", eventType, topic.QueueURL)
	}
}

// Close stops the delivery goroutine. Events still queued are delivered
// before Close returns.
func (s *CloudEventSink) Close() {
	close(s.queue)
	<-s.done
}

func (s *CloudEventSink) deliver() {
	defer close(s.done)
	for e := range s.queue {
		s.send(e)
	}
}

func (s *CloudEventSink) send(e emission) {
	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()

	evt := cloudevents.NewEvent()
	evt.SetID(e.contextID.String())
	evt.SetSource(s.source)
	evt.SetType(string(e.eventType))
	if e.ownerID != nil {
		evt.SetExtension("ownerid", *e.ownerID)
	}

	data := map[string]interface{}{
		"payload":      e.payload,
		"page_context": e.page,
	}
	if err := evt.SetData(cloudevents.ApplicationJSON, data); err != nil {
		s.log.Errorf(logger.WithError(ctx, err), "Unable to encode event payload")
		return
	}

	target := cloudevents.ContextWithTarget(ctx, e.topic.QueueURL)
	if result := s.client.Send(target, evt); cloudevents.IsUndelivered(result) {
		s.log.Warnf(logger.WithError(ctx, result), "Event delivery failed for topic %s", e.topic.QueueURL)
	}
}
