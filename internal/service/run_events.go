package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const runEventBufferSize = 16

// RunEvent describes progress of an executing run. One event is published per
// persisted response plus a final completion event, so a UI can follow a run
// live without polling.
type RunEvent struct {
	RunID      uint      `json:"run_id"`
	Type       string    `json:"type"`
	ResponseID uint      `json:"response_id,omitempty"`
	ModelID    uint      `json:"model_id,omitempty"`
	Failed     bool      `json:"failed,omitempty"`
	Persisted  int       `json:"persisted"`
	Total      int       `json:"total"`
	SentAt     time.Time `json:"sent_at"`
}

// Run event types.
const (
	RunEventResponse  = "response"
	RunEventCompleted = "completed"
)

// RunEventService fans run progress events out to in-process subscribers and,
// when a NATS connection is configured, to other nodes.
type RunEventService interface {
	Publish(event RunEvent)
	Subscribe(runID uint) (<-chan RunEvent, func())
	Start(ctx context.Context)
}

type runEventService struct {
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	broker      *runEventBroker
	nodeID      string
}

type runEventEnvelope struct {
	Source string   `json:"source"`
	Event  RunEvent `json:"event"`
}

type runEventBroker struct {
	mu          sync.RWMutex
	subscribers map[uint]map[chan RunEvent]struct{}
}

// NewRunEventService constructs the event service. The NATS connection may be
// nil, in which case events stay in-process.
func NewRunEventService(natsConn *nats.Conn, subject string, logger zerolog.Logger) RunEventService {
	if subject == "" {
		subject = "arena.runs.events"
	}

	return &runEventService{
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "run_event_service").Logger(),
		broker: &runEventBroker{
			subscribers: make(map[uint]map[chan RunEvent]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

// Start subscribes to the NATS subject so events published by other nodes
// reach local websocket subscribers. It is a no-op without a connection.
func (s *runEventService) Start(ctx context.Context) {
	if s.nats == nil {
		return
	}

	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		var envelope runEventEnvelope
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			s.logger.Warn().Err(err).Msg("discarding malformed run event")
			return
		}
		if envelope.Source == s.nodeID {
			return
		}
		s.broker.dispatch(envelope.Event)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to run events")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to unsubscribe from run events")
		}
	}()
}

func (s *runEventService) Publish(event RunEvent) {
	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}

	s.broker.dispatch(event)

	if s.nats == nil {
		return
	}

	payload, err := json.Marshal(runEventEnvelope{Source: s.nodeID, Event: event})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal run event")
		return
	}
	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("run_id", event.RunID).Msg("failed to publish run event")
	}
}

func (s *runEventService) Subscribe(runID uint) (<-chan RunEvent, func()) {
	return s.broker.subscribe(runID)
}

func (b *runEventBroker) subscribe(runID uint) (<-chan RunEvent, func()) {
	ch := make(chan RunEvent, runEventBufferSize)

	b.mu.Lock()
	if b.subscribers[runID] == nil {
		b.subscribers[runID] = make(map[chan RunEvent]struct{})
	}
	b.subscribers[runID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subscribers[runID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subscribers, runID)
			}
		}
		b.mu.Unlock()
		close(ch)
	}

	return ch, cancel
}

// dispatch delivers the event to every subscriber of the run. Slow consumers
// are skipped rather than blocking the executor.
func (b *runEventBroker) dispatch(event RunEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[event.RunID] {
		select {
		case ch <- event:
		default:
		}
	}
}
