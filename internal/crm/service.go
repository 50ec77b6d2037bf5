package crm

import (
	"context"
	"sync"
	"time"

	"workmarket_sdr/internal/events"
	"workmarket_sdr/platform/logger"
)

const directPushTimeout = 15 * time.Second

// Pusher delivers a card to the CRM.
type Pusher interface {
	Push(ctx context.Context, card LeadCard) error
}

// Enqueuer hands a card to the background task queue.
type Enqueuer interface {
	EnqueueLeadSync(ctx context.Context, card LeadCard) error
}

// Service routes lead snapshots to the CRM. With a queue configured cards
// are enqueued and retried by the worker; otherwise they are pushed from a
// detached goroutine.
type Service struct {
	pusher Pusher
	queue  Enqueuer
	log    *logger.Logger
	wg     sync.WaitGroup
}

// NewService creates the CRM service. queue may be nil.
func NewService(pusher Pusher, queue Enqueuer, log *logger.Logger) *Service {
	return &Service{pusher: pusher, queue: queue, log: log}
}

// SyncLead schedules delivery of card and returns immediately. Failures are
// logged only.
func (s *Service) SyncLead(ctx context.Context, card LeadCard) {
	if s == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if s.queue != nil {
		err := s.queue.EnqueueLeadSync(ctx, card)
		if err == nil {
			return
		}
		s.log.Warn("crm enqueue failed, pushing directly", "sessionId", card.SessionID, "error", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pushCtx, cancel := context.WithTimeout(ctx, directPushTimeout)
		defer cancel()
		if err := s.pusher.Push(pushCtx, card); err != nil {
			s.log.Warn("crm sync failed", "sessionId", card.SessionID, "event", card.Event, "error", err)
		}
	}()
}

// Wait blocks until direct pushes started by SyncLead have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// RegisterHandlers subscribes the service to the conversation events that
// carry lead changes.
func (s *Service) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadUpdated{}.EventName(), events.HandlerFunc(s.handleLeadUpdated))
	bus.Subscribe(events.MeetingScheduled{}.EventName(), events.HandlerFunc(s.handleMeetingScheduled))
}

func (s *Service) handleLeadUpdated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadUpdated)
	if !ok {
		return nil
	}
	s.SyncLead(ctx, NewLeadCard(e.SessionID, e.EventName(), e.Stage, e.Lead, e.OccurredAt()))
	return nil
}

func (s *Service) handleMeetingScheduled(ctx context.Context, event events.Event) error {
	e, ok := event.(events.MeetingScheduled)
	if !ok {
		return nil
	}
	s.SyncLead(ctx, NewLeadCard(e.SessionID, e.EventName(), e.Stage, e.Lead, e.OccurredAt()))
	return nil
}
