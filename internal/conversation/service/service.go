// Package service runs one chat turn: it updates session state, picks the
// funnel stage, asks the completion backend for the next line and decides
// when a meeting gets scheduled.
package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"workmarket_sdr/internal/conversation/agent"
	"workmarket_sdr/internal/conversation/domain"
	"workmarket_sdr/internal/conversation/memory"
	"workmarket_sdr/internal/conversation/ports"
	"workmarket_sdr/internal/events"
	"workmarket_sdr/platform/apperr"
	"workmarket_sdr/platform/logger"
)

// User-facing fallback texts. The chat is in Portuguese.
const (
	FallbackTechnicalError  = "Erro técnico ao gerar resposta. Tente novamente mais tarde."
	FallbackEmptyResponse   = "O modelo não respondeu corretamente."
	FallbackUnexpectedReply = "Erro: resposta inesperada do modelo."
)

// Config is the subset of application config the orchestrator reads.
type Config interface {
	GetLLMModel() string
	GetHistoryLimit() int
	GetMeetingBaseURL() string
}

// Reply is the outcome of a turn.
type Reply struct {
	Text             string
	MeetingScheduled bool
	MeetingLink      *string
}

// Service orchestrates chat turns.
type Service struct {
	store        *memory.Store
	completion   ports.CompletionClient
	bus          events.Bus
	log          *logger.Logger
	model        string
	historyLimit int
	meetingBase  string
	now          func() time.Time
}

// New creates the orchestrator.
func New(store *memory.Store, completion ports.CompletionClient, bus events.Bus, cfg Config, log *logger.Logger) *Service {
	limit := cfg.GetHistoryLimit()
	if limit <= 0 {
		limit = 20
	}
	return &Service{
		store:        store,
		completion:   completion,
		bus:          bus,
		log:          log,
		model:        cfg.GetLLMModel(),
		historyLimit: limit,
		meetingBase:  strings.TrimRight(cfg.GetMeetingBaseURL(), "/"),
		now:          time.Now,
	}
}

// SetClock replaces the time source used for meeting timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GenerateReply runs one turn for sessionID. It never fails: backend errors
// are logged and turned into a fallback reply. Turns on the same session run
// one at a time; the session lock is held across the completion call.
func (s *Service) GenerateReply(ctx context.Context, sessionID, userMessage string) Reply {
	var (
		reply     Reply
		published []events.Event
	)
	s.store.WithSession(sessionID, func(sess *memory.Session) {
		reply, published = s.turn(ctx, sess, userMessage)
	})

	for _, e := range published {
		s.bus.Publish(ctx, e)
	}
	return reply
}

func (s *Service) turn(ctx context.Context, sess *memory.Session, userMessage string) (Reply, []events.Event) {
	log := s.log.WithContext(ctx).WithSessionID(sess.ID())

	sess.AppendUser(userMessage)

	var field domain.Field
	sess.UpdateLead(func(lead *domain.Lead) {
		field = agent.ApplyLeadData(lead, userMessage)
	})

	if sess.Len() > s.historyLimit {
		sess.Trim(s.historyLimit)
	}

	history := sess.History()
	stage := domain.ResolveStage(sess.Lead(), domain.CountAssistantTurns(history), sess.Stage())

	messages := make([]ports.Message, 0, len(history)+1)
	messages = append(messages, ports.Message{Role: string(domain.RoleSystem), Content: agent.BuildSystemPrompt(stage)})
	for _, t := range history {
		messages = append(messages, ports.Message{Role: string(t.Role), Content: t.Content})
	}

	start := time.Now()
	raw, err := s.completion.Complete(ctx, ports.CompletionRequest{Model: s.model, Messages: messages})
	if err != nil {
		log.CompletionFailed(s.model, time.Since(start), apperr.Unavailable("completion failed", err).WithOp("Complete"))
		return Reply{Text: finalize(fallbackFor(err))}, nil
	}

	text := agent.SanitizeReply(raw)
	sess.AppendAssistant(text)

	var (
		out            = Reply{Text: finalize(text)}
		interested     bool
		interestRaised bool
		newMeeting     bool
	)
	sess.UpdateLead(func(lead *domain.Lead) {
		switch {
		case lead.HasContactData():
			interestRaised = !lead.InterestConfirmed
			lead.InterestConfirmed = true
			if !lead.HasMeeting() {
				lead.MeetingLink = s.meetingLink(sess.ID())
				lead.MeetingDatetime = s.now().Format(time.RFC3339)
				newMeeting = true
			}
			link := lead.MeetingLink
			out.MeetingScheduled = true
			out.MeetingLink = &link
		case agent.DetectInterest(userMessage):
			interested = true
			interestRaised = !lead.InterestConfirmed
			lead.InterestConfirmed = true
		}
	})

	switch {
	case out.MeetingScheduled:
		sess.SetStage(domain.StageFinalizado)
	case interested:
		if sess.Stage().Rank() < domain.StageFechamento.Rank() {
			sess.SetStage(domain.StageFechamento)
		}
	}

	lead := snapshot(sess.Lead())
	var published []events.Event
	if field != domain.FieldNone || interestRaised {
		published = append(published, events.LeadUpdated{
			BaseEvent: events.NewBaseEvent(),
			SessionID: sess.ID(),
			Stage:     sess.Stage().String(),
			Field:     string(field),
			Lead:      lead,
		})
	}
	if newMeeting {
		log.Info("meeting scheduled", "meetingLink", lead.MeetingLink)
		published = append(published, events.MeetingScheduled{
			BaseEvent:   events.NewBaseEvent(),
			SessionID:   sess.ID(),
			Stage:       sess.Stage().String(),
			MeetingLink: lead.MeetingLink,
			Lead:        lead,
		})
	}
	return out, published
}

func (s *Service) meetingLink(sessionID string) string {
	return s.meetingBase + "/" + url.PathEscape(sessionID)
}

// Session returns a copy of a session for inspection.
func (s *Service) Session(sessionID string) (memory.SessionSnapshot, error) {
	snap, ok := s.store.Snapshot(sessionID)
	if !ok {
		return memory.SessionSnapshot{}, apperr.NotFound("session not found")
	}
	return snap, nil
}

// ClearSession forgets everything about sessionID.
func (s *Service) ClearSession(sessionID string) error {
	if _, ok := s.store.Snapshot(sessionID); !ok {
		return apperr.NotFound("session not found")
	}
	s.store.Clear(sessionID)
	return nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	return s.store.Len()
}

func fallbackFor(err error) string {
	switch {
	case errors.Is(err, ports.ErrEmptyResponse):
		return FallbackEmptyResponse
	case errors.Is(err, ports.ErrUnexpectedResponse):
		return FallbackUnexpectedReply
	default:
		return FallbackTechnicalError
	}
}

// finalize keeps replies free of double quotes so clients can embed them
// without escaping.
func finalize(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, `"`, "'"))
}

func snapshot(l domain.Lead) events.LeadSnapshot {
	return events.LeadSnapshot{
		Name:              l.Name,
		Email:             l.Email,
		Company:           l.Company,
		Need:              l.Need,
		InterestConfirmed: l.InterestConfirmed,
		MeetingLink:       l.MeetingLink,
		MeetingDatetime:   l.MeetingDatetime,
	}
}
