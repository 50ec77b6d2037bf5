package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"workmarket_sdr/internal/conversation/domain"
	"workmarket_sdr/internal/conversation/memory"
	"workmarket_sdr/internal/conversation/ports"
	"workmarket_sdr/internal/events"
	"workmarket_sdr/platform/logger"
)

type testConfig struct {
	historyLimit int
}

func (c testConfig) GetLLMModel() string       { return "llama3.1" }
func (c testConfig) GetHistoryLimit() int      { return c.historyLimit }
func (c testConfig) GetMeetingBaseURL() string { return "https://meet.workmarket.ai/" }

type fakeCompletion struct {
	mu       sync.Mutex
	requests []ports.CompletionRequest
	reply    string
	err      error
}

func (f *fakeCompletion) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompletion) last() ports.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(t *testing.T, completion *fakeCompletion, limit int) (*Service, *memory.Store, *recordingBus) {
	t.Helper()
	store := memory.New()
	bus := &recordingBus{}
	svc := New(store, completion, bus, testConfig{historyLimit: limit}, logger.Discard())
	svc.SetClock(func() time.Time { return time.Date(2026, 5, 4, 14, 30, 0, 0, time.UTC) })
	return svc, store, bus
}

func systemPrompt(req ports.CompletionRequest) string {
	return req.Messages[0].Content
}

func TestGenerateReplyFirstTurnUsesDiagnostico(t *testing.T) {
	fc := &fakeCompletion{reply: "Oi! Qual função está faltando?"}
	svc, store, _ := newTestService(t, fc, 20)

	got := svc.GenerateReply(context.Background(), "s-1", "oi")

	if got.Text != "Oi! Qual função está faltando?" || got.MeetingScheduled || got.MeetingLink != nil {
		t.Fatalf("unexpected reply: %+v", got)
	}
	req := fc.last()
	if req.Model != "llama3.1" {
		t.Fatalf("expected model to be passed through, got %q", req.Model)
	}
	if req.Messages[0].Role != "system" || !strings.Contains(systemPrompt(req), "DIAGNÓSTICO") {
		t.Fatalf("expected diagnostico system prompt first")
	}
	if len(req.Messages) != 2 || req.Messages[1].Role != "user" || req.Messages[1].Content != "oi" {
		t.Fatalf("unexpected message list: %+v", req.Messages)
	}
	if h := store.History("s-1"); len(h) != 2 || h[1].Role != domain.RoleAssistant {
		t.Fatalf("expected user and assistant turns, got %+v", h)
	}
}

func TestGenerateReplyStageFollowsAssistantTurns(t *testing.T) {
	fc := &fakeCompletion{reply: "ok"}
	svc, _, _ := newTestService(t, fc, 20)
	ctx := context.Background()

	svc.GenerateReply(ctx, "s-1", "bom dia")
	svc.GenerateReply(ctx, "s-1", "faltam pessoas no fim de semana")
	if !strings.Contains(systemPrompt(fc.last()), "FASE: APRESENTAÇÃO.") {
		t.Fatalf("expected apresentacao on second turn")
	}
	svc.GenerateReply(ctx, "s-1", "entendi")
	if !strings.Contains(systemPrompt(fc.last()), "FASE: FECHAMENTO.") {
		t.Fatalf("expected fechamento on third turn")
	}
}

func TestGenerateReplyInterestMovesToFechamento(t *testing.T) {
	fc := &fakeCompletion{reply: "Ótimo!"}
	svc, store, bus := newTestService(t, fc, 20)
	ctx := context.Background()

	got := svc.GenerateReply(ctx, "s-1", "sim, pode marcar")
	if got.MeetingScheduled {
		t.Fatalf("interest alone must not schedule a meeting")
	}
	if !store.Lead("s-1").InterestConfirmed {
		t.Fatalf("expected interest to be confirmed")
	}
	if store.Stage("s-1") != domain.StageFechamento {
		t.Fatalf("expected stage FECHAMENTO, got %s", store.Stage("s-1"))
	}
	if n := len(bus.named(events.LeadUpdated{}.EventName())); n != 1 {
		t.Fatalf("expected one lead update event, got %d", n)
	}

	svc.GenerateReply(ctx, "s-1", "e agora?")
	if !strings.Contains(systemPrompt(fc.last()), "FASE: FECHAMENTO.") {
		t.Fatalf("expected fechamento prompt after confirmed interest")
	}
}

func TestGenerateReplySchedulesMeetingOnce(t *testing.T) {
	fc := &fakeCompletion{reply: "Perfeito!"}
	svc, store, bus := newTestService(t, fc, 20)
	ctx := context.Background()

	svc.GenerateReply(ctx, "s-1", "Sou Ana")
	svc.GenerateReply(ctx, "s-1", "Loja Central")
	got := svc.GenerateReply(ctx, "s-1", "ana@lojacentral.com.br")

	if !got.MeetingScheduled || got.MeetingLink == nil {
		t.Fatalf("expected meeting to be scheduled, got %+v", got)
	}
	if *got.MeetingLink != "https://meet.workmarket.ai/s-1" {
		t.Fatalf("unexpected meeting link %q", *got.MeetingLink)
	}
	lead := store.Lead("s-1")
	if lead.MeetingDatetime != "2026-05-04T14:30:00Z" || !lead.InterestConfirmed {
		t.Fatalf("unexpected lead after meeting: %+v", lead)
	}
	if store.Stage("s-1") != domain.StageFinalizado {
		t.Fatalf("expected FINALIZADO, got %s", store.Stage("s-1"))
	}

	svc.SetClock(func() time.Time { return time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC) })
	again := svc.GenerateReply(ctx, "s-1", "obrigado")
	if !again.MeetingScheduled || *again.MeetingLink != *got.MeetingLink {
		t.Fatalf("expected the same meeting link on later turns, got %+v", again)
	}
	if store.Lead("s-1").MeetingDatetime != "2026-05-04T14:30:00Z" {
		t.Fatalf("meeting datetime must not be regenerated")
	}
	if n := len(bus.named(events.MeetingScheduled{}.EventName())); n != 1 {
		t.Fatalf("expected exactly one meeting event, got %d", n)
	}
}

func TestGenerateReplyEscapesSessionIDInLink(t *testing.T) {
	fc := &fakeCompletion{reply: "ok"}
	svc, store, _ := newTestService(t, fc, 20)
	store.UpdateLead("sessão 1", func(l *domain.Lead) {
		l.Name = "Ana"
		l.Company = "Loja"
	})

	got := svc.GenerateReply(context.Background(), "sessão 1", "ana@loja.com")
	if got.MeetingLink == nil || *got.MeetingLink != "https://meet.workmarket.ai/sess%C3%A3o%201" {
		t.Fatalf("unexpected link: %+v", got.MeetingLink)
	}
}

func TestGenerateReplyFailureKeepsUserTurn(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"network", errors.New("connection refused"), FallbackTechnicalError},
		{"empty body", ports.ErrEmptyResponse, FallbackEmptyResponse},
		{"missing message", fmt.Errorf("decode: %w", ports.ErrUnexpectedResponse), FallbackUnexpectedReply},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fc := &fakeCompletion{err: tc.err}
			svc, store, bus := newTestService(t, fc, 20)

			got := svc.GenerateReply(context.Background(), "s-1", "preciso de repositor")
			if got.Text != tc.want || got.MeetingScheduled || got.MeetingLink != nil {
				t.Fatalf("unexpected fallback reply: %+v", got)
			}
			h := store.History("s-1")
			if len(h) != 1 || h[0].Role != domain.RoleUser {
				t.Fatalf("expected only the user turn to remain, got %+v", h)
			}
			if store.Lead("s-1").Need != "preciso de repositor" {
				t.Fatalf("lead extraction must survive a failed completion")
			}
			if len(bus.events) != 0 {
				t.Fatalf("expected no events on failure, got %d", len(bus.events))
			}
		})
	}
}

func TestGenerateReplySanitizesAndReplacesQuotes(t *testing.T) {
	fc := &fakeCompletion{reply: `{"reply": "Você disse \"sábado\"?"}`}
	svc, store, _ := newTestService(t, fc, 20)

	got := svc.GenerateReply(context.Background(), "s-1", "sábado")
	if got.Text != "Você disse 'sábado'?" {
		t.Fatalf("unexpected reply text %q", got.Text)
	}
	if h := store.History("s-1"); h[1].Content != `Você disse "sábado"?` {
		t.Fatalf("history keeps the sanitized text, got %q", h[1].Content)
	}
}

func TestGenerateReplyTrimsHistory(t *testing.T) {
	fc := &fakeCompletion{reply: "ok"}
	svc, store, _ := newTestService(t, fc, 4)
	ctx := context.Background()

	for i := range 6 {
		svc.GenerateReply(ctx, "s-1", fmt.Sprintf("mensagem %d", i))
		if n := len(fc.last().Messages); n > 5 {
			t.Fatalf("turn %d: expected at most 4 history turns plus system, got %d messages", i, n)
		}
	}
	if n := len(store.History("s-1")); n > 5 {
		t.Fatalf("expected trimmed history, got %d turns", n)
	}
}

func TestGenerateReplySerializesSameSession(t *testing.T) {
	fc := &fakeCompletion{reply: "ok"}
	svc, store, _ := newTestService(t, fc, 1000)
	const turns = 25

	var wg sync.WaitGroup
	for i := range turns {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc.GenerateReply(context.Background(), "s-1", fmt.Sprintf("m%d", i))
		}(i)
	}
	wg.Wait()

	h := store.History("s-1")
	if len(h) != 2*turns {
		t.Fatalf("expected %d turns, got %d", 2*turns, len(h))
	}
	for i := 0; i < len(h); i += 2 {
		if h[i].Role != domain.RoleUser || h[i+1].Role != domain.RoleAssistant {
			t.Fatalf("turns interleaved at %d", i)
		}
	}
}

func TestSessionAdminOperations(t *testing.T) {
	fc := &fakeCompletion{reply: "ok"}
	svc, _, _ := newTestService(t, fc, 20)

	if _, err := svc.Session("missing"); err == nil {
		t.Fatalf("expected not found for unknown session")
	}
	svc.GenerateReply(context.Background(), "s-1", "oi")
	snap, err := svc.Session("s-1")
	if err != nil || len(snap.History) != 2 {
		t.Fatalf("unexpected snapshot %+v err=%v", snap, err)
	}
	if svc.SessionCount() != 1 {
		t.Fatalf("expected one session")
	}
	if err := svc.ClearSession("s-1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if err := svc.ClearSession("s-1"); err == nil {
		t.Fatalf("expected not found on second clear")
	}
}
