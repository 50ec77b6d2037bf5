package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"workmarket_sdr/internal/conversation/memory"
	"workmarket_sdr/internal/conversation/ports"
	"workmarket_sdr/internal/conversation/service"
	"workmarket_sdr/internal/conversation/transport"
	"workmarket_sdr/internal/events"
	"workmarket_sdr/platform/logger"
	"workmarket_sdr/platform/validator"

	"github.com/gin-gonic/gin"
)

type stubConfig struct{}

func (stubConfig) GetLLMModel() string       { return "llama3.1" }
func (stubConfig) GetHistoryLimit() int      { return 20 }
func (stubConfig) GetMeetingBaseURL() string { return "https://meet.workmarket.ai" }

type stubCompletion struct {
	reply string
	err   error
	last  ports.CompletionRequest
}

func (s *stubCompletion) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	s.last = req
	return s.reply, s.err
}

func newTestEngine(completion ports.CompletionClient) (*gin.Engine, *memory.Store) {
	gin.SetMode(gin.TestMode)
	store := memory.New()
	bus := events.NewInMemoryBus(logger.Discard())
	svc := service.New(store, completion, bus, stubConfig{}, logger.Discard())
	h := New(svc, validator.New())

	engine := gin.New()
	engine.POST("/api/v1/chat", h.Chat)
	engine.GET("/api/v1/admin/sessions/:id", h.GetSession)
	engine.DELETE("/api/v1/admin/sessions/:id", h.ClearSession)
	return engine, store
}

func postChat(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestChatReturnsReply(t *testing.T) {
	engine, _ := newTestEngine(&stubCompletion{reply: "Olá! Qual função falta?"})

	rec := postChat(engine, `{"sessionId":"s-1","message":"oi"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["reply"] != "Olá! Qual função falta?" || resp["meetingScheduled"] != false {
		t.Fatalf("unexpected response %v", resp)
	}
	if v, ok := resp["meetingLink"]; !ok || v != nil {
		t.Fatalf("expected explicit null meetingLink, got %v (present=%v)", v, ok)
	}
}

func TestChatValidation(t *testing.T) {
	engine, _ := newTestEngine(&stubCompletion{reply: "ok"})

	cases := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"sessionId":`, msgInvalidRequest},
		{"missing session", `{"message":"oi"}`, msgValidationFailed},
		{"missing message", `{"sessionId":"s-1"}`, msgValidationFailed},
		{"blank message", `{"sessionId":"s-1","message":"   "}`, msgValidationFailed},
		{"control characters only", `{"sessionId":"s-1","message":"\u0000\u0007"}`, msgValidationFailed},
		{"message too long", `{"sessionId":"s-1","message":"` + strings.Repeat("a", 4001) + `"}`, msgValidationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postChat(engine, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var resp map[string]any
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp["error"] != tc.want {
				t.Fatalf("expected error %q, got %v", tc.want, resp["error"])
			}
		})
	}
}

func TestChatFallbackStillReturns200(t *testing.T) {
	engine, store := newTestEngine(&stubCompletion{err: ports.ErrEmptyResponse})

	rec := postChat(engine, `{"sessionId":"s-1","message":"preciso de caixa"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp transport.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != service.FallbackEmptyResponse || resp.MeetingScheduled || resp.MeetingLink != nil {
		t.Fatalf("unexpected fallback response %+v", resp)
	}
	if len(store.History("s-1")) != 1 {
		t.Fatalf("expected the user turn to be kept")
	}
}

func TestChatPassesMessageThroughUnchanged(t *testing.T) {
	engine, store := newTestEngine(&stubCompletion{reply: "ok"})

	rec := postChat(engine, `{"sessionId":"s-1","message":"  João Silva <joao@mercado.com>\u0000 "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	const want = "João Silva <joao@mercado.com>"
	if got := store.Lead("s-1").Email; got != want {
		t.Fatalf("expected email %q, got %q", want, got)
	}
	history := store.History("s-1")
	if len(history) != 2 || history[0].Content != want {
		t.Fatalf("expected user turn %q, got %+v", want, history)
	}
}

func TestChatKeepsSessionIDVerbatim(t *testing.T) {
	engine, store := newTestEngine(&stubCompletion{reply: "ok"})

	postChat(engine, `{"sessionId":" A ","message":"oi"}`)
	postChat(engine, `{"sessionId":"A","message":"preciso de caixa"}`)
	long := strings.Repeat("x", 500)
	if rec := postChat(engine, `{"sessionId":"`+long+`","message":"oi"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected long session id to be accepted, got %d", rec.Code)
	}

	if store.Len() != 3 {
		t.Fatalf("expected 3 distinct sessions, got %d", store.Len())
	}
	if got := store.History(" A "); len(got) != 2 || got[0].Content != "oi" {
		t.Fatalf("unexpected history for %q: %+v", " A ", got)
	}
	if got := store.History("A"); len(got) != 2 || got[0].Content != "preciso de caixa" {
		t.Fatalf("unexpected history for %q: %+v", "A", got)
	}
}

func TestSessionAdminEndpoints(t *testing.T) {
	engine, _ := newTestEngine(&stubCompletion{reply: "ok"})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rec.Code)
	}

	postChat(engine, `{"sessionId":"s-1","message":"Sou Ana"}`)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions/s-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap transport.SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Lead.Name != "Ana" || snap.Turns != 2 || snap.Stage != "DIAGNOSTICO" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/sessions/s-1", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/sessions/s-1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after clear, got %d", rec.Code)
	}
}
