package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ASHISH26940/manim-chat-api/pkg/db"
	"github.com/ASHISH26940/manim-chat-api/pkg/middleware"
	"github.com/ASHISH26940/manim-chat-api/pkg/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubChat struct {
	result *services.ChatResult
	err    error
	got    services.ChatRequest
	calls  int
}

func (s *stubChat) HandleMessage(_ context.Context, req services.ChatRequest) (*services.ChatResult, error) {
	s.calls++
	s.got = req
	return s.result, s.err
}

type stubFinder struct {
	msg *db.Message
	err error
}

func (s stubFinder) FindMessageByID(context.Context, uuid.UUID) (*db.Message, error) {
	return s.msg, s.err
}

type stubProber struct{ err error }

func (s stubProber) Health(context.Context) error { return s.err }

func newRouter(h *Handlers) *gin.Engine {
	return newRouterWithOrigins(h, []string{"*"})
}

func newRouterWithOrigins(h *Handlers, origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CORS(origins))
	h.RegisterRoutes(router, origins)
	return router
}

func do(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body["error"]
}

func TestHandleChatSuccess(t *testing.T) {
	sessionID, messageID := uuid.New(), uuid.New()
	chat := &stubChat{result: &services.ChatResult{
		SessionID:      sessionID,
		MessageID:      messageID,
		Response:       "Here is a circle.",
		NeedsAnimation: true,
	}}
	router := newRouter(NewHandlers(chat, stubFinder{}, nil))

	w := do(router, http.MethodPost, "/", `{"message":"Draw a circle","sessionId":"`+sessionID.String()+`"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if chat.got.Message != "Draw a circle" || chat.got.SessionID != sessionID.String() {
		t.Fatalf("service got %+v", chat.got)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["sessionId"] != sessionID.String() || body["messageId"] != messageID.String() {
		t.Fatalf("unexpected ids in %v", body)
	}
	if body["response"] != "Here is a circle." || body["needsAnimation"] != true {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestHandleChatErrors(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"not json", `{"message":`, nil, http.StatusBadRequest, "Invalid request body"},
		{"validation", `{"message":""}`, &services.ValidationError{Msg: "Message is required"}, http.StatusBadRequest, "Message is required"},
		{"store", `{"message":"hi"}`, &services.StoreError{Op: "create session", Err: errors.New("connection refused")}, http.StatusInternalServerError, "create session: connection refused"},
		{"upstream", `{"message":"hi"}`, &services.UpstreamError{Err: errors.New("429 quota exceeded")}, http.StatusInternalServerError, "429 quota exceeded"},
		{"unknown", `{"message":"hi"}`, errors.New("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chat := &stubChat{err: tc.err}
			router := newRouter(NewHandlers(chat, stubFinder{}, nil))

			w := do(router, http.MethodPost, "/", tc.body, nil)
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, w.Code)
			}
			if got := errorBody(t, w); got != tc.wantMsg {
				t.Fatalf("expected error %q, got %q", tc.wantMsg, got)
			}
			if tc.err == nil && chat.calls != 0 {
				t.Fatalf("service must not be called for an unreadable body")
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	router := newRouter(NewHandlers(&stubChat{}, stubFinder{}, nil))

	for _, origin := range []string{"", "https://app.example.com"} {
		headers := map[string]string{"Access-Control-Request-Method": "POST"}
		if origin != "" {
			headers["Origin"] = origin
		}
		w := do(router, http.MethodOptions, "/", "", headers)
		if w.Code != http.StatusNoContent && w.Code != http.StatusOK {
			t.Fatalf("origin %q: expected 2xx preflight, got %d", origin, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Fatalf("origin %q: expected empty body, got %q", origin, w.Body.String())
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("origin %q: expected wildcard origin, got %q", origin, got)
		}
		if got := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")); !strings.Contains(got, "x-client-info") {
			t.Fatalf("origin %q: missing allowed headers, got %q", origin, got)
		}
	}
}

func TestPreflightRestrictedOrigins(t *testing.T) {
	origins := []string{"https://app.example.com"}
	router := newRouterWithOrigins(NewHandlers(&stubChat{}, stubFinder{}, nil), origins)

	w := do(router, http.MethodOptions, "/", "", map[string]string{"Access-Control-Request-Method": "POST"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("restricted preflight without Origin must not allow any origin, got %q", got)
	}

	w = do(router, http.MethodOptions, "/", "", map[string]string{
		"Origin":                        "https://evil.example.net",
		"Access-Control-Request-Method": "POST",
	})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "*" || got == "https://evil.example.net" {
		t.Fatalf("unlisted origin must not be allowed, got %q", got)
	}

	w = do(router, http.MethodOptions, "/", "", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("listed origin must be echoed, got %q", got)
	}
}

func TestGetMessage(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()
	msg := &db.Message{
		ID:              id,
		SessionID:       uuid.New(),
		Role:            db.RoleAssistant,
		Content:         "Here is a circle.",
		AnimationPrompt: sql.NullString{String: "from manim import *", Valid: true},
		NeedsAnimation:  true,
		Status:          db.StatusCompleted,
		VideoURL:        sql.NullString{String: "https://cdn.example.com/v.mp4", Valid: true},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	router := newRouter(NewHandlers(&stubChat{}, stubFinder{msg: msg}, nil))

	w := do(router, http.MethodGet, "/messages/"+id.String(), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != id || got.Status != db.StatusCompleted || got.VideoURL != "https://cdn.example.com/v.mp4" || !got.NeedsAnimation {
		t.Fatalf("unexpected message response %+v", got)
	}
}

func TestGetMessageReportsStoredNeedsAnimation(t *testing.T) {
	now := time.Now().UTC()
	msg := &db.Message{
		ID:              uuid.New(),
		SessionID:       uuid.New(),
		Role:            db.RoleAssistant,
		Content:         "Here is the code, no video.",
		AnimationPrompt: sql.NullString{String: "from manim import *", Valid: true},
		NeedsAnimation:  false,
		Status:          db.StatusCompleted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	router := newRouter(NewHandlers(&stubChat{}, stubFinder{msg: msg}, nil))

	w := do(router, http.MethodGet, "/messages/"+msg.ID.String(), "", nil)
	var got MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.NeedsAnimation {
		t.Fatalf("needsAnimation must come from the stored flag, got %+v", got)
	}
}

func TestGetMessageErrors(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		finder stubFinder
		want   int
	}{
		{"bad id", "/messages/nope", stubFinder{}, http.StatusBadRequest},
		{"missing", "/messages/" + uuid.NewString(), stubFinder{}, http.StatusNotFound},
		{"store failure", "/messages/" + uuid.NewString(), stubFinder{err: errors.New("db down")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter(NewHandlers(&stubChat{}, tc.finder, nil))
			w := do(router, http.MethodGet, tc.path, "", nil)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	cases := []struct {
		name   string
		prober HealthProber
		want   string
	}{
		{"no prober", nil, "unknown"},
		{"renderer up", stubProber{}, "ok"},
		{"renderer down", stubProber{err: errors.New("dial tcp: refused")}, "unreachable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter(NewHandlers(&stubChat{}, stubFinder{}, tc.prober))
			w := do(router, http.MethodGet, "/health", "", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["status"] != "ok" || body["renderer"] != tc.want {
				t.Fatalf("unexpected health body %v", body)
			}
		})
	}
}
