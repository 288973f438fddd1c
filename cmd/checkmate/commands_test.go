package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/checkmate/internal/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestChatCommand_ScheduleResponse(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /chat": `{"session_id":"sess-1","has_schedule":true,"type":"schedule","schedule_data":{"events":[{"start_date":"2026-09-02-14:00","end_date":"2026-09-02-15:00","title":"dentist"}]},"reply":""}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/chat", map[string]string{
		"session_id": "",
		"message":    "dentist tomorrow at 2pm",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result chatResult
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if !result.HasSchedule {
		t.Error("HasSchedule = false, want true")
	}
	if result.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", result.SessionID)
	}
	if len(result.ScheduleData.Events) != 1 || result.ScheduleData.Events[0].Title != "dentist" {
		t.Errorf("events = %+v, want one dentist event", result.ScheduleData.Events)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["message"] != "dentist tomorrow at 2pm" {
		t.Errorf("body.message = %q", body["message"])
	}
}

func TestChatCommand_MissingMessage(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"chat"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing message argument")
	}
}

func TestEventsCommand_WindowQuery(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /events": `[{"id":1,"title":"dentist","start_date":"2026-09-02","start_time":"14:00","end_date":"2026-09-02","color":"#28a745"}]`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/events?from=2026-09-01&to=2026-09-08")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var events []eventLine
	if err := decodeJSON(resp, &events); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Title != "dentist" {
		t.Errorf("title = %q, want dentist", events[0].Title)
	}

	reqPath := ts.requests[0].Path
	if !strings.Contains(reqPath, "from=2026-09-01") || !strings.Contains(reqPath, "to=2026-09-08") {
		t.Errorf("window not forwarded: %q", reqPath)
	}
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   eventLine
		want string
	}{
		{
			name: "with time",
			ev:   eventLine{Title: "dentist", StartDate: "2026-09-02", StartTime: "14:00"},
			want: "2026-09-02 14:00  dentist",
		},
		{
			name: "all day",
			ev:   eventLine{Title: "holiday", StartDate: "2026-09-05"},
			want: "2026-09-05  holiday",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatEvent(tt.ev); got != tt.want {
				t.Errorf("formatEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginRequest_NoAuthHeader(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /auth/login": `{"user_id":1,"username":"alice","token":"tok-1"}`,
	})

	client := ts.client()
	client.token = ""

	resp, err := client.post(ctx, "/auth/login", map[string]string{
		"username": "alice", "password": "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var auth authResult
	if err := decodeJSON(resp, &auth); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if auth.Token != "tok-1" {
		t.Errorf("token = %q, want tok-1", auth.Token)
	}

	if ts.requests[0].Auth != "" {
		t.Errorf("auth header = %q, want empty before login", ts.requests[0].Auth)
	}
}

func TestAPIClientAuth(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /health": `{"status":"ok"}`,
	})

	client := ts.client()
	client.token = "my-secret-token"

	resp, err := client.get(ctx, "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	if ts.requests[0].Auth != "Bearer my-secret-token" {
		t.Errorf("auth = %q, want 'Bearer my-secret-token'", ts.requests[0].Auth)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"unauthorized","type":"auth_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/profile")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4000
	cfg.OpenAI.Model = "gpt-4o"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4000" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find server.port=4000 in ShowAll output")
	}
}

func TestConfiguredLabel(t *testing.T) {
	if got := configuredLabel(true); got != "configured" {
		t.Errorf("configuredLabel(true) = %q", got)
	}
	if got := configuredLabel(false); got != "not configured" {
		t.Errorf("configuredLabel(false) = %q", got)
	}
}
