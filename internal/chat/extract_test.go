package chat

import (
	"context"
	"errors"
	"testing"
)

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantEvents int
	}{
		{
			name:       "plain json",
			response:   `{"events":[{"start_date":"2026-09-01-19:00","end_date":"2026-09-01-21:00","title":"dinner"}]}`,
			wantEvents: 1,
		},
		{
			name:       "fenced json",
			response:   "```json\n{\"events\":[{\"start_date\":\"2026-09-01\",\"end_date\":\"\",\"title\":\"dinner\"}]}\n```",
			wantEvents: 1,
		},
		{
			name:       "bare fence",
			response:   "```\n{\"events\":[]}\n```",
			wantEvents: 0,
		},
		{
			name:       "unparseable prose degrades to empty",
			response:   "Sure! Here is your schedule: dinner on Friday.",
			wantEvents: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockChatter{response: tt.response}
			e := NewExtractor(mock, "gpt-4o-mini")
			e.now = fixedNow

			got, _, err := e.Extract(context.Background(), "dinner with Minji")
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got.Events == nil {
				t.Fatal("Extract() returned nil events slice")
			}
			if len(got.Events) != tt.wantEvents {
				t.Errorf("Extract() events = %d, want %d", len(got.Events), tt.wantEvents)
			}
			if mock.gotTemp != 0 {
				t.Errorf("temperature = %v, want 0", mock.gotTemp)
			}
		})
	}
}

func TestExtractor_TransportErrorPropagates(t *testing.T) {
	mock := &mockChatter{err: errors.New("upstream down")}
	e := NewExtractor(mock, "gpt-4o-mini")

	_, _, err := e.Extract(context.Background(), "dinner tomorrow")
	if err == nil {
		t.Fatal("Extract() error = nil, want non-nil")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := StripCodeFence(tt.in); got != tt.want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
