package chat

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ScheduleResult
		want ScheduleResult
	}{
		{
			name: "empty end date defaults to start",
			in:   ScheduleResult{Events: []Event{{StartDate: "2026-09-01", Title: "dentist"}}},
			want: ScheduleResult{Events: []Event{{StartDate: "2026-09-01", EndDate: "2026-09-01", Title: "dentist"}}},
		},
		{
			name: "missing start date drops the event",
			in: ScheduleResult{Events: []Event{
				{EndDate: "2026-09-01", Title: "ghost"},
				{StartDate: "2026-09-02-14:00", EndDate: "2026-09-02-15:00", Title: "standup"},
			}},
			want: ScheduleResult{Events: []Event{{StartDate: "2026-09-02-14:00", EndDate: "2026-09-02-15:00", Title: "standup"}}},
		},
		{
			name: "whitespace-only start date drops the event",
			in:   ScheduleResult{Events: []Event{{StartDate: "   ", Title: "ghost"}}},
			want: ScheduleResult{Events: []Event{}},
		},
		{
			name: "nil events becomes empty slice",
			in:   ScheduleResult{},
			want: ScheduleResult{Events: []Event{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
			if got.Events == nil {
				t.Error("Normalize() returned nil events slice")
			}
			// a second pass must change nothing
			again := Normalize(got)
			if !reflect.DeepEqual(again, got) {
				t.Errorf("Normalize() not idempotent: %+v then %+v", got, again)
			}
		})
	}
}

func TestNormalizeRaw(t *testing.T) {
	wantOne := ScheduleResult{Events: []Event{{StartDate: "2026-09-05", EndDate: "2026-09-05", Title: "fireworks"}}}

	tests := []struct {
		name string
		in   any
		want ScheduleResult
	}{
		{
			name: "json string",
			in:   `{"events":[{"start_date":"2026-09-05","title":"fireworks"}]}`,
			want: wantOne,
		},
		{
			name: "decoded map",
			in: map[string]any{
				"events": []any{map[string]any{"start_date": "2026-09-05", "title": "fireworks"}},
			},
			want: wantOne,
		},
		{
			name: "typed result",
			in:   ScheduleResult{Events: []Event{{StartDate: "2026-09-05", Title: "fireworks"}}},
			want: wantOne,
		},
		{name: "nil", in: nil, want: EmptySchedule()},
		{name: "garbage string", in: "not json at all", want: EmptySchedule()},
		{name: "unsupported shape", in: 42, want: EmptySchedule()},
		{name: "nil typed pointer", in: (*ScheduleResult)(nil), want: EmptySchedule()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeRaw(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeRaw() = %+v, want %+v", got, tt.want)
			}
			if got.Events == nil {
				t.Error("NormalizeRaw() returned nil events slice")
			}
		})
	}
}
