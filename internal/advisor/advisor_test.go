package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/checkmate/internal/openai"
	"github.com/kalambet/checkmate/internal/storage"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (f *fakeLLM) Chat(_ context.Context, _ string, messages []openai.Message, _ float64) (string, openai.Usage, error) {
	f.calls++
	f.lastUser = messages[len(messages)-1].Content
	return f.response, openai.Usage{}, f.err
}

func sep1() time.Time {
	return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
}

func TestCommentator_NoEventsSkipsModel(t *testing.T) {
	llm := &fakeLLM{}
	c := NewCommentator(llm, "gpt-4o-mini")

	got, err := c.Comment(context.Background(), nil)
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if got != noEventsComment {
		t.Errorf("Comment() = %q, want fixed no-events message", got)
	}
	if llm.calls != 0 {
		t.Errorf("llm calls = %d, want 0", llm.calls)
	}
}

func TestCommentator_Comment(t *testing.T) {
	llm := &fakeLLM{response: "  Busy week ahead, you've got this!  "}
	c := NewCommentator(llm, "gpt-4o-mini")

	events := []storage.Event{
		{Title: "dentist", StartDate: "2026-09-02", StartTime: "14:00"},
		{Title: "standup", StartDate: "2026-09-03"},
	}
	got, err := c.Comment(context.Background(), events)
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if got != "Busy week ahead, you've got this!" {
		t.Errorf("Comment() = %q", got)
	}
	if !strings.Contains(llm.lastUser, "dentist on 2026-09-02 at 14:00") {
		t.Errorf("prompt = %q, want event lines", llm.lastUser)
	}
}

func TestCommentator_Classify(t *testing.T) {
	tests := []struct {
		response string
		err      error
		want     string
	}{
		{"urgent", nil, CategoryUrgent},
		{" Important \n", nil, CategoryImportant},
		{"routine", nil, CategoryRoutine},
		{"something else entirely", nil, CategoryRoutine},
		{"", errors.New("upstream down"), CategoryRoutine},
	}
	for _, tt := range tests {
		c := NewCommentator(&fakeLLM{response: tt.response, err: tt.err}, "gpt-4o-mini")
		if got := c.Classify(context.Background(), "tax deadline"); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.response, got, tt.want)
		}
	}
}

func TestCategoryColor(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{CategoryRoutine, "#28a745"},
		{CategoryImportant, "#ffc0cb"},
		{CategoryUrgent, "#ADD8E6"},
		{CategoryWeather, "#87CEFA"},
		{"unknown", "#28a745"},
	}
	for _, tt := range tests {
		if got := CategoryColor(tt.category); got != tt.want {
			t.Errorf("CategoryColor(%q) = %q, want %q", tt.category, got, tt.want)
		}
	}
}

func TestNearestEvent(t *testing.T) {
	events := []storage.Event{
		{Title: "past", StartDate: "2026-08-20"},
		{Title: "soonest", StartDate: "2026-09-02-14:00"},
		{Title: "later", StartDate: "2026-09-10"},
		{Title: "undated", StartDate: "sometime"},
	}

	ev, days, ok := NearestEvent(events, sep1())
	if !ok {
		t.Fatal("NearestEvent() ok = false")
	}
	if ev.Title != "soonest" || days != 1 {
		t.Errorf("NearestEvent() = %q in %d days, want soonest in 1", ev.Title, days)
	}
}

func TestNearestEvent_NothingUpcoming(t *testing.T) {
	events := []storage.Event{{Title: "past", StartDate: "2026-08-20"}}
	if _, _, ok := NearestEvent(events, sep1()); ok {
		t.Error("NearestEvent() ok = true, want false with only past events")
	}
}

func TestNudge(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		want  string
		wantK bool
	}{
		{"today", "2026-09-01", `"exam" is today. Ready?`, true},
		{"tomorrow", "2026-09-02", `"exam" is tomorrow.`, true},
		{"within threshold", "2026-09-04", `"exam" is only 3 days away.`, true},
		{"beyond threshold", "2026-09-08", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Nudge([]storage.Event{{Title: "exam", StartDate: tt.date}}, sep1())
			if ok != tt.wantK || got != tt.want {
				t.Errorf("Nudge() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantK)
			}
		})
	}
}

func TestBuildPreview(t *testing.T) {
	for i := 0; i < 20; i++ {
		p := BuildPreview("yoga", CategoryRoutine, "take it easy this week", sep1())
		day, err := time.Parse("2006-01-02", p.StartDate)
		if err != nil {
			t.Fatalf("StartDate = %q: %v", p.StartDate, err)
		}
		offset := int(day.Sub(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)).Hours() / 24)
		if offset < 0 || offset > 6 {
			t.Errorf("preview day offset = %d, want 0..6", offset)
		}
		if p.StartTime != "09:00" || p.EndTime != "09:30" {
			t.Errorf("slot = %s-%s, want 09:00-09:30", p.StartTime, p.EndTime)
		}
		if p.Color != "#28a745" {
			t.Errorf("color = %q", p.Color)
		}
		if p.Content != "take it easy this week" {
			t.Errorf("Content = %q, want the advisory passed through", p.Content)
		}
	}
}

type fakeCommenter struct {
	comment string
	err     error
	calls   int
}

func (f *fakeCommenter) Comment(_ context.Context, _ []storage.Event) (string, error) {
	f.calls++
	return f.comment, f.err
}

type fakeWeather struct {
	advice WeatherAdvice
	err    error
	calls  int
}

func (f *fakeWeather) Advise(_ context.Context, _, _ int) (WeatherAdvice, error) {
	f.calls++
	return f.advice, f.err
}

func TestMediator_NearEventPicksWeather(t *testing.T) {
	commenter := &fakeCommenter{comment: "busy week"}
	weather := &fakeWeather{advice: WeatherAdvice{Advice: "bring an umbrella"}}
	m := NewMediator(commenter, weather, 60, 127)

	events := []storage.Event{{Title: "exam", StartDate: "2026-09-03"}}
	got, err := m.Comment(context.Background(), events, sep1())
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if got != "bring an umbrella" {
		t.Errorf("Comment() = %q, want the weather advice", got)
	}
	if commenter.calls != 0 {
		t.Errorf("commenter calls = %d, want 0 with an imminent event", commenter.calls)
	}
}

func TestMediator_DistantEventPicksCalendarComment(t *testing.T) {
	commenter := &fakeCommenter{comment: "busy week"}
	weather := &fakeWeather{advice: WeatherAdvice{Advice: "bring an umbrella"}}
	m := NewMediator(commenter, weather, 60, 127)

	events := []storage.Event{{Title: "conference", StartDate: "2026-09-20"}}
	got, err := m.Comment(context.Background(), events, sep1())
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if got != "busy week" {
		t.Errorf("Comment() = %q, want the calendar comment", got)
	}
	if weather.calls != 0 {
		t.Errorf("weather calls = %d, want 0 with nothing imminent", weather.calls)
	}
}

func TestMediator_NilWeatherFallsBackToComment(t *testing.T) {
	commenter := &fakeCommenter{comment: "busy week"}
	m := NewMediator(commenter, nil, 60, 127)

	events := []storage.Event{{Title: "exam", StartDate: "2026-09-01"}}
	got, err := m.Comment(context.Background(), events, sep1())
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if got != "busy week" {
		t.Errorf("Comment() = %q, want the calendar comment when weather is off", got)
	}
}

func TestMediator_WeatherErrorPropagates(t *testing.T) {
	commenter := &fakeCommenter{comment: "busy week"}
	weather := &fakeWeather{err: errors.New("forecast service down")}
	m := NewMediator(commenter, weather, 60, 127)

	events := []storage.Event{{Title: "exam", StartDate: "2026-09-02"}}
	if _, err := m.Comment(context.Background(), events, sep1()); err == nil {
		t.Fatal("Comment() error = nil, want the forecast failure surfaced")
	}
}

func TestForecastClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("serviceKey") != "key" || q.Get("dataType") != "JSON" {
			t.Errorf("query = %v", q)
		}
		fmt.Fprint(w, `{"response":{"body":{"items":{"item":[
			{"category":"TMP","fcstTime":"0600","fcstValue":"21"},
			{"category":"TMP","fcstTime":"0900","fcstValue":"26"},
			{"category":"SKY","fcstTime":"0600","fcstValue":"4"},
			{"category":"PTY","fcstTime":"0600","fcstValue":"1"},
			{"category":"POP","fcstTime":"0600","fcstValue":"80"}
		]}}}}`)
	}))
	t.Cleanup(srv.Close)

	c := NewForecastClientWithURL("key", srv.URL)
	f, err := c.Forecast(context.Background(), 60, 127)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	// earliest forecast time wins per category
	if f.Temperature != "21" {
		t.Errorf("Temperature = %q, want the 0600 value", f.Temperature)
	}
	want := "21°C, overcast, rain, 80% chance of rain"
	if got := f.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestWeatherAdvisor_DegradesOnBadAdvice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"body":{"items":{"item":[
			{"category":"TMP","fcstTime":"0600","fcstValue":"21"}
		]}}}}`)
	}))
	t.Cleanup(srv.Close)

	llm := &fakeLLM{response: "take an umbrella!"} // not JSON
	a := NewWeatherAdvisor(llm, "gpt-4o-mini", NewForecastClientWithURL("key", srv.URL))

	got, err := a.Advise(context.Background(), 60, 127)
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}
	if got.Title != weatherFallbackTitle || got.Advice != "21°C" {
		t.Errorf("Advise() = %+v, want fallback title with summary advice", got)
	}
}

func TestWeatherAdvisor_ParsesAdvice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"body":{"items":{"item":[
			{"category":"PTY","fcstTime":"0600","fcstValue":"1"}
		]}}}}`)
	}))
	t.Cleanup(srv.Close)

	llm := &fakeLLM{response: "```json\n{\"title\":\"Rainy morning\",\"advice\":\"Bring an umbrella.\"}\n```"}
	a := NewWeatherAdvisor(llm, "gpt-4o-mini", NewForecastClientWithURL("key", srv.URL))

	got, err := a.Advise(context.Background(), 60, 127)
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}
	if got.Title != "Rainy morning" || got.Advice != "Bring an umbrella." || got.Summary != "rain" {
		t.Errorf("Advise() = %+v", got)
	}
}
