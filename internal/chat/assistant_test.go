package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/kalambet/checkmate/internal/openai"
)

// scriptedChatter pops one canned step per LLM call.
type scriptedChatter struct {
	steps []struct {
		response string
		usage    openai.Usage
		err      error
	}
	calls int
	temps []float64
}

func (s *scriptedChatter) Chat(_ context.Context, _ string, _ []openai.Message, temperature float64) (string, openai.Usage, error) {
	if s.calls >= len(s.steps) {
		return "", openai.Usage{}, errors.New("unexpected extra LLM call")
	}
	step := s.steps[s.calls]
	s.calls++
	s.temps = append(s.temps, temperature)
	return step.response, step.usage, step.err
}

func scripted(steps ...struct {
	response string
	usage    openai.Usage
	err      error
}) *scriptedChatter {
	return &scriptedChatter{steps: steps}
}

func step(response string, total int, err error) struct {
	response string
	usage    openai.Usage
	err      error
} {
	return struct {
		response string
		usage    openai.Usage
		err      error
	}{response, openai.Usage{TotalTokens: total}, err}
}

type mockSearch struct {
	result ScheduleResult
	calls  int
}

func (m *mockSearch) ExtractViaSearch(_ context.Context, _ string) ScheduleResult {
	m.calls++
	return m.result
}

func newTestAssistant(llm Chatter, search SearchExtractor) *Assistant {
	d := NewDetector(llm, "gpt-4o-mini")
	d.now = fixedNow
	e := NewExtractor(llm, "gpt-4o-mini")
	e.now = fixedNow
	return NewAssistant(d, e, NewResponder(llm, "gpt-4o-mini"), search)
}

func TestAssistant_ConversationPath(t *testing.T) {
	llm := scripted(
		step("false", 10, nil),
		step("Hello! How can I help?", 20, nil),
	)
	search := &mockSearch{}
	a := newTestAssistant(llm, search)

	got, err := a.Process(context.Background(), "how are you?")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got.HasSchedule || got.Type != TypeConversation {
		t.Errorf("result = %+v, want conversation", got)
	}
	if got.ScheduleData != nil {
		t.Errorf("ScheduleData = %+v, want nil", got.ScheduleData)
	}
	if got.Reply != "Hello! How can I help?" {
		t.Errorf("Reply = %q", got.Reply)
	}
	if got.TokensUsed.TotalTokens != 10 {
		t.Errorf("TokensUsed = %d, want the intent call's 10", got.TokensUsed.TotalTokens)
	}
	if llm.temps[1] != conversationTemperature {
		t.Errorf("reply temperature = %v, want %v", llm.temps[1], conversationTemperature)
	}
	if search.calls != 0 {
		t.Error("search path invoked on a conversation message")
	}
	if a.history.Len() != 2 {
		t.Errorf("history length = %d, want 2 after one exchange", a.history.Len())
	}
}

func TestAssistant_DirectExtractionPath(t *testing.T) {
	llm := scripted(
		step("true", 10, nil),
		step("true", 5, nil),
		step(`{"events":[{"start_date":"2026-09-01","title":"dinner"}]}`, 30, nil),
	)
	search := &mockSearch{}
	a := newTestAssistant(llm, search)

	got, err := a.Process(context.Background(), "dinner tomorrow at 7pm")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !got.HasSchedule || got.Type != TypeSchedule {
		t.Errorf("result = %+v, want schedule", got)
	}
	if got.ScheduleData == nil || len(got.ScheduleData.Events) != 1 {
		t.Fatalf("ScheduleData = %+v, want one event", got.ScheduleData)
	}
	// normalization fills the missing end date
	if ev := got.ScheduleData.Events[0]; ev.EndDate != "2026-09-01" {
		t.Errorf("end date = %q, want defaulted to start", ev.EndDate)
	}
	if search.calls != 0 {
		t.Error("search path invoked on a concrete message")
	}
}

func TestAssistant_DropsUndatedExtractedEvents(t *testing.T) {
	llm := scripted(
		step("true", 10, nil),
		step("true", 5, nil),
		step(`{"events":[{"title":"sometime soon"},{"start_date":"2026-09-05","title":"picnic"}]}`, 30, nil),
	)
	a := newTestAssistant(llm, &mockSearch{})

	got, err := a.Process(context.Background(), "picnic on friday, and that other thing sometime")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got.ScheduleData == nil || len(got.ScheduleData.Events) != 1 {
		t.Fatalf("ScheduleData = %+v, want the undated event dropped", got.ScheduleData)
	}
	if ev := got.ScheduleData.Events[0]; ev.Title != "picnic" || ev.EndDate != "2026-09-05" {
		t.Errorf("kept event = %+v, want picnic with defaulted end date", ev)
	}
}

func TestAssistant_SearchPath(t *testing.T) {
	llm := scripted(
		step("true", 10, nil),
		step("false", 5, nil),
	)
	search := &mockSearch{result: ScheduleResult{Events: []Event{{StartDate: "2026-10-03", Title: "fireworks festival"}}}}
	a := newTestAssistant(llm, search)

	got, err := a.Process(context.Background(), "when is the fireworks festival?")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !got.HasSchedule || got.Type != TypeSchedule {
		t.Errorf("result = %+v, want schedule", got)
	}
	if search.calls != 1 {
		t.Errorf("search calls = %d, want 1", search.calls)
	}
	if got.ScheduleData == nil || len(got.ScheduleData.Events) != 1 {
		t.Fatalf("ScheduleData = %+v, want one normalized event", got.ScheduleData)
	}
	if ev := got.ScheduleData.Events[0]; ev.EndDate != "2026-10-03" {
		t.Errorf("end date = %q, want defaulted to start", ev.EndDate)
	}
}

func TestAssistant_IntentErrorPropagates(t *testing.T) {
	llm := scripted(step("", 0, errors.New("upstream down")))
	a := newTestAssistant(llm, &mockSearch{})

	if _, err := a.Process(context.Background(), "hi"); err == nil {
		t.Fatal("Process() error = nil, want non-nil when the intent gate fails")
	}
}

func TestAssistant_DownstreamErrorDegrades(t *testing.T) {
	llm := scripted(
		step("true", 10, nil),
		step("", 0, errors.New("upstream down")),
	)
	a := newTestAssistant(llm, &mockSearch{})

	got, err := a.Process(context.Background(), "dinner tomorrow")
	if err != nil {
		t.Fatalf("Process() error = %v, want degraded result instead", err)
	}
	if got.Type != TypeConversation || got.Reply != apologyReply {
		t.Errorf("result = %+v, want apologetic conversation fallback", got)
	}
	if got.Error == "" {
		t.Error("Error field empty, want the underlying failure recorded")
	}
}

func TestAssistant_ResetAndHistory(t *testing.T) {
	llm := scripted(
		step("false", 10, nil),
		step("nice to meet you", 20, nil),
	)
	a := newTestAssistant(llm, &mockSearch{})

	if _, err := a.Process(context.Background(), "hello"); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if turns := a.History(); len(turns) != 2 || turns[0].Role != "user" {
		t.Errorf("History() = %+v, want user+assistant exchange", turns)
	}

	a.Reset()
	if turns := a.History(); len(turns) != 0 {
		t.Errorf("History() after Reset = %+v, want empty", turns)
	}
}
