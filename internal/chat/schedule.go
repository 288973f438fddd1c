package chat

import (
	"encoding/json"
	"strings"
)

// Event is a single extracted schedule entry. Date strings are either
// YYYY-MM-DD or YYYY-MM-DD-HH:mm depending on the producer; consumers must
// tolerate both.
type Event struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Title     string `json:"title"`
}

// ScheduleResult is the normalized output of every extraction path. Events is
// never nil, even on total failure.
type ScheduleResult struct {
	Events []Event `json:"events"`
}

// EmptySchedule returns a well-formed result with no events.
func EmptySchedule() ScheduleResult {
	return ScheduleResult{Events: []Event{}}
}

// Normalize enforces the ScheduleResult contract: events without a start date
// are dropped, an empty end date defaults to the start date, and the events
// slice is never nil. Normalizing an already-normalized result is a no-op.
func Normalize(r ScheduleResult) ScheduleResult {
	out := EmptySchedule()
	for _, ev := range r.Events {
		start := strings.TrimSpace(ev.StartDate)
		if start == "" {
			continue
		}
		end := strings.TrimSpace(ev.EndDate)
		if end == "" {
			end = start
		}
		out.Events = append(out.Events, Event{
			StartDate: start,
			EndDate:   end,
			Title:     strings.TrimSpace(ev.Title),
		})
	}
	return out
}

// NormalizeRaw coerces whatever shape a producer handed back (a typed result,
// a JSON string, a decoded object, or nothing at all) into a normalized
// ScheduleResult. Unrecognized shapes collapse to the empty result.
func NormalizeRaw(raw any) ScheduleResult {
	switch v := raw.(type) {
	case nil:
		return EmptySchedule()
	case ScheduleResult:
		return Normalize(v)
	case *ScheduleResult:
		if v == nil {
			return EmptySchedule()
		}
		return Normalize(*v)
	case string:
		return normalizeJSON([]byte(v))
	case []byte:
		return normalizeJSON(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return EmptySchedule()
		}
		return normalizeJSON(b)
	default:
		return EmptySchedule()
	}
}

func normalizeJSON(b []byte) ScheduleResult {
	var r ScheduleResult
	if err := json.Unmarshal(b, &r); err != nil {
		return EmptySchedule()
	}
	return Normalize(r)
}
