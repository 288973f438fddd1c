package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/kalambet/checkmate/internal/storage"
)

// nudgeThresholdDays is how close an event has to be before the mediator
// speaks up.
const nudgeThresholdDays = 3

// scheduleCommenter and weatherAdviser are the two voices the mediator
// arbitrates between.
type scheduleCommenter interface {
	Comment(ctx context.Context, events []storage.Event) (string, error)
}

type weatherAdviser interface {
	Advise(ctx context.Context, nx, ny int) (WeatherAdvice, error)
}

// Mediator decides which advisory the user hears. An event starting within
// the threshold window means the user is about to head out, so the weather
// advice wins; otherwise the calendar comment does. A nil weather adviser
// always yields the calendar comment.
type Mediator struct {
	commentator scheduleCommenter
	weather     weatherAdviser
	nx, ny      int
}

// NewMediator wires the commentator and weather adviser together. weather may
// be nil when the forecast service is not configured.
func NewMediator(commentator scheduleCommenter, weather weatherAdviser, nx, ny int) *Mediator {
	return &Mediator{commentator: commentator, weather: weather, nx: nx, ny: ny}
}

// Comment returns the advisory for the given upcoming events.
func (m *Mediator) Comment(ctx context.Context, events []storage.Event, now time.Time) (string, error) {
	if _, days, ok := NearestEvent(events, now); ok && days <= nudgeThresholdDays && m.weather != nil {
		advice, err := m.weather.Advise(ctx, m.nx, m.ny)
		if err != nil {
			return "", fmt.Errorf("weather advice: %w", err)
		}
		return advice.Advice, nil
	}
	return m.commentator.Comment(ctx, events)
}

// NearestEvent returns the upcoming event closest to now and how many days
// away it is. Events with unparseable start dates are skipped; ok is false
// when nothing upcoming remains. Only the date part of StartDate is
// considered, so timed and all-day events compare alike.
func NearestEvent(events []storage.Event, now time.Time) (storage.Event, int, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var nearest storage.Event
	nearestDays := -1
	for _, ev := range events {
		day := ev.StartDate
		if len(day) > 10 {
			day = day[:10]
		}
		start, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		days := int(start.Sub(today).Hours() / 24)
		if days < 0 {
			continue
		}
		if nearestDays == -1 || days < nearestDays {
			nearest = ev
			nearestDays = days
		}
	}
	return nearest, nearestDays, nearestDays >= 0
}

// Nudge produces a reminder line when the nearest upcoming event falls within
// the threshold window. ok is false when there is nothing to say.
func Nudge(events []storage.Event, now time.Time) (string, bool) {
	ev, days, ok := NearestEvent(events, now)
	if !ok || days > nudgeThresholdDays {
		return "", false
	}
	switch days {
	case 0:
		return fmt.Sprintf("%q is today. Ready?", ev.Title), true
	case 1:
		return fmt.Sprintf("%q is tomorrow.", ev.Title), true
	default:
		return fmt.Sprintf("%q is only %d days away.", ev.Title, days), true
	}
}
