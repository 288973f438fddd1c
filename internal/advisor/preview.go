package advisor

import (
	"math/rand"
	"time"
)

// PreviewEvent is a suggested calendar entry the client can show before the
// user commits to it. Content carries the mediator's advisory.
type PreviewEvent struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Content   string `json:"content"`
	StartDate string `json:"start_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color"`
}

// BuildPreview proposes a slot for the title: a random day within the coming
// week, in the 09:00 to 09:30 morning slot, colored by category. Safe for
// concurrent use; the day pick goes through the locked package-level source.
func BuildPreview(title, category, content string, now time.Time) PreviewEvent {
	day := now.AddDate(0, 0, rand.Intn(7))
	return PreviewEvent{
		Title:     title,
		Category:  category,
		Content:   content,
		StartDate: day.Format("2006-01-02"),
		StartTime: "09:00",
		EndTime:   "09:30",
		Color:     CategoryColor(category),
	}
}
