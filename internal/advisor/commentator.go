package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/checkmate/internal/chat"
	"github.com/kalambet/checkmate/internal/openai"
	"github.com/kalambet/checkmate/internal/storage"
)

// conversationTemperature matches the chat pipeline's small-talk setting.
const conversationTemperature = 0.7

// noEventsComment is returned without calling the model when the window holds
// nothing.
const noEventsComment = "You have no upcoming events. Enjoy the breathing room!"

const commentSystemPrompt = `You are a cheerful calendar companion. Given the user's upcoming events, write one short encouraging comment about their schedule. Two sentences at most.`

const classifySystemPrompt = `Classify the calendar event title into exactly one of: urgent, important, routine.
Answer with the single word only.`

// Event categories and their display colors.
const (
	CategoryRoutine   = "routine"
	CategoryImportant = "important"
	CategoryUrgent    = "urgent"
	CategoryWeather   = "weather"
)

// CategoryColor maps a category to its calendar display color. Unknown
// categories get the routine color.
func CategoryColor(category string) string {
	switch category {
	case CategoryImportant:
		return "#ffc0cb"
	case CategoryUrgent:
		return "#ADD8E6"
	case CategoryWeather:
		return "#87CEFA"
	default:
		return "#28a745"
	}
}

// Commentator generates friendly remarks about a user's schedule and
// classifies event titles for display.
type Commentator struct {
	llm   chat.Chatter
	model string
}

// NewCommentator creates a Commentator using the given LLM client and model name.
func NewCommentator(llm chat.Chatter, model string) *Commentator {
	return &Commentator{llm: llm, model: model}
}

// Comment writes a short remark about the events. An empty slice short-
// circuits to a fixed message without a model call.
func (c *Commentator) Comment(ctx context.Context, events []storage.Event) (string, error) {
	if len(events) == 0 {
		return noEventsComment, nil
	}

	var sb strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&sb, "- %s on %s", ev.Title, ev.StartDate)
		if ev.StartTime != "" {
			fmt.Fprintf(&sb, " at %s", ev.StartTime)
		}
		sb.WriteString("\n")
	}

	messages := []openai.Message{
		{Role: "system", Content: commentSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
	comment, usage, err := c.llm.Chat(ctx, c.model, messages, conversationTemperature)
	if err != nil {
		return "", fmt.Errorf("generating schedule comment: %w", err)
	}
	slog.Debug("schedule comment generated", "events", len(events), "tokens", usage.TotalTokens)
	return strings.TrimSpace(comment), nil
}

// Classify sorts an event title into urgent, important, or routine. Any
// failure or unrecognized answer falls back to routine.
func (c *Commentator) Classify(ctx context.Context, title string) string {
	messages := []openai.Message{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: title},
	}
	answer, _, err := c.llm.Chat(ctx, c.model, messages, 0)
	if err != nil {
		slog.Warn("event classification failed", "title", title, "error", err)
		return CategoryRoutine
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case CategoryUrgent:
		return CategoryUrgent
	case CategoryImportant:
		return CategoryImportant
	case CategoryRoutine:
		return CategoryRoutine
	default:
		return CategoryRoutine
	}
}
