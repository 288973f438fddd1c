package chat

import (
	"context"
	"strings"
	"time"

	"github.com/kalambet/checkmate/internal/openai"
)

// Chatter is the interface for LLM chat completion.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []openai.Message, temperature float64) (string, openai.Usage, error)
}

// Detector answers the two yes/no questions the pipeline branches on: does a
// message carry schedule intent, and does it carry enough detail to extract
// from directly.
type Detector struct {
	llm   Chatter
	model string
	now   func() time.Time
}

// NewDetector creates a Detector using the given LLM client and model name.
func NewDetector(llm Chatter, model string) *Detector {
	return &Detector{llm: llm, model: model, now: time.Now}
}

// HasScheduleIntent reports whether the message is about a schedule or event.
// The model answer is matched leniently: any answer containing "true"
// (case-insensitive) counts. Transport errors propagate to the caller: this
// is the pipeline's entry gate and has no sensible fallback.
func (d *Detector) HasScheduleIntent(ctx context.Context, message string) (bool, openai.Usage, error) {
	answer, usage, err := d.llm.Chat(ctx, d.model, intentMessages(message), 0)
	if err != nil {
		return false, usage, err
	}
	return strings.Contains(strings.ToLower(strings.TrimSpace(answer)), "true"), usage, nil
}

// HasConcreteDetail reports whether the message carries enough specifics for
// direct extraction. The answer is matched strictly: it must begin with
// "true" after trimming and lowercasing, so a hedged or prose answer counts
// as false and routes the message to the search-backed path instead.
func (d *Detector) HasConcreteDetail(ctx context.Context, message string) (bool, openai.Usage, error) {
	today := d.now().Format("2006-01-02")
	answer, usage, err := d.llm.Chat(ctx, d.model, detailMessages(message, today), 0)
	if err != nil {
		return false, usage, err
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "true"), usage, nil
}
