package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/kalambet/checkmate/internal/openai"
)

// Extractor turns a sufficiently detailed message into structured schedule
// events via a single deterministic LLM call.
type Extractor struct {
	llm   Chatter
	model string
	now   func() time.Time
}

// NewExtractor creates an Extractor using the given LLM client and model name.
func NewExtractor(llm Chatter, model string) *Extractor {
	return &Extractor{llm: llm, model: model, now: time.Now}
}

// Extract parses schedule events out of the message. Transport errors
// propagate; a response that is not valid JSON degrades to an empty result,
// since by this point the message is known to carry schedule intent and the
// caller still wants a well-formed answer.
func (e *Extractor) Extract(ctx context.Context, message string) (ScheduleResult, openai.Usage, error) {
	today := e.now().Format("2006-01-02")
	answer, usage, err := e.llm.Chat(ctx, e.model, extractMessages(message, today), 0)
	if err != nil {
		return EmptySchedule(), usage, err
	}

	var result ScheduleResult
	if err := json.Unmarshal([]byte(StripCodeFence(answer)), &result); err != nil {
		slog.Warn("schedule extraction returned unparseable JSON", "error", err, "response", answer)
		return EmptySchedule(), usage, nil
	}
	if result.Events == nil {
		result.Events = []Event{}
	}
	return result, usage, nil
}

// StripCodeFence removes a surrounding markdown code fence, with or without a
// json language tag, from a model response.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
