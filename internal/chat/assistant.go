package chat

import (
	"context"
	"log/slog"

	"github.com/kalambet/checkmate/internal/openai"
)

// Result types.
const (
	TypeSchedule     = "schedule"
	TypeConversation = "conversation"
)

// apologyReply is returned when a downstream stage fails after the intent
// gate has already passed.
const apologyReply = "Sorry, something went wrong while handling your message. Please try again."

// Result is the outcome of processing one message.
type Result struct {
	HasSchedule  bool            `json:"has_schedule"`
	Type         string          `json:"type"`
	ScheduleData *ScheduleResult `json:"schedule_data"`
	Reply        string          `json:"reply"`
	TokensUsed   openai.Usage    `json:"tokens_used"`
	Error        string          `json:"error,omitempty"`
}

// SearchExtractor runs the search-backed extraction path for messages that
// carry schedule intent but not enough detail to extract from directly. It
// never fails; on any internal error it returns an empty result.
type SearchExtractor interface {
	ExtractViaSearch(ctx context.Context, message string) ScheduleResult
}

// Assistant orchestrates the full message pipeline: intent gate, detail
// branch, one of two extraction paths, or the conversational fallback. It is
// not safe for concurrent use; the session layer serializes calls per
// conversation.
type Assistant struct {
	detector  *Detector
	extractor *Extractor
	responder *Responder
	search    SearchExtractor
	history   History
}

// NewAssistant wires the pipeline stages together.
func NewAssistant(detector *Detector, extractor *Extractor, responder *Responder, search SearchExtractor) *Assistant {
	return &Assistant{
		detector:  detector,
		extractor: extractor,
		responder: responder,
		search:    search,
	}
}

// Process runs one message through the pipeline. The returned error is
// non-nil only when the intent gate itself fails; every later stage degrades
// into a well-formed Result instead, with Error recording what went wrong.
// TokensUsed reports the intent call; downstream usage is logged at debug.
func (a *Assistant) Process(ctx context.Context, message string) (Result, error) {
	intent, usage, err := a.detector.HasScheduleIntent(ctx, message)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		HasSchedule: intent,
		Type:        TypeConversation,
		TokensUsed:  usage,
	}

	if !intent {
		reply, replyUsage, err := a.responder.Reply(ctx, message, a.history.Turns())
		if err != nil {
			slog.Warn("conversational reply failed", "error", err)
			result.Reply = apologyReply
			result.Error = err.Error()
			return result, nil
		}
		slog.Debug("conversational reply generated", "tokens", replyUsage.TotalTokens)
		result.Reply = reply
		a.history.AppendExchange(message, reply)
		return result, nil
	}

	result.Type = TypeSchedule

	detail, detailUsage, err := a.detector.HasConcreteDetail(ctx, message)
	if err != nil {
		slog.Warn("detail classification failed", "error", err)
		result.Type = TypeConversation
		result.Reply = apologyReply
		result.Error = err.Error()
		return result, nil
	}
	slog.Debug("detail classified", "concrete", detail, "tokens", detailUsage.TotalTokens)

	var raw ScheduleResult
	if detail {
		var extractUsage openai.Usage
		raw, extractUsage, err = a.extractor.Extract(ctx, message)
		if err != nil {
			slog.Warn("schedule extraction failed", "error", err)
			result.Type = TypeConversation
			result.Reply = apologyReply
			result.Error = err.Error()
			return result, nil
		}
		slog.Debug("schedule extracted", "events", len(raw.Events), "tokens", extractUsage.TotalTokens)
	} else {
		raw = a.search.ExtractViaSearch(ctx, message)
		slog.Debug("search-backed extraction finished", "events", len(raw.Events))
	}

	sched := NormalizeRaw(raw)
	result.ScheduleData = &sched
	return result, nil
}

// Reset clears the conversation history.
func (a *Assistant) Reset() {
	a.history.Reset()
}

// History returns a snapshot of the current conversation window.
func (a *Assistant) History() []Turn {
	return a.history.Turns()
}
