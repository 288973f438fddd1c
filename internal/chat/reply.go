package chat

import (
	"context"

	"github.com/kalambet/checkmate/internal/openai"
)

// conversationTemperature keeps small talk varied while every classification
// and extraction call stays deterministic.
const conversationTemperature = 0.7

// Responder generates the conversational reply for messages with no schedule
// intent.
type Responder struct {
	llm   Chatter
	model string
}

// NewResponder creates a Responder using the given LLM client and model name.
func NewResponder(llm Chatter, model string) *Responder {
	return &Responder{llm: llm, model: model}
}

// Reply generates a short conversational answer, conditioned on the history
// window.
func (r *Responder) Reply(ctx context.Context, message string, history []Turn) (string, openai.Usage, error) {
	return r.llm.Chat(ctx, r.model, replyPromptMessages(message, history), conversationTemperature)
}
