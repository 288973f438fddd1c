package chat

import (
	"fmt"

	"github.com/kalambet/checkmate/internal/openai"
)

const intentSystemPrompt = `You decide whether a message is about a schedule, appointment, event, or plan.
Answer with exactly "true" or "false" and nothing else.

Examples of true: "dinner with Minji on Friday", "when is the concert?", "I have a dentist appointment next week", "remind me about the team meeting".
Examples of false: "how are you?", "what should I eat for lunch?", "tell me a joke".`

const detailSystemPromptTemplate = `Today's date is %s.
You decide whether a message contains enough concrete detail to create a calendar entry directly: it must name or clearly imply a specific date (or a resolvable relative date like "tomorrow" or "next Friday") for an event the user themselves is describing.
Messages that merely ask about public events, festivals, or things the user would have to look up do NOT count.
Answer with exactly "true" or "false" and nothing else.`

const extractSystemPromptTemplate = `Today's date is %s.
Extract every schedule event from the user's message and respond with ONLY a JSON object of this exact shape, no prose and no markdown:

{"events": [{"start_date": "YYYY-MM-DD-HH:mm", "end_date": "YYYY-MM-DD-HH:mm", "title": "..."}]}

Rules:
- Resolve relative dates ("tomorrow", "next Friday") against today's date.
- If no time of day is given, use the date alone as "YYYY-MM-DD".
- If no end is given, leave end_date equal to start_date.
- If the message contains no extractable event, respond with {"events": []}.`

const replySystemPrompt = `You are a warm, friendly assistant for a calendar app. Reply naturally and briefly to the user's message, in the user's language.`

// intentMessages builds the prompt for the schedule-intent check.
func intentMessages(message string) []openai.Message {
	return []openai.Message{
		{Role: "system", Content: intentSystemPrompt},
		{Role: "user", Content: message},
	}
}

// detailMessages builds the prompt for the detail-sufficiency check. today is
// formatted as YYYY-MM-DD.
func detailMessages(message, today string) []openai.Message {
	return []openai.Message{
		{Role: "system", Content: fmt.Sprintf(detailSystemPromptTemplate, today)},
		{Role: "user", Content: message},
	}
}

// extractMessages builds the prompt for structured schedule extraction.
func extractMessages(message, today string) []openai.Message {
	return []openai.Message{
		{Role: "system", Content: fmt.Sprintf(extractSystemPromptTemplate, today)},
		{Role: "user", Content: message},
	}
}

// replyPromptMessages builds the conversational prompt: system, then the
// history window, then the current message.
func replyPromptMessages(message string, history []Turn) []openai.Message {
	messages := make([]openai.Message, 0, len(history)+2)
	messages = append(messages, openai.Message{Role: "system", Content: replySystemPrompt})
	for _, t := range history {
		messages = append(messages, openai.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, openai.Message{Role: "user", Content: message})
	return messages
}
