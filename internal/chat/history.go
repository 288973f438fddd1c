package chat

// HistoryLimit caps the conversation window at ten user/assistant exchanges.
const HistoryLimit = 20

// Turn is one entry in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// History is a sliding window over the most recent conversation turns. The
// zero value is ready to use. History is not safe for concurrent use; callers
// that share an Assistant across goroutines must serialize access.
type History struct {
	turns []Turn
}

// Append records one turn and evicts the oldest entries beyond HistoryLimit.
func (h *History) Append(role, content string) {
	h.turns = append(h.turns, Turn{Role: role, Content: content})
	if len(h.turns) > HistoryLimit {
		h.turns = h.turns[len(h.turns)-HistoryLimit:]
	}
}

// AppendExchange records a user message and the assistant's reply to it.
func (h *History) AppendExchange(userMsg, assistantMsg string) {
	h.Append("user", userMsg)
	h.Append("assistant", assistantMsg)
}

// Turns returns a copy of the current window, oldest first.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len reports the number of turns currently held.
func (h *History) Len() int {
	return len(h.turns)
}

// Reset discards all recorded turns.
func (h *History) Reset() {
	h.turns = nil
}
