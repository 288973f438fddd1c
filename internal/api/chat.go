package api

import (
	"net/http"

	"github.com/kalambet/checkmate/internal/chat"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	chat.Result
}

// handleChat runs one message through the pipeline. An empty session_id
// starts a new session; the ID comes back in the response either way.
func handleChat(sessions *sessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Message == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}

		id := req.SessionID
		if id == "" {
			id = sessions.create()
		}
		s, ok := sessions.get(id)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "unknown session")
			return
		}

		s.mu.Lock()
		result, err := s.assistant.Process(r.Context(), req.Message)
		s.mu.Unlock()
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "message processing failed: %v", err)
			return
		}

		writeJSON(w, http.StatusOK, chatResponse{SessionID: id, Result: result})
	}
}

func handleChatReset(sessions *sessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SessionID string `json:"session_id"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		s, ok := sessions.get(req.SessionID)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "unknown session")
			return
		}

		s.mu.Lock()
		s.assistant.Reset()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}

func handleChatHistory(sessions *sessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessions.get(r.URL.Query().Get("session_id"))
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "unknown session")
			return
		}

		s.mu.Lock()
		turns := s.assistant.History()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"history": turns})
	}
}
