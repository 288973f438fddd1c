package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/kalambet/checkmate/internal/advisor"
	"github.com/kalambet/checkmate/internal/chat"
	"github.com/kalambet/checkmate/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Assistant is the per-session chat pipeline the handlers drive.
type Assistant interface {
	Process(ctx context.Context, message string) (chat.Result, error)
	Reset()
	History() []chat.Turn
}

// Commentator generates schedule remarks and title classifications.
type Commentator interface {
	Comment(ctx context.Context, events []storage.Event) (string, error)
	Classify(ctx context.Context, title string) string
}

// WeatherAdviser produces the daily weather advisory.
type WeatherAdviser interface {
	Advise(ctx context.Context, nx, ny int) (advisor.WeatherAdvice, error)
}

// Mediator picks the advisory comment attached to the event preview: weather
// advice when an event is imminent, the calendar comment otherwise.
type Mediator interface {
	Comment(ctx context.Context, events []storage.Event, now time.Time) (string, error)
}

// Deps holds everything the HTTP surface needs.
type Deps struct {
	Store        *storage.Store
	NewAssistant func() Assistant
	Commentator  Commentator
	Mediator     Mediator
	Weather      WeatherAdviser // optional; nil disables the weather endpoint
	GridX        int
	GridY        int
}

// NewHandler returns the full REST API.
func NewHandler(deps Deps) http.Handler {
	sessions := newSessionManager(deps.NewAssistant)
	tokens := newTokenStore()

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", handleHealth)
	r.Post("/auth/register", handleRegister(deps, tokens))
	r.Post("/auth/login", handleLogin(deps, tokens))

	r.Group(func(r chi.Router) {
		r.Use(requireUser(tokens))

		r.Get("/me", handleMe(deps))

		r.Post("/calendars", handleCreateCalendar(deps))
		r.Get("/calendars", handleListCalendars(deps))
		r.Get("/calendars/{id}", handleGetCalendar(deps))
		r.Patch("/calendars/{id}", handleRenameCalendar(deps))
		r.Delete("/calendars/{id}", handleDeleteCalendar(deps))
		r.Post("/calendars/{id}/share", handleShareCalendar(deps))
		r.Delete("/calendars/{id}/share", handleUnshareCalendar(deps))

		r.Post("/calendars/{id}/events", handleCreateEvent(deps))
		r.Get("/calendars/{id}/events", handleListEvents(deps))
		r.Get("/events", handleListUserEvents(deps))
		r.Get("/events/{id}", handleGetEvent(deps))
		r.Put("/events/{id}", handleUpdateEvent(deps))
		r.Delete("/events/{id}", handleDeleteEvent(deps))

		r.Post("/friends", handleRequestFriend(deps))
		r.Post("/friends/accept", handleAcceptFriend(deps))
		r.Delete("/friends/{username}", handleRemoveFriend(deps))
		r.Get("/friends", handleListFriends(deps))

		r.Post("/posts", handleCreatePost(deps))
		r.Get("/posts", handleListPosts(deps))
		r.Get("/posts/{id}", handleGetPost(deps))
		r.Delete("/posts/{id}", handleDeletePost(deps))
		r.Post("/posts/{id}/comments", handleCreateComment(deps))
		r.Get("/posts/{id}/comments", handleListComments(deps))
		r.Delete("/comments/{id}", handleDeleteComment(deps))

		r.Post("/chat", handleChat(sessions))
		r.Post("/chat/reset", handleChatReset(sessions))
		r.Get("/chat/history", handleChatHistory(sessions))

		r.Get("/advisor/weather", handleWeather(deps))
		r.Get("/advisor/comment", handleComment(deps))
		r.Get("/advisor/nudge", handleNudge(deps))
		r.Post("/advisor/preview", handlePreview(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func pathID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return id, err == nil && id > 0
}
