package api

import (
	"net/http"
	"time"

	"github.com/kalambet/checkmate/internal/advisor"
)

func handleWeather(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Weather == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "weather advisory is not configured")
			return
		}
		advice, err := deps.Weather.Advise(r.Context(), deps.GridX, deps.GridY)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "weather advisory failed: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, advice)
	}
}

func handleComment(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := parseIntParam(r, "days", 7, 31)
		now := time.Now()
		events, err := deps.Store.ListUserEventsBetween(
			currentUser(r),
			now.Format("2006-01-02"),
			now.AddDate(0, 0, days).Format("2006-01-02"),
		)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list events: %v", err)
			return
		}

		comment, err := deps.Commentator.Comment(r.Context(), events)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "comment generation failed: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"comment": comment,
			"events":  len(events),
		})
	}
}

func handleNudge(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		events, err := deps.Store.ListUserEventsBetween(
			currentUser(r),
			now.Format("2006-01-02"),
			now.AddDate(0, 0, 31).Format("2006-01-02"),
		)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list events: %v", err)
			return
		}

		msg, ok := advisor.Nudge(events, now)
		writeJSON(w, http.StatusOK, map[string]any{
			"nudge":   msg,
			"pending": ok,
		})
	}
}

// handlePreview classifies the title, proposes a colored slot for it without
// writing anything, and attaches the mediator's advisory as the content.
func handlePreview(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title string `json:"title"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Title == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "title is required")
			return
		}

		now := time.Now()
		events, err := deps.Store.ListUserEventsBetween(
			currentUser(r),
			now.Format("2006-01-02"),
			now.AddDate(0, 0, 7).Format("2006-01-02"),
		)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list events: %v", err)
			return
		}

		comment, err := deps.Mediator.Comment(r.Context(), events, now)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "advisory generation failed: %v", err)
			return
		}

		category := deps.Commentator.Classify(r.Context(), req.Title)
		writeJSON(w, http.StatusOK, advisor.BuildPreview(req.Title, category, comment, now))
	}
}
