package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/kalambet/checkmate/internal/storage"
)

type eventRequest struct {
	Title     string `json:"title"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color"`
	Memo      string `json:"memo"`
}

type eventResponse struct {
	ID         int64  `json:"id"`
	CalendarID int64  `json:"calendar_id"`
	Title      string `json:"title"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	StartTime  string `json:"start_time,omitempty"`
	EndTime    string `json:"end_time,omitempty"`
	Color      string `json:"color,omitempty"`
	Memo       string `json:"memo,omitempty"`
}

func toEventResponse(e storage.Event) eventResponse {
	return eventResponse{
		ID:         e.ID,
		CalendarID: e.CalendarID,
		Title:      e.Title,
		StartDate:  e.StartDate,
		EndDate:    e.EndDate,
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
		Color:      e.Color,
		Memo:       e.Memo,
	}
}

func validEventRequest(w http.ResponseWriter, req eventRequest) bool {
	if req.Title == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "title is required")
		return false
	}
	if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "start_date must be YYYY-MM-DD")
		return false
	}
	if req.EndDate != "" {
		if _, err := time.Parse("2006-01-02", req.EndDate); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "end_date must be YYYY-MM-DD")
			return false
		}
	}
	return true
}

// accessibleEvent loads the event and verifies the requester can see its
// calendar.
func accessibleEvent(deps Deps, w http.ResponseWriter, r *http.Request) (storage.Event, bool) {
	id, valid := pathID(r, "id")
	if !valid {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid event id")
		return storage.Event{}, false
	}
	ev, err := deps.Store.GetEvent(id)
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found", "event not found")
		return storage.Event{}, false
	}
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to get event: %v", err)
		return storage.Event{}, false
	}
	ok, err := deps.Store.CanAccessCalendar(ev.CalendarID, currentUser(r))
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to check access: %v", err)
		return storage.Event{}, false
	}
	if !ok {
		httpError(w, http.StatusNotFound, "not_found", "event not found")
		return storage.Event{}, false
	}
	return ev, true
}

func handleCreateEvent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calID, valid := pathID(r, "id")
		if !valid {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid calendar id")
			return
		}
		ok, err := deps.Store.CanAccessCalendar(calID, currentUser(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to check access: %v", err)
			return
		}
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "calendar not found")
			return
		}

		var req eventRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !validEventRequest(w, req) {
			return
		}

		ev, err := deps.Store.CreateEvent(storage.Event{
			CalendarID: calID,
			Title:      req.Title,
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			Color:      req.Color,
			Memo:       req.Memo,
		})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create event: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(ev))
	}
}

func handleListEvents(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calID, valid := pathID(r, "id")
		if !valid {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid calendar id")
			return
		}
		ok, err := deps.Store.CanAccessCalendar(calID, currentUser(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to check access: %v", err)
			return
		}
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "calendar not found")
			return
		}

		events, err := deps.Store.ListEvents(calID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list events: %v", err)
			return
		}
		out := make([]eventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, toEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleListUserEvents returns events across every calendar the user can see.
// Defaults to the coming week when no range is given.
func handleListUserEvents(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")
		now := time.Now()
		if from == "" {
			from = now.Format("2006-01-02")
		}
		if to == "" {
			to = now.AddDate(0, 0, 7).Format("2006-01-02")
		}
		if _, err := time.Parse("2006-01-02", from); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "from must be YYYY-MM-DD")
			return
		}
		if _, err := time.Parse("2006-01-02", to); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "to must be YYYY-MM-DD")
			return
		}

		events, err := deps.Store.ListUserEventsBetween(currentUser(r), from, to)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list events: %v", err)
			return
		}
		out := make([]eventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, toEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetEvent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, ok := accessibleEvent(deps, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(ev))
	}
}

func handleUpdateEvent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, ok := accessibleEvent(deps, w, r)
		if !ok {
			return
		}
		var req eventRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if !validEventRequest(w, req) {
			return
		}

		ev.Title = req.Title
		ev.StartDate = req.StartDate
		ev.EndDate = req.EndDate
		ev.StartTime = req.StartTime
		ev.EndTime = req.EndTime
		ev.Color = req.Color
		ev.Memo = req.Memo
		if err := deps.Store.UpdateEvent(ev); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to update event: %v", err)
			return
		}
		if ev.EndDate == "" {
			ev.EndDate = ev.StartDate
		}
		writeJSON(w, http.StatusOK, toEventResponse(ev))
	}
}

func handleDeleteEvent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, ok := accessibleEvent(deps, w, r)
		if !ok {
			return
		}
		if err := deps.Store.DeleteEvent(ev.ID); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete event: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
