package api

import (
	"errors"
	"net/http"

	"github.com/kalambet/checkmate/internal/storage"
)

type calendarResponse struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Name    string `json:"name"`
}

func toCalendarResponse(c storage.Calendar) calendarResponse {
	return calendarResponse{ID: c.ID, OwnerID: c.OwnerID, Name: c.Name}
}

// ownedCalendar loads the calendar and checks the requester owns it. It
// writes the error response itself and reports success via ok.
func ownedCalendar(deps Deps, w http.ResponseWriter, r *http.Request) (storage.Calendar, bool) {
	id, valid := pathID(r, "id")
	if !valid {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid calendar id")
		return storage.Calendar{}, false
	}
	cal, err := deps.Store.GetCalendar(id)
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found", "calendar not found")
		return storage.Calendar{}, false
	}
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to get calendar: %v", err)
		return storage.Calendar{}, false
	}
	if cal.OwnerID != currentUser(r) {
		httpError(w, http.StatusForbidden, "forbidden", "not your calendar")
		return storage.Calendar{}, false
	}
	return cal, true
}

func handleCreateCalendar(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}

		cal, err := deps.Store.CreateCalendar(currentUser(r), req.Name)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create calendar: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, toCalendarResponse(cal))
	}
}

func handleListCalendars(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cals, err := deps.Store.ListCalendars(currentUser(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list calendars: %v", err)
			return
		}
		out := make([]calendarResponse, 0, len(cals))
		for _, c := range cals {
			out = append(out, toCalendarResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetCalendar(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(r, "id")
		if !valid {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid calendar id")
			return
		}

		ok, err := deps.Store.CanAccessCalendar(id, currentUser(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to check access: %v", err)
			return
		}
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "calendar not found")
			return
		}

		cal, err := deps.Store.GetCalendar(id)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get calendar: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, toCalendarResponse(cal))
	}
}

func handleRenameCalendar(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cal, ok := ownedCalendar(deps, w, r)
		if !ok {
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "name is required")
			return
		}
		if err := deps.Store.RenameCalendar(cal.ID, req.Name); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to rename calendar: %v", err)
			return
		}
		cal.Name = req.Name
		writeJSON(w, http.StatusOK, toCalendarResponse(cal))
	}
}

func handleDeleteCalendar(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cal, ok := ownedCalendar(deps, w, r)
		if !ok {
			return
		}
		if err := deps.Store.DeleteCalendar(cal.ID); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete calendar: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleShareCalendar(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cal, ok := ownedCalendar(deps, w, r)
		if !ok {
			return
		}
		var req struct {
			Username string `json:"username"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		target, err := deps.Store.GetUserByUsername(req.Username)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to look up user: %v", err)
			return
		}
		if target.ID == cal.OwnerID {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "cannot share a calendar with its owner")
			return
		}

		if err := deps.Store.ShareCalendar(cal.ID, target.ID); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to share calendar: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "shared"})
	}
}

func handleUnshareCalendar(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cal, ok := ownedCalendar(deps, w, r)
		if !ok {
			return
		}
		username := r.URL.Query().Get("username")
		if username == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "username is required")
			return
		}

		target, err := deps.Store.GetUserByUsername(username)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to look up user: %v", err)
			return
		}

		err = deps.Store.UnshareCalendar(cal.ID, target.ID)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "share not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to unshare calendar: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "unshared"})
	}
}
