package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/checkmate/internal/storage"
)

func lookupUser(deps Deps, w http.ResponseWriter, username string) (storage.User, bool) {
	user, err := deps.Store.GetUserByUsername(username)
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found", "user not found")
		return storage.User{}, false
	}
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to look up user: %v", err)
		return storage.User{}, false
	}
	return user, true
}

func handleRequestFriend(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		target, ok := lookupUser(deps, w, req.Username)
		if !ok {
			return
		}
		if target.ID == currentUser(r) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "cannot befriend yourself")
			return
		}

		f, err := deps.Store.RequestFriend(currentUser(r), target.ID)
		if err != nil {
			httpError(w, http.StatusConflict, "invalid_request_error", "friend request already exists")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":     f.ID,
			"status": f.Status,
		})
	}
}

// handleAcceptFriend accepts a pending request sent to the current user.
func handleAcceptFriend(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		requester, ok := lookupUser(deps, w, req.Username)
		if !ok {
			return
		}

		err := deps.Store.AcceptFriend(requester.ID, currentUser(r))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "no pending request from that user")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to accept request: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": storage.FriendAccepted})
	}
}

func handleRemoveFriend(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := lookupUser(deps, w, chi.URLParam(r, "username"))
		if !ok {
			return
		}
		err := deps.Store.RemoveFriend(currentUser(r), target.ID)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "friendship not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to remove friend: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

func handleListFriends(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friends, err := deps.Store.ListFriends(currentUser(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list friends: %v", err)
			return
		}

		type friendResponse struct {
			ID       int64  `json:"id"`
			UserID   int64  `json:"user_id"`
			FriendID int64  `json:"friend_id"`
			Status   string `json:"status"`
		}
		out := make([]friendResponse, 0, len(friends))
		for _, f := range friends {
			out = append(out, friendResponse{ID: f.ID, UserID: f.UserID, FriendID: f.FriendID, Status: f.Status})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleCreatePost(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Content == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
			return
		}

		p, err := deps.Store.CreatePost(currentUser(r), req.Content)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create post: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":      p.ID,
			"user_id": p.UserID,
			"content": p.Content,
		})
	}
}

func handleListPosts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		posts, err := deps.Store.ListPosts(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list posts: %v", err)
			return
		}

		type postResponse struct {
			ID      int64  `json:"id"`
			UserID  int64  `json:"user_id"`
			Content string `json:"content"`
		}
		out := make([]postResponse, 0, len(posts))
		for _, p := range posts {
			out = append(out, postResponse{ID: p.ID, UserID: p.UserID, Content: p.Content})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleGetPost(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(r, "id")
		if !valid {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid post id")
			return
		}
		p, err := deps.Store.GetPost(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "post not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get post: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      p.ID,
			"user_id": p.UserID,
			"content": p.Content,
		})
	}
}

func handleDeletePost(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(r, "id")
		if !valid {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid post id")
			return
		}
		p, err := deps.Store.GetPost(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "post not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get post: %v", err)
			return
		}
		if p.UserID != currentUser(r) {
			httpError(w, http.StatusForbidden, "forbidden", "not your post")
			return
		}

		if err := deps.Store.DeletePost(id); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete post: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleCreateComment(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, valid := pathID(r, "id")
		if !valid {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid post id")
			return
		}
		if _, err := deps.Store.GetPost(postID); errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "post not found")
			return
		} else if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get post: %v", err)
			return
		}

		var req struct {
			Content string `json:"content"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Content == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
			return
		}

		c, err := deps.Store.CreateComment(postID, currentUser(r), req.Content)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create comment: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":      c.ID,
			"post_id": c.PostID,
			"user_id": c.UserID,
			"content": c.Content,
		})
	}
}

func handleListComments(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, valid := pathID(r, "id")
		if !valid {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid post id")
			return
		}
		comments, err := deps.Store.ListComments(postID)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list comments: %v", err)
			return
		}

		type commentResponse struct {
			ID      int64  `json:"id"`
			PostID  int64  `json:"post_id"`
			UserID  int64  `json:"user_id"`
			Content string `json:"content"`
		}
		out := make([]commentResponse, 0, len(comments))
		for _, c := range comments {
			out = append(out, commentResponse{ID: c.ID, PostID: c.PostID, UserID: c.UserID, Content: c.Content})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleDeleteComment(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(r, "id")
		if !valid {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid comment id")
			return
		}
		err := deps.Store.DeleteComment(id)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "comment not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to delete comment: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
