package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kalambet/checkmate/internal/storage"
)

type ctxKey int

const userIDKey ctxKey = iota

// tokenStore maps opaque bearer tokens to user IDs. Tokens live for the
// process lifetime; logging in again issues a fresh one.
type tokenStore struct {
	mu     sync.RWMutex
	tokens map[string]int64
}

func newTokenStore() *tokenStore {
	return &tokenStore{tokens: make(map[string]int64)}
}

func (t *tokenStore) issue(userID int64) string {
	token := uuid.New().String()
	t.mu.Lock()
	t.tokens[token] = userID
	t.mu.Unlock()
	return token
}

func (t *tokenStore) lookup(token string) (int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.tokens[token]
	return id, ok
}

// requireUser resolves the bearer token to a user ID and stores it on the
// request context.
func requireUser(tokens *tokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			userID, ok := tokens.lookup(auth[len(prefix):])
			if !ok {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
		})
	}
}

func currentUser(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

func handleRegister(deps Deps, tokens *tokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Username == "" || req.Password == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "username and password are required")
			return
		}

		if _, err := deps.Store.GetUserByUsername(req.Username); err == nil {
			httpError(w, http.StatusConflict, "invalid_request_error", "username already taken")
			return
		} else if !errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to check username: %v", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to hash password: %v", err)
			return
		}

		user, err := deps.Store.CreateUser(req.Username, string(hash))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create user: %v", err)
			return
		}

		// every account starts with a default calendar
		if _, err := deps.Store.CreateCalendar(user.ID, "My Calendar"); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create default calendar: %v", err)
			return
		}

		writeJSON(w, http.StatusCreated, authResponse{
			UserID:   user.ID,
			Username: user.Username,
			Token:    tokens.issue(user.ID),
		})
	}
}

func handleLogin(deps Deps, tokens *tokenStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if !decodeBody(w, r, &req) {
			return
		}

		user, err := deps.Store.GetUserByUsername(req.Username)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusUnauthorized, "authentication_error", "invalid username or password")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to look up user: %v", err)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			httpError(w, http.StatusUnauthorized, "authentication_error", "invalid username or password")
			return
		}

		writeJSON(w, http.StatusOK, authResponse{
			UserID:   user.ID,
			Username: user.Username,
			Token:    tokens.issue(user.ID),
		})
	}
}

func handleMe(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := deps.Store.GetUser(currentUser(r))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to load user: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user_id":  user.ID,
			"username": user.Username,
		})
	}
}
