package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User is a registered account. PasswordHash is a bcrypt digest and never
// leaves the storage and auth layers.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Calendar groups events under an owner and can be shared with other users.
type Calendar struct {
	ID        int64
	OwnerID   int64
	Name      string
	CreatedAt time.Time
}

// Event is a calendar entry. Dates are "YYYY-MM-DD" and times "HH:MM"; an
// all-day event has empty time columns.
type Event struct {
	ID         int64
	CalendarID int64
	Title      string
	StartDate  string
	EndDate    string
	StartTime  string
	EndTime    string
	Color      string
	Memo       string
	CreatedAt  time.Time
}

// Friendship statuses.
const (
	FriendPending  = "pending"
	FriendAccepted = "accepted"
)

// Friendship links two users. Requests start pending and flip to accepted.
type Friendship struct {
	ID        int64
	UserID    int64
	FriendID  int64
	Status    string
	CreatedAt time.Time
}

// Share grants a user read access to someone else's calendar.
type Share struct {
	ID         int64
	CalendarID int64
	UserID     int64
	CreatedAt  time.Time
}

// Post is a feed entry visible to the author's friends.
type Post struct {
	ID        int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}

// Comment is a reply on a post.
type Comment struct {
	ID        int64
	PostID    int64
	UserID    int64
	Content   string
	CreatedAt time.Time
}
