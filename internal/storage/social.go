package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// RequestFriend records a pending friend request from userID to friendID.
func (s *Store) RequestFriend(userID, friendID int64) (Friendship, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO friends (user_id, friend_id, status, created_at) VALUES (?, ?, ?, ?)`,
		userID, friendID, FriendPending, now.Format(time.RFC3339),
	)
	if err != nil {
		return Friendship{}, fmt.Errorf("inserting friend request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Friendship{}, err
	}
	return Friendship{ID: id, UserID: userID, FriendID: friendID, Status: FriendPending, CreatedAt: now}, nil
}

// AcceptFriend flips a pending request addressed to friendID to accepted.
func (s *Store) AcceptFriend(userID, friendID int64) error {
	res, err := s.db.Exec(
		`UPDATE friends SET status = ? WHERE user_id = ? AND friend_id = ? AND status = ?`,
		FriendAccepted, userID, friendID, FriendPending,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveFriend deletes the friendship in either direction.
func (s *Store) RemoveFriend(userID, friendID int64) error {
	res, err := s.db.Exec(`
		DELETE FROM friends
		WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
		userID, friendID, friendID, userID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFriends returns friendships involving the user, pending ones included.
func (s *Store) ListFriends(userID int64) ([]Friendship, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, friend_id, status, created_at FROM friends
		WHERE user_id = ? OR friend_id = ?
		ORDER BY id ASC`, userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Friendship
	for rows.Next() {
		var f Friendship
		var createdAt string
		if err := rows.Scan(&f.ID, &f.UserID, &f.FriendID, &f.Status, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		f.CreatedAt = t
		results = append(results, f)
	}
	return results, rows.Err()
}

// CreatePost inserts a feed post.
func (s *Store) CreatePost(userID int64, content string) (Post, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO posts (user_id, content, created_at) VALUES (?, ?, ?)`,
		userID, content, now.Format(time.RFC3339),
	)
	if err != nil {
		return Post{}, fmt.Errorf("inserting post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Post{}, err
	}
	return Post{ID: id, UserID: userID, Content: content, CreatedAt: now}, nil
}

// GetPost fetches one post by ID.
func (s *Store) GetPost(id int64) (Post, error) {
	var p Post
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, user_id, content, created_at FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.Content, &createdAt)
	if err == sql.ErrNoRows {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Post{}, fmt.Errorf("parsing created_at: %w", err)
	}
	p.CreatedAt = t
	return p, nil
}

// ListPosts returns the newest posts first, up to limit.
func (s *Store) ListPosts(limit int) ([]Post, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, content, created_at FROM posts ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Post
	for rows.Next() {
		var p Post
		var createdAt string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		p.CreatedAt = t
		results = append(results, p)
	}
	return results, rows.Err()
}

// DeletePost removes a post and, via cascade, its comments.
func (s *Store) DeletePost(id int64) error {
	res, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateComment inserts a comment on a post.
func (s *Store) CreateComment(postID, userID int64, content string) (Comment, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO comments (post_id, user_id, content, created_at) VALUES (?, ?, ?, ?)`,
		postID, userID, content, now.Format(time.RFC3339),
	)
	if err != nil {
		return Comment{}, fmt.Errorf("inserting comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Comment{}, err
	}
	return Comment{ID: id, PostID: postID, UserID: userID, Content: content, CreatedAt: now}, nil
}

// ListComments returns a post's comments, oldest first.
func (s *Store) ListComments(postID int64) ([]Comment, error) {
	rows, err := s.db.Query(
		`SELECT id, post_id, user_id, content, created_at FROM comments WHERE post_id = ? ORDER BY id ASC`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Comment
	for rows.Next() {
		var c Comment
		var createdAt string
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &createdAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		c.CreatedAt = t
		results = append(results, c)
	}
	return results, rows.Err()
}

// DeleteComment removes one comment.
func (s *Store) DeleteComment(id int64) error {
	res, err := s.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
