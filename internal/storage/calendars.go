package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateCalendar inserts a calendar owned by ownerID.
func (s *Store) CreateCalendar(ownerID int64, name string) (Calendar, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO calendars (owner_id, name, created_at) VALUES (?, ?, ?)`,
		ownerID, name, now.Format(time.RFC3339),
	)
	if err != nil {
		return Calendar{}, fmt.Errorf("inserting calendar: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Calendar{}, err
	}
	return Calendar{ID: id, OwnerID: ownerID, Name: name, CreatedAt: now}, nil
}

// GetCalendar fetches one calendar by ID.
func (s *Store) GetCalendar(id int64) (Calendar, error) {
	var c Calendar
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, owner_id, name, created_at FROM calendars WHERE id = ?`, id,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &createdAt)
	if err == sql.ErrNoRows {
		return Calendar{}, ErrNotFound
	}
	if err != nil {
		return Calendar{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Calendar{}, fmt.Errorf("parsing created_at: %w", err)
	}
	c.CreatedAt = t
	return c, nil
}

// ListCalendars returns the calendars the user owns plus those shared with
// them, oldest first.
func (s *Store) ListCalendars(userID int64) ([]Calendar, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.owner_id, c.name, c.created_at FROM calendars c
		WHERE c.owner_id = ?
		UNION
		SELECT c.id, c.owner_id, c.name, c.created_at FROM calendars c
		JOIN calendar_shares sh ON sh.calendar_id = c.id
		WHERE sh.user_id = ?
		ORDER BY 1 ASC`, userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Calendar
	for rows.Next() {
		var c Calendar
		var createdAt string
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &createdAt); err != nil {
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

// RenameCalendar updates a calendar's name.
func (s *Store) RenameCalendar(id int64, name string) error {
	res, err := s.db.Exec(`UPDATE calendars SET name = ? WHERE id = ?`, name, id)
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

// DeleteCalendar removes a calendar and, via cascade, its events and shares.
func (s *Store) DeleteCalendar(id int64) error {
	res, err := s.db.Exec(`DELETE FROM calendars WHERE id = ?`, id)
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

// ShareCalendar grants userID access to the calendar. Sharing twice is a no-op.
func (s *Store) ShareCalendar(calendarID, userID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO calendar_shares (calendar_id, user_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(calendar_id, user_id) DO NOTHING`,
		calendarID, userID, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// UnshareCalendar revokes a previously granted share.
func (s *Store) UnshareCalendar(calendarID, userID int64) error {
	res, err := s.db.Exec(
		`DELETE FROM calendar_shares WHERE calendar_id = ? AND user_id = ?`,
		calendarID, userID,
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

// CanAccessCalendar reports whether the user owns or was granted the calendar.
func (s *Store) CanAccessCalendar(calendarID, userID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM calendars c
		LEFT JOIN calendar_shares sh ON sh.calendar_id = c.id AND sh.user_id = ?
		WHERE c.id = ? AND (c.owner_id = ? OR sh.id IS NOT NULL)`,
		userID, calendarID, userID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
