package storage

import (
	"database/sql"
	"fmt"
	"time"
)

const eventColumns = `id, calendar_id, title, start_date, end_date, start_time, end_time, color, memo, created_at`

// CreateEvent inserts an event and returns it with its assigned ID. An empty
// end date defaults to the start date.
func (s *Store) CreateEvent(e Event) (Event, error) {
	if e.EndDate == "" {
		e.EndDate = e.StartDate
	}
	e.CreatedAt = time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO events (calendar_id, title, start_date, end_date, start_time, end_time, color, memo, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CalendarID, e.Title, e.StartDate, e.EndDate, e.StartTime, e.EndTime, e.Color, e.Memo,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Event{}, fmt.Errorf("inserting event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, err
	}
	e.ID = id
	return e, nil
}

// GetEvent fetches one event by ID.
func (s *Store) GetEvent(id int64) (Event, error) {
	row := s.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return Event{}, ErrNotFound
	}
	return e, err
}

// UpdateEvent replaces the mutable fields of an existing event.
func (s *Store) UpdateEvent(e Event) error {
	if e.EndDate == "" {
		e.EndDate = e.StartDate
	}
	res, err := s.db.Exec(`
		UPDATE events SET title = ?, start_date = ?, end_date = ?, start_time = ?, end_time = ?, color = ?, memo = ?
		WHERE id = ?`,
		e.Title, e.StartDate, e.EndDate, e.StartTime, e.EndTime, e.Color, e.Memo, e.ID,
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

// DeleteEvent removes one event.
func (s *Store) DeleteEvent(id int64) error {
	res, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
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

// ListEvents returns a calendar's events ordered by start date then time.
func (s *Store) ListEvents(calendarID int64) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventColumns+` FROM events WHERE calendar_id = ? ORDER BY start_date ASC, start_time ASC`,
		calendarID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListUserEventsBetween returns events from every calendar the user can see
// whose start date falls in [from, to], ordered by start date then time.
// Dates are "YYYY-MM-DD"; the string ordering matches chronological ordering.
func (s *Store) ListUserEventsBetween(userID int64, from, to string) ([]Event, error) {
	rows, err := s.db.Query(`
		SELECT `+eventColumns+` FROM events
		WHERE start_date >= ? AND start_date <= ? AND calendar_id IN (
			SELECT id FROM calendars WHERE owner_id = ?
			UNION
			SELECT calendar_id FROM calendar_shares WHERE user_id = ?
		)
		ORDER BY start_date ASC, start_time ASC`,
		from, to, userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func scanEvent(scan func(dest ...any) error) (Event, error) {
	var e Event
	var createdAt string
	err := scan(&e.ID, &e.CalendarID, &e.Title, &e.StartDate, &e.EndDate,
		&e.StartTime, &e.EndTime, &e.Color, &e.Memo, &createdAt)
	if err != nil {
		return Event{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Event{}, fmt.Errorf("parsing created_at: %w", err)
	}
	e.CreatedAt = t
	return e, nil
}

func collectEvents(rows *sql.Rows) ([]Event, error) {
	var results []Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
