package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Event is a goal event on the athlete's calendar.
type Event struct {
	ID          int64
	Date        time.Time
	Priority    string
	Description string
}

// eventRepository persists goal events.
type eventRepository struct {
	baseRepository
}

var validPriorities = map[string]bool{"A": true, "B": true, "C": true}

// Add stores a new event and returns it with the assigned id.
func (r *eventRepository) Add(ctx context.Context, e Event) (Event, error) {
	if !validPriorities[e.Priority] {
		return Event{}, fmt.Errorf("invalid event priority %q", e.Priority)
	}
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO goal_events (event_date, priority, description)
		VALUES (?, ?, ?)`,
		formatDate(e.Date), e.Priority, e.Description)
	if err != nil {
		return Event{}, fmt.Errorf("insert goal event: %w", err)
	}
	if e.ID, err = result.LastInsertId(); err != nil {
		return Event{}, fmt.Errorf("goal event id: %w", err)
	}
	return e, nil
}

// Remove deletes an event. Removing a missing event returns ErrNotFound.
func (r *eventRepository) Remove(ctx context.Context, id int64) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM goal_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("goal event rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("goal event %d: %w", id, ErrNotFound)
	}
	return nil
}

// ReplaceFuture swaps every event on or after the given date for the
// provider's version. Locally added past events are left untouched.
func (r *eventRepository) ReplaceFuture(ctx context.Context, from time.Time, events []Event) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM goal_events WHERE event_date >= ?`, formatDate(from)); err != nil {
		return fmt.Errorf("delete future goal events: %w", err)
	}
	for _, e := range events {
		if !validPriorities[e.Priority] {
			return fmt.Errorf("invalid event priority %q", e.Priority)
		}
		if e.Date.Before(from) {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO goal_events (event_date, priority, description)
			VALUES (?, ?, ?)`,
			formatDate(e.Date), e.Priority, e.Description); err != nil {
			return fmt.Errorf("insert goal event %s: %w", formatDate(e.Date), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List returns events on or after the given date, soonest first.
func (r *eventRepository) List(ctx context.Context, from time.Time) (_ []Event, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, event_date, priority, description
		FROM goal_events
		WHERE event_date >= ?
		ORDER BY event_date, priority`,
		formatDate(from))
	if err != nil {
		return nil, fmt.Errorf("query goal events: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var events []Event
	for rows.Next() {
		var (
			e       Event
			dateStr string
		)
		if err = rows.Scan(&e.ID, &dateStr, &e.Priority, &e.Description); err != nil {
			return nil, fmt.Errorf("scan goal event: %w", err)
		}
		if e.Date, err = parseDate(dateStr); err != nil {
			return nil, fmt.Errorf("parse event date: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal events: %w", err)
	}

	return events, nil
}

// Target returns the event that anchors phase planning: the earliest future
// A-priority event, or the earliest future event of any priority when no
// A-event exists. Returns ErrNotFound when the calendar is empty.
func (r *eventRepository) Target(ctx context.Context, from time.Time) (Event, error) {
	var (
		e       Event
		dateStr string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, event_date, priority, description
		FROM goal_events
		WHERE event_date >= ?
		ORDER BY priority = 'A' DESC, event_date, priority
		LIMIT 1`,
		formatDate(from)).Scan(&e.ID, &dateStr, &e.Priority, &e.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, fmt.Errorf("query target event: %w", err)
	}
	if e.Date, err = parseDate(dateStr); err != nil {
		return Event{}, fmt.Errorf("parse target event date: %w", err)
	}
	return e, nil
}
