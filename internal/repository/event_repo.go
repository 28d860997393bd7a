package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

// Append inserts a new event. If EventID or OccurredAt are empty, they're set.
func (r *EventSQLite) Append(ctx context.Context, e models.ControlEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO control_events (id, ts, source, target, prev_value, next_value, ok, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.EventID,
		e.OccurredAt.UnixMilli(),
		e.Source,
		e.Target,
		e.PrevValue,
		e.NextValue,
		boolToInt(e.OK),
		e.Message,
	)
	return err
}

// List returns the most recent events, newest first.
func (r *EventSQLite) List(ctx context.Context, limit int) ([]models.ControlEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ts, source, target, prev_value, next_value, ok, message
		FROM control_events
		ORDER BY ts DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ControlEvent, 0, 64)
	for rows.Next() {
		var (
			e          models.ControlEvent
			ts         int64
			ok         int
			prev, next sql.NullString
			msg        sql.NullString
		)
		if err := rows.Scan(&e.EventID, &ts, &e.Source, &e.Target, &prev, &next, &ok, &msg); err != nil {
			return nil, err
		}
		e.OccurredAt = time.UnixMilli(ts)
		e.PrevValue = prev.String
		e.NextValue = next.String
		e.OK = ok != 0
		e.Message = msg.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventSQLite) PruneBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM control_events WHERE ts < ?`, cutoff.UnixMilli())
	return err
}
