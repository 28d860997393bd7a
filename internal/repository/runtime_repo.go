package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

type RuntimeSQLite struct {
	db *sql.DB
}

func NewRuntimeSQLite(db *sql.DB) *RuntimeSQLite { return &RuntimeSQLite{db: db} }

// Apply adds one tick's increments to the day's totals, creating the
// row on first touch.
func (r *RuntimeSQLite) Apply(ctx context.Context, day string, inc models.RuntimeIncrement, updatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runtime_daily(
			day, pump1_runtime_sec, pump2_runtime_sec, pump3_runtime_sec, heater_runtime_sec,
			pump1_starts, pump2_starts, pump3_starts, heater_starts,
			valve_fresh_switches, valve_heat_switches, updated_ts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			pump1_runtime_sec = runtime_daily.pump1_runtime_sec + excluded.pump1_runtime_sec,
			pump2_runtime_sec = runtime_daily.pump2_runtime_sec + excluded.pump2_runtime_sec,
			pump3_runtime_sec = runtime_daily.pump3_runtime_sec + excluded.pump3_runtime_sec,
			heater_runtime_sec = runtime_daily.heater_runtime_sec + excluded.heater_runtime_sec,
			pump1_starts = runtime_daily.pump1_starts + excluded.pump1_starts,
			pump2_starts = runtime_daily.pump2_starts + excluded.pump2_starts,
			pump3_starts = runtime_daily.pump3_starts + excluded.pump3_starts,
			heater_starts = runtime_daily.heater_starts + excluded.heater_starts,
			valve_fresh_switches = runtime_daily.valve_fresh_switches + excluded.valve_fresh_switches,
			valve_heat_switches = runtime_daily.valve_heat_switches + excluded.valve_heat_switches,
			updated_ts = excluded.updated_ts
	`,
		day,
		inc.Pump1RuntimeSec,
		inc.Pump2RuntimeSec,
		inc.Pump3RuntimeSec,
		inc.HeaterRuntimeSec,
		inc.Pump1Starts,
		inc.Pump2Starts,
		inc.Pump3Starts,
		inc.HeaterStarts,
		inc.ValveFreshSwitches,
		inc.ValveHeatSwitches,
		updatedAt.UnixMilli(),
	)
	return err
}

// ListDays returns the most recent daily rows, newest day first.
func (r *RuntimeSQLite) ListDays(ctx context.Context, days int) ([]models.RuntimeDay, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			day,
			pump1_runtime_sec, pump2_runtime_sec, pump3_runtime_sec, heater_runtime_sec,
			pump1_starts, pump2_starts, pump3_starts, heater_starts,
			valve_fresh_switches, valve_heat_switches, updated_ts
		FROM runtime_daily
		ORDER BY day DESC
		LIMIT ?
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.RuntimeDay, 0, days)
	for rows.Next() {
		var (
			d  models.RuntimeDay
			ts int64
		)
		if err := rows.Scan(
			&d.Day,
			&d.Pump1RuntimeSec, &d.Pump2RuntimeSec, &d.Pump3RuntimeSec, &d.HeaterRuntimeSec,
			&d.Pump1Starts, &d.Pump2Starts, &d.Pump3Starts, &d.HeaterStarts,
			&d.ValveFreshSwitches, &d.ValveHeatSwitches, &ts,
		); err != nil {
			return nil, err
		}
		d.UpdatedAt = time.UnixMilli(ts)
		out = append(out, d)
	}
	return out, rows.Err()
}

// PruneBefore drops daily rows older than cutoffDay (YYYY-MM-DD).
// Lexical order on the day key matches chronological order.
func (r *RuntimeSQLite) PruneBefore(ctx context.Context, cutoffDay string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM runtime_daily WHERE day < ?`, cutoffDay)
	return err
}
