package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

type SampleSQLite struct {
	db *sql.DB
}

func NewSampleSQLite(db *sql.DB) *SampleSQLite { return &SampleSQLite{db: db} }

// InsertProcess appends one process row. Timestamps are stored in
// epoch milliseconds so range scans stay integer comparisons.
func (r *SampleSQLite) InsertProcess(ctx context.Context, s models.ProcessSample) error {
	if s.TS.IsZero() {
		s.TS = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO process_samples(
			ts, soak_temp, soak_ph, soak_level, fresh_level, heat_level,
			pump1, pump2, pump3, valve_fresh, valve_heat, lift_state, lift_estimated_mm, heater_on
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.TS.UnixMilli(),
		s.SoakTemp,
		s.SoakPH,
		s.SoakLevel,
		s.FreshLevel,
		s.HeatLevel,
		boolToInt(s.Pump1),
		boolToInt(s.Pump2),
		boolToInt(s.Pump3),
		boolToInt(s.ValveFresh),
		boolToInt(s.ValveHeat),
		s.LiftState,
		s.LiftEstMM,
		boolToInt(s.HeaterOn),
	)
	return err
}

func (r *SampleSQLite) InsertSystem(ctx context.Context, s models.SystemSample) error {
	if s.TS.IsZero() {
		s.TS = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO system_samples(
			ts, host, gpio_backend, cpu_percent, memory_percent, disk_percent,
			cpu_temp, uptime_sec, load1, load5, load15
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		s.TS.UnixMilli(),
		s.Host,
		s.GPIOBackend,
		s.CPUPercent,
		s.MemoryPercent,
		s.DiskPercent,
		s.CPUTemp,
		s.UptimeSec,
		s.Load1,
		s.Load5,
		s.Load15,
	)
	return err
}

// ListProcess returns process rows at or after since, oldest first.
func (r *SampleSQLite) ListProcess(ctx context.Context, since time.Time, limit int) ([]models.ProcessSample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ts, soak_temp, soak_ph, soak_level, fresh_level, heat_level,
			pump1, pump2, pump3, valve_fresh, valve_heat, lift_state, lift_estimated_mm, heater_on
		FROM process_samples
		WHERE ts >= ?
		ORDER BY ts ASC
		LIMIT ?
	`, since.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ProcessSample, 0, 64)
	for rows.Next() {
		var (
			s                                            models.ProcessSample
			ts                                           int64
			pump1, pump2, pump3, vFresh, vHeat, heaterOn int
		)
		if err := rows.Scan(
			&ts, &s.SoakTemp, &s.SoakPH, &s.SoakLevel, &s.FreshLevel, &s.HeatLevel,
			&pump1, &pump2, &pump3, &vFresh, &vHeat, &s.LiftState, &s.LiftEstMM, &heaterOn,
		); err != nil {
			return nil, err
		}
		s.TS = time.UnixMilli(ts)
		s.Pump1 = pump1 != 0
		s.Pump2 = pump2 != 0
		s.Pump3 = pump3 != 0
		s.ValveFresh = vFresh != 0
		s.ValveHeat = vHeat != 0
		s.HeaterOn = heaterOn != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SampleSQLite) ListSystem(ctx context.Context, since time.Time, limit int) ([]models.SystemSample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			ts, host, gpio_backend, cpu_percent, memory_percent, disk_percent,
			cpu_temp, uptime_sec, load1, load5, load15
		FROM system_samples
		WHERE ts >= ?
		ORDER BY ts ASC
		LIMIT ?
	`, since.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SystemSample, 0, 64)
	for rows.Next() {
		var (
			s    models.SystemSample
			ts   int64
			host sql.NullString
			gpio sql.NullString
		)
		if err := rows.Scan(
			&ts, &host, &gpio, &s.CPUPercent, &s.MemoryPercent, &s.DiskPercent,
			&s.CPUTemp, &s.UptimeSec, &s.Load1, &s.Load5, &s.Load15,
		); err != nil {
			return nil, err
		}
		s.TS = time.UnixMilli(ts)
		s.Host = host.String
		s.GPIOBackend = gpio.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SampleSQLite) PruneBefore(ctx context.Context, cutoff time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM process_samples WHERE ts < ?`, cutoff.UnixMilli()); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM system_samples WHERE ts < ?`, cutoff.UnixMilli())
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
