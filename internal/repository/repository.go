package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

type SampleRepo interface {
	InsertProcess(ctx context.Context, s models.ProcessSample) error
	InsertSystem(ctx context.Context, s models.SystemSample) error
	ListProcess(ctx context.Context, since time.Time, limit int) ([]models.ProcessSample, error)
	ListSystem(ctx context.Context, since time.Time, limit int) ([]models.SystemSample, error)
	PruneBefore(ctx context.Context, cutoff time.Time) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.ControlEvent) error
	List(ctx context.Context, limit int) ([]models.ControlEvent, error)
	PruneBefore(ctx context.Context, cutoff time.Time) error
}

type RuntimeRepo interface {
	Apply(ctx context.Context, day string, inc models.RuntimeIncrement, updatedAt time.Time) error
	ListDays(ctx context.Context, days int) ([]models.RuntimeDay, error)
	PruneBefore(ctx context.Context, cutoffDay string) error
}

type KVRepo interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
}

type Repository struct {
	Samples SampleRepo
	Events  EventRepo
	Runtime RuntimeRepo
	KV      KVRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Samples: NewSampleSQLite(db),
		Events:  NewEventSQLite(db),
		Runtime: NewRuntimeSQLite(db),
		KV:      NewKVSQLite(db),
	}
}
