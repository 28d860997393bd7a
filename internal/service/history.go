package service

import (
	"context"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
	"github.com/MickeyElders/pi-control-program/internal/repository"
)

// Query bounds. Requests outside these ranges are clamped, not rejected.
const (
	minHistoryHours = 0.1
	maxHistoryHours = 168.0
	minHistoryLimit = 50
	maxHistoryLimit = 5000
	minEventLimit   = 20
	maxEventLimit   = 1000
	minRuntimeDays  = 1
	maxRuntimeDays  = 90
)

type HistoryResult struct {
	Hours   float64                `json:"hours"`
	Process []models.ProcessSample `json:"process"`
	System  []models.SystemSample  `json:"system"`
}

type EventsResult struct {
	Events []models.ControlEvent `json:"events"`
}

type RuntimeResult struct {
	Today *models.RuntimeDay  `json:"today"`
	Days  []models.RuntimeDay `json:"days"`
}

// HistoryService serves the persisted sample, event and runtime queries.
type HistoryService struct {
	repos *repository.Repository
	now   func() time.Time
}

func NewHistoryService(repos *repository.Repository) *HistoryService {
	return &HistoryService{repos: repos, now: time.Now}
}

func (s *HistoryService) History(ctx context.Context, hours float64, limit int) (HistoryResult, error) {
	hours = clampFloat(hours, minHistoryHours, maxHistoryHours)
	limit = clampInt(limit, minHistoryLimit, maxHistoryLimit)
	since := s.now().Add(-time.Duration(hours * float64(time.Hour)))

	process, err := s.repos.Samples.ListProcess(ctx, since, limit)
	if err != nil {
		return HistoryResult{}, err
	}
	system, err := s.repos.Samples.ListSystem(ctx, since, limit)
	if err != nil {
		return HistoryResult{}, err
	}
	return HistoryResult{Hours: hours, Process: process, System: system}, nil
}

func (s *HistoryService) Events(ctx context.Context, limit int) (EventsResult, error) {
	limit = clampInt(limit, minEventLimit, maxEventLimit)
	events, err := s.repos.Events.List(ctx, limit)
	if err != nil {
		return EventsResult{}, err
	}
	return EventsResult{Events: events}, nil
}

// Runtime returns the most recent daily rows plus a direct pointer to
// today's row when present.
func (s *HistoryService) Runtime(ctx context.Context, days int) (RuntimeResult, error) {
	days = clampInt(days, minRuntimeDays, maxRuntimeDays)
	rows, err := s.repos.Runtime.ListDays(ctx, days)
	if err != nil {
		return RuntimeResult{}, err
	}
	result := RuntimeResult{Days: rows}
	today := s.now().Format(dayFormat)
	for i := range rows {
		if rows[i].Day == today {
			result.Today = &rows[i]
			break
		}
	}
	return result, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
