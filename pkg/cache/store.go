// Package cache persists per-project, per-day cost datasets so closed-out
// billing days are never re-queried. Entries carry a maturity marker:
// provisional data may still change upstream and can be refreshed, final
// data is immutable.
package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	internal "costwatch/internal/models"
	"costwatch/pkg/logger"
	"costwatch/pkg/models"
)

// Entry is one cached day of aggregated cost data for a project
type Entry struct {
	ProjectID   string                      `json:"project_id"`
	UsageDate   string                      `json:"usage_date"` // YYYY-MM-DD
	Maturity    internal.CacheMaturity      `json:"maturity"`
	Payload     []models.DailyServiceTotal  `json:"payload"`
	RetrievedAt time.Time                   `json:"retrieved_at"`
}

// Backend abstracts the durable storage under the Store. Get returns
// (nil, nil) on a clean miss and an error on corruption or IO failure.
type Backend interface {
	Get(projectID, date string) (*Entry, error)
	Put(entry *Entry) error
	List(projectID string) ([]string, error)
}

// Store owns cached entry lifetime: create on first fetch, overwrite only
// while provisional, never delete automatically.
type Store struct {
	backend Backend
}

// NewStore wraps a backend in a Store
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Get returns the cached entry for a project day, or nil on a miss.
// A corrupt or unreadable entry degrades to a miss for that date only.
func (s *Store) Get(projectID, date string) *Entry {
	entry, err := s.backend.Get(projectID, date)
	if err != nil {
		logger.Warn("缓存条目读取失败，按未命中处理",
			zap.String("project_id", projectID),
			zap.String("date", date),
			zap.Error(err))
		return nil
	}
	return entry
}

// Put persists a day's payload, computing maturity from the usage date and
// today. A final entry already on disk is never overwritten. Write failures
// are reported so the caller can proceed without caching for this run.
func (s *Store) Put(projectID, date string, payload []models.DailyServiceTotal, today time.Time) error {
	existing, err := s.backend.Get(projectID, date)
	if err == nil && existing != nil && existing.Maturity == internal.CacheMaturityFinal {
		return nil
	}

	entry := &Entry{
		ProjectID:   projectID,
		UsageDate:   date,
		Maturity:    MaturityFor(date, today),
		Payload:     payload,
		RetrievedAt: today,
	}
	if err := s.backend.Put(entry); err != nil {
		logger.Warn("缓存写入失败，本次运行跳过缓存",
			zap.String("project_id", projectID),
			zap.String("date", date),
			zap.Error(err))
		return fmt.Errorf("cache put %s/%s: %w", projectID, date, err)
	}
	return nil
}

// List returns the cached usage dates for a project, unordered
func (s *Store) List(projectID string) ([]string, error) {
	return s.backend.List(projectID)
}

// MaturityFor decides whether data for a usage date is still subject to
// upstream correction. Days in the current month are provisional, as is the
// just-closed month during the first 7 days of the new month while credits
// and late charges settle. Everything older is final.
func MaturityFor(date string, today time.Time) internal.CacheMaturity {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return internal.CacheMaturityProvisional
	}

	dm := monthIndex(d)
	tm := monthIndex(today)

	switch {
	case dm >= tm:
		return internal.CacheMaturityProvisional
	case dm == tm-1 && today.Day() <= 7:
		return internal.CacheMaturityProvisional
	default:
		return internal.CacheMaturityFinal
	}
}

// IsStale reports whether an entry must be recomputed. Absent entries are
// stale, forceRefresh makes everything stale, and a provisional entry goes
// stale once the calendar has rolled past its month.
func IsStale(entry *Entry, today time.Time, forceRefresh bool) bool {
	if entry == nil || forceRefresh {
		return true
	}
	if entry.Maturity != internal.CacheMaturityProvisional {
		return false
	}

	d, err := time.Parse(models.DateLayout, entry.UsageDate)
	if err != nil {
		return true
	}
	return monthIndex(today) > monthIndex(d)
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
