// query.go: composable filter surface over live (unarchived) log rows
package datastore

import (
	"fmt"
	"time"

	"github.com/tphakala/playlog-go/internal/errors"
	"gorm.io/gorm"
)

// LogQuery is a chainable query over live log rows. Each filter narrows
// the selection and returns the query for further composition; terminal
// methods execute it.
type LogQuery struct {
	db *gorm.DB
}

// Logs starts a new query over live log rows.
func (ds *DataStore) Logs() *LogQuery {
	return &LogQuery{db: ds.DB.Model(&Log{})}
}

// Station keeps logs belonging to the given station.
func (q *LogQuery) Station(id uint) *LogQuery {
	q.db = q.db.Where("station_id = ?", id)
	return q
}

// On keeps logs whose date falls on the given UTC calendar day.
func (q *LogQuery) On(day time.Time) *LogQuery {
	start, end := DayRange(day)
	q.db = q.db.Where("date >= ? AND date < ?", start, end)
	return q
}

// After keeps logs at or after the given instant.
func (q *LogQuery) After(t time.Time) *LogQuery {
	q.db = q.db.Where("date >= ?", t)
	return q
}

// AfterDay keeps logs whose calendar day is the given day or later. This
// is the bare-date form of After: the time of day of the argument is
// ignored.
func (q *LogQuery) AfterDay(day time.Time) *LogQuery {
	start, _ := DayRange(day)
	q.db = q.db.Where("date >= ?", start)
	return q
}

// OnAir keeps on-air events.
func (q *LogQuery) OnAir() *LogQuery {
	q.db = q.db.Where("type = ?", EventOnAir)
	return q
}

// Start keeps start events.
func (q *LogQuery) Start() *LogQuery {
	q.db = q.db.Where("type = ?", EventStart)
	return q
}

// WithSound keeps logs with a sound reference, or without one when
// present is false.
func (q *LogQuery) WithSound(present bool) *LogQuery {
	return q.withRef("sound_id", present)
}

// WithTrack keeps logs with a track reference, or without one when
// present is false.
func (q *LogQuery) WithTrack(present bool) *LogQuery {
	return q.withRef("track_id", present)
}

// WithDiffusion keeps logs with a diffusion reference, or without one
// when present is false.
func (q *LogQuery) WithDiffusion(present bool) *LogQuery {
	return q.withRef("diffusion_id", present)
}

func (q *LogQuery) withRef(column string, present bool) *LogQuery {
	if present {
		q.db = q.db.Where(column + " IS NOT NULL")
	} else {
		q.db = q.db.Where(column + " IS NULL")
	}
	return q
}

// All executes the query and returns matching logs ordered by ascending
// date, with entity references preloaded. Dangling references come back
// as nil fields, never as errors.
func (q *LogQuery) All() ([]Log, error) {
	return q.find("date ASC")
}

// Newest executes the query and returns matching logs ordered by
// descending date (newest first), the ordering the merge engine consumes.
func (q *LogQuery) Newest() ([]Log, error) {
	return q.find("date DESC")
}

func (q *LogQuery) find(order string) ([]Log, error) {
	var logs []Log
	err := q.db.
		Preload("Sound").
		Preload("Track").
		Preload("Diffusion").
		Order(order).
		Find(&logs).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("querying logs: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return logs, nil
}

// Count executes the query and returns the number of matching rows.
func (q *LogQuery) Count() (int64, error) {
	var count int64
	if err := q.db.Count(&count).Error; err != nil {
		return 0, errors.New(fmt.Errorf("counting logs: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return count, nil
}

// IDs executes the query and returns only the matching log ids.
func (q *LogQuery) IDs() ([]uint, error) {
	var ids []uint
	if err := q.db.Pluck("id", &ids).Error; err != nil {
		return nil, errors.New(fmt.Errorf("listing log ids: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return ids, nil
}

// DayRange returns the half-open UTC range [00:00, +24h) covering the
// calendar day of t.
func DayRange(t time.Time) (start, end time.Time) {
	t = t.UTC()
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
