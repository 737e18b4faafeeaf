// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"time"

	"github.com/tphakala/playlog-go/internal/conf"
	"github.com/tphakala/playlog-go/internal/errors"
	"gorm.io/gorm"
)

// Interface abstracts the underlying database implementation and defines
// the operations the engine needs from live storage.
type Interface interface {
	Open() error
	Close() error

	SaveLog(entry *Log) error
	GetLog(id uint) (Log, error)
	Logs() *LogQuery
	DeleteLogs(ids []uint) error

	SaveStation(station *Station) error
	GetStation(id uint) (Station, error)
	SaveSound(sound *Sound) error
	DeleteSound(id uint) error
	SaveTrack(track *Track) error
	DeleteTrack(id uint) error
	SaveDiffusion(diffusion *Diffusion) error
	DeleteDiffusion(id uint) error

	// DiffusionsBetween returns the station's scheduled diffusions whose
	// window intersects [from, to), ordered by ascending start time.
	DiffusionsBetween(station uint, from, to time.Time) ([]Diffusion, error)

	// Bulk entity lookups, one query per kind. Missing ids are simply
	// absent from the returned map.
	SoundsByID(ids []uint) (map[uint]*Sound, error)
	TracksByID(ids []uint) (map[uint]*Track, error)
	DiffusionsByID(ids []uint) (map[uint]*Diffusion, error)

	// Transaction runs fn against a transactional view of the store and
	// commits when fn returns nil, rolling back otherwise.
	Transaction(fn func(tx *DataStore) error) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided settings.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// SaveLog stores a single broadcast event.
func (ds *DataStore) SaveLog(entry *Log) error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	if err := ds.DB.Create(entry).Error; err != nil {
		return errors.New(fmt.Errorf("saving log: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("station_id", entry.StationID).
			Build()
	}
	return nil
}

// GetLog retrieves a log by its ID, with references preloaded.
func (ds *DataStore) GetLog(id uint) (Log, error) {
	var entry Log
	err := ds.DB.
		Preload("Sound").
		Preload("Track").
		Preload("Diffusion").
		First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Log{}, errors.New(fmt.Errorf("log %d: %w", id, err)).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return Log{}, errors.New(fmt.Errorf("getting log %d: %w", id, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return entry, nil
}

// DeleteLogs removes the logs with the given ids. A nil or empty slice
// is a no-op.
func (ds *DataStore) DeleteLogs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ds.DB.Delete(&Log{}, ids).Error; err != nil {
		return errors.New(fmt.Errorf("deleting %d logs: %w", len(ids), err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}

// SaveStation stores a station.
func (ds *DataStore) SaveStation(station *Station) error {
	return saveEntity(ds.DB, station, "station")
}

// GetStation retrieves a station by its ID.
func (ds *DataStore) GetStation(id uint) (Station, error) {
	var station Station
	if err := ds.DB.First(&station, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Station{}, errors.New(fmt.Errorf("station %d: %w", id, err)).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return Station{}, errors.New(fmt.Errorf("getting station %d: %w", id, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return station, nil
}

// SaveSound stores a sound.
func (ds *DataStore) SaveSound(sound *Sound) error {
	return saveEntity(ds.DB, sound, "sound")
}

// DeleteSound removes a sound; logs referencing it keep their rows with
// a nulled reference.
func (ds *DataStore) DeleteSound(id uint) error {
	return deleteEntity(ds.DB, &Sound{}, id, "sound")
}

// SaveTrack stores a track.
func (ds *DataStore) SaveTrack(track *Track) error {
	return saveEntity(ds.DB, track, "track")
}

// DeleteTrack removes a track.
func (ds *DataStore) DeleteTrack(id uint) error {
	return deleteEntity(ds.DB, &Track{}, id, "track")
}

// SaveDiffusion stores a scheduled diffusion.
func (ds *DataStore) SaveDiffusion(diffusion *Diffusion) error {
	return saveEntity(ds.DB, diffusion, "diffusion")
}

// DeleteDiffusion removes a diffusion.
func (ds *DataStore) DeleteDiffusion(id uint) error {
	return deleteEntity(ds.DB, &Diffusion{}, id, "diffusion")
}

// DiffusionsBetween returns the station's diffusions intersecting
// [from, to), ordered by ascending start time as the merge engine expects.
func (ds *DataStore) DiffusionsBetween(station uint, from, to time.Time) ([]Diffusion, error) {
	var diffusions []Diffusion
	err := ds.DB.
		Where("station_id = ?", station).
		Where("end_at > ? AND start_at < ?", from, to).
		Order("start_at ASC").
		Find(&diffusions).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("querying diffusions: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("station_id", station).
			Build()
	}
	return diffusions, nil
}

// Transaction runs fn against a transactional datastore view.
func (ds *DataStore) Transaction(fn func(tx *DataStore) error) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&DataStore{DB: tx})
	})
}

func saveEntity(db *gorm.DB, entity any, kind string) error {
	if err := db.Save(entity).Error; err != nil {
		return errors.New(fmt.Errorf("saving %s: %w", kind, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}

func deleteEntity(db *gorm.DB, model any, id uint, kind string) error {
	if err := db.Delete(model, id).Error; err != nil {
		return errors.New(fmt.Errorf("deleting %s %d: %w", kind, id, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}
