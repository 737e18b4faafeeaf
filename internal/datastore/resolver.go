// resolver.go: bulk entity lookups for archive reference resolution.
//
// The archive codec resolves every reference kind with a single query per
// kind per read. Issuing one fetch per record would violate that design,
// so these helpers only accept id batches.
package datastore

import (
	"fmt"

	"github.com/tphakala/playlog-go/internal/errors"
	"gorm.io/gorm"
)

// SoundsByID fetches the given sounds in one query. Deleted ids are
// absent from the result.
func (ds *DataStore) SoundsByID(ids []uint) (map[uint]*Sound, error) {
	var sounds []Sound
	if err := bulkFind(ds.DB, ids, &sounds, "sounds"); err != nil {
		return nil, err
	}
	result := make(map[uint]*Sound, len(sounds))
	for i := range sounds {
		result[sounds[i].ID] = &sounds[i]
	}
	return result, nil
}

// TracksByID fetches the given tracks in one query.
func (ds *DataStore) TracksByID(ids []uint) (map[uint]*Track, error) {
	var tracks []Track
	if err := bulkFind(ds.DB, ids, &tracks, "tracks"); err != nil {
		return nil, err
	}
	result := make(map[uint]*Track, len(tracks))
	for i := range tracks {
		result[tracks[i].ID] = &tracks[i]
	}
	return result, nil
}

// DiffusionsByID fetches the given diffusions in one query.
func (ds *DataStore) DiffusionsByID(ids []uint) (map[uint]*Diffusion, error) {
	var diffusions []Diffusion
	if err := bulkFind(ds.DB, ids, &diffusions, "diffusions"); err != nil {
		return nil, err
	}
	result := make(map[uint]*Diffusion, len(diffusions))
	for i := range diffusions {
		result[diffusions[i].ID] = &diffusions[i]
	}
	return result, nil
}

func bulkFind(db *gorm.DB, ids []uint, dest any, kind string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := db.Where("id IN ?", ids).Find(dest).Error; err != nil {
		return errors.New(fmt.Errorf("bulk fetching %s: %w", kind, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("id_count", len(ids)).
			Build()
	}
	return nil
}
