package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/playlog-go/internal/datastore"
)

func TestCachedResolver_ServesSecondReadFromCache(t *testing.T) {
	t.Parallel()

	inner := &stubResolver{
		sounds: map[uint]*datastore.Sound{
			11: {ID: 11, Name: "jingle"},
			12: {ID: 12, Name: "sweeper"},
		},
	}
	resolver := NewCachedResolver(inner, time.Minute)

	first, err := resolver.SoundsByID([]uint{11, 12})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, inner.soundCalls)

	second, err := resolver.SoundsByID([]uint{11, 12})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, 1, inner.soundCalls, "cached entities must not be re-fetched")
	assert.Equal(t, "jingle", second[11].Name)
}

func TestCachedResolver_FetchesOnlyMissingIDs(t *testing.T) {
	t.Parallel()

	inner := &stubResolver{
		tracks: map[uint]*datastore.Track{
			21: {ID: 21, Title: "So What"},
			22: {ID: 22, Title: "Naima"},
		},
	}
	resolver := NewCachedResolver(inner, time.Minute)

	_, err := resolver.TracksByID([]uint{21})
	require.NoError(t, err)
	require.Equal(t, 1, inner.trackCalls)

	result, err := resolver.TracksByID([]uint{21, 22})
	require.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, 2, inner.trackCalls, "only uncached ids reach the inner resolver")
}

// TestCachedResolver_MissesAreNotCached: a deleted entity must stay
// resolvable as absent without poisoning reads after a re-create.
func TestCachedResolver_MissesAreNotCached(t *testing.T) {
	t.Parallel()

	inner := &stubResolver{diffusions: map[uint]*datastore.Diffusion{}}
	resolver := NewCachedResolver(inner, time.Minute)

	result, err := resolver.DiffusionsByID([]uint{31})
	require.NoError(t, err)
	assert.Empty(t, result)

	// Entity reappears (e.g. restored from backup): next read sees it.
	inner.diffusions[31] = &datastore.Diffusion{ID: 31}
	result, err = resolver.DiffusionsByID([]uint{31})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestCachedResolver_EmptyInputIssuesNoFetch(t *testing.T) {
	t.Parallel()

	inner := &stubResolver{}
	resolver := NewCachedResolver(inner, time.Minute)

	result, err := resolver.SoundsByID(nil)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Equal(t, 0, inner.soundCalls)
}
