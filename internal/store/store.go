// Package store persists per-user profile state and the icon archive in a
// local BoltDB file.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/mmcdole/creatorstats/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketProfiles = []byte("profiles")
	bucketIcons    = []byte("icons")
)

// profileRecord is the stored per-user profile document.
type profileRecord struct {
	SelectedUniverse int64 `json:"selectedUniverse,omitempty"`
	TotalVisits      int64 `json:"totalVisits"`
	TotalPlaying     int64 `json:"totalPlaying"`
	UpdatedAt        int64 `json:"updatedAt"`
}

// ProfileStore implements domain.ProfileStore and domain.IconArchive on top
// of BoltDB. With an empty path it runs memory-only (tests, ephemeral runs).
type ProfileStore struct {
	db *bolt.DB

	// Memory-only fallback when no path is configured
	memMu       sync.Mutex
	memProfiles map[int64]profileRecord
	memIcons    map[int64]string
}

var (
	_ domain.ProfileStore = (*ProfileStore)(nil)
	_ domain.IconArchive  = (*ProfileStore)(nil)
)

// Open opens (or creates) the store at path. An empty path yields a
// memory-only store with no persistence.
func Open(path string) (*ProfileStore, error) {
	if path == "" {
		return &ProfileStore{
			memProfiles: make(map[int64]profileRecord),
			memIcons:    make(map[int64]string),
		}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketProfiles, bucketIcons} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &ProfileStore{db: db}, nil
}

// Close releases the underlying database.
func (s *ProfileStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func userKey(userID int64) []byte {
	return []byte(strconv.FormatInt(userID, 10))
}

func (s *ProfileStore) loadProfile(userID int64) (profileRecord, bool, error) {
	if s.db == nil {
		s.memMu.Lock()
		rec, ok := s.memProfiles[userID]
		s.memMu.Unlock()
		return rec, ok, nil
	}

	var rec profileRecord
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketProfiles).Get(userKey(userID))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("corrupt profile record for user %d: %w", userID, err)
		}
		found = true
		return nil
	})
	return rec, found, err
}

func (s *ProfileStore) saveProfile(userID int64, mutate func(*profileRecord)) error {
	if s.db == nil {
		s.memMu.Lock()
		rec := s.memProfiles[userID]
		mutate(&rec)
		rec.UpdatedAt = time.Now().Unix()
		s.memProfiles[userID] = rec
		s.memMu.Unlock()
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketProfiles)
		var rec profileRecord
		if data := bucket.Get(userKey(userID)); data != nil {
			// A corrupt record is replaced rather than blocking updates.
			_ = json.Unmarshal(data, &rec)
		}
		mutate(&rec)
		rec.UpdatedAt = time.Now().Unix()

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return bucket.Put(userKey(userID), data)
	})
}

// SelectedUniverse returns the user's currently selected universe ID.
func (s *ProfileStore) SelectedUniverse(userID int64) (int64, bool, error) {
	rec, found, err := s.loadProfile(userID)
	if err != nil {
		return 0, false, err
	}
	if !found || rec.SelectedUniverse == 0 {
		return 0, false, nil
	}
	return rec.SelectedUniverse, true, nil
}

// SetSelectedUniverse persists the user's current selection.
func (s *ProfileStore) SetSelectedUniverse(userID, universeID int64) error {
	return s.saveProfile(userID, func(rec *profileRecord) {
		rec.SelectedUniverse = universeID
	})
}

// SetTotals mirrors the latest computed totals into the profile.
func (s *ProfileStore) SetTotals(userID int64, totals domain.Totals) error {
	return s.saveProfile(userID, func(rec *profileRecord) {
		rec.TotalVisits = totals.Visits
		rec.TotalPlaying = totals.Playing
	})
}

// Totals returns the mirrored totals for a user.
func (s *ProfileStore) Totals(userID int64) (domain.Totals, bool, error) {
	rec, found, err := s.loadProfile(userID)
	if err != nil || !found {
		return domain.Totals{}, false, err
	}
	return domain.Totals{Visits: rec.TotalVisits, Playing: rec.TotalPlaying}, true, nil
}

// LoadIcons returns every archived icon URL keyed by universe ID.
func (s *ProfileStore) LoadIcons() (map[int64]string, error) {
	if s.db == nil {
		s.memMu.Lock()
		defer s.memMu.Unlock()
		icons := make(map[int64]string, len(s.memIcons))
		for id, url := range s.memIcons {
			icons[id] = url
		}
		return icons, nil
	}

	icons := make(map[int64]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIcons).ForEach(func(k, v []byte) error {
			id, err := strconv.ParseInt(string(k), 10, 64)
			if err != nil {
				return nil // skip malformed keys
			}
			icons[id] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return icons, nil
}

// SaveIcon archives a resolved icon URL.
func (s *ProfileStore) SaveIcon(universeID int64, url string) error {
	if s.db == nil {
		s.memMu.Lock()
		s.memIcons[universeID] = url
		s.memMu.Unlock()
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketIcons).Put(userKey(universeID), []byte(url))
	})
}
