// Package cache stores retrieval outcomes on disk keyed by (source,
// documentID). The store is constructed and owned by the caller and passed
// in explicitly; the retrieval library itself never caches.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hukukpanel/kararfetch/internal/retrieve"
)

// ErrMiss is returned when no fresh entry exists for the key.
var ErrMiss = errors.New("cache: miss")

// Entry wraps a cached outcome with enough metadata for age-based
// invalidation.
type Entry struct {
	Source     string           `json:"source"`
	DocumentID string           `json:"document_id"`
	SavedAt    time.Time        `json:"saved_at"`
	Outcome    retrieve.Outcome `json:"outcome"`
}

// Store writes one JSON file per key under Dir. Deterministic and simple;
// no eviction policy beyond MaxAge.
type Store struct {
	Dir string
	// MaxAge invalidates entries older than this. Zero keeps entries
	// indefinitely.
	MaxAge time.Duration
}

func (s *Store) ensureDir() error {
	if s == nil || s.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s *Store) path(sourceID, documentID string) string {
	h := sha256.Sum256([]byte(sourceID + "\n" + documentID))
	return filepath.Join(s.Dir, hex.EncodeToString(h[:])+".json")
}

// Load returns the cached outcome or ErrMiss. Stale entries are removed on
// read.
func (s *Store) Load(_ context.Context, sourceID, documentID string) (*retrieve.Outcome, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	p := s.path(sourceID, documentID)
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMiss
		}
		return nil, err
	}
	defer f.Close()
	var e Entry
	if err := json.NewDecoder(f).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	if s.MaxAge > 0 && time.Since(e.SavedAt) > s.MaxAge {
		_ = os.Remove(p)
		return nil, ErrMiss
	}
	return &e.Outcome, nil
}

// Save stores an outcome, replacing any previous entry atomically.
func (s *Store) Save(_ context.Context, sourceID, documentID string, outcome retrieve.Outcome) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	e := Entry{
		Source:     sourceID,
		DocumentID: documentID,
		SavedAt:    time.Now().UTC(),
		Outcome:    outcome,
	}
	p := s.path(sourceID, documentID)
	tmp := p + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	if err := json.NewEncoder(f).Encode(&e); err != nil {
		f.Close()
		return fmt.Errorf("encode entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// Clear removes all entries.
func (s *Store) Clear() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, ent.Name())); err != nil {
			return err
		}
	}
	return nil
}
