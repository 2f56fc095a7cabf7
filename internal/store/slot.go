package store

import (
	"errors"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrEmpty is returned before the first successful fetch.
	ErrEmpty = errors.New("no weather data yet")
)

// Slot holds the current weather snapshot. Save replaces the snapshot as a
// whole, so readers never see a partially updated record.
type Slot struct {
	mu sync.RWMutex

	current *weather.Snapshot

	// recent queries, newest first, without duplicates
	recent     []string
	maxHistory int
}

// NewSlot creates an empty Slot remembering up to maxHistory recent queries.
// If maxHistory is <= 0, no history is kept.
func NewSlot(maxHistory int) *Slot {
	return &Slot{maxHistory: maxHistory}
}

// Save swaps in a new snapshot and records its query.
func (s *Slot) Save(snapshot weather.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &snapshot

	if s.maxHistory <= 0 || snapshot.Query == "" {
		return
	}
	recent := make([]string, 0, s.maxHistory)
	recent = append(recent, snapshot.Query)
	for _, q := range s.recent {
		if q != snapshot.Query && len(recent) < s.maxHistory {
			recent = append(recent, q)
		}
	}
	s.recent = recent
}

// Latest returns the current snapshot.
func (s *Slot) Latest() (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return weather.Snapshot{}, ErrEmpty
	}
	return *s.current, nil
}

// Recent returns previously searched queries, newest first.
func (s *Slot) Recent() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}
