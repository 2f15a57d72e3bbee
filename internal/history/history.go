// Package history keeps the local, bounded log of item views.
//
// The log is a JSON array stored under a single backend key. It is capped
// at a maximum length (oldest entries dropped first) and filtered to a
// retention window on every read. Expired entries stay in storage until the
// next write or an explicit Compact.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tdfoco/viewlog/internal/storage"
)

const (
	DefaultKey           = "tdfoco_view_history"
	DefaultMaxEntries    = 100
	DefaultRetentionDays = 30
)

// ViewEvent is one completed view of a content item.
type ViewEvent struct {
	ItemID string `json:"itemId"`
	// Timestamp is milliseconds since the Unix epoch.
	Timestamp       int64   `json:"timestamp"`
	DurationSeconds float64 `json:"durationSeconds"`
	Category        string  `json:"category,omitempty"`
}

// Time returns the event timestamp as a time.Time.
func (e ViewEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Options configures a Store. Zero values fall back to the defaults.
type Options struct {
	Key           string
	MaxEntries    int
	RetentionDays int
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Store is the view history log. It is safe for concurrent use within a
// process; concurrent writers in other processes are last-writer-wins.
type Store struct {
	backend    storage.Backend
	key        string
	maxEntries int
	window     time.Duration
	now        func() time.Time
	logger     zerolog.Logger

	mu sync.Mutex
}

// NewStore creates a Store over backend.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewStore(backend storage.Backend, opts Options, logger zerolog.Logger) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = DefaultRetentionDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		backend:    backend,
		key:        opts.Key,
		maxEntries: opts.MaxEntries,
		window:     time.Duration(opts.RetentionDays) * 24 * time.Hour,
		now:        opts.Now,
		logger:     logger.With().Str("component", "history").Logger(),
	}
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// MaxEntries returns the log cap.
func (s *Store) MaxEntries() int {
	return s.maxEntries
}

// Window returns the retention window.
func (s *Store) Window() time.Duration {
	return s.window
}

// TrackView appends a view of itemID stamped with the current time and
// persists the log, keeping only the most recent MaxEntries entries.
// It returns the event and whether it was persisted. Failures are logged
// and otherwise ignored: losing history must never break browsing.
func (s *Store) TrackView(ctx context.Context, itemID string, durationSeconds float64, category string) (ViewEvent, bool) {
	if durationSeconds < 0 {
		s.logger.Debug().
			Str("item_id", itemID).
			Float64("duration_seconds", durationSeconds).
			Msg("negative duration clamped to zero")
		durationSeconds = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	event := ViewEvent{
		ItemID:          itemID,
		Timestamp:       now.UnixMilli(),
		DurationSeconds: durationSeconds,
		Category:        category,
	}

	events, err := s.load(ctx)
	if err != nil {
		var de *decodeError
		if !errors.As(err, &de) {
			s.logger.Error().Err(err).Str("item_id", itemID).Msg("tracking view: storage unavailable")
			return event, false
		}
		s.logger.Warn().Err(err).Msg("discarding unreadable view history")
		events = nil
	}

	events = append(s.within(events, now), event)

	if len(events) > s.maxEntries {
		events = events[len(events)-s.maxEntries:]
	}

	if err := s.save(ctx, events); err != nil {
		s.logger.Error().Err(err).Str("item_id", itemID).Msg("tracking view: write failed")
		return event, false
	}

	s.logger.Debug().
		Str("item_id", itemID).
		Str("category", category).
		Int("entries", len(events)).
		Msg("view tracked")
	return event, true
}

// History returns the logged views inside the retention window, oldest
// first. It never writes to storage. Unreadable state yields an empty log.
func (s *Store) History(ctx context.Context) []ViewEvent {
	events, err := s.load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("reading view history")
		return []ViewEvent{}
	}
	return s.within(events, s.now())
}

// Raw returns the stored log without applying the retention window.
func (s *Store) Raw(ctx context.Context) ([]ViewEvent, error) {
	events, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []ViewEvent{}
	}
	return events, nil
}

// Clear erases the persisted log.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Remove(ctx, s.key); err != nil {
		s.logger.Error().Err(err).Msg("clearing view history")
		return
	}
	s.logger.Debug().Msg("view history cleared")
}

// Compact rewrites the stored log without its expired entries and returns
// how many were dropped. With dryRun nothing is written.
func (s *Store) Compact(ctx context.Context, dryRun bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load history: %w", err)
	}

	kept := s.within(events, s.now())
	removed := len(events) - len(kept)
	if dryRun || removed == 0 {
		return removed, nil
	}

	if err := s.save(ctx, kept); err != nil {
		return 0, fmt.Errorf("save history: %w", err)
	}
	return removed, nil
}

// Cutoff returns the oldest timestamp (exclusive) still visible at now.
func (s *Store) Cutoff(now time.Time) time.Time {
	return now.Add(-s.window)
}

// within filters events to those strictly newer than the retention cutoff.
func (s *Store) within(events []ViewEvent, now time.Time) []ViewEvent {
	cutoff := s.Cutoff(now).UnixMilli()
	kept := make([]ViewEvent, 0, len(events))
	for _, e := range events {
		if e.Timestamp > cutoff {
			kept = append(kept, e)
		}
	}
	return kept
}

// decodeError marks persisted state that exists but cannot be parsed.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode view history: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func (s *Store) load(ctx context.Context) ([]ViewEvent, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var events []ViewEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return nil, &decodeError{err: err}
	}
	return events, nil
}

func (s *Store) save(ctx context.Context, events []ViewEvent) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode view history: %w", err)
	}
	return s.backend.Set(ctx, s.key, string(data))
}
