package service

import (
	"sort"
	"sync"
	"time"

	"valutatrade/internal/domain"
	"valutatrade/internal/infra/storage"
)

// RatesService holds the current rate table in memory and reloads it from the
// persisted snapshot. Readers always see a complete table: the updater writes
// a full snapshot and Reload swaps the table in one assignment.
type RatesService struct {
	mu          sync.RWMutex
	store       *storage.RatesStore
	ttl         time.Duration
	table       *domain.RateTable
	lastRefresh time.Time
}

// NewRatesService loads the snapshot if one exists; otherwise it starts with
// an empty table, which is stale by definition.
func NewRatesService(store *storage.RatesStore, ttl time.Duration) (*RatesService, error) {
	s := &RatesService{store: store, ttl: ttl, table: domain.NewRateTable()}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory table with the persisted snapshot.
func (s *RatesService) Reload() error {
	table, lastRefresh, err := s.store.Snapshot()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.table = table
	s.lastRefresh = lastRefresh
	s.mu.Unlock()
	return nil
}

// Table returns the current rate table.
func (s *RatesService) Table() *domain.RateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// LastRefresh returns when the snapshot was last rebuilt.
func (s *RatesService) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// Pair returns the cached directed pair.
func (s *RatesService) Pair(from, to string) (domain.RatePair, error) {
	p, ok := s.Table().Lookup(from, to)
	if !ok {
		return domain.RatePair{}, &domain.RateNotFoundError{From: from, To: to}
	}
	return p, nil
}

// Reverse returns the opposite-direction pair when one is genuinely cached.
// Reverse rates are never inferred by inverting.
func (s *RatesService) Reverse(from, to string) (domain.RatePair, bool) {
	return s.Table().Lookup(to, from)
}

// IsStale reports whether the pair is older than the configured TTL.
func (s *RatesService) IsStale(from, to string) bool {
	return s.Table().IsStale(from, to, s.ttl)
}

// ListOptions filters the show-rates listing.
type ListOptions struct {
	Currency string // keep pairs whose From matches
	Base     string // keep pairs whose To matches
	Top      int    // keep the N highest rates (0 = all)
}

// List returns cached pairs after filtering. Without Top the result is sorted
// by key; with Top it is sorted by rate, highest first.
func (s *RatesService) List(opts ListOptions) []domain.RatePair {
	pairs := s.Table().Pairs()

	filtered := pairs[:0:0]
	for _, p := range pairs {
		if opts.Currency != "" && p.From != opts.Currency {
			continue
		}
		if opts.Base != "" && p.To != opts.Base {
			continue
		}
		filtered = append(filtered, p)
	}

	if opts.Top > 0 {
		sort.Slice(filtered, func(i, j int) bool {
			return filtered[i].Rate.GreaterThan(filtered[j].Rate)
		})
		if len(filtered) > opts.Top {
			filtered = filtered[:opts.Top]
		}
	}
	return filtered
}
