package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
)

const ratesDocument = "rates.json"

// storedRates is the snapshot document: the merged pairs of the latest
// update round plus the refresh timestamp.
type storedRates struct {
	Pairs       map[string]storedPair `json:"pairs"`
	LastRefresh time.Time             `json:"last_refresh"`
}

type storedPair struct {
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RatesStore persists the authoritative rate table snapshot.
type RatesStore struct {
	docs *DocumentStore
}

// NewRatesStore wraps a document store.
func NewRatesStore(docs *DocumentStore) *RatesStore {
	return &RatesStore{docs: docs}
}

// Snapshot loads the cached rate table. A missing document yields an empty
// table, which every staleness check treats as needing refresh.
func (s *RatesStore) Snapshot() (*domain.RateTable, time.Time, error) {
	var stored storedRates
	found, err := s.docs.Load(ratesDocument, &stored)
	if err != nil {
		return nil, time.Time{}, &domain.SystemError{Op: "load rates", Err: err}
	}
	if !found {
		return domain.NewRateTable(), time.Time{}, nil
	}

	pairs := make([]domain.RatePair, 0, len(stored.Pairs))
	for key, sp := range stored.Pairs {
		from, to, ok := splitPairKey(key)
		if !ok {
			continue
		}
		pairs = append(pairs, domain.RatePair{
			From:      from,
			To:        to,
			Rate:      sp.Rate,
			Source:    sp.Source,
			UpdatedAt: sp.UpdatedAt,
		})
	}
	return domain.NewRateTable(pairs...), stored.LastRefresh, nil
}

// SaveSnapshot overwrites the snapshot with exactly the given pairs. A pair
// missing from this round is dropped, not carried over from the previous one.
func (s *RatesStore) SaveSnapshot(pairs []domain.RatePair, refreshedAt time.Time) error {
	stored := storedRates{
		Pairs:       make(map[string]storedPair, len(pairs)),
		LastRefresh: refreshedAt,
	}
	for _, p := range pairs {
		stored.Pairs[p.Key()] = storedPair{
			Rate:      p.Rate,
			Source:    p.Source,
			UpdatedAt: p.UpdatedAt,
		}
	}
	if err := s.docs.Save(ratesDocument, stored); err != nil {
		return &domain.SystemError{Op: "save rates", Err: err}
	}
	return nil
}

func splitPairKey(key string) (from, to string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '_' {
			return key[:i], key[i+1:], i > 0 && i < len(key)-1
		}
	}
	return "", "", false
}
