package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RatePair is one directed conversion entry: Rate is the amount of To per
// unit of From. A_B and B_A are stored independently, never inverted.
type RatePair struct {
	From      string
	To        string
	Rate      decimal.Decimal
	Source    string
	UpdatedAt time.Time
}

// Key returns the canonical "FROM_TO" pair key.
func (p RatePair) Key() string {
	return PairKey(p.From, p.To)
}

// PairKey builds the canonical key for a directed pair.
func PairKey(from, to string) string {
	return from + "_" + to
}

// RateTable is an immutable-per-query view of the cached rates. The updater
// replaces it wholesale; readers never see a partially merged table.
type RateTable struct {
	pairs map[string]RatePair
}

// NewRateTable builds a table from pairs. Later duplicates of a key win.
func NewRateTable(pairs ...RatePair) *RateTable {
	m := make(map[string]RatePair, len(pairs))
	for _, p := range pairs {
		m[p.Key()] = p
	}
	return &RateTable{pairs: m}
}

// Lookup returns the stored pair, if any.
func (t *RateTable) Lookup(from, to string) (RatePair, bool) {
	p, ok := t.pairs[PairKey(from, to)]
	return p, ok
}

// Rate returns the conversion rate from one currency to another. Converting a
// currency to itself is always 1.
func (t *RateTable) Rate(from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	p, ok := t.pairs[PairKey(from, to)]
	if !ok {
		return decimal.Zero, &RateNotFoundError{From: from, To: to}
	}
	return p.Rate, nil
}

// Convert converts amount from one currency to another using the directed
// pair. The amount passes through unchanged when from == to.
func (t *RateTable) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, err := t.Rate(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// IsStale reports whether a pair needs a refresh before trusted use. The
// fail-safe default is stale: a missing pair or an unset timestamp forces a
// refresh rather than serving possibly-wrong data.
func (t *RateTable) IsStale(from, to string, ttl time.Duration) bool {
	p, ok := t.pairs[PairKey(from, to)]
	if !ok || p.UpdatedAt.IsZero() {
		return true
	}
	return time.Since(p.UpdatedAt) > ttl
}

// Pairs returns all entries sorted by key.
func (t *RateTable) Pairs() []RatePair {
	result := make([]RatePair, 0, len(t.pairs))
	for _, p := range t.pairs {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key() < result[j].Key()
	})
	return result
}

// Len returns the number of stored pairs.
func (t *RateTable) Len() int {
	return len(t.pairs)
}
