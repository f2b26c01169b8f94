package infra

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/eapache/go-resiliency/deadline"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
)

// RatesSink receives the merged result of an update round: the new
// authoritative snapshot plus one history record per pair.
type RatesSink interface {
	SaveSnapshot(pairs []domain.RatePair, refreshedAt time.Time) error
}

// HistoryAppender records per-pair history rows.
type HistoryAppender interface {
	AppendRates(records []domain.RateRecord) error
}

// UpdateReport summarizes one update round.
type UpdateReport struct {
	Merged  int
	Sources []string
	Failed  []string
}

// RatesUpdater pulls from every configured provider, merges the results and
// persists the new snapshot. One provider failing never aborts the round:
// aggregation is best-effort, and a failed provider is skipped for this cycle
// only.
type RatesUpdater struct {
	providers []RateProvider
	catalog   *domain.Catalog
	sink      RatesSink
	history   HistoryAppender
	timeout   time.Duration
	now       func() time.Time
}

// NewRatesUpdater builds an updater. Providers are queried in the given
// order; when two report the same pair, the last one queried wins. history
// may be nil to disable history rows.
func NewRatesUpdater(providers []RateProvider, catalog *domain.Catalog, sink RatesSink, history HistoryAppender, timeout time.Duration) *RatesUpdater {
	return &RatesUpdater{
		providers: providers,
		catalog:   catalog,
		sink:      sink,
		history:   history,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Run executes one update round. sourceFilter narrows the round to providers
// whose name starts with it (case-insensitive); empty means all. The returned
// error is only for persistence failures — provider failures are logged and
// reported in the UpdateReport.
func (u *RatesUpdater) Run(ctx context.Context, sourceFilter string) (*UpdateReport, error) {
	report := &UpdateReport{}
	merged := make(map[string]domain.RatePair)
	fetchedAt := u.now()

	for _, provider := range u.providers {
		if !matchesSource(provider.Name(), sourceFilter) {
			continue
		}

		started := time.Now()
		rates, err := u.fetchBounded(ctx, provider)
		GlobalMetrics.RecordFetch(time.Since(started).Nanoseconds())
		if err != nil {
			GlobalMetrics.RecordProviderFailure()
			slog.Error("failed to fetch rates",
				slog.String("source", provider.Name()),
				slog.Any("error", err),
			)
			report.Failed = append(report.Failed, provider.Name())
			continue
		}

		kept := 0
		for key, value := range rates {
			pair, ok := parsePair(key, value, provider.Name(), fetchedAt)
			if !ok {
				continue
			}
			// Defensive filter: drop symbols a provider returns that the
			// catalog does not know.
			if !u.catalog.Has(pair.From) {
				continue
			}
			merged[pair.Key()] = pair
			kept++
		}

		slog.Info("fetched rates",
			slog.String("source", provider.Name()),
			slog.Int("returned", len(rates)),
			slog.Int("kept", kept),
		)
		report.Sources = append(report.Sources, provider.Name())
	}

	pairs := make([]domain.RatePair, 0, len(merged))
	for _, p := range merged {
		pairs = append(pairs, p)
	}
	report.Merged = len(pairs)

	if err := u.sink.SaveSnapshot(pairs, fetchedAt); err != nil {
		return nil, err
	}

	if u.history != nil {
		records := make([]domain.RateRecord, 0, len(pairs))
		for _, p := range pairs {
			records = append(records, domain.RateRecord{
				ID:           uuid.NewString(),
				FromCurrency: p.From,
				ToCurrency:   p.To,
				Rate:         p.Rate,
				Source:       p.Source,
				RecordedAt:   p.UpdatedAt,
			})
		}
		if err := u.history.AppendRates(records); err != nil {
			// The snapshot is the authoritative state; losing history rows is
			// worth a warning, not a failed round.
			slog.Warn("failed to append rate history", slog.Any("error", err))
		}
	}

	return report, nil
}

// fetchBounded wraps one provider call in a hard wall-clock deadline so a
// misbehaving client cannot stall the whole round.
func (u *RatesUpdater) fetchBounded(ctx context.Context, provider RateProvider) (map[string]decimal.Decimal, error) {
	var rates map[string]decimal.Decimal
	dl := deadline.New(u.timeout)
	err := dl.Run(func(stopper <-chan struct{}) error {
		fetched, err := provider.FetchRates(ctx)
		if err != nil {
			return err
		}
		rates = fetched
		return nil
	})
	if errors.Is(err, deadline.ErrTimedOut) {
		return nil, domain.NewNetworkError("fetch", provider.Name(), err)
	}
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func parsePair(key string, value decimal.Decimal, source string, at time.Time) (domain.RatePair, bool) {
	idx := strings.IndexByte(key, '_')
	if idx <= 0 || idx >= len(key)-1 {
		return domain.RatePair{}, false
	}
	if !value.IsPositive() {
		return domain.RatePair{}, false
	}
	return domain.RatePair{
		From:      key[:idx],
		To:        key[idx+1:],
		Rate:      value,
		Source:    source,
		UpdatedAt: at,
	}, true
}

func matchesSource(name, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(filter))
}
