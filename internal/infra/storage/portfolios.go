package storage

import (
	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
)

const portfoliosDocument = "portfolios.json"

// storedPortfolio is the on-disk shape: one entry per user, wallets as a
// code → balance mapping.
type storedPortfolio struct {
	UserID  int                        `json:"user_id"`
	Wallets map[string]decimal.Decimal `json:"wallets"`
}

// PortfolioStore keeps all portfolios in a single JSON document. Saves are
// whole-document overwrites, which is what makes a two-wallet trade atomic
// from the reader's point of view.
type PortfolioStore struct {
	docs *DocumentStore
}

// NewPortfolioStore wraps a document store.
func NewPortfolioStore(docs *DocumentStore) *PortfolioStore {
	return &PortfolioStore{docs: docs}
}

func (s *PortfolioStore) loadAll() ([]storedPortfolio, error) {
	var stored []storedPortfolio
	if _, err := s.docs.Load(portfoliosDocument, &stored); err != nil {
		return nil, &domain.SystemError{Op: "load portfolios", Err: err}
	}
	return stored, nil
}

// Get returns the portfolio for a user. The second return value is false when
// the user has no stored portfolio.
func (s *PortfolioStore) Get(userID int) (*domain.Portfolio, bool, error) {
	stored, err := s.loadAll()
	if err != nil {
		return nil, false, err
	}
	for _, sp := range stored {
		if sp.UserID != userID {
			continue
		}
		wallets := make([]*domain.Wallet, 0, len(sp.Wallets))
		for code, balance := range sp.Wallets {
			wallets = append(wallets, &domain.Wallet{Currency: code, Balance: balance})
		}
		return domain.RestorePortfolio(sp.UserID, wallets), true, nil
	}
	return nil, false, nil
}

// Put inserts or replaces the user's portfolio and persists the document in
// one write.
func (s *PortfolioStore) Put(p *domain.Portfolio) error {
	stored, err := s.loadAll()
	if err != nil {
		return err
	}

	wallets := make(map[string]decimal.Decimal)
	for _, w := range p.Wallets() {
		wallets[w.Currency] = w.Balance
	}
	entry := storedPortfolio{UserID: p.UserID, Wallets: wallets}

	replaced := false
	for i := range stored {
		if stored[i].UserID == p.UserID {
			stored[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		stored = append(stored, entry)
	}

	if err := s.docs.Save(portfoliosDocument, stored); err != nil {
		return &domain.SystemError{Op: "save portfolios", Err: err}
	}
	return nil
}
