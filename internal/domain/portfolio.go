package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Portfolio is one user's collection of wallets, keyed by currency code.
// Every registered user starts with a base-currency wallet; other wallets are
// created lazily on first purchase.
type Portfolio struct {
	UserID  int
	wallets map[string]*Wallet
}

// NewPortfolio creates a portfolio holding a single zero-balance wallet for
// the base currency.
func NewPortfolio(userID int, baseCurrency string) *Portfolio {
	return &Portfolio{
		UserID: userID,
		wallets: map[string]*Wallet{
			baseCurrency: NewWallet(baseCurrency),
		},
	}
}

// RestorePortfolio rebuilds a portfolio from persisted wallets.
func RestorePortfolio(userID int, wallets []*Wallet) *Portfolio {
	m := make(map[string]*Wallet, len(wallets))
	for _, w := range wallets {
		m[w.Currency] = w
	}
	return &Portfolio{UserID: userID, wallets: m}
}

// AddCurrency inserts a zero-balance wallet for the code.
func (p *Portfolio) AddCurrency(code string) error {
	if _, ok := p.wallets[code]; ok {
		return &DuplicateCurrencyError{Code: code}
	}
	p.wallets[code] = NewWallet(code)
	return nil
}

// Wallet returns the wallet for the code.
func (p *Portfolio) Wallet(code string) (*Wallet, error) {
	w, ok := p.wallets[code]
	if !ok {
		return nil, &WalletNotFoundError{Code: code}
	}
	return w, nil
}

// EnsureWallet returns the wallet for the code, creating a zero-balance one
// if the currency has never been held.
func (p *Portfolio) EnsureWallet(code string) *Wallet {
	w, ok := p.wallets[code]
	if !ok {
		w = NewWallet(code)
		p.wallets[code] = w
	}
	return w
}

// Wallets returns all wallets sorted by currency code.
func (p *Portfolio) Wallets() []*Wallet {
	result := make([]*Wallet, 0, len(p.wallets))
	for _, w := range p.wallets {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Currency < result[j].Currency
	})
	return result
}

// TotalValue sums every wallet converted into the base currency. The second
// return value is false when any wallet's currency has no conversion: the
// valuation is unavailable, which is distinct from a true zero total.
func (p *Portfolio) TotalValue(rates *RateTable, baseCurrency string) (decimal.Decimal, bool) {
	total := decimal.Zero
	for _, w := range p.wallets {
		value, err := rates.Convert(w.Balance, w.Currency, baseCurrency)
		if err != nil {
			return decimal.Zero, false
		}
		total = total.Add(value)
	}
	return total, true
}

// Clone returns a deep copy. The ledger mutates the copy and persists it in
// one write so a failed trade never leaves partial state behind.
func (p *Portfolio) Clone() *Portfolio {
	wallets := make(map[string]*Wallet, len(p.wallets))
	for code, w := range p.wallets {
		wallets[code] = w.Clone()
	}
	return &Portfolio{UserID: p.UserID, wallets: wallets}
}
