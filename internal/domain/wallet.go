package domain

import "github.com/shopspring/decimal"

// Wallet holds a single-currency balance. It is owned by exactly one
// portfolio entry and mutated only through Deposit and Withdraw, which keep
// the balance non-negative.
type Wallet struct {
	Currency string          `json:"currency_code"`
	Balance  decimal.Decimal `json:"balance"`
}

// NewWallet creates a zero-balance wallet for the currency.
func NewWallet(currency string) *Wallet {
	return &Wallet{Currency: currency, Balance: decimal.Zero}
}

// Deposit adds the amount to the balance. Negative amounts are rejected.
func (w *Wallet) Deposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// Withdraw removes the amount from the balance. The wallet is left untouched
// when the check fails.
func (w *Wallet) Withdraw(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if amount.GreaterThan(w.Balance) {
		return &InsufficientFundsError{
			Currency:  w.Currency,
			Available: w.Balance,
			Requested: amount,
		}
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Clone returns an independent copy.
func (w *Wallet) Clone() *Wallet {
	return &Wallet{Currency: w.Currency, Balance: w.Balance}
}
