package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestWallet_Deposit(t *testing.T) {
	t.Run("adds to balance", func(t *testing.T) {
		w := NewWallet("USD")
		if err := w.Deposit(decimal.NewFromInt(100)); err != nil {
			t.Fatalf("Deposit failed: %v", err)
		}
		if err := w.Deposit(decimal.NewFromFloat(0.5)); err != nil {
			t.Fatalf("Deposit failed: %v", err)
		}
		if !w.Balance.Equal(decimal.NewFromFloat(100.5)) {
			t.Errorf("balance = %s, want 100.5", w.Balance)
		}
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		w := NewWallet("USD")
		err := w.Deposit(decimal.NewFromInt(-1))
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if !w.Balance.IsZero() {
			t.Errorf("balance changed on rejected deposit: %s", w.Balance)
		}
	})
}

func TestWallet_Withdraw(t *testing.T) {
	t.Run("decrements balance", func(t *testing.T) {
		w := NewWallet("USD")
		w.Deposit(decimal.NewFromInt(100))
		if err := w.Withdraw(decimal.NewFromInt(40)); err != nil {
			t.Fatalf("Withdraw failed: %v", err)
		}
		if !w.Balance.Equal(decimal.NewFromInt(60)) {
			t.Errorf("balance = %s, want 60", w.Balance)
		}
	})

	t.Run("rejects overdraft without mutation", func(t *testing.T) {
		w := NewWallet("USD")
		w.Deposit(decimal.NewFromInt(10))

		err := w.Withdraw(decimal.NewFromInt(11))
		var ife *InsufficientFundsError
		if !errors.As(err, &ife) {
			t.Fatalf("expected InsufficientFundsError, got %v", err)
		}
		if !ife.Available.Equal(decimal.NewFromInt(10)) {
			t.Errorf("Available = %s, want 10", ife.Available)
		}
		if !ife.Requested.Equal(decimal.NewFromInt(11)) {
			t.Errorf("Requested = %s, want 11", ife.Requested)
		}
		if !w.Balance.Equal(decimal.NewFromInt(10)) {
			t.Errorf("balance changed on rejected withdraw: %s", w.Balance)
		}
	})

	t.Run("allows withdrawing full balance", func(t *testing.T) {
		w := NewWallet("USD")
		w.Deposit(decimal.NewFromInt(10))
		if err := w.Withdraw(decimal.NewFromInt(10)); err != nil {
			t.Fatalf("Withdraw failed: %v", err)
		}
		if !w.Balance.IsZero() {
			t.Errorf("balance = %s, want 0", w.Balance)
		}
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		w := NewWallet("USD")
		w.Deposit(decimal.NewFromInt(10))
		var ve *ValidationError
		if err := w.Withdraw(decimal.NewFromInt(-5)); !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

// Balance must stay non-negative for any deposit/withdraw sequence.
func TestWallet_BalanceNeverNegative(t *testing.T) {
	w := NewWallet("BTC")
	ops := []struct {
		withdraw bool
		amount   float64
	}{
		{false, 1.5},
		{true, 0.7},
		{true, 2.0}, // rejected
		{false, 0.2},
		{true, 1.0},
		{true, 0.1}, // rejected: only 0 left after 1.5-0.7+0.2-1.0 = 0
	}
	for _, op := range ops {
		amount := decimal.NewFromFloat(op.amount)
		if op.withdraw {
			w.Withdraw(amount)
		} else {
			w.Deposit(amount)
		}
		if w.Balance.IsNegative() {
			t.Fatalf("balance went negative: %s", w.Balance)
		}
	}
	if !w.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", w.Balance)
	}
}
