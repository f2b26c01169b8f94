package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
	"valutatrade/internal/infra/storage"
)

type fixedRates struct {
	table *domain.RateTable
}

func (f *fixedRates) Table() *domain.RateTable { return f.table }

type recordingTradeLog struct {
	trades []domain.Transaction
	err    error
}

func (r *recordingTradeLog) AppendTrade(tx domain.Transaction) error {
	if r.err != nil {
		return r.err
	}
	r.trades = append(r.trades, tx)
	return nil
}

func setupEngine(t *testing.T, usdBalance float64) (*Engine, *storage.PortfolioStore, *domain.User, *recordingTradeLog) {
	t.Helper()
	docs, err := storage.NewDocumentStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDocumentStore failed: %v", err)
	}
	portfolios := storage.NewPortfolioStore(docs)

	user := &domain.User{ID: 1, Username: "alice", RegisteredAt: time.Now()}
	p := domain.NewPortfolio(user.ID, "USD")
	p.EnsureWallet("USD").Deposit(decimal.NewFromFloat(usdBalance))
	if err := portfolios.Put(p); err != nil {
		t.Fatalf("seed portfolio failed: %v", err)
	}

	rates := &fixedRates{table: domain.NewRateTable(
		domain.RatePair{From: "BTC", To: "USD", Rate: decimal.NewFromInt(60000), Source: "test", UpdatedAt: time.Now()},
		domain.RatePair{From: "EUR", To: "USD", Rate: decimal.NewFromFloat(1.08), Source: "test", UpdatedAt: time.Now()},
	)}

	audit := &recordingTradeLog{}
	return NewEngine(domain.DefaultCatalog(), rates, portfolios, audit, "USD"), portfolios, user, audit
}

func usdBalance(t *testing.T, store *storage.PortfolioStore, userID int) decimal.Decimal {
	t.Helper()
	return balanceOf(t, store, userID, "USD")
}

func balanceOf(t *testing.T, store *storage.PortfolioStore, userID int, code string) decimal.Decimal {
	t.Helper()
	p, found, err := store.Get(userID)
	if err != nil || !found {
		t.Fatalf("portfolio lookup failed: found=%v err=%v", found, err)
	}
	w, err := p.Wallet(code)
	if err != nil {
		t.Fatalf("wallet %s missing: %v", code, err)
	}
	return w.Balance
}

func TestEngine_Buy(t *testing.T) {
	t.Run("settles at the cached rate", func(t *testing.T) {
		engine, portfolios, user, audit := setupEngine(t, 1000)

		receipt, err := engine.Buy(user, "BTC", decimal.NewFromFloat(0.01))
		if err != nil {
			t.Fatalf("Buy failed: %v", err)
		}
		if !receipt.BaseAmount.Equal(decimal.NewFromInt(600)) {
			t.Errorf("base cost = %s, want 600", receipt.BaseAmount)
		}
		if got := balanceOf(t, portfolios, user.ID, "BTC"); !got.Equal(decimal.NewFromFloat(0.01)) {
			t.Errorf("BTC balance = %s, want 0.01", got)
		}
		if got := usdBalance(t, portfolios, user.ID); !got.Equal(decimal.NewFromInt(400)) {
			t.Errorf("USD balance = %s, want 400", got)
		}
		if len(audit.trades) != 1 || audit.trades[0].Side != domain.SideBuy {
			t.Errorf("expected one buy in the audit log, got %+v", audit.trades)
		}
	})

	t.Run("insufficient funds leaves wallets unchanged", func(t *testing.T) {
		engine, portfolios, user, audit := setupEngine(t, 400)

		_, err := engine.Buy(user, "BTC", decimal.NewFromInt(1))
		var ife *domain.InsufficientFundsError
		if !errors.As(err, &ife) {
			t.Fatalf("expected InsufficientFundsError, got %v", err)
		}
		if got := usdBalance(t, portfolios, user.ID); !got.Equal(decimal.NewFromInt(400)) {
			t.Errorf("USD balance changed on failed buy: %s", got)
		}
		p, _, _ := portfolios.Get(user.ID)
		if _, err := p.Wallet("BTC"); err == nil {
			t.Error("failed buy must not create the target wallet")
		}
		if len(audit.trades) != 0 {
			t.Error("failed buy must not be audited")
		}
	})

	t.Run("unknown currency", func(t *testing.T) {
		engine, _, user, _ := setupEngine(t, 1000)
		_, err := engine.Buy(user, "XYZ", decimal.NewFromInt(1))
		var unk *domain.UnknownCurrencyError
		if !errors.As(err, &unk) {
			t.Fatalf("expected UnknownCurrencyError, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		engine, _, user, _ := setupEngine(t, 1000)
		for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
			_, err := engine.Buy(user, "BTC", amount)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError for %s, got %v", amount, err)
			}
		}
	})

	t.Run("missing rate pair", func(t *testing.T) {
		engine, portfolios, user, _ := setupEngine(t, 1000)
		_, err := engine.Buy(user, "RUB", decimal.NewFromInt(100))
		var rnf *domain.RateNotFoundError
		if !errors.As(err, &rnf) {
			t.Fatalf("expected RateNotFoundError, got %v", err)
		}
		if got := usdBalance(t, portfolios, user.ID); !got.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("USD balance changed: %s", got)
		}
	})

	t.Run("no session", func(t *testing.T) {
		engine, _, _, _ := setupEngine(t, 1000)
		_, err := engine.Buy(nil, "BTC", decimal.NewFromInt(1))
		if !errors.Is(err, domain.ErrNotAuthorized) {
			t.Fatalf("expected ErrNotAuthorized, got %v", err)
		}
	})
}

func TestEngine_Sell(t *testing.T) {
	t.Run("credits base wallet with proceeds", func(t *testing.T) {
		engine, portfolios, user, _ := setupEngine(t, 1000)
		if _, err := engine.Buy(user, "BTC", decimal.NewFromFloat(0.01)); err != nil {
			t.Fatalf("Buy failed: %v", err)
		}

		receipt, err := engine.Sell(user, "BTC", decimal.NewFromFloat(0.005))
		if err != nil {
			t.Fatalf("Sell failed: %v", err)
		}
		if !receipt.BaseAmount.Equal(decimal.NewFromInt(300)) {
			t.Errorf("proceeds = %s, want 300", receipt.BaseAmount)
		}
		if got := balanceOf(t, portfolios, user.ID, "BTC"); !got.Equal(decimal.NewFromFloat(0.005)) {
			t.Errorf("BTC balance = %s, want 0.005", got)
		}
		if got := usdBalance(t, portfolios, user.ID); !got.Equal(decimal.NewFromInt(700)) {
			t.Errorf("USD balance = %s, want 700", got)
		}
	})

	t.Run("never-bought currency is rejected", func(t *testing.T) {
		engine, _, user, _ := setupEngine(t, 1000)
		_, err := engine.Sell(user, "ETH", decimal.NewFromInt(1))
		var nf *domain.WalletNotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected WalletNotFoundError, got %v", err)
		}
		if !nf.NeverHeld {
			t.Error("error should say the currency was never bought")
		}
	})

	t.Run("selling more than held", func(t *testing.T) {
		engine, portfolios, user, _ := setupEngine(t, 1000)
		if _, err := engine.Buy(user, "BTC", decimal.NewFromFloat(0.01)); err != nil {
			t.Fatalf("Buy failed: %v", err)
		}

		_, err := engine.Sell(user, "BTC", decimal.NewFromFloat(0.02))
		var ife *domain.InsufficientFundsError
		if !errors.As(err, &ife) {
			t.Fatalf("expected InsufficientFundsError, got %v", err)
		}
		if got := balanceOf(t, portfolios, user.ID, "BTC"); !got.Equal(decimal.NewFromFloat(0.01)) {
			t.Errorf("BTC balance changed on failed sell: %s", got)
		}
		if got := usdBalance(t, portfolios, user.ID); !got.Equal(decimal.NewFromInt(400)) {
			t.Errorf("USD balance changed on failed sell: %s", got)
		}
	})
}

// Buying and selling the same amount at an unchanged rate restores the base
// wallet exactly.
func TestEngine_RoundTrip(t *testing.T) {
	engine, portfolios, user, _ := setupEngine(t, 1000)

	if _, err := engine.Buy(user, "BTC", decimal.NewFromFloat(0.01)); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if _, err := engine.Sell(user, "BTC", decimal.NewFromFloat(0.01)); err != nil {
		t.Fatalf("Sell failed: %v", err)
	}

	if got := usdBalance(t, portfolios, user.ID); !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("USD balance after round trip = %s, want 1000", got)
	}
	if got := balanceOf(t, portfolios, user.ID, "BTC"); !got.IsZero() {
		t.Errorf("BTC balance after round trip = %s, want 0", got)
	}
}

// An audit log failure must not undo the settled trade.
func TestEngine_AuditFailureDoesNotRollBack(t *testing.T) {
	engine, portfolios, user, audit := setupEngine(t, 1000)
	audit.err = errors.New("history db unavailable")

	if _, err := engine.Buy(user, "BTC", decimal.NewFromFloat(0.01)); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	if got := usdBalance(t, portfolios, user.ID); !got.Equal(decimal.NewFromInt(400)) {
		t.Errorf("USD balance = %s, want 400", got)
	}
}
