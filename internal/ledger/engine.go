package ledger

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
)

// RateSource exposes the current rate table snapshot.
type RateSource interface {
	Table() *domain.RateTable
}

// PortfolioStore is the whole-document portfolio persistence the engine
// writes through.
type PortfolioStore interface {
	Get(userID int) (*domain.Portfolio, bool, error)
	Put(p *domain.Portfolio) error
}

// TradeLog records settled trades. The portfolio document stays the source of
// truth; an audit failure is logged and does not roll the trade back.
type TradeLog interface {
	AppendTrade(tx domain.Transaction) error
}

// Receipt describes a settled trade for display.
type Receipt struct {
	Side            domain.TradeSide
	Currency        string
	Amount          decimal.Decimal
	Rate            decimal.Decimal
	BaseAmount      decimal.Decimal
	BaseCurrency    string
	CurrencyBalance decimal.Decimal
	BaseBalance     decimal.Decimal
}

// Engine settles buy and sell orders against a user's portfolio. Both wallet
// mutations happen on an in-memory clone that is persisted in a single
// whole-document write, so persistence never sees one side of a trade.
type Engine struct {
	catalog      *domain.Catalog
	rates        RateSource
	portfolios   PortfolioStore
	trades       TradeLog
	baseCurrency string
	now          func() time.Time
}

// NewEngine builds a trade engine. trades may be nil to disable the audit log.
func NewEngine(catalog *domain.Catalog, rates RateSource, portfolios PortfolioStore, trades TradeLog, baseCurrency string) *Engine {
	return &Engine{
		catalog:      catalog,
		rates:        rates,
		portfolios:   portfolios,
		trades:       trades,
		baseCurrency: baseCurrency,
		now:          time.Now,
	}
}

// Buy debits the base wallet by the converted cost and credits the target
// wallet, creating it on first purchase. No partial fills: the order settles
// in full or not at all.
func (e *Engine) Buy(user *domain.User, code string, amount decimal.Decimal) (*Receipt, error) {
	cur, clone, err := e.prepare(user, code, amount)
	if err != nil {
		return nil, err
	}

	table := e.rates.Table()
	baseCost, err := table.Convert(amount, cur.Code, e.baseCurrency)
	if err != nil {
		return nil, err
	}

	baseWallet := clone.EnsureWallet(e.baseCurrency)
	target := clone.EnsureWallet(cur.Code)

	if err := baseWallet.Withdraw(baseCost); err != nil {
		return nil, err
	}
	if err := target.Deposit(amount); err != nil {
		return nil, err
	}

	if err := e.portfolios.Put(clone); err != nil {
		return nil, err
	}

	rate, _ := table.Rate(cur.Code, e.baseCurrency)
	receipt := &Receipt{
		Side:            domain.SideBuy,
		Currency:        cur.Code,
		Amount:          amount,
		Rate:            rate,
		BaseAmount:      baseCost,
		BaseCurrency:    e.baseCurrency,
		CurrencyBalance: target.Balance,
		BaseBalance:     baseWallet.Balance,
	}
	e.audit(user, receipt)
	return receipt, nil
}

// Sell withdraws from an existing currency wallet and credits the base wallet
// with the converted proceeds. The wallet must already exist: selling a
// currency that was never bought is rejected, not lazily created.
func (e *Engine) Sell(user *domain.User, code string, amount decimal.Decimal) (*Receipt, error) {
	cur, clone, err := e.prepare(user, code, amount)
	if err != nil {
		return nil, err
	}

	source, err := clone.Wallet(cur.Code)
	if err != nil {
		var nf *domain.WalletNotFoundError
		if errors.As(err, &nf) {
			return nil, &domain.WalletNotFoundError{Code: cur.Code, NeverHeld: true}
		}
		return nil, err
	}

	table := e.rates.Table()
	baseProceeds, err := table.Convert(amount, cur.Code, e.baseCurrency)
	if err != nil {
		return nil, err
	}

	if err := source.Withdraw(amount); err != nil {
		return nil, err
	}
	baseWallet := clone.EnsureWallet(e.baseCurrency)
	if err := baseWallet.Deposit(baseProceeds); err != nil {
		return nil, err
	}

	if err := e.portfolios.Put(clone); err != nil {
		return nil, err
	}

	rate, _ := table.Rate(cur.Code, e.baseCurrency)
	receipt := &Receipt{
		Side:            domain.SideSell,
		Currency:        cur.Code,
		Amount:          amount,
		Rate:            rate,
		BaseAmount:      baseProceeds,
		BaseCurrency:    e.baseCurrency,
		CurrencyBalance: source.Balance,
		BaseBalance:     baseWallet.Balance,
	}
	e.audit(user, receipt)
	return receipt, nil
}

// Portfolio loads the caller's portfolio.
func (e *Engine) Portfolio(user *domain.User) (*domain.Portfolio, error) {
	if user == nil {
		return nil, domain.ErrNotAuthorized
	}
	p, found, err := e.portfolios.Get(user.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &domain.PortfolioNotFoundError{UserID: user.ID}
	}
	return p, nil
}

// prepare runs the validations shared by both sides and returns the currency
// and a mutable portfolio clone. Any failure here happens before a single
// wallet is touched.
func (e *Engine) prepare(user *domain.User, code string, amount decimal.Decimal) (domain.Currency, *domain.Portfolio, error) {
	if user == nil {
		return domain.Currency{}, nil, domain.ErrNotAuthorized
	}
	cur, err := e.catalog.Get(code)
	if err != nil {
		return domain.Currency{}, nil, err
	}
	if !amount.IsPositive() {
		return domain.Currency{}, nil, &domain.ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	p, err := e.Portfolio(user)
	if err != nil {
		return domain.Currency{}, nil, err
	}
	return cur, p.Clone(), nil
}

func (e *Engine) audit(user *domain.User, r *Receipt) {
	if e.trades == nil {
		return
	}
	tx := domain.Transaction{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Side:         r.Side,
		Currency:     r.Currency,
		Amount:       r.Amount,
		Rate:         r.Rate,
		BaseAmount:   r.BaseAmount,
		BaseCurrency: r.BaseCurrency,
		CreatedAt:    e.now(),
	}
	if err := e.trades.AppendTrade(tx); err != nil {
		slog.Warn("failed to record trade in audit log",
			slog.String("side", string(r.Side)),
			slog.String("currency", r.Currency),
			slog.Any("error", err),
		)
	}
}
