package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide labels the direction of a settled trade.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Transaction is one settled buy or sell, appended to the audit log after the
// portfolio write succeeds.
type Transaction struct {
	ID           string          `gorm:"primaryKey" json:"id"`
	UserID       int             `gorm:"index" json:"user_id"`
	Side         TradeSide       `json:"side"`
	Currency     string          `gorm:"index" json:"currency"`
	Amount       decimal.Decimal `json:"amount"`
	Rate         decimal.Decimal `json:"rate"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	BaseCurrency string          `json:"base_currency"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RateRecord is one append-only history row written per merged pair on every
// rates update.
type RateRecord struct {
	ID           string          `gorm:"primaryKey" json:"id"`
	FromCurrency string          `gorm:"index" json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         decimal.Decimal `json:"rate"`
	Source       string          `json:"source"`
	RecordedAt   time.Time       `json:"timestamp"`
}
