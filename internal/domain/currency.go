package domain

import (
	"fmt"
	"sort"
	"strings"
)

// CurrencyKind separates fiat currencies from cryptocurrencies.
type CurrencyKind string

const (
	KindFiat   CurrencyKind = "fiat"
	KindCrypto CurrencyKind = "crypto"
)

// Currency is a catalog entry. Values are immutable after construction;
// the catalog is used for existence validation only.
type Currency struct {
	Code string
	Name string
	Kind CurrencyKind

	// Fiat only
	IssuingCountry string

	// Crypto only
	Algorithm string
	MarketCap float64
}

// NormalizeCode trims and upper-cases a currency code and validates its shape:
// 2 to 5 uppercase letters, no whitespace.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", &ValidationError{Field: "currency code", Reason: "must not be empty"}
	}
	if len(code) < 2 || len(code) > 5 {
		return "", &ValidationError{Field: "currency code", Reason: "must be 2 to 5 characters"}
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", &ValidationError{Field: "currency code", Reason: "must contain only letters"}
		}
	}
	return code, nil
}

// NewFiatCurrency builds a validated fiat catalog entry.
func NewFiatCurrency(name, code, issuingCountry string) (Currency, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return Currency{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Currency{}, &ValidationError{Field: "currency name", Reason: "must not be empty"}
	}
	issuingCountry = strings.TrimSpace(issuingCountry)
	if issuingCountry == "" {
		return Currency{}, &ValidationError{Field: "issuing country", Reason: "must not be empty"}
	}
	return Currency{
		Code:           normalized,
		Name:           name,
		Kind:           KindFiat,
		IssuingCountry: issuingCountry,
	}, nil
}

// NewCryptoCurrency builds a validated crypto catalog entry.
func NewCryptoCurrency(name, code, algorithm string, marketCap float64) (Currency, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return Currency{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Currency{}, &ValidationError{Field: "currency name", Reason: "must not be empty"}
	}
	algorithm = strings.TrimSpace(algorithm)
	if algorithm == "" {
		return Currency{}, &ValidationError{Field: "algorithm", Reason: "must not be empty"}
	}
	if marketCap < 0 {
		return Currency{}, &ValidationError{Field: "market cap", Reason: "must not be negative"}
	}
	return Currency{
		Code:      normalized,
		Name:      name,
		Kind:      KindCrypto,
		Algorithm: algorithm,
		MarketCap: marketCap,
	}, nil
}

// DisplayInfo renders the entry for UI and logs.
func (c Currency) DisplayInfo() string {
	if c.Kind == KindFiat {
		return fmt.Sprintf("[FIAT] %s — %s (Issuing: %s)", c.Code, c.Name, c.IssuingCountry)
	}
	return fmt.Sprintf("[CRYPTO] %s — %s (Algo: %s, MCAP: %s)", c.Code, c.Name, c.Algorithm, humanizeCap(c.MarketCap))
}

func humanizeCap(cap float64) string {
	switch {
	case cap >= 1e12:
		return fmt.Sprintf("%.2fT", cap/1e12)
	case cap >= 1e9:
		return fmt.Sprintf("%.2fB", cap/1e9)
	case cap >= 1e6:
		return fmt.Sprintf("%.2fM", cap/1e6)
	default:
		return fmt.Sprintf("%.2f", cap)
	}
}

// Catalog is an immutable set of registered currencies. It is constructed once
// at startup and injected into whatever needs existence validation.
type Catalog struct {
	currencies map[string]Currency
}

// NewCatalog builds a catalog from the given entries. Later duplicates of a
// code replace earlier ones.
func NewCatalog(currencies ...Currency) *Catalog {
	m := make(map[string]Currency, len(currencies))
	for _, c := range currencies {
		m[c.Code] = c
	}
	return &Catalog{currencies: m}
}

// DefaultCatalog returns the catalog of currencies the hub trades out of the box.
func DefaultCatalog() *Catalog {
	usd, _ := NewFiatCurrency("US Dollar", "USD", "United States")
	eur, _ := NewFiatCurrency("Euro", "EUR", "Eurozone")
	rub, _ := NewFiatCurrency("Russian Ruble", "RUB", "Russia")
	btc, _ := NewCryptoCurrency("Bitcoin", "BTC", "SHA-256", 1.12e12)
	eth, _ := NewCryptoCurrency("Ethereum", "ETH", "Ethash", 4.5e11)
	return NewCatalog(usd, eur, rub, btc, eth)
}

// Get returns the currency for a code, normalizing it first.
func (c *Catalog) Get(code string) (Currency, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return Currency{}, err
	}
	cur, ok := c.currencies[normalized]
	if !ok {
		return Currency{}, &UnknownCurrencyError{Code: normalized}
	}
	return cur, nil
}

// Has reports whether a code is registered. The code must already be normalized.
func (c *Catalog) Has(code string) bool {
	_, ok := c.currencies[code]
	return ok
}

// Codes returns all registered codes sorted alphabetically.
func (c *Catalog) Codes() []string {
	codes := make([]string, 0, len(c.currencies))
	for code := range c.currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
