package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

var (
	// ErrNotAuthorized is returned when an operation requires an active session.
	ErrNotAuthorized = errors.New("authentication required")

	// ErrUserNotFound is returned when a login names an unknown user.
	ErrUserNotFound = errors.New("user not found")

	// ErrWrongPassword is returned when login credentials do not match.
	ErrWrongPassword = errors.New("wrong password")

	// ErrConfigNotFound is returned when the configuration file is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// ValidationError reports user-correctable input problems (bad shape or range).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// UnknownCurrencyError is returned when a currency code is not in the catalog.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Code)
}

// DuplicateCurrencyError is returned when a portfolio already holds a wallet
// for the currency.
type DuplicateCurrencyError struct {
	Code string
}

func (e *DuplicateCurrencyError) Error() string {
	return fmt.Sprintf("currency %s already in portfolio", e.Code)
}

// WalletNotFoundError is returned when a portfolio has no wallet for the
// currency. NeverHeld distinguishes "never bought" from a plain lookup miss.
type WalletNotFoundError struct {
	Code      string
	NeverHeld bool
}

func (e *WalletNotFoundError) Error() string {
	if e.NeverHeld {
		return fmt.Sprintf("no %s wallet: currency was never bought", e.Code)
	}
	return fmt.Sprintf("wallet %s not found in portfolio", e.Code)
}

// InsufficientFundsError is a business-rule rejection carrying both sides of
// the failed solvency check.
type InsufficientFundsError struct {
	Currency  string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s funds: available %s, requested %s",
		e.Currency, e.Available.String(), e.Requested.String())
}

// RateNotFoundError is returned when no directed pair exists for a conversion.
type RateNotFoundError struct {
	From string
	To   string
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("no exchange rate for %s_%s", e.From, e.To)
}

// DuplicateUsernameError is returned when a registration reuses a username.
type DuplicateUsernameError struct {
	Username string
}

func (e *DuplicateUsernameError) Error() string {
	return fmt.Sprintf("username %q is already taken", e.Username)
}

// PortfolioNotFoundError means a registered user has no stored portfolio.
// This indicates corrupted state, not user error.
type PortfolioNotFoundError struct {
	UserID int
}

func (e *PortfolioNotFoundError) Error() string {
	return fmt.Sprintf("portfolio for user %d not found", e.UserID)
}

// SystemError wraps persistence failures. The operation is aborted with no
// partial writes.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	return "system error [" + e.Op + "]: " + e.Err.Error()
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// NetworkError represents a provider network failure that may be retriable
type NetworkError struct {
	Op        string // Operation that failed (e.g., "fetch", "decode")
	URL       string
	Err       error
	Retriable bool
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op, url string, err error) *NetworkError {
	return &NetworkError{Op: op, URL: url, Err: err, Retriable: true}
}

// RateLimitError is returned when a provider rejects the request with HTTP 429.
// Retrying within the same update cycle will not help.
type RateLimitError struct {
	Source     string
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limit exceeded (status %d)", e.Source, e.StatusCode)
}

func (e *RateLimitError) IsRetriable() bool {
	return false
}

// AuthKeyError is returned when a provider rejects the configured API key.
type AuthKeyError struct {
	Source string
}

func (e *AuthKeyError) Error() string {
	return e.Source + ": invalid or missing API key"
}

func (e *AuthKeyError) IsRetriable() bool {
	return false
}
