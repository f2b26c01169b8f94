package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"not authorized", domain.ErrNotAuthorized, "log in first"},
		{"user not found", domain.ErrUserNotFound, "User not found"},
		{"wrong password", domain.ErrWrongPassword, "Wrong password"},
		{"validation", &domain.ValidationError{Field: "amount", Reason: "must be a positive number"}, "Invalid amount"},
		{"unknown currency", &domain.UnknownCurrencyError{Code: "DOGE"}, `Unknown currency "DOGE"`},
		{"insufficient funds", &domain.InsufficientFundsError{
			Currency:  "USD",
			Available: decimal.NewFromInt(400),
			Requested: decimal.NewFromInt(600),
		}, "you have 400 USD"},
		{"never held", &domain.WalletNotFoundError{Code: "ETH", NeverHeld: true}, "do not hold any ETH"},
		{"rate missing", &domain.RateNotFoundError{From: "RUB", To: "USD"}, "update-rates"},
		{"duplicate username", &domain.DuplicateUsernameError{Username: "alice"}, "already taken"},
		{"auth key", &domain.AuthKeyError{Source: "ExchangeRateAPI"}, "EXCHANGERATE_API_KEY"},
		{"rate limited", &domain.RateLimitError{Source: "CoinGecko", StatusCode: 429}, "rate-limiting"},
		{"system", &domain.SystemError{Op: "save portfolios", Err: errors.New("disk full")}, "on our side"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := userMessage(tc.err)
			if !strings.Contains(got, tc.want) {
				t.Errorf("userMessage(%v) = %q, want substring %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestUserMessage_HidesInternals(t *testing.T) {
	err := &domain.SystemError{Op: "save portfolios", Err: errors.New("open /data/portfolios.json: permission denied")}
	got := userMessage(err)
	if strings.Contains(got, "permission denied") {
		t.Errorf("system error details leaked to the user: %q", got)
	}
}

func TestExitStatusFor(t *testing.T) {
	if got := exitStatusFor(&domain.ValidationError{Field: "amount", Reason: "bad"}); got != subcommands.ExitUsageError {
		t.Errorf("validation error status = %v, want ExitUsageError", got)
	}
	if got := exitStatusFor(domain.ErrNotAuthorized); got != subcommands.ExitFailure {
		t.Errorf("auth error status = %v, want ExitFailure", got)
	}
}
