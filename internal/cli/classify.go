package cli

import (
	"errors"
	"fmt"

	"github.com/google/subcommands"

	"valutatrade/internal/domain"
)

// userMessage translates the domain error taxonomy into messages a person at
// the prompt can act on. Internal details stay in the log, not on screen.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		return "Please log in first (see 'login')."
	case errors.Is(err, domain.ErrUserNotFound):
		return "User not found. Check the username or use 'register'."
	case errors.Is(err, domain.ErrWrongPassword):
		return "Wrong password."
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return "Invalid " + validation.Field + ": " + validation.Reason + "."
	}

	var unknown *domain.UnknownCurrencyError
	if errors.As(err, &unknown) {
		return fmt.Sprintf("Unknown currency %q. Use 'currencies' to list supported codes.", unknown.Code)
	}

	var funds *domain.InsufficientFundsError
	if errors.As(err, &funds) {
		return fmt.Sprintf("Insufficient funds: you have %s %s, the order needs %s %s.",
			funds.Available, funds.Currency, funds.Requested, funds.Currency)
	}

	var wallet *domain.WalletNotFoundError
	if errors.As(err, &wallet) {
		if wallet.NeverHeld {
			return fmt.Sprintf("You do not hold any %s — nothing to sell.", wallet.Code)
		}
		return fmt.Sprintf("No %s wallet in your portfolio.", wallet.Code)
	}

	var rate *domain.RateNotFoundError
	if errors.As(err, &rate) {
		return fmt.Sprintf("No cached rate for %s→%s. Run 'update-rates' and try again.", rate.From, rate.To)
	}

	var dup *domain.DuplicateUsernameError
	if errors.As(err, &dup) {
		return fmt.Sprintf("Username %q is already taken.", dup.Username)
	}

	var authKey *domain.AuthKeyError
	if errors.As(err, &authKey) {
		return fmt.Sprintf("Provider %s rejected the API key. Check EXCHANGERATE_API_KEY.", authKey.Source)
	}

	var rateLimit *domain.RateLimitError
	if errors.As(err, &rateLimit) {
		return fmt.Sprintf("Provider %s is rate-limiting us. Try again later.", rateLimit.Source)
	}

	var network *domain.NetworkError
	if errors.As(err, &network) {
		return "Network problem while talking to a rate provider: " + network.Error() + "."
	}

	var system *domain.SystemError
	if errors.As(err, &system) {
		return "Something went wrong on our side. Details are in the log."
	}

	return "Error: " + err.Error() + "."
}

// exitStatusFor maps errors onto subcommands exit statuses: bad input is a
// usage error, everything else a plain failure.
func exitStatusFor(err error) subcommands.ExitStatus {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}
