package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
)

// ExchangeRateClient fetches fiat rates from ExchangeRate-API. The service
// returns how much of each currency one unit of the base buys; rates are
// inverted on parse so every pair follows the table convention of "amount of
// TO per unit of FROM".
type ExchangeRateClient struct {
	apiClient
	baseURL      string
	apiKey       string
	baseCurrency string
}

type exchangeRateResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// NewExchangeRateClient builds a client. The API key is mandatory.
func NewExchangeRateClient(baseURL, apiKey, baseCurrency string, timeout time.Duration) (*ExchangeRateClient, error) {
	if apiKey == "" {
		return nil, &domain.AuthKeyError{Source: "ExchangeRateAPI"}
	}
	return &ExchangeRateClient{
		apiClient:    newAPIClient("ExchangeRateAPI", timeout),
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		baseCurrency: strings.ToUpper(baseCurrency),
	}, nil
}

// Name implements RateProvider.
func (c *ExchangeRateClient) Name() string { return c.name }

// FetchRates implements RateProvider, returning pairs like "EUR_USD".
func (c *ExchangeRateClient) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	requestURL := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.apiKey, c.baseCurrency)

	var data exchangeRateResponse
	if err := c.getJSON(ctx, requestURL, &data); err != nil {
		return nil, err
	}

	if data.Result != "success" {
		if data.ErrorType == "invalid-key" || data.ErrorType == "inactive-account" {
			return nil, &domain.AuthKeyError{Source: c.name}
		}
		errType := data.ErrorType
		if errType == "" {
			errType = "unknown_error"
		}
		return nil, &domain.NetworkError{Op: "fetch", URL: c.baseURL, Err: errors.New("api error: " + errType)}
	}

	one := decimal.NewFromInt(1)
	rates := make(map[string]decimal.Decimal, len(data.ConversionRates))
	for currency, value := range data.ConversionRates {
		if currency == c.baseCurrency || value <= 0 {
			continue
		}
		key := domain.PairKey(strings.ToUpper(currency), c.baseCurrency)
		rates[key] = one.Div(decimal.NewFromFloat(value))
	}

	if len(rates) == 0 {
		return nil, &domain.NetworkError{Op: "parse", URL: c.baseURL, Err: errors.New("no conversion rates in response")}
	}
	return rates, nil
}
