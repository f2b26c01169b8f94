package infra

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
)

// CoinGeckoClient fetches crypto rates against the base currency from the
// CoinGecko simple-price endpoint. No API key is required.
type CoinGeckoClient struct {
	apiClient
	baseURL    string
	vsCurrency string
	cryptoIDs  map[string]string // symbol → CoinGecko id
}

// NewCoinGeckoClient builds a client for the configured crypto symbols.
func NewCoinGeckoClient(baseURL string, cryptoIDs map[string]string, baseCurrency string, timeout time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		apiClient:  newAPIClient("CoinGecko", timeout),
		baseURL:    baseURL,
		vsCurrency: strings.ToLower(baseCurrency),
		cryptoIDs:  cryptoIDs,
	}
}

// Name implements RateProvider.
func (c *CoinGeckoClient) Name() string { return c.name }

// FetchRates implements RateProvider. The response shape is
// {"bitcoin": {"usd": 59337.21}, ...}; keys come back as "BTC_USD".
func (c *CoinGeckoClient) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	if len(c.cryptoIDs) == 0 {
		return nil, &domain.NetworkError{Op: "configure", URL: c.baseURL, Err: errors.New("no cryptocurrency ids configured")}
	}

	ids := make([]string, 0, len(c.cryptoIDs))
	for _, id := range c.cryptoIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", c.vsCurrency)
	requestURL := c.baseURL + "?" + query.Encode()

	var data map[string]map[string]float64
	if err := c.getJSON(ctx, requestURL, &data); err != nil {
		return nil, err
	}

	rates := make(map[string]decimal.Decimal)
	for symbol, id := range c.cryptoIDs {
		prices, ok := data[id]
		if !ok {
			continue
		}
		value, ok := prices[c.vsCurrency]
		if !ok {
			continue
		}
		key := domain.PairKey(strings.ToUpper(symbol), strings.ToUpper(c.vsCurrency))
		rates[key] = decimal.NewFromFloat(value)
	}

	if len(rates) == 0 {
		return nil, &domain.NetworkError{Op: "parse", URL: requestURL, Err: errors.New("no rates in response")}
	}
	return rates, nil
}
