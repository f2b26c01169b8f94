package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade/internal/domain"
)

func TestNewExchangeRateClient_RequiresKey(t *testing.T) {
	_, err := NewExchangeRateClient("https://example.com", "", "USD", 5*time.Second)
	var ake *domain.AuthKeyError
	if !errors.As(err, &ake) {
		t.Fatalf("expected AuthKeyError, got %v", err)
	}
}

func TestExchangeRateClient_FetchRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/test-key/latest/USD") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"result": "success", "conversion_rates": {"USD": 1, "EUR": 0.92165898617, "GBP": 0.78431372549}}`))
	}))
	defer server.Close()

	client, err := NewExchangeRateClient(server.URL, "test-key", "USD", 5*time.Second)
	if err != nil {
		t.Fatalf("NewExchangeRateClient failed: %v", err)
	}

	rates, err := client.FetchRates(context.Background())
	if err != nil {
		t.Fatalf("FetchRates failed: %v", err)
	}

	// The base currency itself is not a pair.
	if _, ok := rates["USD_USD"]; ok {
		t.Error("base currency should not produce a pair")
	}

	// 1 EUR buys ~1.085 USD: the provider's USD→EUR quote is inverted to
	// match the directed-pair convention.
	eur, ok := rates["EUR_USD"]
	if !ok {
		t.Fatal("EUR_USD missing")
	}
	if eur.Sub(decimal.NewFromFloat(1.085)).Abs().GreaterThan(decimal.NewFromFloat(0.001)) {
		t.Errorf("EUR_USD = %s, want ~1.085", eur)
	}

	gbp, ok := rates["GBP_USD"]
	if !ok {
		t.Fatal("GBP_USD missing")
	}
	if gbp.Sub(decimal.NewFromFloat(1.275)).Abs().GreaterThan(decimal.NewFromFloat(0.001)) {
		t.Errorf("GBP_USD = %s, want ~1.275", gbp)
	}
}

func TestExchangeRateClient_APIErrors(t *testing.T) {
	t.Run("invalid key reported by body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"result": "error", "error-type": "invalid-key"}`))
		}))
		defer server.Close()

		client, _ := NewExchangeRateClient(server.URL, "bad-key", "USD", 5*time.Second)
		_, err := client.FetchRates(context.Background())
		var ake *domain.AuthKeyError
		if !errors.As(err, &ake) {
			t.Fatalf("expected AuthKeyError, got %v", err)
		}
	})

	t.Run("unauthorized status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client, _ := NewExchangeRateClient(server.URL, "bad-key", "USD", 5*time.Second)
		_, err := client.FetchRates(context.Background())
		var ake *domain.AuthKeyError
		if !errors.As(err, &ake) {
			t.Fatalf("expected AuthKeyError, got %v", err)
		}
	})

	t.Run("other api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"result": "error", "error-type": "quota-reached"}`))
		}))
		defer server.Close()

		client, _ := NewExchangeRateClient(server.URL, "key", "USD", 5*time.Second)
		_, err := client.FetchRates(context.Background())
		var ne *domain.NetworkError
		if !errors.As(err, &ne) {
			t.Fatalf("expected NetworkError, got %v", err)
		}
	})
}
