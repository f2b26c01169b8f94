package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeCode(t *testing.T) {
	t.Run("trims and upper-cases", func(t *testing.T) {
		code, err := NormalizeCode(" btc ")
		if err != nil {
			t.Fatalf("NormalizeCode failed: %v", err)
		}
		if code != "BTC" {
			t.Errorf("got %q, want BTC", code)
		}
	})

	for _, bad := range []string{"", "X", "TOOLONGX", "US D", "US1"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := NormalizeCode(bad)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError for %q, got %v", bad, err)
			}
		})
	}
}

func TestCurrency_DisplayInfo(t *testing.T) {
	t.Run("fiat", func(t *testing.T) {
		usd, err := NewFiatCurrency("US Dollar", "USD", "United States")
		if err != nil {
			t.Fatalf("NewFiatCurrency failed: %v", err)
		}
		want := "[FIAT] USD — US Dollar (Issuing: United States)"
		if got := usd.DisplayInfo(); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("crypto humanizes market cap", func(t *testing.T) {
		btc, err := NewCryptoCurrency("Bitcoin", "BTC", "SHA-256", 1.12e12)
		if err != nil {
			t.Fatalf("NewCryptoCurrency failed: %v", err)
		}
		if got := btc.DisplayInfo(); !strings.Contains(got, "MCAP: 1.12T") {
			t.Errorf("expected 1.12T in %q", got)
		}
	})

	t.Run("crypto rejects negative market cap", func(t *testing.T) {
		_, err := NewCryptoCurrency("Bad", "BAD", "X11", -1)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("lookup normalizes code", func(t *testing.T) {
		cur, err := catalog.Get("btc")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if cur.Code != "BTC" || cur.Kind != KindCrypto {
			t.Errorf("unexpected currency: %+v", cur)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := catalog.Get("XYZ")
		var unk *UnknownCurrencyError
		if !errors.As(err, &unk) {
			t.Fatalf("expected UnknownCurrencyError, got %v", err)
		}
	})

	t.Run("codes are sorted", func(t *testing.T) {
		codes := catalog.Codes()
		want := []string{"BTC", "ETH", "EUR", "RUB", "USD"}
		if len(codes) != len(want) {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
		for i := range want {
			if codes[i] != want[i] {
				t.Fatalf("codes = %v, want %v", codes, want)
			}
		}
	})
}
