package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func newRatesServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRefreshAndPriceOf(t *testing.T) {
	srv := newRatesServer(t, `{"data":{"currency":"USD","rates":{"ETH":"0.0005","BTC":"0.000025"}}}`, http.StatusOK)

	o := NewOracle(srv.URL)
	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// rate 0.0005 ETH per USD means 1 ETH = 2000 USD
	if got, want := o.PriceOf("eth"), decimal.NewFromInt(2000); !got.Equal(want) {
		t.Errorf("PriceOf(eth) = %s, want %s", got, want)
	}
	if got, want := o.PriceOf("BTC"), decimal.NewFromInt(40000); !got.Equal(want) {
		t.Errorf("PriceOf(BTC) = %s, want %s", got, want)
	}
}

func TestPriceOfMissingSymbolIsZero(t *testing.T) {
	srv := newRatesServer(t, `{"data":{"currency":"USD","rates":{"ETH":"0.0005"}}}`, http.StatusOK)

	o := NewOracle(srv.URL)
	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := o.PriceOf("NOPE"); !got.IsZero() {
		t.Errorf("PriceOf(missing) = %s, want 0", got)
	}
}

func TestPriceOfBeforeRefreshIsZero(t *testing.T) {
	o := NewOracle("http://127.0.0.1:0")
	if got := o.PriceOf("ETH"); !got.IsZero() {
		t.Errorf("PriceOf before refresh = %s, want 0", got)
	}
}

func TestAliasAndPinnedSymbols(t *testing.T) {
	srv := newRatesServer(t, `{"data":{"currency":"USD","rates":{"ETH":"0.0005","DAI":"1.013"}}}`, http.StatusOK)

	o := NewOracle(srv.URL)
	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// lseth defers to the eth price
	if got, want := o.PriceOf("lseth"), o.PriceOf("eth"); !got.Equal(want) {
		t.Errorf("PriceOf(lseth) = %s, want eth price %s", got, want)
	}
	// dai is pinned to exactly 1 regardless of the fetched rate
	if got := o.PriceOf("dai"); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("PriceOf(dai) = %s, want 1", got)
	}
}

func TestFailedRefreshKeepsStaleSnapshot(t *testing.T) {
	good := newRatesServer(t, `{"data":{"currency":"USD","rates":{"ETH":"0.0005"}}}`, http.StatusOK)

	o := NewOracle(good.URL)
	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// Point the oracle at a failing endpoint; the old snapshot survives.
	bad := newRatesServer(t, `oops`, http.StatusInternalServerError)
	o.url = bad.URL
	if err := o.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh against failing endpoint should error")
	}
	if got, want := o.PriceOf("ETH"), decimal.NewFromInt(2000); !got.Equal(want) {
		t.Errorf("stale PriceOf(ETH) = %s, want %s", got, want)
	}
}
