// Package prices maintains a snapshot of USD exchange rates used to value
// bounty amounts. The snapshot is fetched wholesale and replaced on
// refresh; a failed refresh keeps the previous snapshot so reads stay
// available with stale data.
package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tetrationlab/ztf-gateway/internal/logger"
)

// Rates are stored as units of the symbol per 1 USD, the shape returned
// by the exchange-rate endpoint. The USD price of one unit is 1/rate.

// Snapshot is an immutable set of rates keyed by upper-cased symbol.
type Snapshot map[string]decimal.Decimal

// Oracle fetches and serves the exchange-rate snapshot. Safe for
// concurrent use; readers always observe a complete snapshot.
type Oracle struct {
	url    string
	client *http.Client

	mu       sync.RWMutex
	snapshot Snapshot
	fetched  time.Time
}

// NewOracle builds an oracle against the given exchange-rate endpoint.
// The snapshot starts empty; call Refresh before serving prices.
func NewOracle(url string) *Oracle {
	return &Oracle{
		url:      url,
		client:   &http.Client{Timeout: 15 * time.Second},
		snapshot: Snapshot{},
	}
}

type ratesResponse struct {
	Data struct {
		Currency string            `json:"currency"`
		Rates    map[string]string `json:"rates"`
	} `json:"data"`
}

// Refresh performs one fetch of the latest rates and replaces the whole
// snapshot on success. On failure the previous snapshot is left intact
// and the error is returned for the caller to log; it is never fatal.
func (o *Oracle) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create rates request: %v", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch exchange rates: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch exchange rates: status code %d", resp.StatusCode)
	}

	var result ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode exchange rates: %v", err)
	}

	next := make(Snapshot, len(result.Data.Rates))
	for symbol, rate := range result.Data.Rates {
		d, err := decimal.NewFromString(rate)
		if err != nil {
			log.Printf("Skipping unparsable rate %s=%q: %v", symbol, rate, err)
			continue
		}
		next[strings.ToUpper(symbol)] = d
	}

	o.mu.Lock()
	o.snapshot = next
	o.fetched = time.Now()
	o.mu.Unlock()

	logger.Info("Exchange rate snapshot refreshed", "symbols", len(next))
	return nil
}

// PriceOf returns the USD price of one unit of the given symbol, or zero
// when the symbol is not in the snapshot. A zero price means "unpriced"
// and is never an error.
//
// Two symbols are special-cased: LSETH is a wrapped staked variant and
// defers to the ETH price, and DAI is pinned to exactly 1 USD rather
// than tracking the fetched rate, so small depegs do not add noise to
// aggregate values.
func (o *Oracle) PriceOf(symbol string) decimal.Decimal {
	symbol = strings.ToUpper(symbol)

	switch symbol {
	case "LSETH":
		return o.PriceOf("ETH")
	case "DAI":
		return decimal.NewFromInt(1)
	}

	o.mu.RLock()
	rate, ok := o.snapshot[symbol]
	o.mu.RUnlock()

	if !ok || rate.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Div(rate)
}

// LastFetched reports when the current snapshot was taken; zero if no
// refresh has succeeded yet.
func (o *Oracle) LastFetched() time.Time {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.fetched
}

// RunRefreshLoop refreshes on the given interval until ctx is cancelled.
// Failures are logged and the loop keeps going with the stale snapshot.
func (o *Oracle) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := o.Refresh(ctx); err != nil {
				logger.Error("Exchange rate refresh failed", "error", err)
			}
		}
	}
}
