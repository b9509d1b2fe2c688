// Package stats folds per-asset bounty statistics into USD totals.
package stats

import (
	"github.com/shopspring/decimal"
	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
)

// Pricer resolves a denomination symbol to its USD price. Satisfied by
// *prices.Oracle.
type Pricer interface {
	PriceOf(symbol string) decimal.Decimal
}

// Totals is the USD value of all bounties and of the claimed portion.
type Totals struct {
	TotalUSD   decimal.Decimal `json:"total_usd"`
	ClaimedUSD decimal.Decimal `json:"claimed_usd"`
}

// Aggregator values per-asset stat entries with the current price
// snapshot. Deterministic for a fixed snapshot.
type Aggregator struct {
	registry *currency.Registry
	pricer   Pricer
	chainID  uint64
}

func NewAggregator(registry *currency.Registry, pricer Pricer, chainID uint64) *Aggregator {
	return &Aggregator{registry: registry, pricer: pricer, chainID: chainID}
}

// Aggregate sums scaledAmount*price over the given entries. Entries
// whose symbol or price cannot be resolved contribute 0, so the result
// is a lower bound whenever price data is incomplete; that is deliberate
// under-counting, not an error. Callers feeding only the first stat page
// (the reference deployment samples a page of 2) inherit the same
// lower-bound caveat for the untallied assets.
func (a *Aggregator) Aggregate(entries []chain.RawAssetStat) Totals {
	totals := Totals{TotalUSD: decimal.Zero, ClaimedUSD: decimal.Zero}

	for _, e := range entries {
		denom := a.registry.DenomOf(a.chainID, e.Asset)
		price := a.pricer.PriceOf(denom)
		if price.IsZero() {
			continue
		}
		decimals := a.registry.DecimalsOf(a.chainID, e.Asset)

		if e.Total != nil {
			totals.TotalUSD = totals.TotalUSD.Add(decimal.NewFromBigInt(e.Total, -decimals).Mul(price))
		}
		if e.Claimed != nil {
			totals.ClaimedUSD = totals.ClaimedUSD.Add(decimal.NewFromBigInt(e.Claimed, -decimals).Mul(price))
		}
	}
	return totals
}
