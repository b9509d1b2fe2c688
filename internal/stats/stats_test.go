package stats

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
)

var ethToken = common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")

// fixedPricer prices eth at 2000 USD and nothing else.
type fixedPricer struct{}

func (fixedPricer) PriceOf(symbol string) decimal.Decimal {
	if strings.EqualFold(symbol, "eth") {
		return decimal.NewFromInt(2000)
	}
	return decimal.Zero
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func TestAggregateValuesKnownAsset(t *testing.T) {
	agg := NewAggregator(currency.NewRegistry(), fixedPricer{}, currency.ChainGoerli)

	got := agg.Aggregate([]chain.RawAssetStat{
		{Asset: ethToken, Total: tokens(100), Claimed: tokens(25)},
	})

	if want := decimal.NewFromInt(200000); !got.TotalUSD.Equal(want) {
		t.Errorf("TotalUSD = %s, want %s", got.TotalUSD, want)
	}
	if want := decimal.NewFromInt(50000); !got.ClaimedUSD.Equal(want) {
		t.Errorf("ClaimedUSD = %s, want %s", got.ClaimedUSD, want)
	}
}

func TestAggregateUnpricedAssetContributesZero(t *testing.T) {
	agg := NewAggregator(currency.NewRegistry(), fixedPricer{}, currency.ChainGoerli)

	unknown := common.HexToAddress("0x9999999999999999999999999999999999999999")
	got := agg.Aggregate([]chain.RawAssetStat{
		{Asset: ethToken, Total: tokens(100), Claimed: tokens(25)},
		{Asset: unknown, Total: tokens(5000), Claimed: tokens(5000)},
	})

	// The unpriced entry is dropped from the sums: a lower bound, not an
	// error, and certainly not a NaN.
	if want := decimal.NewFromInt(200000); !got.TotalUSD.Equal(want) {
		t.Errorf("TotalUSD = %s, want %s (unpriced entry must add 0)", got.TotalUSD, want)
	}
	if want := decimal.NewFromInt(50000); !got.ClaimedUSD.Equal(want) {
		t.Errorf("ClaimedUSD = %s, want %s", got.ClaimedUSD, want)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := NewAggregator(currency.NewRegistry(), fixedPricer{}, currency.ChainGoerli)

	got := agg.Aggregate(nil)
	if !got.TotalUSD.IsZero() || !got.ClaimedUSD.IsZero() {
		t.Errorf("Aggregate(nil) = %+v, want zero totals", got)
	}
}

func TestAggregateTolerantOfNilAmounts(t *testing.T) {
	agg := NewAggregator(currency.NewRegistry(), fixedPricer{}, currency.ChainGoerli)

	got := agg.Aggregate([]chain.RawAssetStat{
		{Asset: ethToken, Total: tokens(10), Claimed: nil},
	})
	if want := decimal.NewFromInt(20000); !got.TotalUSD.Equal(want) {
		t.Errorf("TotalUSD = %s, want %s", got.TotalUSD, want)
	}
	if !got.ClaimedUSD.IsZero() {
		t.Errorf("ClaimedUSD = %s, want 0 for nil claimed amount", got.ClaimedUSD)
	}
}
