package currency

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestDenomOfKnownToken(t *testing.T) {
	r := NewRegistry()

	addr := common.HexToAddress("0x628eBC64A38269E031AFBDd3C5BA857483B5d048")
	if got := r.DenomOf(ChainGoerli, addr); got != "lseth" {
		t.Errorf("DenomOf(lseth) = %q, want %q", got, "lseth")
	}
	if got := r.DecimalsOf(ChainGoerli, addr); got != 18 {
		t.Errorf("DecimalsOf(lseth) = %d, want 18", got)
	}
}

func TestUnknownTokenDefaults(t *testing.T) {
	r := NewRegistry()

	addr := common.HexToAddress("0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	if got := r.DenomOf(ChainGoerli, addr); got != "" {
		t.Errorf("DenomOf(unknown) = %q, want empty string", got)
	}
	if got := r.DecimalsOf(ChainGoerli, addr); got != DefaultDecimals {
		t.Errorf("DecimalsOf(unknown) = %d, want %d", got, DefaultDecimals)
	}
}

func TestUnknownChainDefaults(t *testing.T) {
	r := NewRegistry()

	addr := common.HexToAddress("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	if got := r.DenomOf(999, addr); got != "" {
		t.Errorf("DenomOf(unknown chain) = %q, want empty string", got)
	}
	if got := r.DecimalsOf(999, addr); got != DefaultDecimals {
		t.Errorf("DecimalsOf(unknown chain) = %d, want %d", got, DefaultDecimals)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()

	lower := common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f")
	upper := common.HexToAddress("0x6B175474E89094C44DA98B954EEDEAC495271D0F")
	if r.DenomOf(ChainGoerli, lower) != r.DenomOf(ChainGoerli, upper) {
		t.Error("DenomOf should not depend on address casing")
	}
}
