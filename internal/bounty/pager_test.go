package bounty

import (
	"context"
	"math/big"
	"testing"

	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
)

// fakeReader serves a fixed bounty list in contract-page semantics.
type fakeReader struct {
	bounties []chain.RawBounty
}

func (f *fakeReader) GetBountyPage(_ context.Context, num, skip *big.Int) ([]chain.RawBounty, error) {
	start := skip.Int64()
	if start >= int64(len(f.bounties)) {
		return nil, nil
	}
	end := start + num.Int64()
	if end > int64(len(f.bounties)) {
		end = int64(len(f.bounties))
	}
	return f.bounties[start:end], nil
}

func makeBounties(n int) []chain.RawBounty {
	out := make([]chain.RawBounty, n)
	for i := range out {
		raw := sampleRaw()
		raw.Amount = new(big.Int).Mul(big.NewInt(int64(i+1)), big.NewInt(1e18))
		out[i] = raw
	}
	return out
}

func TestPageReturnsFullWindowInOrder(t *testing.T) {
	reader := &fakeReader{bounties: makeBounties(25)}
	p := NewPager(reader, currency.NewRegistry(), currency.ChainGoerli, 10)

	page, err := p.Page(context.Background(), 0)
	if err != nil {
		t.Fatalf("Page(0): %v", err)
	}
	if len(page) != 10 {
		t.Fatalf("Page(0) returned %d bounties, want 10", len(page))
	}
	for i, b := range page {
		if want := int64(i); b.ID != bigID(want) {
			t.Errorf("page[%d].ID = %q, want %q", i, b.ID, bigID(want))
		}
	}
}

func bigID(i int64) string {
	return big.NewInt(i).String()
}

func TestPageIDsCarryOffset(t *testing.T) {
	reader := &fakeReader{bounties: makeBounties(25)}
	p := NewPager(reader, currency.NewRegistry(), currency.ChainGoerli, 10)

	page, err := p.Page(context.Background(), 2)
	if err != nil {
		t.Fatalf("Page(2): %v", err)
	}
	if len(page) != 5 {
		t.Fatalf("Page(2) returned %d bounties, want 5 (partial last page)", len(page))
	}
	if page[0].ID != "20" {
		t.Errorf("first id on page 2 = %q, want %q", page[0].ID, "20")
	}
}

func TestPagePastEndIsEmpty(t *testing.T) {
	reader := &fakeReader{bounties: makeBounties(25)}
	p := NewPager(reader, currency.NewRegistry(), currency.ChainGoerli, 10)

	page, err := p.Page(context.Background(), 99)
	if err != nil {
		t.Fatalf("Page(99): %v", err)
	}
	if len(page) != 0 {
		t.Errorf("Page(99) returned %d bounties, want 0 (exhausted)", len(page))
	}
}

func TestNegativePageIndexClampsToZero(t *testing.T) {
	reader := &fakeReader{bounties: makeBounties(5)}
	p := NewPager(reader, currency.NewRegistry(), currency.ChainGoerli, 10)

	page, err := p.Page(context.Background(), -3)
	if err != nil {
		t.Fatalf("Page(-3): %v", err)
	}
	if len(page) != 5 || page[0].ID != "0" {
		t.Errorf("Page(-3) = %d bounties starting at %q, want page 0", len(page), page[0].ID)
	}
}

func TestMalformedTupleIsSkippedNotFatal(t *testing.T) {
	bounties := makeBounties(3)
	bounties[1].Amount = nil // broken record in the middle of the page
	reader := &fakeReader{bounties: bounties}
	p := NewPager(reader, currency.NewRegistry(), currency.ChainGoerli, 10)

	page, err := p.Page(context.Background(), 0)
	if err != nil {
		t.Fatalf("Page(0): %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Page(0) returned %d bounties, want 2 (malformed one skipped)", len(page))
	}
	if page[0].ID != "0" || page[1].ID != "2" {
		t.Errorf("surviving ids = %q, %q; want 0 and 2", page[0].ID, page[1].ID)
	}
}
