package bounty

import (
	"context"
	"log"
	"math/big"

	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
)

// PageReader is the contract read the pager depends on. Satisfied by
// *chain.Client.
type PageReader interface {
	GetBountyPage(ctx context.Context, num, skip *big.Int) ([]chain.RawBounty, error)
}

// Pager fetches fixed-size windows of the bounty list and normalizes
// them. It is a stateless fetch function; page-index bookkeeping (and
// refusing to advance past the end) belongs to the caller.
type Pager struct {
	reader   PageReader
	registry *currency.Registry
	chainID  uint64
	pageSize int64
}

func NewPager(reader PageReader, registry *currency.Registry, chainID uint64, pageSize int64) *Pager {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Pager{reader: reader, registry: registry, chainID: chainID, pageSize: pageSize}
}

// PageSize returns the fixed window size.
func (p *Pager) PageSize() int64 {
	return p.pageSize
}

// Page fetches page pageIndex (clamped at 0) and returns its bounties in
// contract order. Fewer than PageSize entries, possibly zero, signals
// exhaustion. A malformed tuple is logged and skipped; it never fails
// the whole page.
func (p *Pager) Page(ctx context.Context, pageIndex int64) ([]Bounty, error) {
	if pageIndex < 0 {
		pageIndex = 0
	}
	skip := pageIndex * p.pageSize

	raws, err := p.reader.GetBountyPage(ctx, big.NewInt(p.pageSize), big.NewInt(skip))
	if err != nil {
		return nil, err
	}

	bounties := make([]Bounty, 0, len(raws))
	for i, raw := range raws {
		b, err := Normalize(p.registry, p.chainID, skip+int64(i), raw)
		if err != nil {
			log.Printf("Skipping bounty at index %d: %v", skip+int64(i), err)
			continue
		}
		bounties = append(bounties, b)
	}
	return bounties, nil
}
