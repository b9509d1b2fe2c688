// Package bounty converts raw ZTF contract tuples into the canonical
// bounty representation used everywhere else in the gateway.
package bounty

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
)

// Bounty is the canonical in-memory bounty. Constructed only by
// Normalize and never mutated afterwards; re-reads replace it wholesale.
type Bounty struct {
	ID          string          `json:"id"`
	Owner       string          `json:"owner"`
	Claimed     bool            `json:"claimed"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    common.Address  `json:"currency"`
	LastUpdated time.Time       `json:"last_updated"`
	IpfsHash    string          `json:"ipfs_hash"`
}

// Detail is the off-chain metadata fetched per bounty from IPFS. Every
// field is optional; consumers render what is present and skip the rest.
type Detail struct {
	Links []DetailLink `json:"links,omitempty"`
	// Environment is the free-form CTF environment JSON; shape is owned
	// by the proving toolchain, the gateway passes it through opaquely.
	Environment map[string]interface{} `json:"environment,omitempty"`
}

type DetailLink struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// MalformedDataError reports a contract tuple missing a required field.
// It is fatal for that single record only; callers skip the record and
// keep the rest of the page.
type MalformedDataError struct {
	Field string
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed contract data: missing %s", e.Field)
}

// Normalize maps a raw contract tuple at the given list index to a
// Bounty. The amount is scaled down by the currency's decimals, the
// timestamp is interpreted as unix seconds, and the owner address is
// lower-cased for comparison and display. Identical input always yields
// an identical Bounty.
func Normalize(reg *currency.Registry, chainID uint64, index int64, raw chain.RawBounty) (Bounty, error) {
	if raw.Amount == nil {
		return Bounty{}, &MalformedDataError{Field: "amount"}
	}
	if raw.LastUpdated == nil {
		return Bounty{}, &MalformedDataError{Field: "lastUpdated"}
	}

	decimals := reg.DecimalsOf(chainID, raw.Asset)

	return Bounty{
		ID:          strconv.FormatInt(index, 10),
		Owner:       strings.ToLower(raw.Owner.Hex()),
		Claimed:     raw.Claimed,
		Title:       raw.Title,
		Amount:      decimal.NewFromBigInt(raw.Amount, -decimals),
		Currency:    raw.Asset,
		LastUpdated: time.Unix(raw.LastUpdated.Int64(), 0).UTC(),
		IpfsHash:    raw.IpfsHash,
	}, nil
}

// Exists reports whether a tuple returned by bountyList refers to a real
// bounty; the contract hands back a zero-valued tuple for unknown ids.
func Exists(raw chain.RawBounty) bool {
	return raw.Owner != currency.ZeroAddress
}
