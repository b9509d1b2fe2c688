package api

import (
	"github.com/shopspring/decimal"
	"github.com/tetrationlab/ztf-gateway/internal/bounty"
	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
	"github.com/tetrationlab/ztf-gateway/internal/debounce"
	"github.com/tetrationlab/ztf-gateway/internal/ipfs"
	"github.com/tetrationlab/ztf-gateway/internal/prices"
	"github.com/tetrationlab/ztf-gateway/internal/stats"
	"github.com/tetrationlab/ztf-gateway/lib/transaction"
)

type API struct {
	Client       *chain.Client
	Registry     *currency.Registry
	Oracle       *prices.Oracle
	Aggregator   *stats.Aggregator
	Pager        *bounty.Pager
	Detail       *ipfs.Fetcher
	Orchestrator *transaction.Orchestrator
	ChainID      uint64

	priceRefresh *debounce.Debouncer
}

type AuthRequest struct {
	APIKey string `json:"api_key"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type BountyPageResponse struct {
	Page     int64           `json:"page"`
	PageSize int64           `json:"page_size"`
	Bounties []bounty.Bounty `json:"bounties"`
	// Exhausted is set when the page came back short; the caller should
	// not advance further.
	Exhausted bool `json:"exhausted"`
}

type StatsResponse struct {
	NumBounty      uint64          `json:"num_bounty"`
	NumClaimed     uint64          `json:"num_claimed"`
	TotalUSD       decimal.Decimal `json:"total_usd"`
	ClaimedUSD     decimal.Decimal `json:"claimed_usd"`
	SampledAssets  int             `json:"sampled_assets"`
	PreStateDigest string          `json:"pre_state_digest"`
}

type CreateBountyRequest struct {
	Flag             string `json:"flag"`
	Callback         string `json:"callback,omitempty"`
	Asset            string `json:"asset"`
	Amount           string `json:"amount"`
	Title            string `json:"title"`
	IpfsHash         string `json:"ipfs_hash"`
	EnvHash          string `json:"env_hash"`
	WormholeChainID  uint16 `json:"wormhole_chain_id,omitempty"`
	WormholeGasLimit uint64 `json:"wormhole_gas_limit,omitempty"`
}

type ClaimBountyRequest struct {
	BountyID        uint64 `json:"bounty_id"`
	Claimer         string `json:"claimer"`
	TxsHash         string `json:"txs_hash"`
	PostStateDigest string `json:"post_state_digest"`
	Seal            string `json:"seal"`
}

type TransactionResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	ApproveTx string `json:"approve_tx,omitempty"`
	TxID      string `json:"txid,omitempty"`
	BountyID  string `json:"bounty_id,omitempty"`
}

type contextKey string
