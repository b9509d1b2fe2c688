package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tetrationlab/ztf-gateway/internal/api"
	"github.com/tetrationlab/ztf-gateway/internal/bounty"
	"github.com/tetrationlab/ztf-gateway/internal/logger"
	"github.com/tetrationlab/ztf-gateway/internal/stats"
	"github.com/tetrationlab/ztf-gateway/lib/transaction"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway HTTP server",
	Long:  `Run the gateway daemon, serving bounty reads and the transaction endpoints over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The daemon starts with a fresh log file; CLI commands append.
		if err := logger.RotateLog(viper.GetString("log_file")); err != nil {
			log.Printf("Could not rotate log file: %v", err)
		}

		g, err := newGateway()
		if err != nil {
			return err
		}

		orchestrator, err := g.newOrchestrator()
		if err != nil {
			return err
		}
		log.Printf("Gateway signer address: %s", orchestrator.From().Hex())

		if err := api.EnsureJWTKey(); err != nil {
			return fmt.Errorf("error ensuring JWT key: %v", err)
		}

		// Warm the price snapshot before accepting traffic. A failure is
		// not fatal; amounts stay unpriced until the refresh loop
		// succeeds.
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout())
		if err := g.Oracle.Refresh(ctx); err != nil {
			log.Printf("Initial price refresh failed: %v", err)
		}
		cancel()
		go g.Oracle.RunRefreshLoop(context.Background(), viper.GetDuration("price_refresh_interval"))

		a := api.NewAPI(g.Client, g.Registry, g.Oracle, g.Pager, g.Detail, orchestrator, g.ChainID)
		return api.NewServer(a).Start()
	},
}

var bountiesCmd = &cobra.Command{
	Use:   "bounties [page]",
	Short: "List a page of bounties",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		page := int64(0)
		if len(args) > 0 {
			parsed, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid page number: %v\n", err)
				os.Exit(1)
			}
			page = parsed
		}

		g, err := newGateway()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout())
		defer cancel()

		bounties, err := g.Pager.Page(ctx, page)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching bounties: %v\n", err)
			os.Exit(1)
		}

		json.NewEncoder(os.Stdout).Encode(bounties)
	},
}

var bountyCmd = &cobra.Command{
	Use:   "bounty [id]",
	Short: "Show a single bounty with its IPFS detail",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid bounty id: %v\n", err)
			os.Exit(1)
		}

		g, err := newGateway()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout())
		defer cancel()

		raw, err := g.Client.BountyList(ctx, big.NewInt(id))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching bounty: %v\n", err)
			os.Exit(1)
		}
		if !bounty.Exists(raw) {
			fmt.Fprintf(os.Stderr, "Bounty %d does not exist\n", id)
			os.Exit(1)
		}

		b, err := bounty.Normalize(g.Registry, g.ChainID, id, raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding bounty: %v\n", err)
			os.Exit(1)
		}

		detail, err := g.Detail.FetchDetail(ctx, b.IpfsHash)
		if err != nil {
			log.Printf("Error fetching bounty detail: %v", err)
		}

		result := struct {
			Bounty bounty.Bounty `json:"bounty"`
			Detail bounty.Detail `json:"detail"`
		}{
			Bounty: b,
			Detail: detail,
		}

		json.NewEncoder(os.Stdout).Encode(result)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show bounty counts and USD totals",
	Run: func(cmd *cobra.Command, args []string) {
		g, err := newGateway()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout())
		defer cancel()

		if err := g.Oracle.Refresh(ctx); err != nil {
			log.Printf("Price refresh failed, totals will be zero: %v", err)
		}

		numBounty, err := g.Client.NumBounty(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching bounty count: %v\n", err)
			os.Exit(1)
		}
		numClaimed, err := g.Client.NumClaimed(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching claimed count: %v\n", err)
			os.Exit(1)
		}
		entries, err := g.Client.GetAssetStatPage(ctx, big.NewInt(viper.GetInt64("stats_page_size")), big.NewInt(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching asset stats: %v\n", err)
			os.Exit(1)
		}
		digest, err := g.Client.PreStateDigest(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching pre-state digest: %v\n", err)
			os.Exit(1)
		}

		totals := stats.NewAggregator(g.Registry, g.Oracle, g.ChainID).Aggregate(entries)

		result := struct {
			NumBounty      uint64          `json:"num_bounty"`
			NumClaimed     uint64          `json:"num_claimed"`
			TotalUSD       decimal.Decimal `json:"total_usd"`
			ClaimedUSD     decimal.Decimal `json:"claimed_usd"`
			PreStateDigest string          `json:"pre_state_digest"`
		}{
			NumBounty:      numBounty.Uint64(),
			NumClaimed:     numClaimed.Uint64(),
			TotalUSD:       totals.TotalUSD,
			ClaimedUSD:     totals.ClaimedUSD,
			PreStateDigest: hexutil.Encode(digest[:]),
		}

		json.NewEncoder(os.Stdout).Encode(result)
	},
}

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Show USD prices for the supported currencies",
	Run: func(cmd *cobra.Command, args []string) {
		g, err := newGateway()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout())
		defer cancel()

		if err := g.Oracle.Refresh(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error refreshing prices: %v\n", err)
			os.Exit(1)
		}

		result := map[string]decimal.Decimal{
			"eth":   g.Oracle.PriceOf("ETH"),
			"lseth": g.Oracle.PriceOf("LSETH"),
			"dai":   g.Oracle.PriceOf("DAI"),
		}

		json.NewEncoder(os.Stdout).Encode(result)
	},
}

var createBountyCmd = &cobra.Command{
	Use:   "create [flag] [asset] [amount] [title] [ipfs-hash] [env-hash]",
	Short: "Create a new bounty",
	Long: `Create a new bounty, approving the asset spend first when the
	existing allowance does not cover the amount. Requires PRIVATE_KEY.`,
	Args: cobra.ExactArgs(6),
	Run: func(cmd *cobra.Command, args []string) {
		g, err := newGateway()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		orchestrator, err := g.newOrchestrator()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid amount: %v\n", err)
			os.Exit(1)
		}

		params := transaction.CreateParams{
			Flag:     common.HexToAddress(args[0]),
			Asset:    common.HexToAddress(args[1]),
			Amount:   amount,
			Title:    args[3],
			IpfsHash: args[4],
			EnvHash:  common.HexToHash(args[5]),
		}

		result, err := orchestrator.CreateBounty(context.Background(), params, logObserver)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating bounty: %v\n", err)
			os.Exit(1)
		}

		out := struct {
			BountyID  string `json:"bounty_id"`
			ApproveTx string `json:"approve_tx,omitempty"`
			CreateTx  string `json:"create_tx"`
		}{
			BountyID: result.BountyID.String(),
			CreateTx: result.CreateTx.Hex(),
		}
		if result.ApproveTx != (common.Hash{}) {
			out.ApproveTx = result.ApproveTx.Hex()
		}

		json.NewEncoder(os.Stdout).Encode(out)
	},
}

var claimBountyCmd = &cobra.Command{
	Use:   "claim [bounty-id] [claimer] [txs-hash] [post-state-digest] [seal]",
	Short: "Claim a bounty with a proof",
	Long:  `Submit a settlement proof for an open bounty. Requires PRIVATE_KEY.`,
	Args:  cobra.ExactArgs(5),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid bounty id: %v\n", err)
			os.Exit(1)
		}

		g, err := newGateway()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		orchestrator, err := g.newOrchestrator()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		result, err := orchestrator.ClaimBounty(context.Background(), transaction.ClaimParams{
			BountyID:        id,
			Claimer:         args[1],
			TxsHash:         args[2],
			PostStateDigest: args[3],
			Seal:            args[4],
		}, logObserver)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error claiming bounty: %v\n", err)
			os.Exit(1)
		}

		out := struct {
			ClaimTx string `json:"claim_tx"`
		}{
			ClaimTx: result.ClaimTx.Hex(),
		}

		json.NewEncoder(os.Stdout).Encode(out)
	},
}

func logObserver(phase string, state transaction.State) {
	log.Printf("Transaction phase %s: %s", phase, state)
}
