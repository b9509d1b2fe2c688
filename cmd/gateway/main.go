package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tetrationlab/ztf-gateway/internal/bounty"
	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/config"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
	"github.com/tetrationlab/ztf-gateway/internal/ipfs"
	"github.com/tetrationlab/ztf-gateway/internal/logger"
	"github.com/tetrationlab/ztf-gateway/internal/prices"
	"github.com/tetrationlab/ztf-gateway/lib/transaction"
)

var rootCmd = &cobra.Command{
	Use:   "ztf-gateway",
	Short: "ZTF Bounty Gateway",
	Long:  `Gateway daemon and CLI for the ZTF bounty contracts.`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(bountiesCmd)
	rootCmd.AddCommand(bountyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(pricesCmd)
	rootCmd.AddCommand(createBountyCmd)
	rootCmd.AddCommand(claimBountyCmd)
}

func initConfig() {
	// Secrets such as PRIVATE_KEY come from the environment, not the
	// config file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger.Init()
}

func main() {
	if len(os.Args) < 2 {
		// Default to the daemon when invoked without a subcommand
		os.Args = append(os.Args, "serve")
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// gateway bundles the read-side components shared by the daemon and the
// CLI subcommands.
type gateway struct {
	Client   *chain.Client
	Registry *currency.Registry
	Oracle   *prices.Oracle
	Pager    *bounty.Pager
	Detail   *ipfs.Fetcher
	ChainID  uint64
}

func contractAddress(chainID uint64) (common.Address, error) {
	contracts := viper.GetStringMapString("contracts")
	hex, ok := contracts[strconv.FormatUint(chainID, 10)]
	if !ok {
		return common.Address{}, fmt.Errorf("no ZTF deployment configured for chain %d", chainID)
	}
	return common.HexToAddress(hex), nil
}

func newGateway() (*gateway, error) {
	chainID := viper.GetUint64("chain_id")

	ztf, err := contractAddress(chainID)
	if err != nil {
		return nil, err
	}

	backend, err := ethclient.Dial(viper.GetString("rpc_url"))
	if err != nil {
		return nil, fmt.Errorf("error dialing RPC endpoint: %v", err)
	}

	client := chain.NewClient(backend, chainID, ztf)
	registry := currency.NewRegistry()
	oracle := prices.NewOracle(viper.GetString("price_url"))
	pager := bounty.NewPager(client, registry, chainID, viper.GetInt64("bounty_page_size"))
	detail := ipfs.NewFetcher(viper.GetString("ipfs_gateway"), viper.GetDuration("ipfs_timeout"))

	return &gateway{
		Client:   client,
		Registry: registry,
		Oracle:   oracle,
		Pager:    pager,
		Detail:   detail,
		ChainID:  chainID,
	}, nil
}

// newOrchestrator wires the signing side. PRIVATE_KEY is required for
// any command that submits transactions.
func (g *gateway) newOrchestrator() (*transaction.Orchestrator, error) {
	hexKey := os.Getenv("PRIVATE_KEY")
	if hexKey == "" {
		return nil, fmt.Errorf("PRIVATE_KEY is not set")
	}
	return transaction.NewOrchestrator(g.Client, g.Registry, hexKey, viper.GetDuration("tx_confirm_timeout"))
}

func commandTimeout() time.Duration {
	return 30 * time.Second
}
