package transaction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
)

var (
	ztfAddr   = common.HexToAddress("0xe52beb4e12122f9a34ae9aa14d5098c2aeec79c0")
	assetAddr = common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f")
)

// fakeBackend plays the RPC endpoint: it answers reads from canned data
// and mines submitted transactions instantly.
type fakeBackend struct {
	balance   *big.Int
	allowance *big.Int
	bounty    chain.RawBounty

	failSimulation bool
	failSend       bool

	calls    int
	sent     []*types.Transaction
	receipts map[common.Hash]*types.Receipt
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		balance:   new(big.Int).Lsh(big.NewInt(1), 128),
		allowance: big.NewInt(0),
		receipts:  map[common.Hash]*types.Receipt{},
	}
}

func selector(a, b []byte) bool {
	return len(a) >= 4 && bytes.Equal(a[:4], b)
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	switch {
	case selector(msg.Data, chain.ERC20ABI.Methods["balanceOf"].ID):
		return chain.ERC20ABI.Methods["balanceOf"].Outputs.Pack(f.balance)
	case selector(msg.Data, chain.ERC20ABI.Methods["allowance"].ID):
		return chain.ERC20ABI.Methods["allowance"].Outputs.Pack(f.allowance)
	case selector(msg.Data, chain.ZTFABI.Methods["bountyList"].ID):
		return chain.ZTFABI.Methods["bountyList"].Outputs.Pack(f.bounty)
	default:
		// Simulation of a state-changing call.
		if f.failSimulation {
			return nil, fmt.Errorf("execution reverted")
		}
		return nil, nil
	}
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 210_000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.failSend {
		return fmt.Errorf("user rejected signing")
	}
	f.sent = append(f.sent, tx)

	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}
	if selector(tx.Data(), chain.ZTFABI.Methods["newBounty"].ID) ||
		selector(tx.Data(), chain.ZTFABI.Methods["newBountyCrossChain"].ID) {
		receipt.Logs = []*types.Log{{
			Address: ztfAddr,
			Topics: []common.Hash{
				chain.ZTFABI.Events["NewBounty"].ID,
				common.BigToHash(big.NewInt(42)),
				common.Hash{},
			},
		}}
	}
	f.receipts[tx.Hash()] = receipt
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	receipt, ok := f.receipts[txHash]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return receipt, nil
}

func newTestOrchestrator(t *testing.T, backend *fakeBackend) *Orchestrator {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	client := chain.NewClient(backend, currency.ChainGoerli, ztfAddr)
	o := newOrchestrator(client, currency.NewRegistry(), key, time.Minute)
	o.confirmPoll = time.Millisecond
	return o
}

func createParams() CreateParams {
	return CreateParams{
		Flag:     common.HexToAddress("0x1000000000000000000000000000000000000001"),
		Asset:    assetAddr,
		Amount:   decimal.RequireFromString("12501.9"),
		Title:    "Pwn Me If You Can!",
		IpfsHash: "QmUhguprqR9wCh6k1f9q8SDymxffxksr6XKR1m2iTgBWGR",
		EnvHash:  common.HexToHash("0x2d6d931eaafbf58c5d639623ef1e19e626ffb3e9bdc0a6ee5a4da5879ddcb325"),
	}
}

func TestCreateSkipsApprovalWhenAllowanceSufficient(t *testing.T) {
	backend := newFakeBackend()
	backend.allowance = decimal.RequireFromString("12501.9").Shift(18).BigInt()
	o := newTestOrchestrator(t, backend)

	result, err := o.CreateBounty(context.Background(), createParams(), nil)
	if err != nil {
		t.Fatalf("CreateBounty: %v", err)
	}

	// A sufficient standing allowance must never prompt an approval
	// signature; the only transaction is the creation itself.
	if len(backend.sent) != 1 {
		t.Fatalf("sent %d transactions, want 1", len(backend.sent))
	}
	if !selector(backend.sent[0].Data(), chain.ZTFABI.Methods["newBounty"].ID) {
		t.Error("the single transaction is not newBounty")
	}
	if result.ApproveTx != (common.Hash{}) {
		t.Errorf("ApproveTx = %s, want zero hash", result.ApproveTx)
	}
	if result.BountyID == nil || result.BountyID.Int64() != 42 {
		t.Errorf("BountyID = %v, want 42", result.BountyID)
	}
}

func TestCreateApprovesThenCreates(t *testing.T) {
	backend := newFakeBackend()
	o := newTestOrchestrator(t, backend)

	var transitions []string
	observe := func(phase string, state State) {
		transitions = append(transitions, phase+":"+string(state))
	}

	result, err := o.CreateBounty(context.Background(), createParams(), observe)
	if err != nil {
		t.Fatalf("CreateBounty: %v", err)
	}

	if len(backend.sent) != 2 {
		t.Fatalf("sent %d transactions, want 2 (approve then create)", len(backend.sent))
	}
	if !selector(backend.sent[0].Data(), chain.ERC20ABI.Methods["approve"].ID) {
		t.Error("first transaction is not approve")
	}
	if to := backend.sent[0].To(); to == nil || *to != assetAddr {
		t.Errorf("approve sent to %v, want token %s", to, assetAddr)
	}
	if !selector(backend.sent[1].Data(), chain.ZTFABI.Methods["newBounty"].ID) {
		t.Error("second transaction is not newBounty")
	}
	if to := backend.sent[1].To(); to == nil || *to != ztfAddr {
		t.Errorf("newBounty sent to %v, want ZTF %s", to, ztfAddr)
	}
	if result.ApproveTx == (common.Hash{}) || result.CreateTx == (common.Hash{}) {
		t.Error("result is missing transaction hashes")
	}

	// The create phase must not begin before the approve phase confirms.
	want := []string{
		"approve:idle",
		"approve:simulating",
		"approve:awaiting_signature",
		"approve:submitted",
		"approve:confirming",
		"create:idle",
		"create:simulating",
		"create:awaiting_signature",
		"create:submitted",
		"create:confirming",
		"create:succeeded",
	}
	if diff := cmp.Diff(want, transitions); diff != "" {
		t.Errorf("state transitions (-want +got):\n%s", diff)
	}
}

func TestCreateCrossChainVariant(t *testing.T) {
	backend := newFakeBackend()
	backend.allowance = decimal.RequireFromString("12501.9").Shift(18).BigInt()
	o := newTestOrchestrator(t, backend)

	params := createParams()
	params.WormholeChainID = 2
	params.WormholeGasLimit = big.NewInt(500_000)

	if _, err := o.CreateBounty(context.Background(), params, nil); err != nil {
		t.Fatalf("CreateBounty: %v", err)
	}
	if !selector(backend.sent[0].Data(), chain.ZTFABI.Methods["newBountyCrossChain"].ID) {
		t.Error("cross-chain params did not select newBountyCrossChain")
	}
}

func TestCreateFailsOnSimulationRevert(t *testing.T) {
	backend := newFakeBackend()
	backend.failSimulation = true
	o := newTestOrchestrator(t, backend)

	var final State
	_, err := o.CreateBounty(context.Background(), createParams(), func(_ string, s State) { final = s })
	if err == nil {
		t.Fatal("CreateBounty succeeded despite reverting simulation")
	}
	var flowErr *FlowError
	if !errors.As(err, &flowErr) {
		t.Fatalf("error type = %T, want *FlowError", err)
	}
	if final != StateFailed {
		t.Errorf("final state = %s, want %s", final, StateFailed)
	}
	// A reverted simulation means nothing was ever signed or sent.
	if len(backend.sent) != 0 {
		t.Errorf("sent %d transactions after reverting simulation, want 0", len(backend.sent))
	}
}

func TestCreateFailsOnInsufficientBalance(t *testing.T) {
	backend := newFakeBackend()
	backend.balance = big.NewInt(1) // far below the 12501.9 token stake
	o := newTestOrchestrator(t, backend)

	if _, err := o.CreateBounty(context.Background(), createParams(), nil); err == nil {
		t.Fatal("CreateBounty succeeded with an unfunded stake")
	}
	if len(backend.sent) != 0 {
		t.Errorf("sent %d transactions, want 0", len(backend.sent))
	}
}

func TestCreateFailsOnRejectedSubmission(t *testing.T) {
	backend := newFakeBackend()
	backend.failSend = true
	o := newTestOrchestrator(t, backend)

	if _, err := o.CreateBounty(context.Background(), createParams(), nil); err == nil {
		t.Fatal("CreateBounty succeeded despite rejected submission")
	}
	if len(backend.sent) != 0 {
		t.Errorf("sent %d transactions, want 0", len(backend.sent))
	}
}

func claimableBounty() chain.RawBounty {
	return chain.RawBounty{
		Owner:       common.HexToAddress("0xC0FFEEC0FFEEC0FFEEC0FFEEC0FFEEC0FFEEC0FF"),
		Asset:       assetAddr,
		Amount:      big.NewInt(1e18),
		LastUpdated: big.NewInt(1697500800),
		Title:       "Sample Bounty",
		IpfsHash:    "QmUhguprqR9wCh6k1f9q8SDymxffxksr6XKR1m2iTgBWGR",
	}
}

func claimParams() ClaimParams {
	return ClaimParams{
		BountyID:        7,
		Claimer:         "0xb4fbf271143f4fbf7b91a5ded31805e42b2208d6",
		TxsHash:         "0x17436af7b3d1fe3b4f49ebcc7e48c0a7045ae86c9012a013032768b2f1a0bf56",
		PostStateDigest: "0x27436af7b3d1fe3b4f49ebcc7e48c0a7045ae86c9012a013032768b2f1a0bf56",
		Seal:            "0x" + strings.Repeat("ab", 256),
	}
}

func TestClaimBounty(t *testing.T) {
	backend := newFakeBackend()
	backend.bounty = claimableBounty()
	o := newTestOrchestrator(t, backend)

	result, err := o.ClaimBounty(context.Background(), claimParams(), nil)
	if err != nil {
		t.Fatalf("ClaimBounty: %v", err)
	}
	if len(backend.sent) != 1 {
		t.Fatalf("sent %d transactions, want 1", len(backend.sent))
	}
	if !selector(backend.sent[0].Data(), chain.ZTFABI.Methods["claim"].ID) {
		t.Error("transaction is not claim")
	}
	if result.ClaimTx == (common.Hash{}) {
		t.Error("result is missing the claim transaction hash")
	}
}

func TestClaimRejectsBadSealBeforeAnyNetworkCall(t *testing.T) {
	backend := newFakeBackend()
	backend.bounty = claimableBounty()
	o := newTestOrchestrator(t, backend)

	params := claimParams()
	params.Seal = "0x" + strings.Repeat("ab", 255) // 510 hex digits, one word short

	if _, err := o.ClaimBounty(context.Background(), params, nil); err == nil {
		t.Fatal("short seal accepted")
	}
	if backend.calls != 0 {
		t.Errorf("made %d contract calls for an invalid seal, want 0", backend.calls)
	}
	if len(backend.sent) != 0 {
		t.Errorf("sent %d transactions, want 0", len(backend.sent))
	}
}

func TestClaimRejectsAlreadyClaimedBounty(t *testing.T) {
	backend := newFakeBackend()
	b := claimableBounty()
	b.Claimed = true
	backend.bounty = b
	o := newTestOrchestrator(t, backend)

	if _, err := o.ClaimBounty(context.Background(), claimParams(), nil); err == nil {
		t.Fatal("claim against an already-claimed bounty accepted")
	}
	if len(backend.sent) != 0 {
		t.Errorf("sent %d transactions, want 0", len(backend.sent))
	}
}

func TestClaimRejectsUnknownBounty(t *testing.T) {
	backend := newFakeBackend()
	// Zero-valued tuple, as the contract returns for unknown ids.
	backend.bounty = chain.RawBounty{Amount: big.NewInt(0), LastUpdated: big.NewInt(0)}
	o := newTestOrchestrator(t, backend)

	if _, err := o.ClaimBounty(context.Background(), claimParams(), nil); err == nil {
		t.Fatal("claim against a nonexistent bounty accepted")
	}
}
