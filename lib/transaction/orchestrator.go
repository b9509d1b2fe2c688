// Package transaction drives the write flows against the ZTF contract:
// the two-phase approve/create sequence and the single-phase claim. Each
// invocation owns its own state machine; flows are sequenced, never
// locked, and a failed flow is terminal until the caller explicitly
// re-invokes it.
package transaction

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
)

const defaultConfirmPoll = 2 * time.Second

// Orchestrator holds the dependencies shared by all flows: the contract
// client, the currency registry for amount scaling, and the operator's
// signing key. It carries no per-flow state.
type Orchestrator struct {
	Client   *chain.Client
	Registry *currency.Registry

	key  *ecdsa.PrivateKey
	from common.Address

	confirmPoll    time.Duration
	confirmTimeout time.Duration
}

// NewOrchestrator builds an orchestrator signing with the given hex
// private key.
func NewOrchestrator(client *chain.Client, registry *currency.Registry, hexKey string, confirmTimeout time.Duration) (*Orchestrator, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %v", err)
	}
	return newOrchestrator(client, registry, key, confirmTimeout), nil
}

func newOrchestrator(client *chain.Client, registry *currency.Registry, key *ecdsa.PrivateKey, confirmTimeout time.Duration) *Orchestrator {
	if confirmTimeout <= 0 {
		confirmTimeout = 5 * time.Minute
	}
	return &Orchestrator{
		Client:         client,
		Registry:       registry,
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		confirmPoll:    defaultConfirmPoll,
		confirmTimeout: confirmTimeout,
	}
}

// From returns the signing address.
func (o *Orchestrator) From() common.Address {
	return o.from
}

// flow tracks the state machine of one invocation.
type flow struct {
	phase   string
	state   State
	observe Observer
}

func newFlow(observe Observer) *flow {
	f := &flow{state: StateIdle, observe: observe}
	return f
}

func (f *flow) enter(phase string) {
	f.phase = phase
	f.to(StateIdle)
}

func (f *flow) to(s State) {
	f.state = s
	log.Printf("Transaction flow %s: %s", f.phase, s)
	if f.observe != nil {
		f.observe(f.phase, s)
	}
}

// fail moves the flow to its terminal Failed state and wraps the cause.
func (f *flow) fail(cause error) error {
	f.to(StateFailed)
	return &FlowError{Phase: f.phase, Cause: cause}
}

// executePhase runs one on-chain transaction through the full lifecycle:
// simulate, sign, submit, await confirmation. Exactly one signature is
// produced. The returned receipt is confirmed successful.
func (o *Orchestrator) executePhase(ctx context.Context, f *flow, to common.Address, data []byte) (*types.Receipt, error) {
	backend := o.Client.Backend

	f.to(StateSimulating)
	msg := ethereum.CallMsg{From: o.from, To: &to, Data: data}
	if _, err := backend.CallContract(ctx, msg, nil); err != nil {
		return nil, fmt.Errorf("simulation reverted: %v", err)
	}

	f.to(StateAwaitingSignature)
	nonce, err := backend.PendingNonceAt(ctx, o.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %v", err)
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %v", err)
	}
	gasLimit, err := backend.EstimateGas(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %v", err)
	}

	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(o.Client.ChainID), o.key)
	if err != nil {
		return nil, fmt.Errorf("signing rejected: %v", err)
	}

	f.to(StateSubmitted)
	if err := backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to submit transaction: %v", err)
	}
	log.Printf("Transaction submitted: %s", signed.Hash())

	f.to(StateConfirming)
	receipt, err := o.waitMined(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s confirmed as failed", signed.Hash())
	}
	return receipt, nil
}

// waitMined polls for the transaction receipt until it appears or the
// confirmation timeout elapses.
func (o *Orchestrator) waitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, o.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(o.confirmPoll)
	defer ticker.Stop()

	for {
		receipt, err := o.Client.Backend.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for transaction %s: %v", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}
