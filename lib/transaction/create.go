package transaction

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"github.com/tetrationlab/ztf-gateway/internal/validate"
)

// CreateBounty runs the two-phase creation flow: approve the ZTF
// contract to pull the stake, then create the bounty. When the current
// allowance already covers the amount, the approve phase is skipped
// entirely and no approval signature is produced.
//
// The allowance check races with externally-initiated allowance changes
// (e.g. a revocation from another wallet session); such a race surfaces
// as a failed create phase and is an accepted limitation.
func (o *Orchestrator) CreateBounty(ctx context.Context, params CreateParams, observe Observer) (*CreateResult, error) {
	f := newFlow(observe)
	f.enter("approve")

	if err := validate.Title(params.Title); err != nil {
		return nil, f.fail(err)
	}
	if err := validate.CID(params.IpfsHash); err != nil {
		return nil, f.fail(err)
	}
	if params.Amount.Sign() <= 0 {
		return nil, f.fail(fmt.Errorf("amount must be positive"))
	}

	decimals := o.Registry.DecimalsOf(o.Client.ChainID.Uint64(), params.Asset)
	rawAmount := params.Amount.Shift(decimals).BigInt()

	// The stake must be funded before anything is signed.
	balance, err := o.Client.BalanceOf(ctx, params.Asset, o.from)
	if err != nil {
		return nil, f.fail(fmt.Errorf("failed to read balance: %v", err))
	}
	if balance.Cmp(rawAmount) < 0 {
		return nil, f.fail(fmt.Errorf("insufficient balance: have %s, need %s", balance, rawAmount))
	}

	result := &CreateResult{}

	// Phase 1: approve, unless the standing allowance already covers the
	// stake. Repeated creations with the same or smaller amount must not
	// prompt redundant approvals.
	allowance, err := o.Client.Allowance(ctx, params.Asset, o.from)
	if err != nil {
		return nil, f.fail(fmt.Errorf("failed to read allowance: %v", err))
	}
	if allowance.Cmp(rawAmount) >= 0 {
		log.Printf("Allowance %s already covers %s, skipping approval", allowance, rawAmount)
	} else {
		data, err := o.Client.PackApprove(rawAmount)
		if err != nil {
			return nil, f.fail(err)
		}
		receipt, err := o.executePhase(ctx, f, params.Asset, data)
		if err != nil {
			return nil, f.fail(err)
		}
		result.ApproveTx = receipt.TxHash
		log.Printf("Approval confirmed: %s", receipt.TxHash)
	}

	// Phase 2 starts only after phase 1's confirmation was observed.
	f.enter("create")

	// An unset callback stays the zero address, the contract's "no
	// callback" sentinel.
	var data []byte
	if params.WormholeChainID != 0 {
		gasLimit := params.WormholeGasLimit
		if gasLimit == nil {
			gasLimit = big.NewInt(0)
		}
		data, err = o.Client.PackNewBountyCrossChain(params.Flag, params.Callback, params.Asset, rawAmount,
			params.Title, params.IpfsHash, params.EnvHash, params.WormholeChainID, gasLimit)
	} else {
		data, err = o.Client.PackNewBounty(params.Flag, params.Callback, params.Asset, rawAmount,
			params.Title, params.IpfsHash, params.EnvHash)
	}
	if err != nil {
		return nil, f.fail(err)
	}

	receipt, err := o.executePhase(ctx, f, o.Client.ZTF, data)
	if err != nil {
		return nil, f.fail(err)
	}
	result.CreateTx = receipt.TxHash

	id, err := o.Client.ParseNewBountyID(receipt)
	if err != nil {
		return nil, f.fail(err)
	}
	result.BountyID = id

	f.to(StateSucceeded)
	log.Printf("Bounty %s created in %s", id, receipt.TxHash)
	return result, nil
}
