package transaction

import (
	"context"
	"fmt"
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tetrationlab/ztf-gateway/internal/bounty"
	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/validate"
)

// ClaimBounty runs the single-phase claim flow: validate the proof
// artifact fields, check the bounty is real and unclaimed, then
// simulate, sign, submit, and await the claim transaction.
func (o *Orchestrator) ClaimBounty(ctx context.Context, params ClaimParams, observe Observer) (*ClaimResult, error) {
	f := newFlow(observe)
	f.enter("claim")

	// Input validation happens before anything touches the network.
	if err := validate.Address(params.Claimer); err != nil {
		return nil, f.fail(err)
	}
	if err := validate.Bytes32(params.TxsHash); err != nil {
		return nil, f.fail(fmt.Errorf("transactions sequence hash: %v", err))
	}
	if err := validate.Bytes32(params.PostStateDigest); err != nil {
		return nil, f.fail(fmt.Errorf("post state digest: %v", err))
	}
	if err := validate.Seal(params.Seal); err != nil {
		return nil, f.fail(err)
	}

	id := new(big.Int).SetUint64(params.BountyID)

	// Reject unknown and already-claimed bounties before simulating.
	raw, err := o.Client.BountyList(ctx, id)
	if err != nil {
		return nil, f.fail(fmt.Errorf("failed to look up bounty %d: %v", params.BountyID, err))
	}
	if !bounty.Exists(raw) {
		return nil, f.fail(fmt.Errorf("bounty %d does not exist", params.BountyID))
	}
	if raw.Claimed {
		return nil, f.fail(fmt.Errorf("bounty %d is already claimed", params.BountyID))
	}

	seal, err := hexutil.Decode(params.Seal)
	if err != nil {
		return nil, f.fail(fmt.Errorf("invalid proof seal: %v", err))
	}

	zclaim := chain.RawClaim{
		Claimer:         common.HexToAddress(params.Claimer),
		TxsHash:         common.HexToHash(params.TxsHash),
		PostStateDigest: common.HexToHash(params.PostStateDigest),
		Seal:            seal,
	}

	data, err := o.Client.PackClaim(id, zclaim)
	if err != nil {
		return nil, f.fail(err)
	}

	receipt, err := o.executePhase(ctx, f, o.Client.ZTF, data)
	if err != nil {
		return nil, f.fail(err)
	}

	f.to(StateSucceeded)
	log.Printf("Bounty %d claimed in %s", params.BountyID, receipt.TxHash)
	return &ClaimResult{ClaimTx: receipt.TxHash}, nil
}
