package transaction

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// State is the lifecycle position of one user-initiated flow. Every flow
// walks the states in order and ends in Succeeded or Failed; there is no
// automatic retry out of Failed.
type State string

const (
	StateIdle              State = "idle"
	StateSimulating        State = "simulating"
	StateAwaitingSignature State = "awaiting_signature"
	StateSubmitted         State = "submitted"
	StateConfirming        State = "confirming"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
)

// Observer is notified of every state transition of a flow. Optional.
type Observer func(phase string, state State)

// FlowError is the terminal failure of a flow, carrying the phase that
// failed and a human-readable cause.
type FlowError struct {
	Phase string
	Cause error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s phase failed: %v", e.Phase, e.Cause)
}

func (e *FlowError) Unwrap() error {
	return e.Cause
}

// CreateParams are the normalized inputs of a bounty creation.
type CreateParams struct {
	Flag     common.Address
	Callback common.Address // zero address when no callback is wanted
	Asset    common.Address
	Amount   decimal.Decimal // human units; scaled up by the asset's decimals
	Title    string
	IpfsHash string
	EnvHash  common.Hash

	// Cross-chain creation via wormhole relaying; zero chain id means a
	// plain same-chain bounty.
	WormholeChainID  uint16
	WormholeGasLimit *big.Int
}

// CreateResult reports the outcome of a completed creation flow.
type CreateResult struct {
	BountyID  *big.Int
	ApproveTx common.Hash // zero when the allowance already sufficed
	CreateTx  common.Hash
}

// ClaimParams are the raw user-entered claim inputs. All hex fields are
// validated before any simulation.
type ClaimParams struct {
	BountyID        uint64
	Claimer         string
	TxsHash         string
	PostStateDigest string
	Seal            string
}

// ClaimResult reports the outcome of a completed claim flow.
type ClaimResult struct {
	ClaimTx common.Hash
}
