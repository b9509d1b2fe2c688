// Package chain is the typed client for the ZTF bounty contract and the
// ERC20 tokens it pays out in. Raw return data is always decoded against
// the ABI into the Raw* tuple types; nothing downstream touches
// loosely-shaped values.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RawBounty is the bounty tuple exactly as the contract returns it.
type RawBounty struct {
	Flag        common.Address
	Owner       common.Address
	Callback    common.Address
	Asset       common.Address
	Amount      *big.Int
	Claimed     bool
	LastUpdated *big.Int
	EnvHash     [32]byte
	Title       string
	IpfsHash    string
}

// RawAssetStat is one per-asset (total, claimed) entry of the stat page.
type RawAssetStat struct {
	Asset   common.Address
	Total   *big.Int
	Claimed *big.Int
}

// RawClaim is the ZClaim tuple submitted with a claim transaction.
type RawClaim struct {
	Claimer         common.Address
	TxsHash         [32]byte
	PostStateDigest [32]byte
	Seal            []byte
}

// Backend is the slice of the RPC client the gateway needs. Satisfied by
// *ethclient.Client; tests substitute a fake.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Client wraps a Backend with the ZTF contract address for one chain.
type Client struct {
	Backend Backend
	ChainID *big.Int
	ZTF     common.Address
}

func NewClient(backend Backend, chainID uint64, ztf common.Address) *Client {
	return &Client{
		Backend: backend,
		ChainID: new(big.Int).SetUint64(chainID),
		ZTF:     ztf,
	}
}

// call packs, executes, and unpacks one read-only contract call.
func (c *Client) call(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %v", method, err)
	}

	res, err := c.Backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %v", method, err)
	}

	out, err := contractABI.Unpack(method, res)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s return data: %v", method, err)
	}
	return out, nil
}

// NumBounty returns the total number of bounties ever created.
func (c *Client) NumBounty(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, c.ZTF, ZTFABI, "numBounty")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// NumClaimed returns the number of bounties already claimed.
func (c *Client) NumClaimed(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, c.ZTF, ZTFABI, "numClaimed")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// GetAssetStatPage returns up to num per-asset stat entries at offset skip.
func (c *Client) GetAssetStatPage(ctx context.Context, num, skip *big.Int) ([]RawAssetStat, error) {
	out, err := c.call(ctx, c.ZTF, ZTFABI, "getAssetStatPage", num, skip)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]RawAssetStat)).(*[]RawAssetStat), nil
}

// GetBountyPage returns up to num bounty tuples at offset skip. A short
// or empty page signals the end of the list.
func (c *Client) GetBountyPage(ctx context.Context, num, skip *big.Int) ([]RawBounty, error) {
	out, err := c.call(ctx, c.ZTF, ZTFABI, "getBountyPage", num, skip)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]RawBounty)).(*[]RawBounty), nil
}

// BountyList looks up a single bounty by id. Nonexistent ids come back
// as a zero-valued tuple with a zero owner address.
func (c *Client) BountyList(ctx context.Context, id *big.Int) (RawBounty, error) {
	out, err := c.call(ctx, c.ZTF, ZTFABI, "bountyList", id)
	if err != nil {
		return RawBounty{}, err
	}
	return *abi.ConvertType(out[0], new(RawBounty)).(*RawBounty), nil
}

// PreStateDigest reads the zkvm image id the contract verifies against.
func (c *Client) PreStateDigest(ctx context.Context) ([32]byte, error) {
	out, err := c.call(ctx, c.ZTF, ZTFABI, "PRE_STATE_DIGEST")
	if err != nil {
		return [32]byte{}, err
	}
	return *abi.ConvertType(out[0], new([32]byte)).(*[32]byte), nil
}

// BalanceOf reads the ERC20 balance of owner for the given token.
func (c *Client) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, ERC20ABI, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Allowance reads how much of owner's token the ZTF contract may spend.
func (c *Client) Allowance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, ERC20ABI, "allowance", owner, c.ZTF)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// PackApprove encodes an approve(spender=ZTF, amount) call.
func (c *Client) PackApprove(amount *big.Int) ([]byte, error) {
	data, err := ERC20ABI.Pack("approve", c.ZTF, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack approve call: %v", err)
	}
	return data, nil
}

// PackNewBounty encodes a newBounty call.
func (c *Client) PackNewBounty(flag, callback, asset common.Address, amount *big.Int, title, ipfsHash string, envHash [32]byte) ([]byte, error) {
	data, err := ZTFABI.Pack("newBounty", flag, callback, asset, amount, title, ipfsHash, envHash)
	if err != nil {
		return nil, fmt.Errorf("failed to pack newBounty call: %v", err)
	}
	return data, nil
}

// PackNewBountyCrossChain encodes the wormhole-relayed creation variant.
func (c *Client) PackNewBountyCrossChain(flag, callback, asset common.Address, amount *big.Int, title, ipfsHash string, envHash [32]byte, wormholeChainID uint16, gasLimit *big.Int) ([]byte, error) {
	data, err := ZTFABI.Pack("newBountyCrossChain", flag, callback, asset, amount, title, ipfsHash, envHash, wormholeChainID, gasLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to pack newBountyCrossChain call: %v", err)
	}
	return data, nil
}

// PackClaim encodes a claim call for the given bounty id.
func (c *Client) PackClaim(id *big.Int, zclaim RawClaim) ([]byte, error) {
	data, err := ZTFABI.Pack("claim", id, zclaim)
	if err != nil {
		return nil, fmt.Errorf("failed to pack claim call: %v", err)
	}
	return data, nil
}

// ParseNewBountyID recovers the assigned bounty id from the NewBounty
// event in a creation receipt.
func (c *Client) ParseNewBountyID(receipt *types.Receipt) (*big.Int, error) {
	eventID := ZTFABI.Events["NewBounty"].ID
	for _, l := range receipt.Logs {
		if l.Address != c.ZTF || len(l.Topics) < 2 || l.Topics[0] != eventID {
			continue
		}
		return new(big.Int).SetBytes(l.Topics[1].Bytes()), nil
	}
	return nil, fmt.Errorf("no NewBounty event in receipt %s", receipt.TxHash)
}
