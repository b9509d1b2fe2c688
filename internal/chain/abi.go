package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ABI of the ZTF bounty contract, matching the deployed interface.
const ztfABIJSON = `[
  {"type":"function","name":"numBounty","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"numClaimed","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getAssetStatPage","stateMutability":"view","inputs":[{"name":"num","type":"uint256"},{"name":"skip","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"asset","type":"address"},{"name":"total","type":"uint256"},{"name":"claimed","type":"uint256"}]}]},
  {"type":"function","name":"getBountyPage","stateMutability":"view","inputs":[{"name":"num","type":"uint256"},{"name":"skip","type":"uint256"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"flag","type":"address"},{"name":"owner","type":"address"},{"name":"callback","type":"address"},{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"claimed","type":"bool"},{"name":"lastUpdated","type":"uint256"},{"name":"envHash","type":"bytes32"},{"name":"title","type":"string"},{"name":"ipfsHash","type":"string"}]}]},
  {"type":"function","name":"bountyList","stateMutability":"view","inputs":[{"name":"bountyID","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"flag","type":"address"},{"name":"owner","type":"address"},{"name":"callback","type":"address"},{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"claimed","type":"bool"},{"name":"lastUpdated","type":"uint256"},{"name":"envHash","type":"bytes32"},{"name":"title","type":"string"},{"name":"ipfsHash","type":"string"}]}]},
  {"type":"function","name":"newBounty","stateMutability":"nonpayable","inputs":[{"name":"flag","type":"address"},{"name":"callback","type":"address"},{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"title","type":"string"},{"name":"ipfsHash","type":"string"},{"name":"envHash","type":"bytes32"}],"outputs":[]},
  {"type":"function","name":"newBountyCrossChain","stateMutability":"nonpayable","inputs":[{"name":"flag","type":"address"},{"name":"callback","type":"address"},{"name":"asset","type":"address"},{"name":"amount","type":"uint256"},{"name":"title","type":"string"},{"name":"ipfsHash","type":"string"},{"name":"envHash","type":"bytes32"},{"name":"chainId","type":"uint16"},{"name":"gasLimit","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[{"name":"bountyID","type":"uint256"},{"name":"zclaim","type":"tuple","components":[{"name":"claimer","type":"address"},{"name":"txs_hash","type":"bytes32"},{"name":"postStateDigest","type":"bytes32"},{"name":"seal","type":"bytes"}]}],"outputs":[]},
  {"type":"function","name":"PRE_STATE_DIGEST","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bytes32"}]},
  {"type":"event","name":"NewBounty","anonymous":false,"inputs":[{"name":"bountyID","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true}]},
  {"type":"event","name":"BountyClaimed","anonymous":false,"inputs":[{"name":"bountyID","type":"uint256","indexed":true},{"name":"claimer","type":"address","indexed":true}]}
]`

// Minimal ERC20 surface needed for bounty funding.
const erc20ABIJSON = `[
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

var (
	ZTFABI   abi.ABI
	ERC20ABI abi.ABI
)

func init() {
	var err error
	ZTFABI, err = abi.JSON(strings.NewReader(ztfABIJSON))
	if err != nil {
		panic("chain: bad ZTF ABI: " + err.Error())
	}
	ERC20ABI, err = abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic("chain: bad ERC20 ABI: " + err.Error())
	}
}
