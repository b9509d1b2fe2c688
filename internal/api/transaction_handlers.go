package api

import (
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/tetrationlab/ztf-gateway/internal/validate"
	"github.com/tetrationlab/ztf-gateway/lib/transaction"
)

// HandleCreateBounty drives the two-phase approve/create flow for a
// creation request. The handler blocks until both phases confirm or one
// fails; a failure is terminal and the caller must re-submit explicitly.
func (s *API) HandleCreateBounty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	var req CreateBountyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params, err := s.createParamsFromRequest(req)
	if err != nil {
		writeTransactionResponse(w, TransactionResponse{Status: "failed", Message: err.Error()})
		return
	}

	result, err := s.Orchestrator.CreateBounty(r.Context(), params, nil)
	if err != nil {
		writeTransactionResponse(w, TransactionResponse{
			Status:  "failed",
			Message: fmt.Sprintf("Error creating bounty: %v", err),
		})
		return
	}

	resp := TransactionResponse{
		Status:   "success",
		Message:  "Bounty created and confirmed",
		TxID:     result.CreateTx.Hex(),
		BountyID: result.BountyID.String(),
	}
	if result.ApproveTx != (common.Hash{}) {
		resp.ApproveTx = result.ApproveTx.Hex()
	}
	writeTransactionResponse(w, resp)
}

// createParamsFromRequest validates the user-entered creation fields and
// converts them to orchestrator parameters. Validation failures never
// reach the network layer.
func (s *API) createParamsFromRequest(req CreateBountyRequest) (transaction.CreateParams, error) {
	var params transaction.CreateParams

	if err := validate.Address(req.Flag); err != nil {
		return params, fmt.Errorf("flag: %v", err)
	}
	if req.Callback != "" {
		if err := validate.Address(req.Callback); err != nil {
			return params, fmt.Errorf("callback: %v", err)
		}
	}
	if err := validate.Address(req.Asset); err != nil {
		return params, fmt.Errorf("asset: %v", err)
	}
	if err := validate.Title(req.Title); err != nil {
		return params, err
	}
	if err := validate.CID(req.IpfsHash); err != nil {
		return params, err
	}
	if err := validate.Bytes32(req.EnvHash); err != nil {
		return params, fmt.Errorf("environment hash: %v", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		return params, fmt.Errorf("invalid amount: %q", req.Amount)
	}

	if req.WormholeChainID != 0 && !s.wormholeEnabled() {
		return params, fmt.Errorf("cross-chain creation is not enabled on chain %d", s.ChainID)
	}

	params = transaction.CreateParams{
		Flag:            common.HexToAddress(req.Flag),
		Callback:        common.HexToAddress(req.Callback),
		Asset:           common.HexToAddress(req.Asset),
		Amount:          amount,
		Title:           req.Title,
		IpfsHash:        req.IpfsHash,
		EnvHash:         common.HexToHash(req.EnvHash),
		WormholeChainID: req.WormholeChainID,
	}
	if req.WormholeGasLimit != 0 {
		params.WormholeGasLimit = new(big.Int).SetUint64(req.WormholeGasLimit)
	}
	return params, nil
}

// wormholeEnabled reports whether the serving chain relays cross-chain
// creations through wormhole.
func (s *API) wormholeEnabled() bool {
	for _, id := range viper.GetStringSlice("wormhole_chains") {
		if id == strconv.FormatUint(s.ChainID, 10) {
			return true
		}
	}
	return false
}

// HandleClaimBounty drives the claim flow for a submitted proof.
func (s *API) HandleClaimBounty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	var req ClaimBountyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.Orchestrator.ClaimBounty(r.Context(), transaction.ClaimParams{
		BountyID:        req.BountyID,
		Claimer:         req.Claimer,
		TxsHash:         req.TxsHash,
		PostStateDigest: req.PostStateDigest,
		Seal:            req.Seal,
	}, nil)
	if err != nil {
		writeTransactionResponse(w, TransactionResponse{
			Status:  "failed",
			Message: fmt.Sprintf("Error claiming bounty: %v", err),
		})
		return
	}

	writeTransactionResponse(w, TransactionResponse{
		Status:  "success",
		Message: "Bounty claimed and confirmed",
		TxID:    result.ClaimTx.Hex(),
	})
}

func writeTransactionResponse(w http.ResponseWriter, resp TransactionResponse) {
	// Convert the response struct to a JSON string for logging
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
	} else {
		log.Println("Response: ", string(respJson))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
