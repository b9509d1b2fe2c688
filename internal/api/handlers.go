package api

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/viper"
	"github.com/tetrationlab/ztf-gateway/internal/bounty"
)

// statsPageSize is how many asset-stat entries the stats view samples.
// The reference deployment uses 2; totals are a lower bound when more
// assets exist.
func statsPageSize() int64 {
	n := viper.GetInt64("stats_page_size")
	if n <= 0 {
		return 2
	}
	return n
}

// HandleBounties serves one page of the bounty list. The page query
// parameter defaults to 0 and is clamped at 0.
func (s *API) HandleBounties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	page := int64(0)
	if v := r.URL.Query().Get("page"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid page parameter", http.StatusBadRequest)
			return
		}
		page = parsed
	}
	if page < 0 {
		page = 0
	}

	bounties, err := s.Pager.Page(r.Context(), page)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch bounty page: %v", err), http.StatusBadGateway)
		return
	}

	resp := BountyPageResponse{
		Page:      page,
		PageSize:  s.Pager.PageSize(),
		Bounties:  bounties,
		Exhausted: int64(len(bounties)) < s.Pager.PageSize(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleBounty serves a single bounty by id, or its off-chain detail
// when the path ends in /detail.
func (s *API) HandleBounty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/bounty/")
	parts := strings.Split(rest, "/")

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id < 0 {
		http.Error(w, "Invalid bounty id", http.StatusBadRequest)
		return
	}

	raw, err := s.Client.BountyList(r.Context(), big.NewInt(id))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch bounty: %v", err), http.StatusBadGateway)
		return
	}
	if !bounty.Exists(raw) {
		http.Error(w, "Bounty not found", http.StatusNotFound)
		return
	}

	b, err := bounty.Normalize(s.Registry, s.ChainID, id, raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Malformed bounty record: %v", err), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if len(parts) > 1 && parts[1] == "detail" {
		detail, err := s.Detail.FetchDetail(r.Context(), b.IpfsHash)
		if err != nil {
			// Detail is best-effort; a gateway failure degrades to an
			// empty document rather than failing the bounty view.
			json.NewEncoder(w).Encode(bounty.Detail{})
			return
		}
		json.NewEncoder(w).Encode(detail)
		return
	}

	json.NewEncoder(w).Encode(b)
}

// HandleStats serves counts and the USD-valued totals for the sampled
// asset-stat page.
func (s *API) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	numBounty, err := s.Client.NumBounty(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch bounty count: %v", err), http.StatusBadGateway)
		return
	}
	numClaimed, err := s.Client.NumClaimed(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch claimed count: %v", err), http.StatusBadGateway)
		return
	}

	pageSize := statsPageSize()
	assetStats, err := s.Client.GetAssetStatPage(ctx, big.NewInt(pageSize), big.NewInt(0))
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch asset stats: %v", err), http.StatusBadGateway)
		return
	}
	totals := s.Aggregator.Aggregate(assetStats)

	resp := StatsResponse{
		NumBounty:     numBounty.Uint64(),
		NumClaimed:    numClaimed.Uint64(),
		TotalUSD:      totals.TotalUSD,
		ClaimedUSD:    totals.ClaimedUSD,
		SampledAssets: len(assetStats),
	}

	if digest, err := s.Client.PreStateDigest(ctx); err == nil {
		resp.PreStateDigest = hexutil.Encode(digest[:])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandlePrices serves the price of each registered denomination and, on
// ?refresh=1, schedules a debounced snapshot refresh.
func (s *API) HandlePrices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Query().Get("refresh") == "1" {
		s.priceRefresh.Trigger()
	}

	resp := map[string]interface{}{
		"eth":   s.Oracle.PriceOf("eth"),
		"lseth": s.Oracle.PriceOf("lseth"),
		"dai":   s.Oracle.PriceOf("dai"),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
