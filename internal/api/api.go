package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/viper"
	"github.com/tetrationlab/ztf-gateway/internal/bounty"
	"github.com/tetrationlab/ztf-gateway/internal/chain"
	"github.com/tetrationlab/ztf-gateway/internal/currency"
	"github.com/tetrationlab/ztf-gateway/internal/debounce"
	"github.com/tetrationlab/ztf-gateway/internal/ipfs"
	"github.com/tetrationlab/ztf-gateway/internal/prices"
	"github.com/tetrationlab/ztf-gateway/internal/stats"
	"github.com/tetrationlab/ztf-gateway/lib/transaction"
)

// refreshQuietPeriod coalesces bursts of explicit price-refresh requests
// into a single upstream fetch.
const refreshQuietPeriod = 5 * time.Second

func NewAPI(client *chain.Client, registry *currency.Registry, oracle *prices.Oracle,
	pager *bounty.Pager, detail *ipfs.Fetcher, orchestrator *transaction.Orchestrator,
	chainID uint64) *API {
	a := &API{
		Client:       client,
		Registry:     registry,
		Oracle:       oracle,
		Aggregator:   stats.NewAggregator(registry, oracle, chainID),
		Pager:        pager,
		Detail:       detail,
		Orchestrator: orchestrator,
		ChainID:      chainID,
	}
	a.priceRefresh = debounce.New(refreshQuietPeriod, func() {
		ctx, cancel := contextWithRefreshTimeout()
		defer cancel()
		if err := oracle.Refresh(ctx); err != nil {
			log.Printf("Debounced price refresh failed: %v", err)
		}
	})
	return a
}

func contextWithRefreshTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// HandleAuth exchanges the configured gateway API key for a JWT used on
// the write endpoints.
func (s *API) HandleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	expected := viper.GetString("gateway_api_key")
	if expected == "" || req.APIKey != expected {
		log.Println("Rejected auth attempt with bad API key.")
		http.Error(w, "Unauthorized: Invalid API key", http.StatusUnauthorized)
		return
	}

	claims := &Claims{
		Subject: "gateway",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(GetJWTKey())
	if err != nil {
		log.Printf("Failed to sign token: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{Token: signed})
}

// HandleHealth reports liveness and the age of the price snapshot.
func (s *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":   "ok",
		"chain_id": s.ChainID,
	}
	if fetched := s.Oracle.LastFetched(); !fetched.IsZero() {
		resp["prices_fetched_at"] = fetched.UTC()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
