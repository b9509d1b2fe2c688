// Package ipfs fetches off-chain bounty detail documents from an IPFS
// gateway. The fetch is opaque: whatever JSON the document holds is
// decoded into bounty.Detail and missing fields degrade to nothing.
package ipfs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tetrationlab/ztf-gateway/internal/bounty"
	"github.com/tetrationlab/ztf-gateway/internal/validate"
)

// DefaultTimeout bounds a single gateway fetch. There is no retry; a
// slow gateway is treated as a failed fetch.
const DefaultTimeout = 60 * time.Second

// Fetcher retrieves bounty detail documents by CID.
type Fetcher struct {
	gateway string
	client  *http.Client
}

// NewFetcher builds a fetcher against the given gateway base URL, e.g.
// "https://gateway.ipfs.io". A non-positive timeout falls back to
// DefaultTimeout.
func NewFetcher(gateway string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		gateway: gateway,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchDetail fetches and decodes the detail document for a content
// hash. The hash is validated before any network traffic.
func (f *Fetcher) FetchDetail(ctx context.Context, hash string) (bounty.Detail, error) {
	var detail bounty.Detail

	if err := validate.CID(hash); err != nil {
		return detail, err
	}

	url := fmt.Sprintf("%s/ipfs/%s", f.gateway, hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return detail, fmt.Errorf("failed to create detail request: %v", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return detail, fmt.Errorf("failed to fetch bounty detail: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return detail, fmt.Errorf("failed to fetch bounty detail: status code %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return detail, fmt.Errorf("failed to decode bounty detail: %v", err)
	}
	return detail, nil
}
