// Package suinode is the REST client for the read-only move-call gateway in
// front of the full node. The gateway executes view functions without gas or
// signing and returns raw BCS-encoded return values; this package owns
// decoding those bytes into domain values.
package suinode

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
	"github.com/nereuslabs/nereusd/internal/pricing"
)

// inspectSender is the dummy sender used for read-only inspection calls.
const inspectSender = "0x0000000000000000000000000000000000000000000000000000000000000000"

// Client talks to the view-call gateway.
type Client struct {
	baseURL       string
	marketPackage string
	httpClient    *http.Client
}

// NewClient creates a gateway client. baseURL is the gateway root, e.g.
// "https://fullnode.testnet.sui.io:443"; marketPackage is the package
// address publishing the market module.
func NewClient(baseURL, marketPackage string) *Client {
	return &Client{
		baseURL:       baseURL,
		marketPackage: marketPackage,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// inspectRequest is the gateway's view-call envelope.
type inspectRequest struct {
	Sender    string   `json:"sender"`
	Target    string   `json:"target"`
	Arguments []string `json:"arguments"`
}

// inspectResponse carries the BCS-encoded return values of a view call.
// Each entry is a [base64 bytes, move type] pair.
type inspectResponse struct {
	Results []struct {
		ReturnValues [][2]string `json:"returnValues"`
	} `json:"results"`
	Error string `json:"error,omitempty"`
}

// GetMarketPrice executes the market module's get_market_price view function
// and returns the scaled (yes, no) price pair. The contract returns only the
// YES price; the NO price is derived as PriceScale - yes.
//
// A zero yes price is returned as-is; deciding whether that is tradable is
// the caller's concern (it is not -- see pricing.ShareAmount).
func (c *Client) GetMarketPrice(ctx context.Context, marketID string) (yes, no uint64, err error) {
	req := inspectRequest{
		Sender:    inspectSender,
		Target:    c.marketPackage + "::market::get_market_price",
		Arguments: []string{marketID},
	}

	resp, err := c.doInspect(ctx, req)
	if err != nil {
		return 0, 0, fmt.Errorf("suinode: get market price %s: %w", marketID, err)
	}

	if len(resp.Results) == 0 || len(resp.Results[0].ReturnValues) == 0 {
		return 0, 0, fmt.Errorf("suinode: get market price %s: empty return values: %w", marketID, domain.ErrNotFound)
	}

	rv := resp.Results[0].ReturnValues[0]
	if rv[1] != "u64" {
		return 0, 0, fmt.Errorf("suinode: get market price %s: unexpected return type %q", marketID, rv[1])
	}

	yes, err = decodeU64(rv[0])
	if err != nil {
		return 0, 0, fmt.Errorf("suinode: get market price %s: %w", marketID, err)
	}
	if yes > pricing.PriceScale {
		return 0, 0, fmt.Errorf("suinode: get market price %s: yes price %d above scale: %w", marketID, yes, domain.ErrInvalidPrice)
	}

	return yes, pricing.NoPrice(yes), nil
}

// doInspect posts a view call and decodes the response envelope.
func (c *Client) doInspect(ctx context.Context, ireq inspectRequest) (*inspectResponse, error) {
	jsonBody, err := json.Marshal(ireq)
	if err != nil {
		return nil, fmt.Errorf("marshal inspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/inspect", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var iresp inspectResponse
	if err := json.Unmarshal(body, &iresp); err != nil {
		return nil, fmt.Errorf("decode inspect response: %w", err)
	}
	if iresp.Error != "" {
		return nil, fmt.Errorf("inspect error: %s", iresp.Error)
	}

	return &iresp, nil
}

// decodeU64 parses a base64-encoded BCS u64: exactly 8 bytes, little-endian.
func decodeU64(b64 string) (uint64, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return 0, fmt.Errorf("decode return value: %w", err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("u64 return value: expected 8 bytes, got %d", len(raw))
	}
	return binary.LittleEndian.Uint64(raw), nil
}
