// Package relayer is the REST client for the sponsored-execution service.
// The relayer owns wallet signing, coin selection, gas, and on-chain retry
// policy; nereusd's only obligation is handing it well-formed payloads. The
// order wire encoding (role buy=0, token side no=0/yes=1) is fixed by the
// matching contract and serialized here exactly as validated upstream.
package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// Client is the REST client for the relayer API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a relayer client. baseURL is the relayer API root.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SubmitOrder submits a validated order intent for sponsored execution. It
// re-checks the taker-amount invariant as a last line of defense: nothing
// with zero expected shares may leave this process.
func (c *Client) SubmitOrder(ctx context.Context, intent domain.OrderIntent) (domain.OrderResult, error) {
	if intent.TakerAmount == 0 {
		return domain.OrderResult{}, fmt.Errorf("relayer: %w: zero taker amount", domain.ErrInvalidOrder)
	}
	if intent.Maker == "" || intent.MarketID == "" {
		return domain.OrderResult{}, fmt.Errorf("relayer: %w: maker and market required", domain.ErrInvalidOrder)
	}

	body := map[string]any{
		"market_id": intent.MarketID,
		"order": map[string]any{
			"maker":        intent.Maker,
			"maker_amount": intent.MakerAmount,
			"taker_amount": intent.TakerAmount,
			"maker_role":   uint8(intent.MakerRole),
			"token_id":     uint8(intent.TokenID),
			"expiration":   intent.Expiration,
			"salt":         intent.Salt,
		},
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/v1/orders", body)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("relayer: submit order: %w", err)
	}

	var result domain.OrderResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return domain.OrderResult{}, fmt.Errorf("relayer: decode order result: %w", err)
	}
	if !result.Success {
		return result, fmt.Errorf("relayer: order rejected: %s", result.Message)
	}

	return result, nil
}

// MintCompleteSet deposits collateral and mints matching YES+NO share sets
// (liquidity provision).
func (c *Client) MintCompleteSet(ctx context.Context, marketID, owner string, amount uint64) error {
	body := map[string]any{
		"market_id": marketID,
		"owner":     owner,
		"amount":    amount,
	}
	if err := c.doAck(ctx, "/v1/liquidity/mint", body); err != nil {
		return fmt.Errorf("relayer: mint complete set: %w", err)
	}
	return nil
}

// MergeCompleteSet burns matching YES+NO share sets back into collateral
// (liquidity withdrawal).
func (c *Client) MergeCompleteSet(ctx context.Context, marketID, owner string, amount uint64) error {
	body := map[string]any{
		"market_id": marketID,
		"owner":     owner,
		"amount":    amount,
	}
	if err := c.doAck(ctx, "/v1/liquidity/merge", body); err != nil {
		return fmt.Errorf("relayer: merge complete set: %w", err)
	}
	return nil
}

// CreateMarket asks the relayer to build, sign, and submit the market
// creation transaction, including sharing the oracle holder and config
// objects it creates alongside. The result digest identifies the creation
// transaction; the market itself surfaces through the indexer on the next
// refresh cycle.
func (c *Client) CreateMarket(ctx context.Context, spec domain.MarketCreate) (domain.OrderResult, error) {
	if spec.Creator == "" || spec.Topic == "" {
		return domain.OrderResult{}, fmt.Errorf("relayer: %w: creator and topic required", domain.ErrInvalidOrder)
	}

	body := map[string]any{
		"creator":     spec.Creator,
		"topic":       spec.Topic,
		"description": spec.Description,
		"start_time":  spec.StartTime,
		"end_time":    spec.EndTime,
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/v1/markets", body)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("relayer: create market: %w", err)
	}

	var result domain.OrderResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return domain.OrderResult{}, fmt.Errorf("relayer: decode create result: %w", err)
	}
	if !result.Success {
		return result, fmt.Errorf("relayer: market creation rejected: %s", result.Message)
	}

	return result, nil
}

// Faucet requests testnet USDC for an address. Testnet convenience only.
func (c *Client) Faucet(ctx context.Context, address string) error {
	if err := c.doAck(ctx, "/v1/faucet", map[string]any{"address": address}); err != nil {
		return fmt.Errorf("relayer: faucet: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doAck posts a request whose response carries only success/error.
func (c *Client) doAck(ctx context.Context, path string, body any) error {
	respBody, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("rejected: %s", result.Message)
	}
	return nil
}

// doRequest builds, sends, and reads an HTTP request against the relayer
// API. It returns the raw response body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	return respBody, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
