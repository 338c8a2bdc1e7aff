// Package suigraph is a GraphQL client for the Sui object indexer. It is the
// only component that talks to the indexer; everything it returns is parsed
// into domain types, with the indexer's numeric-as-string fields converted to
// integers at this boundary.
package suigraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// Client is a GraphQL client for the Sui indexer, used to query market
// objects, user coin holdings, and outcome position objects.
type Client struct {
	graphqlURL    string
	apiKey        string
	marketPackage string
	basePackage   string
	httpClient    *http.Client
	now           func() time.Time
}

// NewClient creates a new indexer client.
//
// graphqlURL is the indexer endpoint, e.g.
// "https://indexer.testnet.sui.io/graphql". marketPackage and basePackage
// are the on-chain package addresses publishing the market and USDC modules.
func NewClient(graphqlURL, apiKey, marketPackage, basePackage string) *Client {
	return &Client{
		graphqlURL:    graphqlURL,
		apiKey:        strings.TrimSpace(apiKey),
		marketPackage: marketPackage,
		basePackage:   basePackage,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// graphqlRequest is the standard GraphQL request envelope.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the standard GraphQL response envelope.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// categoryRe extracts an optional "#tag" category marker from market topics.
var categoryRe = regexp.MustCompile(`#([a-zA-Z0-9]+)`)

// marketContents is the raw JSON shape of a market object's Move contents.
// Numeric fields arrive as strings to avoid precision loss in transit.
type marketContents struct {
	Balance        string `json:"balance"`
	Description    string `json:"description"`
	Topic          string `json:"topic"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	No             string `json:"no"`
	Yes            string `json:"yes"`
	OracleConfigID string `json:"oracle_config_id"`
}

// FetchMarkets queries all market objects published by the configured market
// package and maps them into domain snapshots. Prices are left zero; the
// caller fills them from the price collaborator.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.Market, error) {
	query := `
		query Markets($type: String!) {
			objects(filter: { type: $type }) {
				nodes {
					address
					asMoveObject {
						contents {
							json
						}
					}
				}
			}
		}
	`

	variables := map[string]any{
		"type": c.marketPackage + "::market::Market",
	}

	respData, err := c.doQuery(ctx, query, variables)
	if err != nil {
		return nil, fmt.Errorf("suigraph: fetch markets: %w", err)
	}

	var result struct {
		Objects struct {
			Nodes []struct {
				Address      string `json:"address"`
				AsMoveObject struct {
					Contents struct {
						JSON marketContents `json:"json"`
					} `json:"contents"`
				} `json:"asMoveObject"`
			} `json:"nodes"`
		} `json:"objects"`
	}

	if err := json.Unmarshal(respData, &result); err != nil {
		return nil, fmt.Errorf("suigraph: decode markets: %w", err)
	}

	markets := make([]domain.Market, 0, len(result.Objects.Nodes))
	for _, node := range result.Objects.Nodes {
		contents := node.AsMoveObject.Contents.JSON

		topic, category := splitCategory(contents.Topic)

		markets = append(markets, domain.Market{
			Address:      node.Address,
			Topic:        topic,
			Category:     category,
			Description:  contents.Description,
			StartTime:    parseInt64(contents.StartTime),
			EndTime:      parseInt64(contents.EndTime),
			No:           parseInt64(contents.No),
			Yes:          parseInt64(contents.Yes),
			Balance:      parseUint64(contents.Balance),
			OracleConfig: contents.OracleConfigID,
		})
	}

	return markets, nil
}

// FetchUserCoins returns the USDC coin object IDs owned by an address along
// with the summed balance across them.
func (c *Client) FetchUserCoins(ctx context.Context, address string) (domain.UserCoins, error) {
	query := `
		query UserCoins($address: SuiAddress!, $coinType: String!, $objectType: String!) {
			address(address: $address) {
				balance(coinType: $coinType) {
					totalBalance
				}
				objects(filter: { type: $objectType }) {
					nodes {
						address
					}
				}
			}
		}
	`

	coinType := c.basePackage + "::usdc::USDC"
	variables := map[string]any{
		"address":    address,
		"coinType":   coinType,
		"objectType": "0x2::coin::Coin<" + coinType + ">",
	}

	respData, err := c.doQuery(ctx, query, variables)
	if err != nil {
		return domain.UserCoins{}, fmt.Errorf("suigraph: fetch user coins: %w", err)
	}

	var result struct {
		Address struct {
			Balance struct {
				TotalBalance string `json:"totalBalance"`
			} `json:"balance"`
			Objects struct {
				Nodes []struct {
					Address string `json:"address"`
				} `json:"nodes"`
			} `json:"objects"`
		} `json:"address"`
	}

	if err := json.Unmarshal(respData, &result); err != nil {
		return domain.UserCoins{}, fmt.Errorf("suigraph: decode user coins: %w", err)
	}

	coins := domain.UserCoins{
		Address:      address,
		TotalBalance: parseUint64(result.Address.Balance.TotalBalance),
		CoinIDs:      make([]string, 0, len(result.Address.Objects.Nodes)),
	}
	for _, node := range result.Address.Objects.Nodes {
		coins.CoinIDs = append(coins.CoinIDs, node.Address)
	}

	return coins, nil
}

// FetchPositionPurchases queries all outcome position objects for one side
// (the market module publishes a "Yes" and a "No" object type) and joins
// them with the timestamps of the transactions that created them. Records
// are returned for all markets; leaderboard filtering by market happens in
// the ranking package.
//
// Owner can be empty when ownership resolution is in flight; such records
// are returned as-is and skipped during aggregation.
func (c *Client) FetchPositionPurchases(ctx context.Context, side domain.TokenSide) ([]domain.PositionPurchase, error) {
	typeName := "No"
	if side == domain.TokenYes {
		typeName = "Yes"
	}

	query := `
		query Positions($type: String!) {
			objects(filter: { type: $type }) {
				edges {
					node {
						previousTransaction {
							digest
						}
						asMoveObject {
							contents {
								json
							}
							owner {
								__typename
								... on AddressOwner {
									address {
										address
									}
								}
							}
						}
					}
				}
			}
		}
	`

	variables := map[string]any{
		"type": c.basePackage + "::market::" + typeName,
	}

	respData, err := c.doQuery(ctx, query, variables)
	if err != nil {
		return nil, fmt.Errorf("suigraph: fetch %s positions: %w", typeName, err)
	}

	var result struct {
		Objects struct {
			Edges []struct {
				Node struct {
					PreviousTransaction struct {
						Digest string `json:"digest"`
					} `json:"previousTransaction"`
					AsMoveObject struct {
						Contents struct {
							JSON struct {
								MarketID string `json:"market_id"`
								Amount   string `json:"amount"`
							} `json:"json"`
						} `json:"contents"`
						Owner struct {
							Address struct {
								Address string `json:"address"`
							} `json:"address"`
						} `json:"owner"`
					} `json:"asMoveObject"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"objects"`
	}

	if err := json.Unmarshal(respData, &result); err != nil {
		return nil, fmt.Errorf("suigraph: decode %s positions: %w", typeName, err)
	}

	if len(result.Objects.Edges) == 0 {
		return nil, nil
	}

	digests := make([]string, 0, len(result.Objects.Edges))
	for _, edge := range result.Objects.Edges {
		digests = append(digests, edge.Node.PreviousTransaction.Digest)
	}

	timestamps, err := c.fetchTransactionTimestamps(ctx, digests)
	if err != nil {
		return nil, err
	}

	purchases := make([]domain.PositionPurchase, 0, len(result.Objects.Edges))
	for i, edge := range result.Objects.Edges {
		ts := c.now().UTC()
		if i < len(timestamps) && !timestamps[i].IsZero() {
			ts = timestamps[i]
		}
		purchases = append(purchases, domain.PositionPurchase{
			Owner:     edge.Node.AsMoveObject.Owner.Address.Address,
			Amount:    parseUint64(edge.Node.AsMoveObject.Contents.JSON.Amount),
			MarketID:  edge.Node.AsMoveObject.Contents.JSON.MarketID,
			Timestamp: ts,
		})
	}

	return purchases, nil
}

// FetchOracleBlobID resolves the oracle settings blob for a market's oracle
// in two hops: the oracle object carries a config_id, and the config object
// carries the blob_id under which the settings document is stored.
func (c *Client) FetchOracleBlobID(ctx context.Context, oracleID string) (string, error) {
	configID, err := c.fetchObjectField(ctx, oracleID, "config_id")
	if err != nil {
		return "", fmt.Errorf("suigraph: resolve oracle %s: %w", oracleID, err)
	}

	blobID, err := c.fetchObjectField(ctx, configID, "blob_id")
	if err != nil {
		return "", fmt.Errorf("suigraph: resolve oracle config %s: %w", configID, err)
	}

	return blobID, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// fetchTransactionTimestamps resolves the effect timestamps for a batch of
// transaction digests, preserving input order. Digests the indexer cannot
// resolve yield zero times.
func (c *Client) fetchTransactionTimestamps(ctx context.Context, digests []string) ([]time.Time, error) {
	query := `
		query TxTimestamps($digests: [String!]!) {
			multiGetTransactionEffects(keys: $digests) {
				timestamp
			}
		}
	`

	respData, err := c.doQuery(ctx, query, map[string]any{"digests": digests})
	if err != nil {
		return nil, fmt.Errorf("suigraph: fetch tx timestamps: %w", err)
	}

	var result struct {
		Effects []struct {
			Timestamp string `json:"timestamp"`
		} `json:"multiGetTransactionEffects"`
	}

	if err := json.Unmarshal(respData, &result); err != nil {
		return nil, fmt.Errorf("suigraph: decode tx timestamps: %w", err)
	}

	out := make([]time.Time, len(result.Effects))
	for i, e := range result.Effects {
		out[i] = parseTimestamp(e.Timestamp)
	}
	return out, nil
}

// fetchObjectField reads a single string field from an object's Move
// contents.
func (c *Client) fetchObjectField(ctx context.Context, objectID, field string) (string, error) {
	query := `
		query Object($address: SuiAddress!) {
			object(address: $address) {
				asMoveObject {
					contents {
						json
					}
				}
			}
		}
	`

	respData, err := c.doQuery(ctx, query, map[string]any{"address": objectID})
	if err != nil {
		return "", err
	}

	var result struct {
		Object struct {
			AsMoveObject struct {
				Contents struct {
					JSON map[string]json.RawMessage `json:"json"`
				} `json:"contents"`
			} `json:"asMoveObject"`
		} `json:"object"`
	}

	if err := json.Unmarshal(respData, &result); err != nil {
		return "", fmt.Errorf("decode object %s: %w", objectID, err)
	}

	raw, ok := result.Object.AsMoveObject.Contents.JSON[field]
	if !ok {
		return "", fmt.Errorf("object %s: field %q: %w", objectID, field, domain.ErrNotFound)
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("object %s: field %q not a string: %w", objectID, field, err)
	}
	return value, nil
}

// doQuery executes a GraphQL query against the indexer endpoint and returns
// the raw "data" field from the response.
func (c *Client) doQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	reqBody := graphqlRequest{
		Query:     query,
		Variables: variables,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

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

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}

	return gqlResp.Data, nil
}

// splitCategory extracts an optional "#tag" marker from a market topic and
// returns the cleaned topic plus the category.
func splitCategory(topic string) (string, string) {
	match := categoryRe.FindStringSubmatch(topic)
	if match == nil {
		return topic, ""
	}
	cleaned := strings.TrimSpace(strings.Replace(topic, match[0], "", 1))
	return cleaned, match[1]
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseUint64(s string) uint64 {
	n, _ := strconv.ParseUint(s, 10, 64)
	return n
}

// parseTimestamp accepts the indexer's ISO-8601 timestamps and falls back to
// unix milliseconds for older producers. Comparing these as strings is not
// safe across producers, so everything becomes a time.Time here.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
