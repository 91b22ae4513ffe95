package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"ms-verify/internal/models"
	"net/http"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second
	ownersPath     = "/v1/nfts/owners"
	// maxErrorBody caps how much of a failed response is kept in the error
	maxErrorBody = 512
)

// Client looks up token owners through an NFT indexer REST API.
type Client struct {
	baseURL  string
	chainID  int64
	clientID string
	secret   string
	timeout  time.Duration
	client   *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithTimeout overrides the request timeout regardless of option order.
// A client passed through WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCredentials sets the client id header and, if non-empty, a bearer secret.
func WithCredentials(clientID, secret string) ClientOption {
	return func(c *Client) {
		c.clientID = clientID
		c.secret = secret
	}
}

func NewClient(baseURL string, chainID int64, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		chainID: chainID,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}
	return c
}

// OwnersOf fetches the owner of every token ID in a single request.
func (c *Client) OwnersOf(ctx context.Context, contractAddress string, tokenIDs []string) (map[string]models.TokenOwner, error) {
	body, err := json.Marshal(models.BatchOwnershipRequest{
		ChainID:         c.chainID,
		ContractAddress: contractAddress,
		TokenIDs:        tokenIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal ownership request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ownersPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create ownership request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.clientID != "" {
		req.Header.Set("x-client-id", c.clientID)
	}
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ownership request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("ownership request failed with status %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	var out models.BatchOwnershipResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ownership response: %w", err)
	}
	if out.Result == nil {
		return nil, fmt.Errorf("ownership response missing result")
	}
	return out.Result, nil
}
