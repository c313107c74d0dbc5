package banking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/efix-securitizadora/recon-backend/internal/infrastructure/config"
)

// tokenSlack is subtracted from the token lifetime so we re-authenticate
// before the server-side expiry.
const tokenSlack = 120 * time.Second

// Client is the iHold Banking API client.
// It authenticates with OAuth client credentials and refreshes the token
// transparently when it expires.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *retryablehttp.Client
	logger       *slog.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// Compile-time check that Client implements StatementSource
var _ StatementSource = (*Client)(nil)

// NewClient creates a new iHold client from config
func NewClient(cfg config.BankingConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 4 * time.Second
	rc.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	rc.Logger = nil

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         rc,
		logger:       logger,
	}
}

// Statements fetches the statement feed for a date window.
// Entries come back raw; callers normalize them before matching.
func (c *Client) Statements(ctx context.Context, from, to time.Time) ([]RawStatement, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("include", "payload,transactionType,status")
	if !from.IsZero() && !to.IsZero() {
		params.Set("filter[between_dates]", from.Format("2006-01-02")+","+to.Format("2006-01-02"))
	}
	params.Set("page[size]", "100")

	body, err := c.get(ctx, "/statements?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch statements: %w", err)
	}

	return decodeStatements(body)
}

// Balance fetches the account balance payload as-is
func (c *Client) Balance(ctx context.Context) (json.RawMessage, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}

	return json.RawMessage(body), nil
}

// HealthCheck reports whether the client currently holds a valid token
func (c *Client) HealthCheck() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != "" && time.Now().Before(c.tokenExp)
}

// ensureToken authenticates if the cached token is missing or expired
func (c *Client) ensureToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp) {
		return nil
	}

	return c.authenticate(ctx)
}

// tokenResponse is the identity server's token grant payload
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// authenticate performs the client-credentials grant. Caller holds c.mu.
func (c *Client) authenticate(ctx context.Context) error {
	payload := map[string]interface{}{
		"grant_type":    "client_credentials",
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"scopes":        []string{"*"},
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/identity_server/oauth/tokens", mustJSON(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ihold auth failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("ihold auth returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}

	expiresIn := tr.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	c.token = tr.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenSlack)

	c.logger.Debug("ihold auth ok", "expires_in", expiresIn)

	return nil
}

// get performs an authenticated GET and returns the response body
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > 300 {
			snippet = snippet[:300]
		}
		return nil, fmt.Errorf("ihold %d: %s", resp.StatusCode, string(snippet))
	}

	return body, nil
}

// decodeStatements handles both response envelopes the API uses:
// {"data": [...]} and a bare array.
func decodeStatements(body []byte) ([]RawStatement, error) {
	var envelope struct {
		Data []RawStatement `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var list []RawStatement
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("unexpected statements payload: %w", err)
	}
	return list, nil
}

// mustJSON marshals a value that cannot fail to encode
func mustJSON(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}
