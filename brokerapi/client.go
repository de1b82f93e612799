// Package brokerapi is a thin client for the brokerage transactions
// API. It fetches raw transaction objects for the snaptrade venue
// adapter; all reconciliation happens downstream, after I/O is done.
package brokerapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.snaptrade.com/api/v1"

// ErrReauthRequired reports that the stored credentials were rejected.
// Callers surface this as a reconnect prompt, not as a parse failure.
var ErrReauthRequired = errors.New("brokerage connection requires reauthentication")

// Client is a brokerage API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient returns a client for the given base URL (empty means
// DefaultBaseURL) authenticating with a bearer token.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FeeItem is one fee sub-line attached to a transaction.
type FeeItem struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// OptionDetails describes the option leg of a transaction instrument.
type OptionDetails struct {
	Strike     float64 `json:"strike_price"`
	Expiration string  `json:"expiration_date"` // YYYY-MM-DD
	IsCall     bool    `json:"is_call"`
}

// Instrument is the nested instrument descriptor on a transaction.
type Instrument struct {
	Symbol     string         `json:"symbol"`
	AssetClass string         `json:"asset_class"` // EQUITY, OPTION, CRYPTO, FX
	Option     *OptionDetails `json:"option,omitempty"`
}

// Transaction is one raw brokerage transaction as returned by the API.
type Transaction struct {
	ID         string     `json:"id"`
	Account    string     `json:"account_id"`
	Type       string     `json:"type"` // BUY, SELL, SELL_SHORT, BUY_TO_COVER, DIVIDEND, ...
	TradeDate  string     `json:"trade_date"`
	Units      float64    `json:"units"`
	Price      float64    `json:"price"`
	Fees       []FeeItem  `json:"fees,omitempty"`
	Instrument Instrument `json:"instrument"`
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	NextCursor   string        `json:"next_cursor,omitempty"`
}

// ListTransactions fetches all transactions for an account since the
// given time, following pagination cursors. A 401 or 403 maps to
// ErrReauthRequired.
func (c *Client) ListTransactions(ctx context.Context, accountID string, since time.Time) ([]Transaction, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account ID is required")
	}

	var all []Transaction
	cursor := ""
	for {
		page, next, err := c.transactionsPage(ctx, accountID, since, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func (c *Client) transactionsPage(ctx context.Context, accountID string, since time.Time, cursor string) ([]Transaction, string, error) {
	u, err := url.Parse(fmt.Sprintf("%s/accounts/%s/transactions", c.baseURL, accountID))
	if err != nil {
		return nil, "", fmt.Errorf("build transactions URL: %w", err)
	}
	q := u.Query()
	if !since.IsZero() {
		q.Set("start_date", since.UTC().Format("2006-01-02"))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch transactions: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", fmt.Errorf("account %s: %w", accountID, ErrReauthRequired)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("transactions request failed: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed transactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, "", fmt.Errorf("decode transactions response: %w", err)
	}
	return parsed.Transactions, parsed.NextCursor, nil
}
