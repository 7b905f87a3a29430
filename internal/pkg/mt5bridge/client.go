// Package mt5bridge talks to the external MT5 provisioning bridge that
// creates trading accounts on the platform's behalf.
package mt5bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sharkfunded/platform/internal/pkg/env"
)

// Client is safe for concurrent use. The bridge can take a while to talk to
// the terminal, so the timeout is generous but bounded; a timeout is treated
// by callers the same as a failed provisioning call.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	base := env.GetEnv("MT5_BRIDGE_URL", "")
	if base == "" {
		base = env.GetEnv("MT5_API_URL", "http://localhost:8000")
	}
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		APIKey:  env.GetEnv("MT5_API_KEY", ""),
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// CreateAccountParams is the bridge's account-creation contract.
type CreateAccountParams struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Group       string  `json:"group"`
	Leverage    int     `json:"leverage"`
	Balance     float64 `json:"balance"`
	CallbackURL string  `json:"callback_url"`
}

// Account holds the credentials the bridge returns for a freshly created
// terminal login.
type Account struct {
	Login            int64  `json:"login"`
	Password         string `json:"password"`
	InvestorPassword string `json:"investor_password"`
	Server           string `json:"server"`
}

func (c *Client) CreateAccount(ctx context.Context, params CreateAccountParams) (*Account, error) {
	if c.BaseURL == "" {
		return nil, errors.New("mt5 bridge url is not configured")
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/create-account", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mt5 bridge create account: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var fail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(respBody, &fail) == nil && fail.Detail != "" {
			return nil, fmt.Errorf("mt5 bridge: %s", fail.Detail)
		}
		return nil, fmt.Errorf("mt5 bridge failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var account Account
	if err := json.Unmarshal(respBody, &account); err != nil {
		return nil, fmt.Errorf("mt5 bridge response: %w", err)
	}
	if account.Login == 0 {
		return nil, errors.New("mt5 bridge returned no login")
	}
	return &account, nil
}
