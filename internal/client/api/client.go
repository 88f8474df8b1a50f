// Package api is the HTTP client for the Daybook server. It keeps the token
// pair in memory and retries a request once after refreshing an expired
// access token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
)

// Buckets mirrors the classified view the server returns.
type Buckets struct {
	Schedule []string `json:"schedule"`
	Dated    []string `json:"dated"`
	Travel   []string `json:"travel"`
	Other    []string `json:"other"`
}

// Settings mirrors the per-user settings the server returns.
type Settings struct {
	TravelEnabled bool   `json:"travel_enabled"`
	TimeFormat    string `json:"time_format"`
}

// ViewResponse is the payload of GET /api/lines.
type ViewResponse struct {
	Buckets  Buckets  `json:"buckets"`
	Settings Settings `json:"settings"`
}

// ImportResult mirrors the server's import summary.
type ImportResult struct {
	AddedTimed int    `json:"added_timed"`
	AddedDated int    `json:"added_dated"`
	Skipped    int    `json:"skipped"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ExportResult mirrors the server's export summary.
type ExportResult struct {
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	EventRefs []string `json:"event_refs,omitempty"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Client talks to the Daybook HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  tokenPair
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// IsLoggedIn reports whether the client holds an access token.
func (c *Client) IsLoggedIn() bool {
	return c.tokens.AccessToken != ""
}

// Logout discards the stored token pair.
func (c *Client) Logout() {
	c.tokens = tokenPair{}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/api/register", body, nil, false)
}

// Login authenticates and stores the returned token pair.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var pair tokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", body, &pair, false); err != nil {
		return err
	}
	c.tokens = pair
	return nil
}

// Refresh trades the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) error {
	if c.tokens.RefreshToken == "" {
		return common.ErrorUnauthorized
	}
	body := map[string]string{"refresh_token": c.tokens.RefreshToken}
	var pair tokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/refresh", body, &pair, false); err != nil {
		return err
	}
	c.tokens = pair
	return nil
}

// View fetches the classified buckets and settings.
func (c *Client) View(ctx context.Context) (*ViewResponse, error) {
	var resp ViewResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/lines", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddLine appends one line to the record.
func (c *Client) AddLine(ctx context.Context, line string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/lines", map[string]string{"line": line}, nil, true)
}

// Reset clears all lines.
func (c *Client) Reset(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/lines", nil, nil, true)
}

// ToggleTravel flips the travel setting and returns the new value.
func (c *Client) ToggleTravel(ctx context.Context) (bool, error) {
	var resp struct {
		TravelEnabled bool `json:"travel_enabled"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/settings/travel", nil, &resp, true); err != nil {
		return false, err
	}
	return resp.TravelEnabled, nil
}

// Import pulls one page of calendar events into the record.
func (c *Client) Import(ctx context.Context, cursor string) (*ImportResult, error) {
	path := "/api/sync/import"
	if cursor != "" {
		path += "?cursor=" + cursor
	}
	var resp ImportResult
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export pushes the record's events to the calendar.
func (c *Client) Export(ctx context.Context) (*ExportResult, error) {
	var resp ExportResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/sync/export", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConnectURL returns the Google consent URL to open in a browser.
func (c *Client) ConnectURL(ctx context.Context) (string, error) {
	var resp struct {
		AuthURL string `json:"auth_url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/google/connect", nil, &resp, true); err != nil {
		return "", err
	}
	return resp.AuthURL, nil
}

// Disconnect removes the stored calendar authorization.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/google/disconnect", nil, nil, true)
}

// Feed fetches the iCalendar rendering of the record.
func (c *Client) Feed(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/feed.ics", nil, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading feed: %w", err)
	}
	return string(data), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, authed bool) error {
	resp, err := c.do(ctx, method, path, body, authed)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// do sends the request, refreshing the token pair once on a 401.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) (*http.Response, error) {
	resp, err := c.send(ctx, method, path, body, authed)
	if err != nil {
		return nil, err
	}
	if authed && resp.StatusCode == http.StatusUnauthorized && c.tokens.RefreshToken != "" {
		resp.Body.Close()
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
		return c.send(ctx, method, path, body, authed)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any, authed bool) (*http.Response, error) {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.tokens.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorRemoteUnavailable, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	msg := http.StatusText(resp.StatusCode)
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorInvalidArgument, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrorUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, msg)
	case http.StatusBadGateway:
		return fmt.Errorf("%w: %s", common.ErrorRemoteUnavailable, msg)
	default:
		return fmt.Errorf("%w: %s", common.ErrorInternal, msg)
	}
}
