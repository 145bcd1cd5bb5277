package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pulse_ledger/internal/domain"
)

// APIError is a non-2xx answer of the ledger API.
type APIError struct {
	Status  int
	Reason  string `json:"error"`
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api status %d: %s (%s %s)", e.Status, e.Reason, e.Code, e.Message)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Reason)
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func networkPath(n domain.Network, parts ...string) string {
	p := "/api/v1/" + url.PathEscape(string(n))
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (c *Client) Networks(ctx context.Context) ([]domain.Network, error) {
	var out struct {
		Networks []domain.Network `json:"networks"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/api/v1/networks", nil, &out)
	return out.Networks, err
}

func (c *Client) Stats(ctx context.Context, n domain.Network) (domain.GlobalStats, error) {
	var out domain.GlobalStats
	err := c.jsonRequest(ctx, http.MethodGet, networkPath(n, "stats"), nil, &out)
	return out, err
}

func (c *Client) Gate(ctx context.Context, n domain.Network) (domain.GateState, error) {
	var out domain.GateState
	err := c.jsonRequest(ctx, http.MethodGet, networkPath(n, "gate"), nil, &out)
	return out, err
}

// Profile returns the network's own profile layout.
func (c *Client) Profile(ctx context.Context, n domain.Network, account string) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodGet, networkPath(n, "profiles", account), nil, &out)
	return out, err
}

func (c *Client) CompletedQuests(ctx context.Context, n domain.Network, account string) ([]domain.QuestID, error) {
	var out struct {
		Completed []domain.QuestID `json:"completed"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, networkPath(n, "quests", account), nil, &out)
	return out.Completed, err
}

func (c *Client) Events(ctx context.Context, n domain.Network, account string, limit int) ([]domain.Event, error) {
	var out struct {
		Events []domain.Event `json:"events"`
	}
	path := fmt.Sprintf("%s?limit=%d", networkPath(n, "events", account), limit)
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out.Events, err
}

// Quest submits one quest write, e.g. Quest(ctx, "base", "checkin", nil).
func (c *Client) Quest(ctx context.Context, n domain.Network, name string, body any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, networkPath(n, "quests", name), body, &out)
	return out, err
}

func (c *Client) ClaimCombo(ctx context.Context, n domain.Network) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, http.MethodPost, networkPath(n, "combo", "claim"), nil, &out)
	return out, err
}

func (c *Client) Pause(ctx context.Context, n domain.Network) error {
	return c.jsonRequest(ctx, http.MethodPost, networkPath(n, "admin", "pause"), nil, nil)
}

func (c *Client) Unpause(ctx context.Context, n domain.Network) error {
	return c.jsonRequest(ctx, http.MethodPost, networkPath(n, "admin", "unpause"), nil, nil)
}

func (c *Client) TransferOwnership(ctx context.Context, n domain.Network, newOwner string) error {
	return c.jsonRequest(ctx, http.MethodPost, networkPath(n, "admin", "transfer-ownership"), map[string]string{
		"new_owner": newOwner,
	}, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Reason == "" {
			apiErr.Reason = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
