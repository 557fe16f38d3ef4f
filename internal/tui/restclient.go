package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"codeberg.org/incdrops/server/incdrops/usage"
	"codeberg.org/incdrops/server/internal/generator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tidwall/gjson"
)

// creates a new REST client for the API at baseURL
func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: generateTimeout,
		},
	}
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// reports whether the error is the monthly quota denial
func (e *APIError) QuotaExceeded() bool {
	return e.Status == http.StatusPaymentRequired && e.Code == "quota_exceeded"
}

// the account's usage for the current period
func (c *APIClient) Usage(ctx context.Context) (*usage.Snapshot, error) {
	var snap usage.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/usage", nil, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// requests a batch of ideas for the brief
func (c *APIClient) Generate(ctx context.Context, brief generator.Brief) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/generate", brief, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// returns a tea.Cmd that sends a generate request
func (c *APIClient) GenerateCmd(brief generator.Brief) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()

		resp, err := c.Generate(ctx, brief)
		if err != nil {
			return GenerateErrorMsg{err: err}
		}

		return GenerateResultMsg{brief: brief, resp: resp}
	}
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	if !gjson.ValidBytes(body) {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	fields := gjson.GetManyBytes(body, "error", "message", "tier", "count", "limit", "reset_at", "upgrade_to")

	apiErr.Code = fields[0].String()
	apiErr.Message = fields[1].String()
	apiErr.Tier = fields[2].String()
	apiErr.Count = fields[3].Int()
	apiErr.Limit = fields[4].Int()
	apiErr.ResetAt = fields[5].String()
	apiErr.UpgradeTo = fields[6].String()

	return apiErr
}
