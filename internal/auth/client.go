package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production auth service. Override via ACTL_AUTH_URL.
const DefaultBaseURL = "https://hub.assertlab.io/api/v1"

// DeviceCode is the auth service's response to a pairing-code request.
type DeviceCode struct {
	PairingURL string `json:"pairing_url"`
	PollToken  string `json:"poll_token"`
	ExpiresIn  int    `json:"expires_in"` // seconds until the pairing code expires
	Interval   int    `json:"interval"`   // suggested poll interval, seconds
}

// StatusResult is one poll of the device-authorization status endpoint.
type StatusResult struct {
	Status     string             `json:"status"` // "pending" | "approved" | "denied" | "expired"
	Credential *CredentialPayload `json:"credential,omitempty"`
}

// CredentialPayload is the credential returned on approval.
type CredentialPayload struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	Address      string    `json:"address"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Client talks to the auth service's device-authorization endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an auth client for the given base URL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// RequestCode asks the auth service for a new pairing code.
func (c *Client) RequestCode(ctx context.Context) (*DeviceCode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/device/code", nil)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	var code DeviceCode
	if err := c.do(req, &code); err != nil {
		return nil, err
	}
	if code.PollToken == "" {
		return nil, fmt.Errorf("auth service: response missing poll token")
	}
	return &code, nil
}

// PollStatus queries the status of an in-flight device authorization.
func (c *Client) PollStatus(ctx context.Context, pollToken string) (*StatusResult, error) {
	u := c.baseURL + "/device/status?poll_token=" + url.QueryEscape(pollToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	var status StatusResult
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("auth service: unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("auth service: parsing response: %w", err)
	}
	return nil
}
