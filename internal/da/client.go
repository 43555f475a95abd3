package da

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/assertlab/actl/internal/auth"
)

// DefaultBaseURL is the production DA service. Override via ACTL_DA_URL.
const DefaultBaseURL = "https://da.assertlab.io"

// RejectedError is a non-2xx application response from the DA service. The
// submission was received and refused; re-running with the same input will
// be refused again until the cause is fixed.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("da service rejected the submission (status %d): %s", e.Status, e.Detail)
}

// Client talks to the DA service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a DA client authenticated with the given bearer token.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type submitRequest struct {
	Bytecode             string `json:"bytecode"`
	Source               string `json:"source"`
	ConstructorSignature string `json:"constructor_signature"`
}

type submitResponse struct {
	ArtifactID string `json:"artifact_id"`
}

// Submit stores an artifact in the DA layer and returns its identifier.
func (c *Client) Submit(ctx context.Context, bytecode, source, constructorSig string) (string, error) {
	body, err := json.Marshal(submitRequest{
		Bytecode:             bytecode,
		Source:               source,
		ConstructorSignature: constructorSig,
	})
	if err != nil {
		return "", fmt.Errorf("da service: encoding submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/assertions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("da service: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("da service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", auth.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &RejectedError{Status: resp.StatusCode, Detail: string(bytes.TrimSpace(detail))}
	}

	var res submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("da service: parsing response: %w", err)
	}
	if res.ArtifactID == "" {
		return "", fmt.Errorf("da service: response missing artifact id")
	}
	return res.ArtifactID, nil
}
