package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/assertlab/actl/internal/auth"
)

// DefaultBaseURL is the production hub API. Override via ACTL_HUB_URL.
const DefaultBaseURL = "https://hub.assertlab.io/api/v1"

// Project is a remote project owned by the authenticated account. The tool
// resolves existing projects; it creates one only via `actl project create`.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registration is one assertion registered against a project.
type Registration struct {
	ArtifactID      string   `json:"artifact_id"`
	Name            string   `json:"name"`
	ConstructorArgs []string `json:"constructor_args"`
}

// Client talks to the hub API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a hub client authenticated with the given bearer token.
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

// Projects lists the authenticated account's projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/projects", nil)
	if err != nil {
		return nil, fmt.Errorf("hub api: %w", err)
	}

	var projects []Project
	if err := c.do(req, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a new project under the authenticated account.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	body, err := json.Marshal(map[string]string{
		"name":        name,
		"description": description,
	})
	if err != nil {
		return nil, fmt.Errorf("hub api: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/projects", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hub api: %w", err)
	}

	var project Project
	if err := c.do(req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// RegisterAssertion registers one stored artifact against a project.
func (c *Client) RegisterAssertion(ctx context.Context, projectID string, reg Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("hub api: encoding request: %w", err)
	}

	endpoint := c.baseURL + "/projects/" + url.PathEscape(projectID) + "/assertions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("hub api: %w", err)
	}

	var res struct {
		Registered bool `json:"registered"`
	}
	if err := c.do(req, &res); err != nil {
		return err
	}
	if !res.Registered {
		return fmt.Errorf("hub api: registration of %s was not confirmed", reg.Name)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hub api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return auth.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("hub api: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("hub api: parsing response: %w", err)
	}
	return nil
}
