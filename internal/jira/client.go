// Package jira wraps the JIRA REST API for the acknowledgment and ticket commands.
package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	jira "github.com/andygrunwald/go-jira"
	"github.com/danielolaszy/ackmail/internal/config"
	"github.com/danielolaszy/ackmail/internal/logging"
	"golang.org/x/oauth2"
)

// ErrNotInitialized is returned by every method of a zero Client.
var ErrNotInitialized = errors.New("JIRA client not initialized")

// Client handles interactions with the JIRA API.
type Client struct {
	client *jira.Client
}

// NewClient creates a JIRA client from configuration. Basic auth pairs the username
// with an API token; bearer auth sends the token as a personal access token.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	var httpClient *http.Client
	switch cfg.Auth {
	case config.AuthBearer:
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	case config.AuthBasic, "":
		tp := jira.BasicAuthTransport{
			Username: cfg.Username,
			Password: cfg.Token,
		}
		httpClient = tp.Client()
	default:
		return nil, fmt.Errorf("unsupported JIRA auth method %q", cfg.Auth)
	}

	logging.Debug("jira configuration",
		"url", cfg.URL,
		"username", cfg.Username,
		"auth", cfg.Auth,
		"token", logging.MaskSensitive(cfg.Token))

	return newClient(httpClient, cfg.URL)
}

func newClient(httpClient *http.Client, baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("JIRA base URL is empty")
	}
	client, err := jira.NewClient(httpClient, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create JIRA client: %w", err)
	}
	return &Client{client: client}, nil
}

// Ping verifies the credentials by fetching the authenticated user.
func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrNotInitialized
	}

	user, resp, err := c.client.User.GetSelfWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate with JIRA: %w (status: %d)", err, statusCode(resp))
	}

	logging.Info("jira authentication successful", "user", user.DisplayName)
	return nil
}

// statusCode returns the HTTP status of a response, or 0 when the request never got one.
func statusCode(resp *jira.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}
