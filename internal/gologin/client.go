// GoLogin API client.
// Profiles are started/stopped through the locally running GoLogin app
// (it owns the actual browser process); the profile catalog lives in the
// cloud API. Starting a profile yields a CDP websocket endpoint.

package gologin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultAPIBase   = "https://api.gologin.com"
	defaultLocalBase = "http://localhost:36912"
)

type Client struct {
	//APIBase and LocalBase are overridable in tests.
	APIBase   string
	LocalBase string

	token string
	http  *http.Client
	log   *logrus.Logger
}

func NewClient(token string, log *logrus.Logger) *Client {
	return &Client{
		APIBase:   defaultAPIBase,
		LocalBase: defaultLocalBase,
		token:     token,
		http:      &http.Client{Timeout: 60 * time.Second},
		log:       log,
	}
}

// StartProfile launches the browser identity and returns its remote
// debugging websocket URL. An empty URL with nil error means GoLogin
// accepted the request but gave no endpoint: the caller must skip this
// profile for the cycle, not fail the whole run.
func (c *Client) StartProfile(ctx context.Context, profileID string) (string, error) {
	body := map[string]any{"profileId": profileID, "sync": true}

	var resp struct {
		WSURL string `json:"wsUrl"`
	}
	if err := c.post(ctx, c.LocalBase+"/browser/start-profile", body, &resp); err != nil {
		return "", fmt.Errorf("start profile %s: %w", profileID, err)
	}

	if resp.WSURL == "" {
		c.log.Errorf("❌ Error trying to start profile %s: no wsUrl in response.", profileID)
		return "", nil
	}

	c.log.Infof("✅ Profile %s was started.", profileID)
	return resp.WSURL, nil
}

// StopProfile tears the browser identity down.
func (c *Client) StopProfile(ctx context.Context, profileID string) error {
	body := map[string]any{"profileId": profileID}
	if err := c.post(ctx, c.LocalBase+"/browser/stop-profile", body, nil); err != nil {
		return fmt.Errorf("stop profile %s: %w", profileID, err)
	}
	c.log.Infof("🛑 Profile %s was stopped.", profileID)
	return nil
}

// ListProfiles fetches the full profile catalog from the cloud API.
func (c *Client) ListProfiles(ctx context.Context) ([]Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/browser/v2", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list profiles: unexpected status %s", resp.Status)
	}

	var payload struct {
		Profiles []Profile `json:"profiles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("list profiles: decode: %w", err)
	}
	return payload.Profiles, nil
}

// ProfileByID resolves one profile from the catalog.
func (c *Client) ProfileByID(ctx context.Context, profileID string) (*Profile, error) {
	profiles, err := c.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		p := &profiles[i]
		if p.ID == profileID {
			c.log.Infof("👤 Profile '%s' (%s), proxy '%s' - %s:%d",
				p.Name, p.ID, p.Proxy.Username, p.Proxy.Host, p.Proxy.Port)
			return p, nil
		}
	}
	return nil, fmt.Errorf("profile %s not found in GoLogin account", profileID)
}

func (c *Client) post(ctx context.Context, url string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
