package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/VigiaStudios/VigiaGuardGo/pkg/config"
	"github.com/VigiaStudios/VigiaGuardGo/pkg/models"
)

// Client talks to the block-list service on behalf of a scan agent.
// Every call carries a per-request deadline; there are no retries, the
// reconciler falls back to the local cache when a call fails.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client from the loaded configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		http:    &http.Client{Timeout: cfg.FetchTimeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (HTTP %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Register obtains (or recovers) the install identity.
func (c *Client) Register(ctx context.Context, userAgent, ip string) (string, error) {
	var out struct {
		UUID string `json:"uuid"`
	}
	body := map[string]string{"userAgent": userAgent, "ip": ip}
	if err := c.do(ctx, http.MethodPost, "/register", body, &out); err != nil {
		return "", err
	}
	return out.UUID, nil
}

// BlockedPosts fetches the post block entries for a report type.
func (c *Client) BlockedPosts(ctx context.Context, uuid string, reportType models.ReportType) ([]models.BlockedPost, error) {
	var out struct {
		BlockedUsers []models.BlockedPost `json:"blockedUsers"`
	}
	path := fmt.Sprintf("/blocked-posts/%s?reportType=%s", uuid, reportType)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.BlockedUsers, nil
}

// BlockedUsers fetches the user block entries for a block type.
func (c *Client) BlockedUsers(ctx context.Context, uuid string, blockType models.BlockType) ([]models.BlockedUser, error) {
	var out struct {
		BlockedUsers []models.BlockedUser `json:"blockedUsers"`
	}
	path := fmt.Sprintf("/blocked-users/%s?blockType=%s", uuid, blockType)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.BlockedUsers, nil
}

// ReportPost reports a post under the given type and returns the report ID.
func (c *Client) ReportPost(ctx context.Context, uuid string, post models.BlockedPost, reportType models.ReportType) (string, error) {
	var out struct {
		ReportID string `json:"reportId"`
	}
	body := map[string]string{
		"uuid":       uuid,
		"postId":     post.PostID,
		"reportType": string(reportType),
		"userName":   post.UserName,
		"postUrl":    post.PostURL,
	}
	if err := c.do(ctx, http.MethodPost, "/block-post", body, &out); err != nil {
		return "", err
	}
	return out.ReportID, nil
}

// ReportUser adds a handle to one of the identity's user block lists.
func (c *Client) ReportUser(ctx context.Context, uuid, targetUserName string, blockType models.BlockType) error {
	body := map[string]string{
		"uuid":           uuid,
		"targetUserName": targetUserName,
		"blockType":      string(blockType),
	}
	return c.do(ctx, http.MethodPost, "/block-user", body, nil)
}

// IsPostBlocked asks the service whether the identity blocked a post.
func (c *Client) IsPostBlocked(ctx context.Context, uuid, postID string) (bool, error) {
	var out struct {
		IsBlocked bool `json:"isBlocked"`
	}
	body := map[string]string{"uuid": uuid, "postId": postID}
	if err := c.do(ctx, http.MethodPost, "/is-post-blocked", body, &out); err != nil {
		return false, err
	}
	return out.IsBlocked, nil
}
