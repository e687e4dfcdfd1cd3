package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jm8gw/ai-photo-editor/internal/utils"
)

// Client talks to the identity provider's backend API. Its only use today
// is writing the local record id back into the provider's user metadata
// after a user.created sync, so the frontend SDK can expose it.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    utils.NewHTTPClient(10 * time.Second),
	}
}

// SetUserMetadata merges {"userId": localID} into the provider-side public
// metadata for the given identity id.
func (c *Client) SetUserMetadata(ctx context.Context, clerkID string, localID uint) error {
	payload := map[string]interface{}{
		"public_metadata": map[string]interface{}{
			"userId": localID,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/users/%s/metadata", c.BaseURL, clerkID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("identity api returned status %d", resp.StatusCode)
	}
	return nil
}
