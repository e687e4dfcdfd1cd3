package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jm8gw/ai-photo-editor/internal/media"
	"github.com/jm8gw/ai-photo-editor/internal/models"
	"github.com/jm8gw/ai-photo-editor/internal/utils"
)

// Driver implements media.Transformer against the Cloudinary delivery and
// admin APIs. Derivations are URL-addressed: we build the signed delivery
// URL for the transformation chain and fetch it once so the provider
// materializes (and validates) the derived asset before anyone is charged.
type Driver struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string

	DeliveryBase string // override in tests
	APIBase      string // override in tests

	HTTP *http.Client
}

func NewDriver(cloudName, apiKey, apiSecret, folder string) *Driver {
	return &Driver{
		CloudName:    cloudName,
		APIKey:       apiKey,
		APISecret:    apiSecret,
		Folder:       folder,
		DeliveryBase: "https://res.cloudinary.com",
		APIBase:      "https://api.cloudinary.com",
		HTTP:         utils.NewHTTPClient(60 * time.Second),
	}
}

var ErrUnsupportedType = errors.New("unsupported transformation type")

func (d *Driver) Transform(ctx context.Context, req media.Request) (*media.Result, error) {
	chain, err := transformationChain(req)
	if err != nil {
		return nil, err
	}

	derivedURL := d.deliveryURL(chain, req.PublicID)

	// First fetch triggers the derivation; a non-2xx here means the
	// provider refused the transformation.
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, derivedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("media api request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("media api returned status %d", resp.StatusCode)
	}

	width, height := req.Width, req.Height
	if req.Type == models.TransformationFill {
		if ar, ok := models.AspectRatios[req.AspectRatio]; ok {
			width, height = ar.Width, ar.Height
		}
	}

	return &media.Result{URL: derivedURL, Width: width, Height: height}, nil
}

func (d *Driver) Search(ctx context.Context, query string) ([]string, error) {
	expression := "folder:" + d.Folder
	if query != "" {
		expression += " AND " + query
	}

	body, err := json.Marshal(map[string]interface{}{
		"expression":  expression,
		"max_results": 500,
	})
	if err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s/v1_1/%s/resources/search", strings.TrimRight(d.APIBase, "/"), d.CloudName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(d.APIKey, d.APISecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("media api request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("media api returned status %d", resp.StatusCode)
	}

	var result struct {
		Resources []struct {
			PublicID string `json:"public_id"`
		} `json:"resources"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]string, 0, len(result.Resources))
	for _, r := range result.Resources {
		ids = append(ids, r.PublicID)
	}
	return ids, nil
}

// transformationChain maps a request to the provider's URL component.
func transformationChain(req media.Request) (string, error) {
	switch req.Type {
	case models.TransformationRestore:
		return "e_gen_restore", nil
	case models.TransformationRemoveBackground:
		return "e_background_removal", nil
	case models.TransformationFill:
		ar, ok := models.AspectRatios[req.AspectRatio]
		if !ok {
			return "", fmt.Errorf("unknown aspect ratio %q", req.AspectRatio)
		}
		return fmt.Sprintf("b_gen_fill,c_pad,w_%d,h_%d", ar.Width, ar.Height), nil
	case models.TransformationReplace:
		return fmt.Sprintf("e_gen_replace:from_%s;to_%s",
			escapeParam(req.From), escapeParam(req.Replacement)), nil
	case models.TransformationRemove:
		return fmt.Sprintf("e_gen_remove:prompt_%s;multiple_true;remove-shadow_true",
			escapeParam(req.Prompt)), nil
	case models.TransformationRecolor:
		return fmt.Sprintf("e_gen_recolor:prompt_%s;to-color_%s;multiple_true",
			escapeParam(req.Prompt), escapeParam(req.Color)), nil
	}
	return "", ErrUnsupportedType
}

func escapeParam(s string) string {
	return url.PathEscape(s)
}

// deliveryURL builds the signed delivery URL for a transformation chain.
// The signature covers "{chain}/{publicID}{secret}", SHA-1, url-safe
// base64, truncated to 8 characters per the provider's scheme.
func (d *Driver) deliveryURL(chain, publicID string) string {
	toSign := chain + "/" + publicID + d.APISecret
	sum := sha1.Sum([]byte(toSign))
	sig := base64.RawURLEncoding.EncodeToString(sum[:])[:8]

	return fmt.Sprintf("%s/%s/image/upload/s--%s--/%s/%s",
		strings.TrimRight(d.DeliveryBase, "/"), d.CloudName, sig, chain, publicID)
}
