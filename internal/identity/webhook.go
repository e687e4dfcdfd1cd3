package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Identity webhooks arrive signed with the svix scheme: three headers
// (message id, timestamp, signature list) and an HMAC-SHA256 over
// "{id}.{timestamp}.{body}" keyed with the endpoint secret.

var (
	ErrMissingHeaders   = errors.New("missing webhook signature headers")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
)

// tolerance bounds how stale a delivery may be before we refuse it
const tolerance = 5 * time.Minute

type WebhookVerifier struct {
	key []byte
	now func() time.Time
}

// NewWebhookVerifier takes the endpoint secret as issued by the provider
// ("whsec_" followed by the base64 key).
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	raw := strings.TrimPrefix(secret, "whsec_")
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed webhook secret: %w", err)
	}
	return &WebhookVerifier{key: key, now: time.Now}, nil
}

// Verify checks the three header values against the raw body. It fails
// closed: any absent header, stale timestamp or signature mismatch is an
// error.
func (v *WebhookVerifier) Verify(msgID, timestamp, signatures string, body []byte) error {
	if msgID == "" || timestamp == "" || signatures == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	sent := time.Unix(ts, 0)
	now := v.now()
	if sent.Before(now.Add(-tolerance)) || sent.After(now.Add(tolerance)) {
		return ErrInvalidSignature
	}

	expected := v.sign(msgID, timestamp, body)

	// The header may list several space-separated "v1,<sig>" candidates
	// (the provider rotates secrets by double-signing for a while).
	for _, candidate := range strings.Split(signatures, " ") {
		parts := strings.SplitN(candidate, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expected)) == 1 {
			return nil
		}
	}

	return ErrInvalidSignature
}

func (v *WebhookVerifier) sign(msgID, timestamp string, body []byte) string {
	content := fmt.Sprintf("%s.%s.%s", msgID, timestamp, body)
	h := hmac.New(sha256.New, v.key)
	h.Write([]byte(content))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
