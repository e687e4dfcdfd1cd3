package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jm8gw/ai-photo-editor/internal/payment"
	"github.com/jm8gw/ai-photo-editor/internal/utils"
)

// EventCheckoutCompleted is the only event kind we act on.
const EventCheckoutCompleted = "checkout.session.completed"

var (
	ErrMissingSignature = errors.New("missing payment signature header")
	ErrInvalidSignature = errors.New("payment signature verification failed")
)

// tolerance bounds how stale a delivery may be before we refuse it
const tolerance = 5 * time.Minute

type StripeDriver struct {
	SecretKey     string
	WebhookSecret string
	APIBase       string // override in tests

	HTTP *http.Client

	now func() time.Time
}

func NewStripeDriver(secretKey, webhookSecret, apiBase string) *StripeDriver {
	return &StripeDriver{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		APIBase:       strings.TrimRight(apiBase, "/"),
		HTTP:          utils.NewHTTPClient(30 * time.Second),
		now:           time.Now,
	}
}

func (d *StripeDriver) CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][product_data][name]", params.PlanName)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.Amount*100, 10))
	form.Set("line_items[0][quantity]", "1")
	form.Set("metadata[plan]", params.PlanName)
	form.Set("metadata[credits]", strconv.FormatInt(params.Credits, 10))
	form.Set("metadata[buyerId]", params.BuyerID)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.APIBase+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+d.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment api request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("payment api returned status %d", resp.StatusCode)
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	return &payment.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// VerifyNotify checks the "t=<unix>,v1=<hex>" signature header: an
// HMAC-SHA256 over "{t}.{body}" keyed with the webhook secret.
func (d *StripeDriver) VerifyNotify(signatureHeader string, body []byte) (*payment.Event, error) {
	if signatureHeader == "" {
		return nil, ErrMissingSignature
	}

	var timestamp string
	var candidates []string
	for _, part := range strings.Split(signatureHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			candidates = append(candidates, kv[1])
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return nil, ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	sent := time.Unix(ts, 0)
	now := d.now()
	if sent.Before(now.Add(-tolerance)) || sent.After(now.Add(tolerance)) {
		return nil, ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(d.WebhookSecret))
	fmt.Fprintf(mac, "%s.%s", timestamp, body)
	expected := hex.EncodeToString(mac.Sum(nil))

	verified := false
	for _, candidate := range candidates {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(expected)) == 1 {
			verified = true
			break
		}
	}
	if !verified {
		return nil, ErrInvalidSignature
	}

	var envelope struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID          string           `json:"id"`
				AmountTotal int64            `json:"amount_total"`
				Metadata    payment.Metadata `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}

	return &payment.Event{
		ID:          envelope.ID,
		Type:        envelope.Type,
		ChargeID:    envelope.Data.Object.ID,
		AmountTotal: envelope.Data.Object.AmountTotal,
		Metadata:    envelope.Data.Object.Metadata,
	}, nil
}
