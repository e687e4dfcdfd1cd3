package payment

import "context"

// CheckoutParams parameterizes a provider-hosted checkout session.
type CheckoutParams struct {
	PlanName   string
	Amount     int64 // dollars; drivers convert to the provider's minor unit
	Credits    int64
	BuyerID    string // identity reference, echoed back in the webhook
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the provider's hosted session the buyer is redirected
// to.
type CheckoutSession struct {
	ID  string
	URL string
}

// Metadata is the key/value payload we attach at checkout and read back
// from the completion event.
type Metadata struct {
	Plan    string `json:"plan"`
	Credits string `json:"credits"`
	BuyerID string `json:"buyerId"`
}

// Event is a verified payment webhook event.
type Event struct {
	ID          string
	Type        string
	ChargeID    string
	AmountTotal int64 // provider minor unit
	Metadata    Metadata
}

// Driver is the interface all payment drivers must implement
type Driver interface {
	// CreateCheckoutSession initiates a payment and returns the hosted
	// session to redirect the buyer to.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	// VerifyNotify checks the webhook signature against the raw body and
	// returns the decoded event. Any verification failure is an error;
	// callers must fail closed so the provider redelivers.
	VerifyNotify(signatureHeader string, body []byte) (*Event, error)
}
