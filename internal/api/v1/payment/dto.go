package payment

type CheckoutRequest struct {
	PlanID int `json:"plan_id" binding:"required,min=1"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"` // caller redirects the buyer here
}
