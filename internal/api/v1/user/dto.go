package user

// ProfileResponse is the authenticated user's own view, the only place
// balance and plan are exposed.
type ProfileResponse struct {
	ID            uint   `json:"id"`
	ClerkID       string `json:"clerk_id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Photo         string `json:"photo"`
	PlanID        int    `json:"plan_id"`
	CreditBalance int64  `json:"credit_balance"`
}
