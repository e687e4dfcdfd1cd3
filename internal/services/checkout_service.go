package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jm8gw/ai-photo-editor/internal/models"
	"github.com/jm8gw/ai-photo-editor/internal/payment"
)

var (
	ErrUnknownPlan        = errors.New("unknown plan")
	ErrPlanNotPurchasable = errors.New("plan is not purchasable")
)

// CheckoutService starts provider-hosted checkout sessions for credit
// packages.
type CheckoutService struct {
	driver    payment.Driver
	serverURL string
}

func NewCheckoutService(driver payment.Driver, serverURL string) *CheckoutService {
	return &CheckoutService{driver: driver, serverURL: serverURL}
}

// CheckoutCredits creates a hosted session for the given plan. The buyer's
// identity reference rides along in the session metadata so the completion
// webhook knows whom to credit.
func (s *CheckoutService) CheckoutCredits(ctx context.Context, planID int, buyerID string) (*payment.CheckoutSession, error) {
	plan := models.PlanByID(planID)
	if plan == nil {
		return nil, ErrUnknownPlan
	}
	if plan.Price <= 0 {
		return nil, ErrPlanNotPurchasable
	}

	session, err := s.driver.CreateCheckoutSession(ctx, payment.CheckoutParams{
		PlanName:   plan.Name,
		Amount:     plan.Price,
		Credits:    plan.Credits,
		BuyerID:    buyerID,
		SuccessURL: fmt.Sprintf("%s/profile", s.serverURL),
		CancelURL:  fmt.Sprintf("%s/", s.serverURL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session, nil
}
