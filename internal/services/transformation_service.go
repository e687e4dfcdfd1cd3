package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jm8gw/ai-photo-editor/internal/media"
	"github.com/jm8gw/ai-photo-editor/internal/models"
)

var ErrInsufficientCredits = errors.New("insufficient credits")

// TransformationService is the user-facing workflow: gate on balance,
// derive the asset through the media API, then persist the record and
// debit the fee atomically. A failed derivation or a failed persist never
// costs credits; a debit can only fail by rolling the persist back with it.
type TransformationService struct {
	db          *gorm.DB
	transformer media.Transformer
	users       *UserService
}

func NewTransformationService(db *gorm.DB, t media.Transformer, users *UserService) *TransformationService {
	return &TransformationService{db: db, transformer: t, users: users}
}

// ApplyRequest is one submitted transformation.
type ApplyRequest struct {
	ClerkID string // acting user

	// ImageID selects update-in-place; zero creates a new record
	ImageID uint

	Type        models.TransformationType
	Title       string
	PublicID    string
	SecureURL   string
	Width       int
	Height      int
	AspectRatio string
	Prompt      string
	Color       string
	From        string
	Replacement string
	IsPrivate   bool
}

// Apply runs the full workflow and returns the saved image and the user's
// post-debit record.
func (s *TransformationService) Apply(ctx context.Context, req ApplyRequest) (*models.Image, *models.User, error) {
	user, err := s.users.FindByClerkID(req.ClerkID)
	if err != nil {
		return nil, nil, err
	}

	fee := int64(-models.CreditFee)
	if user.CreditBalance < fee {
		return nil, nil, ErrInsufficientCredits
	}

	result, err := s.transformer.Transform(ctx, media.Request{
		Type:        req.Type,
		PublicID:    req.PublicID,
		AspectRatio: req.AspectRatio,
		Prompt:      req.Prompt,
		Color:       req.Color,
		From:        req.From,
		Replacement: req.Replacement,
		Width:       req.Width,
		Height:      req.Height,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("transformation failed: %w", err)
	}

	config, err := buildConfig(req)
	if err != nil {
		return nil, nil, err
	}

	image := models.Image{
		Title:              req.Title,
		TransformationType: string(req.Type),
		PublicID:           req.PublicID,
		SecureURL:          req.SecureURL,
		Width:              result.Width,
		Height:             result.Height,
		Config:             config,
		TransformationURL:  result.URL,
		AspectRatio:        req.AspectRatio,
		Prompt:             req.Prompt,
		Color:              req.Color,
		From:               req.From,
		Replacement:        req.Replacement,
		AuthorID:           user.ID,
		IsPrivate:          req.IsPrivate,
	}

	var updated *models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.ImageID != 0 {
			var existing models.Image
			if err := tx.First(&existing, req.ImageID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrImageNotFound
				}
				return err
			}
			if existing.AuthorID != user.ID {
				return ErrNotAuthorized
			}
			image.ID = existing.ID
			image.CreatedAt = existing.CreatedAt
			if err := tx.Save(&image).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&image).Error; err != nil {
				return err
			}
		}

		updated, err = adjustCredits(tx, req.ClerkID, models.CreditFee)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.users.invalidate(req.ClerkID)
	return &image, updated, nil
}

// buildConfig materializes the provider configuration that was applied,
// with the request's prompt fields folded into the type's default shape.
func buildConfig(req ApplyRequest) (datatypes.JSON, error) {
	config := models.DefaultConfig(req.Type)

	switch req.Type {
	case models.TransformationReplace:
		config["replace"] = map[string]interface{}{
			"from": req.From,
			"to":   req.Replacement,
		}
	case models.TransformationRemove:
		config["remove"] = map[string]interface{}{
			"prompt":       req.Prompt,
			"removeShadow": true,
			"multiple":     true,
		}
	case models.TransformationRecolor:
		config["recolor"] = map[string]interface{}{
			"prompt":   req.Prompt,
			"to":       req.Color,
			"multiple": true,
		}
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
