package services

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/jm8gw/ai-photo-editor/internal/media"
	"github.com/jm8gw/ai-photo-editor/internal/models"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrNotAuthorized = errors.New("user not authorized to modify this image")
)

// Author is the field subset exposed when an image is joined to its
// owner; balance and plan never leave list views.
type Author struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	ClerkID   string `json:"clerk_id"`
}

// ImageWithAuthor is an image plus its populated author subset. Author is
// zero-valued when the owning user has been deleted.
type ImageWithAuthor struct {
	models.Image
	Author Author `json:"author"`
}

// ImageService owns media record CRUD and gallery reads.
type ImageService struct {
	db    *gorm.DB
	media media.Transformer
}

func NewImageService(db *gorm.DB, m media.Transformer) *ImageService {
	return &ImageService{db: db, media: m}
}

// Add persists a new image after confirming the author resolves. Authorial
// integrity is checked once, here; later reads tolerate orphans.
func (s *ImageService) Add(image *models.Image) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("id = ?", image.AuthorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return s.db.Create(image).Error
}

// GetByID fetches one image with its author subset populated.
func (s *ImageService) GetByID(id uint) (*ImageWithAuthor, error) {
	var image models.Image
	if err := s.db.First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}

	populated, err := s.populateAuthors([]models.Image{image})
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

// ImageUpdate carries the owner-editable fields.
type ImageUpdate struct {
	Title     *string
	IsPrivate *bool
}

// Update patches title/visibility after an ownership check.
func (s *ImageService) Update(id uint, actorID uint, update ImageUpdate) (*models.Image, error) {
	var image models.Image
	if err := s.db.First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	if image.AuthorID != actorID {
		return nil, ErrNotAuthorized
	}

	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.IsPrivate != nil {
		updates["is_private"] = *update.IsPrivate
	}
	if len(updates) == 0 {
		return &image, nil
	}

	if err := s.db.Model(&image).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// Delete removes an image after an ownership check.
func (s *ImageService) Delete(id uint, actorID uint) error {
	var image models.Image
	if err := s.db.First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	if image.AuthorID != actorID {
		return ErrNotAuthorized
	}
	return s.db.Delete(&models.Image{}, id).Error
}

// GalleryPage is one page of the community gallery.
type GalleryPage struct {
	Images      []ImageWithAuthor `json:"images"`
	TotalPages  int64             `json:"total_pages"`
	TotalImages int64             `json:"total_images"`
}

// Find returns the public gallery, newest first. A search query is run
// through the media API's tag search and narrows results to the returned
// asset ids, so terms match provider-generated tags, not just titles.
func (s *ImageService) Find(ctx context.Context, page, limit int, searchQuery string) (*GalleryPage, error) {
	query := s.db.Model(&models.Image{}).Where("is_private = ?", false)

	if searchQuery != "" {
		ids, err := s.media.Search(ctx, searchQuery)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return &GalleryPage{Images: []ImageWithAuthor{}}, nil
		}
		query = query.Where("public_id IN ?", ids)
	}

	return s.page(query, page, limit)
}

// FindByAuthor returns one page of a user's own images, private included.
func (s *ImageService) FindByAuthor(authorID uint, page, limit int) (*GalleryPage, error) {
	query := s.db.Model(&models.Image{}).Where("author_id = ?", authorID)
	return s.page(query, page, limit)
}

func (s *ImageService) page(query *gorm.DB, page, limit int) (*GalleryPage, error) {
	if limit <= 0 {
		limit = 9
	}
	if page <= 0 {
		page = 1
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var images []models.Image
	offset := (page - 1) * limit
	if err := query.Order("updated_at desc").Limit(limit).Offset(offset).Find(&images).Error; err != nil {
		return nil, err
	}

	populated, err := s.populateAuthors(images)
	if err != nil {
		return nil, err
	}

	return &GalleryPage{
		Images:      populated,
		TotalPages:  int64(math.Ceil(float64(total) / float64(limit))),
		TotalImages: total,
	}, nil
}

func (s *ImageService) populateAuthors(images []models.Image) ([]ImageWithAuthor, error) {
	ids := make([]uint, 0, len(images))
	seen := make(map[uint]bool, len(images))
	for _, img := range images {
		if !seen[img.AuthorID] {
			seen[img.AuthorID] = true
			ids = append(ids, img.AuthorID)
		}
	}

	authors := make(map[uint]Author, len(ids))
	if len(ids) > 0 {
		var users []models.User
		if err := s.db.Select("id", "first_name", "last_name", "username", "clerk_id").
			Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			authors[u.ID] = Author{
				ID:        u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Username:  u.Username,
				ClerkID:   u.ClerkID,
			}
		}
	}

	result := make([]ImageWithAuthor, len(images))
	for i, img := range images {
		result[i] = ImageWithAuthor{Image: img, Author: authors[img.AuthorID]}
	}
	return result, nil
}
