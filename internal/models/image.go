package models

import (
	"time"

	"gorm.io/datatypes"
)

// Image is one saved transformation. AuthorID is a plain index, not a
// foreign key: deleting a user leaves their images orphaned rather than
// cascading.
type Image struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	Title              string         `gorm:"not null" json:"title"`
	TransformationType string         `gorm:"not null;index" json:"transformation_type"`
	PublicID           string         `gorm:"not null;index" json:"public_id"`
	SecureURL          string         `gorm:"not null" json:"secure_url"`
	Width              int            `json:"width"`
	Height             int            `json:"height"`
	Config             datatypes.JSON `gorm:"type:jsonb" json:"config"`
	TransformationURL  string         `json:"transformation_url"`
	AspectRatio        string         `json:"aspect_ratio"`
	Prompt             string         `json:"prompt"`
	Color              string         `json:"color"`
	From               string         `json:"from"`
	Replacement        string         `json:"replacement"`
	AuthorID           uint           `gorm:"index;not null" json:"author_id"`
	IsPrivate          bool           `gorm:"default:false" json:"is_private"`
}

// TableName overrides the table name
func (Image) TableName() string {
	return "images"
}
