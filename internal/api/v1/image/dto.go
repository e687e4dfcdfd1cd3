package image

// ApplyImageRequest submits a transformation for creation (POST) or
// re-application to an existing record (PUT).
type ApplyImageRequest struct {
	Title              string `json:"title" binding:"required"`
	TransformationType string `json:"transformation_type" binding:"required,oneof=restore removeBackground fill replace remove recolor"`
	PublicID           string `json:"public_id" binding:"required"`
	SecureURL          string `json:"secure_url" binding:"required"`
	Width              int    `json:"width"`
	Height             int    `json:"height"`
	AspectRatio        string `json:"aspect_ratio"`
	Prompt             string `json:"prompt"`
	Color              string `json:"color"`
	From               string `json:"from"`
	Replacement        string `json:"replacement"`
	IsPrivate          bool   `json:"is_private"`
}

// PatchImageRequest edits metadata without re-running the transformation.
type PatchImageRequest struct {
	Title     *string `json:"title"`
	IsPrivate *bool   `json:"is_private"`
}

// ApplyImageResponse returns the saved image plus the post-debit balance.
type ApplyImageResponse struct {
	Image         interface{} `json:"image"`
	CreditBalance int64       `json:"credit_balance"`
}
