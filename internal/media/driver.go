package media

import (
	"context"

	"github.com/jm8gw/ai-photo-editor/internal/models"
)

// Request describes one transformation to derive from an already-uploaded
// asset.
type Request struct {
	Type        models.TransformationType
	PublicID    string
	AspectRatio string // fill only
	Prompt      string // remove, recolor
	Color       string // recolor
	From        string // replace
	Replacement string // replace

	// Source dimensions, used when the transformation keeps geometry
	Width  int
	Height int
}

// Result is the derived asset descriptor returned by the media API.
type Result struct {
	URL    string
	Width  int
	Height int
}

// Transformer is the outbound interface to the media transformation API.
type Transformer interface {
	// Transform derives the transformed asset and confirms the provider
	// accepted the derivation. The caller charges credits only after a
	// nil error return.
	Transform(ctx context.Context, req Request) (*Result, error)

	// Search returns the public ids in our media folder matching the
	// query, for gallery search.
	Search(ctx context.Context, query string) ([]string, error)
}
