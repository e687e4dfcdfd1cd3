package models

// TransformationType enumerates the external media operations we support.
type TransformationType string

const (
	TransformationRestore          TransformationType = "restore"
	TransformationRemoveBackground TransformationType = "removeBackground"
	TransformationFill             TransformationType = "fill"
	TransformationReplace          TransformationType = "replace"
	TransformationRemove           TransformationType = "remove"
	TransformationRecolor          TransformationType = "recolor"
)

// CreditFee is the fixed ledger delta charged per applied transformation.
const CreditFee = -1

// AspectRatio is a named output geometry for generative fill.
type AspectRatio struct {
	Label  string
	Width  int
	Height int
}

var AspectRatios = map[string]AspectRatio{
	"1:1":  {Label: "Square (1:1)", Width: 1000, Height: 1000},
	"3:4":  {Label: "Standard Portrait (3:4)", Width: 1000, Height: 1334},
	"9:16": {Label: "Phone Portrait (9:16)", Width: 1000, Height: 1778},
	"4:3":  {Label: "Standard Landscape (4:3)", Width: 1334, Height: 1000},
	"16:9": {Label: "Widescreen (16:9)", Width: 1778, Height: 1000},
}

// DefaultConfig returns the provider configuration payload for a
// transformation type, matching what the editing UI submits.
func DefaultConfig(t TransformationType) map[string]interface{} {
	switch t {
	case TransformationRestore:
		return map[string]interface{}{"restore": true}
	case TransformationRemoveBackground:
		return map[string]interface{}{"removeBackground": true}
	case TransformationFill:
		return map[string]interface{}{"fillBackground": true}
	case TransformationReplace:
		return map[string]interface{}{
			"replace": map[string]interface{}{"from": "", "to": ""},
		}
	case TransformationRemove:
		return map[string]interface{}{
			"remove": map[string]interface{}{"prompt": "", "removeShadow": true, "multiple": true},
		}
	case TransformationRecolor:
		return map[string]interface{}{
			"recolor": map[string]interface{}{"prompt": "", "to": "", "multiple": true},
		}
	}
	return nil
}

// ValidTransformationType reports whether t names a supported operation.
func ValidTransformationType(t string) bool {
	switch TransformationType(t) {
	case TransformationRestore, TransformationRemoveBackground, TransformationFill,
		TransformationReplace, TransformationRemove, TransformationRecolor:
		return true
	}
	return false
}
