package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransformationType(t *testing.T) {
	for _, valid := range []string{"restore", "removeBackground", "fill", "replace", "remove", "recolor"} {
		assert.True(t, ValidTransformationType(valid), valid)
	}
	for _, invalid := range []string{"", "sharpen", "Restore", "remove_background"} {
		assert.False(t, ValidTransformationType(invalid), invalid)
	}
}

func TestDefaultConfig(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"restore": true}, DefaultConfig(TransformationRestore))
	assert.Equal(t, map[string]interface{}{"fillBackground": true}, DefaultConfig(TransformationFill))
	assert.Nil(t, DefaultConfig("sharpen"))

	recolor := DefaultConfig(TransformationRecolor)["recolor"].(map[string]interface{})
	assert.Equal(t, true, recolor["multiple"])
}

func TestPlanCatalog(t *testing.T) {
	pro := PlanByID(2)
	assert.NotNil(t, pro)
	assert.Equal(t, "Pro Package", pro.Name)
	assert.Equal(t, int64(10), pro.Price)
	assert.Equal(t, int64(150), pro.Credits)

	assert.Nil(t, PlanByID(42))
}
