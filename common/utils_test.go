package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, "", Coalesce[string]())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp(float32(1.5), -1, 1))
	assert.Equal(t, -1, Clamp(-4, -1, 1))
	assert.Equal(t, 0.25, Clamp(0.25, -1, 1))
}

func TestKeyName(t *testing.T) {
	tests := []struct {
		code uint32
		want string
	}{
		{KeyW, "w"},
		{'7', "7"},
		{KeySpace, "space"},
		{KeyEsc, "escape"},
		{999, "key(999)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KeyName(tt.code))
	}
}
