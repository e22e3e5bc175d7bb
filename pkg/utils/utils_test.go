package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMatchID(t *testing.T) {
	id := GenerateMatchID("Fighting  Spirit")
	assert.Regexp(t, regexp.MustCompile(`^fighting-spirit-[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, GenerateMatchID("Fighting Spirit"))
	assert.Regexp(t, `^match-[0-9a-f]{8}$`, GenerateMatchID(" "))
}

func TestMath(t *testing.T) {
	assert.Equal(t, 2, Min(2, 5))
	assert.Equal(t, 5, Max(2, 5))
	assert.Equal(t, 3, Abs(-3))
	assert.Equal(t, 10, Clamp(12, 0, 10))
	assert.Equal(t, 0, Clamp(-1, 0, 10))
}
