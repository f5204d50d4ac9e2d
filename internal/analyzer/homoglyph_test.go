package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeHomoglyphs(t *testing.T) {
	assert := assert.New(t)

	// Leading Cyrillic a imitating "admin".
	res := AnalyzeHomoglyphs("аdmin")
	assert.True(res.HasHomoglyphs)
	assert.Equal(40, res.Score)
	assert.Equal("admin", res.Normalized)
	assert.Equal("Unicode homoglyphs detected (spoofing attempt)", res.Reason)

	// Fullwidth digits transliterate to ASCII.
	res = AnalyzeHomoglyphs("user１２３")
	assert.True(res.HasHomoglyphs)
	assert.Equal("user123", res.Normalized)
}

func TestAnalyzeHomoglyphsCleanASCII(t *testing.T) {
	assert := assert.New(t)

	res := AnalyzeHomoglyphs("admin")
	assert.False(res.HasHomoglyphs)
	assert.Equal(0, res.Score)
	assert.Equal("admin", res.Normalized)
	assert.Empty(res.Reason)
}
