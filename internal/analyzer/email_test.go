package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeEmailPatterns(t *testing.T) {
	assert := assert.New(t)

	// Trailing digits before the @, but the prefix is long enough to
	// escape the short-prefix penalty.
	score, reasons := AnalyzeEmailPatterns("bob1234567@example.com")
	assert.Equal(25, score)
	assert.Equal([]string{"Generic email pattern", "Email with trailing numbers"}, reasons)

	// Suspicious extension plus a very short prefix.
	score, reasons = AnalyzeEmailPatterns("abc@mail.tk")
	assert.Equal(23, score)
	assert.Contains(reasons, "Suspicious domain extension")
	assert.Contains(reasons, "Very short email prefix")

	// All-numeric prefix also trips the trailing-digits rule.
	score, reasons = AnalyzeEmailPatterns("12345@example.com")
	assert.Equal(25, score)
	assert.Contains(reasons, "Numeric email prefix")
	assert.Contains(reasons, "Email with trailing numbers")

	score, reasons = AnalyzeEmailPatterns("jane.doe@example.com")
	assert.Equal(0, score)
	assert.Empty(reasons)
}

func TestAnalyzeEmailPatternsMalformed(t *testing.T) {
	assert := assert.New(t)

	// No @ at all: empty domain and the whole string as prefix, so
	// nothing fires.
	score, reasons := AnalyzeEmailPatterns("not-an-email")
	assert.Equal(0, score)
	assert.Empty(reasons)
}
