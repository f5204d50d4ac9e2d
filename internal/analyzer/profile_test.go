package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikey/spam-detective/internal/core"
)

func TestAnalyzeDisplayName(t *testing.T) {
	assert := assert.New(t)

	score, reasons := AnalyzeDisplayName(&core.Account{Username: "bob"})
	assert.Equal(70, score)
	assert.Equal([]string{"No display name"}, reasons)

	// Display name identical to the username counts as missing and
	// skips the remaining checks.
	score, reasons = AnalyzeDisplayName(&core.Account{Username: "user99", DisplayName: "user99"})
	assert.Equal(70, score)
	assert.Equal([]string{"No display name"}, reasons)

	score, reasons = AnalyzeDisplayName(&core.Account{Username: "bob", DisplayName: "123 456"})
	assert.Equal(10, score)
	assert.Equal([]string{"Numeric display name"}, reasons)

	// Generic word match fires once even when several words appear.
	score, reasons = AnalyzeDisplayName(&core.Account{Username: "bob", DisplayName: "Test User"})
	assert.Equal(8, score)
	assert.Equal([]string{"Generic display name"}, reasons)

	score, reasons = AnalyzeDisplayName(&core.Account{Username: "bob", DisplayName: "Robert Smith"})
	assert.Equal(0, score)
	assert.Empty(reasons)
}

func TestAnalyzeNames(t *testing.T) {
	assert := assert.New(t)

	// No names at all is a small bonus.
	score, reasons := AnalyzeNames(&core.Account{})
	assert.Equal(-5, score)
	assert.Empty(reasons)

	score, reasons = AnalyzeNames(&core.Account{FirstName: "Test", LastName: "Smith"})
	assert.Equal(15, score)
	assert.Equal([]string{"Fake name used"}, reasons)

	// A single digit trips both the numeric and single-character rules.
	score, reasons = AnalyzeNames(&core.Account{FirstName: "7"})
	assert.Equal(20, score)
	assert.Equal([]string{"Numeric name fields", "Single character name"}, reasons)

	score, reasons = AnalyzeNames(&core.Account{FirstName: "Jane", LastName: "Doe"})
	assert.Equal(0, score)
	assert.Empty(reasons)
}
