package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEntropy(t *testing.T) {
	assert := assert.New(t)

	// Single repeated symbol carries no information.
	assert.InDelta(0.0, CalculateEntropy("aaaaaaa"), 0.001)

	// Balanced 50/50 distribution over two symbols.
	assert.InDelta(1.0, CalculateEntropy("ab"), 0.001)

	// Case is folded before measuring.
	assert.Equal(CalculateEntropy("AbAb"), CalculateEntropy("abab"))

	assert.Equal(0.0, CalculateEntropy(""))
}

func TestAnalyzeEntropy(t *testing.T) {
	assert := assert.New(t)

	// 23 distinct characters: entropy log2(23) = 4.52.
	res := AnalyzeEntropy("abcdefghijklmnopqrstuvw")
	assert.Equal(25, res.Score)
	assert.Equal("High entropy username (4.52)", res.Reason)

	res = AnalyzeEntropy("aaaaaaa")
	assert.Equal(15, res.Score)
	assert.Equal("Repetitive username pattern (0.00 entropy)", res.Reason)

	// Ordinary usernames fall between the cutoffs.
	res = AnalyzeEntropy("jennifer")
	assert.Equal(0, res.Score)
	assert.Empty(res.Reason)

	// High entropy alone is not enough on a short name.
	res = AnalyzeEntropy("abcdefg")
	assert.Equal(0, res.Score)
}
