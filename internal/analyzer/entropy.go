package analyzer

import (
	"fmt"
	"math"
	"strings"
)

// EntropyResult holds the Shannon entropy of a username and any score
// it contributes.
type EntropyResult struct {
	Entropy float64
	Score   int
	Reason  string
}

// CalculateEntropy computes the base-2 Shannon entropy of the
// lowercased input over its byte-frequency distribution, rounded to
// two decimals. Typical human usernames land between 2.5 and 4.0.
func CalculateEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	s = strings.ToLower(s)
	length := float64(len(s))
	freq := make(map[byte]int)
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}

	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}

	return math.Round(entropy*100) / 100
}

// AnalyzeEntropy scores a username by its entropy: very high entropy
// on longer names suggests random generation, very low entropy
// suggests a repetitive pattern.
func AnalyzeEntropy(username string) EntropyResult {
	entropy := CalculateEntropy(username)
	result := EntropyResult{Entropy: entropy}

	switch {
	case entropy > 4.5 && len(username) >= 8:
		result.Score = 25
		result.Reason = fmt.Sprintf("High entropy username (%.2f)", entropy)
	case entropy < 1.5 && len(username) >= 6:
		result.Score = 15
		result.Reason = fmt.Sprintf("Repetitive username pattern (%.2f entropy)", entropy)
	}

	return result
}
