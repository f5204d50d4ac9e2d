package analyzer

import (
	"strings"
)

var randomKeyboardChunks = []string{"qwerty", "asdf", "zxcv", "123", "abc"}

// AnalyzeUsernamePatterns scores a username against the shape-pattern
// list, the randomness heuristic and the spam-username list. The three
// checks are independent and additive; within each pattern list only
// the first matching rule fires.
func AnalyzeUsernamePatterns(username string) (int, []string) {
	score := 0
	var reasons []string
	lower := strings.ToLower(username)

	if rule := FirstMatch(usernameShapeRules, lower); rule != nil {
		score += rule.Score
		reasons = append(reasons, rule.Reason)
	}

	if IsRandomString(username) {
		score += 25
		reasons = append(reasons, "Random username")
	}

	if rule := FirstMatch(spamUsernameRules, lower); rule != nil {
		score += rule.Score
		reasons = append(reasons, rule.Reason)
	}

	return score, reasons
}

// IsRandomString reports whether a string looks machine-generated:
// missing vowels or consonants entirely, a character repeated three or
// more times in a row, or a well-known keyboard chunk inside it.
func IsRandomString(s string) bool {
	lower := strings.ToLower(s)

	vowels := 0
	consonants := 0
	for _, r := range lower {
		switch {
		case strings.ContainsRune("aeiou", r):
			vowels++
		case r >= 'a' && r <= 'z':
			consonants++
		}
	}
	if vowels == 0 || consonants == 0 {
		return true
	}

	if hasRepeatedRun(s, 3) {
		return true
	}

	for _, chunk := range randomKeyboardChunks {
		if strings.Contains(lower, chunk) {
			return true
		}
	}

	return false
}

// hasRepeatedRun reports whether any rune repeats at least n times
// consecutively. RE2 has no backreferences, so this is a plain scan.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
