package analyzer

import (
	"strings"

	"github.com/mikey/spam-detective/internal/core"
)

var genericDisplayWords = []string{"user", "test", "admin", "guest", "temp"}

var fakeNames = map[string]bool{
	"test": true, "user": true, "admin": true, "guest": true,
	"temp": true, "spam": true, "bot": true,
}

// AnalyzeDisplayName scores an account's display name. A missing
// display name (or one identical to the username) dominates and skips
// the remaining display-name checks.
func AnalyzeDisplayName(acct *core.Account) (int, []string) {
	if acct.DisplayName == "" || acct.DisplayName == acct.Username {
		return 70, []string{"No display name"}
	}

	score := 0
	var reasons []string
	lower := strings.ToLower(acct.DisplayName)

	if isNumeric(strings.ReplaceAll(acct.DisplayName, " ", "")) {
		score += 10
		reasons = append(reasons, "Numeric display name")
	}

	for _, word := range genericDisplayWords {
		if strings.Contains(lower, word) {
			score += 8
			reasons = append(reasons, "Generic display name")
			break
		}
	}

	return score, reasons
}

// AnalyzeNames scores the first/last name fields. Accounts providing
// no name at all get a small bonus instead of any penalty.
func AnalyzeNames(acct *core.Account) (int, []string) {
	first := strings.TrimSpace(acct.FirstName)
	last := strings.TrimSpace(acct.LastName)

	if first == "" && last == "" {
		// Providing no name at all yields a small bonus, not a penalty.
		return -5, nil
	}

	score := 0
	var reasons []string

	if fakeNames[strings.ToLower(first)] || fakeNames[strings.ToLower(last)] {
		score += 15
		reasons = append(reasons, "Fake name used")
	}

	if (first != "" && isNumeric(first)) || (last != "" && isNumeric(last)) {
		score += 12
		reasons = append(reasons, "Numeric name fields")
	}

	if len(first) == 1 || len(last) == 1 {
		score += 8
		reasons = append(reasons, "Single character name")
	}

	return score, reasons
}

// isNumeric reports whether s is non-empty and all ASCII digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
