package analyzer

import (
	"regexp"
	"strings"

	"github.com/mikey/spam-detective/internal/core"
)

// Short list of TLDs that show up disproportionately in throwaway
// addresses. The extended table lives in tld.go; both checks may fire.
var shortSuspiciousTLDs = []string{".tk", ".ml", ".ga", ".cf", ".gq", ".pw", ".cc", ".ws"}

var (
	genericEmailRe   = regexp.MustCompile(`^[a-z]+\d+@`)
	trailingDigitsRe = regexp.MustCompile(`\d{2,}@`)
)

// AnalyzeEmailPatterns scores the shape of an email address. All
// checks are independently additive. Malformed addresses (no "@")
// yield an empty domain and prefix and contribute nothing beyond the
// short-prefix rule exemptions below.
func AnalyzeEmailPatterns(email string) (int, []string) {
	score := 0
	var reasons []string

	domain := core.EmailDomain(email)
	prefix := core.EmailPrefix(email)

	for _, tld := range shortSuspiciousTLDs {
		if strings.HasSuffix(domain, tld) {
			score += 15
			reasons = append(reasons, "Suspicious domain extension")
			break
		}
	}

	if genericEmailRe.MatchString(strings.ToLower(email)) {
		score += 15
		reasons = append(reasons, "Generic email pattern")
	}

	if trailingDigitsRe.MatchString(email) {
		score += 10
		reasons = append(reasons, "Email with trailing numbers")
	}

	if domain != "" && len(prefix) < 4 {
		score += 8
		reasons = append(reasons, "Very short email prefix")
	}

	if isNumeric(prefix) {
		score += 15
		reasons = append(reasons, "Numeric email prefix")
	}

	return score, reasons
}
