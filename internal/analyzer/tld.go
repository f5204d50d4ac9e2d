package analyzer

import (
	"fmt"
	"strings"

	"github.com/mikey/spam-detective/internal/core"
)

// extendedSuspiciousTLDs is the larger table of cheap/free TLDs that
// are heavily abused for throwaway registrations. It is checked
// against the final label only and is additive with the short
// suffix-based list in email.go.
var extendedSuspiciousTLDs = map[string]bool{
	".tk": true, ".ml": true, ".ga": true, ".cf": true, ".gq": true,
	".pw": true, ".cc": true, ".ws": true, ".xyz": true, ".top": true,
	".buzz": true, ".click": true, ".link": true, ".work": true,
	".site": true, ".online": true, ".live": true, ".store": true,
	".icu": true, ".best": true, ".monster": true, ".rest": true,
	".fit": true, ".uno": true, ".cam": true, ".bid": true,
	".win": true, ".download": true, ".stream": true, ".racing": true,
	".review": true, ".trade": true, ".webcam": true, ".date": true,
	".faith": true, ".party": true, ".science": true, ".cricket": true,
	".accountant": true, ".loan": true, ".men": true, ".gdn": true,
}

// TLDResult reports whether an email's TLD is on the extended
// suspicious table.
type TLDResult struct {
	Suspicious bool
	Score      int
	TLD        string
	Reason     string
}

// AnalyzeTLD checks the final label of the email's domain against the
// extended suspicious-TLD table.
func AnalyzeTLD(email string) TLDResult {
	result := TLDResult{}

	domain := core.EmailDomain(email)
	if domain == "" {
		return result
	}

	parts := strings.Split(domain, ".")
	tld := "." + parts[len(parts)-1]
	result.TLD = tld

	if extendedSuspiciousTLDs[tld] {
		result.Suspicious = true
		result.Score = 20
		result.Reason = fmt.Sprintf("Suspicious TLD (%s)", tld)
	}

	return result
}
