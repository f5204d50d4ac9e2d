package analyzer

import "regexp"

// Rule is one entry in an ordered pattern list: a predicate over a
// (lowercased) input string plus the score and reason it contributes.
// Within a single list exactly one rule fires: evaluation stops at the
// first match. Across lists all applicable rules fire.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Score   int
	Reason  string
}

// FirstMatch evaluates rules in order and returns the first that
// matches, or nil when none does.
func FirstMatch(rules []Rule, input string) *Rule {
	for i := range rules {
		if rules[i].Pattern.MatchString(input) {
			return &rules[i]
		}
	}
	return nil
}

// usernameShapeRules are the common bot-generated username shapes.
// The dot-separated shapes carry a higher score than the rest.
var usernameShapeRules = []Rule{
	{
		Name:    "plain-lowercase",
		Pattern: regexp.MustCompile(`^[a-z]{6,12}$`),
		Score:   30,
		Reason:  "Suspicious username pattern",
	},
	{
		Name:    "letters-digits",
		Pattern: regexp.MustCompile(`^[a-z]+\d+$`),
		Score:   30,
		Reason:  "Suspicious username pattern",
	},
	{
		Name:    "word-dash-digits",
		Pattern: regexp.MustCompile(`^\w+-\d+$`),
		Score:   30,
		Reason:  "Suspicious username pattern",
	},
	{
		Name:    "consonant-vowel-cluster",
		Pattern: regexp.MustCompile(`^[bcdfghjklmnpqrstvwxyz]{4,8}[aeiou]{1,3}[bcdfghjklmnpqrstvwxyz]{2,6}$`),
		Score:   30,
		Reason:  "Suspicious username pattern",
	},
	{
		Name:    "short-dot-segments",
		Pattern: regexp.MustCompile(`^[a-z]{1,3}(\.[a-z]{1,3}){3,}$`),
		Score:   60,
		Reason:  "Suspicious username pattern (multiple dots)",
	},
	{
		Name:    "dot-segments",
		Pattern: regexp.MustCompile(`^[a-z]+(\.[a-z]+){2,}$`),
		Score:   60,
		Reason:  "Suspicious username pattern (multiple dots)",
	},
}

// spamUsernameRules are throwaway-looking names seen in bulk signups.
var spamUsernameRules = []Rule{
	{
		Name:    "service-word",
		Pattern: regexp.MustCompile(`^(user|admin|test|guest|temp|spam|bot)\d*$`),
		Score:   20,
		Reason:  "Common spam username pattern",
	},
	{
		Name:    "short-letters-long-number",
		Pattern: regexp.MustCompile(`^[a-z]{1,3}\d{4,}$`),
		Score:   20,
		Reason:  "Common spam username pattern",
	},
	{
		Name:    "word-underscore-number",
		Pattern: regexp.MustCompile(`^[a-z]+_\d{4,}$`),
		Score:   20,
		Reason:  "Common spam username pattern",
	},
	{
		Name:    "name-word",
		Pattern: regexp.MustCompile(`^(first|last|full)?name\d*$`),
		Score:   20,
		Reason:  "Common spam username pattern",
	},
	{
		Name:    "letters-8-digits",
		Pattern: regexp.MustCompile(`^[a-z]+\d{8,}$`),
		Score:   20,
		Reason:  "Common spam username pattern",
	},
}
