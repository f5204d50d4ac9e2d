package analyzer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// homoglyphs maps confusable Unicode characters to the ASCII letters
// they imitate: Cyrillic, Armenian, small-caps and fullwidth forms.
var homoglyphs = map[rune]rune{
	// Cyrillic
	'а': 'a',
	'е': 'e',
	'о': 'o',
	'р': 'p',
	'с': 'c',
	'х': 'x',
	'у': 'y',
	'і': 'i',
	'ј': 'j',
	'ѕ': 's',
	'ԁ': 'd',
	'ԝ': 'w',
	// Latin script letters
	'ɡ': 'g',
	'ɩ': 'i',
	// Armenian
	'ո': 'n',
	'ս': 'u',
	// Small caps
	'ᴀ': 'a',
	'ʙ': 'b',
	'ᴄ': 'c',
	'ᴅ': 'd',
	'ᴇ': 'e',
	'ғ': 'f',
	'ɢ': 'g',
	'ʜ': 'h',
	'ɪ': 'i',
	'ᴊ': 'j',
	'ᴋ': 'k',
	'ʟ': 'l',
	'ᴍ': 'm',
	'ɴ': 'n',
	'ᴏ': 'o',
	'ᴘ': 'p',
	'ǫ': 'q',
	'ʀ': 'r',
	'ᴛ': 't',
	'ᴜ': 'u',
	'ᴠ': 'v',
	'ᴡ': 'w',
	'ʏ': 'y',
	'ᴢ': 'z',
	// Fullwidth digits
	'０': '0',
	'１': '1',
	'２': '2',
	'３': '3',
	'４': '4',
	'５': '5',
	'６': '6',
	'７': '7',
	'８': '8',
	'９': '9',
}

// HomoglyphResult reports whether a username contains confusable
// Unicode characters and its ASCII-transliterated form. The normalized
// form is informational and not scored further.
type HomoglyphResult struct {
	HasHomoglyphs bool
	Score         int
	Normalized    string
	Reason        string
}

// AnalyzeHomoglyphs scans a username for confusable characters.
// Transliteration applies the confusable table first, then NFKC
// normalization to fold remaining compatibility forms (fullwidth
// letters and similar).
func AnalyzeHomoglyphs(username string) HomoglyphResult {
	result := HomoglyphResult{Normalized: username}

	found := false
	var b strings.Builder
	for _, r := range username {
		if ascii, ok := homoglyphs[r]; ok {
			found = true
			b.WriteRune(ascii)
		} else {
			b.WriteRune(r)
		}
	}

	if !found {
		return result
	}

	result.HasHomoglyphs = true
	result.Score = 40
	result.Normalized = norm.NFKC.String(b.String())
	result.Reason = "Unicode homoglyphs detected (spoofing attempt)"
	return result
}
