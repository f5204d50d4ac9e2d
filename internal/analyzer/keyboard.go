package analyzer

import "strings"

// keyboardWalks are literal walk and common-password substrings seen
// in bot-generated usernames.
var keyboardWalks = []string{
	"qwerty", "qwertz", "azerty",
	"asdfgh", "asdf", "zxcvbn",
	"123456", "12345", "1234",
	"abcdef", "abcd",
	"password", "pass123", "admin",
	"qazwsx", "wsxedc",
}

// AnalyzeKeyboardPatterns reports whether the username contains a
// keyboard walk or common-password substring.
func AnalyzeKeyboardPatterns(username string) (int, []string) {
	lower := strings.ToLower(username)
	for _, walk := range keyboardWalks {
		if strings.Contains(lower, walk) {
			return 20, []string{"Keyboard pattern in username"}
		}
	}
	return 0, nil
}
