package analyzer

import (
	"strings"

	"github.com/mikey/spam-detective/internal/core"
)

// disposableProviders is the maintained list of disposable/temporary
// email providers. Subdomains of a listed provider also match.
var disposableProviders = []string{
	"10minutemail.com",
	"10minutemail.net",
	"20minutemail.com",
	"33mail.com",
	"anonbox.net",
	"burnermail.io",
	"byom.de",
	"correotemporal.org",
	"deadaddress.com",
	"discard.email",
	"dispostable.com",
	"emailondeck.com",
	"fakeinbox.com",
	"getairmail.com",
	"getnada.com",
	"guerrillamail.com",
	"guerrillamail.net",
	"guerrillamail.org",
	"inboxkitten.com",
	"mail-temporaire.fr",
	"maildrop.cc",
	"mailinator.com",
	"mailnesia.com",
	"mintemail.com",
	"mohmal.com",
	"mytemp.email",
	"sharklasers.com",
	"spamgourmet.com",
	"temp-mail.org",
	"tempail.com",
	"tempinbox.com",
	"tempmail.dev",
	"tempmailo.com",
	"temporary-mail.net",
	"throwawaymail.com",
	"trash-mail.com",
	"trashmail.com",
	"yopmail.com",
	"yopmail.fr",
	"zehnminutenmail.de",
}

var disposableSet = func() map[string]bool {
	set := make(map[string]bool, len(disposableProviders))
	for _, d := range disposableProviders {
		set[d] = true
	}
	return set
}()

// IsDisposableEmail reports whether the email's domain belongs to a
// known disposable provider, by exact or dot-suffix match.
func IsDisposableEmail(email string) bool {
	domain := core.EmailDomain(email)
	if domain == "" {
		return false
	}
	if disposableSet[domain] {
		return true
	}
	for _, provider := range disposableProviders {
		if strings.HasSuffix(domain, "."+provider) {
			return true
		}
	}
	return false
}

// DisposableDomainCount returns the number of known providers.
func DisposableDomainCount() int {
	return len(disposableProviders)
}
