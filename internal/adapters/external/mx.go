package external

import (
	"context"
	"net"
)

// MXResult reports whether a domain can receive mail.
type MXResult struct {
	HasMX   bool     `json:"has_mx"`
	Records []string `json:"records,omitempty"`
}

// MXValidator checks that an email domain has resolvable mail
// exchangers, falling back to an address record when none exist.
type MXValidator struct {
	resolver *net.Resolver
}

// NewMXValidator creates a validator using the default resolver.
func NewMXValidator() *MXValidator {
	return &MXValidator{resolver: net.DefaultResolver}
}

// Check resolves MX records for domain. A domain with no MX but a
// resolvable A/AAAA record still counts as deliverable.
func (v *MXValidator) Check(ctx context.Context, domain string) (MXResult, error) {
	result := MXResult{}

	mxs, err := v.resolver.LookupMX(ctx, domain)
	if err == nil && len(mxs) > 0 {
		result.HasMX = true
		for _, mx := range mxs {
			result.Records = append(result.Records, mx.Host)
		}
		return result, nil
	}

	// DNS errors that mean "no such record" are a legitimate negative
	// answer; anything else (timeout, server failure) is a real error.
	if dnsErr, ok := err.(*net.DNSError); ok && (dnsErr.IsTimeout || dnsErr.IsTemporary) {
		return result, err
	}

	addrs, addrErr := v.resolver.LookupHost(ctx, domain)
	if addrErr == nil && len(addrs) > 0 {
		result.HasMX = true
		result.Records = []string{addrs[0] + " (A record)"}
		return result, nil
	}
	if dnsErr, ok := addrErr.(*net.DNSError); ok && (dnsErr.IsTimeout || dnsErr.IsTemporary) {
		return result, addrErr
	}

	return result, nil
}
