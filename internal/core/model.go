package core

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// RiskLevel is a monotonic bucketing of the numeric risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Account represents a registered user account under analysis. It is
// treated as immutable for the duration of a single analysis pass; the
// account repository owns its lifecycle.
type Account struct {
	ID             int64
	Username       string
	Email          string
	DisplayName    string
	FirstName      string
	LastName       string
	RegisteredAt   time.Time
	Roles          []string
	PostCount      int
	CommentCount   int
	RegistrationIP string
}

// Age returns how long ago the account registered, relative to now.
func (a *Account) Age(now time.Time) time.Duration {
	return now.Sub(a.RegisteredAt)
}

// AnalysisResult is the outcome of analyzing a single account. It is
// never mutated after construction.
type AnalysisResult struct {
	AccountID    int64     `json:"account_id"`
	IsSuspicious bool      `json:"is_suspicious"`
	RiskLevel    RiskLevel `json:"risk_level"`
	Reasons      []string  `json:"reasons"`
	Score        int       `json:"score"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// ExternalCheckResult is the outcome of a single external reputation
// lookup. Checked is false when the provider was disabled or the call
// failed; such results contribute no score.
type ExternalCheckResult struct {
	Flagged    bool    `json:"flagged"`
	Confidence float64 `json:"confidence"`
	Frequency  int     `json:"frequency"`
	Checked    bool    `json:"checked"`
	Error      string  `json:"error,omitempty"`
}

// EmailDomain extracts the lowercased domain part of an email address.
// Returns "" for malformed addresses so analyzers degrade gracefully.
func EmailDomain(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok {
		return ""
	}
	return strings.ToLower(domain)
}

// EmailPrefix extracts the local part of an email address.
func EmailPrefix(email string) string {
	prefix, _, _ := strings.Cut(email, "@")
	return prefix
}

// AnalysisCacheKey derives the cache key for an account's analysis.
// Registration time and email are folded into the fingerprint so any
// identity-relevant change invalidates the cached entry naturally.
func AnalysisCacheKey(id int64, registered time.Time, email string) string {
	sum := md5.Sum([]byte(registered.UTC().Format(time.RFC3339) + email))
	return fmt.Sprintf("user_%d_%s", id, hex.EncodeToString(sum[:]))
}
