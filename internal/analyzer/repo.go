package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/mikey/spam-detective/internal/core"
)

const (
	burstWindow      = 30 * time.Minute
	inactivityCutoff = 30 * 24 * time.Hour
)

var sequentialUsernameRe = regexp.MustCompile(`^[a-z]+\d{1,4}$`)

// AnalyzeBulkRegistrations flags accounts whose email domain has been
// used by more than five registrations.
func AnalyzeBulkRegistrations(ctx context.Context, repo core.AccountRepository, emailDomain string) (int, []string, error) {
	if emailDomain == "" {
		return 0, nil, nil
	}
	n, err := repo.CountByEmailDomain(ctx, emailDomain)
	if err != nil {
		return 0, nil, fmt.Errorf("count by email domain: %w", err)
	}
	if n > 5 {
		score := n
		if score > 20 {
			score = 20
		}
		return score, []string{fmt.Sprintf("Bulk registration (%d from same domain)", n)}, nil
	}
	return 0, nil, nil
}

// AnalyzeSequentialUsernames flags usernames like user1, user2, user3:
// a letters-plus-short-number shape whose digit-stripped base is
// shared by more than three accounts.
func AnalyzeSequentialUsernames(ctx context.Context, repo core.AccountRepository, username string) (int, []string, error) {
	lower := strings.ToLower(username)
	if !sequentialUsernameRe.MatchString(lower) {
		return 0, nil, nil
	}
	base := strings.TrimRight(lower, "0123456789")
	n, err := repo.CountByUsernamePrefix(ctx, base)
	if err != nil {
		return 0, nil, fmt.Errorf("count by username prefix: %w", err)
	}
	if n > 3 {
		return 20, []string{fmt.Sprintf("Sequential username pattern (%d similar)", n)}, nil
	}
	return 0, nil, nil
}

// AnalyzeRegistrationBurst flags accounts registered inside a mass
// signup wave: more than ten registrations within +-30 minutes of this
// account's registration (window endpoints inclusive).
func AnalyzeRegistrationBurst(ctx context.Context, repo core.AccountRepository, registered time.Time) (int, []string, error) {
	n, err := repo.CountRegisteredBetween(ctx, registered.Add(-burstWindow), registered.Add(burstWindow))
	if err != nil {
		return 0, nil, fmt.Errorf("count registered between: %w", err)
	}
	if n > 10 {
		return 25, []string{fmt.Sprintf("Mass registration burst (%d users in 1 hour)", n)}, nil
	}
	return 0, nil, nil
}

// AnalyzeActivity flags accounts older than thirty days with no posts
// and no comments.
func AnalyzeActivity(acct *core.Account, now time.Time) (int, []string) {
	if acct.Age(now) > inactivityCutoff && acct.PostCount == 0 && acct.CommentCount == 0 {
		return 20, []string{"No activity after 30 days"}
	}
	return 0, nil
}

// SimilarityResult describes the username cluster around a target.
type SimilarityResult struct {
	SimilarCount int
	Similar      []string
	Score        int
	Reason       string
}

// AnalyzeSimilarUsernames finds accounts whose username is within the
// given edit distance of the target. Candidates are pre-filtered by
// length and capped so the scan stays bounded.
func AnalyzeSimilarUsernames(ctx context.Context, repo core.AccountRepository, username string, threshold, candidateCap int) (SimilarityResult, error) {
	result := SimilarityResult{}
	if threshold <= 0 {
		threshold = 2
	}
	if candidateCap <= 0 {
		candidateCap = 500
	}

	candidates, err := repo.CandidatesByUsernameLength(ctx, len(username), threshold, username, candidateCap)
	if err != nil {
		return result, fmt.Errorf("candidates by username length: %w", err)
	}

	lower := strings.ToLower(username)
	for _, candidate := range candidates {
		distance := levenshtein.ComputeDistance(strings.ToLower(candidate), lower)
		if distance > 0 && distance <= threshold {
			result.Similar = append(result.Similar, candidate)
		}
	}
	result.SimilarCount = len(result.Similar)
	if len(result.Similar) > 10 {
		result.Similar = result.Similar[:10]
	}

	switch {
	case result.SimilarCount >= 5:
		result.Score = 25
		result.Reason = fmt.Sprintf("Part of username cluster (%d similar)", result.SimilarCount)
	case result.SimilarCount >= 3:
		result.Score = 15
		result.Reason = fmt.Sprintf("Similar to %d other usernames", result.SimilarCount)
	}

	return result, nil
}

// AnalyzeIPVelocity flags IPs that registered several accounts.
// Loopback addresses and accounts with no stored IP are skipped.
func AnalyzeIPVelocity(ctx context.Context, repo core.AccountRepository, ip string) (int, []string, error) {
	if ip == "" || ip == "127.0.0.1" || ip == "::1" {
		return 0, nil, nil
	}
	n, err := repo.CountByRegistrationIP(ctx, ip)
	if err != nil {
		return 0, nil, fmt.Errorf("count by registration ip: %w", err)
	}
	switch {
	case n >= 10:
		return 40, []string{fmt.Sprintf("High registration velocity (%d from same IP)", n)}, nil
	case n >= 5:
		return 25, []string{fmt.Sprintf("Multiple registrations from IP (%d)", n)}, nil
	case n >= 3:
		return 15, []string{fmt.Sprintf("Several registrations from IP (%d)", n)}, nil
	}
	return 0, nil, nil
}
