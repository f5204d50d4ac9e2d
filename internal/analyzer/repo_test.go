package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/spam-detective/internal/core"
)

// fakeRepo returns canned counts and candidate lists.
type fakeRepo struct {
	core.AccountRepository

	domainCount int
	prefixCount int
	windowCount int
	ipCount     int
	candidates  []string
}

func (f *fakeRepo) CountByEmailDomain(ctx context.Context, domain string) (int, error) {
	return f.domainCount, nil
}

func (f *fakeRepo) CountByUsernamePrefix(ctx context.Context, prefix string) (int, error) {
	return f.prefixCount, nil
}

func (f *fakeRepo) CountRegisteredBetween(ctx context.Context, from, to time.Time) (int, error) {
	return f.windowCount, nil
}

func (f *fakeRepo) CountByRegistrationIP(ctx context.Context, ip string) (int, error) {
	return f.ipCount, nil
}

func (f *fakeRepo) CandidatesByUsernameLength(ctx context.Context, length, tolerance int, exclude string, maxRows int) ([]string, error) {
	return f.candidates, nil
}

func TestAnalyzeBulkRegistrations(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	score, reasons, err := AnalyzeBulkRegistrations(ctx, &fakeRepo{domainCount: 8}, "spam.example")
	require.NoError(t, err)
	assert.Equal(8, score)
	assert.Equal([]string{"Bulk registration (8 from same domain)"}, reasons)

	// The contribution is capped at 20 however large the cohort.
	score, _, err = AnalyzeBulkRegistrations(ctx, &fakeRepo{domainCount: 200}, "spam.example")
	require.NoError(t, err)
	assert.Equal(20, score)

	score, reasons, err = AnalyzeBulkRegistrations(ctx, &fakeRepo{domainCount: 5}, "spam.example")
	require.NoError(t, err)
	assert.Equal(0, score)
	assert.Empty(reasons)

	// Malformed emails produce an empty domain; no query is made.
	score, _, err = AnalyzeBulkRegistrations(ctx, &fakeRepo{domainCount: 100}, "")
	require.NoError(t, err)
	assert.Equal(0, score)
}

func TestAnalyzeSequentialUsernames(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	score, reasons, err := AnalyzeSequentialUsernames(ctx, &fakeRepo{prefixCount: 4}, "user12")
	require.NoError(t, err)
	assert.Equal(20, score)
	assert.Equal([]string{"Sequential username pattern (4 similar)"}, reasons)

	// Five trailing digits fall outside the sequential shape.
	score, _, err = AnalyzeSequentialUsernames(ctx, &fakeRepo{prefixCount: 100}, "user12345")
	require.NoError(t, err)
	assert.Equal(0, score)

	score, _, err = AnalyzeSequentialUsernames(ctx, &fakeRepo{prefixCount: 3}, "user12")
	require.NoError(t, err)
	assert.Equal(0, score)
}

func TestAnalyzeRegistrationBurst(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	score, reasons, err := AnalyzeRegistrationBurst(ctx, &fakeRepo{windowCount: 12}, time.Now())
	require.NoError(t, err)
	assert.Equal(25, score)
	assert.Equal([]string{"Mass registration burst (12 users in 1 hour)"}, reasons)

	score, _, err = AnalyzeRegistrationBurst(ctx, &fakeRepo{windowCount: 10}, time.Now())
	require.NoError(t, err)
	assert.Equal(0, score)
}

func TestAnalyzeActivity(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()

	acct := &core.Account{RegisteredAt: now.Add(-40 * 24 * time.Hour)}
	score, reasons := AnalyzeActivity(acct, now)
	assert.Equal(20, score)
	assert.Equal([]string{"No activity after 30 days"}, reasons)

	// Any activity clears the signal.
	acct.CommentCount = 1
	score, _ = AnalyzeActivity(acct, now)
	assert.Equal(0, score)

	// Young accounts are not penalized for inactivity.
	young := &core.Account{RegisteredAt: now.Add(-2 * 24 * time.Hour)}
	score, _ = AnalyzeActivity(young, now)
	assert.Equal(0, score)
}

func TestAnalyzeSimilarUsernames(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	repo := &fakeRepo{candidates: []string{"jamesa", "jamesb", "jamesc", "nothing-close"}}
	res, err := AnalyzeSimilarUsernames(ctx, repo, "james1", 2, 500)
	require.NoError(t, err)
	assert.Equal(3, res.SimilarCount)
	assert.Equal(15, res.Score)
	assert.Equal("Similar to 3 other usernames", res.Reason)

	repo = &fakeRepo{candidates: []string{"user1", "user2", "user3", "user4", "user5"}}
	res, err = AnalyzeSimilarUsernames(ctx, repo, "user0", 2, 500)
	require.NoError(t, err)
	assert.Equal(5, res.SimilarCount)
	assert.Equal(25, res.Score)
	assert.Equal("Part of username cluster (5 similar)", res.Reason)

	res, err = AnalyzeSimilarUsernames(ctx, &fakeRepo{}, "unique", 2, 500)
	require.NoError(t, err)
	assert.Equal(0, res.Score)
}

func TestAnalyzeIPVelocity(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	score, reasons, err := AnalyzeIPVelocity(ctx, &fakeRepo{ipCount: 11}, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(40, score)
	assert.Equal([]string{"High registration velocity (11 from same IP)"}, reasons)

	score, _, err = AnalyzeIPVelocity(ctx, &fakeRepo{ipCount: 6}, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(25, score)

	score, _, err = AnalyzeIPVelocity(ctx, &fakeRepo{ipCount: 3}, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(15, score)

	// Loopback and missing IPs are skipped entirely.
	score, _, err = AnalyzeIPVelocity(ctx, &fakeRepo{ipCount: 100}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(0, score)

	score, _, err = AnalyzeIPVelocity(ctx, &fakeRepo{ipCount: 100}, "")
	require.NoError(t, err)
	assert.Equal(0, score)
}
