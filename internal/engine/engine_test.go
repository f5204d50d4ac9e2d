package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/adapters/cache"
	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
)

type stubRepo struct {
	accounts    []*core.Account
	domainCount int
	prefixCount int
	windowCount int
	ipCount     int
}

func (s *stubRepo) ListAccounts(ctx context.Context, limit int) ([]*core.Account, error) {
	if limit > 0 && limit < len(s.accounts) {
		return s.accounts[:limit], nil
	}
	return s.accounts, nil
}

func (s *stubRepo) GetAccount(ctx context.Context, id int64) (*core.Account, error) {
	for _, acct := range s.accounts {
		if acct.ID == id {
			return acct, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *stubRepo) CountByEmailDomain(ctx context.Context, domain string) (int, error) {
	return s.domainCount, nil
}

func (s *stubRepo) CountByUsernamePrefix(ctx context.Context, prefix string) (int, error) {
	return s.prefixCount, nil
}

func (s *stubRepo) CountRegisteredBetween(ctx context.Context, from, to time.Time) (int, error) {
	return s.windowCount, nil
}

func (s *stubRepo) CountByRegistrationIP(ctx context.Context, ip string) (int, error) {
	return s.ipCount, nil
}

func (s *stubRepo) CandidatesByUsernameLength(ctx context.Context, length, tolerance int, exclude string, maxRows int) ([]string, error) {
	return nil, nil
}

func (s *stubRepo) SetRegistrationIP(ctx context.Context, id int64, ip string) error { return nil }

func (s *stubRepo) DeleteAccount(ctx context.Context, id int64) error { return nil }

type stubDomains struct {
	allow map[string]bool
	deny  map[string]bool
}

func (s *stubDomains) Allowed(domain string) bool { return s.allow[domain] }
func (s *stubDomains) Denied(domain string) bool  { return s.deny[domain] }

func testEngine(repo *stubRepo, domains *stubDomains, cacheStore core.CacheStore) *Engine {
	return New(Params{
		Repo:    repo,
		Cache:   cacheStore,
		Domains: domains,
		Thresholds: config.Thresholds{
			Low:    25,
			Medium: 40,
			High:   70,
		},
		Detection: config.DetectionConfig{
			EnableEntropyCheck:    true,
			EnableHomoglyphCheck:  true,
			EnableKeyboardCheck:   true,
			EnableTLDCheck:        true,
			EnableDisposableCheck: true,
			TrackRegistrationIP:   true,
		},
		Batch:        config.BatchConfig{Workers: 2, QuickScanLimit: 100},
		CacheEnabled: cacheStore != nil,
		CacheTTL:     time.Hour,
		Logger:       zap.NewNop(),
	})
}

func cleanAccount(id int64) *core.Account {
	return &core.Account{
		ID:           id,
		Username:     "jo",
		Email:        "jane@personal.example",
		DisplayName:  "Robert Smith",
		FirstName:    "Jane",
		LastName:     "Doe",
		RegisteredAt: time.Now(),
	}
}

func TestAllowListShortCircuit(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// An account that would otherwise trip the missing-display-name
	// rule heavily.
	acct := &core.Account{
		ID:           1,
		Username:     "bot12345678",
		Email:        "bot12345678@trusted.example",
		RegisteredAt: time.Now(),
	}

	domains := &stubDomains{allow: map[string]bool{"trusted.example": true}}
	eng := testEngine(&stubRepo{}, domains, nil)

	result, err := eng.Analyze(ctx, acct)
	require.NoError(t, err)
	assert.False(result.IsSuspicious)
	assert.Equal(core.RiskLow, result.RiskLevel)
	assert.Equal(0, result.Score)
	assert.Empty(result.Reasons)
}

func TestDenyListSeeding(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	acct := cleanAccount(1)
	acct.Email = "jane@spammy.example"

	domains := &stubDomains{deny: map[string]bool{"spammy.example": true}}
	eng := testEngine(&stubRepo{}, domains, nil)

	result, err := eng.Analyze(ctx, acct)
	require.NoError(t, err)
	assert.True(result.IsSuspicious)
	assert.GreaterOrEqual(result.Score, 50)
	assert.Contains(result.Reasons, "Known spam domain")
	assert.Equal(core.RiskMedium, result.RiskLevel)
}

func TestSuspiciousBoundary(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// A vowel-less username contributes exactly the randomness score;
	// everything else about the account is clean.
	acct := cleanAccount(1)
	acct.Username = "bcdfg"

	eng := testEngine(&stubRepo{}, &stubDomains{}, nil)
	result, err := eng.Analyze(ctx, acct)
	require.NoError(t, err)

	assert.Equal(25, result.Score)
	assert.True(result.IsSuspicious, "score at the low threshold is suspicious")
	assert.Equal(core.RiskLow, result.RiskLevel)
	assert.Equal([]string{"Random username"}, result.Reasons)
}

func TestCleanAccountNotSuspicious(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := testEngine(&stubRepo{}, &stubDomains{}, nil)
	result, err := eng.Analyze(ctx, cleanAccount(1))
	require.NoError(t, err)

	assert.False(result.IsSuspicious)
	assert.Equal(core.RiskLow, result.RiskLevel)
	assert.Empty(result.Reasons)
}

func TestRegistrationBurstReason(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng := testEngine(&stubRepo{windowCount: 12}, &stubDomains{}, nil)
	result, err := eng.Analyze(ctx, cleanAccount(1))
	require.NoError(t, err)

	assert.Contains(result.Reasons, "Mass registration burst (12 users in 1 hour)")
	assert.True(result.IsSuspicious)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	acct := cleanAccount(1)
	acct.Username = "user123"
	eng := testEngine(&stubRepo{}, &stubDomains{}, nil)

	first, err := eng.Analyze(ctx, acct)
	require.NoError(t, err)
	second, err := eng.Analyze(ctx, acct)
	require.NoError(t, err)

	assert.Equal(first.Score, second.Score)
	assert.Equal(first.Reasons, second.Reasons)
	assert.Equal(first.RiskLevel, second.RiskLevel)
}

func TestAnalyzeServesFromCache(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	memCache := cache.NewMemoryCache(zap.NewNop(), time.Hour)
	defer memCache.Stop()

	repo := &stubRepo{}
	eng := testEngine(repo, &stubDomains{}, memCache)

	acct := cleanAccount(1)
	first, err := eng.Analyze(ctx, acct)
	require.NoError(t, err)

	// Changing repository state does not affect the cached result.
	repo.windowCount = 12
	second, err := eng.Analyze(ctx, acct)
	require.NoError(t, err)
	assert.Equal(first.Score, second.Score)

	// A fresh run sees the new state.
	fresh, err := eng.AnalyzeFresh(ctx, acct)
	require.NoError(t, err)
	assert.Contains(fresh.Reasons, "Mass registration burst (12 users in 1 hour)")
}

func TestReasonDedup(t *testing.T) {
	assert := assert.New(t)

	acc := newAccumulator()
	acc.add(10, "Suspicious username pattern")
	acc.add(5, "Suspicious username pattern")
	acc.add(5, "Random username")

	assert.Equal(20, acc.score)
	assert.Equal([]string{"Suspicious username pattern", "Random username"}, acc.reasons)
}

func TestAnalyzeBatch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	spammy := &core.Account{
		ID:           2,
		Username:     "user123",
		Email:        "user123@cheap.xyz",
		RegisteredAt: time.Now(),
	}
	repo := &stubRepo{accounts: []*core.Account{cleanAccount(1), spammy}}
	eng := testEngine(repo, &stubDomains{}, nil)

	report, err := eng.AnalyzeBatch(ctx, 0)
	require.NoError(t, err)

	assert.Equal(2, report.Analyzed)
	assert.Equal(1, report.Suspicious)
	assert.Equal(0, report.Failed)
	require.Len(t, report.Results, 1)
	assert.Equal(int64(2), report.Results[0].AccountID)
}

func TestReanalyze(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	spammy := &core.Account{
		ID:           2,
		Username:     "user123",
		Email:        "user123@cheap.xyz",
		RegisteredAt: time.Now(),
	}
	repo := &stubRepo{accounts: []*core.Account{cleanAccount(1), spammy}}
	eng := testEngine(repo, &stubDomains{}, nil)

	// Account 1 is clean now, account 2 still flags, account 99 is gone.
	report, err := eng.Reanalyze(ctx, []int64{1, 2, 99})
	require.NoError(t, err)

	assert.Equal(2, report.RemovedCount)
	assert.Equal(0, report.Failed)
	require.Len(t, report.StillFlagged, 1)
	assert.Equal(int64(2), report.StillFlagged[0].AccountID)
}
