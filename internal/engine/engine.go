// Package engine orchestrates the risk-scoring pipeline. It runs the
// domain fast path, the pure pattern analyzers, the repository-backed
// analyzers, the feature-flagged advanced analyzers and finally the
// external reputation checks, accumulating one score and a deduplicated
// reason list per account.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/analyzer"
	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
	"github.com/mikey/spam-detective/internal/settings"
)

// DomainPolicy is the fast-path domain list check.
type DomainPolicy interface {
	Allowed(domain string) bool
	Denied(domain string) bool
}

// ExternalChecker runs the network-backed reputation checks.
type ExternalChecker interface {
	RunAll(ctx context.Context, acct *core.Account, now time.Time) (int, []string)
}

// Params collects the engine's collaborators. Repo, External and
// Domains may be nil; the corresponding analyzers are skipped.
type Params struct {
	Repo         core.AccountRepository
	Cache        core.CacheStore
	External     ExternalChecker
	Domains      DomainPolicy
	Thresholds   config.Thresholds
	Detection    config.DetectionConfig
	Batch        config.BatchConfig
	CacheEnabled bool
	CacheTTL     time.Duration
	Logger       *zap.Logger
}

// Engine scores accounts. It is safe for concurrent use; all mutable
// state lives in the cache store.
type Engine struct {
	repo         core.AccountRepository
	cache        core.CacheStore
	external     ExternalChecker
	domains      DomainPolicy
	thresholds   config.Thresholds
	detection    config.DetectionConfig
	batch        config.BatchConfig
	cacheEnabled bool
	cacheTTL     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// New creates a scoring engine.
func New(p Params) *Engine {
	return &Engine{
		repo:         p.Repo,
		cache:        p.Cache,
		external:     p.External,
		domains:      p.Domains,
		thresholds:   p.Thresholds,
		detection:    p.Detection,
		batch:        p.Batch,
		cacheEnabled: p.CacheEnabled && p.Cache != nil,
		cacheTTL:     p.CacheTTL,
		logger:       p.Logger,
		now:          time.Now,
	}
}

// Analyze scores a single account, serving from the result cache when
// possible. The cache key folds in the registration timestamp and
// email, so identity changes invalidate stale entries naturally.
func (e *Engine) Analyze(ctx context.Context, acct *core.Account) (*core.AnalysisResult, error) {
	key := cacheKey(acct)

	if e.cacheEnabled {
		if cached, err := e.cache.Get(ctx, key); err == nil {
			var result core.AnalysisResult
			if err := json.Unmarshal(cached, &result); err == nil {
				cacheHits.Inc()
				return &result, nil
			}
			e.logger.Warn("Discarding undecodable cached analysis", zap.String("key", key), zap.Error(err))
		} else if !errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("analysis cache read: %w", err)
		}
		cacheMisses.Inc()
	}

	result, err := e.run(ctx, acct)
	if err != nil {
		return nil, err
	}

	if e.cacheEnabled {
		if encoded, err := json.Marshal(result); err == nil {
			if err := e.cache.Set(ctx, key, encoded, e.cacheTTL); err != nil {
				e.logger.Warn("Failed to cache analysis result", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return result, nil
}

// AnalyzeFresh scores an account bypassing the result cache entirely
// and drops any stale cached entry. Used for re-analysis, where a
// previously-flagged account must be re-scored against current rules.
func (e *Engine) AnalyzeFresh(ctx context.Context, acct *core.Account) (*core.AnalysisResult, error) {
	if e.cache != nil {
		if err := e.cache.Delete(ctx, cacheKey(acct)); err != nil && !errors.Is(err, core.ErrNotFound) {
			e.logger.Warn("Failed to drop cached analysis", zap.Int64("account_id", acct.ID), zap.Error(err))
		}
	}

	result, err := e.run(ctx, acct)
	if err != nil {
		return nil, err
	}
	if e.cacheEnabled {
		if encoded, err := json.Marshal(result); err == nil {
			_ = e.cache.Set(ctx, cacheKey(acct), encoded, e.cacheTTL)
		}
	}
	return result, nil
}

// Invalidate drops the cached result for an account.
func (e *Engine) Invalidate(ctx context.Context, acct *core.Account) error {
	if e.cache == nil {
		return nil
	}
	err := e.cache.Delete(ctx, cacheKey(acct))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return err
}

// run executes the full pipeline for one account. Repository errors
// abort this account only; external-check failures never surface here.
func (e *Engine) run(ctx context.Context, acct *core.Account) (*core.AnalysisResult, error) {
	started := time.Now()
	now := e.now()
	domain := core.EmailDomain(acct.Email)

	// Allow-listed domains bypass every analyzer.
	if e.domains != nil && domain != "" && e.domains.Allowed(domain) {
		result := &core.AnalysisResult{
			AccountID:  acct.ID,
			RiskLevel:  core.RiskLow,
			Reasons:    []string{},
			AnalyzedAt: now,
		}
		e.observe(result, started)
		return result, nil
	}

	acc := newAccumulator()

	if e.domains != nil && domain != "" && e.domains.Denied(domain) {
		acc.add(50, "Known spam domain")
	}

	acc.addPair(analyzer.AnalyzeUsernamePatterns(acct.Username))
	acc.addPair(analyzer.AnalyzeDisplayName(acct))
	acc.addPair(analyzer.AnalyzeEmailPatterns(acct.Email))
	acc.addPair(analyzer.AnalyzeNames(acct))

	if e.repo != nil {
		if err := e.runRepoAnalyzers(ctx, acct, domain, acc); err != nil {
			return nil, err
		}
	}
	acc.addPair(analyzer.AnalyzeActivity(acct, now))

	e.runAdvancedAnalyzers(acct, domain, acc)

	if e.external != nil {
		acc.addPair(e.external.RunAll(ctx, acct, now))
	}

	result := &core.AnalysisResult{
		AccountID:    acct.ID,
		IsSuspicious: acc.score >= e.thresholds.Low,
		RiskLevel:    e.riskTier(acc.score),
		Reasons:      acc.reasons,
		Score:        acc.score,
		AnalyzedAt:   now,
	}
	e.observe(result, started)
	return result, nil
}

func (e *Engine) runRepoAnalyzers(ctx context.Context, acct *core.Account, domain string, acc *accumulator) error {
	score, reasons, err := analyzer.AnalyzeBulkRegistrations(ctx, e.repo, domain)
	if err != nil {
		return err
	}
	acc.add(score, reasons...)

	score, reasons, err = analyzer.AnalyzeSequentialUsernames(ctx, e.repo, acct.Username)
	if err != nil {
		return err
	}
	acc.add(score, reasons...)

	score, reasons, err = analyzer.AnalyzeRegistrationBurst(ctx, e.repo, acct.RegisteredAt)
	if err != nil {
		return err
	}
	acc.add(score, reasons...)

	if e.detection.EnableSimilarityCheck {
		similarity, err := analyzer.AnalyzeSimilarUsernames(ctx, e.repo, acct.Username,
			e.detection.SimilarityThreshold, e.detection.SimilarityCandidateCap)
		if err != nil {
			return err
		}
		if similarity.Score > 0 {
			acc.add(similarity.Score, similarity.Reason)
		}
	}

	if e.detection.TrackRegistrationIP {
		score, reasons, err = analyzer.AnalyzeIPVelocity(ctx, e.repo, acct.RegistrationIP)
		if err != nil {
			return err
		}
		acc.add(score, reasons...)
	}

	return nil
}

func (e *Engine) runAdvancedAnalyzers(acct *core.Account, domain string, acc *accumulator) {
	if e.detection.EnableEntropyCheck {
		if res := analyzer.AnalyzeEntropy(acct.Username); res.Score != 0 {
			acc.add(res.Score, res.Reason)
		}
	}
	if e.detection.EnableHomoglyphCheck {
		if res := analyzer.AnalyzeHomoglyphs(acct.Username); res.HasHomoglyphs {
			acc.add(res.Score, res.Reason)
		}
	}
	if e.detection.EnableKeyboardCheck {
		acc.addPair(analyzer.AnalyzeKeyboardPatterns(acct.Username))
	}
	if e.detection.EnableTLDCheck {
		if res := analyzer.AnalyzeTLD(acct.Email); res.Suspicious {
			acc.add(res.Score, res.Reason)
		}
	}
	if e.detection.EnableDisposableCheck && domain != "" && analyzer.IsDisposableEmail(acct.Email) {
		acc.add(40, "Disposable/temporary email address")
	}
}

// riskTier maps a score onto a tier with ascending threshold cutoffs.
func (e *Engine) riskTier(score int) core.RiskLevel {
	switch {
	case score >= e.thresholds.High:
		return core.RiskHigh
	case score >= e.thresholds.Medium:
		return core.RiskMedium
	default:
		return core.RiskLow
	}
}

func (e *Engine) observe(result *core.AnalysisResult, started time.Time) {
	analysesTotal.WithLabelValues(string(result.RiskLevel)).Inc()
	if result.IsSuspicious {
		suspiciousTotal.Inc()
	}
	analysisDuration.Observe(time.Since(started).Seconds())
}

func cacheKey(acct *core.Account) string {
	return settings.AnalysisCachePrefix + core.AnalysisCacheKey(acct.ID, acct.RegisteredAt, acct.Email)
}

// accumulator sums score deltas and collects reasons, dropping
// duplicate reason strings while preserving first-seen order.
type accumulator struct {
	score   int
	seen    map[string]struct{}
	reasons []string
}

func newAccumulator() *accumulator {
	return &accumulator{
		seen:    make(map[string]struct{}),
		reasons: []string{},
	}
}

func (a *accumulator) add(delta int, reasons ...string) {
	a.score += delta
	for _, reason := range reasons {
		if _, dup := a.seen[reason]; dup {
			continue
		}
		a.seen[reason] = struct{}{}
		a.reasons = append(a.reasons, reason)
	}
}

func (a *accumulator) addPair(delta int, reasons []string) {
	a.add(delta, reasons...)
}
