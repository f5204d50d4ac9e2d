package external

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
)

// ReputationProvider looks up emails and IPs in a spam-report database.
type ReputationProvider interface {
	CheckEmail(ctx context.Context, email string) (core.ExternalCheckResult, error)
	CheckIP(ctx context.Context, ip string) (core.ExternalCheckResult, error)
}

// MXProvider validates that a domain can receive mail.
type MXProvider interface {
	Check(ctx context.Context, domain string) (MXResult, error)
}

// AvatarProvider reports whether an email has a registered avatar.
type AvatarProvider interface {
	Check(ctx context.Context, email string) (bool, error)
}

// Checker aggregates all external reputation checks behind the master
// and per-provider toggles. Lookups are cached per email/IP with their
// own TTL, and total in-flight external work is capped by a semaphore
// so a batch cannot pile up blocked network calls.
type Checker struct {
	cfg    config.ExternalConfig
	logger *zap.Logger
	sem    *semaphore.Weighted

	emailLookup  *CachedLookup[core.ExternalCheckResult]
	ipLookup     *CachedLookup[core.ExternalCheckResult]
	mxLookup     *CachedLookup[MXResult]
	avatarLookup *CachedLookup[bool]
}

// NewChecker builds a Checker with the default provider clients.
func NewChecker(cfg config.ExternalConfig, cache core.CacheStore, logger *zap.Logger) *Checker {
	sfs := NewStopForumSpamClient(cfg.StopForumSpamURL, logger)
	return NewCheckerWithProviders(cfg, cache, logger, sfs, NewMXValidator(), NewGravatarClient(cfg.GravatarURL))
}

// NewCheckerWithProviders builds a Checker over explicit providers.
func NewCheckerWithProviders(
	cfg config.ExternalConfig,
	cache core.CacheStore,
	logger *zap.Logger,
	reputation ReputationProvider,
	mx MXProvider,
	avatar AvatarProvider,
) *Checker {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Checker{
		cfg:    cfg,
		logger: logger,
		sem:    semaphore.NewWeighted(int64(maxConcurrency)),
		emailLookup: NewCachedLookup(cache, "external/sfs_email_", cfg.CacheTTL, cfg.Timeout, logger,
			reputation.CheckEmail),
		ipLookup: NewCachedLookup(cache, "external/sfs_ip_", cfg.CacheTTL, cfg.Timeout, logger,
			reputation.CheckIP),
		mxLookup: NewCachedLookup(cache, "external/mx_", cfg.CacheTTL, cfg.Timeout, logger,
			mx.Check),
		avatarLookup: NewCachedLookup(cache, "external/gravatar_", cfg.CacheTTL, cfg.Timeout, logger,
			avatar.Check),
	}
}

// RunAll executes every enabled external check for an account and
// returns the combined score delta and reasons. Failed or disabled
// checks contribute nothing.
func (c *Checker) RunAll(ctx context.Context, acct *core.Account, now time.Time) (int, []string) {
	if !c.cfg.Enabled {
		return 0, nil
	}

	// Cap concurrent external work across the whole batch; if the
	// context is already done, skip rather than block.
	if err := c.sem.Acquire(ctx, 1); err != nil {
		c.logger.Debug("Skipping external checks", zap.Error(err))
		return 0, nil
	}
	defer c.sem.Release(1)

	score := 0
	var reasons []string

	if c.cfg.EnableStopForumSpam {
		if res, ok := c.emailLookup.Do(ctx, acct.Email); ok && res.Flagged {
			confidence := math.Min(res.Confidence, 100)
			score += int(confidence / 100 * 50)
			reasons = append(reasons, fmt.Sprintf("StopForumSpam: %d%% confidence (%d reports)",
				int(math.Round(confidence)), res.Frequency))
		}

		ip := acct.RegistrationIP
		if ip != "" && ip != "127.0.0.1" && ip != "::1" {
			if res, ok := c.ipLookup.Do(ctx, ip); ok && res.Flagged {
				score += int(res.Confidence / 100 * 30)
				reasons = append(reasons, fmt.Sprintf("IP flagged in StopForumSpam (%d reports)", res.Frequency))
			}
		}
	}

	if c.cfg.EnableMXCheck {
		if domain := core.EmailDomain(acct.Email); domain != "" {
			if res, ok := c.mxLookup.Do(ctx, domain); ok && !res.HasMX {
				score += 35
				reasons = append(reasons, "Invalid email domain (no MX records)")
			}
		}
	}

	if c.cfg.EnableGravatarCheck {
		if hasAvatar, ok := c.avatarLookup.Do(ctx, acct.Email); ok {
			if hasAvatar {
				// An avatar is a good sign; reduce the score silently.
				score -= 10
			} else if acct.Age(now) > 30*24*time.Hour {
				score += 5
				reasons = append(reasons, "No Gravatar for old account")
			}
		}
	}

	return score, reasons
}

// InvalidateAccount drops the cached external results for an account.
func (c *Checker) InvalidateAccount(ctx context.Context, email, ip string) {
	_ = c.emailLookup.Invalidate(ctx, email)
	if domain := core.EmailDomain(email); domain != "" {
		_ = c.mxLookup.Invalidate(ctx, domain)
	}
	_ = c.avatarLookup.Invalidate(ctx, email)
	if ip != "" {
		_ = c.ipLookup.Invalidate(ctx, ip)
	}
}
