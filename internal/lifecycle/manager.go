// Package lifecycle enforces the safety rules around deleting flagged
// accounts. Scoring is decision support, not a verdict, so deletion is
// guarded: protected roles are never deletable and accounts with
// activity require an explicit force.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
)

// ResultInvalidator drops cached analysis state for an account.
type ResultInvalidator interface {
	Invalidate(ctx context.Context, acct *core.Account) error
}

// DeleteOutcome records what happened to one account in a deletion
// request.
type DeleteOutcome struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username,omitempty"`
	Deleted   bool   `json:"deleted"`
	Reason    string `json:"reason,omitempty"`
}

// DeleteReport summarises a bulk deletion request.
type DeleteReport struct {
	Deleted  int             `json:"deleted"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Outcomes []DeleteOutcome `json:"outcomes"`
}

// Manager applies the deletion rules.
type Manager struct {
	repo        core.AccountRepository
	invalidator ResultInvalidator
	cfg         config.LifecycleConfig
	protected   map[string]bool
	logger      *zap.Logger
}

// NewManager creates a lifecycle manager.
func NewManager(repo core.AccountRepository, invalidator ResultInvalidator, cfg config.LifecycleConfig, logger *zap.Logger) *Manager {
	protected := make(map[string]bool, len(cfg.ProtectedRoles))
	for _, role := range cfg.ProtectedRoles {
		protected[strings.ToLower(role)] = true
	}
	return &Manager{
		repo:        repo,
		invalidator: invalidator,
		cfg:         cfg,
		protected:   protected,
		logger:      logger,
	}
}

// CanDelete reports whether an account may be deleted, and if not, a
// human-readable reason. The protected-role rule cannot be forced;
// the activity rule can.
func (m *Manager) CanDelete(acct *core.Account, force bool) (bool, string) {
	for _, role := range acct.Roles {
		if m.protected[strings.ToLower(role)] {
			return false, fmt.Sprintf("protected role %q", role)
		}
	}
	if m.cfg.ProtectActiveAccounts && !force && (acct.PostCount > 0 || acct.CommentCount > 0) {
		return false, fmt.Sprintf("account has activity (%d posts, %d comments)", acct.PostCount, acct.CommentCount)
	}
	return true, ""
}

// DeleteAccounts deletes the given accounts, applying the safety rules
// per account. Blocked and missing accounts are reported, not fatal.
// Each successful deletion also drops the account's cached analysis.
func (m *Manager) DeleteAccounts(ctx context.Context, ids []int64, force bool) (*DeleteReport, error) {
	report := &DeleteReport{}

	for _, id := range ids {
		acct, err := m.repo.GetAccount(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			report.Skipped++
			report.Outcomes = append(report.Outcomes, DeleteOutcome{
				AccountID: id,
				Reason:    "account not found",
			})
			continue
		}
		if err != nil {
			report.Failed++
			report.Outcomes = append(report.Outcomes, DeleteOutcome{
				AccountID: id,
				Reason:    fmt.Sprintf("load failed: %v", err),
			})
			m.logger.Error("Failed to load account for deletion", zap.Int64("account_id", id), zap.Error(err))
			continue
		}

		if ok, blocked := m.CanDelete(acct, force); !ok {
			report.Skipped++
			report.Outcomes = append(report.Outcomes, DeleteOutcome{
				AccountID: id,
				Username:  acct.Username,
				Reason:    blocked,
			})
			m.logger.Warn("Deletion blocked",
				zap.Int64("account_id", id),
				zap.String("username", acct.Username),
				zap.String("reason", blocked))
			continue
		}

		if err := m.repo.DeleteAccount(ctx, id); err != nil {
			report.Failed++
			report.Outcomes = append(report.Outcomes, DeleteOutcome{
				AccountID: id,
				Username:  acct.Username,
				Reason:    fmt.Sprintf("delete failed: %v", err),
			})
			m.logger.Error("Account deletion failed", zap.Int64("account_id", id), zap.Error(err))
			continue
		}

		if m.invalidator != nil {
			if err := m.invalidator.Invalidate(ctx, acct); err != nil {
				m.logger.Warn("Failed to drop cached analysis for deleted account",
					zap.Int64("account_id", id), zap.Error(err))
			}
		}

		report.Deleted++
		report.Outcomes = append(report.Outcomes, DeleteOutcome{
			AccountID: id,
			Username:  acct.Username,
			Deleted:   true,
		})
		m.logger.Info("Account deleted",
			zap.Int64("account_id", id),
			zap.String("username", acct.Username),
			zap.Bool("forced", force))
	}

	return report, nil
}
