package engine

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey/spam-detective/internal/core"
)

// BatchReport summarises a batch analysis run. Failed accounts are
// counted and logged but never abort the rest of the batch.
type BatchReport struct {
	Analyzed   int                    `json:"analyzed"`
	Suspicious int                    `json:"suspicious"`
	Failed     int                    `json:"failed"`
	Results    []*core.AnalysisResult `json:"results"`
}

// ReanalyzeReport summarises a re-analysis of previously-flagged
// accounts. RemovedCount counts accounts that no longer score as
// suspicious, including accounts deleted since the original scan.
type ReanalyzeReport struct {
	StillFlagged []*core.AnalysisResult `json:"still_flagged"`
	RemovedCount int                    `json:"removed_count"`
	Failed       int                    `json:"failed"`
}

// AnalyzeBatch scores up to limit accounts (newest first, unbounded
// when limit <= 0) across a worker pool. Results are returned sorted
// by score, highest first.
func (e *Engine) AnalyzeBatch(ctx context.Context, limit int) (*BatchReport, error) {
	if e.repo == nil {
		return nil, errors.New("batch analysis requires an account repository")
	}

	accounts, err := e.repo.ListAccounts(ctx, limit)
	if err != nil {
		return nil, err
	}

	workers := e.batch.Workers
	if workers <= 0 {
		workers = 1
	}

	report := &BatchReport{}
	var mu sync.Mutex

	group := &errgroup.Group{}
	group.SetLimit(workers)
	for _, acct := range accounts {
		acct := acct
		group.Go(func() error {
			result, err := e.Analyze(ctx, acct)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				e.logger.Error("Account analysis failed",
					zap.Int64("account_id", acct.ID),
					zap.Error(err))
				return nil
			}
			report.Analyzed++
			if result.IsSuspicious {
				report.Suspicious++
				report.Results = append(report.Results, result)
			}
			return nil
		})
	}
	_ = group.Wait()

	sort.SliceStable(report.Results, func(i, j int) bool {
		return report.Results[i].Score > report.Results[j].Score
	})

	batchesTotal.Inc()
	e.logger.Info("Batch analysis complete",
		zap.Int("analyzed", report.Analyzed),
		zap.Int("suspicious", report.Suspicious),
		zap.Int("failed", report.Failed))
	return report, nil
}

// QuickScan analyzes only the most recent registrations, bounded by
// the configured quick-scan limit.
func (e *Engine) QuickScan(ctx context.Context) (*BatchReport, error) {
	limit := e.batch.QuickScanLimit
	if limit <= 0 {
		limit = 100
	}
	return e.AnalyzeBatch(ctx, limit)
}

// WarmUp pre-populates the analysis cache for the given accounts so a
// later batch or interactive lookup hits warm entries.
func (e *Engine) WarmUp(ctx context.Context, ids []int64) (warmed, failed int) {
	if e.repo == nil {
		return 0, len(ids)
	}
	for _, id := range ids {
		acct, err := e.repo.GetAccount(ctx, id)
		if err != nil {
			failed++
			continue
		}
		if _, err := e.Analyze(ctx, acct); err != nil {
			failed++
			continue
		}
		warmed++
	}
	e.logger.Info("Cache warm-up complete", zap.Int("warmed", warmed), zap.Int("failed", failed))
	return warmed, failed
}

// Reanalyze re-scores previously-flagged accounts with the cache
// bypassed, so rule or list changes since the original scan take
// effect. Accounts that no longer exist count as removed.
func (e *Engine) Reanalyze(ctx context.Context, ids []int64) (*ReanalyzeReport, error) {
	if e.repo == nil {
		return nil, errors.New("re-analysis requires an account repository")
	}

	report := &ReanalyzeReport{}
	for _, id := range ids {
		acct, err := e.repo.GetAccount(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			report.RemovedCount++
			continue
		}
		if err != nil {
			report.Failed++
			e.logger.Error("Failed to load account for re-analysis", zap.Int64("account_id", id), zap.Error(err))
			continue
		}

		result, err := e.AnalyzeFresh(ctx, acct)
		if err != nil {
			report.Failed++
			e.logger.Error("Re-analysis failed", zap.Int64("account_id", id), zap.Error(err))
			continue
		}

		if result.IsSuspicious {
			report.StillFlagged = append(report.StillFlagged, result)
		} else {
			report.RemovedCount++
		}
	}

	e.logger.Info("Re-analysis complete",
		zap.Int("requested", len(ids)),
		zap.Int("still_flagged", len(report.StillFlagged)),
		zap.Int("removed", report.RemovedCount),
		zap.Int("failed", report.Failed))
	return report, nil
}
