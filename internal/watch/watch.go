package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/bill"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/config"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/digest"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/filter"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/logger"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/notifier"
)

// BillSource produces the current bill list. *scraper.Scraper satisfies it.
type BillSource interface {
	FetchBills(ctx context.Context) ([]*bill.Bill, error)
	URL() string
}

// StateStore persists watcher state between runs. *storage.Store satisfies it.
type StateStore interface {
	Load() *bill.WatcherState
	Save(*bill.WatcherState) error
}

// Deps are the pipeline's collaborators. Source, Store, Filter, and Notifier
// are required; Announcer is optional and Now defaults to time.Now.
type Deps struct {
	Source    BillSource
	Store     StateStore
	Filter    *filter.Filter
	Notifier  notifier.Notifier
	Announcer notifier.Announcer
	Now       func() time.Time
}

// Report summarizes a completed run. Subject and Body are filled whenever a
// digest was due, even if no notifier was configured to deliver it, so the
// caller can still print the rendered digest.
type Report struct {
	RunID          string
	Fetched        int
	Relevant       int
	Changed        int
	Dispatched     bool
	TimeGated      bool
	StatePersisted bool
	Subject        string
	Body           string
	Elapsed        time.Duration
}

// Run executes one watch cycle. The returned error, when non-nil, means the
// cycle did not reach a final digest outcome; state on disk is untouched in
// that case.
func Run(ctx context.Context, cfg config.Config, deps Deps) (*Report, error) {
	start := time.Now()
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	report := &Report{RunID: uuid.NewString()}
	defer func() {
		report.Elapsed = time.Since(start)
		logger.RecordTiming("watch.run", report.Elapsed)
	}()

	logger.Info("watch run starting", logger.Fields{
		"run_id":   report.RunID,
		"url":      deps.Source.URL(),
		"policy":   string(cfg.DiffPolicy),
		"keywords": deps.Filter.KeywordCount(),
	})

	previous := deps.Store.Load()

	all, err := deps.Source.FetchBills(ctx)
	if err != nil {
		logger.Error("fetch failed", logger.Fields{"run_id": report.RunID}, err)
		return report, err
	}
	report.Fetched = len(all)

	relevant := deps.Filter.Apply(all)
	report.Relevant = len(relevant)

	result := bill.Diff(previous, relevant, cfg.DiffPolicy)
	report.Changed = len(result.Changed)

	logger.SetGauge("bills.fetched", float64(report.Fetched))
	logger.SetGauge("bills.relevant", float64(report.Relevant))
	logger.SetGauge("bills.changed", float64(report.Changed))
	logger.Info("bills diffed", logger.Fields{
		"run_id":   report.RunID,
		"fetched":  report.Fetched,
		"relevant": report.Relevant,
		"changed":  report.Changed,
	})

	due := report.Changed > 0 || cfg.ForceEmail
	if !due {
		// Nothing to report. Persist anyway so quiet baseline drift (bills
		// disappearing, metadata edits the policy ignores) is absorbed.
		if err := deps.Store.Save(result.Next); err != nil {
			logger.Error("state save failed", logger.Fields{"run_id": report.RunID}, err)
			return report, fmt.Errorf("saving state: %w", err)
		}
		report.StatePersisted = true

		logger.Info("watch run complete", logger.Fields{
			"run_id":  report.RunID,
			"outcome": "no changes",
		})
		return report, nil
	}

	if gated(cfg, previous.LastDigest, now()) {
		// The pending diff is not persisted: it must surface again on the
		// next eligible run.
		report.TimeGated = true
		logger.Info("digest due but inside the minimum interval", logger.Fields{
			"run_id":      report.RunID,
			"changed":     report.Changed,
			"last_digest": previous.LastDigest.UTC().Format(time.RFC3339),
		})
		return report, nil
	}

	report.Subject = digest.Subject(report.Changed)
	report.Body = digest.Body(digest.Input{
		PageURL:        deps.Source.URL(),
		Changed:        result.Changed,
		TotalRelevant:  report.Relevant,
		LastDigest:     previous.LastDigest,
		PriorityStates: cfg.PriorityStates,
	})

	if deps.Notifier.Configured() {
		sendStart := time.Now()
		if err := deps.Notifier.Notify(ctx, report.Subject, report.Body); err != nil {
			// State stays untouched so the next run recomputes this diff.
			logger.Error("digest delivery failed", logger.Fields{"run_id": report.RunID}, err)
			return report, err
		}
		logger.RecordTiming("digest.send", time.Since(sendStart))
		logger.IncrCounter("digests.dispatched")

		report.Dispatched = true
		result.Next.LastDigest = now()
	} else {
		logger.Warn("no notifier configured, digest not delivered", logger.Fields{
			"run_id":  report.RunID,
			"changed": report.Changed,
		})
	}

	if report.Dispatched && deps.Announcer != nil && report.Changed > 0 {
		if err := deps.Announcer.Announce(ctx, result.Changed); err != nil {
			// Best-effort channel; the digest already went out.
			logger.Warn("bill announcements failed", logger.Fields{
				"run_id": report.RunID,
				"error":  err.Error(),
			})
		}
	}

	if err := deps.Store.Save(result.Next); err != nil {
		logger.Error("state save failed", logger.Fields{"run_id": report.RunID}, err)
		return report, fmt.Errorf("saving state: %w", err)
	}
	report.StatePersisted = true

	logger.Info("watch run complete", logger.Fields{
		"run_id":     report.RunID,
		"outcome":    "digest due",
		"dispatched": report.Dispatched,
	})
	return report, nil
}

// gated reports whether a due digest falls inside the configured minimum
// interval since the last one. Forced runs and first digests never gate.
func gated(cfg config.Config, lastDigest, now time.Time) bool {
	if cfg.MinInterval <= 0 || cfg.ForceEmail || lastDigest.IsZero() {
		return false
	}
	return now.Sub(lastDigest) < cfg.MinInterval
}
