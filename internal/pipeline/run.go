package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/scrape"
)

// Resolver canonicalizes a raw source URL into a platform tag and
// fetchable identifier.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (domain.Platform, string, error)
}

// Limiter throttles outbound requests per platform.
type Limiter interface {
	Acquire(ctx context.Context, platform domain.Platform) error
}

// Runner orchestrates one acquisition run: resolve, throttle, fetch,
// filter, dedup, persist, report.
type Runner struct {
	sources  ports.SourceStore
	topics   ports.TopicStore
	reports  ports.ReportStore
	notifier ports.Notifier
	resolver Resolver
	limiter  Limiter
	registry *scrape.Registry
	norm     *Normalizer
	workers  int
	log      *slog.Logger
}

// NewRunner wires the pipeline collaborators. A nil notifier disables
// run summaries; workers below one is clamped to one.
func NewRunner(
	sources ports.SourceStore,
	topics ports.TopicStore,
	reports ports.ReportStore,
	notifier ports.Notifier,
	resolver Resolver,
	limiter Limiter,
	registry *scrape.Registry,
	norm *Normalizer,
	workers int,
	log *slog.Logger,
) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		sources:  sources,
		topics:   topics,
		reports:  reports,
		notifier: notifier,
		resolver: resolver,
		limiter:  limiter,
		registry: registry,
		norm:     norm,
		workers:  workers,
		log:      log,
	}
}

// sourceResult carries one source's contribution to the run totals.
type sourceResult struct {
	fetched   int
	accepted  int
	rejected  int
	duplicate int
}

// Run executes a full acquisition pass over all active sources. A
// failing source is recorded in the report and never aborts the run;
// only listing sources or context cancellation does.
func (r *Runner) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:           uuid.NewString(),
		StartedAt:       time.Now().UTC(),
		PerSourceErrors: map[string]string{},
	}

	sources, err := r.sources.ListActive(ctx)
	if err != nil {
		return report, fmt.Errorf("list active sources: %w", err)
	}
	report.SourcesAttempted = len(sources)

	dedup := NewDeduplicator(r.topics)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, r.workers)
	)

	for _, source := range sources {
		if ctx.Err() != nil {
			mu.Lock()
			report.PerSourceErrors[source.ID] = ctx.Err().Error()
			mu.Unlock()
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(source domain.Source) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := r.runSource(ctx, source, dedup)

			mu.Lock()
			defer mu.Unlock()
			report.ItemsFetched += result.fetched
			report.ItemsAccepted += result.accepted
			report.ItemsRejected += result.rejected
			report.ItemsDuplicate += result.duplicate
			if err != nil {
				report.PerSourceErrors[source.ID] = err.Error()
				r.log.Warn("source failed", "source", source.ID, "url", source.URL, "error", err)
				return
			}
			report.SourcesSucceeded++
		}(source)
	}
	wg.Wait()

	report.FinishedAt = time.Now().UTC()
	r.log.Info("run finished",
		"run_id", report.RunID,
		"sources", report.SourcesAttempted,
		"succeeded", report.SourcesSucceeded,
		"fetched", report.ItemsFetched,
		"accepted", report.ItemsAccepted,
		"rejected", report.ItemsRejected,
		"duplicate", report.ItemsDuplicate,
	)

	if err := r.reports.Save(ctx, report); err != nil {
		return report, fmt.Errorf("save run report: %w", err)
	}

	if r.notifier != nil {
		if err := r.notifier.PublishRunSummary(ctx, report); err != nil {
			r.log.Warn("publish run summary", "run_id", report.RunID, "error", err)
		}
	}
	return report, nil
}

func (r *Runner) runSource(ctx context.Context, source domain.Source, dedup *Deduplicator) (sourceResult, error) {
	var result sourceResult

	source, err := r.canonicalize(ctx, source)
	if err != nil {
		return result, err
	}

	adapter, err := r.registry.Resolve(source.Platform)
	if err != nil {
		return result, err
	}

	if err := r.limiter.Acquire(ctx, source.Platform); err != nil {
		return result, err
	}

	items, err := fetchWithRetry(ctx, func(ctx context.Context) ([]domain.RawItem, error) {
		return adapter.Fetch(ctx, source)
	})
	if err != nil {
		return result, fmt.Errorf("fetch %s: %w", source.URL, err)
	}
	result.fetched = len(items)

	for _, item := range items {
		record, err := r.norm.Record(item)
		if err != nil {
			result.rejected++
			r.log.Debug("item rejected", "source", source.ID, "link", item.Link, "error", err)
			continue
		}

		switch err := dedup.Insert(ctx, record); {
		case err == nil:
			result.accepted++
		case errors.Is(err, domain.ErrDuplicateContent):
			result.duplicate++
		default:
			return result, err
		}
	}

	if err := r.sources.MarkScraped(ctx, source.ID, time.Now().UTC(), result.accepted); err != nil {
		return result, fmt.Errorf("mark scraped: %w", err)
	}
	return result, nil
}

// canonicalize resolves the platform and canonical feed id once per
// source and writes the result back, so later runs skip resolution.
func (r *Runner) canonicalize(ctx context.Context, source domain.Source) (domain.Source, error) {
	if source.CanonicalFeedID != "" {
		return source, nil
	}

	platform, canonical, err := r.resolver.Resolve(ctx, source.URL)
	if err != nil {
		return source, fmt.Errorf("resolve %s: %w", source.URL, err)
	}

	source.Platform = platform
	source.CanonicalFeedID = canonical
	if err := r.sources.Save(ctx, source); err != nil {
		return source, fmt.Errorf("save resolved source: %w", err)
	}
	return source, nil
}
