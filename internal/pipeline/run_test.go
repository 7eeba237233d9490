package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/scrape"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testNormalizer() *Normalizer {
	return NewNormalizer(config.QualityConfig{
		MinTitleLength: 10, MaxTitleLength: 300,
		MinContentLength: 50, MaxContentLength: 5000,
	})
}

func longBody(seed string) string {
	return strings.Repeat(seed+" has plenty of words to clear the minimum. ", 3)
}

func TestRunResolvesFiltersAndReports(t *testing.T) {
	t.Parallel()

	source := domain.Source{ID: "src-1", Name: "Blog", URL: "https://example.com/blog", Active: true}
	sources := newFakeSourceStore(source)
	topics := newFakeTopicStore()
	reports := &fakeReportStore{}

	adapter := &fakeAdapter{
		platform: domain.PlatformRSS,
		items: []domain.RawItem{
			{SourceID: "src-1", Title: "First article headline", Body: longBody("first"), Link: "https://example.com/1"},
			{SourceID: "src-1", Title: "Second article headline", Body: longBody("second"), Link: "https://example.com/2"},
			{SourceID: "src-1", Title: "tiny", Body: longBody("third"), Link: "https://example.com/3"},
		},
	}
	registry := scrape.NewRegistry()
	registry.Register(adapter)

	runner := NewRunner(
		sources, topics, reports, nil,
		&fakeResolver{platform: domain.PlatformRSS, canonical: "https://example.com/blog/feed"},
		openLimiter{}, registry, testNormalizer(), 2, discardLogger(),
	)

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.SourcesAttempted != 1 || report.SourcesSucceeded != 1 {
		t.Fatalf("sources attempted/succeeded = %d/%d", report.SourcesAttempted, report.SourcesSucceeded)
	}
	if report.ItemsFetched != 3 || report.ItemsAccepted != 2 || report.ItemsRejected != 1 || report.ItemsDuplicate != 0 {
		t.Fatalf("item counts = fetched %d accepted %d rejected %d duplicate %d",
			report.ItemsFetched, report.ItemsAccepted, report.ItemsRejected, report.ItemsDuplicate)
	}
	if report.RunID == "" {
		t.Fatalf("report missing run id")
	}

	if topics.count() != 2 {
		t.Fatalf("stored topics = %d, want 2", topics.count())
	}
	if len(reports.saved) != 1 {
		t.Fatalf("saved reports = %d, want 1", len(reports.saved))
	}

	// Resolution must be written back so later runs skip it.
	if len(sources.saved) != 1 {
		t.Fatalf("saved sources = %d, want 1", len(sources.saved))
	}
	saved := sources.saved[0]
	if saved.Platform != domain.PlatformRSS || saved.CanonicalFeedID != "https://example.com/blog/feed" {
		t.Fatalf("saved source = %+v", saved)
	}
	if got := sources.scraped["src-1"]; got != 2 {
		t.Fatalf("scraped item count = %d, want 2", got)
	}
}

func TestRunContainsPerSourceFailures(t *testing.T) {
	t.Parallel()

	good := domain.Source{ID: "src-ok", URL: "https://ok.example.com/feed.xml",
		Platform: domain.PlatformRSS, CanonicalFeedID: "https://ok.example.com/feed.xml", Active: true}
	bad := domain.Source{ID: "src-bad", URL: "https://bad.example.com/feed.xml",
		Platform: domain.PlatformWebsite, CanonicalFeedID: "https://bad.example.com/", Active: true}

	sources := newFakeSourceStore(good, bad)
	topics := newFakeTopicStore()
	reports := &fakeReportStore{}

	registry := scrape.NewRegistry()
	registry.Register(&fakeAdapter{
		platform: domain.PlatformRSS,
		items: []domain.RawItem{
			{SourceID: "src-ok", Title: "A healthy feed entry", Body: longBody("healthy"), Link: "https://ok.example.com/1"},
		},
	})
	registry.Register(&fakeAdapter{
		platform: domain.PlatformWebsite,
		errs:     []error{domain.PermanentFetch(fmt.Errorf("404 not found"))},
	})

	runner := NewRunner(
		sources, topics, reports, nil,
		&fakeResolver{}, openLimiter{}, registry, testNormalizer(), 2, discardLogger(),
	)

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.SourcesAttempted != 2 || report.SourcesSucceeded != 1 {
		t.Fatalf("sources attempted/succeeded = %d/%d", report.SourcesAttempted, report.SourcesSucceeded)
	}
	if _, ok := report.PerSourceErrors["src-bad"]; !ok {
		t.Fatalf("missing per-source error for src-bad: %v", report.PerSourceErrors)
	}
	if _, ok := report.PerSourceErrors["src-ok"]; ok {
		t.Fatalf("unexpected error recorded for src-ok")
	}
	if report.ItemsAccepted != 1 {
		t.Fatalf("accepted = %d, want 1", report.ItemsAccepted)
	}
	if rate := report.SuccessRate(); rate != 50 {
		t.Fatalf("success rate = %f, want 50", rate)
	}
}

func TestRunDeduplicatesAcrossSources(t *testing.T) {
	t.Parallel()

	one := domain.Source{ID: "src-1", URL: "https://a.example.com/feed.xml",
		Platform: domain.PlatformRSS, CanonicalFeedID: "https://a.example.com/feed.xml", Active: true}
	two := domain.Source{ID: "src-2", URL: "https://b.example.com/feed.xml",
		Platform: domain.PlatformRSS, CanonicalFeedID: "https://b.example.com/feed.xml", Active: true}

	shared := domain.RawItem{Title: "Syndicated story headline", Body: longBody("syndicated"), Link: "https://a.example.com/1"}

	sources := newFakeSourceStore(one, two)
	topics := newFakeTopicStore()
	registry := scrape.NewRegistry()
	registry.Register(&fakeAdapter{platform: domain.PlatformRSS, items: []domain.RawItem{shared}})

	runner := NewRunner(
		sources, topics, &fakeReportStore{}, nil,
		&fakeResolver{}, openLimiter{}, registry, testNormalizer(), 2, discardLogger(),
	)

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.ItemsAccepted != 1 || report.ItemsDuplicate != 1 {
		t.Fatalf("accepted/duplicate = %d/%d, want 1/1", report.ItemsAccepted, report.ItemsDuplicate)
	}
	if topics.count() != 1 {
		t.Fatalf("stored topics = %d, want 1", topics.count())
	}
}

func TestRunReportTimingMetrics(t *testing.T) {
	t.Parallel()

	report := domain.RunReport{
		StartedAt:        time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC),
		FinishedAt:       time.Date(2025, 6, 1, 7, 0, 10, 0, time.UTC),
		SourcesAttempted: 5,
		SourcesSucceeded: 4,
	}
	if got := report.AvgTimePerSource(); got != 2*time.Second {
		t.Fatalf("AvgTimePerSource() = %s, want 2s", got)
	}
	if got := report.SuccessRate(); got != 80 {
		t.Fatalf("SuccessRate() = %f, want 80", got)
	}
}
