package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// builder targets Postgres placeholder syntax for all stores.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SourceStore persists configured sources in Postgres.
type SourceStore struct {
	db *sql.DB
}

var _ ports.SourceStore = (*SourceStore)(nil)

// NewSourceStore wires a sql.DB implementation.
func NewSourceStore(db *sql.DB) *SourceStore {
	return &SourceStore{db: db}
}

// ListActive returns all sources enabled for scraping.
func (s *SourceStore) ListActive(ctx context.Context) ([]domain.Source, error) {
	query, args, err := builder.
		Select("id", "name", "url", "platform", "canonical_feed_id", "active", "created_at", "last_scraped_at").
		From("sources").
		Where(sq.Eq{"active": true}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var (
			src       domain.Source
			canonical sql.NullString
			scrapedAt sql.NullTime
		)
		if err := rows.Scan(&src.ID, &src.Name, &src.URL, &src.Platform, &canonical, &src.Active, &src.CreatedAt, &scrapedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		src.CanonicalFeedID = canonical.String
		if scrapedAt.Valid {
			at := scrapedAt.Time
			src.LastScrapedAt = &at
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return sources, nil
}

// Save upserts the source, keyed by id. The resolver uses it to write
// back canonical platform and feed id.
func (s *SourceStore) Save(ctx context.Context, source domain.Source) error {
	query, args, err := builder.
		Insert("sources").
		Columns("id", "name", "url", "platform", "canonical_feed_id", "active", "created_at").
		Values(source.ID, source.Name, source.URL, source.Platform, source.CanonicalFeedID, source.Active, source.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE
			SET platform = EXCLUDED.platform,
			    canonical_feed_id = EXCLUDED.canonical_feed_id,
			    active = EXCLUDED.active`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert source: %w", err)
	}
	return nil
}

// MarkScraped records when the source was last fetched and how many
// items it contributed.
func (s *SourceStore) MarkScraped(ctx context.Context, id string, at time.Time, itemCount int) error {
	query, args, err := builder.
		Update("sources").
		Set("last_scraped_at", at).
		Set("last_item_count", itemCount).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark scraped: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// TopicStore persists content records in Postgres.
type TopicStore struct {
	db *sql.DB
}

var _ ports.TopicStore = (*TopicStore)(nil)

// NewTopicStore wires a sql.DB implementation.
func NewTopicStore(db *sql.DB) *TopicStore {
	return &TopicStore{db: db}
}

const topicColumns = "id, source_id, title, body, link, content_hash, quality_score, state, created_at, decided_at"

// Insert stores a freshly normalized record.
func (s *TopicStore) Insert(ctx context.Context, record domain.ContentRecord) error {
	query, args, err := builder.
		Insert("topics").
		Columns("id", "source_id", "title", "body", "link", "content_hash", "quality_score", "state", "created_at").
		Values(record.ID, record.SourceID, record.Title, record.Body, record.Link,
			record.ContentHash, record.QualityScore, record.State, record.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert topic: %w", err)
	}
	return nil
}

// Get loads one record by id.
func (s *TopicStore) Get(ctx context.Context, id string) (domain.ContentRecord, error) {
	return s.getBy(ctx, sq.Eq{"id": id})
}

// GetByHash loads one record by content hash, for dedup checks.
func (s *TopicStore) GetByHash(ctx context.Context, hash string) (domain.ContentRecord, error) {
	return s.getBy(ctx, sq.Eq{"content_hash": hash})
}

func (s *TopicStore) getBy(ctx context.Context, where sq.Eq) (domain.ContentRecord, error) {
	query, args, err := builder.
		Select(topicColumns).
		From("topics").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("build query: %w", err)
	}

	record, err := scanTopic(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContentRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.ContentRecord{}, fmt.Errorf("query topic: %w", err)
	}
	return record, nil
}

// UpdateState applies a curation decision. The write is conditional on
// the record still holding the from state, so concurrent opposing
// decisions cannot both land; the loser gets ErrStateConflict.
func (s *TopicStore) UpdateState(ctx context.Context, id string, from, to domain.State, decidedAt time.Time) error {
	query, args, err := builder.
		Update("topics").
		Set("state", to).
		Set("decided_at", decidedAt).
		Where(sq.Eq{"id": id, "state": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := s.Get(ctx, id); errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("topic %s: %w", id, domain.ErrNotFound)
	}
	return fmt.Errorf("topic %s left %s: %w", id, from, domain.ErrStateConflict)
}

// ListByState returns records in one curation state, newest first.
func (s *TopicStore) ListByState(ctx context.Context, state domain.State) ([]domain.ContentRecord, error) {
	query, args, err := builder.
		Select(topicColumns).
		From("topics").
		Where(sq.Eq{"state": state}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var records []domain.ContentRecord
	for rows.Next() {
		record, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (domain.ContentRecord, error) {
	var (
		record    domain.ContentRecord
		decidedAt sql.NullTime
	)
	err := row.Scan(&record.ID, &record.SourceID, &record.Title, &record.Body, &record.Link,
		&record.ContentHash, &record.QualityScore, &record.State, &record.CreatedAt, &decidedAt)
	if err != nil {
		return domain.ContentRecord{}, err
	}
	if decidedAt.Valid {
		at := decidedAt.Time
		record.DecidedAt = &at
	}
	return record, nil
}

// AIContentStore persists generation attempts in Postgres.
type AIContentStore struct {
	db *sql.DB
}

var _ ports.AIContentStore = (*AIContentStore)(nil)

// NewAIContentStore wires a sql.DB implementation.
func NewAIContentStore(db *sql.DB) *AIContentStore {
	return &AIContentStore{db: db}
}

// Insert stores a new generation attempt series in pending state.
func (s *AIContentStore) Insert(ctx context.Context, content domain.AIContent) error {
	query, args, err := builder.
		Insert("ai_contents").
		Columns("id", "topic_id", "model", "temperature", "max_tokens", "prompt", "status", "created_at").
		Values(content.ID, content.TopicID, content.Model,
			content.PromptParams.Temperature, content.PromptParams.MaxTokens,
			content.Prompt, content.Status, content.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert ai content: %w", err)
	}
	return nil
}

// Update finalizes the attempt series with its outcome.
func (s *AIContentStore) Update(ctx context.Context, content domain.AIContent) error {
	query, args, err := builder.
		Update("ai_contents").
		Set("generated_text", content.GeneratedText).
		Set("status", content.Status).
		Set("attempt_count", content.AttemptCount).
		Set("completed_at", content.CompletedAt).
		Set("generation_sec", content.GenerationSec).
		Where(sq.Eq{"id": content.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update ai content: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("ai content %s: %w", content.ID, domain.ErrNotFound)
	}
	return nil
}

// ReportStore persists finalized run reports in Postgres.
type ReportStore struct {
	db *sql.DB
}

var _ ports.ReportStore = (*ReportStore)(nil)

// NewReportStore wires a sql.DB implementation.
func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// Save stores one immutable run report. Per-source errors go in as JSON.
func (s *ReportStore) Save(ctx context.Context, report domain.RunReport) error {
	perSource, err := json.Marshal(report.PerSourceErrors)
	if err != nil {
		return fmt.Errorf("marshal source errors: %w", err)
	}

	query, args, err := builder.
		Insert("run_reports").
		Columns("run_id", "started_at", "finished_at",
			"sources_attempted", "sources_succeeded",
			"items_fetched", "items_accepted", "items_rejected", "items_duplicate",
			"per_source_errors").
		Values(report.RunID, report.StartedAt, report.FinishedAt,
			report.SourcesAttempted, report.SourcesSucceeded,
			report.ItemsFetched, report.ItemsAccepted, report.ItemsRejected, report.ItemsDuplicate,
			perSource).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run report: %w", err)
	}
	return nil
}
