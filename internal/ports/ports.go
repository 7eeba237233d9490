package ports

import (
	"context"
	"time"

	"ContentCurator/internal/domain"
)

// SourceStore owns configured sources.
type SourceStore interface {
	ListActive(ctx context.Context) ([]domain.Source, error)
	Save(ctx context.Context, source domain.Source) error
	MarkScraped(ctx context.Context, id string, at time.Time, itemCount int) error
}

// TopicStore persists content records and serves the dedup lookup.
// UpdateState is conditional: the write applies only while the record is
// still in the from state, and fails with domain.ErrStateConflict when a
// concurrent transition got there first.
type TopicStore interface {
	Insert(ctx context.Context, record domain.ContentRecord) error
	Get(ctx context.Context, id string) (domain.ContentRecord, error)
	GetByHash(ctx context.Context, hash string) (domain.ContentRecord, error)
	UpdateState(ctx context.Context, id string, from, to domain.State, decidedAt time.Time) error
	ListByState(ctx context.Context, state domain.State) ([]domain.ContentRecord, error)
}

// AIContentStore owns generation results.
type AIContentStore interface {
	Insert(ctx context.Context, content domain.AIContent) error
	Update(ctx context.Context, content domain.AIContent) error
}

// ReportStore keeps finalized run reports for monitoring.
type ReportStore interface {
	Save(ctx context.Context, report domain.RunReport) error
}

// Generator is the external AI text-generation collaborator. Failures
// carry a domain.GenerationError retry class.
type Generator interface {
	Generate(ctx context.Context, prompt, model string, params domain.GenerationParams) (string, error)
}

// Notifier publishes run summaries to an outbound channel.
type Notifier interface {
	PublishRunSummary(ctx context.Context, report domain.RunReport) error
}

// Trigger fires the registered job on a recurring schedule.
type Trigger interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
