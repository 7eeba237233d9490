package domain

import "time"

// Platform tags the origin type of a source; the adapter set is closed
// over these values.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformRSS       Platform = "rss"
	PlatformWebsite   Platform = "website"
)

// Source is a configured origin (channel, feed, profile, or site) to be
// periodically scraped.
type Source struct {
	ID              string
	Name            string
	URL             string
	Platform        Platform
	CanonicalFeedID string
	Active          bool
	CreatedAt       time.Time
	LastScrapedAt   *time.Time
}

// RawItem is adapter output. It lives only inside a pipeline run and is
// never persisted directly.
type RawItem struct {
	SourceID    string
	ExternalID  string
	Title       string
	Body        string
	Link        string
	PublishedAt time.Time
}

// State enumerates a content record's curation lifecycle.
type State string

const (
	StatePending     State = "pending"
	StateLiked       State = "liked"
	StateDisliked    State = "disliked"
	StateAIGenerated State = "ai_generated"
)

// ContentRecord is a normalized, deduplicated unit of scraped content
// awaiting or past curation. Only State and DecidedAt change after
// creation; title, body, and hash are fixed.
type ContentRecord struct {
	ID           string
	SourceID     string
	Title        string
	Body         string
	Link         string
	ContentHash  string
	QualityScore float64
	State        State
	CreatedAt    time.Time
	DecidedAt    *time.Time
}

// RunReport aggregates one pipeline run. Immutable after finalization.
type RunReport struct {
	RunID            string
	StartedAt        time.Time
	FinishedAt       time.Time
	SourcesAttempted int
	SourcesSucceeded int
	ItemsFetched     int
	ItemsAccepted    int
	ItemsRejected    int
	ItemsDuplicate   int
	PerSourceErrors  map[string]string
}

// SuccessRate returns the fraction of attempted sources that succeeded,
// in percent.
func (r RunReport) SuccessRate() float64 {
	if r.SourcesAttempted == 0 {
		return 0
	}
	return float64(r.SourcesSucceeded) / float64(r.SourcesAttempted) * 100
}

// AvgTimePerSource derives the mean wall time spent per attempted source.
func (r RunReport) AvgTimePerSource() time.Duration {
	if r.SourcesAttempted == 0 {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt) / time.Duration(r.SourcesAttempted)
}

// AIStatus enumerates generation attempt outcomes.
type AIStatus string

const (
	AIStatusPending AIStatus = "pending"
	AIStatusSuccess AIStatus = "success"
	AIStatusFailed  AIStatus = "failed"
)

// GenerationParams are the knobs forwarded to the generation service.
type GenerationParams struct {
	Temperature float64
	MaxTokens   int
}

// AIContent is one generation attempt series for a liked topic.
// Re-generation creates a new AIContent rather than overwriting.
type AIContent struct {
	ID            string
	TopicID       string
	Model         string
	PromptParams  GenerationParams
	Prompt        string
	GeneratedText string
	Status        AIStatus
	AttemptCount  int
	CreatedAt     time.Time
	CompletedAt   *time.Time
	GenerationSec float64
}
