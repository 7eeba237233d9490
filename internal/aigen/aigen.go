package aigen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ContentCurator/internal/config"
	"ContentCurator/internal/curation"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// promptBodyLimit caps how much of the topic body is embedded in the
// prompt; generation quality does not improve past this and token costs do.
const promptBodyLimit = 1000

// Service turns liked topics into AI-generated scripts. It runs
// independently of the acquisition pipeline and its single-flight lock.
type Service struct {
	topics   ports.TopicStore
	contents ports.AIContentStore
	gen      ports.Generator
	curation *curation.Service
	cfg      config.AIConfig
	sleep    func(context.Context, time.Duration) error
	log      *slog.Logger
}

// NewService wires the generation collaborators. A nil sleep selects a
// context-aware time.After wait.
func NewService(
	topics ports.TopicStore,
	contents ports.AIContentStore,
	gen ports.Generator,
	cur *curation.Service,
	cfg config.AIConfig,
	sleep func(context.Context, time.Duration) error,
	log *slog.Logger,
) *Service {
	if sleep == nil {
		sleep = func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		}
	}
	return &Service{
		topics:   topics,
		contents: contents,
		gen:      gen,
		curation: cur,
		cfg:      cfg,
		sleep:    sleep,
		log:      log,
	}
}

// Generate produces AI content for a liked topic. Transient collaborator
// failures are retried with exponential backoff up to the configured
// attempt cap; exhaustion persists a failed AIContent and leaves the
// topic liked so it can be retried later. Success persists the text and
// moves the topic to ai_generated.
func (s *Service) Generate(ctx context.Context, topicID string) (domain.AIContent, error) {
	topic, err := s.topics.Get(ctx, topicID)
	if err != nil {
		return domain.AIContent{}, fmt.Errorf("load topic %s: %w", topicID, err)
	}
	if topic.State != domain.StateLiked {
		return domain.AIContent{}, &domain.InvalidStateTransitionError{
			From: topic.State,
			To:   domain.StateAIGenerated,
		}
	}

	content := domain.AIContent{
		ID:      uuid.NewString(),
		TopicID: topic.ID,
		Model:   s.cfg.Model,
		PromptParams: domain.GenerationParams{
			Temperature: s.cfg.Temperature,
			MaxTokens:   s.cfg.MaxTokens,
		},
		Prompt:    buildPrompt(s.cfg.Prompt, topic),
		Status:    domain.AIStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.contents.Insert(ctx, content); err != nil {
		return domain.AIContent{}, fmt.Errorf("insert ai content: %w", err)
	}

	started := time.Now()
	text, attempts, genErr := s.attempt(ctx, content)
	content.AttemptCount = attempts
	content.GenerationSec = time.Since(started).Seconds()
	now := time.Now().UTC()
	content.CompletedAt = &now

	if genErr != nil {
		content.Status = domain.AIStatusFailed
		if err := s.contents.Update(ctx, content); err != nil {
			s.log.Error("persist failed generation", "topic", topic.ID, "error", err)
		}
		return content, fmt.Errorf("generate for topic %s: %w", topic.ID, genErr)
	}

	content.GeneratedText = text
	content.Status = domain.AIStatusSuccess
	if err := s.contents.Update(ctx, content); err != nil {
		return content, fmt.Errorf("persist generation: %w", err)
	}

	if err := s.curation.MarkGenerated(ctx, topic.ID); err != nil {
		return content, fmt.Errorf("mark topic generated: %w", err)
	}

	s.log.Info("generation finished",
		"topic", topic.ID,
		"model", content.Model,
		"attempts", attempts,
		"seconds", content.GenerationSec,
	)
	return content, nil
}

func (s *Service) attempt(ctx context.Context, content domain.AIContent) (string, int, error) {
	maxAttempts := s.cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := s.gen.Generate(ctx, content.Prompt, content.Model, content.PromptParams)
		if err == nil {
			return text, attempt, nil
		}
		lastErr = err
		s.log.Warn("generation attempt failed", "topic", content.TopicID, "attempt", attempt, "error", err)

		if !domain.IsTransientGeneration(err) || attempt == maxAttempts {
			return "", attempt, lastErr
		}
		if err := s.sleep(ctx, backoffDelay(attempt, s.cfg.BackoffBaseDuration())); err != nil {
			return "", attempt, err
		}
	}
	return "", maxAttempts, lastErr
}

func backoffDelay(attempt int, base time.Duration) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// buildPrompt substitutes the topic into the configured template. The
// body is trimmed to keep prompts bounded regardless of source verbosity.
func buildPrompt(template string, topic domain.ContentRecord) string {
	body := topic.Body
	if runes := []rune(body); len(runes) > promptBodyLimit {
		body = string(runes[:promptBodyLimit])
	}
	prompt := strings.ReplaceAll(template, "{title}", topic.Title)
	return strings.ReplaceAll(prompt, "{content}", body)
}
