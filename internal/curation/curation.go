package curation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// transitions is the closed set of legal state changes. Everything not
// listed fails with InvalidStateTransitionError; liked and disliked are
// final except that liked may move to ai_generated.
var transitions = map[domain.State][]domain.State{
	domain.StatePending: {domain.StateLiked, domain.StateDisliked},
	domain.StateLiked:   {domain.StateAIGenerated},
}

func allowed(from, to domain.State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Service applies curation decisions to stored content records.
type Service struct {
	topics ports.TopicStore
	clock  func() time.Time
}

// NewService wires the topic store. A nil clock selects UTC wall time.
func NewService(topics ports.TopicStore, clock func() time.Time) *Service {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{topics: topics, clock: clock}
}

// Like accepts a pending record.
func (s *Service) Like(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.StateLiked)
}

// Dislike rejects a pending record.
func (s *Service) Dislike(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.StateDisliked)
}

// MarkGenerated records that AI content was produced for a liked record.
func (s *Service) MarkGenerated(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.StateAIGenerated)
}

// Pending lists records awaiting a decision, for review surfaces.
func (s *Service) Pending(ctx context.Context) ([]domain.ContentRecord, error) {
	return s.topics.ListByState(ctx, domain.StatePending)
}

func (s *Service) transition(ctx context.Context, id string, to domain.State) error {
	record, err := s.topics.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load record %s: %w", id, err)
	}

	if !allowed(record.State, to) {
		return &domain.InvalidStateTransitionError{From: record.State, To: to}
	}

	// decided_at marks the first curation decision; the later advance to
	// ai_generated keeps it.
	decidedAt := s.clock()
	if record.DecidedAt != nil {
		decidedAt = *record.DecidedAt
	}

	// The conditional write loses to a concurrent transition that moved
	// the record out of its observed state; re-read to report the actual
	// transition being rejected.
	err = s.topics.UpdateState(ctx, id, record.State, to, decidedAt)
	if errors.Is(err, domain.ErrStateConflict) {
		if current, getErr := s.topics.Get(ctx, id); getErr == nil && !allowed(current.State, to) {
			return &domain.InvalidStateTransitionError{From: current.State, To: to}
		}
		return fmt.Errorf("update record %s: %w", id, err)
	}
	if err != nil {
		return fmt.Errorf("update record %s: %w", id, err)
	}
	return nil
}
