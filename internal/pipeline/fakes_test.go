package pipeline

import (
	"context"
	"sync"
	"time"

	"ContentCurator/internal/domain"
)

type fakeTopicStore struct {
	mu      sync.Mutex
	records map[string]domain.ContentRecord
	byHash  map[string]string
}

func newFakeTopicStore() *fakeTopicStore {
	return &fakeTopicStore{
		records: map[string]domain.ContentRecord{},
		byHash:  map[string]string{},
	}
}

func (s *fakeTopicStore) Insert(_ context.Context, record domain.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	s.byHash[record.ContentHash] = record.ID
	return nil
}

func (s *fakeTopicStore) Get(_ context.Context, id string) (domain.ContentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return domain.ContentRecord{}, domain.ErrNotFound
	}
	return record, nil
}

func (s *fakeTopicStore) GetByHash(_ context.Context, hash string) (domain.ContentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byHash[hash]
	if !ok {
		return domain.ContentRecord{}, domain.ErrNotFound
	}
	return s.records[id], nil
}

func (s *fakeTopicStore) UpdateState(_ context.Context, id string, from, to domain.State, decidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if record.State != from {
		return domain.ErrStateConflict
	}
	record.State = to
	record.DecidedAt = &decidedAt
	s.records[id] = record
	return nil
}

func (s *fakeTopicStore) ListByState(_ context.Context, state domain.State) ([]domain.ContentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ContentRecord
	for _, record := range s.records {
		if record.State == state {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *fakeTopicStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type fakeSourceStore struct {
	mu      sync.Mutex
	sources []domain.Source
	saved   []domain.Source
	scraped map[string]int
}

func newFakeSourceStore(sources ...domain.Source) *fakeSourceStore {
	return &fakeSourceStore{sources: sources, scraped: map[string]int{}}
}

func (s *fakeSourceStore) ListActive(context.Context) ([]domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Source(nil), s.sources...), nil
}

func (s *fakeSourceStore) Save(_ context.Context, source domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, source)
	return nil
}

func (s *fakeSourceStore) MarkScraped(_ context.Context, id string, _ time.Time, itemCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scraped[id] = itemCount
	return nil
}

type fakeReportStore struct {
	mu    sync.Mutex
	saved []domain.RunReport
}

func (s *fakeReportStore) Save(_ context.Context, report domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, report)
	return nil
}

type fakeResolver struct {
	platform  domain.Platform
	canonical string
	err       error
}

func (r *fakeResolver) Resolve(context.Context, string) (domain.Platform, string, error) {
	if r.err != nil {
		return "", "", r.err
	}
	return r.platform, r.canonical, nil
}

type openLimiter struct{}

func (openLimiter) Acquire(context.Context, domain.Platform) error { return nil }

type fakeAdapter struct {
	platform domain.Platform
	items    []domain.RawItem
	errs     []error
	mu       sync.Mutex
	calls    int
}

func (a *fakeAdapter) Platform() domain.Platform { return a.platform }

func (a *fakeAdapter) Fetch(context.Context, domain.Source) ([]domain.RawItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	call := a.calls
	a.calls++
	if call < len(a.errs) && a.errs[call] != nil {
		return nil, a.errs[call]
	}
	return a.items, nil
}
