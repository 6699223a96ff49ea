package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/markdave123-py/reviewdesk/internal/core"
	"github.com/markdave123-py/reviewdesk/internal/core/generator"
	"github.com/markdave123-py/reviewdesk/internal/core/prompts"
	"github.com/markdave123-py/reviewdesk/internal/models"
)

// memoryStore is an in-memory core.ReviewStore.
type memoryStore struct {
	mu         sync.Mutex
	reviews    map[string]models.Review
	failCreate error
	failList   error
	failUpdate map[string]error
	statsCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reviews: map[string]models.Review{}, failUpdate: map[string]error{}}
}

func (m *memoryStore) CreateReview(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	m.reviews[r.ID] = *r
	return nil
}

func (m *memoryStore) ListReviews(_ context.Context, f models.ReviewFilter) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var out []models.Review
	for _, r := range m.reviews {
		if f.Rating != 0 && r.Rating != f.Rating {
			continue
		}
		if !f.Since.IsZero() && r.CreatedAt.Before(f.Since) {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(r.ReviewText), q) && !strings.Contains(strings.ToLower(r.AISummary), q) {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) CountReviews(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reviews), nil
}

func (m *memoryStore) DeleteReview(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[id]; !ok {
		return fmt.Errorf("review %s: %w", id, core.ErrNotFound)
	}
	delete(m.reviews, id)
	return nil
}

func (m *memoryStore) UpdateReviewInsights(_ context.Context, id, summary string, actions []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failUpdate[id]; err != nil {
		return err
	}
	r, ok := m.reviews[id]
	if !ok {
		return fmt.Errorf("review %s: %w", id, core.ErrNotFound)
	}
	r.AISummary = summary
	r.AIActions = actions
	m.reviews[id] = r
	return nil
}

func (m *memoryStore) ReviewStats(context.Context) (*models.ReviewStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsCalls++
	counts := map[int]int{}
	for _, r := range m.reviews {
		counts[r.Rating]++
	}
	return models.NewReviewStats(counts), nil
}

func (m *memoryStore) get(id string) models.Review {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reviews[id]
}

// downLLM fails every call, forcing the deterministic fallbacks.
type downLLM struct{}

func (downLLM) Generate(context.Context, string, string) (string, error) {
	return "", errors.New("provider unavailable")
}

type recordingObjects struct {
	bucket, key, contentType string
	body                     []byte
	err                      error
}

func (o *recordingObjects) UploadFile(_ context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	o.bucket, o.key, o.contentType, o.body = bucket, key, contentType, buf.Bytes()
	return "https://" + bucket + ".example/" + key, nil
}

func newTestService(store core.ReviewStore, opts Options) *ReviewService {
	gen := generator.New(downLLM{}, prompts.NewBuilder(prompts.DefaultBrand()))
	return NewReviewService(store, gen, opts)
}
