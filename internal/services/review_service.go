package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/reviewdesk/internal/core"
	"github.com/markdave123-py/reviewdesk/internal/core/generator"
	"github.com/markdave123-py/reviewdesk/internal/logging"
	"github.com/markdave123-py/reviewdesk/internal/models"
)

const (
	MinReviewLength = 10
	MaxReviewLength = 5000

	statsKey = "review_stats"
)

// Options tunes a ReviewService. Zero values are usable.
type Options struct {
	Workers       int           // cross-record concurrency for RegenerateAll
	StatsCacheTTL time.Duration // <= 0 disables the stats cache
	Objects       core.ObjectClient
	Bucket        string
}

type ReviewService struct {
	store   core.ReviewStore
	gen     *generator.Generator
	objects core.ObjectClient
	bucket  string
	workers int
	stats   *cache.Cache
	now     func() time.Time
}

func NewReviewService(store core.ReviewStore, gen *generator.Generator, opts Options) *ReviewService {
	s := &ReviewService{
		store:   store,
		gen:     gen,
		objects: opts.Objects,
		bucket:  opts.Bucket,
		workers: opts.Workers,
		now:     time.Now,
	}
	if s.workers < 1 {
		s.workers = 1
	}
	if opts.StatsCacheTTL > 0 {
		s.stats = cache.New(opts.StatsCacheTTL, 2*opts.StatsCacheTTL)
	}
	return s
}

// Submit validates a review, generates its insights and stores it. On a
// storage failure the generated review is still returned alongside the error
// so the caller can show the reply.
func (s *ReviewService) Submit(ctx context.Context, rating int, text string) (*models.Review, error) {
	text = strings.TrimSpace(text)
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Field: "rating", Message: "Rating must be between 1 and 5"}
	}
	if utf8.RuneCountInString(text) < MinReviewLength {
		return nil, &ValidationError{Field: "review_text", Message: fmt.Sprintf("Review must be at least %d characters", MinReviewLength)}
	}
	text = truncateRunes(text, MaxReviewLength)

	res := s.gen.Generate(ctx, rating, text)

	review := &models.Review{
		ID:         uuid.NewString(),
		Rating:     rating,
		ReviewText: text,
		AIResponse: res.Response,
		AISummary:  res.Summary,
		AIActions:  res.Actions,
		CreatedAt:  s.now().UTC(),
	}

	// Keep the write even if the client disconnected during generation.
	if err := s.store.CreateReview(context.WithoutCancel(ctx), review); err != nil {
		logging.Error("failed to save review", logrus.Fields{"id": review.ID, "error": err.Error()})
		return review, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.invalidateStats()
	logging.Info("review stored", logrus.Fields{
		"id":          review.ID,
		"rating":      rating,
		"conflicting": res.Assessment.Conflicting,
	})
	return review, nil
}

// ListResult is one page of the admin listing.
type ListResult struct {
	Reviews  []models.Review
	Total    int // every stored review
	Filtered int // reviews matching the filter
}

// List returns reviews newest first.
func (s *ReviewService) List(ctx context.Context, f models.ReviewFilter) (*ListResult, error) {
	reviews, err := s.store.ListReviews(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	total := len(reviews)
	if !f.IsZero() {
		if total, err = s.store.CountReviews(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	return &ListResult{Reviews: reviews, Total: total, Filtered: len(reviews)}, nil
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("review %q: %w", id, ErrNotFound)
	}
	if err := s.store.DeleteReview(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.invalidateStats()
	logging.Info("review deleted", logrus.Fields{"id": id})
	return nil
}

// RegenerateReport summarizes a RegenerateAll run.
type RegenerateReport struct {
	Updated int
	Total   int
	Errors  []string
}

// RegenerateAll recomputes the summary and actions of every stored review.
// A failed record is reported and skipped; it never stops the run.
func (s *ReviewService) RegenerateAll(ctx context.Context) (*RegenerateReport, error) {
	reviews, err := s.store.ListReviews(ctx, models.ReviewFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	report := &RegenerateReport{Total: len(reviews)}
	if len(reviews) == 0 {
		return report, nil
	}

	var (
		updated atomic.Int64
		perRow  = make([]string, len(reviews))
		g       errgroup.Group
	)
	g.SetLimit(s.workers)

	for i, r := range reviews {
		g.Go(func() error {
			summary, actions := s.gen.Regenerate(ctx, r.Rating, r.ReviewText)
			if err := s.store.UpdateReviewInsights(ctx, r.ID, summary, actions); err != nil {
				perRow[i] = fmt.Sprintf("Failed to update review %s: %v", r.ID, err)
				logging.Warn("regenerate failed for review", logrus.Fields{"id": r.ID, "error": err.Error()})
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	for _, e := range perRow {
		if e != "" {
			report.Errors = append(report.Errors, e)
		}
	}
	report.Updated = int(updated.Load())

	logging.Info("regeneration finished", logrus.Fields{
		"updated": report.Updated,
		"total":   report.Total,
		"failed":  len(report.Errors),
	})
	return report, nil
}

// Stats returns rating aggregates, served from cache when fresh.
func (s *ReviewService) Stats(ctx context.Context) (*models.ReviewStats, error) {
	if s.stats != nil {
		if v, ok := s.stats.Get(statsKey); ok {
			return v.(*models.ReviewStats), nil
		}
	}

	stats, err := s.store.ReviewStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if s.stats != nil {
		s.stats.SetDefault(statsKey, stats)
	}
	return stats, nil
}

func (s *ReviewService) invalidateStats() {
	if s.stats != nil {
		s.stats.Delete(statsKey)
	}
}

// ExportResult describes an uploaded snapshot.
type ExportResult struct {
	URL   string
	Key   string
	Count int
}

type exportSnapshot struct {
	ExportedAt time.Time       `json:"exported_at"`
	Count      int             `json:"count"`
	Reviews    []models.Review `json:"reviews"`
}

// Export uploads a JSON snapshot of every review to object storage.
func (s *ReviewService) Export(ctx context.Context) (*ExportResult, error) {
	if s.objects == nil || s.bucket == "" {
		return nil, ErrExportDisabled
	}

	reviews, err := s.store.ListReviews(ctx, models.ReviewFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	now := s.now().UTC()
	body, err := json.MarshalIndent(exportSnapshot{ExportedAt: now, Count: len(reviews), Reviews: reviews}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/reviews-%s.json", now.Format("20060102T150405Z"))
	url, err := s.objects.UploadFile(ctx, s.bucket, key, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, fmt.Errorf("export upload: %w", err)
	}

	logging.Info("reviews exported", logrus.Fields{"key": key, "count": len(reviews)})
	return &ExportResult{URL: url, Key: key, Count: len(reviews)}, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
