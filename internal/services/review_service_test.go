package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/reviewdesk/internal/models"
)

func steppingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService(newMemoryStore(), Options{})
	ctx := context.Background()

	tests := []struct {
		name    string
		rating  int
		text    string
		field   string
		message string
	}{
		{"rating zero", 0, "anything long enough", "rating", "Rating must be between 1 and 5"},
		{"rating six", 6, "anything long enough", "rating", "Rating must be between 1 and 5"},
		{"short text", 3, "short", "review_text", "Review must be at least 10 characters"},
		{"short after trim", 3, "   short      ", "review_text", "Review must be at least 10 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := svc.Submit(ctx, tt.rating, tt.text)

			assert.Nil(t, r)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.message, vErr.Message)
		})
	}
}

func TestSubmitExactlyTenCharacters(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, Options{})

	r, err := svc.Submit(context.Background(), 5, "1234567890")

	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "1234567890", store.get(r.ID).ReviewText)
}

func TestSubmitNegativeReviewWithProviderDown(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, Options{})

	r, err := svc.Submit(context.Background(), 1, "This is the worst product I have ever bought, truly terrible.")
	require.NoError(t, err)

	stored := store.get(r.ID)
	assert.Contains(t, stored.AIResponse, "Call:")
	assert.Contains(t, stored.AIResponse, "Email:")
	assert.Contains(t, stored.AIResponse, "WhatsApp:")
	assert.True(t, strings.HasPrefix(stored.AISummary, "Sentiment: Negative (high confidence)"))
	assert.GreaterOrEqual(t, len(stored.AIActions), 2)
	assert.LessOrEqual(t, len(stored.AIActions), 4)
}

func TestSubmitConflictingReviewWithProviderDown(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, Options{})

	r, err := svc.Submit(context.Background(), 1, "Wonderful experience, very glad to use this.")
	require.NoError(t, err)

	stored := store.get(r.ID)
	assert.Contains(t, stored.AISummary, "low confidence - rating conflicts with text")
	require.NotEmpty(t, stored.AIActions)
	assert.Contains(t, stored.AIActions[0], "Contact customer")
	assert.Contains(t, stored.AIActions[0], "rating error")
}

func TestSubmitTrimsAndTruncates(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, Options{})
	long := "  " + strings.Repeat("é", MaxReviewLength+250) + "  "

	r, err := svc.Submit(context.Background(), 3, long)

	require.NoError(t, err)
	assert.Equal(t, MaxReviewLength, utf8.RuneCountInString(store.get(r.ID).ReviewText))
}

func TestSubmitPersistenceFailureKeepsReply(t *testing.T) {
	store := newMemoryStore()
	store.failCreate = errors.New("connection refused")
	svc := newTestService(store, Options{})

	r, err := svc.Submit(context.Background(), 5, "Great product, arrived early")

	require.ErrorIs(t, err, ErrPersistence)
	require.NotNil(t, r)
	assert.NotEmpty(t, r.AIResponse)
	assert.Empty(t, store.reviews)
}

func TestListNewestFirstWithTotals(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, Options{})
	svc.now = steppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := svc.Submit(ctx, 5, "Fantastic quality, love it")
	require.NoError(t, err)
	second, err := svc.Submit(ctx, 2, "Parcel arrived late and dented")
	require.NoError(t, err)
	third, err := svc.Submit(ctx, 5, "Great value for the price")
	require.NoError(t, err)

	all, err := svc.List(ctx, models.ReviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, 3, all.Filtered)
	require.Len(t, all.Reviews, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID},
		[]string{all.Reviews[0].ID, all.Reviews[1].ID, all.Reviews[2].ID})

	fives, err := svc.List(ctx, models.ReviewFilter{Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, fives.Total)
	assert.Equal(t, 2, fives.Filtered)

	late, err := svc.List(ctx, models.ReviewFilter{Search: "LATE"})
	require.NoError(t, err)
	require.Len(t, late.Reviews, 1)
	assert.Equal(t, second.ID, late.Reviews[0].ID)
}

func TestListEmptyIsNotNil(t *testing.T) {
	res, err := newTestService(newMemoryStore(), Options{}).List(context.Background(), models.ReviewFilter{})

	require.NoError(t, err)
	assert.NotNil(t, res.Reviews)
	assert.Zero(t, res.Total)
}

func TestListPersistenceFailure(t *testing.T) {
	store := newMemoryStore()
	store.failList = errors.New("timeout")

	_, err := newTestService(store, Options{}).List(context.Background(), models.ReviewFilter{})

	assert.ErrorIs(t, err, ErrPersistence)
}

func TestDelete(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, Options{})
	ctx := context.Background()

	r, err := svc.Submit(ctx, 4, "Solid build and quick setup")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, r.ID))
	assert.Empty(t, store.reviews)

	assert.ErrorIs(t, svc.Delete(ctx, r.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "not-a-uuid"), ErrNotFound)
}

func TestRegenerateAllContinuesPastFailures(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, Options{Workers: 3})
	ctx := context.Background()

	var ids []string
	for _, text := range []string{
		"Wonderful experience, very glad to use this.",
		"This is the worst product I have ever bought",
		"It does what it says on the box",
		"Great support team, quick answers",
	} {
		r, err := svc.Submit(ctx, 1, text)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	// Simulate stale insights so the overwrite is visible.
	for _, id := range ids {
		require.NoError(t, store.UpdateReviewInsights(ctx, id, "stale", []string{"stale"}))
	}
	store.failUpdate[ids[2]] = errors.New("row locked")
	responseBefore := store.get(ids[0]).AIResponse

	report, err := svc.RegenerateAll(ctx)

	require.NoError(t, err)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 3, report.Updated)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], ids[2])
	assert.Contains(t, report.Errors[0], "row locked")

	assert.Equal(t, "stale", store.get(ids[2]).AISummary)
	assert.NotEqual(t, "stale", store.get(ids[0]).AISummary)
	assert.Equal(t, responseBefore, store.get(ids[0]).AIResponse)
}

func TestRegenerateAllEmpty(t *testing.T) {
	report, err := newTestService(newMemoryStore(), Options{}).RegenerateAll(context.Background())

	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.Updated)
	assert.Empty(t, report.Errors)
}

func TestStatsCachedUntilWrite(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store, Options{StatsCacheTTL: time.Minute})
	ctx := context.Background()

	_, err := svc.Submit(ctx, 5, "Great product, arrived early")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	_, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.statsCalls)

	_, err = svc.Submit(ctx, 1, "Terrible packaging, broke in transit")
	require.NoError(t, err)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.statsCalls)
	assert.Equal(t, 2, stats.Total)
	assert.InDelta(t, 3.0, stats.AverageRating, 1e-9)
	assert.Equal(t, 1, stats.RatingCounts[1])
	assert.Equal(t, 1, stats.RatingCounts[5])
}

func TestExportDisabled(t *testing.T) {
	_, err := newTestService(newMemoryStore(), Options{}).Export(context.Background())

	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestExportUploadsSnapshot(t *testing.T) {
	store := newMemoryStore()
	objects := &recordingObjects{}
	svc := newTestService(store, Options{Objects: objects, Bucket: "review-exports"})
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	_, err := svc.Submit(ctx, 4, "Solid build and quick setup")
	require.NoError(t, err)

	res, err := svc.Export(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "exports/reviews-20250301T123000Z.json", res.Key)
	assert.Equal(t, "https://review-exports.example/exports/reviews-20250301T123000Z.json", res.URL)
	assert.Equal(t, "review-exports", objects.bucket)
	assert.Equal(t, "application/json", objects.contentType)

	var snap struct {
		Count   int             `json:"count"`
		Reviews []models.Review `json:"reviews"`
	}
	require.NoError(t, json.Unmarshal(objects.body, &snap))
	assert.Equal(t, 1, snap.Count)
	require.Len(t, snap.Reviews, 1)
	assert.Equal(t, "Solid build and quick setup", snap.Reviews[0].ReviewText)
}
