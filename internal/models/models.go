package models

import (
	"math"
	"time"
)

// Review is one customer submission together with its generated insights.
type Review struct {
	ID         string    `db:"id" json:"id"`
	Rating     int       `db:"rating" json:"rating"`
	ReviewText string    `db:"review_text" json:"review_text"`
	AIResponse string    `db:"ai_response" json:"ai_response"`
	AISummary  string    `db:"ai_summary" json:"ai_summary"`
	AIActions  []string  `db:"ai_actions" json:"ai_actions"` // jsonb array
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ReviewFilter narrows the admin listing. Zero values mean "no filter".
type ReviewFilter struct {
	Rating int       // 1..5
	Since  time.Time // created_at >= Since
	Search string    // case-insensitive match on review_text or ai_summary
}

// IsZero reports whether the filter matches every review.
func (f ReviewFilter) IsZero() bool {
	return f.Rating == 0 && f.Since.IsZero() && f.Search == ""
}

// ReviewStats aggregates ratings across all stored reviews.
type ReviewStats struct {
	Total         int         `json:"total"`
	AverageRating float64     `json:"average_rating"`
	RatingCounts  map[int]int `json:"rating_counts"` // star -> count, always 1..5
}

// NewReviewStats derives totals and the average (rounded to one decimal)
// from per-star counts.
func NewReviewStats(counts map[int]int) *ReviewStats {
	stats := &ReviewStats{RatingCounts: make(map[int]int, 5)}
	sum := 0
	for star := 1; star <= 5; star++ {
		n := counts[star]
		stats.RatingCounts[star] = n
		stats.Total += n
		sum += star * n
	}
	if stats.Total > 0 {
		stats.AverageRating = math.Round(float64(sum)/float64(stats.Total)*10) / 10
	}
	return stats
}
