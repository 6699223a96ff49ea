package core

import (
	"context"
	"errors"
	"io"

	"github.com/markdave123-py/reviewdesk/internal/models"
)

// ErrNotFound is returned by stores when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ReviewStore defines all persistence operations the review service needs.
// It abstracts Postgres so higher layers never depend on a specific DB.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) error
	ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error)
	CountReviews(ctx context.Context) (int, error)
	DeleteReview(ctx context.Context, id string) error
	UpdateReviewInsights(ctx context.Context, id string, summary string, actions []string) error
	ReviewStats(ctx context.Context) (*models.ReviewStats, error)
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
}
