package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/reviewdesk/internal/config"
	"github.com/markdave123-py/reviewdesk/internal/core"
	"github.com/markdave123-py/reviewdesk/internal/models"
	"github.com/markdave123-py/reviewdesk/internal/monitoring"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// buildDSN appends verify-ca SSL parameters when a root certificate is given.
func buildDSN(databaseURL, sslCertPath string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	if sslCertPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *DatabaseClient) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *DatabaseClient) CreateReview(ctx context.Context, r *models.Review) error {
	if r == nil {
		return errors.New("nil review")
	}
	actions, err := encodeActions(r.AIActions)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO reviews (id, rating, review_text, ai_response, ai_summary, ai_actions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7)
	`
	return monitoring.RecordDBTime("create_review", func() error {
		_, err := c.db.ExecContext(ctx, q,
			r.ID, r.Rating, r.ReviewText, r.AIResponse, r.AISummary, actions, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		return nil
	})
}

const selectReviews = `
		SELECT id, rating, review_text, ai_response, ai_summary, ai_actions, created_at
		FROM reviews`

// buildListQuery renders the filtered listing. Rows come back newest first.
func buildListQuery(f models.ReviewFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Rating >= 1 && f.Rating <= 5 {
		args = append(args, f.Rating)
		where = append(where, fmt.Sprintf("rating = $%d", len(args)))
	}
	if !f.Since.IsZero() {
		args = append(args, f.Since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(review_text ILIKE $%d OR ai_summary ILIKE $%d)", n, n))
	}

	q := selectReviews
	if len(where) > 0 {
		q += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	q += "\n\t\tORDER BY created_at DESC, id DESC"
	return q, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (c *DatabaseClient) ListReviews(ctx context.Context, f models.ReviewFilter) ([]models.Review, error) {
	q, args := buildListQuery(f)

	var out []models.Review
	err := monitoring.RecordDBTime("list_reviews", func() error {
		rows, err := c.db.QueryContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("list reviews: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				r   models.Review
				raw []byte
			)
			if err := rows.Scan(&r.ID, &r.Rating, &r.ReviewText, &r.AIResponse, &r.AISummary, &raw, &r.CreatedAt); err != nil {
				return fmt.Errorf("scan review: %w", err)
			}
			if r.AIActions, err = decodeActions(raw); err != nil {
				return fmt.Errorf("decode actions for %s: %w", r.ID, err)
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DatabaseClient) CountReviews(ctx context.Context) (int, error) {
	var n int
	err := monitoring.RecordDBTime("count_reviews", func() error {
		return c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

func (c *DatabaseClient) DeleteReview(ctx context.Context, id string) error {
	return monitoring.RecordDBTime("delete_review", func() error {
		res, err := c.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		return affectedOne(res, id)
	})
}

// UpdateReviewInsights overwrites the regenerable admin fields only.
func (c *DatabaseClient) UpdateReviewInsights(ctx context.Context, id, summary string, actions []string) error {
	encoded, err := encodeActions(actions)
	if err != nil {
		return err
	}
	const q = `
		UPDATE reviews
		SET ai_summary = $2, ai_actions = $3::jsonb
		WHERE id = $1
	`
	return monitoring.RecordDBTime("update_review_insights", func() error {
		res, err := c.db.ExecContext(ctx, q, id, summary, encoded)
		if err != nil {
			return fmt.Errorf("update review %s: %w", id, err)
		}
		return affectedOne(res, id)
	})
}

func (c *DatabaseClient) ReviewStats(ctx context.Context) (*models.ReviewStats, error) {
	counts := make(map[int]int, 5)

	err := monitoring.RecordDBTime("review_stats", func() error {
		rows, err := c.db.QueryContext(ctx, `SELECT rating, COUNT(*) FROM reviews GROUP BY rating`)
		if err != nil {
			return fmt.Errorf("review stats: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var rating, count int
			if err := rows.Scan(&rating, &count); err != nil {
				return fmt.Errorf("scan stats: %w", err)
			}
			counts[rating] = count
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return models.NewReviewStats(counts), nil
}

func affectedOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("review %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func encodeActions(actions []string) (string, error) {
	if actions == nil {
		actions = []string{}
	}
	b, err := json.Marshal(actions)
	if err != nil {
		return "", fmt.Errorf("encode actions: %w", err)
	}
	return string(b), nil
}

func decodeActions(raw []byte) ([]string, error) {
	actions := []string{}
	if len(raw) == 0 {
		return actions, nil
	}
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

var _ core.ReviewStore = (*DatabaseClient)(nil)
