// File: internal/infra/backends/store.go
package backends

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"subscription-retention-service/internal/domain"
)

// wpTime is the store's datetime format for meta values.
const wpTime = "2006-01-02 15:04:05"

// Meta keys this service writes onto subscriptions. Prefixed so they never
// collide with the store's own keys.
const (
	metaResumeDate = "_retention_resume_date"
	metaCouponCode = "_retention_coupon"
)

// storeDB wraps the shared store database (WordPress-style schema:
// wp_posts, wp_postmeta, wp_users, wp_options) with the narrow read/write
// surface the backend adapters need. All writes go through here so the
// meta upsert quirk (wp_postmeta has no unique key) lives in one place.
type storeDB struct {
	pool *pgxpool.Pool
}

func newStoreDB(pool *pgxpool.Pool) *storeDB { return &storeDB{pool: pool} }

// hasOption reports whether an option row exists. Plugin detection relies
// on this: every supported subscription system writes a version option on
// activation.
func (s *storeDB) hasOption(ctx context.Context, name string) (bool, error) {
	const sql = `SELECT EXISTS (SELECT 1 FROM wp_options WHERE option_name = $1);`
	var ok bool
	if err := s.pool.QueryRow(ctx, sql, name).Scan(&ok); err != nil {
		return false, fmt.Errorf("hasOption %s: %w", name, err)
	}
	return ok, nil
}

// metaValue reads one meta value for a post. Missing keys come back as "".
func (s *storeDB) metaValue(ctx context.Context, postID, key string) (string, error) {
	const sql = `SELECT meta_value FROM wp_postmeta WHERE post_id = $1::bigint AND meta_key = $2 LIMIT 1;`
	var v string
	if err := s.pool.QueryRow(ctx, sql, postID, key).Scan(&v); err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("metaValue %s: %w", key, err)
	}
	return v, nil
}

// setMeta upserts one meta value. The store schema has no unique constraint
// on (post_id, meta_key), so update-then-insert.
func (s *storeDB) setMeta(ctx context.Context, postID, key, value string) error {
	const upd = `UPDATE wp_postmeta SET meta_value = $3 WHERE post_id = $1::bigint AND meta_key = $2;`
	tag, err := s.pool.Exec(ctx, upd, postID, key, value)
	if err != nil {
		return fmt.Errorf("setMeta %s: %w", key, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	const ins = `INSERT INTO wp_postmeta (post_id, meta_key, meta_value) VALUES ($1::bigint, $2, $3);`
	if _, err := s.pool.Exec(ctx, ins, postID, key, value); err != nil {
		return fmt.Errorf("setMeta %s: %w", key, err)
	}
	return nil
}

func (s *storeDB) deleteMeta(ctx context.Context, postID, key string) error {
	const sql = `DELETE FROM wp_postmeta WHERE post_id = $1::bigint AND meta_key = $2;`
	if _, err := s.pool.Exec(ctx, sql, postID, key); err != nil {
		return fmt.Errorf("deleteMeta %s: %w", key, err)
	}
	return nil
}

// post loads one store entity's type and status. Returns domain.ErrNotFound
// when the ID does not resolve.
func (s *storeDB) post(ctx context.Context, id string) (postType, postStatus string, err error) {
	const sql = `SELECT post_type, post_status FROM wp_posts WHERE "ID" = $1::bigint;`
	if err := s.pool.QueryRow(ctx, sql, id).Scan(&postType, &postStatus); err != nil {
		if err == pgx.ErrNoRows {
			return "", "", domain.ErrNotFound
		}
		return "", "", fmt.Errorf("post %s: %w", id, err)
	}
	return postType, postStatus, nil
}

func (s *storeDB) setPostStatus(ctx context.Context, id, status string) error {
	const sql = `UPDATE wp_posts SET post_status = $2 WHERE "ID" = $1::bigint;`
	tag, err := s.pool.Exec(ctx, sql, id, status)
	if err != nil {
		return fmt.Errorf("setPostStatus %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// userEmail resolves a customer's email from the store's user table.
func (s *storeDB) userEmail(ctx context.Context, userID int64) (string, error) {
	const sql = `SELECT user_email FROM wp_users WHERE "ID" = $1;`
	var email string
	if err := s.pool.QueryRow(ctx, sql, userID).Scan(&email); err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("userEmail %d: %w", userID, err)
	}
	return email, nil
}

// metaTime parses a meta datetime, accepting the store format and RFC 3339.
func metaTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(wpTime, v); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func formatMetaTime(t time.Time) string { return t.UTC().Format(wpTime) }
