package suggestions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"curator/internal/services"
)

// timeFormat matches SQLite's datetime('now') output, kept UTC.
const timeFormat = "2006-01-02 15:04:05"

// Record is one stored suggestion awaiting curation.
type Record struct {
	SubmissionID     string
	Subreddit        string
	Title            string
	PostURL          string
	Selftext         string
	Author           string
	ImageURLs        []string
	SuggestedComment string
	CreatedUTC       float64
	AddedAt          string
}

// Insert stores a new suggestion and marks the submission as seen. Duplicate
// submission ids are ignored; the return value reports whether a row was
// actually added.
func (s *Store) Insert(ctx context.Context, rec Record) (bool, error) {
	id := strings.TrimSpace(rec.SubmissionID)
	if id == "" {
		return false, services.Wrap(services.ErrValidation, "suggestions", "insert", "submission id is required", nil)
	}
	images, err := marshalImageURLs(rec.ImageURLs)
	if err != nil {
		return false, fmt.Errorf("encode image urls: %w", err)
	}

	res, err := s.execWithRetry(ctx, `
		INSERT OR IGNORE INTO suggestions
			(submission_id, subreddit, title, post_url, selftext, author, image_urls, suggested_comment, created_utc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Subreddit, rec.Title, rec.PostURL, rec.Selftext, rec.Author, images, rec.SuggestedComment, rec.CreatedUTC)
	if err != nil {
		return false, fmt.Errorf("insert suggestion: %w", err)
	}
	if err := s.MarkSeen(ctx, id); err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count inserted rows: %w", err)
	}
	return affected > 0, nil
}

const selectColumns = `submission_id, subreddit, title, post_url, selftext, author, image_urls, suggested_comment, created_utc, added_at`

// List returns all stored suggestions, oldest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM suggestions ORDER BY added_at, submission_id`)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}
	return records, nil
}

// Get returns a single suggestion by submission id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM suggestions WHERE submission_id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, services.Wrap(services.ErrNotFound, "suggestions", "get", "unknown submission "+id, nil)
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// SetSuggestedComment persists a generated draft for the submission.
func (s *Store) SetSuggestedComment(ctx context.Context, id, comment string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE suggestions SET suggested_comment = ? WHERE submission_id = ?`, comment, id)
	if err != nil {
		return fmt.Errorf("update suggested comment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("count updated rows: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "suggestions", "update", "unknown submission "+id, nil)
	}
	return nil
}

// Remove deletes a suggestion and reports whether it existed. The seen
// marker survives so the scraper does not re-queue the submission.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM suggestions WHERE submission_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete suggestion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted rows: %w", err)
	}
	return affected > 0, nil
}

// PurgeOlderThan removes suggestions added before the retention cutoff and
// returns how many were dropped.
func (s *Store) PurgeOlderThan(ctx context.Context, window time.Duration) (int64, error) {
	if window <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-window).Format(timeFormat)
	res, err := s.execWithRetry(ctx,
		`DELETE FROM suggestions WHERE added_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge suggestions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged rows: %w", err)
	}
	return affected, nil
}

// MarkSeen records that a submission has been considered, queued or not.
func (s *Store) MarkSeen(ctx context.Context, id string) error {
	if _, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO seen_submissions (submission_id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("mark submission seen: %w", err)
	}
	return nil
}

// Seen reports whether a submission was already considered.
func (s *Store) Seen(ctx context.Context, id string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM seen_submissions WHERE submission_id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check seen submission: %w", err)
	}
	return count > 0, nil
}

// Count returns the number of stored suggestions.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM suggestions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count suggestions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec    Record
		images string
	)
	err := row.Scan(
		&rec.SubmissionID,
		&rec.Subreddit,
		&rec.Title,
		&rec.PostURL,
		&rec.Selftext,
		&rec.Author,
		&images,
		&rec.SuggestedComment,
		&rec.CreatedUTC,
		&rec.AddedAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.ImageURLs, err = unmarshalImageURLs(images)
	if err != nil {
		return Record{}, fmt.Errorf("decode image urls for %s: %w", rec.SubmissionID, err)
	}
	return rec, nil
}

func marshalImageURLs(urls []string) (string, error) {
	if len(urls) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalImageURLs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, err
	}
	return urls, nil
}
