package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/services/reddit"
	"curator/internal/suggestions"
)

// Lister provides new-post listings for a subreddit. It is satisfied by the
// reddit client.
type Lister interface {
	ListNew(ctx context.Context, subreddit string, limit int) ([]reddit.Submission, error)
}

// Scraper polls configured subreddits and queues matching submissions. The
// priority forum gets a longer lookback window and no keyword filter; every
// other subreddit must match at least one configured keyword.
type Scraper struct {
	cfg    *config.Config
	store  *suggestions.Store
	lister Lister
	logger *slog.Logger

	folder   cases.Caser
	keywords []string
}

// New constructs a scraper. Keywords are case-folded once up front so every
// match during scanning is a plain substring check.
func New(cfg *config.Config, store *suggestions.Store, lister Lister, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = logging.NewNop()
	}
	folder := cases.Fold()
	keywords := make([]string, 0, len(cfg.Scraper.Keywords))
	for _, keyword := range cfg.Scraper.Keywords {
		if folded := folder.String(strings.TrimSpace(keyword)); folded != "" {
			keywords = append(keywords, folded)
		}
	}
	return &Scraper{
		cfg:      cfg,
		store:    store,
		lister:   lister,
		logger:   logging.NewComponentLogger(logger, "scraper"),
		folder:   folder,
		keywords: keywords,
	}
}

// Run polls on the configured interval until the context is canceled. The
// first scan happens immediately.
func (s *Scraper) Run(ctx context.Context) {
	interval := time.Duration(s.cfg.Scraper.ScanInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	s.scan(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scraper) scan(ctx context.Context) {
	added, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Warn("scan finished with errors",
			logging.String(logging.FieldEventType, "scan_failed"),
			logging.Int("added_count", added),
			logging.Error(err))
		return
	}
	s.logger.Info("scan completed",
		logging.String(logging.FieldEventType, "scan_completed"),
		logging.Int("added_count", added))
}

// RunOnce scans every configured subreddit once and returns how many new
// suggestions were queued. A failing subreddit is logged and skipped; the
// last such error is returned after the remaining subreddits were scanned.
func (s *Scraper) RunOnce(ctx context.Context) (int, error) {
	added := 0
	var lastErr error
	for _, subreddit := range s.cfg.Scraper.Subreddits {
		if ctx.Err() != nil {
			return added, ctx.Err()
		}
		count, err := s.scanSubreddit(ctx, subreddit)
		added += count
		if err != nil {
			lastErr = err
			s.logger.Warn("subreddit scan failed",
				logging.String(logging.FieldEventType, "subreddit_scan_failed"),
				logging.String(logging.FieldForum, subreddit),
				logging.Error(err))
		}
	}
	return added, lastErr
}

func (s *Scraper) scanSubreddit(ctx context.Context, subreddit string) (int, error) {
	submissions, err := s.lister.ListNew(ctx, subreddit, s.cfg.Scraper.ScanLimit)
	if err != nil {
		return 0, err
	}

	priority := strings.EqualFold(subreddit, s.cfg.Backend.PriorityForum)
	cutoff := float64(time.Now().Add(-s.window(priority)).Unix())

	added := 0
	for _, submission := range submissions {
		if submission.CreatedUTC < cutoff {
			continue
		}
		if !priority && !s.matchesKeywords(submission.Title, submission.Selftext) {
			continue
		}
		seen, err := s.store.Seen(ctx, submission.ID)
		if err != nil {
			return added, err
		}
		if seen {
			continue
		}
		inserted, err := s.store.Insert(ctx, suggestions.Record{
			SubmissionID: submission.ID,
			Subreddit:    submission.Subreddit,
			Title:        submission.Title,
			PostURL:      submission.URL,
			Selftext:     submission.Selftext,
			Author:       submission.Author,
			ImageURLs:    submission.ImageURLs,
			CreatedUTC:   submission.CreatedUTC,
		})
		if err != nil {
			return added, err
		}
		if inserted {
			added++
			s.logger.Info("submission queued",
				logging.String(logging.FieldEventType, "submission_queued"),
				logging.String(logging.FieldItemID, submission.ID),
				logging.String(logging.FieldForum, submission.Subreddit))
		}
	}
	return added, nil
}

func (s *Scraper) window(priority bool) time.Duration {
	hours := s.cfg.Scraper.DefaultWindowHours
	if priority {
		hours = s.cfg.Scraper.PriorityWindowHours
	}
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// matchesKeywords reports whether any configured keyword appears in the
// title or body, using Unicode case folding for the comparison.
func (s *Scraper) matchesKeywords(title, selftext string) bool {
	if len(s.keywords) == 0 {
		return true
	}
	haystack := s.folder.String(title + " " + selftext)
	for _, keyword := range s.keywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}
