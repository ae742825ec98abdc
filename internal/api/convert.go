package api

import (
	"strings"
	"time"

	"curator/internal/review"
)

// dateTimeFormat is used for added_at timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05Z07:00"

// sqliteTimeFormat matches timestamps written by SQLite's datetime('now').
const sqliteTimeFormat = "2006-01-02 15:04:05"

// ToReviewItem converts a wire suggestion into a queue item. The draft state
// derives from the suggested comment: non-empty text arrives as a ready
// draft, everything else starts empty.
func (s Suggestion) ToReviewItem() review.Item {
	item := review.Item{
		ID:          strings.TrimSpace(s.ID),
		SourceForum: strings.TrimSpace(s.Subreddit),
		Title:       s.Title,
		URL:         s.URL,
		Body:        s.Selftext,
		Author:      strings.TrimSpace(s.Author),
		CreatedUTC:  int64(s.CreatedUTC),
		AddedAt:     parseAddedAt(s.AddedAt),
		Reply:       s.SuggestedComment,
	}
	if len(s.ImageURLs) > 0 {
		item.ImageURLs = append([]string(nil), s.ImageURLs...)
	}
	if strings.TrimSpace(item.Reply) != "" {
		item.Draft = review.DraftReady
	} else {
		item.Draft = review.DraftEmpty
	}
	return item
}

// ToReviewItems converts a fetched suggestion list into queue items.
func ToReviewItems(suggestions []Suggestion) []review.Item {
	if len(suggestions) == 0 {
		return nil
	}
	out := make([]review.Item, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.ToReviewItem())
	}
	return out
}

// FromReviewItem converts a queue item back into its wire representation.
func FromReviewItem(item review.Item) Suggestion {
	s := Suggestion{
		ID:         item.ID,
		Subreddit:  item.SourceForum,
		Title:      item.Title,
		URL:        item.URL,
		Selftext:   item.Body,
		Author:     item.Author,
		CreatedUTC: float64(item.CreatedUTC),
		AddedAt:    FormatTime(item.AddedAt),
	}
	if len(item.ImageURLs) > 0 {
		s.ImageURLs = append([]string(nil), item.ImageURLs...)
	}
	if item.Draft == review.DraftReady {
		s.SuggestedComment = item.Reply
	}
	return s
}

// FormatTime renders a unix timestamp for API payloads, empty when unset.
func FormatTime(unix int64) string {
	if unix <= 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format(dateTimeFormat)
}

// parseAddedAt accepts both RFC3339 timestamps and the bare SQLite datetime
// form. Unparseable values collapse to zero rather than failing the fetch.
func parseAddedAt(value string) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if t, err := time.Parse(dateTimeFormat, value); err == nil {
		return t.Unix()
	}
	if t, err := time.Parse(sqliteTimeFormat, value); err == nil {
		return t.Unix()
	}
	return 0
}
