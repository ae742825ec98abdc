package ipc

import (
	"time"

	"curator/internal/review"
)

// QueueEntry is the transport form of one queue item plus its session-local
// state, as rendered by the CLI.
type QueueEntry struct {
	ID         string   `json:"id"`
	Subreddit  string   `json:"subreddit"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Selftext   string   `json:"selftext,omitempty"`
	Author     string   `json:"author,omitempty"`
	ImageURLs  []string `json:"imageUrls,omitempty"`
	Reply      string   `json:"reply,omitempty"`
	DraftState string   `json:"draftState"`
	Note       string   `json:"note,omitempty"`
	Expanded   bool     `json:"expanded"`
	Priority   bool     `json:"priority"`
	CreatedUTC int64    `json:"createdUtc,omitempty"`
	AddedAt    int64    `json:"addedAt,omitempty"`
}

// FromEntry converts a review entry into its transport form.
func FromEntry(entry review.Entry) QueueEntry {
	out := QueueEntry{
		ID:         entry.Item.ID,
		Subreddit:  entry.Item.SourceForum,
		Title:      entry.Item.Title,
		URL:        entry.Item.URL,
		Selftext:   entry.Item.Body,
		Author:     entry.Item.Author,
		Reply:      entry.Item.Reply,
		DraftState: string(entry.Item.Draft),
		Note:       entry.Note,
		Expanded:   entry.Expanded,
		Priority:   entry.Priority,
		CreatedUTC: entry.Item.CreatedUTC,
		AddedAt:    entry.Item.AddedAt,
	}
	if len(entry.Item.ImageURLs) > 0 {
		out.ImageURLs = append([]string(nil), entry.Item.ImageURLs...)
	}
	return out
}

// StatusRequest asks for daemon runtime information.
type StatusRequest struct{}

// StatusResponse reports session state for the status command.
type StatusResponse struct {
	Running       bool           `json:"running"`
	PID           int            `json:"pid"`
	SocketPath    string         `json:"socketPath"`
	LockPath      string         `json:"lockPath"`
	PriorityForum string         `json:"priorityForum"`
	ItemCount     int            `json:"itemCount"`
	DraftStats    map[string]int `json:"draftStats"`
	LastRefresh   string         `json:"lastRefresh,omitempty"`
	LastError     string         `json:"lastError,omitempty"`
}

// QueueListRequest asks for the queue in display order.
type QueueListRequest struct{}

// QueueListResponse carries the ordered queue.
type QueueListResponse struct {
	Items []QueueEntry `json:"items"`
}

// QueueShowRequest asks for a single entry by id.
type QueueShowRequest struct {
	ID string `json:"id"`
}

// QueueShowResponse carries one entry.
type QueueShowResponse struct {
	Entry QueueEntry `json:"entry"`
}

// RefreshRequest triggers a backend fetch and merge.
type RefreshRequest struct{}

// RefreshResponse reports the queue size after the merge.
type RefreshResponse struct {
	ItemCount int `json:"itemCount"`
}

// SetNoteRequest records an operator note on an item.
type SetNoteRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SetNoteResponse acknowledges the note update.
type SetNoteResponse struct{}

// SetReplyRequest replaces the draft text of a ready item.
type SetReplyRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SetReplyResponse acknowledges the edit.
type SetReplyResponse struct{}

// ToggleExpandRequest flips the detail expansion flag.
type ToggleExpandRequest struct {
	ID string `json:"id"`
}

// ToggleExpandResponse reports the new expansion state.
type ToggleExpandResponse struct {
	Expanded bool `json:"expanded"`
}

// GenerateRequest asks the backend for a reply draft.
type GenerateRequest struct {
	ID string `json:"id"`
}

// GenerateResponse carries the generated draft text.
type GenerateResponse struct {
	Reply string `json:"reply"`
}

// ApproveRequest posts the item's draft.
type ApproveRequest struct {
	ID string `json:"id"`
}

// ApproveResponse acknowledges the post.
type ApproveResponse struct{}

// RejectRequest discards a suggestion.
type RejectRequest struct {
	ID string `json:"id"`
}

// RejectResponse acknowledges the rejection.
type RejectResponse struct{}

// PostDirectRequest posts the operator note verbatim.
type PostDirectRequest struct {
	ID string `json:"id"`
}

// PostDirectResponse acknowledges the post.
type PostDirectResponse struct{}

// formatTime renders a timestamp for status payloads, empty when zero.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
