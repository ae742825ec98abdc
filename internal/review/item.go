package review

import "strings"

// DraftState tracks the lifecycle of a reply draft for a single queue item.
type DraftState string

const (
	// DraftEmpty means no draft exists yet; generation may begin.
	DraftEmpty DraftState = "empty"
	// DraftGenerating means a generation call is in flight and the reply
	// field holds the placeholder marker.
	DraftGenerating DraftState = "generating"
	// DraftReady means a draft exists and may be edited or approved.
	DraftReady DraftState = "ready"
)

// GeneratingPlaceholder occupies the reply field while generation is in
// flight. It is presentation-only and must never be posted.
const GeneratingPlaceholder = "Generating comment…"

// ParseDraftState converts a wire string into a DraftState.
func ParseDraftState(value string) (DraftState, bool) {
	switch DraftState(strings.ToLower(strings.TrimSpace(value))) {
	case DraftEmpty:
		return DraftEmpty, true
	case DraftGenerating:
		return DraftGenerating, true
	case DraftReady:
		return DraftReady, true
	default:
		return DraftEmpty, false
	}
}

// Item is one suggestion under review. Display fields mirror the server's
// record and are refreshed wholesale on every merge; Reply and Draft are
// operator-local while an action is in flight.
type Item struct {
	ID          string
	SourceForum string
	Title       string
	URL         string
	Body        string
	Author      string
	ImageURLs   []string
	CreatedUTC  int64
	AddedAt     int64

	Reply string
	Draft DraftState
}

// HasDraft reports whether the item carries an editable reply draft.
func (i *Item) HasDraft() bool {
	return i != nil && i.Draft == DraftReady
}

// Generating reports whether a generation call is in flight for the item.
func (i *Item) Generating() bool {
	return i != nil && i.Draft == DraftGenerating
}

// ApprovableReply returns the trimmed reply if the item satisfies the
// approve preconditions: a ready draft whose text is non-empty and not the
// placeholder.
func (i *Item) ApprovableReply() (string, bool) {
	if i == nil || i.Draft != DraftReady {
		return "", false
	}
	trimmed := strings.TrimSpace(i.Reply)
	if trimmed == "" || trimmed == GeneratingPlaceholder {
		return "", false
	}
	return trimmed, true
}

// Clone returns a deep copy so snapshots never alias store-owned state.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	cp := *i
	if len(i.ImageURLs) > 0 {
		cp.ImageURLs = append([]string(nil), i.ImageURLs...)
	}
	return &cp
}

func normalizeIncoming(item *Item) {
	item.Reply = strings.TrimSpace(item.Reply)
	if item.Reply != "" {
		item.Draft = DraftReady
	} else {
		item.Draft = DraftEmpty
	}
}
