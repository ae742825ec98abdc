package testsupport

import (
	"context"
	"sync"

	"curator/internal/review"
)

// FakeTransport is a scripted review.Transport that records every call.
// Zero value behavior: ListSuggestions returns the configured items,
// GenerateReply returns GenerateText, and the mutating calls succeed.
type FakeTransport struct {
	mu sync.Mutex

	Items   []review.Item
	ListErr error

	GenerateText string
	GenerateErr  error
	// GenerateStarted and GenerateRelease, when set, let tests hold a
	// generation call in flight: the fake closes GenerateStarted on entry
	// and blocks until GenerateRelease is closed.
	GenerateStarted chan struct{}
	GenerateRelease chan struct{}

	ApproveErr    error
	RejectErr     error
	PostDirectErr error

	listCalls       int
	generateCalls   int
	approveCalls    int
	rejectCalls     int
	postDirectCalls int
	generatedNotes  map[string]string
	approvedReplies map[string]string
	postedNotes     map[string]string
}

var _ review.Transport = (*FakeTransport)(nil)

func (f *FakeTransport) ListSuggestions(context.Context) ([]review.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	items := make([]review.Item, len(f.Items))
	copy(items, f.Items)
	return items, nil
}

func (f *FakeTransport) GenerateReply(_ context.Context, id, note string) (string, error) {
	f.mu.Lock()
	f.generateCalls++
	if f.generatedNotes == nil {
		f.generatedNotes = make(map[string]string)
	}
	f.generatedNotes[id] = note
	started := f.GenerateStarted
	release := f.GenerateRelease
	text := f.GenerateText
	err := f.GenerateErr
	f.mu.Unlock()

	if started != nil {
		close(started)
		f.mu.Lock()
		f.GenerateStarted = nil
		f.mu.Unlock()
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (f *FakeTransport) ApproveAndPost(_ context.Context, id, reply string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approveCalls++
	if f.ApproveErr != nil {
		return f.ApproveErr
	}
	if f.approvedReplies == nil {
		f.approvedReplies = make(map[string]string)
	}
	f.approvedReplies[id] = reply
	return nil
}

func (f *FakeTransport) Reject(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectCalls++
	return f.RejectErr
}

func (f *FakeTransport) PostDirect(_ context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postDirectCalls++
	if f.PostDirectErr != nil {
		return f.PostDirectErr
	}
	if f.postedNotes == nil {
		f.postedNotes = make(map[string]string)
	}
	f.postedNotes[id] = text
	return nil
}

// Calls returns per-method call counts: list, generate, approve, reject,
// postDirect.
func (f *FakeTransport) Calls() (int, int, int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.generateCalls, f.approveCalls, f.rejectCalls, f.postDirectCalls
}

// GeneratedNote returns the note forwarded with the generate call for id.
func (f *FakeTransport) GeneratedNote(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generatedNotes[id]
}

// ApprovedReply returns the reply text posted for id.
func (f *FakeTransport) ApprovedReply(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.approvedReplies[id]
}

// PostedNote returns the note posted directly for id.
func (f *FakeTransport) PostedNote(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.postedNotes[id]
}
