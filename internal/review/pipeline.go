package review

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"curator/internal/logging"
	"curator/internal/services"
)

// Transport is the backend surface the pipeline drives. Implementations make
// exactly one network call per method and never retry; every failure is
// terminal and reported to the operator.
type Transport interface {
	ListSuggestions(ctx context.Context) ([]Item, error)
	GenerateReply(ctx context.Context, id, note string) (string, error)
	ApproveAndPost(ctx context.Context, id, reply string) error
	Reject(ctx context.Context, id string) error
	PostDirect(ctx context.Context, id, text string) error
}

// Pipeline executes operator actions against the store and the backend.
//
// Generate is the only optimistic action: the store transitions to the
// generating state before the call and rolls back locally when it fails.
// Approve, Reject, and PostDirect call the backend first and mutate the
// store only after confirmed success, so a failed resolve leaves the item
// fully intact.
type Pipeline struct {
	store     *Store
	transport Transport
	logger    *slog.Logger

	mu          sync.Mutex
	lastRefresh time.Time
	lastError   string
}

// NewPipeline wires the store to a transport.
func NewPipeline(store *Store, transport Transport, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		transport: transport,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Store exposes the underlying queue store.
func (p *Pipeline) Store() *Store {
	return p.store
}

// LastRefresh reports when the queue last merged successfully and the most
// recent refresh failure, if any.
func (p *Pipeline) LastRefresh() (time.Time, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRefresh, p.lastError
}

// Refresh fetches the queue from the backend and merges it into the store.
// On fetch failure the store keeps its previous state untouched.
func (p *Pipeline) Refresh(ctx context.Context) error {
	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)
	items, err := p.transport.ListSuggestions(ctx)
	if err != nil {
		p.recordRefresh(time.Time{}, err)
		p.logger.Warn("refresh failed",
			logging.String(logging.FieldRequestID, requestID),
			logging.String(logging.FieldEventType, "refresh_failed"),
			logging.Error(err))
		return err
	}
	p.store.Apply(items)
	p.recordRefresh(time.Now(), nil)
	p.logger.Info("queue refreshed",
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldEventType, "refresh_completed"),
		logging.Int("item_count", len(items)))
	return nil
}

func (p *Pipeline) recordRefresh(at time.Time, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.lastError = err.Error()
		return
	}
	p.lastRefresh = at
	p.lastError = ""
}

// Generate requests a reply draft for the item, seeded with the operator
// note. The placeholder occupies the reply field for the duration of the
// call; a failed call reverts the item to the empty draft state without
// touching the backend again.
func (p *Pipeline) Generate(ctx context.Context, id string) error {
	requestID := uuid.NewString()
	note, err := p.store.Note(id)
	if err != nil {
		return err
	}
	if err := p.store.beginGenerate(id); err != nil {
		return err
	}
	p.logger.Info("generation started",
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldItemID, id),
		logging.String(logging.FieldEventType, "generate_started"))

	ctx = services.WithRequestID(services.WithItemID(ctx, id), requestID)
	text, err := p.transport.GenerateReply(ctx, id, note)
	if err != nil {
		p.store.failGenerate(id)
		p.logger.Warn("generation failed, draft reverted",
			logging.String(logging.FieldRequestID, requestID),
			logging.String(logging.FieldItemID, id),
			logging.String(logging.FieldEventType, "generate_failed"),
			logging.Error(err))
		return err
	}
	p.store.completeGenerate(id, text)
	p.logger.Info("draft ready",
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldItemID, id),
		logging.String(logging.FieldEventType, "generate_completed"))
	return nil
}

// Approve posts the item's draft and removes the item once the backend
// confirms the post.
func (p *Pipeline) Approve(ctx context.Context, id string) error {
	requestID := uuid.NewString()
	reply, err := p.store.approvableReply(id)
	if err != nil {
		return err
	}
	ctx = services.WithRequestID(services.WithItemID(ctx, id), requestID)
	if err := p.transport.ApproveAndPost(ctx, id, reply); err != nil {
		p.logger.Warn("approve failed, item kept",
			logging.String(logging.FieldRequestID, requestID),
			logging.String(logging.FieldItemID, id),
			logging.String(logging.FieldEventType, "approve_failed"),
			logging.Error(err))
		return err
	}
	p.store.Remove(id)
	p.logger.Info("reply approved and posted",
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldItemID, id),
		logging.String(logging.FieldEventType, "approve_posted"))
	return nil
}

// Reject discards the suggestion server-side, then removes it locally.
// Reject has no draft precondition.
func (p *Pipeline) Reject(ctx context.Context, id string) error {
	requestID := uuid.NewString()
	if !p.store.Contains(id) {
		return services.Wrap(services.ErrNotFound, "pipeline", "reject", "unknown item "+id, nil)
	}
	ctx = services.WithRequestID(services.WithItemID(ctx, id), requestID)
	if err := p.transport.Reject(ctx, id); err != nil {
		p.logger.Warn("reject failed, item kept",
			logging.String(logging.FieldRequestID, requestID),
			logging.String(logging.FieldItemID, id),
			logging.String(logging.FieldEventType, "reject_failed"),
			logging.Error(err))
		return err
	}
	p.store.Remove(id)
	p.logger.Info("suggestion rejected",
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldItemID, id),
		logging.String(logging.FieldEventType, "reject_removed"))
	return nil
}

// PostDirect posts the operator note verbatim, bypassing generation. The
// note must be non-empty after trimming; confirmation is the caller's
// responsibility.
func (p *Pipeline) PostDirect(ctx context.Context, id string) error {
	requestID := uuid.NewString()
	note, err := p.store.Note(id)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(note)
	if text == "" {
		return services.Wrap(services.ErrValidation, "pipeline", "post direct", "item "+id+" has no note to post", nil)
	}
	ctx = services.WithRequestID(services.WithItemID(ctx, id), requestID)
	if err := p.transport.PostDirect(ctx, id, text); err != nil {
		p.logger.Warn("direct post failed, item kept",
			logging.String(logging.FieldRequestID, requestID),
			logging.String(logging.FieldItemID, id),
			logging.String(logging.FieldEventType, "post_direct_failed"),
			logging.Error(err))
		return err
	}
	p.store.Remove(id)
	p.logger.Info("note posted directly",
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldItemID, id),
		logging.String(logging.FieldEventType, "post_direct_posted"))
	return nil
}
