package review

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"curator/internal/services"
)

// Entry is a read-only snapshot of one queue item plus its operator-local
// side state.
type Entry struct {
	Item     Item
	Note     string
	Expanded bool
	Priority bool
}

// Store holds the reviewed queue in memory: the canonical item list plus the
// operator note and expansion side tables keyed by item id.
//
// Apply is the only way the list changes shape. It merges freshly fetched
// server state while preserving operator-local state for surviving ids:
// notes and expansion flags always survive, and an in-flight or edited draft
// is never clobbered by the server copy. Ids that vanish from the server
// drop their side-table entries in the same pass, so the tables never grow
// past the live queue.
type Store struct {
	mu            sync.Mutex
	priorityForum string
	items         []*Item
	notes         map[string]string
	expanded      map[string]bool
}

// NewStore builds an empty store that sorts the configured forum first.
func NewStore(priorityForum string) *Store {
	return &Store{
		priorityForum: strings.TrimSpace(priorityForum),
		notes:         make(map[string]string),
		expanded:      make(map[string]bool),
	}
}

// PriorityForum returns the forum pinned to the top of the queue.
func (s *Store) PriorityForum() string {
	return s.priorityForum
}

// Apply merges fetched server items into the store and swaps in the freshly
// sorted list atomically.
func (s *Store) Apply(incoming []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]*Item, len(s.items))
	for _, item := range s.items {
		existing[item.ID] = item
	}

	next := make([]*Item, 0, len(incoming))
	survivors := make(map[string]struct{}, len(incoming))
	for i := range incoming {
		item := incoming[i].Clone()
		normalizeIncoming(item)
		if prev, ok := existing[item.ID]; ok && prev.Draft != DraftEmpty {
			// Keep the operator's draft (or the in-flight generation) over
			// whatever the server last persisted.
			item.Reply = prev.Reply
			item.Draft = prev.Draft
		}
		next = append(next, item)
		survivors[item.ID] = struct{}{}
	}

	for id := range s.notes {
		if _, ok := survivors[id]; !ok {
			delete(s.notes, id)
		}
	}
	for id := range s.expanded {
		if _, ok := survivors[id]; !ok {
			delete(s.expanded, id)
		}
	}

	s.sortLocked(next)
	s.items = next
}

func (s *Store) sortLocked(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return s.less(items[i], items[j])
	})
}

func (s *Store) less(a, b *Item) bool {
	ap := s.isPriority(a.SourceForum)
	bp := s.isPriority(b.SourceForum)
	if ap != bp {
		return ap
	}
	return idBefore(a.ID, b.ID)
}

func (s *Store) isPriority(forum string) bool {
	return s.priorityForum != "" && strings.EqualFold(forum, s.priorityForum)
}

// idBefore orders numeric ids ascending; ids that do not parse as integers
// sort after all numeric ids, lexicographically among themselves.
func idBefore(a, b string) bool {
	av, aerr := strconv.ParseInt(a, 10, 64)
	bv, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		if av != bv {
			return av < bv
		}
		return a < b
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// SetNote records the operator note for an item.
func (s *Store) SetNote(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return services.Wrap(services.ErrNotFound, "store", "note", "unknown item "+id, nil)
	}
	s.notes[id] = text
	return nil
}

// Note returns the operator note for an item, empty when unset.
func (s *Store) Note(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return "", services.Wrap(services.ErrNotFound, "store", "note", "unknown item "+id, nil)
	}
	return s.notes[id], nil
}

// ToggleExpanded flips the detail expansion flag and returns the new value.
func (s *Store) ToggleExpanded(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return false, services.Wrap(services.ErrNotFound, "store", "expand", "unknown item "+id, nil)
	}
	s.expanded[id] = !s.expanded[id]
	return s.expanded[id], nil
}

// SetReply replaces the draft text of a ready item. Manual edits carry no
// further validation; approve preconditions apply at approve time.
func (s *Store) SetReply(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.findLocked(id)
	if item == nil {
		return services.Wrap(services.ErrNotFound, "store", "edit", "unknown item "+id, nil)
	}
	if item.Draft != DraftReady {
		return services.Wrap(services.ErrValidation, "store", "edit", "no draft to edit for item "+id, nil)
	}
	item.Reply = text
	return nil
}

// beginGenerate transitions an item into the generating state, placing the
// placeholder in the reply field. Fails when the item is missing or already
// carries a draft.
func (s *Store) beginGenerate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.findLocked(id)
	if item == nil {
		return services.Wrap(services.ErrNotFound, "store", "generate", "unknown item "+id, nil)
	}
	switch item.Draft {
	case DraftGenerating:
		return services.Wrap(services.ErrValidation, "store", "generate", "generation already in flight for item "+id, nil)
	case DraftReady:
		return services.Wrap(services.ErrValidation, "store", "generate", "item "+id+" already has a draft", nil)
	}
	item.Draft = DraftGenerating
	item.Reply = GeneratingPlaceholder
	return nil
}

// completeGenerate installs the generated draft. A no-op when the item was
// removed by a refresh while the call was in flight.
func (s *Store) completeGenerate(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.findLocked(id)
	if item == nil || item.Draft != DraftGenerating {
		return
	}
	item.Reply = strings.TrimSpace(text)
	item.Draft = DraftReady
}

// failGenerate reverts an in-flight generation to the empty state so the
// placeholder never outlives its call.
func (s *Store) failGenerate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.findLocked(id)
	if item == nil || item.Draft != DraftGenerating {
		return
	}
	item.Reply = ""
	item.Draft = DraftEmpty
}

// approvableReply validates the approve preconditions and returns the reply
// text that would be posted.
func (s *Store) approvableReply(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.findLocked(id)
	if item == nil {
		return "", services.Wrap(services.ErrNotFound, "store", "approve", "unknown item "+id, nil)
	}
	if item.Draft == DraftGenerating {
		return "", services.Wrap(services.ErrValidation, "store", "approve", "generation in flight for item "+id, nil)
	}
	reply, ok := item.ApprovableReply()
	if !ok {
		return "", services.Wrap(services.ErrValidation, "store", "approve", "item "+id+" has no usable draft", nil)
	}
	return reply, nil
}

// Remove drops an item and both side-table entries in one step. It reports
// whether the item was present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			delete(s.notes, id)
			delete(s.expanded, id)
			return true
		}
	}
	return false
}

// Get returns a snapshot of one entry.
func (s *Store) Get(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.findLocked(id)
	if item == nil {
		return Entry{}, services.Wrap(services.ErrNotFound, "store", "get", "unknown item "+id, nil)
	}
	return s.entryLocked(item), nil
}

// Contains reports whether the id is currently queued.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id) != nil
}

// Snapshot returns the queue in display order.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, 0, len(s.items))
	for _, item := range s.items {
		entries = append(entries, s.entryLocked(item))
	}
	return entries
}

// Len returns the number of queued items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Stats counts items per draft state.
func (s *Store) Stats() map[DraftState]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := make(map[DraftState]int, 3)
	for _, item := range s.items {
		stats[item.Draft]++
	}
	return stats
}

func (s *Store) entryLocked(item *Item) Entry {
	return Entry{
		Item:     *item.Clone(),
		Note:     s.notes[item.ID],
		Expanded: s.expanded[item.ID],
		Priority: s.isPriority(item.SourceForum),
	}
}

func (s *Store) findLocked(id string) *Item {
	for _, item := range s.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}
