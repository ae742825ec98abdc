package review_test

import (
	"errors"
	"testing"

	"curator/internal/review"
	"curator/internal/services"
)

func item(id, forum string) review.Item {
	return review.Item{
		ID:          id,
		SourceForum: forum,
		Title:       "Post " + id,
		URL:         "https://reddit.com/r/" + forum + "/comments/" + id,
	}
}

func ids(entries []review.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Item.ID)
	}
	return out
}

func TestApplySortsPriorityForumFirstThenNumericID(t *testing.T) {
	store := review.NewStore("SMPchat")
	store.Apply([]review.Item{
		item("2", "SMPchat"),
		item("1", "Hairloss"),
		item("3", "SMPchat"),
		item("10", "smpchat"),
		item("abc", "SMPchat"),
	})

	got := ids(store.Snapshot())
	want := []string{"2", "3", "10", "abc", "1"}
	if len(got) != len(want) {
		t.Fatalf("unexpected order: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got %v want %v", got, want)
		}
	}
}

func TestApplyPreservesNotesForSurvivingIDs(t *testing.T) {
	store := review.NewStore("SMPchat")
	store.Apply([]review.Item{item("a1", "SMPchat"), item("b2", "Hairloss")})

	if err := store.SetNote("a1", "mention the healing timeline"); err != nil {
		t.Fatalf("SetNote: %v", err)
	}
	if _, err := store.ToggleExpanded("a1"); err != nil {
		t.Fatalf("ToggleExpanded: %v", err)
	}

	// b2 vanishes, c3 is new, a1 survives.
	store.Apply([]review.Item{item("a1", "SMPchat"), item("c3", "bald")})

	note, err := store.Note("a1")
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	if note != "mention the healing timeline" {
		t.Fatalf("note lost across refresh: %q", note)
	}
	entry, err := store.Get("a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !entry.Expanded {
		t.Fatal("expansion flag lost across refresh")
	}

	if _, err := store.Note("b2"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for vanished id, got %v", err)
	}
	newEntry, err := store.Get("c3")
	if err != nil {
		t.Fatalf("Get new id: %v", err)
	}
	if newEntry.Note != "" || newEntry.Expanded {
		t.Fatalf("new id should start with empty side state: %+v", newEntry)
	}
}

func TestApplyDropsSideStateWhenIDVanishesAndReturns(t *testing.T) {
	store := review.NewStore("SMPchat")
	store.Apply([]review.Item{item("a1", "SMPchat")})
	if err := store.SetNote("a1", "old note"); err != nil {
		t.Fatalf("SetNote: %v", err)
	}

	store.Apply(nil)
	store.Apply([]review.Item{item("a1", "SMPchat")})

	note, err := store.Note("a1")
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	if note != "" {
		t.Fatalf("side state should not survive removal, got %q", note)
	}
}

func TestApplyAdoptsServerDraftOnlyWhenLocalIsEmpty(t *testing.T) {
	store := review.NewStore("SMPchat")

	serverItem := item("a1", "SMPchat")
	serverItem.Reply = "server draft"
	store.Apply([]review.Item{serverItem})

	entry, err := store.Get("a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Item.Draft != review.DraftReady || entry.Item.Reply != "server draft" {
		t.Fatalf("expected server draft adopted, got %+v", entry.Item)
	}

	if err := store.SetReply("a1", "edited by operator"); err != nil {
		t.Fatalf("SetReply: %v", err)
	}

	refreshed := item("a1", "SMPchat")
	refreshed.Reply = "stale server draft"
	store.Apply([]review.Item{refreshed})

	entry, err = store.Get("a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Item.Reply != "edited by operator" {
		t.Fatalf("operator edit clobbered by refresh: %q", entry.Item.Reply)
	}
}

func TestSetNoteUnknownIDReturnsNotFound(t *testing.T) {
	store := review.NewStore("SMPchat")
	if err := store.SetNote("ghost", "x"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if _, err := store.ToggleExpanded("ghost"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestSetReplyRequiresExistingDraft(t *testing.T) {
	store := review.NewStore("SMPchat")
	store.Apply([]review.Item{item("a1", "SMPchat")})
	if err := store.SetReply("a1", "text"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty draft, got %v", err)
	}
}

func TestRemoveDropsItemAndSideState(t *testing.T) {
	store := review.NewStore("SMPchat")
	store.Apply([]review.Item{item("a1", "SMPchat"), item("b2", "Hairloss")})
	if err := store.SetNote("a1", "note"); err != nil {
		t.Fatalf("SetNote: %v", err)
	}

	if !store.Remove("a1") {
		t.Fatal("expected Remove to report presence")
	}
	if store.Remove("a1") {
		t.Fatal("second Remove should be a no-op")
	}
	if store.Len() != 1 {
		t.Fatalf("unexpected length after removal: %d", store.Len())
	}
	if _, err := store.Note("a1"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected side state gone, got %v", err)
	}
}

func TestSnapshotDoesNotAliasStoreState(t *testing.T) {
	store := review.NewStore("SMPchat")
	withImages := item("a1", "SMPchat")
	withImages.ImageURLs = []string{"https://i.redd.it/a.jpg"}
	store.Apply([]review.Item{withImages})

	snap := store.Snapshot()
	snap[0].Item.Reply = "mutated"
	snap[0].Item.ImageURLs[0] = "https://evil.example.com"

	entry, err := store.Get("a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Item.Reply == "mutated" {
		t.Fatal("snapshot aliased reply field")
	}
	if entry.Item.ImageURLs[0] != "https://i.redd.it/a.jpg" {
		t.Fatal("snapshot aliased image slice")
	}
}
