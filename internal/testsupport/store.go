package testsupport

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"curator/internal/suggestions"
)

// MustOpenStore opens a suggestion store backed by a per-test database.
func MustOpenStore(t testing.TB, opts ...ConfigOption) *suggestions.Store {
	t.Helper()
	cfg := NewConfig(t, opts...)
	store, err := suggestions.Open(cfg)
	if err != nil {
		t.Fatalf("open suggestion store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close suggestion store: %v", err)
		}
	})
	return store
}

// BackdateSuggestion rewrites a row's added_at so retention tests can age
// entries without sleeping. It opens its own connection to the store's
// database file.
func BackdateSuggestion(t testing.TB, store *suggestions.Store, id string, age time.Duration) error {
	t.Helper()
	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		return err
	}
	defer db.Close()

	stamped := time.Now().UTC().Add(-age).Format("2006-01-02 15:04:05")
	_, err = db.Exec(`UPDATE suggestions SET added_at = ? WHERE submission_id = ?`, stamped, id)
	return err
}
