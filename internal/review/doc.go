// Package review holds the operator-facing moderation queue and the action
// pipeline that drives it.
//
// The Store owns the in-memory queue: the canonical item list in display
// order (priority forum first, then numeric id) plus the note and expansion
// side tables. Apply merges server state without destroying operator-local
// edits; resolving an item removes it and both side-table entries in one
// step.
//
// Each Item carries a three-state draft lifecycle: empty, generating, and
// ready. Generation is optimistic (placeholder in, rollback on failure);
// approve, reject, and direct posting are not, removing the item only after
// the backend confirms.
//
// The Pipeline is the only component that talks to the backend. It never
// retries and never caches failures; every error surfaces to the operator,
// who recovers with a fresh action.
package review
