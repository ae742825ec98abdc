// Package daemon hosts the long-running review session behind the IPC
// socket. It enforces single-instance execution with a file lock, performs
// the initial queue fetch on start, and delegates every operator action to
// the review pipeline. All queue state is in memory and dies with the
// process; the backend remains the source of truth.
package daemon
