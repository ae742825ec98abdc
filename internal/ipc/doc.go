// Package ipc provides JSON-RPC communication between the curator CLI and
// the session daemon over a Unix domain socket. The server wraps the daemon;
// the client offers typed wrappers for every queue operation so command code
// never touches net/rpc directly.
package ipc
