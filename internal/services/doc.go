// Package services defines shared utilities consumed by the action pipeline
// and external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (validation vs transport vs not-found) uniform across
//     the pipeline, IPC surface, and HTTP server.
//   - Context helpers that stamp suggestion ids and correlation identifiers
//     for logging and tracing.
//
// Use these helpers when wiring new actions so operational behaviour stays
// consistent: validation failures never touch the network, transport failures
// never mutate local state.
package services
