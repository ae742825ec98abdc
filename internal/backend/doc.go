// Package backend implements the HTTP transport to the suggestion service.
// It is the session daemon's only network dependency: one request per
// pipeline action, no retries, errors classified through the shared sentinel
// markers so callers can tell a missing id from a transport fault.
package backend
