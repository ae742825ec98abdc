// Package api defines the JSON payloads shared by the backend HTTP service
// and its clients, plus converters between wire suggestions and queue items.
//
// The types here are transport-shaped: field names match the backend contract
// exactly, including the mixed naming the suggestion record carries. Session
// semantics live in the review package; this package only translates.
package api
