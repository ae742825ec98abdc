// Package reddit wraps the slice of the Reddit OAuth API the backend needs:
// refresh-token authentication, comment submission, and new-post listings
// with gallery image extraction.
package reddit
