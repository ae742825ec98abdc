// Package suggestions persists scraped submissions for the backend service.
// Each row is one Reddit submission awaiting curation, keyed by submission
// id, alongside a seen-submission table that keeps the scraper from
// re-queueing anything the operator already resolved.
package suggestions
