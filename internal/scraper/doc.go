// Package scraper feeds the suggestion queue from Reddit new-post listings.
// It applies per-subreddit lookback windows, keyword filtering for
// non-priority forums, and the seen-submission table so nothing is queued
// twice.
package scraper
