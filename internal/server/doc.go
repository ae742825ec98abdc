// Package server implements the backend HTTP service. It owns the suggestion
// database and performs the two outward actions on behalf of review
// sessions: drafting replies through the LLM and posting approved comments
// to Reddit. Listing purges entries past the retention window first, so
// clients only ever see live suggestions.
package server
