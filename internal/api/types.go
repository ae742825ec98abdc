package api

// Suggestion is the wire form of one queued submission. The backend returns a
// bare JSON array of these from GET /suggestions; the same shape is accepted
// on POST /suggestions when the scraper runs out of process.
type Suggestion struct {
	ID               string   `json:"id"`
	Subreddit        string   `json:"subreddit"`
	Title            string   `json:"redditPostTitle"`
	URL              string   `json:"redditPostUrl"`
	Selftext         string   `json:"redditPostSelftext,omitempty"`
	Author           string   `json:"author,omitempty"`
	ImageURLs        []string `json:"image_urls"`
	SuggestedComment string   `json:"suggestedComment,omitempty"`
	CreatedUTC       float64  `json:"created_utc,omitempty"`
	AddedAt          string   `json:"added_at,omitempty"`
}

// GenerateRequest carries the operator's note into draft generation.
type GenerateRequest struct {
	UserThought string `json:"user_thought"`
}

// GenerateResponse returns the generated draft for a submission.
type GenerateResponse struct {
	ID               string `json:"id"`
	SuggestedComment string `json:"suggestedComment"`
}

// ApproveRequest carries the final reply text, edits included, to be posted.
type ApproveRequest struct {
	ApprovedComment string `json:"approved_comment"`
}

// PostDirectRequest carries an operator note to be posted verbatim.
type PostDirectRequest struct {
	DirectComment string `json:"direct_comment"`
}

// StatusResponse wraps a confirmation status string.
type StatusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

// ErrorResponse is the body of every non-2xx backend reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
