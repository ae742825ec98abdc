package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"curator/internal/api"
	"curator/internal/review"
	"curator/internal/services"
)

const component = "backend"

// Client talks to the suggestion backend over HTTP. Every method issues
// exactly one request; there are no retries, the operator recovers from a
// failure with a fresh action.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ review.Transport = (*Client)(nil)

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient validates the base URL and builds a backend client.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(trimmed)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "invalid base URL "+baseURL, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ListSuggestions fetches the current queue as review items.
func (c *Client) ListSuggestions(ctx context.Context) ([]review.Item, error) {
	var suggestions []api.Suggestion
	if err := c.do(ctx, http.MethodGet, "/suggestions", nil, &suggestions); err != nil {
		return nil, services.Wrap(services.ErrTransport, component, "list", "fetching suggestions", err)
	}
	return api.ToReviewItems(suggestions), nil
}

// GenerateReply asks the backend to draft a reply for the submission, seeded
// with the operator note.
func (c *Client) GenerateReply(ctx context.Context, id, note string) (string, error) {
	var resp api.GenerateResponse
	path := "/suggestions/" + url.PathEscape(id) + "/generate"
	if err := c.do(ctx, http.MethodPost, path, api.GenerateRequest{UserThought: note}, &resp); err != nil {
		return "", services.Wrap(nil, component, "generate", "generating reply for "+id, err)
	}
	return resp.SuggestedComment, nil
}

// ApproveAndPost submits the final reply text for the submission.
func (c *Client) ApproveAndPost(ctx context.Context, id, reply string) error {
	path := "/suggestions/" + url.PathEscape(id) + "/approve-and-post"
	if err := c.do(ctx, http.MethodPost, path, api.ApproveRequest{ApprovedComment: reply}, nil); err != nil {
		return services.Wrap(nil, component, "approve", "posting reply for "+id, err)
	}
	return nil
}

// Reject discards the suggestion server-side.
func (c *Client) Reject(ctx context.Context, id string) error {
	path := "/suggestions/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return services.Wrap(nil, component, "reject", "rejecting "+id, err)
	}
	return nil
}

// PostDirect posts the operator's own text for the submission, bypassing
// generation.
func (c *Client) PostDirect(ctx context.Context, id, text string) error {
	path := "/suggestions/" + url.PathEscape(id) + "/post-direct"
	if err := c.do(ctx, http.MethodPost, path, api.PostDirectRequest{DirectComment: text}, nil); err != nil {
		return services.Wrap(nil, component, "post direct", "posting note for "+id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError converts a non-2xx response into a classified error, preferring
// the backend's own error message when the body carries one.
func (c *Client) statusError(resp *http.Response) error {
	message := strings.TrimSpace(resp.Status)
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err == nil && len(raw) > 0 {
		var body api.ErrorResponse
		if jsonErr := json.Unmarshal(raw, &body); jsonErr == nil && strings.TrimSpace(body.Error) != "" {
			message = strings.TrimSpace(body.Error)
		}
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", services.ErrNotFound, message)
	}
	return fmt.Errorf("%w: backend returned %d: %s", services.ErrTransport, resp.StatusCode, message)
}
