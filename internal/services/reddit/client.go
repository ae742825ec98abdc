package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://oauth.reddit.com"
	defaultTokenURL    = "https://www.reddit.com/api/v1/access_token"
	defaultHTTPTimeout = 15 * time.Second
)

// Config captures the OAuth credentials and endpoints for the Reddit API.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	UserAgent    string
	BaseURL      string
	TokenURL     string
	Timeout      time.Duration
}

// Client posts comments and lists submissions through the Reddit OAuth API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     *tokenManager
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
			c.tokens.httpClient = httpClient
		}
	}
}

// NewClient constructs a Reddit client from the supplied credentials.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	cfg.RefreshToken = strings.TrimSpace(cfg.RefreshToken)
	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("reddit client: client id, secret, and refresh token are required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("reddit client: user agent is required")
	}
	if cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL = strings.TrimSpace(cfg.TokenURL); cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	client := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		tokens:     newTokenManager(cfg, httpClient),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Submission is one Reddit post as listed from a subreddit feed.
type Submission struct {
	ID         string
	Subreddit  string
	Title      string
	Selftext   string
	Author     string
	URL        string
	CreatedUTC float64
	ImageURLs  []string
}

// SubmitComment posts a top-level comment on the submission.
func (c *Client) SubmitComment(ctx context.Context, submissionID, text string) error {
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return fmt.Errorf("reddit comment: submission id is required")
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("reddit comment: comment text is required")
	}

	form := url.Values{}
	form.Set("api_type", "json")
	form.Set("thing_id", "t3_"+submissionID)
	form.Set("text", text)

	body, err := c.doForm(ctx, http.MethodPost, "/api/comment", form)
	if err != nil {
		return fmt.Errorf("reddit comment: %w", err)
	}

	var parsed struct {
		JSON struct {
			Errors [][]any `json:"errors"`
		} `json:"json"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("reddit comment: decode response: %w", err)
	}
	if len(parsed.JSON.Errors) > 0 {
		return fmt.Errorf("reddit comment: api error: %s", formatAPIErrors(parsed.JSON.Errors))
	}
	return nil
}

// ListNew returns the newest submissions in a subreddit, up to limit.
func (c *Client) ListNew(ctx context.Context, subreddit string, limit int) ([]Submission, error) {
	subreddit = strings.TrimSpace(subreddit)
	if subreddit == "" {
		return nil, fmt.Errorf("reddit list: subreddit is required")
	}
	if limit <= 0 {
		limit = 25
	}
	path := "/r/" + url.PathEscape(subreddit) + "/new?limit=" + strconv.Itoa(limit) + "&raw_json=1"
	body, err := c.doForm(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("reddit list: %w", err)
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data submissionData `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("reddit list: decode listing: %w", err)
	}

	submissions := make([]Submission, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		submissions = append(submissions, child.Data.toSubmission())
	}
	return submissions, nil
}

func (c *Client) doForm(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// Token may have been revoked out of band; drop the cache so the
		// next call starts with a fresh grant.
		c.tokens.invalidate()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

type submissionData struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	IsSelf      bool    `json:"is_self"`
	IsGallery   bool    `json:"is_gallery"`
	GalleryData struct {
		Items []struct {
			MediaID string `json:"media_id"`
		} `json:"items"`
	} `json:"gallery_data"`
	MediaMetadata map[string]struct {
		S struct {
			U string `json:"u"`
		} `json:"s"`
	} `json:"media_metadata"`
}

func (d submissionData) toSubmission() Submission {
	sub := Submission{
		ID:         d.ID,
		Subreddit:  d.Subreddit,
		Title:      d.Title,
		Selftext:   d.Selftext,
		Author:     d.Author,
		URL:        "https://www.reddit.com" + d.Permalink,
		CreatedUTC: d.CreatedUTC,
		ImageURLs:  d.imageURLs(),
	}
	if d.Permalink == "" {
		sub.URL = d.URL
	}
	return sub
}

// imageURLs extracts direct image links: every gallery entry's source image,
// or the post URL itself when it points straight at an image file.
func (d submissionData) imageURLs() []string {
	if d.IsGallery {
		var urls []string
		for _, item := range d.GalleryData.Items {
			meta, ok := d.MediaMetadata[item.MediaID]
			if !ok {
				continue
			}
			if u := strings.TrimSpace(html.UnescapeString(meta.S.U)); u != "" {
				urls = append(urls, u)
			}
		}
		return urls
	}
	if d.IsSelf {
		return nil
	}
	lower := strings.ToLower(d.URL)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif"} {
		if strings.HasSuffix(lower, ext) {
			return []string{d.URL}
		}
	}
	return nil
}

func formatAPIErrors(errs [][]any) string {
	parts := make([]string, 0, len(errs))
	for _, entry := range errs {
		fields := make([]string, 0, len(entry))
		for _, field := range entry {
			if s, ok := field.(string); ok && s != "" {
				fields = append(fields, s)
			}
		}
		if len(fields) > 0 {
			parts = append(parts, strings.Join(fields, " "))
		}
	}
	if len(parts) == 0 {
		return "unknown error"
	}
	return strings.Join(parts, "; ")
}
