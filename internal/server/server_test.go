package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"curator/internal/api"
	"curator/internal/logging"
	"curator/internal/server"
	"curator/internal/suggestions"
	"curator/internal/testsupport"
)

type fakeGenerator struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Complete(_ context.Context, _, userPrompt string) (string, error) {
	f.lastPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakePoster struct {
	err      error
	posted   map[string]string
	requests int
}

func (f *fakePoster) SubmitComment(_ context.Context, submissionID, text string) error {
	f.requests++
	if f.err != nil {
		return f.err
	}
	if f.posted == nil {
		f.posted = make(map[string]string)
	}
	f.posted[submissionID] = text
	return nil
}

type testBackend struct {
	store     *suggestions.Store
	generator *fakeGenerator
	poster    *fakePoster
	url       string
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := suggestions.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	generator := &fakeGenerator{reply: "Generated comment."}
	poster := &fakePoster{}
	srv, err := server.New(cfg, store, generator, poster, logging.NewNop())
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	httpServer := httptest.NewServer(srv.Handler())
	t.Cleanup(httpServer.Close)

	return &testBackend{store: store, generator: generator, poster: poster, url: httpServer.URL}
}

func (b *testBackend) seed(t *testing.T, id string) {
	t.Helper()
	if _, err := b.store.Insert(context.Background(), suggestions.Record{
		SubmissionID: id,
		Subreddit:    "SMPchat",
		Title:        "Post " + id,
		PostURL:      "https://reddit.com/r/SMPchat/comments/" + id,
		Selftext:     "body text",
		ImageURLs:    []string{"https://i.redd.it/" + id + ".jpg"},
	}); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListReturnsBareArray(t *testing.T) {
	backend := newTestBackend(t)
	backend.seed(t, "1abc")
	backend.seed(t, "2def")

	resp, err := http.Get(backend.url + "/suggestions")
	if err != nil {
		t.Fatalf("GET /suggestions: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var payload []api.Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(payload) != 2 {
		t.Fatalf("unexpected suggestion count: %d", len(payload))
	}
	if payload[0].ImageURLs == nil {
		t.Fatal("image_urls must always be present")
	}
}

func TestListPurgesStaleEntriesFirst(t *testing.T) {
	backend := newTestBackend(t)
	backend.seed(t, "old1")
	backend.seed(t, "new1")
	if err := testsupport.BackdateSuggestion(t, backend.store, "old1", 100*time.Hour); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	resp, err := http.Get(backend.url + "/suggestions")
	if err != nil {
		t.Fatalf("GET /suggestions: %v", err)
	}
	defer resp.Body.Close()

	var payload []api.Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(payload) != 1 || payload[0].ID != "new1" {
		t.Fatalf("stale entry not purged: %+v", payload)
	}
}

func TestAddSuggestionDeduplicates(t *testing.T) {
	backend := newTestBackend(t)
	suggestion := api.Suggestion{
		ID:        "1abc",
		Subreddit: "SMPchat",
		Title:     "Fresh post",
		URL:       "https://reddit.com/r/SMPchat/comments/1abc",
	}

	resp := postJSON(t, backend.url+"/suggestions", suggestion)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first insert should return 201, got %d", resp.StatusCode)
	}

	resp = postJSON(t, backend.url+"/suggestions", suggestion)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("duplicate insert should return 200, got %d", resp.StatusCode)
	}
	var status api.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Status != "duplicate" {
		t.Fatalf("unexpected status: %q", status.Status)
	}
}

func TestGeneratePersistsDraft(t *testing.T) {
	backend := newTestBackend(t)
	backend.seed(t, "1abc")

	resp := postJSON(t, backend.url+"/suggestions/1abc/generate", api.GenerateRequest{UserThought: "keep it short"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var gen api.GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if gen.SuggestedComment != "Generated comment." || gen.ID != "1abc" {
		t.Fatalf("unexpected response: %+v", gen)
	}

	if !strings.Contains(backend.generator.lastPrompt, "keep it short") {
		t.Fatalf("user thought not in prompt:\n%s", backend.generator.lastPrompt)
	}
	if !strings.Contains(backend.generator.lastPrompt, "https://i.redd.it/1abc.jpg") {
		t.Fatalf("image urls not in prompt:\n%s", backend.generator.lastPrompt)
	}

	rec, err := backend.store.Get(context.Background(), "1abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.SuggestedComment != "Generated comment." {
		t.Fatalf("draft not persisted: %q", rec.SuggestedComment)
	}
}

func TestGenerateUnknownIDReturns404(t *testing.T) {
	backend := newTestBackend(t)
	resp := postJSON(t, backend.url+"/suggestions/ghost/generate", api.GenerateRequest{})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	var failure api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if failure.Error == "" {
		t.Fatal("error body should carry a message")
	}
}

func TestGenerateFailureLeavesRowUntouched(t *testing.T) {
	backend := newTestBackend(t)
	backend.seed(t, "1abc")
	backend.generator.err = errors.New("model unavailable")

	resp := postJSON(t, backend.url+"/suggestions/1abc/generate", api.GenerateRequest{})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	rec, err := backend.store.Get(context.Background(), "1abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.SuggestedComment != "" {
		t.Fatalf("failed generation should not persist a draft: %q", rec.SuggestedComment)
	}
}

func TestApproveAndPostRemovesRowAfterSuccess(t *testing.T) {
	backend := newTestBackend(t)
	backend.seed(t, "1abc")

	resp := postJSON(t, backend.url+"/suggestions/1abc/approve-and-post", api.ApproveRequest{ApprovedComment: "final reply"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if backend.poster.posted["1abc"] != "final reply" {
		t.Fatalf("comment not posted: %v", backend.poster.posted)
	}
	if _, err := backend.store.Get(context.Background(), "1abc"); err == nil {
		t.Fatal("row should be removed after posting")
	}

	// The seen marker survives so the scraper never re-queues it.
	seen, err := backend.store.Seen(context.Background(), "1abc")
	if err != nil || !seen {
		t.Fatalf("seen marker lost: %v %v", seen, err)
	}
}

func TestApproveRequiresComment(t *testing.T) {
	backend := newTestBackend(t)
	backend.seed(t, "1abc")

	resp := postJSON(t, backend.url+"/suggestions/1abc/approve-and-post", api.ApproveRequest{ApprovedComment: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if backend.poster.requests != 0 {
		t.Fatal("blank comment must not reach the poster")
	}
}

func TestPostFailureKeepsRow(t *testing.T) {
	backend := newTestBackend(t)
	backend.seed(t, "1abc")
	backend.poster.err = errors.New("reddit down")

	resp := postJSON(t, backend.url+"/suggestions/1abc/post-direct", api.PostDirectRequest{DirectComment: "my note"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if _, err := backend.store.Get(context.Background(), "1abc"); err != nil {
		t.Fatalf("row should survive a failed post: %v", err)
	}
}

func TestDeleteRejectsSuggestion(t *testing.T) {
	backend := newTestBackend(t)
	backend.seed(t, "1abc")

	req, err := http.NewRequest(http.MethodDelete, backend.url+"/suggestions/1abc", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if _, err := backend.store.Get(context.Background(), "1abc"); err == nil {
		t.Fatal("row should be removed after reject")
	}

	req, _ = http.NewRequest(http.MethodDelete, backend.url+"/suggestions/1abc", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE again: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete should 404, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	backend := newTestBackend(t)
	resp, err := http.Get(backend.url + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}
