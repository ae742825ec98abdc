package reddit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// newTestClient wires both the API and token endpoints to one test server.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		UserAgent:    "curator/test",
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/api/v1/access_token",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func serveToken(t *testing.T, w http.ResponseWriter, r *http.Request) {
	t.Helper()
	user, pass, ok := r.BasicAuth()
	if !ok || user != "id" || pass != "secret" {
		t.Errorf("missing basic auth: %q %q", user, pass)
	}
	if err := r.ParseForm(); err != nil {
		t.Errorf("parse token form: %v", err)
	}
	if r.PostForm.Get("grant_type") != "refresh_token" || r.PostForm.Get("refresh_token") != "refresh" {
		t.Errorf("unexpected grant form: %v", r.PostForm)
	}
	json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
}

func TestSubmitCommentPostsWithBearerToken(t *testing.T) {
	var commentForm url.Values
	tokenCalls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/access_token":
			tokenCalls++
			serveToken(t, w, r)
		case "/api/comment":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("missing bearer token: %q", got)
			}
			if got := r.Header.Get("User-Agent"); got != "curator/test" {
				t.Errorf("missing user agent: %q", got)
			}
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse comment form: %v", err)
			}
			commentForm = r.PostForm
			w.Write([]byte(`{"json":{"errors":[]}}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	if err := client.SubmitComment(context.Background(), "1abc", "solid work"); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}
	if commentForm.Get("thing_id") != "t3_1abc" || commentForm.Get("text") != "solid work" {
		t.Fatalf("unexpected comment form: %v", commentForm)
	}

	// Second call reuses the cached token.
	if err := client.SubmitComment(context.Background(), "1abc", "again"); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}
	if tokenCalls != 1 {
		t.Fatalf("token should be cached, saw %d grants", tokenCalls)
	}
}

func TestSubmitCommentSurfacesAPIErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/access_token" {
			serveToken(t, w, r)
			return
		}
		w.Write([]byte(`{"json":{"errors":[["RATELIMIT","you are doing that too much","ratelimit"]]}}`))
	})

	err := client.SubmitComment(context.Background(), "1abc", "text")
	if err == nil || !strings.Contains(err.Error(), "RATELIMIT") {
		t.Fatalf("api error not surfaced: %v", err)
	}
}

func TestListNewExtractsGalleryImages(t *testing.T) {
	listing := `{"data":{"children":[
		{"data":{"id":"1abc","subreddit":"SMPchat","title":"Gallery post","author":"artist","permalink":"/r/SMPchat/comments/1abc/","created_utc":1724900000,
			"is_gallery":true,
			"gallery_data":{"items":[{"media_id":"m1"},{"media_id":"m2"}]},
			"media_metadata":{"m1":{"s":{"u":"https://preview.redd.it/a.jpg?width=640&amp;s=abc"}},"m2":{"s":{"u":"https://preview.redd.it/b.jpg"}}}}},
		{"data":{"id":"2def","subreddit":"SMPchat","title":"Direct image","permalink":"/r/SMPchat/comments/2def/","url":"https://i.redd.it/c.PNG","is_self":false}},
		{"data":{"id":"3ghi","subreddit":"SMPchat","title":"Text post","selftext":"just a question","permalink":"/r/SMPchat/comments/3ghi/","is_self":true}}
	]}}`
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/access_token":
			serveToken(t, w, r)
		case "/r/SMPchat/new":
			if got := r.URL.Query().Get("limit"); got != "50" {
				t.Errorf("limit not forwarded: %q", got)
			}
			w.Write([]byte(listing))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	subs, err := client.ListNew(context.Background(), "SMPchat", 50)
	if err != nil {
		t.Fatalf("ListNew: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("unexpected submission count: %d", len(subs))
	}

	gallery := subs[0]
	if len(gallery.ImageURLs) != 2 {
		t.Fatalf("gallery images not extracted: %v", gallery.ImageURLs)
	}
	if gallery.ImageURLs[0] != "https://preview.redd.it/a.jpg?width=640&s=abc" {
		t.Fatalf("html entities not unescaped: %q", gallery.ImageURLs[0])
	}
	if gallery.URL != "https://www.reddit.com/r/SMPchat/comments/1abc/" {
		t.Fatalf("permalink not expanded: %q", gallery.URL)
	}

	direct := subs[1]
	if len(direct.ImageURLs) != 1 || direct.ImageURLs[0] != "https://i.redd.it/c.PNG" {
		t.Fatalf("direct image not extracted: %v", direct.ImageURLs)
	}

	text := subs[2]
	if len(text.ImageURLs) != 0 {
		t.Fatalf("self post should have no images: %v", text.ImageURLs)
	}
}

func TestTokenRefreshesAfterExpiry(t *testing.T) {
	tokenCalls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/access_token" {
			tokenCalls++
			json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
			return
		}
		w.Write([]byte(`{"json":{"errors":[]}}`))
	})

	now := time.Now()
	client.tokens.now = func() time.Time { return now }

	if err := client.SubmitComment(context.Background(), "1abc", "first"); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}
	// Advance past the expiry slack window.
	now = now.Add(3600 * time.Second)
	if err := client.SubmitComment(context.Background(), "1abc", "second"); err != nil {
		t.Fatalf("SubmitComment: %v", err)
	}
	if tokenCalls != 2 {
		t.Fatalf("expected a fresh grant after expiry, saw %d", tokenCalls)
	}
}

func TestNewClientValidatesCredentials(t *testing.T) {
	if _, err := NewClient(Config{ClientID: "id", ClientSecret: "secret", UserAgent: "ua"}); err == nil {
		t.Fatal("expected error for missing refresh token")
	}
	if _, err := NewClient(Config{ClientID: "id", ClientSecret: "secret", RefreshToken: "r"}); err == nil {
		t.Fatal("expected error for missing user agent")
	}
}
