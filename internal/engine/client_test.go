package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/VigiaStudios/VigiaGuardGo/pkg/models"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Second},
	}
}

func TestClientRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/register" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"uuid":"uuid-abc"}`))
	}))
	defer srv.Close()

	uuid, err := testClient(srv.URL).Register(context.Background(), "agent/1.0", "127.0.0.1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if uuid != "uuid-abc" {
		t.Errorf("Register() = %q, want %q", uuid, "uuid-abc")
	}
}

func TestClientBlockedPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/blocked-posts/uuid-abc" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("reportType"); got != "spam" {
			t.Errorf("reportType = %q, want %q", got, "spam")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"blockedUsers":[{"postId":"111","userName":"jane-doe","Posturl":"https://example.com/p/111"}]}`))
	}))
	defer srv.Close()

	posts, err := testClient(srv.URL).BlockedPosts(context.Background(), "uuid-abc", models.ReportTypeSpam)
	if err != nil {
		t.Fatalf("BlockedPosts() error = %v", err)
	}
	if len(posts) != 1 || posts[0].PostID != "111" || posts[0].PostURL != "https://example.com/p/111" {
		t.Errorf("BlockedPosts() = %+v, want the decoded entry", posts)
	}
}

func TestClientReportPostConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Post already reported by you"}`))
	}))
	defer srv.Close()

	post := models.BlockedPost{PostID: "111", UserName: "jane-doe", PostURL: "https://example.com/p/111"}
	_, err := testClient(srv.URL).ReportPost(context.Background(), "uuid-abc", post, models.ReportTypeSpam)
	if err == nil {
		t.Fatal("ReportPost() on a duplicate should fail")
	}
}

func TestClientIsPostBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"isBlocked":true}`))
	}))
	defer srv.Close()

	blocked, err := testClient(srv.URL).IsPostBlocked(context.Background(), "uuid-abc", "111")
	if err != nil {
		t.Fatalf("IsPostBlocked() error = %v", err)
	}
	if !blocked {
		t.Error("IsPostBlocked() = false, want true")
	}
}

func TestClientHonorsContextDeadline(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL).Register(ctx, "agent/1.0", "127.0.0.1")
	if err == nil {
		t.Fatal("Register() should fail when the deadline expires")
	}
}
