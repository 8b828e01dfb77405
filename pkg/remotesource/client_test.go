package remotesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-homedash/components/dashboard"
)

func newRemote(t *testing.T, failPath string) *httptest.Server {
	t.Helper()
	responses := map[string]string{
		"/profile":  `{"name":"Sam Rivera","role":"Engineer","preferences":["go","databases"]}`,
		"/activity": `[{"action":"Merged PR","details":"#42","ago_seconds":600}]`,
		"/saved":    `[{"title":"Go blog","url":"https://go.dev/blog"}]`,
		"/stats":    `{"items":[{"label":"Commits","value":12}],"focus_minutes":50}`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected auth header, got %s", got)
		}
		if r.URL.Path == failPath {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPClientSnapshot(t *testing.T) {
	server := newRemote(t, "")
	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	snapshot, err := client.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.User.Name != "Sam Rivera" || len(snapshot.User.Preferences) != 2 {
		t.Fatalf("unexpected user: %#v", snapshot.User)
	}
	if len(snapshot.Activity) != 1 || snapshot.Activity[0].Ago != 10*time.Minute {
		t.Fatalf("unexpected activity: %#v", snapshot.Activity)
	}
	if len(snapshot.SavedItems) != 1 || snapshot.Stats[0].Label != "Commits" {
		t.Fatalf("unexpected snapshot: %#v", snapshot)
	}
	if snapshot.FocusTimer != 50*time.Minute {
		t.Fatalf("expected 50m focus timer, got %s", snapshot.FocusTimer)
	}
}

func TestHTTPClientSectionFailure(t *testing.T) {
	server := newRemote(t, "/saved")
	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected error when a section fails")
	}
}

func TestHTTPClientBehindCache(t *testing.T) {
	server := newRemote(t, "")
	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	cached := dashboard.NewCachedDataSource(client, time.Minute)
	first, err := cached.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	server.Close()
	second, err := cached.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("cached snapshot should not hit the closed server: %v", err)
	}
	if first.User.Name != second.User.Name {
		t.Fatalf("expected cached snapshot")
	}
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(HTTPConfig{}); err == nil {
		t.Fatalf("expected base url error")
	}
}
