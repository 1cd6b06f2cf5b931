package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestGetFullDefinition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/support-project/full" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Unexpected auth header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "support-project",
			"name": "Support",
			"tools": {
				"kb-search": {"id": "kb-search", "name": "KB Search"}
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second, zaptest.NewLogger(t))
	def, err := client.GetFullDefinition(context.Background(), "support-project")
	if err != nil {
		t.Fatalf("GetFullDefinition failed: %v", err)
	}

	if def.ID != "support-project" {
		t.Errorf("Expected project id support-project, got %s", def.ID)
	}
	if _, ok := def.Tools["kb-search"]; !ok {
		t.Error("Expected kb-search tool in decoded definition")
	}
}

func TestGetFullDefinition_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "project not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second, zaptest.NewLogger(t))
	if _, err := client.GetFullDefinition(context.Background(), "nope"); err == nil {
		t.Fatal("Expected error for 404 response")
	}
}

func TestGetFullDefinition_InvalidDefinition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "missing id"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second, zaptest.NewLogger(t))
	if _, err := client.GetFullDefinition(context.Background(), "p"); err == nil {
		t.Fatal("Expected validation error for definition without id")
	}
}
