package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAdminClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
		case "/ready":
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{"status": "not_ready", "error": "store: closed"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL+"/", time.Second)

	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}

	ready, err := c.Ready(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("Ready err = %v, want 503", err)
	}
	if ready["status"] != "not_ready" {
		t.Errorf("ready body = %v", ready)
	}
}

func TestNewAdminClient_AddsScheme(t *testing.T) {
	c := NewAdminClient("127.0.0.1:5580", 0)
	if c.baseURL != "http://127.0.0.1:5580" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v", c.httpClient.Timeout)
	}
}
