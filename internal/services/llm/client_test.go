package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGenerateRoundTrip(t *testing.T) {
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "0.8", Done: true})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-model", time.Second, 2)
	out, err := client.Generate(context.Background(), "rate this", GenerationOptions{Temperature: 0.1, MaxTokens: 16})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "0.8" {
		t.Errorf("response = %q, want 0.8", out)
	}
	if gotBody.Model != "test-model" {
		t.Errorf("request model = %q", gotBody.Model)
	}
	if gotBody.Stream {
		t.Error("request must disable streaming")
	}
	if gotBody.Prompt != "rate this" {
		t.Errorf("request prompt = %q", gotBody.Prompt)
	}
}

func TestGenerateRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-model", time.Second, 2)
	if _, err := client.Generate(context.Background(), "p", GenerationOptions{}); err == nil {
		t.Fatal("expected error from failing endpoint")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", got)
	}
}

func TestGenerateRecoversOnRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-model", time.Second, 2)
	out, err := client.Generate(context.Background(), "p", GenerationOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "ok" {
		t.Errorf("response = %q, want ok", out)
	}
}
