package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenRouterService_Complete(t *testing.T) {
	var got chatCompletionRequest
	var authHeader, path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Hello!"}},
			},
		})
	}))
	defer server.Close()

	svc := NewOpenRouterService("test-key", server.URL+"/", 5*time.Second)
	reply, err := svc.Complete(context.Background(), BuildMessages("Hi", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reply != "Hello!" {
		t.Errorf("expected reply 'Hello!', got %q", reply)
	}
	if path != "/chat/completions" {
		t.Errorf("expected /chat/completions, got %q", path)
	}
	if authHeader != "Bearer test-key" {
		t.Errorf("unexpected Authorization header %q", authHeader)
	}
	if got.Model != OpenRouterModel {
		t.Errorf("expected model %q, got %q", OpenRouterModel, got.Model)
	}
	if got.Temperature != Temperature {
		t.Errorf("expected temperature %v, got %v", Temperature, got.Temperature)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != RoleSystem || got.Messages[1].Content != "Hi" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestOpenRouterService_MissingKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewOpenRouterService("", server.URL, time.Second)
	_, err := svc.Complete(context.Background(), BuildMessages("Hi", nil))

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if called {
		t.Fatalf("no request should be sent without a key")
	}
}

func TestOpenRouterService_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		timeout time.Duration
		sleep   time.Duration
	}{
		{"non-success status", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`, time.Second, 0},
		{"malformed body", http.StatusOK, `not json`, time.Second, 0},
		{"error payload", http.StatusOK, `{"error":{"message":"quota exceeded"}}`, time.Second, 0},
		{"no choices", http.StatusOK, `{"choices":[]}`, time.Second, 0},
		{"timeout", http.StatusOK, `{"choices":[]}`, 20 * time.Millisecond, 200 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.sleep > 0 {
					time.Sleep(tc.sleep)
				}
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			svc := NewOpenRouterService("test-key", server.URL, tc.timeout)
			_, err := svc.Complete(context.Background(), BuildMessages("Hi", nil))

			var provErr *ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
		})
	}
}

func TestOpenRouterService_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	svc := NewOpenRouterService("test-key", url, time.Second)
	_, err := svc.Complete(context.Background(), BuildMessages("Hi", nil))

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}
