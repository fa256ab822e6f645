package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type scriptPayload struct {
	Script string `json:"script"`
}

func chatServer(t *testing.T, choice map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"choices": []any{choice}}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("X-Title"); got != "reelsmith" {
			t.Errorf("unexpected title header %q", got)
		}
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": `{"ok":true}`}},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", Title: "reelsmith"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
}

func TestCompleteJSONRequiresKey(t *testing.T) {
	client := NewClient(Config{Model: "demo"})
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestCompleteJSONCodeFence(t *testing.T) {
	server := chatServer(t, map[string]any{
		"message": map[string]any{"content": "```json\n{\"script\":\"Kubernetes walks into a bar.\"}\n```"},
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	content, err := client.CompleteJSON(context.Background(), "system", "write a script")
	if err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	var parsed scriptPayload
	if err := DecodeJSON(content, &parsed); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if parsed.Script != "Kubernetes walks into a bar." {
		t.Fatalf("unexpected script %q", parsed.Script)
	}
}

func TestCompleteJSONFallbackShapes(t *testing.T) {
	tests := map[string]map[string]any{
		"tool_calls": {
			"finish_reason": "tool_calls",
			"message": map[string]any{
				"content": "",
				"tool_calls": []any{
					map[string]any{
						"type":     "function",
						"id":       "call_1",
						"function": map[string]any{"name": "script", "arguments": `{"script":"tool"}`},
					},
				},
			},
		},
		"delta": {
			"delta": map[string]any{"content": `{"script":"delta"}`},
		},
		"legacy_text": {
			"finish_reason": "stop",
			"text":          `{"script":"legacy"}`,
		},
	}
	for name, choice := range tests {
		t.Run(name, func(t *testing.T) {
			server := chatServer(t, choice)
			client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
			content, err := client.CompleteJSON(context.Background(), "system", "user")
			if err != nil {
				t.Fatalf("CompleteJSON returned error: %v", err)
			}
			var parsed scriptPayload
			if err := DecodeJSON(content, &parsed); err != nil || parsed.Script == "" {
				t.Fatalf("expected decodable script, got %q (%v)", content, err)
			}
		})
	}
}

func TestCompleteJSONEmptyContentHasSnippet(t *testing.T) {
	server := chatServer(t, map[string]any{
		"finish_reason": "stop",
		"message":       map[string]any{"content": ""},
	})
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
	)
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected completion to fail")
	}
	if !strings.Contains(err.Error(), "empty content") || !strings.Contains(err.Error(), "response_snippet=") {
		t.Fatalf("expected empty-content error to include snippet, got %v", err)
	}
}

func TestCompleteSchemaSendsJSONSchemaFormat(t *testing.T) {
	var format map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ResponseFormat map[string]any `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		format = body.ResponseFormat
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"script":"ok"}`}}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	schema := map[string]any{"type": "object"}
	if _, err := client.CompleteSchema(context.Background(), "system", "user", "script", schema); err != nil {
		t.Fatalf("CompleteSchema returned error: %v", err)
	}
	if format["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", format)
	}
	spec, _ := format["json_schema"].(map[string]any)
	if spec["name"] != "script" || spec["strict"] != true {
		t.Fatalf("unexpected json_schema block %v", spec)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"script":"retry"}`}}},
		})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err != nil {
		t.Fatalf("CompleteJSON returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestDecodeJSONExtractsArray(t *testing.T) {
	var parsed []map[string]any
	if err := DecodeJSON("```json\n[{\"keyword\":\"cloud\"}]\n```", &parsed); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if len(parsed) != 1 || parsed[0]["keyword"] != "cloud" {
		t.Fatalf("unexpected payload %v", parsed)
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	p := retryPolicy{attempts: 5, base: time.Second, ceiling: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second}
	for i, w := range want {
		if got := p.backoff(i + 1); got != w {
			t.Fatalf("backoff(%d) = %s, want %s", i+1, got, w)
		}
	}
	if _, retry := p.next(context.Background(), &statusError{Code: http.StatusBadRequest}, 1); retry {
		t.Fatal("400 should not be retried")
	}
	if d, retry := p.next(context.Background(), &statusError{Code: http.StatusServiceUnavailable, RetryAfter: time.Minute}, 1); !retry || d != 5*time.Second {
		t.Fatalf("expected capped Retry-After, got %s %v", d, retry)
	}
	if _, retry := p.next(context.Background(), &emptyContentError{}, 5); retry {
		t.Fatal("final attempt should not be retried")
	}
}

func TestDecodeJSONExtractsObjectFromChatter(t *testing.T) {
	var parsed scriptPayload
	if err := DecodeJSON("Sure! Here it is: {\"script\":\"hi\"} Enjoy.", &parsed); err != nil || parsed.Script != "hi" {
		t.Fatalf("unexpected decode %q (%v)", parsed.Script, err)
	}
	if err := DecodeJSON("no json here", &parsed); err == nil || !strings.Contains(err.Error(), "payload snippet") {
		t.Fatalf("expected snippet error, got %v", err)
	}
}
