package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionServer(t *testing.T, content string, capture *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []any{
				map[string]any{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCompleteSchemaSendsStrictSchema(t *testing.T) {
	var body map[string]any
	server := completionServer(t, `{"script":"hello"}`, &body)
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithMaxRetries(0))

	content, err := client.CompleteSchema(context.Background(), "system", "user", "script", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("CompleteSchema: %v", err)
	}
	if content != `{"script":"hello"}` {
		t.Fatalf("unexpected content %q", content)
	}
	if body["model"] != defaultModel {
		t.Fatalf("expected default model, got %v", body["model"])
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("expected json_schema format, got %v", format)
	}
}

func TestCompleteJSONEmptyContent(t *testing.T) {
	server := completionServer(t, "", nil)
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo"}, WithMaxRetries(0))
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil || !strings.Contains(err.Error(), "empty content") {
		t.Fatalf("expected empty content error, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := completionServer(t, `{"ok":true}`, nil)
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithMaxRetries(0))
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestCompleteJSONRequiresKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected missing key error")
	}
}
