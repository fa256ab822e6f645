package generate

import (
	"context"
	"errors"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/services"
	"reelsmith/internal/services/llm"
	"reelsmith/internal/services/openai"
)

type fakeClient struct {
	content    string
	err        error
	schemaName string
	schema     any
}

func (f *fakeClient) CompleteJSON(context.Context, string, string) (string, error) {
	return f.content, f.err
}

func (f *fakeClient) HealthCheck(context.Context) error { return nil }

type fakeSchemaClient struct{ fakeClient }

func (f *fakeSchemaClient) CompleteSchema(_ context.Context, _, _, name string, schema any) (string, error) {
	f.schemaName = name
	f.schema = schema
	return f.content, f.err
}

type payload struct {
	Script string `json:"script" jsonschema_description:"narration"`
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	client, err := New(&cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := client.(*llm.Client); !ok {
		t.Fatalf("expected openrouter client, got %T", client)
	}

	cfg.LLM.Provider = config.ProviderOpenAI
	client, err = New(&cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := client.(*openai.Client); !ok {
		t.Fatalf("expected openai client, got %T", client)
	}

	cfg.LLM.Provider = "bogus"
	if _, err := New(&cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCompleteUsesSchemaWhenSupported(t *testing.T) {
	client := &fakeSchemaClient{fakeClient{content: `{"script":"hi"}`}}
	var out payload
	if err := Complete(context.Background(), client, Request{Name: "video script", System: "s", User: "u", Shape: payload{}}, &out); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.Script != "hi" {
		t.Fatalf("unexpected decode %+v", out)
	}
	if client.schemaName != "video_script" {
		t.Fatalf("unexpected schema name %q", client.schemaName)
	}
	schema, _ := client.schema.(map[string]any)
	if schema["type"] != "object" || schema["additionalProperties"] != false {
		t.Fatalf("unexpected schema %v", schema)
	}
}

func TestCompleteFallsBackToJSON(t *testing.T) {
	client := &fakeClient{content: "```json\n{\"script\":\"fenced\"}\n```"}
	var out payload
	if err := Complete(context.Background(), client, Request{System: "s", User: "u", Shape: payload{}}, &out); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.Script != "fenced" {
		t.Fatalf("unexpected decode %+v", out)
	}
}

func TestCompleteClassifiesErrors(t *testing.T) {
	var out payload
	err := Complete(context.Background(), &fakeClient{err: errors.New("boom")}, Request{}, &out)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	err = Complete(context.Background(), &fakeClient{content: "not json"}, Request{}, &out)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := Complete(context.Background(), nil, Request{}, &out); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
