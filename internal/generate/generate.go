// Package generate selects the configured LLM backend and issues JSON
// requests against it.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"reelsmith/internal/config"
	"reelsmith/internal/services"
	"reelsmith/internal/services/llm"
	"reelsmith/internal/services/openai"
)

// Client is a JSON completion backend.
type Client interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	HealthCheck(ctx context.Context) error
}

// SchemaCompleter is implemented by backends that accept a JSON schema
// response format.
type SchemaCompleter interface {
	CompleteSchema(ctx context.Context, systemPrompt, userPrompt, name string, schema any) (string, error)
}

// Request describes one completion. Shape, when set, is a value whose type is
// reflected into the response schema.
type Request struct {
	Name   string
	System string
	User   string
	Shape  any
}

// New builds the backend selected by cfg.LLM.Provider.
func New(cfg *config.Config) (Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "generate", "new client", "config is nil", nil)
	}
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}), nil
	case config.ProviderOpenRouter, "":
		return llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "generate", "new client",
			fmt.Sprintf("unsupported llm provider %q", cfg.LLM.Provider), nil)
	}
}

// Complete sends req and decodes the JSON reply into target.
func Complete(ctx context.Context, client Client, req Request, target any) error {
	if client == nil {
		return services.Wrap(services.ErrConfiguration, "generate", "complete", "llm client unavailable", nil)
	}
	var (
		content string
		err     error
	)
	if sc, ok := client.(SchemaCompleter); ok && req.Shape != nil {
		schema, schemaErr := Schema(req.Shape)
		if schemaErr != nil {
			return schemaErr
		}
		content, err = sc.CompleteSchema(ctx, req.System, req.User, schemaName(req.Name), schema)
	} else {
		content, err = client.CompleteJSON(ctx, req.System, req.User)
	}
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "generate", "complete", req.Name, err)
	}
	if err := llm.DecodeJSON(content, target); err != nil {
		return services.Wrap(services.ErrValidation, "generate", "decode", req.Name, err)
	}
	return nil
}

// Schema reflects shape's type into a JSON schema document with inline
// definitions and no additional properties.
func Schema(shape any) (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	data, err := json.Marshal(reflector.Reflect(shape))
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	return schema, nil
}

func schemaName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "response"
	}
	return strings.ReplaceAll(name, " ", "_")
}
