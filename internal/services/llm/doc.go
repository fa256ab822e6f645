// Package llm provides an OpenRouter chat client that returns JSON payloads.
//
// Script generation and keyword extraction both go through this client when
// llm.provider is "openrouter".
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive a JSON response.
// Client.CompleteSchema: same, with a strict json_schema response format.
// Client.HealthCheck: verify API key and model availability.
// DecodeJSON: decode a payload, tolerating code fences and chatter.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty content and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Context cancellation aborts retries immediately.
package llm
