// Package script writes the narration script for a video topic.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reelsmith/internal/config"
	"reelsmith/internal/generate"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

const systemPrompt = `You write narration scripts for short tech videos.
Write in this voice: %s. Be fast-paced, humorous and self-aware while breaking complex ideas into digestible explanations.
Use relatable analogies and sharp commentary, and end with one clear takeaway.
The script must take %d to %d minutes to read aloud.
Write narration only: no emojis, no headings, no stage directions, no visual cues.
Respond with JSON only: {"script": "<the narration as a single string>"}`

type scriptResponse struct {
	Script string `json:"script" jsonschema_description:"The full narration as plain text"`
}

// Generator produces narration scripts.
type Generator struct {
	client generate.Client
	cfg    config.Script
	logger *slog.Logger
}

// NewGenerator builds a generator using the script settings in cfg.
func NewGenerator(client generate.Client, cfg config.Script, logger *slog.Logger) *Generator {
	return &Generator{client: client, cfg: cfg, logger: logging.NewComponentLogger(logger, "script")}
}

// Generate returns narration text for topic.
func (g *Generator) Generate(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", services.Wrap(services.ErrValidation, "scripting", "generate", "topic is empty", nil)
	}
	var resp scriptResponse
	req := generate.Request{
		Name:   "video script",
		System: g.systemPrompt(),
		User:   "Write the script about: " + topic,
		Shape:  scriptResponse{},
	}
	if err := generate.Complete(ctx, g.client, req, &resp); err != nil {
		return "", err
	}
	text := Clean(resp.Script)
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "scripting", "generate", "model returned an empty script", nil)
	}
	g.logger.Info("script generated",
		logging.Int("words", len(strings.Fields(text))),
		logging.String("topic", topic),
	)
	return text, nil
}

func (g *Generator) systemPrompt() string {
	style := strings.TrimSpace(g.cfg.Style)
	if style == "" {
		style = "witty tech explainer"
	}
	minMinutes, maxMinutes := g.cfg.MinMinutes, g.cfg.MaxMinutes
	if minMinutes <= 0 {
		minMinutes = 1
	}
	if maxMinutes < minMinutes {
		maxMinutes = minMinutes
	}
	return fmt.Sprintf(systemPrompt, style, minMinutes, maxMinutes)
}

// Clean collapses blank-line runs, strips surrounding quotes and trims
// whitespace so the text reads cleanly through speech synthesis.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"")
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
