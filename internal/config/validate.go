package config

import (
	"errors"
	"fmt"
	"strings"

	"reelsmith/internal/language"
)

// Validate ensures the configuration is usable. Service credentials are not
// required here; stages report missing keys through their health checks so
// offline commands such as align keep working without them.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateScript(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":    c.LLM.TimeoutSeconds,
		"speech.timeout_seconds": c.Speech.TimeoutSeconds,
		"media.timeout_seconds":  c.Media.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Keywords.RequestDelayMS < 0 {
		return errors.New("keywords.request_delay_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenRouter, ProviderOpenAI:
	default:
		return fmt.Errorf("llm.provider %q is not supported (use %q or %q)", c.LLM.Provider, ProviderOpenRouter, ProviderOpenAI)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	return nil
}

func (c *Config) validateScript() error {
	if c.Script.MinMinutes <= 0 {
		return errors.New("script.min_minutes must be positive")
	}
	if c.Script.MaxMinutes < c.Script.MinMinutes {
		return errors.New("script.max_minutes must be >= script.min_minutes")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method %q is not supported (use silero or pyannote)", c.Transcription.VADMethod)
	}
	code, err := language.Normalize(c.Transcription.Language)
	if err != nil {
		return fmt.Errorf("transcription.language: %w", err)
	}
	if !language.Alignable(code) {
		return fmt.Errorf("transcription.language %q (%s) has no word alignment model", code, language.DisplayName(code))
	}
	return nil
}

func (c *Config) validateRender() error {
	if err := ensurePositiveMap(map[string]int{
		"render.width":     c.Render.Width,
		"render.height":    c.Render.Height,
		"render.fps":       c.Render.FPS,
		"render.font_size": c.Render.FontSize,
	}); err != nil {
		return err
	}
	if c.Render.Height <= 40 {
		return errors.New("render.height must be greater than 40")
	}
	if c.Render.CRF < 0 || c.Render.CRF > 51 {
		return errors.New("render.crf must be between 0 and 51")
	}
	if strings.TrimSpace(c.Render.Preset) == "" {
		return errors.New("render.preset must be set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
