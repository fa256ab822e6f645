package config

import (
	"fmt"
	"os"
	"strings"

	"reelsmith/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeSpeech()
	c.normalizeTranscription()
	c.normalizeMedia()
	c.normalizeRender()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		c.Paths.WorkspaceDir = defaultWorkspaceDir
	}
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WhisperXCacheDir) == "" {
		c.Paths.WhisperXCacheDir = defaultWhisperXCacheDir
	}
	if c.Paths.WhisperXCacheDir, err = expandPath(c.Paths.WhisperXCacheDir); err != nil {
		return fmt.Errorf("paths.whisperx_cache_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Alignment.MediaRoot = strings.TrimSpace(c.Alignment.MediaRoot)
	if c.Alignment.MediaRoot == "" {
		c.Alignment.MediaRoot = defaultMediaRoot
	}
	if strings.HasPrefix(c.Alignment.MediaRoot, "~") {
		if c.Alignment.MediaRoot, err = expandPath(c.Alignment.MediaRoot); err != nil {
			return fmt.Errorf("alignment.media_root: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	switch c.LLM.Provider {
	case ProviderOpenAI:
		// The OpenRouter defaults do not apply to the OpenAI SDK.
		if c.LLM.BaseURL == defaultOpenRouterBaseURL {
			c.LLM.BaseURL = ""
		}
		if c.LLM.Model == "" || c.LLM.Model == defaultOpenRouterModel {
			c.LLM.Model = defaultOpenAIModel
		}
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = envValue("OPENAI_API_KEY")
		}
	default:
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultOpenRouterBaseURL
		}
		if c.LLM.Model == "" {
			c.LLM.Model = defaultOpenRouterModel
		}
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = envValue("OPENROUTER_API_KEY")
		}
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeSpeech() {
	c.Speech.APIKey = strings.TrimSpace(c.Speech.APIKey)
	if c.Speech.APIKey == "" {
		c.Speech.APIKey = envValue("ELEVENLABS_API_KEY")
	}
	c.Speech.BaseURL = strings.TrimRight(strings.TrimSpace(c.Speech.BaseURL), "/")
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = defaultSpeechBaseURL
	}
	if strings.TrimSpace(c.Speech.VoiceID) == "" {
		c.Speech.VoiceID = defaultSpeechVoiceID
	}
	if strings.TrimSpace(c.Speech.ModelID) == "" {
		c.Speech.ModelID = defaultSpeechModelID
	}
	if strings.TrimSpace(c.Speech.OutputFormat) == "" {
		c.Speech.OutputFormat = defaultSpeechOutputFormat
	}
	if c.Speech.TimeoutSeconds <= 0 {
		c.Speech.TimeoutSeconds = defaultSpeechTimeout
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultTranscriptionVAD
	}
	c.Transcription.HFToken = strings.TrimSpace(c.Transcription.HFToken)
	if c.Transcription.HFToken == "" {
		if value := envValue("HUGGING_FACE_HUB_TOKEN"); value != "" {
			c.Transcription.HFToken = value
		} else {
			c.Transcription.HFToken = envValue("HF_TOKEN")
		}
	}
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if c.Transcription.Language == "" {
		c.Transcription.Language = defaultTranscriptionLang
	} else if code, err := language.Normalize(c.Transcription.Language); err == nil {
		c.Transcription.Language = code
	}
	if strings.TrimSpace(c.Transcription.Model) == "" {
		c.Transcription.Model = defaultTranscriptionModel
	}
}

func (c *Config) normalizeMedia() {
	fill := func(target *string, env string) {
		*target = strings.TrimSpace(*target)
		if *target == "" {
			*target = envValue(env)
		}
	}
	fill(&c.Media.UnsplashAccessKey, "UNSPLASH_ACCESS_KEY")
	fill(&c.Media.GoogleAPIKey, "SEARCH_ENGINE_API_KEY")
	fill(&c.Media.GoogleSearchEngineID, "SEARCH_ENGINE_ID")
	fill(&c.Media.TenorAPIKey, "TENOR_API_KEY")
	fill(&c.Media.TenorClientKey, "TENOR_CLIENT_KEY")
	if strings.TrimSpace(c.Media.UnsplashBaseURL) == "" {
		c.Media.UnsplashBaseURL = defaultUnsplashBaseURL
	}
	if strings.TrimSpace(c.Media.GoogleBaseURL) == "" {
		c.Media.GoogleBaseURL = defaultGoogleBaseURL
	}
	if strings.TrimSpace(c.Media.TenorBaseURL) == "" {
		c.Media.TenorBaseURL = defaultTenorBaseURL
	}
	if c.Media.TimeoutSeconds <= 0 {
		c.Media.TimeoutSeconds = defaultMediaTimeout
	}
}

func (c *Config) normalizeRender() {
	c.Render.Preset = strings.ToLower(strings.TrimSpace(c.Render.Preset))
	if c.Render.Preset == "" {
		c.Render.Preset = defaultRenderPreset
	}
	if strings.TrimSpace(c.Render.FontColor) == "" {
		c.Render.FontColor = defaultRenderFontColor
	}
	if strings.TrimSpace(c.Render.BackgroundColor) == "" {
		c.Render.BackgroundColor = defaultRenderBackground
	}
	c.Render.ArchiveBinary = strings.TrimSpace(c.Render.ArchiveBinary)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		c.Notifications.NtfyTopic = envValue("NTFY_TOPIC")
	}
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envValue(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
