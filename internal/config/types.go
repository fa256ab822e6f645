package config

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkspaceDir     string `toml:"workspace_dir"`
	LogDir           string `toml:"log_dir"`
	WhisperXCacheDir string `toml:"whisperx_cache_dir"`
	APIBind          string `toml:"api_bind"`
}

// LLM contains the chat-completion backend used for script writing and
// keyword extraction.
type LLM struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Script contains narration script generation settings.
type Script struct {
	MinMinutes int    `toml:"min_minutes"`
	MaxMinutes int    `toml:"max_minutes"`
	Style      string `toml:"style"`
}

// Speech contains ElevenLabs text-to-speech settings.
type Speech struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	VoiceID        string `toml:"voice_id"`
	ModelID        string `toml:"model_id"`
	OutputFormat   string `toml:"output_format"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcription contains WhisperX settings for word-level timestamps.
type Transcription struct {
	Model       string `toml:"model"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
	Language    string `toml:"language"`
}

// Keywords contains keyword extraction settings.
type Keywords struct {
	RequestDelayMS int `toml:"request_delay_ms"`
}

// Alignment contains timeline construction settings.
type Alignment struct {
	// MediaRoot is the directory media paths are synthesized under. Relative
	// values resolve against each run's work directory.
	MediaRoot string `toml:"media_root"`
}

// Media contains stock media search credentials.
type Media struct {
	UnsplashAccessKey    string `toml:"unsplash_access_key"`
	UnsplashBaseURL      string `toml:"unsplash_base_url"`
	GoogleAPIKey         string `toml:"google_api_key"`
	GoogleSearchEngineID string `toml:"google_search_engine_id"`
	GoogleBaseURL        string `toml:"google_base_url"`
	TenorAPIKey          string `toml:"tenor_api_key"`
	TenorClientKey       string `toml:"tenor_client_key"`
	TenorBaseURL         string `toml:"tenor_base_url"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
}

// Render contains video composition settings.
type Render struct {
	Width           int    `toml:"width"`
	Height          int    `toml:"height"`
	FPS             int    `toml:"fps"`
	CRF             int    `toml:"crf"`
	Preset          string `toml:"preset"`
	FontSize        int    `toml:"font_size"`
	FontColor       string `toml:"font_color"`
	BackgroundColor string `toml:"background_color"`
	Archive         bool   `toml:"archive"`
	ArchiveBinary   string `toml:"archive_binary"`
}

// Notifications contains ntfy delivery settings. An empty topic disables
// notifications.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelsmith.
//
// Configuration sections by stage:
//   - Paths: run workspace, ledger/log directory and API bind address
//   - LLM: chat backend for scripts and keywords
//   - Script, Speech, Transcription, Keywords: generation stages
//   - Alignment: timeline media root
//   - Media: stock image and GIF search credentials
//   - Render: composition canvas and encoder settings
//   - Notifications: ntfy run completion and failure alerts
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	Script        Script        `toml:"script"`
	Speech        Speech        `toml:"speech"`
	Transcription Transcription `toml:"transcription"`
	Keywords      Keywords      `toml:"keywords"`
	Alignment     Alignment     `toml:"alignment"`
	Media         Media         `toml:"media"`
	Render        Render        `toml:"render"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}
