package config

const (
	defaultConfigPath          = "~/.config/reelsmith/config.toml"
	projectConfigName          = "reelsmith.toml"
	defaultWorkspaceDir        = "~/.local/share/reelsmith/runs"
	defaultLogDir              = "~/.local/share/reelsmith/logs"
	defaultWhisperXCacheDir    = "~/.local/share/reelsmith/cache/whisperx"
	defaultAPIBind             = "127.0.0.1:7488"
	defaultLLMProvider         = ProviderOpenRouter
	defaultOpenRouterBaseURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel     = "google/gemini-3-flash-preview"
	defaultOpenAIModel         = "gpt-4o-mini"
	defaultLLMReferer          = "https://github.com/reelsmith/reelsmith"
	defaultLLMTitle            = "reelsmith"
	defaultLLMTimeoutSeconds   = 60
	defaultScriptMinMinutes    = 3
	defaultScriptMaxMinutes    = 5
	defaultScriptStyle         = "witty, sarcastic tech explainer in the spirit of Fireship"
	defaultSpeechBaseURL       = "https://api.elevenlabs.io"
	defaultSpeechVoiceID       = "JBFqnCBsd6RMkjVDRZzb"
	defaultSpeechModelID       = "eleven_multilingual_v2"
	defaultSpeechOutputFormat  = "mp3_44100_128"
	defaultSpeechTimeout       = 300
	defaultTranscriptionModel  = "large-v3"
	defaultTranscriptionVAD    = "silero"
	defaultTranscriptionLang   = "en"
	defaultKeywordRequestDelay = 1000
	defaultMediaRoot           = "media"
	defaultUnsplashBaseURL     = "https://api.unsplash.com"
	defaultGoogleBaseURL       = "https://www.googleapis.com/customsearch/v1"
	defaultTenorBaseURL        = "https://tenor.googleapis.com/v2"
	defaultMediaTimeout        = 30
	defaultRenderWidth         = 1080
	defaultRenderHeight        = 1920
	defaultRenderFPS           = 24
	defaultRenderCRF           = 28
	defaultRenderPreset        = "fast"
	defaultRenderFontSize      = 72
	defaultRenderFontColor     = "white"
	defaultRenderBackground    = "black"
	defaultNtfyTimeoutSeconds  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Supported LLM providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir:     defaultWorkspaceDir,
			LogDir:           defaultLogDir,
			WhisperXCacheDir: defaultWhisperXCacheDir,
			APIBind:          defaultAPIBind,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			BaseURL:        defaultOpenRouterBaseURL,
			Model:          defaultOpenRouterModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Script: Script{
			MinMinutes: defaultScriptMinMinutes,
			MaxMinutes: defaultScriptMaxMinutes,
			Style:      defaultScriptStyle,
		},
		Speech: Speech{
			BaseURL:        defaultSpeechBaseURL,
			VoiceID:        defaultSpeechVoiceID,
			ModelID:        defaultSpeechModelID,
			OutputFormat:   defaultSpeechOutputFormat,
			TimeoutSeconds: defaultSpeechTimeout,
		},
		Transcription: Transcription{
			Model:     defaultTranscriptionModel,
			VADMethod: defaultTranscriptionVAD,
			Language:  defaultTranscriptionLang,
		},
		Keywords: Keywords{
			RequestDelayMS: defaultKeywordRequestDelay,
		},
		Alignment: Alignment{
			MediaRoot: defaultMediaRoot,
		},
		Media: Media{
			UnsplashBaseURL: defaultUnsplashBaseURL,
			GoogleBaseURL:   defaultGoogleBaseURL,
			TenorBaseURL:    defaultTenorBaseURL,
			TimeoutSeconds:  defaultMediaTimeout,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Render: Render{
			Width:           defaultRenderWidth,
			Height:          defaultRenderHeight,
			FPS:             defaultRenderFPS,
			CRF:             defaultRenderCRF,
			Preset:          defaultRenderPreset,
			FontSize:        defaultRenderFontSize,
			FontColor:       defaultRenderFontColor,
			BackgroundColor: defaultRenderBackground,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
