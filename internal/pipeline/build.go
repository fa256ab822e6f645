package pipeline

import (
	"log/slog"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/generate"
	"reelsmith/internal/keywords"
	"reelsmith/internal/media"
	"reelsmith/internal/render"
	"reelsmith/internal/script"
	"reelsmith/internal/services/elevenlabs"
	"reelsmith/internal/services/mediasearch"
	"reelsmith/internal/services/whisperx"
	"reelsmith/internal/stage"
)

// Set bundles the stage handlers the workflow runner orchestrates.
type Set struct {
	Scripting    stage.Handler
	Narrating    stage.Handler
	Transcribing stage.Handler
	Extracting   stage.Handler
	Aligning     stage.Handler
	Acquiring    stage.Handler
	Rendering    stage.Handler
}

// Build wires every stage to the collaborators selected by cfg.
func Build(cfg *config.Config, logger *slog.Logger) (*Set, error) {
	llmClient, err := generate.New(cfg)
	if err != nil {
		return nil, err
	}

	voice := elevenlabs.NewClient(elevenlabs.Config{
		APIKey:         cfg.Speech.APIKey,
		BaseURL:        cfg.Speech.BaseURL,
		VoiceID:        cfg.Speech.VoiceID,
		ModelID:        cfg.Speech.ModelID,
		OutputFormat:   cfg.Speech.OutputFormat,
		TimeoutSeconds: cfg.Speech.TimeoutSeconds,
	})

	transcriber := whisperx.NewService(whisperx.Config{
		Model:        cfg.Transcription.Model,
		CUDAEnabled:  cfg.Transcription.CUDAEnabled,
		VADMethod:    cfg.Transcription.VADMethod,
		HFToken:      cfg.Transcription.HFToken,
		Language:     cfg.Transcription.Language,
		ModelDir:     cfg.Paths.WhisperXCacheDir,
		FFmpegBinary: cfg.FFmpegBinary(),
	})

	search := mediasearch.NewClient(mediasearch.Config{
		UnsplashAccessKey:    cfg.Media.UnsplashAccessKey,
		UnsplashBaseURL:      cfg.Media.UnsplashBaseURL,
		GoogleAPIKey:         cfg.Media.GoogleAPIKey,
		GoogleSearchEngineID: cfg.Media.GoogleSearchEngineID,
		GoogleBaseURL:        cfg.Media.GoogleBaseURL,
		TenorAPIKey:          cfg.Media.TenorAPIKey,
		TenorClientKey:       cfg.Media.TenorClientKey,
		TenorBaseURL:         cfg.Media.TenorBaseURL,
		TimeoutSeconds:       cfg.Media.TimeoutSeconds,
	})
	clipper := media.NewTextClipper(TextClipConfig(cfg))

	delay := time.Duration(cfg.Keywords.RequestDelayMS) * time.Millisecond
	return &Set{
		Scripting:    NewScripting(script.NewGenerator(llmClient, cfg.Script, logger), llmClient, logger),
		Narrating:    NewNarrating(voice, logger),
		Transcribing: NewTranscribing(transcriber, whisperx.UVXCommand, logger),
		Extracting:   NewExtracting(keywords.NewExtractor(llmClient, delay, logger), llmClient, logger),
		Aligning:     NewAligning(cfg, logger),
		Acquiring:    NewAcquiring(media.NewAcquirer(search, clipper, logger), logger),
		Rendering:    NewRendering(render.NewRenderer(cfg, logger), cfg.FFmpegBinary(), cfg.FFprobeBinary(), logger),
	}, nil
}

// TextClipConfig maps render settings onto caption card options.
func TextClipConfig(cfg *config.Config) media.TextClipConfig {
	return media.TextClipConfig{
		FFmpeg:          cfg.FFmpegBinary(),
		Width:           cfg.Render.Width,
		Height:          cfg.Render.Height,
		FPS:             cfg.Render.FPS,
		MinFontSize:     cfg.Render.FontSize,
		FontColor:       cfg.Render.FontColor,
		BackgroundColor: cfg.Render.BackgroundColor,
	}
}
