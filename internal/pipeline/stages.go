package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"reelsmith/internal/alignment"
	"reelsmith/internal/config"
	"reelsmith/internal/deps"
	"reelsmith/internal/fileutil"
	"reelsmith/internal/keywords"
	"reelsmith/internal/logging"
	"reelsmith/internal/media"
	"reelsmith/internal/render"
	"reelsmith/internal/runs"
	"reelsmith/internal/services"
	"reelsmith/internal/stage"
	"reelsmith/internal/transcript"
)

// ScriptWriter drafts narration for a topic.
type ScriptWriter interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// Synthesizer voices a script into an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dest string) (int64, error)
	HealthCheck(ctx context.Context) error
}

// Transcriber produces word timestamps for narration audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, workDir string) (*transcript.Transcript, error)
}

// KeywordExtractor picks illustratable keywords per sentence.
type KeywordExtractor interface {
	Extract(ctx context.Context, sentences []transcript.Sentence) ([]keywords.Token, error)
}

// MediaAcquirer fills segment media files.
type MediaAcquirer interface {
	Acquire(ctx context.Context, segments []alignment.Segment) (media.Report, error)
}

// Composer renders the final reel.
type Composer interface {
	Render(ctx context.Context, segments []alignment.Segment, audioPath, dest string) (render.Result, error)
}

// HealthChecker reports backend reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type base struct {
	name   string
	logger *slog.Logger
}

func newBase(name string, logger *slog.Logger) base {
	return base{name: name, logger: logging.NewComponentLogger(logger, name)}
}

// SetLogger installs the per-run stage logger.
func (b *base) SetLogger(logger *slog.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

func (b *base) prepare(run *runs.Run, label, message string) error {
	run.SetProgress(label, message, 0)
	run.ErrorMessage = ""
	if err := os.MkdirAll(run.WorkDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, b.name, "create work dir", "work directory is not writable", err)
	}
	return nil
}

func checkBackend(ctx context.Context, name string, backend HealthChecker) stage.Health {
	if backend == nil {
		return stage.Unhealthy(name, "backend not configured")
	}
	return stage.FromError(name, backend.HealthCheck(ctx))
}

// Scripting writes script.txt from the run prompt.
type Scripting struct {
	base
	writer ScriptWriter
	llm    HealthChecker
}

// NewScripting builds the scripting stage.
func NewScripting(writer ScriptWriter, llm HealthChecker, logger *slog.Logger) *Scripting {
	return &Scripting{base: newBase("scripting", logger), writer: writer, llm: llm}
}

func (s *Scripting) Prepare(_ context.Context, run *runs.Run) error {
	return s.prepare(run, "Scripting", "Drafting narration")
}

func (s *Scripting) Execute(ctx context.Context, run *runs.Run) error {
	if strings.TrimSpace(run.Prompt) == "" {
		return services.Wrap(services.ErrValidation, s.name, "validate inputs", "run has no prompt", nil)
	}
	text, err := s.writer.Generate(ctx, run.Prompt)
	if err != nil {
		return err
	}
	path := artifactPath(run, ScriptFile)
	if err := fileutil.WriteFileAtomic(path, []byte(text+"\n"), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, s.name, "write script", "", err)
	}
	run.ScriptPath = path
	run.SetProgress("Scripted", fmt.Sprintf("%d words drafted", len(strings.Fields(text))), 100)
	s.logger.Info("script written",
		logging.String("script_path", path),
		logging.Int("words", len(strings.Fields(text))),
	)
	return nil
}

func (s *Scripting) HealthCheck(ctx context.Context) stage.Health {
	return checkBackend(ctx, s.name, s.llm)
}

// Narrating voices script.txt into audio.mp3.
type Narrating struct {
	base
	voice Synthesizer
}

// NewNarrating builds the narrating stage.
func NewNarrating(voice Synthesizer, logger *slog.Logger) *Narrating {
	return &Narrating{base: newBase("narrating", logger), voice: voice}
}

func (n *Narrating) Prepare(_ context.Context, run *runs.Run) error {
	if err := requireInput(n.name, "script", run.ScriptPath); err != nil {
		return err
	}
	return n.prepare(run, "Narrating", "Synthesizing narration")
}

func (n *Narrating) Execute(ctx context.Context, run *runs.Run) error {
	data, err := os.ReadFile(run.ScriptPath)
	if err != nil {
		return services.Wrap(services.ErrNotFound, n.name, "read script", run.ScriptPath, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return services.Wrap(services.ErrValidation, n.name, "read script", "script is empty", nil)
	}
	path := artifactPath(run, AudioFile)
	size, err := n.voice.Synthesize(ctx, text, path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, n.name, "synthesize", "text-to-speech failed", err)
	}
	run.AudioPath = path
	run.SetProgress("Narrated", "Narration synthesized", 100)
	n.logger.Info("narration written", logging.String("audio_path", path), logging.Int64("bytes", size))
	return nil
}

func (n *Narrating) HealthCheck(ctx context.Context) stage.Health {
	return checkBackend(ctx, n.name, n.voice)
}

// Transcribing produces transcript.json and sentences.json from audio.mp3.
type Transcribing struct {
	base
	transcriber Transcriber
	uvx         string
}

// NewTranscribing builds the transcribing stage.
func NewTranscribing(transcriber Transcriber, uvx string, logger *slog.Logger) *Transcribing {
	return &Transcribing{base: newBase("transcribing", logger), transcriber: transcriber, uvx: uvx}
}

func (t *Transcribing) Prepare(_ context.Context, run *runs.Run) error {
	if err := requireInput(t.name, "narration audio", run.AudioPath); err != nil {
		return err
	}
	return t.prepare(run, "Transcribing", "Aligning words with WhisperX")
}

func (t *Transcribing) Execute(ctx context.Context, run *runs.Run) error {
	result, err := t.transcriber.Transcribe(ctx, run.AudioPath, run.WorkDir)
	if err != nil {
		return err
	}
	transcriptPath := artifactPath(run, TranscriptFile)
	if err := transcript.Save(transcriptPath, result); err != nil {
		return err
	}
	sentences := transcript.Sentences(*result)
	sentencesPath := artifactPath(run, SentencesFile)
	if err := transcript.SaveSentences(sentencesPath, sentences); err != nil {
		return err
	}
	run.TranscriptPath = transcriptPath
	run.SentencesPath = sentencesPath
	run.SetProgress("Transcribed", fmt.Sprintf("%d words in %d sentences", len(result.Words), len(sentences)), 100)
	t.logger.Info("transcript written",
		logging.String("transcript_path", transcriptPath),
		logging.Int("words", len(result.Words)),
		logging.Int("sentences", len(sentences)),
	)
	return nil
}

func (t *Transcribing) HealthCheck(context.Context) stage.Health {
	status := deps.CheckBinaries([]deps.Requirement{{Name: "uvx", Command: t.uvx}})[0]
	if !status.Available {
		return stage.Unhealthy(t.name, status.Detail)
	}
	return stage.Healthy(t.name)
}

// Extracting produces keywords.json from sentences.json.
type Extracting struct {
	base
	extractor KeywordExtractor
	llm       HealthChecker
}

// NewExtracting builds the keyword extraction stage.
func NewExtracting(extractor KeywordExtractor, llm HealthChecker, logger *slog.Logger) *Extracting {
	return &Extracting{base: newBase("extracting", logger), extractor: extractor, llm: llm}
}

func (e *Extracting) Prepare(_ context.Context, run *runs.Run) error {
	if err := requireInput(e.name, "sentences", run.SentencesPath); err != nil {
		return err
	}
	return e.prepare(run, "Extracting", "Collecting keywords")
}

func (e *Extracting) Execute(ctx context.Context, run *runs.Run) error {
	sentences, err := transcript.LoadSentences(run.SentencesPath)
	if err != nil {
		return err
	}
	tokens, err := e.extractor.Extract(ctx, sentences)
	if err != nil {
		return err
	}
	path := artifactPath(run, KeywordsFile)
	if err := keywords.Save(path, tokens); err != nil {
		return err
	}
	run.KeywordsPath = path
	run.SetProgress("Extracted", fmt.Sprintf("%d keywords", len(tokens)), 100)
	e.logger.Info("keywords written", logging.String("keywords_path", path), logging.Int("keywords", len(tokens)))
	return nil
}

func (e *Extracting) HealthCheck(ctx context.Context) stage.Health {
	return checkBackend(ctx, e.name, e.llm)
}

// Aligning builds timeline.json from the transcript and keywords.
type Aligning struct {
	base
	cfg *config.Config
}

// NewAligning builds the alignment stage.
func NewAligning(cfg *config.Config, logger *slog.Logger) *Aligning {
	return &Aligning{base: newBase("aligning", logger), cfg: cfg}
}

func (a *Aligning) Prepare(_ context.Context, run *runs.Run) error {
	if err := requireInput(a.name, "transcript", run.TranscriptPath); err != nil {
		return err
	}
	if err := requireInput(a.name, "keywords", run.KeywordsPath); err != nil {
		return err
	}
	return a.prepare(run, "Aligning", "Matching keywords to word timestamps")
}

func (a *Aligning) Execute(_ context.Context, run *runs.Run) error {
	words, err := transcript.Load(run.TranscriptPath)
	if err != nil {
		return err
	}
	tokens, err := keywords.Load(run.KeywordsPath)
	if err != nil {
		return err
	}
	segments, err := alignment.Build(words.Words, tokens, a.cfg.MediaRootFor(run.WorkDir), a.logger)
	if err != nil {
		return services.Wrap(services.ErrValidation, a.name, "close gaps", "aligned segments are not strictly ordered", err)
	}
	path := artifactPath(run, TimelineFile)
	if err := alignment.WriteTimeline(path, segments); err != nil {
		return err
	}
	run.TimelinePath = path
	run.SetProgress("Aligned", fmt.Sprintf("%d of %d keywords placed", len(segments), len(tokens)), 100)
	if len(segments) == 0 {
		logging.WarnWithContext(a.logger, "no keywords matched the transcript", "empty_timeline",
			logging.Int("keywords", len(tokens)),
			logging.String(logging.FieldImpact, "the reel will show only the background"),
			logging.String(logging.FieldErrorHint, "compare keywords.json with transcript.json"),
		)
	}
	return nil
}

func (a *Aligning) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(a.name)
}

// Acquiring downloads or renders media for every timeline segment.
type Acquiring struct {
	base
	acquirer MediaAcquirer
}

// NewAcquiring builds the media acquisition stage.
func NewAcquiring(acquirer MediaAcquirer, logger *slog.Logger) *Acquiring {
	return &Acquiring{base: newBase("acquiring", logger), acquirer: acquirer}
}

func (a *Acquiring) Prepare(_ context.Context, run *runs.Run) error {
	if err := requireInput(a.name, "timeline", run.TimelinePath); err != nil {
		return err
	}
	return a.prepare(run, "Acquiring", "Fetching stock media and rendering captions")
}

func (a *Acquiring) Execute(ctx context.Context, run *runs.Run) error {
	segments, err := alignment.ReadTimeline(run.TimelinePath)
	if err != nil {
		return err
	}
	report, err := a.acquirer.Acquire(ctx, segments)
	if err != nil {
		return err
	}
	run.SetProgress("Acquired", fmt.Sprintf("%d of %d clips ready", report.Acquired, len(segments)), 100)
	return nil
}

func (a *Acquiring) HealthCheck(context.Context) stage.Health {
	return stage.Healthy(a.name)
}

// Rendering composes reel.mp4 and the optional archive.
type Rendering struct {
	base
	composer Composer
	ffmpeg   string
	ffprobe  string
}

// NewRendering builds the composition stage.
func NewRendering(composer Composer, ffmpeg, ffprobe string, logger *slog.Logger) *Rendering {
	return &Rendering{base: newBase("rendering", logger), composer: composer, ffmpeg: ffmpeg, ffprobe: ffprobe}
}

func (r *Rendering) Prepare(_ context.Context, run *runs.Run) error {
	if err := requireInput(r.name, "timeline", run.TimelinePath); err != nil {
		return err
	}
	if err := requireInput(r.name, "narration audio", run.AudioPath); err != nil {
		return err
	}
	return r.prepare(run, "Rendering", "Composing reel")
}

func (r *Rendering) Execute(ctx context.Context, run *runs.Run) error {
	segments, err := alignment.ReadTimeline(run.TimelinePath)
	if err != nil {
		return err
	}
	result, err := r.composer.Render(ctx, segments, run.AudioPath, artifactPath(run, VideoFile))
	if err != nil {
		return err
	}
	run.VideoPath = result.VideoPath
	run.ArchivePath = result.ArchivePath
	run.SetProgress("Completed", fmt.Sprintf("%d clips composed", result.Clips), 100)
	r.logger.Info("reel rendered",
		logging.String("video_path", result.VideoPath),
		logging.String("archive_path", result.ArchivePath),
		logging.Int64("duration_ms", result.DurationMillis),
	)
	return nil
}

func (r *Rendering) HealthCheck(context.Context) stage.Health {
	missing := deps.Missing(deps.CheckBinaries(deps.PipelineRequirements(r.ffmpeg, r.ffprobe, "")))
	if len(missing) > 0 {
		return stage.Unhealthy(r.name, missing[0].Detail)
	}
	return stage.Healthy(r.name)
}

var (
	_ stage.Handler     = (*Scripting)(nil)
	_ stage.Handler     = (*Narrating)(nil)
	_ stage.Handler     = (*Transcribing)(nil)
	_ stage.Handler     = (*Extracting)(nil)
	_ stage.Handler     = (*Aligning)(nil)
	_ stage.Handler     = (*Acquiring)(nil)
	_ stage.Handler     = (*Rendering)(nil)
	_ stage.LoggerAware = (*Scripting)(nil)
)
