package pipeline

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/printops/preflightreport/internal/config"
	"github.com/printops/preflightreport/internal/database"
	"github.com/printops/preflightreport/internal/model"
	"github.com/printops/preflightreport/internal/parser"
	"github.com/printops/preflightreport/internal/preview"
	"github.com/printops/preflightreport/internal/render"
	"github.com/printops/preflightreport/internal/report"
	"github.com/printops/preflightreport/internal/storage"
)

// Step names.
const (
	StepLoad    = "load"
	StepParse   = "parse"
	StepPreview = "preview"
	StepRender  = "render"
	StepSave    = "save"
	StepSidecar = "sidecar"
	StepHistory = "history"
)

// Errors returned by steps whose prerequisites did not run.
var (
	// ErrNotLoaded is returned when a step needs the raw report bytes.
	ErrNotLoaded = errors.New("preflight report not loaded")

	// ErrNotParsed is returned when a step needs the parsed report.
	ErrNotParsed = errors.New("preflight report not parsed")

	// ErrNotRendered is returned when a step needs the rendered PDF.
	ErrNotRendered = errors.New("report not rendered")
)

// SettingsFunc returns the effective settings for a preflight profile.
type SettingsFunc func(profile string) config.Settings

// Recorder stores run summaries. *database.HistoryDB implements it.
type Recorder interface {
	SaveRun(ctx context.Context, s *model.Summary) (*database.Run, error)
}

// LoadStep reads the preflight XML and computes its digest.
type LoadStep struct {
	store storage.Store
}

// NewLoadStep creates a load step reading from store.
func NewLoadStep(store storage.Store) *LoadStep {
	return &LoadStep{store: store}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return StepLoad
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, job *Job) error {
	raw, err := s.store.ReadBytes(ctx, job.ReportPath)
	if err != nil {
		return fmt.Errorf("failed to load preflight report: %w", err)
	}
	sum := sha3.Sum256(raw)
	job.Raw = raw
	job.Digest = hex.EncodeToString(sum[:])
	return nil
}

// ParseStep decodes the preflight XML and resolves the profile settings.
type ParseStep struct {
	settings SettingsFunc
}

// NewParseStep creates a parse step. settings may be nil, in which case
// the defaults of config.NewConfig apply.
func NewParseStep(settings SettingsFunc) *ParseStep {
	if settings == nil {
		settings = config.NewConfig().SettingsFor
	}
	return &ParseStep{settings: settings}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return StepParse
}

// Do executes the parse step.
func (s *ParseStep) Do(_ context.Context, job *Job) error {
	if job.Raw == nil {
		return ErrNotLoaded
	}
	m, err := parser.Parse(job.Raw)
	if err != nil {
		return fmt.Errorf("%s: %w", job.ReportPath, err)
	}
	job.Report = m
	job.Settings = s.settings(m.Profile)
	return nil
}

// PreviewStep finds and decodes the preview image. A job without a preview
// is rendered with an empty diagram background; an explicit preview that
// cannot be read is an error.
type PreviewStep struct {
	store  storage.Store
	logger *slog.Logger
}

// NewPreviewStep creates a preview step reading from store.
func NewPreviewStep(store storage.Store, logger *slog.Logger) *PreviewStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *PreviewStep) Name() string {
	return StepPreview
}

// Do executes the preview step.
func (s *PreviewStep) Do(ctx context.Context, job *Job) error {
	extensions := job.Settings.PreviewExtensions
	if len(extensions) == 0 {
		extensions = config.DefaultPreviewExtensions
	}

	for _, path := range job.PreviewCandidates(extensions) {
		data, err := s.store.ReadBytes(ctx, path)
		if errors.Is(err, fs.ErrNotExist) && job.PreviewPath == "" {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read preview: %w", err)
		}

		img, err := preview.Load(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		job.PreviewPath = path
		job.Preview = img
		s.logger.Debug("preview loaded",
			slog.String("path", path),
			slog.String("format", img.SourceFormat),
			slog.Int("width", img.Width),
			slog.Int("height", img.Height))
		return nil
	}

	s.logger.Warn("no preview image found, rendering diagram without background",
		slog.String("job", job.Name))
	return nil
}

// RenderStep composes the PDF report.
type RenderStep struct {
	clock     func() time.Time
	newCanvas render.CanvasFactory
	logger    *slog.Logger
}

// RenderStepOption configures a RenderStep.
type RenderStepOption func(*RenderStep)

// WithRenderClock sets the source of the generation time.
func WithRenderClock(clock func() time.Time) RenderStepOption {
	return func(s *RenderStep) {
		s.clock = clock
	}
}

// WithRenderCanvasFactory replaces the PDF canvas.
func WithRenderCanvasFactory(f render.CanvasFactory) RenderStepOption {
	return func(s *RenderStep) {
		s.newCanvas = f
	}
}

// WithRenderLogger sets the logger of the step and its renderer.
func WithRenderLogger(logger *slog.Logger) RenderStepOption {
	return func(s *RenderStep) {
		s.logger = logger
	}
}

// NewRenderStep creates a render step.
func NewRenderStep(opts ...RenderStepOption) *RenderStep {
	s := &RenderStep{
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return StepRender
}

// Do executes the render step.
func (s *RenderStep) Do(_ context.Context, job *Job) error {
	if job.Report == nil {
		return ErrNotParsed
	}

	now := s.clock()
	opts := []render.Option{
		render.WithClock(func() time.Time { return now }),
		render.WithLogger(s.logger),
		render.WithForceCentering(job.Settings.ForceCentering),
		render.WithAuthor(job.Settings.Author),
	}
	if s.newCanvas != nil {
		opts = append(opts, render.WithCanvasFactory(s.newCanvas))
	}

	pdf, err := render.New(opts...).Render(job.Report, job.Preview)
	if err != nil {
		return fmt.Errorf("%s: %w", job.ReportPath, err)
	}

	job.PDF = pdf
	job.GeneratedAt = now

	summary := model.NewSummary(job.Report)
	summary.JobName = job.Name
	summary.GeneratedAt = now
	summary.InputDigest = job.Digest
	job.Summary = summary

	s.logger.Info("report created",
		slog.String("job", job.Name),
		slog.Int("warnings", summary.WarningCount),
		slog.Int("errors", summary.ErrorCount))
	return nil
}

// SaveStep writes the rendered PDF.
type SaveStep struct {
	store  storage.Store
	logger *slog.Logger
}

// NewSaveStep creates a save step writing to store.
func NewSaveStep(store storage.Store, logger *slog.Logger) *SaveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return StepSave
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, job *Job) error {
	if job.PDF == nil {
		return ErrNotRendered
	}
	if err := s.store.WriteBytes(ctx, job.OutputPath, job.PDF); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	if job.Summary != nil {
		job.Summary.OutputPath = job.OutputPath
	}
	s.logger.Info("report saved", slog.String("path", job.OutputPath))
	return nil
}

// SidecarStep writes Markdown and JSON companions of the PDF.
type SidecarStep struct {
	store    storage.Store
	markdown bool
	json     bool
	version  string
}

// NewSidecarStep creates a sidecar step. version is recorded in the JSON
// sidecar.
func NewSidecarStep(store storage.Store, markdown, json bool, version string) *SidecarStep {
	return &SidecarStep{store: store, markdown: markdown, json: json, version: version}
}

// Name returns the step name.
func (s *SidecarStep) Name() string {
	return StepSidecar
}

// Do executes the sidecar step.
func (s *SidecarStep) Do(ctx context.Context, job *Job) error {
	if job.Report == nil {
		return ErrNotParsed
	}

	type sidecar struct {
		enabled bool
		ext     string
		writer  func(*bytes.Buffer) report.Writer
	}
	sidecars := []sidecar{
		{s.markdown, ".md", func(b *bytes.Buffer) report.Writer { return report.NewMarkdownWriter(b) }},
		{s.json, ".json", func(b *bytes.Buffer) report.Writer {
			return report.NewJSONWriter(b, report.WithPrettyPrint(), report.WithVersion(s.version))
		}},
	}

	for _, sc := range sidecars {
		if !sc.enabled {
			continue
		}
		var buf bytes.Buffer
		if _, err := sc.writer(&buf).Write(job.Report, job.Summary); err != nil {
			return fmt.Errorf("failed to build %s sidecar: %w", sc.ext, err)
		}
		path := job.SidecarPath(sc.ext)
		if err := s.store.WriteBytes(ctx, path, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to save sidecar: %w", err)
		}
		job.SidecarPaths = append(job.SidecarPaths, path)
	}
	return nil
}

// HistoryStep records the run in the history database.
type HistoryStep struct {
	recorder Recorder
}

// NewHistoryStep creates a history step.
func NewHistoryStep(recorder Recorder) *HistoryStep {
	return &HistoryStep{recorder: recorder}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return StepHistory
}

// Do executes the history step.
func (s *HistoryStep) Do(ctx context.Context, job *Job) error {
	if job.Summary == nil {
		return ErrNotRendered
	}
	run, err := s.recorder.SaveRun(ctx, job.Summary)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	job.RunID = run.ID
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Store reads inputs and writes outputs. Defaults to the file system.
	Store storage.Store

	// Settings resolves per-profile options.
	Settings SettingsFunc

	// Clock is the source of the generation time.
	Clock func() time.Time

	// CanvasFactory replaces the PDF canvas when set.
	CanvasFactory render.CanvasFactory

	// Markdown and JSON enable the sidecar files.
	Markdown bool
	JSON     bool

	// History records each run when set.
	History Recorder

	// Version is recorded in the JSON sidecar.
	Version string
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineStore sets the store for inputs and outputs.
func WithPipelineStore(store storage.Store) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// WithPipelineSettings sets the per-profile settings resolver.
func WithPipelineSettings(settings SettingsFunc) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Settings = settings
	}
}

// WithPipelineClock sets the source of the generation time.
func WithPipelineClock(clock func() time.Time) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Clock = clock
	}
}

// WithPipelineCanvasFactory replaces the PDF canvas.
func WithPipelineCanvasFactory(f render.CanvasFactory) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CanvasFactory = f
	}
}

// WithPipelineSidecars enables the Markdown and JSON sidecars.
func WithPipelineSidecars(markdown, json bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Markdown = markdown
		c.JSON = json
	}
}

// WithPipelineHistory records each run with recorder.
func WithPipelineHistory(recorder Recorder) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.History = recorder
	}
}

// WithPipelineVersion sets the version recorded in the JSON sidecar.
func WithPipelineVersion(version string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Version = version
	}
}

// DefaultPipeline creates a pipeline with the standard step sequence:
// load, parse, preview, render, save, then sidecar and history when
// enabled.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Store: storage.NewFS(""),
		Clock: time.Now,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	renderOpts := []RenderStepOption{
		WithRenderClock(cfg.Clock),
		WithRenderLogger(p.logger),
	}
	if cfg.CanvasFactory != nil {
		renderOpts = append(renderOpts, WithRenderCanvasFactory(cfg.CanvasFactory))
	}

	p.AddSteps(
		NewLoadStep(cfg.Store),
		NewParseStep(cfg.Settings),
		NewPreviewStep(cfg.Store, p.logger),
		NewRenderStep(renderOpts...),
		NewSaveStep(cfg.Store, p.logger),
	)
	if cfg.Markdown || cfg.JSON {
		p.AddStep(NewSidecarStep(cfg.Store, cfg.Markdown, cfg.JSON, cfg.Version))
	}
	if cfg.History != nil {
		p.AddStep(NewHistoryStep(cfg.History))
	}

	return p
}
