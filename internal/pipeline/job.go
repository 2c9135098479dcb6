package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/printops/preflightreport/internal/config"
	"github.com/printops/preflightreport/internal/model"
	"github.com/printops/preflightreport/internal/preview"
)

// Job carries one preflight report through the pipeline.
type Job struct {
	// Name is the base name of the report file without extension.
	// The preview and output files are derived from it.
	Name string

	// ReportPath is the preflight XML file.
	ReportPath string

	// PreviewPath is the preview image. When empty, the preview step looks
	// for <Name><ext> next to the report for each configured extension.
	PreviewPath string

	// OutputPath is where the PDF is written.
	OutputPath string

	// Raw holds the bytes of the preflight XML.
	Raw []byte

	// Digest is the hex SHA3-256 digest of Raw.
	Digest string

	Report  *model.Report
	Preview *preview.Image

	// Settings are the effective options for the report's profile.
	Settings config.Settings

	// PDF holds the rendered report.
	PDF []byte

	// GeneratedAt is the timestamp printed in the report footer.
	GeneratedAt time.Time

	// Summary is filled in by the render step and completed by later steps.
	Summary *model.Summary

	// SidecarPaths lists the Markdown and JSON files written for the job.
	SidecarPaths []string

	// RunID is the history identifier of the job, when recorded.
	RunID string

	// PerformedSteps lists the names of the steps that ran.
	PerformedSteps []string

	// Err is the error of the failing step, if any.
	Err error
}

// JobOption configures a Job.
type JobOption func(*Job)

// WithPreviewPath sets an explicit preview image.
func WithPreviewPath(path string) JobOption {
	return func(j *Job) {
		if path != "" {
			j.PreviewPath = path
		}
	}
}

// WithOutputPath sets the PDF file.
func WithOutputPath(path string) JobOption {
	return func(j *Job) {
		if path != "" {
			j.OutputPath = path
		}
	}
}

// WithOutputDir places the PDF as <Name>.pdf in dir.
func WithOutputDir(dir string) JobOption {
	return func(j *Job) {
		if dir != "" {
			j.OutputPath = filepath.Join(dir, j.Name+config.DefaultOutputExtension)
		}
	}
}

// NewJob creates a Job for the preflight report at reportPath. By default
// the PDF is written next to the report as <name>.pdf.
func NewJob(reportPath string, opts ...JobOption) *Job {
	base := filepath.Base(reportPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	j := &Job{
		Name:           name,
		ReportPath:     reportPath,
		OutputPath:     filepath.Join(filepath.Dir(reportPath), name+config.DefaultOutputExtension),
		PerformedSteps: make([]string, 0),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// PreviewCandidates returns the preview paths to try, in order.
func (j *Job) PreviewCandidates(extensions []string) []string {
	if j.PreviewPath != "" {
		return []string{j.PreviewPath}
	}
	dir := filepath.Dir(j.ReportPath)
	candidates := make([]string, len(extensions))
	for i, ext := range extensions {
		candidates[i] = filepath.Join(dir, j.Name+ext)
	}
	return candidates
}

// SidecarPath returns the output path with its extension replaced by ext.
func (j *Job) SidecarPath(ext string) string {
	return strings.TrimSuffix(j.OutputPath, filepath.Ext(j.OutputPath)) + ext
}

// Failed reports whether a step failed.
func (j *Job) Failed() bool {
	return j.Err != nil
}
