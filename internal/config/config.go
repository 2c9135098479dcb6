package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "preflightreport"

	// DefaultBatchSize is the number of reports rendered concurrently.
	// Rendering is CPU bound, so a small pool is enough.
	DefaultBatchSize = 4

	// DefaultOutputExtension is the extension of rendered reports.
	DefaultOutputExtension = ".pdf"
)

// DefaultPreviewExtensions are tried in order when looking for the preview
// image next to a preflight report.
var DefaultPreviewExtensions = []string{".jpg", ".jpeg", ".png"}

// Config holds all configuration options of a run. It is populated from
// CLI flags and the configuration file and passed down explicitly.
type Config struct {
	// Targets are the preflight report XML files to render.
	Targets []string

	// PreviewPath overrides the preview image of a single target.
	PreviewPath string

	// OutputPath is the PDF file of a single target.
	// When empty the PDF is written next to the report as <name>.pdf.
	OutputPath string

	// OutputDir receives the rendered PDFs and sidecars of all targets.
	OutputDir string

	// MarkdownReport writes a <name>.md summary next to each PDF.
	MarkdownReport bool

	// JSONReport writes a <name>.json summary next to each PDF.
	JSONReport bool

	// BatchSize is the number of reports rendered concurrently.
	BatchSize int

	// ForceCentering ignores explicit page box origins for every profile.
	ForceCentering bool

	// PreviewExtensions are tried in order when looking for a preview.
	PreviewExtensions []string

	// Author is recorded in the document information of the PDFs.
	Author string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is the explicit configuration file, if any.
	ConfigFilePath string

	// Profiles holds the per-profile settings from the configuration file.
	Profiles *File

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB records every rendered report in the history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize:         DefaultBatchSize,
		PreviewExtensions: append([]string(nil), DefaultPreviewExtensions...),
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// XDGDataDir returns the XDG data directory of preflightreport, which holds
// the history database.
// On Linux: ~/.local/share/preflightreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory of preflightreport.
// On Linux: ~/.config/preflightreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.OutputPath != "" && (len(c.Targets) > 1 || c.OutputDir != "") {
		return ErrConflictingOutput
	}
	if c.PreviewPath != "" && len(c.Targets) > 1 {
		return ErrConflictingPreview
	}
	for _, ext := range c.PreviewExtensions {
		if !strings.HasPrefix(ext, ".") {
			return ErrInvalidPreviewExtension
		}
	}
	return nil
}

// Settings are the effective options for one preflight profile.
type Settings struct {
	ForceCentering    bool
	PreviewExtensions []string
	Author            string
}

// SettingsFor merges the command line options with the configuration file
// entry of profile. A force-centering flag on the command line always wins;
// otherwise the file decides, falling back to the command line values.
func (c *Config) SettingsFor(profile string) Settings {
	s := Settings{
		ForceCentering:    c.ForceCentering,
		PreviewExtensions: c.PreviewExtensions,
		Author:            c.Author,
	}
	if c.Profiles == nil {
		return s
	}

	pc := c.Profiles.GetProfileConfig(profile)
	if pc.ForceCentering != nil && !c.ForceCentering {
		s.ForceCentering = *pc.ForceCentering
	}
	if len(pc.PreviewExtensions) > 0 {
		s.PreviewExtensions = pc.PreviewExtensions
	}
	if pc.Author != "" && c.Author == "" {
		s.Author = pc.Author
	}
	return s
}
