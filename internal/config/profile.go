package config

// ProfileConfig holds the settings applied to reports of one preflight
// profile.
type ProfileConfig struct {
	// ForceCentering ignores explicit page box origins. Nil means unset.
	ForceCentering *bool `yaml:"force_centering,omitempty"`

	// PreviewExtensions are tried in order when looking for the preview.
	PreviewExtensions []string `yaml:"preview_extensions,omitempty"`

	// Author is recorded in the document information of the PDF.
	Author string `yaml:"author,omitempty"`
}

// File represents the structure of the .preflightreport configuration file.
type File struct {
	// Defaults apply to every profile unless overridden.
	Defaults ProfileConfig `yaml:"defaults,omitempty"`

	// Profiles maps preflight profile names, as written in the report, to
	// their settings.
	Profiles map[string]ProfileConfig `yaml:"profiles,omitempty"`
}

// GetProfileConfig returns the settings of a profile merged over the
// defaults.
func (cf *File) GetProfileConfig(profile string) ProfileConfig {
	result := cf.Defaults

	pc, ok := cf.Profiles[profile]
	if !ok {
		return result
	}
	if pc.ForceCentering != nil {
		result.ForceCentering = pc.ForceCentering
	}
	if len(pc.PreviewExtensions) > 0 {
		result.PreviewExtensions = pc.PreviewExtensions
	}
	if pc.Author != "" {
		result.Author = pc.Author
	}
	return result
}
