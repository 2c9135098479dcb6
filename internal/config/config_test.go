package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func boolPtr(b bool) *bool {
	return &b
}

// TestNewConfig verifies the default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default BatchSize is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 4 {
			t.Errorf("expected BatchSize to be 4, got %d", cfg.BatchSize)
		}
	})

	t.Run("default preview extensions", func(t *testing.T) {
		t.Parallel()
		if diff := cmp.Diff([]string{".jpg", ".jpeg", ".png"}, cfg.PreviewExtensions); diff != "" {
			t.Errorf("preview extensions mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("history is enabled in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("defaults are not shared", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.PreviewExtensions[0] = ".tif"
		if DefaultPreviewExtensions[0] != ".jpg" {
			t.Error("expected package defaults to be unchanged")
		}
	})
}

// TestConfigValidate tests the validation rules.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "valid single target",
			modify:  func(c *Config) { c.Targets = []string{"a.xml"} },
			wantErr: nil,
		},
		{
			name:    "no target",
			modify:  func(c *Config) {},
			wantErr: ErrNoTarget,
		},
		{
			name: "zero batch size",
			modify: func(c *Config) {
				c.Targets = []string{"a.xml"}
				c.BatchSize = 0
			},
			wantErr: ErrInvalidBatchSize,
		},
		{
			name: "output with several targets",
			modify: func(c *Config) {
				c.Targets = []string{"a.xml", "b.xml"}
				c.OutputPath = "out.pdf"
			},
			wantErr: ErrConflictingOutput,
		},
		{
			name: "output with output dir",
			modify: func(c *Config) {
				c.Targets = []string{"a.xml"}
				c.OutputPath = "out.pdf"
				c.OutputDir = "out"
			},
			wantErr: ErrConflictingOutput,
		},
		{
			name: "output dir with several targets",
			modify: func(c *Config) {
				c.Targets = []string{"a.xml", "b.xml"}
				c.OutputDir = "out"
			},
			wantErr: nil,
		},
		{
			name: "preview with several targets",
			modify: func(c *Config) {
				c.Targets = []string{"a.xml", "b.xml"}
				c.PreviewPath = "a.jpg"
			},
			wantErr: ErrConflictingPreview,
		},
		{
			name: "extension without dot",
			modify: func(c *Config) {
				c.Targets = []string{"a.xml"}
				c.PreviewExtensions = []string{"jpg"}
			},
			wantErr: ErrInvalidPreviewExtension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestFileGetProfileConfig tests merging of profile settings over defaults.
func TestFileGetProfileConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: ProfileConfig{
			PreviewExtensions: []string{".jpg"},
			Author:            "prepress",
		},
		Profiles: map[string]ProfileConfig{
			"PDF/X-4": {
				ForceCentering:    boolPtr(true),
				PreviewExtensions: []string{".png", ".jpg"},
			},
			"Digital print": {
				Author: "digital team",
			},
		},
	}

	tests := []struct {
		name     string
		profile  string
		expected ProfileConfig
	}{
		{
			name:    "unknown profile gets defaults",
			profile: "Newspaper",
			expected: ProfileConfig{
				PreviewExtensions: []string{".jpg"},
				Author:            "prepress",
			},
		},
		{
			name:    "profile overrides extensions and centering",
			profile: "PDF/X-4",
			expected: ProfileConfig{
				ForceCentering:    boolPtr(true),
				PreviewExtensions: []string{".png", ".jpg"},
				Author:            "prepress",
			},
		},
		{
			name:    "profile overrides author only",
			profile: "Digital print",
			expected: ProfileConfig{
				PreviewExtensions: []string{".jpg"},
				Author:            "digital team",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.expected, cf.GetProfileConfig(tt.profile)); diff != "" {
				t.Errorf("profile config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestConfigSettingsFor tests how flags and the configuration file combine.
func TestConfigSettingsFor(t *testing.T) {
	t.Parallel()

	file := &File{
		Profiles: map[string]ProfileConfig{
			"strict": {ForceCentering: boolPtr(false), PreviewExtensions: []string{".tif"}, Author: "file"},
			"loose":  {ForceCentering: boolPtr(true)},
		},
	}

	t.Run("no file uses flags", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ForceCentering = true
		s := cfg.SettingsFor("strict")
		if !s.ForceCentering || s.PreviewExtensions[0] != ".jpg" {
			t.Errorf("unexpected settings %+v", s)
		}
	})

	t.Run("file applies when flags are unset", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Profiles = file
		s := cfg.SettingsFor("loose")
		if !s.ForceCentering {
			t.Error("expected force centering from the file")
		}
		s = cfg.SettingsFor("strict")
		if s.ForceCentering || s.Author != "file" || s.PreviewExtensions[0] != ".tif" {
			t.Errorf("unexpected settings %+v", s)
		}
	})

	t.Run("flags win over the file", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Profiles = file
		cfg.ForceCentering = true
		cfg.Author = "cli"
		s := cfg.SettingsFor("strict")
		if !s.ForceCentering || s.Author != "cli" {
			t.Errorf("unexpected settings %+v", s)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		return path
	}

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.preflightreport")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		path := write(t, `defaults:
  author: "Prepress"
  preview_extensions: [".jpg", ".png"]
profiles:
  "PDF/X-4 Sheetfed":
    force_centering: true
    preview_extensions:
      - ".tif"
`)
		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.Author != "Prepress" {
			t.Errorf("expected default author, got %q", cfg.Defaults.Author)
		}
		p, ok := cfg.Profiles["PDF/X-4 Sheetfed"]
		if !ok {
			t.Fatal("expected PDF/X-4 Sheetfed profile")
		}
		if p.ForceCentering == nil || !*p.ForceCentering {
			t.Error("expected force_centering true")
		}
		if diff := cmp.Diff([]string{".tif"}, p.PreviewExtensions); diff != "" {
			t.Errorf("extensions mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfigFile(write(t, `invalid: yaml: content: [}`)); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("rejects extension without dot", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(write(t, "profiles:\n  x:\n    preview_extensions: [\"jpg\"]\n"))
		if !errors.Is(err, ErrInvalidPreviewExtension) {
			t.Fatalf("expected ErrInvalidPreviewExtension, got %v", err)
		}
		if !strings.Contains(err.Error(), `"x"`) {
			t.Errorf("expected profile name in error, got %v", err)
		}
	})

	t.Run("initializes nil Profiles map", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile(write(t, "defaults:\n  author: a\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Profiles == nil {
			t.Error("expected Profiles map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("expected %s dir to end in %s, got %q", name, AppName, dir)
		}
	}
}
