package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestNewJob tests path derivation for jobs.
func TestNewJob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		reportPath string
		opts       []JobOption
		wantName   string
		wantOutput string
	}{
		{
			name:       "next to report",
			reportPath: filepath.Join("jobs", "flyer.xml"),
			wantName:   "flyer",
			wantOutput: filepath.Join("jobs", "flyer.pdf"),
		},
		{
			name:       "output dir",
			reportPath: filepath.Join("jobs", "flyer.xml"),
			opts:       []JobOption{WithOutputDir("out")},
			wantName:   "flyer",
			wantOutput: filepath.Join("out", "flyer.pdf"),
		},
		{
			name:       "explicit output",
			reportPath: "flyer.xml",
			opts:       []JobOption{WithOutputPath("report.pdf")},
			wantName:   "flyer",
			wantOutput: "report.pdf",
		},
		{
			name:       "empty options are ignored",
			reportPath: "a.b.xml",
			opts:       []JobOption{WithOutputPath(""), WithOutputDir(""), WithPreviewPath("")},
			wantName:   "a.b",
			wantOutput: "a.b.pdf",
		},
		{
			name:       "no extension",
			reportPath: "poster",
			wantName:   "poster",
			wantOutput: "poster.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := NewJob(tt.reportPath, tt.opts...)
			if job.Name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, job.Name)
			}
			if job.OutputPath != tt.wantOutput {
				t.Errorf("expected output %q, got %q", tt.wantOutput, job.OutputPath)
			}
			if job.PreviewPath != "" {
				t.Errorf("expected no preview path, got %q", job.PreviewPath)
			}
		})
	}
}

func TestJobPreviewCandidates(t *testing.T) {
	t.Parallel()

	t.Run("derived from report name", func(t *testing.T) {
		t.Parallel()

		job := NewJob(filepath.Join("jobs", "flyer.xml"))
		got := job.PreviewCandidates([]string{".jpg", ".png"})
		want := []string{filepath.Join("jobs", "flyer.jpg"), filepath.Join("jobs", "flyer.png")}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("candidates mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("explicit preview wins", func(t *testing.T) {
		t.Parallel()

		job := NewJob("flyer.xml", WithPreviewPath("scan.tiff"))
		got := job.PreviewCandidates([]string{".jpg"})
		if diff := cmp.Diff([]string{"scan.tiff"}, got); diff != "" {
			t.Errorf("candidates mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestJobSidecarPath(t *testing.T) {
	t.Parallel()

	job := NewJob(filepath.Join("jobs", "flyer.xml"))
	if got := job.SidecarPath(".md"); got != filepath.Join("jobs", "flyer.md") {
		t.Errorf("expected markdown sidecar next to PDF, got %q", got)
	}

	job = NewJob("flyer.xml", WithOutputPath("final.report.pdf"))
	if got := job.SidecarPath(".json"); got != "final.report.json" {
		t.Errorf("expected final.report.json, got %q", got)
	}
}
