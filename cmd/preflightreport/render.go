package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/printops/preflightreport/internal/config"
	"github.com/printops/preflightreport/internal/database"
	"github.com/printops/preflightreport/internal/log"
	"github.com/printops/preflightreport/internal/pipeline"
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <report.xml>...",
		Short: "Render PDF reports from preflight result files",
		Long: `Render reads one or more preflight result XML files and writes a two-page
A4 PDF report for each of them.

The preview image is looked up next to the XML file as <name>.jpg, <name>.jpeg
or <name>.png unless --preview names it. A missing preview only leaves the
preview area of page two empty.

Examples:
  # Render flyer.pdf next to flyer.xml
  preflightreport render flyer.xml

  # Use an explicit preview and output path
  preflightreport render -p scans/flyer.png -o out/flyer.pdf flyer.xml

  # Render a whole folder into reports/, with Markdown and JSON summaries
  preflightreport render -d reports -m -j jobs/*.xml

  # Ignore explicit box origins and center every box
  preflightreport render --force-centering flyer.xml

Configuration file (.preflightreport) example:
  defaults:
    preview_extensions: [".png", ".jpg"]
  profiles:
    "PDF/X-4 Sheetfed":
      force_centering: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runRenderCmd,
	}

	// Input and output flags
	cmd.Flags().StringP("preview", "p", "",
		"Preview image of the page (only with a single report)")
	cmd.Flags().StringP("output", "o", "",
		"Output PDF path (only with a single report)")
	cmd.Flags().StringP("output-dir", "d", "",
		"Directory that receives all rendered reports")

	// Sidecar flags
	cmd.Flags().BoolP("markdown", "m", false,
		"Also write a Markdown summary next to each PDF")
	cmd.Flags().BoolP("json", "j", false,
		"Also write a JSON summary next to each PDF")

	// Batch rendering flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of reports rendered concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .preflightreport in current or home directory)")

	// Rendering flags
	cmd.Flags().Bool("force-centering", false,
		"Center bleed and trim boxes even when the report gives their origin")
	cmd.Flags().String("author", "",
		"Author recorded in the PDF document information")
	cmd.Flags().Bool("no-history", false,
		"Do not record the rendered reports in the history database")

	return cmd
}

// runRenderCmd executes the render command.
func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runRender(ctx, cmd.OutOrStdout(), cfg, logger)
}

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.PreviewPath, err = cmd.Flags().GetString("preview")
	if err != nil {
		return nil, err
	}

	cfg.OutputPath, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ForceCentering, err = cmd.Flags().GetBool("force-centering")
	if err != nil {
		return nil, err
	}

	cfg.Author, err = cmd.Flags().GetString("author")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named configuration file must exist; the default
	// locations are optional.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Profiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")
	cfg.Targets = args

	return cfg, nil
}

// runRender renders every target of cfg and prints one status line per
// report to w. It returns an error when at least one report failed.
func runRender(ctx context.Context, w io.Writer, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting render",
		"targets", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	pipelineOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineSettings(cfg.SettingsFor),
		pipeline.WithPipelineSidecars(cfg.MarkdownReport, cfg.JSONReport),
		pipeline.WithPipelineVersion(getVersion()),
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Debug("history database opened", "path", db.Path())
		pipelineOpts = append(pipelineOpts, pipeline.WithPipelineHistory(db))
	}

	jobs := make([]*pipeline.Job, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		jobs = append(jobs, pipeline.NewJob(target,
			pipeline.WithPreviewPath(cfg.PreviewPath),
			pipeline.WithOutputPath(cfg.OutputPath),
			pipeline.WithOutputDir(cfg.OutputDir),
		))
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(
				[]pipeline.Option{pipeline.WithLogger(logger)},
				pipelineOpts...,
			)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, jobs, func(job *pipeline.Job, index int) {
		mu.Lock()
		defer mu.Unlock()

		prefix := fmt.Sprintf("[%d/%d]", index+1, len(jobs))
		if job.Failed() {
			fmt.Fprintf(w, "%s %s %s: %v\n", prefix, red("FAILED"), job.ReportPath, job.Err)
			return
		}
		fmt.Fprintf(w, "%s %s %s -> %s (%d warning(s), %d error(s))\n",
			prefix, green("OK"), job.ReportPath, job.OutputPath,
			job.Summary.WarningCount, job.Summary.ErrorCount)
		for _, sidecar := range job.SidecarPaths {
			fmt.Fprintf(w, "       %s\n", sidecar)
		}
	})
	if err != nil {
		return fmt.Errorf("render interrupted: %w", err)
	}

	if failed := pipeline.Failed(jobs); len(failed) > 0 {
		return fmt.Errorf("%d of %d report(s) failed", len(failed), len(jobs))
	}
	return nil
}
