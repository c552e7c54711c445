package cmd

import (
	"errors"
	"fmt"

	"github.com/connorhough/vidresume/internal/browser"
	"github.com/connorhough/vidresume/internal/config"
	"github.com/connorhough/vidresume/internal/desktop"
	"github.com/connorhough/vidresume/internal/metrics"
	"github.com/connorhough/vidresume/internal/session"
	"github.com/connorhough/vidresume/internal/video"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newLauncher builds the browser launcher for a run. Tests replace it.
var newLauncher = func(path string, flags []string) browser.Launcher {
	return browser.NewExecLauncher(path, flags)
}

func newRestoreCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
		width  int
	)

	cmd := &cobra.Command{
		Use:   "restore --file videos.yaml",
		Short: "Resume every partially watched video in a task file",
		Long: `Open each eligible video at its saved position, tile the windows, click each
player to start and then pause it, and close the windows.

A video is eligible when it is a YouTube video watched past the first second.
The task file is YAML or JSON: a list of {id, source, url, position, duration}
records, or the same list under a top-level "videos" key. Use "-" to read
stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}

			tasks, err := readTasks(cmd, file)
			if err != nil {
				return err
			}

			if dryRun {
				return runDryRun(cmd, settings, tasks, width)
			}

			backend, err := desktop.Default()
			if err != nil {
				return err
			}

			rec := metrics.New()
			seq := session.New(
				backend,
				newLauncher(settings.BrowserPath, settings.BrowserFlags),
				settings.Session,
				session.WithLogger(logger.With(zap.String("backend", backend.Name()))),
				session.WithMetrics(rec),
			)

			report, runErr := seq.Run(cmd.Context(), tasks)
			if errors.Is(runErr, session.ErrSessionActive) {
				return runErr
			}
			if report != nil {
				renderReport(cmd.OutOrStdout(), report)
			}
			if err := rec.WriteTextfile(settings.MetricsFile); err != nil {
				logger.Warn("metrics not written", zap.String("path", settings.MetricsFile), zap.Error(err))
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "task file (YAML or JSON), or - for stdin")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print seek URLs and window cells without opening anything")
	cmd.Flags().IntVar(&width, "width", 0, "display width for --dry-run (default: the primary display's work area)")

	return cmd
}

func readTasks(cmd *cobra.Command, file string) ([]video.Task, error) {
	if file == "-" {
		return video.DecodeTasks(cmd.InOrStdin())
	}
	return video.LoadTasks(file)
}

func runDryRun(cmd *cobra.Command, settings *config.Settings, tasks []video.Task, width int) error {
	area := desktop.Rect{Width: width}
	if width <= 0 {
		backend, err := desktop.Default()
		if err != nil {
			return fmt.Errorf("pass --width: %w", err)
		}
		if area, err = backend.WorkArea(cmd.Context()); err != nil {
			return fmt.Errorf("failed to read display work area: %w", err)
		}
	}

	plan, err := session.Plan(settings.Session, tasks, area)
	if err != nil {
		return err
	}
	renderPlan(cmd.OutOrStdout(), plan, len(tasks))
	return nil
}
