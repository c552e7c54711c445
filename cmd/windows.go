package cmd

import (
	"github.com/connorhough/vidresume/internal/config"
	"github.com/connorhough/vidresume/internal/desktop"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWindowsCmd() *cobra.Command {
	var class string

	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List the browser windows vidresume can see",
		Long: `List the visible top-level windows matching the configured browser window
class, with their handle, owning process, title and bounds. Use it to check
browser.window_class before a restore.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if class == "" {
				settings, err := config.Load()
				if err != nil {
					return err
				}
				class = settings.WindowClass
			}

			backend, err := desktop.Default()
			if err != nil {
				return err
			}

			refs, err := backend.ListWindows(cmd.Context(), class)
			if err != nil {
				return err
			}

			rows := make([]windowRow, 0, len(refs))
			for _, w := range refs {
				bounds, err := backend.Bounds(cmd.Context(), w.Handle)
				if err != nil {
					// Closed since the listing.
					logger.Debug("bounds unavailable", zap.Stringer("window", w.Handle), zap.Error(err))
				}
				rows = append(rows, windowRow{ref: w, bounds: bounds, ok: err == nil})
			}
			renderWindows(cmd.OutOrStdout(), backend.Name(), class, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "window class to match (default: browser.window_class)")

	return cmd
}

type windowRow struct {
	ref    desktop.WindowRef
	bounds desktop.Rect
	ok     bool
}
