package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glyphdesk/glyphdesk/internal/app"
	"github.com/glyphdesk/glyphdesk/internal/storage/oshost"
	"github.com/glyphdesk/glyphdesk/internal/watcher"
)

// diskRootPath returns the OS path behind the disk backend's root handle.
func diskRootPath(a *app.App) (string, error) {
	root := a.Native().Root()
	if root == nil {
		return "", fmt.Errorf("no directory selected; run select-dir first")
	}
	path, ok := oshost.Path(root)
	if !ok {
		return "", fmt.Errorf("selected directory is not a local path")
	}
	return path, nil
}

func newSelectDirCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select-dir <path>",
		Short: "Grant the disk backend access to a local directory",
		Long: `Select the local directory the disk backend operates on.

The selection is persisted, so later invocations (and the desktop app)
adopt it without asking again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			opts.pickPath = abs

			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			disk, err := requireDisk(a)
			if err != nil {
				return err
			}
			done, err := disk.ShowSetup(ctx)
			if err != nil {
				return err
			}
			if !done {
				return fmt.Errorf("directory %s was not granted", abs)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", disk.RootName())
			return nil
		},
	}
}

func newForgetDirCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forget-dir",
		Short: "Revoke the disk backend's directory association",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			disk, err := requireDisk(a)
			if err != nil {
				return err
			}
			if !disk.IsReady(ctx) {
				fmt.Fprintln(cmd.OutOrStdout(), "No directory selected.")
				return nil
			}

			name := disk.RootName()
			if err := disk.Forget(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s\n", name)
			return nil
		},
	}
}

func newWatchCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the selected directory for external changes",
		Long:  "Print debounced change events for the disk backend's directory until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			root, err := diskRootPath(a)
			if err != nil {
				return err
			}

			w, err := watcher.New(0, a.Logger().Named("watch"))
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.WatchTree(root); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", root)

			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-w.Events():
					if !ok {
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ev.Op, ev.Path)
				case err, ok := <-w.Errors():
					if !ok {
						return nil
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
				}
			}
		},
	}
}
