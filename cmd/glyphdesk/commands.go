package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glyphdesk/glyphdesk/internal/app"
	"github.com/glyphdesk/glyphdesk/internal/plugin"
	"github.com/glyphdesk/glyphdesk/internal/storage"
)

func newBackendsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available storage backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tREADY\tSAVES\tDEFAULT PATH")
			for _, p := range a.Registry().GetAll() {
				info := p.Info()
				marker := ""
				if info.ID == a.Registry().DefaultID() {
					marker = " *"
				}
				fmt.Fprintf(w, "%s%s\t%s\t%t\t%t\t%s\n",
					info.ID, marker, info.DisplayName,
					p.IsReady(ctx), p.CanSave(), p.DefaultPath())
			}
			return w.Flush()
		},
	}
}

func newLsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory on the active backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			dir := a.Active().DefaultPath()
			if len(args) == 1 {
				dir = args[0]
			}

			entries, err := a.Adapter().ScanDirectory(ctx, dir)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func newTreeCmd(opts *cliOptions) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "List a directory tree on the active backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			start := a.Active().DefaultPath()
			if len(args) == 1 {
				start = args[0]
			}
			if depth == 0 {
				depth = a.ScanDepth()
			}

			entries, err := storage.ScanTree(ctx, a.Adapter(), start, depth)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "maximum depth (default from config)")
	return cmd
}

func newCatCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file from the active backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.Adapter().ReadFile(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newWriteCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "write <path>",
		Short: "Write stdin to a file on the active backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.Active().CanSave() {
				return fmt.Errorf("backend %q is read-only", a.ActiveID())
			}

			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			return a.Adapter().WriteFile(ctx, args[0], data)
		},
	}
}

func newMkdirCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory on the active backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Adapter().CreateFolder(ctx, args[0])
		},
	}
}

func newRmCmd(opts *cliOptions) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Remove a file or directory on the active backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Adapter().DeleteItem(ctx, args[0], recursive)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove a directory and its contents")
	return cmd
}

// printEntries writes a sorted listing to w.
func printEntries(w io.Writer, entries map[string]storage.Entry) {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)

	byPath := make(map[string]storage.Entry, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range paths {
		e := byPath[p]
		kind := "file"
		size := fmt.Sprintf("%d", e.Size)
		if e.IsDirectory {
			kind = "dir"
			size = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", kind, size, p)
	}
	tw.Flush()
}

// requireDisk fetches the disk plugin, which backs the directory commands.
func requireDisk(a *app.App) (*plugin.DiskPlugin, error) {
	p, ok := a.Registry().Get(plugin.DiskID)
	if !ok {
		return nil, fmt.Errorf("disk backend is not registered")
	}
	disk, ok := p.(*plugin.DiskPlugin)
	if !ok {
		return nil, fmt.Errorf("backend %q is not the disk plugin", plugin.DiskID)
	}
	return disk, nil
}
