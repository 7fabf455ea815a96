// Package main is the glyphdesk storage command line.
//
// It exposes the storage backends for scripting and debugging: listing,
// reading, and writing files on any backend, plus the disk backend's
// directory selection flow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glyphdesk/glyphdesk/internal/app"
	"github.com/glyphdesk/glyphdesk/internal/storage/oshost"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// cliOptions are the persistent flags shared by every subcommand.
type cliOptions struct {
	configPath string
	backend    string

	// pickPath, when set by a subcommand, makes the directory chooser
	// return it instead of failing.
	pickPath string
}

// open assembles the application for one command invocation.
func (o *cliOptions) open(ctx context.Context) (*app.App, error) {
	var pick oshost.PickFunc
	if o.pickPath != "" {
		path := o.pickPath
		pick = func(context.Context) (string, error) { return path, nil }
	}

	a, err := app.New(ctx, app.Options{
		ConfigPath:    o.configPath,
		PickDirectory: pick,
	})
	if err != nil {
		return nil, err
	}

	if o.backend != "" {
		if _, err := a.Activate(ctx, o.backend); err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	return a, nil
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           "glyphdesk",
		Short:         "Glyphdesk storage tool",
		Long:          "Inspect and manipulate glyphdesk storage backends.",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to configuration file")
	cmd.PersistentFlags().StringVarP(&opts.backend, "backend", "b", "", "backend to operate on (default from config)")

	cmd.AddCommand(
		newBackendsCmd(opts),
		newLsCmd(opts),
		newTreeCmd(opts),
		newCatCmd(opts),
		newWriteCmd(opts),
		newMkdirCmd(opts),
		newRmCmd(opts),
		newSelectDirCmd(opts),
		newForgetDirCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}
