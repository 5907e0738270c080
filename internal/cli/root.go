package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/comalice/boundsx"
	"github.com/comalice/boundsx/internal/production"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the build information shown by --version and the version
// command. It is typically called from main with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

type options struct {
	verbose    bool
	configPath string
}

// engineConfig loads --config, or returns the defaults when it is unset.
func (o *options) engineConfig() (boundsx.Config, error) {
	if o.configPath == "" {
		return boundsx.DefaultConfig(), nil
	}
	cfg, err := production.LoadConfig(o.configPath)
	if err != nil {
		return boundsx.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// NewRootCommand builds the command tree writing results to out and logs
// to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "boundsx",
		Short:        "boundsx simulates shared-element bounds resolution",
		Long:         `boundsx runs scripted navigation scenarios against the bounds engine and inspects the link stacks, snapshots and presence they leave behind.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(errOut, level)))
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetVersionTemplate(versionText())
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "engine config file (yaml, toml or json)")

	root.AddCommand(newSimulateCmd(opts))
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the boundsx CLI.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func versionText() string {
	return fmt.Sprintf("boundsx %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionText())
		},
	}
}
