package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/comalice/boundsx"
	"github.com/comalice/boundsx/internal/production"
	"github.com/comalice/boundsx/internal/scenario"
)

// ErrChecksFailed is returned by simulate when any expectation failed.
var ErrChecksFailed = errors.New("scenario checks failed")

type simulateOpts struct {
	dump string
	dot  string
}

func newSimulateCmd(root *options) *cobra.Command {
	opts := &simulateOpts{}

	cmd := &cobra.Command{
		Use:   "simulate <scenario>...",
		Short: "Run navigation scenarios and check resolved pairs",
		Long: `Run one or more scenario files (yaml, toml or json). Each scenario mounts
simulated boundaries, drives pushes, dismissals, scrolls and group changes
through the capture runtime, and evaluates its expectations.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.dump, "dump", "", "write the final engine state of the last scenario to this .json or .yaml file")
	cmd.Flags().StringVar(&opts.dot, "dot", "", "write the final link graph of the last scenario as Graphviz DOT")
	return cmd
}

func runSimulate(cmd *cobra.Command, root *options, opts *simulateOpts, paths []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	cfg, err := root.engineConfig()
	if err != nil {
		return err
	}

	var (
		last   *scenario.Result
		failed int
	)
	for _, path := range paths {
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}
		if sc.Config == nil {
			sc.Config = &cfg
		}

		res, err := runTraced(ctx, logger, sc)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		last = res

		name := sc.Name
		if name == "" {
			name = filepath.Base(path)
		}
		printTitle(out, "%s", name)
		for _, c := range res.Checks {
			if c.Passed {
				printSuccess(out, "step %d %s: %s", c.Step, c.Tag, c.Expression)
			} else {
				printError(out, "step %d %s: %s", c.Step, c.Tag, c.Expression)
			}
		}
		printDetail(out, "%d steps, %d checks, %d failed", res.Steps, len(res.Checks), len(res.Failed()))
		failed += len(res.Failed())
	}

	if opts.dump != "" {
		if err := saveDump(ctx, opts.dump, last.State); err != nil {
			return err
		}
		printFile(out, opts.dump)
	}
	if opts.dot != "" {
		v := &production.DefaultVisualizer{}
		if err := os.WriteFile(opts.dot, []byte(v.ExportDOT(last.State)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.dot, err)
		}
		printFile(out, opts.dot)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d", ErrChecksFailed, failed)
	}
	return nil
}

// runTraced runs sc and, at debug level, streams every engine change to the
// logger.
func runTraced(ctx context.Context, logger *log.Logger, sc *scenario.Scenario) (*scenario.Result, error) {
	runnerOpts := []scenario.Option{scenario.WithLogger(logger)}
	if logger.GetLevel() > log.DebugLevel {
		return scenario.NewRunner(runnerOpts...).Run(ctx, sc)
	}

	ch := make(chan boundsx.Change, 256)
	pub := production.NewChannelPublisher(ch)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for c := range ch {
			logger.Debug("change", "kind", c.Kind, "tag", c.Tag, "screen", c.Screen, "link", c.LinkID, "gen", c.Generation)
		}
	}()

	runnerOpts = append(runnerOpts, scenario.WithEngineOptions(boundsx.WithPublisher(pub)))
	res, err := scenario.NewRunner(runnerOpts...).Run(ctx, sc)
	pub.Close()
	wg.Wait()
	if n := pub.Dropped(); n > 0 {
		logger.Debug("changes dropped", "count", n)
	}
	return res, err
}

type dumpSaver interface {
	Save(ctx context.Context, name string, state boundsx.State) error
}

func saveDump(ctx context.Context, path string, state boundsx.State) error {
	f, err := production.FormatOf(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var p dumpSaver
	switch f {
	case production.FormatJSON:
		p, err = production.NewJSONPersister(dir)
	case production.FormatYAML:
		if ext := filepath.Ext(path); ext != ".yaml" {
			return fmt.Errorf("dump %s: use the .yaml extension: %w", path, production.ErrUnsupportedFormat)
		}
		p, err = production.NewYAMLPersister(dir)
	default:
		return fmt.Errorf("dump %s: %w", path, production.ErrUnsupportedFormat)
	}
	if err != nil {
		return err
	}
	return p.Save(ctx, name, state)
}
