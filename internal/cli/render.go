package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	clio "github.com/matzehuels/clustermap/pkg/io"
	"github.com/matzehuels/clustermap/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command that are
// not figure options.
type renderOpts struct {
	output   string // output file (single input and format) or directory
	jobs     int    // files rendered concurrently
	watch    bool   // re-render when an input changes
	refresh  bool   // ignore cached results
	detailed bool   // annotate tree output with merge heights
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	figure := newFigureFlags()
	opts := renderOpts{jobs: defaultJobs}

	cmd := &cobra.Command{
		Use:   "render <file|glob>...",
		Short: "Render clustered heatmaps from CSV, TSV or JSON matrices",
		Long: `Render clusters each input matrix and writes the composed figure in the
requested formats next to the input (or into --output).

Inputs may be glob patterns, including ** for recursive matches:

  clustermap render data/**/*.csv -f svg,png -k 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := figure.options(cmd)
			if err != nil {
				return err
			}
			popts.Refresh = opts.refresh
			popts.Detailed = opts.detailed
			if err := popts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), inputs, popts, opts)
		},
	}

	figure.register(cmd, true)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (one input, one format) or directory")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "number of files rendered concurrently")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "watch inputs and re-render on change")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute instead of reading the cache")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show merge heights in tree output")

	return cmd
}

// expandInputs resolves glob patterns to a sorted, de-duplicated file list.
// Arguments without glob syntax are kept as-is so a missing file is reported
// by the import.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// outputPath picks the file an artifact is written to.
func outputPath(input, format, output string, single bool) string {
	ext := pipeline.Extension(format)
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	switch {
	case output == "":
		return filepath.Join(filepath.Dir(input), base+ext)
	case single && filepath.Ext(output) != "":
		return output
	default:
		return filepath.Join(output, base+ext)
	}
}

func (c *CLI) runRender(ctx context.Context, inputs []string, popts pipeline.Options, opts renderOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	single := len(inputs) == 1 && len(popts.Formats) == 1
	if opts.output != "" && !(single && filepath.Ext(opts.output) != "") {
		if err := os.MkdirAll(opts.output, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if err := c.renderAll(ctx, runner, inputs, popts, opts, single); err != nil && !opts.watch {
		return err
	}
	if !opts.watch {
		return nil
	}
	return c.watch(ctx, inputs, func(changed []string) {
		if err := c.renderAll(ctx, runner, changed, popts, opts, single); err != nil {
			printError("%v", err)
		}
	})
}

// renderAll renders inputs with at most opts.jobs running at once. The
// first failure cancels the rest.
func (c *CLI) renderAll(ctx context.Context, runner *pipeline.Runner, inputs []string, popts pipeline.Options, opts renderOpts, single bool) error {
	g, gctx := errgroup.WithContext(ctx)
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	for _, input := range inputs {
		g.Go(func() error {
			return c.renderFile(gctx, runner, input, popts, opts, single)
		})
	}
	return g.Wait()
}

func (c *CLI) renderFile(ctx context.Context, runner *pipeline.Runner, input string, popts pipeline.Options, opts renderOpts, single bool) error {
	prog := newProgress(c.Logger)

	ds, err := clio.Import(input)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	popts.Compose.RowLabels = ds.RowLabels
	popts.Compose.ColLabels = ds.ColLabels
	popts.Logger = c.Logger.With("file", input)

	result, err := runner.Execute(ctx, ds.Data, popts)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	for _, adj := range result.Figure.Adjustments {
		printWarning("%s: %s clusters clamped from %d to %d", input, adj.Axis, adj.Requested, adj.Applied)
	}
	printSuccess("%s", input)
	printStats(result.Stats.Rows, result.Stats.Cols, result.CacheInfo.RenderHit)
	for _, format := range popts.Formats {
		path := outputPath(input, format, opts.output, single)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	prog.done("Rendered " + input)
	return nil
}

// watch calls render with the inputs that changed, debounced, until ctx is
// done.
func (c *CLI) watch(ctx context.Context, inputs []string, render func(changed []string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	watched := make(map[string]bool, len(inputs))
	dirs := make(map[string]bool)
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	// Editors replace files on save, so watch directories, not files.
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	printInfo("Watching %d file(s) for changes (ctrl+c to stop)", len(inputs))

	const debounce = 150 * time.Millisecond
	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil || !watched[abs] {
				continue
			}
			c.Logger.Debug("input changed", "file", ev.Name, "op", ev.Op.String())
			pending[abs] = true
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			render(changed)
		}
	}
}
