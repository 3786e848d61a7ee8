package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
	"github.com/anemortalkid/kaleido/foundation/kaleido"
	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
	"github.com/anemortalkid/kaleido/internal/emit"
	"github.com/anemortalkid/kaleido/internal/server"
	"github.com/anemortalkid/kaleido/internal/store"
	"github.com/anemortalkid/kaleido/internal/watch"
)

var (
	parseFormat string
	parseColor  bool
	parseStore  bool
	parseWatch  bool
	parseRemote string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]...",
	Short: "Parses Kaleidoscope source",
	Long: `Parses one or more files, or stdin when no file (or "-") is given.

Units are written to stdout as they are parsed, diagnostics to stderr.
The exit status is 1 when any syntax error was reported.

Examples:
  kaleido parse fib.kal
  echo "def f(x) x*2" | kaleido parse --format tree
  kaleido parse --watch --store fib.kal
  kaleido parse --remote localhost:9480 fib.kal`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "Output format (text, tree, json, yaml)")
	parseCmd.Flags().BoolVar(&parseColor, "color", false, "Colored output")
	parseCmd.Flags().BoolVar(&parseStore, "store", false, "Record units and diagnostics in the store")
	parseCmd.Flags().BoolVarP(&parseWatch, "watch", "w", false, "Reparse the file whenever it changes")
	parseCmd.Flags().StringVar(&parseRemote, "remote", "", "Parse on a remote server (gRPC address)")
}

// parseRun holds what every parse of one invocation shares
type parseRun struct {
	engine *kaleido.Engine
	remote *server.Client
	store  store.Store
	out    *emit.Writer
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if parseWatch && (len(args) != 1 || args[0] == "-") {
		return mdwerror.New("--watch needs exactly one file").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("cmd.parse")
	}

	run, cleanup, err := newParseRun(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(args) == 0 {
		args = []string{"-"}
	}

	failed := false
	for _, path := range args {
		src, name, err := readSource(cmd, path)
		if err != nil {
			return err
		}
		diagnostics, err := run.parse(ctx, src, name)
		if err != nil {
			return err
		}
		failed = failed || diagnostics > 0
	}

	if parseWatch {
		err := watch.Watch(ctx, args[0], func(ctx context.Context, path string) {
			src, name, err := readSource(cmd, path)
			if err == nil {
				_, err = run.parse(ctx, src, name)
			}
			if err != nil {
				printError(cmd.ErrOrStderr(), err)
			}
		})
		return err
	}

	if failed {
		return errParseFailed
	}
	return nil
}

func newParseRun(cmd *cobra.Command) (*parseRun, func(), error) {
	format := parseFormat
	if format == "" {
		format = appConfig.Output.Format
	}
	f, err := emit.ParseFormat(format)
	if err != nil {
		return nil, nil, err
	}

	run := &parseRun{
		out: emit.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), emit.Options{
			Format: f,
			Color:  parseColor || appConfig.Output.Color,
		}),
	}
	var closers []func() error

	if parseRemote != "" {
		client, err := server.Dial(parseRemote)
		if err != nil {
			return nil, nil, err
		}
		run.remote = client
		closers = append(closers, client.Close)
	} else {
		if run.engine, err = newEngine(); err != nil {
			return nil, nil, err
		}
	}

	if parseStore || appConfig.Store.Enabled {
		s, err := store.Open(store.Config{Path: appConfig.Store.Path})
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, err
		}
		run.store = s
		closers = append(closers, s.Close)
	}

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("cleanup failed", mdwlog.Fields{"error": err.Error()})
			}
		}
	}
	return run, cleanup, nil
}

// parse runs one source through the configured sinks and returns the
// number of diagnostics
func (r *parseRun) parse(ctx context.Context, src, name string) (int, error) {
	counter := emit.NewCounter()
	sinks := []parser.Sink{r.out, counter}

	var rec *store.Recorder
	if r.store != nil {
		var err error
		if rec, err = store.Record(ctx, r.store, name); err != nil {
			return 0, err
		}
		sinks = append(sinks, rec)
	}
	sink := emit.Tee(sinks...)

	var err error
	if r.remote != nil {
		err = r.parseRemote(ctx, src, sink)
	} else {
		_, err = r.engine.Run(ctx, strings.NewReader(src), sink)
	}
	if err == nil && rec != nil {
		err = rec.Err()
	}

	logger.Info("source parsed", mdwlog.Fields{
		"source":      name,
		"units":       counter.Units(0),
		"diagnostics": counter.Diagnostics(),
		"remote":      r.remote != nil,
	})
	return counter.Diagnostics(), err
}

// parseRemote replays a remote result into sink: units first, then
// diagnostics, since the response does not keep their interleaving
func (r *parseRun) parseRemote(ctx context.Context, src string, sink parser.Sink) error {
	result, err := r.remote.Parse(ctx, src)
	if err != nil {
		return err
	}
	for _, unit := range result.Units {
		if err := sink.Unit(unit); err != nil {
			return err
		}
	}
	for _, d := range result.Diagnostics {
		sink.Diagnostic(d)
	}
	return nil
}
