package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	mdwlog "github.com/anemortalkid/kaleido/foundation/core/log"
	"github.com/anemortalkid/kaleido/foundation/kaleido"
	"github.com/anemortalkid/kaleido/pkg/core/config"
	"github.com/anemortalkid/kaleido/pkg/core/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	verbose   bool

	appConfig *config.Config
	logger    *mdwlog.Logger
)

// errParseFailed is returned once diagnostics have been reported; the
// diagnostics themselves are the message
var errParseFailed = mdwerror.New("source contains parse errors").
	WithCode(mdwerror.CodeSyntaxError).
	WithOperation("cmd.parse")

var rootCmd = &cobra.Command{
	Use:   "kaleido",
	Short: "Kaleido - Toy language front end",
	Long: `Kaleido tokenizes and parses the Kaleidoscope toy language.

Every top-level unit (function definition, extern declaration or
anonymous expression) is reported as soon as it is parsed. Syntax
errors are reported on stderr and parsing resumes after the
offending token.

Commands:
  parse    - Parse files or stdin
  tokens   - Dump the token stream
  repl     - Interactive parser
  serve    - WebSocket and gRPC parse service
  history  - Stored units and sessions`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command and prints any error except the parse
// failure marker
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errParseFailed) {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// ExitStatus maps err to the process exit status
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return mdwerror.CodeCanceled.ExitStatus()
	}
	return mdwerror.GetCode(err).ExitStatus()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./kaleido.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json, console)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (log level debug)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return mdwerror.Wrap(err, "invalid arguments").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("cmd." + cmd.Name())
	})
}

// loadConfig resolves the configuration and installs the process logger
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	if logLevel != "" {
		cfg.General.LogLevel = logLevel
	}
	if verbose {
		cfg.General.LogLevel = "debug"
	}
	if logFormat != "" {
		cfg.General.LogFormat = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	appConfig = cfg
	logger = logging.Install(logging.LoggerConfig{
		ServiceName: cfg.General.Name,
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
		Output:      cmd.ErrOrStderr(),
	})
	logger.Debug("configuration loaded", mdwlog.Fields{
		"command":  cmd.Name(),
		"logLevel": cfg.General.LogLevel,
	})
	return nil
}

// newEngine builds an engine from the loaded parser configuration
func newEngine() (*kaleido.Engine, error) {
	return kaleido.New(kaleido.Options{
		Logger:         logger,
		MaxErrors:      appConfig.Parser.MaxErrors,
		ValidateAST:    appConfig.Parser.ValidateAST,
		MaxSourceBytes: appConfig.Parser.MaxSourceBytes,
	})
}

// readSource reads path, or stdin when path is empty or "-"
func readSource(cmd *cobra.Command, path string) (string, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", mdwerror.Wrap(err, "failed to read stdin").
				WithCode(mdwerror.CodeIOError).
				WithOperation("cmd.readSource")
		}
		return string(data), "<stdin>", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		code := mdwerror.CodeIOError
		if os.IsNotExist(err) {
			code = mdwerror.CodeNotFound
		}
		return "", "", mdwerror.Wrap(err, "failed to read source").
			WithCode(code).
			WithOperation("cmd.readSource").
			WithDetail("path", path)
	}
	return string(data), path, nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", strings.TrimSpace(err.Error()))
}
