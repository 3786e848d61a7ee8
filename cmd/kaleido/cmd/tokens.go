package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anemortalkid/kaleido/internal/emit"
)

var tokensFormat string

var tokensCmd = &cobra.Command{
	Use:   "tokens [file|-]",
	Short: "Dumps the token stream",
	Long: `Tokenizes a file, or stdin, and prints one token per line up to and
including EOF. Malformed numbers stop the dump with an error.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().StringVarP(&tokensFormat, "format", "f", "text", "Output format (text, json, yaml)")
}

func runTokens(cmd *cobra.Command, args []string) error {
	format, err := emit.ParseFormat(tokensFormat)
	if err != nil {
		return err
	}

	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	src, _, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	// tokens before a fatal error are still printed
	tokens, lexErr := engine.Tokenize(src)
	w := emit.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), emit.Options{Format: format, Color: appConfig.Output.Color})
	if err := w.Tokens(tokens); err != nil {
		return err
	}
	return lexErr
}
