package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anemortalkid/kaleido/internal/emit"
	"github.com/anemortalkid/kaleido/internal/tui/repl"
)

var replFormat string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Starts the interactive parser",
	Long: `Starts an interactive session. Every line is parsed on enter and its
units and diagnostics are shown in the history.

Keys:
  enter       parse the line
  up/down     previous inputs
  pgup/pgdn   scroll the history
  esc/ctrl+c  quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := replFormat
		if format == "" {
			format = appConfig.Output.Format
		}
		f, err := emit.ParseFormat(format)
		if err != nil {
			return err
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}
		return repl.Run(engine, f)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVarP(&replFormat, "format", "f", "", "Output format (text, tree, json, yaml)")
}
