package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anemortalkid/kaleido/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Shows the version",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.String())
		fmt.Fprintf(out, "  Lexer:    %s\n", version.Lexer)
		fmt.Fprintf(out, "  Parser:   %s\n", version.Parser)
		fmt.Fprintf(out, "  Protocol: %s\n", version.Protocol)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
