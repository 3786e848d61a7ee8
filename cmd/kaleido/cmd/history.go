package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	mdwerror "github.com/anemortalkid/kaleido/foundation/core/error"
	"github.com/anemortalkid/kaleido/foundation/kaleido/parser"
	mdwstringx "github.com/anemortalkid/kaleido/foundation/utils/stringx"
	"github.com/anemortalkid/kaleido/internal/store"
)

var (
	historySession     string
	historyKind        string
	historyName        string
	historyLimit       int
	historySessions    bool
	historyDiagnostics bool
	historyPrune       time.Duration
	historyJSON        bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists stored units and sessions",
	Long: `Lists what "kaleido parse --store" recorded, newest first.

Examples:
  kaleido history --sessions
  kaleido history --kind definition --limit 20
  kaleido history --session <id> --diagnostics
  kaleido history --prune 720h`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historySession, "session", "", "Only units of this session")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Only units of this kind (definition, extern, top-level)")
	historyCmd.Flags().StringVar(&historyName, "name", "", "Only units with this function name")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Maximum number of entries")
	historyCmd.Flags().BoolVar(&historySessions, "sessions", false, "List sessions instead of units")
	historyCmd.Flags().BoolVar(&historyDiagnostics, "diagnostics", false, "List the diagnostics of --session")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "Delete sessions older than this duration")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "JSON output")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	kind := ""
	if historyKind != "" {
		k, err := parser.ParseKind(historyKind)
		if err != nil {
			return mdwerror.Wrap(err, "invalid --kind").
				WithCode(mdwerror.CodeInvalidInput).
				WithOperation("cmd.history")
		}
		kind = k.String()
	}

	s, err := store.Open(store.Config{Path: appConfig.Store.Path})
	if err != nil {
		return err
	}
	defer s.Close()

	switch {
	case historyPrune > 0:
		n, err := s.Prune(ctx, historyPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d session(s) older than %s\n", n, historyPrune)
		return nil

	case historySessions:
		sessions, err := s.Sessions(ctx)
		if err != nil {
			return err
		}
		if historyLimit > 0 && len(sessions) > historyLimit {
			sessions = sessions[:historyLimit]
		}
		if historyJSON {
			return writeJSON(cmd, sessions)
		}
		for _, sess := range sessions {
			fmt.Fprintf(out, "%s  %s  %-30s  %3d units  %3d errors\n",
				sess.ID, sess.StartedAt.Local().Format("2006-01-02 15:04:05"),
				mdwstringx.Truncate(sess.Source, 30, "..."), sess.Units, sess.Diagnostics)
		}
		return nil

	case historyDiagnostics:
		if historySession == "" {
			return mdwerror.New("--diagnostics needs --session").
				WithCode(mdwerror.CodeInvalidInput).
				WithOperation("cmd.history")
		}
		diags, err := s.ListDiagnostics(ctx, historySession, historyLimit)
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(cmd, diags)
		}
		for _, d := range diags {
			fmt.Fprintf(out, "#%-4d expected %s, found %s\n", d.Seq, d.Expected, d.Found)
		}
		return nil
	}

	units, err := s.ListUnits(ctx, store.Filter{
		Session: historySession,
		Kind:    kind,
		Name:    historyName,
		Limit:   historyLimit,
	})
	if err != nil {
		return err
	}
	if historyJSON {
		return writeJSON(cmd, units)
	}
	for _, u := range units {
		fmt.Fprintf(out, "%s  %-10s  %s\n",
			u.CreatedAt.Local().Format("2006-01-02 15:04:05"), u.Kind, u.Source)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return mdwerror.Wrap(err, "failed to write JSON").
			WithCode(mdwerror.CodeIOError).
			WithOperation("cmd.writeJSON")
	}
	return nil
}
