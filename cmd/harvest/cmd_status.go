package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"harvest/internal/format"
	"harvest/internal/store"
)

var statusFlags struct {
	runID  int64
	limit  int
	dbPath string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded pipeline runs",
	RunE:  runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.Int64Var(&statusFlags.runID, "run", 0, "Show one run with per-command timings")
	f.IntVar(&statusFlags.limit, "limit", 20, "Max runs to list")
	f.StringVar(&statusFlags.dbPath, "db", store.DefaultDBPath, "Run history DB path")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(statusFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if statusFlags.runID != 0 {
		run, err := st.GetRun(statusFlags.runID)
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		if run == nil {
			fmt.Fprintf(out, "No run #%d recorded\n", statusFlags.runID)
			return nil
		}
		fmt.Fprintf(out, "Run:      #%d (%s)\n", run.ID, run.StartedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "Schema:   %s\n", run.SchemaPath)
		fmt.Fprintf(out, "Input:    %s\n", run.InputPattern)
		fmt.Fprintf(out, "Output:   %s (%s)\n", run.OutputPath, run.OutputFormat)
		fmt.Fprintf(out, "State:    %s\n", run.FinalState)
		if run.Strategy != "" {
			fmt.Fprintf(out, "Strategy: %s (%d documents)\n", run.Strategy, run.DocumentCount)
		}
		if run.Error != "" {
			fmt.Fprintf(out, "Error:    %s\n", run.Error)
		}

		commands, err := st.ListCommands(run.ID)
		if err != nil {
			return fmt.Errorf("list commands: %w", err)
		}
		if len(commands) > 0 {
			t := format.NewTable(format.ASCII)
			t.Header("#", "command", "ms")
			for _, c := range commands {
				t.Row(c.Position+1, c.Command, c.DurationMS)
			}
			fmt.Fprintln(out, t.String())
		}
		return nil
	}

	runs, err := st.ListRuns(statusFlags.limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet. Run 'harvest run' first.")
		return nil
	}

	t := format.NewTable(format.ASCII)
	t.Header("id", "started", "state", "strategy", "docs", "output", "ms")
	t.MaxColumnWidth(6, 40)
	for _, r := range runs {
		t.Row(r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.FinalState, r.Strategy, r.DocumentCount, r.OutputPath, r.TotalMS)
	}
	fmt.Fprintln(out, t.String())
	return nil
}
