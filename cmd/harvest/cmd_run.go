package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"harvest/internal/logging"
	"harvest/internal/pipeline"
	"harvest/internal/store"
	"harvest/internal/wiring"
)

var runFlags struct {
	format   string
	parallel bool
	workers  int
	timeout  time.Duration
	dbPath   string
	noStore  bool
}

var runCmd = &cobra.Command{
	Use:   "run <schema> <output> <input-pattern>",
	Short: "Run the aggregation pipeline once",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 3 {
			_ = cmd.Usage()
			return fmt.Errorf("missing required arguments: need <schema> <output> <input-pattern>")
		}
		return nil
	},
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.format, "format", "", "Output format: json, yaml, toml, markdown (default: from output extension)")
	f.BoolVar(&runFlags.parallel, "parallel", false, "Process documents in parallel")
	f.IntVar(&runFlags.workers, "workers", 0, "Parallel worker count")
	f.DurationVar(&runFlags.timeout, "timeout", 0, "Max execution time for the whole run")
	f.StringVar(&runFlags.dbPath, "db", store.DefaultDBPath, "Run history DB path")
	f.BoolVar(&runFlags.noStore, "no-store", false, "Do not record this run in the history DB")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := pipeline.Config{
		SchemaPath:       args[0],
		OutputPath:       args[1],
		InputPattern:     args[2],
		OutputFormat:     runFlags.format,
		Parallel:         runFlags.parallel,
		Workers:          runFlags.workers,
		MaxExecutionTime: runFlags.timeout,
	}

	var st store.Store
	if !runFlags.noStore {
		s, err := store.Open(runFlags.dbPath)
		if err != nil {
			logging.New("cli").Warn("run history unavailable", "error", err)
		} else {
			st = s
			defer s.Close()
		}
	}

	report, runID, err := wiring.Run(cmd.Context(), cfg, st)
	if err != nil {
		return err
	}
	if failErr := report.Err(); failErr != nil {
		return failErr
	}

	outPath, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		outPath = cfg.OutputPath
	}
	done := report.FinalState.(pipeline.Completed)
	fmt.Fprintf(cmd.OutOrStdout(), "Aggregated %d document(s) using %s strategy\n",
		done.Metadata.InputCount, done.Metadata.Strategy)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", outPath)
	if runID != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Run ID: %d\n", runID)
	}
	return nil
}
