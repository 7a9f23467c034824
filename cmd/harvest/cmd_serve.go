package main

import (
	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"harvest/internal/logging"
	"harvest/internal/mcpserver"
	"harvest/internal/store"
)

var serveFlags struct {
	dbPath string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: "Starts an MCP server over stdin/stdout exposing run_pipeline, get_run_report,\n" +
		"and list_runs tools, so agent hosts can drive aggregation directly.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.dbPath, "db", store.DefaultDBPath, "Run history DB path")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := logging.New("mcp")

	var st store.Store
	if s, err := store.Open(serveFlags.dbPath); err != nil {
		logger.Warn("run history unavailable", "error", err)
	} else {
		st = s
		defer s.Close()
	}

	logger.Info("starting harvest MCP server over stdio")
	srv := mcpserver.NewServer(st, version)
	return srv.Run(cmd.Context(), &sdkmcp.StdioTransport{})
}
