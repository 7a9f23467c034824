// Package mcpserver exposes the harvest pipeline over the Model Context
// Protocol so agent hosts can drive aggregation runs and inspect history.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"harvest/internal/logging"
	"harvest/internal/pipeline"
	"harvest/internal/store"
	"harvest/internal/wiring"
)

// Server wraps the MCP SDK server around the pipeline and run store.
type Server struct {
	MCPServer *sdkmcp.Server
	Store     store.Store
	Version   string
}

// NewServer creates an MCP server with the pipeline tools registered.
// The store may be nil, in which case runs are not recorded and the
// history tools report nothing.
func NewServer(st store.Store, version string) *Server {
	s := &Server{Store: st, Version: version}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "harvest", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over the given transport until the context ends.
func (s *Server) Run(ctx context.Context, transport sdkmcp.Transport) error {
	return s.MCPServer.Run(ctx, transport)
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "run_pipeline",
		Description: "Aggregate frontmatter from Markdown files into a schema-driven output document. Returns the run report.",
	}, s.handleRunPipeline)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_run_report",
		Description: "Get one recorded run by ID, including per-command timings.",
	}, s.handleGetRunReport)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List recent pipeline runs, newest first.",
	}, s.handleListRuns)
}

// --- Tool input/output types ---

type runPipelineInput struct {
	SchemaPath   string `json:"schema_path" jsonschema:"path to the JSON schema document"`
	OutputPath   string `json:"output_path" jsonschema:"path to write the aggregated output"`
	InputPattern string `json:"input_pattern" jsonschema:"glob pattern selecting the Markdown input files"`
	OutputFormat string `json:"output_format,omitempty" jsonschema:"json, yaml, toml, or markdown (default: from output extension)"`
	Parallel     bool   `json:"parallel,omitempty" jsonschema:"process documents in parallel"`
	TimeoutMS    int    `json:"timeout_ms,omitempty" jsonschema:"max execution time in milliseconds"`
}

type runPipelineOutput struct {
	RunID      int64    `json:"run_id,omitempty"`
	FinalState string   `json:"final_state"`
	Success    bool     `json:"success"`
	OutputPath string   `json:"output_path,omitempty"`
	Strategy   string   `json:"strategy,omitempty"`
	Documents  int      `json:"documents,omitempty"`
	Stages     []string `json:"stages"`
	Error      string   `json:"error,omitempty"`
	TotalMS    int64    `json:"total_ms"`
}

type getRunReportInput struct {
	RunID int64 `json:"run_id" jsonschema:"run ID from run_pipeline or list_runs"`
}

type commandInfo struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
}

type getRunReportOutput struct {
	Run      *runInfo      `json:"run,omitempty"`
	Commands []commandInfo `json:"commands,omitempty"`
}

type runInfo struct {
	ID            int64  `json:"id"`
	SchemaPath    string `json:"schema_path"`
	InputPattern  string `json:"input_pattern"`
	OutputPath    string `json:"output_path"`
	OutputFormat  string `json:"output_format"`
	Strategy      string `json:"strategy,omitempty"`
	DocumentCount int    `json:"document_count"`
	FinalState    string `json:"final_state"`
	Error         string `json:"error,omitempty"`
	StartedAt     string `json:"started_at"`
	TotalMS       int64  `json:"total_ms"`
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max runs to return (default 20)"`
}

type listRunsOutput struct {
	Runs []runInfo `json:"runs"`
}

// --- Tool handlers ---

func (s *Server) handleRunPipeline(ctx context.Context, _ *sdkmcp.CallToolRequest, input runPipelineInput) (*sdkmcp.CallToolResult, runPipelineOutput, error) {
	logger := logging.New("mcp")

	cfg := pipeline.Config{
		SchemaPath:   input.SchemaPath,
		OutputPath:   input.OutputPath,
		InputPattern: input.InputPattern,
		OutputFormat: input.OutputFormat,
		Parallel:     input.Parallel,
	}
	if input.TimeoutMS > 0 {
		cfg.MaxExecutionTime = time.Duration(input.TimeoutMS) * time.Millisecond
	}

	report, runID, err := wiring.Run(ctx, cfg, s.Store)
	if err != nil {
		return nil, runPipelineOutput{}, fmt.Errorf("run pipeline: %w", err)
	}

	out := runPipelineOutput{
		RunID:      runID,
		FinalState: string(report.FinalState.Phase()),
		Success:    report.Success,
		Stages:     report.StagesReached,
		TotalMS:    report.TotalTime.Milliseconds(),
	}
	switch st := report.FinalState.(type) {
	case pipeline.Completed:
		out.OutputPath = st.OutputPath
		out.Strategy = st.Metadata.Strategy
		out.Documents = st.Metadata.InputCount
	case pipeline.Failed:
		if st.Err != nil {
			out.Error = st.Err.Error()
		}
	}
	logger.Info("pipeline run served", "run_id", runID, "final_state", out.FinalState)
	return nil, out, nil
}

func (s *Server) handleGetRunReport(_ context.Context, _ *sdkmcp.CallToolRequest, input getRunReportInput) (*sdkmcp.CallToolResult, getRunReportOutput, error) {
	if s.Store == nil {
		return nil, getRunReportOutput{}, fmt.Errorf("no run store configured")
	}
	run, err := s.Store.GetRun(input.RunID)
	if err != nil {
		return nil, getRunReportOutput{}, fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return nil, getRunReportOutput{}, fmt.Errorf("run %d not found", input.RunID)
	}
	commands, err := s.Store.ListCommands(input.RunID)
	if err != nil {
		return nil, getRunReportOutput{}, fmt.Errorf("list commands: %w", err)
	}

	out := getRunReportOutput{Run: toRunInfo(run)}
	for _, c := range commands {
		out.Commands = append(out.Commands, commandInfo{Command: c.Command, DurationMS: c.DurationMS})
	}
	return nil, out, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, input listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	if s.Store == nil {
		return nil, listRunsOutput{Runs: []runInfo{}}, nil
	}
	runs, err := s.Store.ListRuns(input.Limit)
	if err != nil {
		return nil, listRunsOutput{}, fmt.Errorf("list runs: %w", err)
	}
	out := listRunsOutput{Runs: make([]runInfo, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, *toRunInfo(r))
	}
	return nil, out, nil
}

func toRunInfo(r *store.Run) *runInfo {
	return &runInfo{
		ID:            r.ID,
		SchemaPath:    r.SchemaPath,
		InputPattern:  r.InputPattern,
		OutputPath:    r.OutputPath,
		OutputFormat:  r.OutputFormat,
		Strategy:      r.Strategy,
		DocumentCount: r.DocumentCount,
		FinalState:    r.FinalState,
		Error:         r.Error,
		StartedAt:     r.StartedAt.Format(time.RFC3339),
		TotalMS:       r.TotalMS,
	}
}
