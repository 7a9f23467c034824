// Package store persists pipeline run history so past runs can be
// inspected from the CLI and the MCP server.
package store

import "time"

// DefaultDBPath is the default relative path for the SQLite DB.
// Open() creates the parent directory.
const DefaultDBPath = ".harvest/harvest.db"

// Run is one recorded pipeline run.
type Run struct {
	ID            int64
	SchemaPath    string
	InputPattern  string
	OutputPath    string
	OutputFormat  string
	Strategy      string
	DocumentCount int
	FinalState    string
	Error         string
	StartedAt     time.Time
	TotalMS       int64
}

// CommandRecord is one executed command within a run, in execution order.
type CommandRecord struct {
	ID         int64
	RunID      int64
	Position   int
	Command    string
	DurationMS int64
}

// Store is the run-history facade. CLI, pipeline, and MCP server use only
// this interface; the implementation is SQLite.
type Store interface {
	RecordRun(run *Run, commands []CommandRecord) (runID int64, err error)
	GetRun(runID int64) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	ListCommands(runID int64) ([]CommandRecord, error)
	Close() error
}
