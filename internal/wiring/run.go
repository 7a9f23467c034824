// Package wiring assembles the pipeline executor from its default
// collaborators and records finished runs in the history store.
package wiring

import (
	"context"
	"time"

	"harvest/internal/aggregate"
	"harvest/internal/discover"
	"harvest/internal/frontmatter"
	"harvest/internal/logging"
	"harvest/internal/pipeline"
	"harvest/internal/render"
	"harvest/internal/schema"
	"harvest/internal/store"
	"harvest/internal/template"
)

// fileSchemaLoader resolves the schema file through a file-backed ref
// loader rooted at the schema's directory.
type fileSchemaLoader struct{}

func (fileSchemaLoader) Load(schemaPath string, maxRefDepth int) (*schema.Node, error) {
	root, err := schema.ParseFile(schemaPath)
	if err != nil {
		return nil, err
	}
	loader, err := schema.NewFileLoader(schemaPath)
	if err != nil {
		return nil, err
	}
	resolver := schema.NewResolver(loader)
	resolver.MaxDepth = maxRefDepth
	return resolver.Resolve(root, loader.Root)
}

type globDiscoverer struct{}

func (globDiscoverer) Discover(pattern string) ([]string, error) {
	return discover.Glob(pattern)
}

type fileExtractor struct{}

func (fileExtractor) Extract(path string) (frontmatter.Data, error) {
	return frontmatter.ExtractFile(path)
}

// NewExecutor returns a pipeline executor wired to the default file-backed
// collaborators.
func NewExecutor() *pipeline.Executor {
	return pipeline.NewExecutor(pipeline.Deps{
		Schemas:    fileSchemaLoader{},
		Templates:  template.NewResolver(),
		Files:      globDiscoverer{},
		Documents:  fileExtractor{},
		Aggregates: aggregate.New(),
		Output:     render.NewWriter(),
	})
}

// Run executes one pipeline run and, when st is non-nil, records it in
// the history store. The report is returned either way; a store write
// failure does not fail the run.
func Run(ctx context.Context, cfg pipeline.Config, st store.Store) (*pipeline.RunReport, int64, error) {
	started := time.Now()
	report, err := NewExecutor().ExecutePipeline(ctx, cfg)
	if err != nil {
		return nil, 0, err
	}

	var runID int64
	if st != nil {
		var storeErr error
		runID, storeErr = st.RecordRun(runRecord(cfg, report, started), commandRecords(report))
		if storeErr != nil {
			logging.New("wiring").Warn("run history write failed", "error", storeErr)
		}
	}
	return report, runID, nil
}

func runRecord(cfg pipeline.Config, report *pipeline.RunReport, started time.Time) *store.Run {
	outputFormat := cfg.OutputFormat
	if outputFormat == "" {
		outputFormat = pipeline.FormatFromPath(cfg.OutputPath)
	}
	run := &store.Run{
		SchemaPath:   cfg.SchemaPath,
		InputPattern: cfg.InputPattern,
		OutputPath:   cfg.OutputPath,
		OutputFormat: outputFormat,
		FinalState:   string(report.FinalState.Phase()),
		StartedAt:    started,
		TotalMS:      report.TotalTime.Milliseconds(),
	}
	switch st := report.FinalState.(type) {
	case pipeline.Completed:
		run.Strategy = st.Metadata.Strategy
		run.DocumentCount = st.Metadata.InputCount
	case pipeline.Failed:
		if st.Err != nil {
			run.Error = st.Err.Error()
		}
		run.DocumentCount = len(st.ProcessedDocuments)
	}
	return run
}

func commandRecords(report *pipeline.RunReport) []store.CommandRecord {
	out := make([]store.CommandRecord, 0, len(report.Timings))
	for _, t := range report.Timings {
		out = append(out, store.CommandRecord{
			Command:    t.Command,
			DurationMS: t.Duration.Milliseconds(),
		})
	}
	return out
}
