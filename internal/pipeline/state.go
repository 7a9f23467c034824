package pipeline

import (
	"harvest/internal/aggregate"
	"harvest/internal/frontmatter"
	"harvest/internal/schema"
)

// Phase tags a pipeline state.
type Phase string

const (
	PhaseInitializing       Phase = "initializing"
	PhaseSchemaLoading      Phase = "schema-loading"
	PhaseTemplateResolving  Phase = "template-resolving"
	PhaseDocumentProcessing Phase = "document-processing"
	PhaseDataPreparing      Phase = "data-preparing"
	PhaseOutputRendering    Phase = "output-rendering"
	PhaseCompleted          Phase = "completed"
	PhaseFailed             Phase = "failed"
)

// State is the sealed pipeline state union. Each variant carries exactly
// the data legally available at its stage; a command must type-switch on
// the variant it requires and refuse anything else. Never collapse this
// into one struct with optional fields.
type State interface {
	Phase() Phase
	Terminal() bool
}

// Initializing is the start state: configuration supplied, nothing
// validated yet.
type Initializing struct {
	Config Config
}

func (Initializing) Phase() Phase   { return PhaseInitializing }
func (Initializing) Terminal() bool { return false }

// SchemaLoading follows config validation.
type SchemaLoading struct {
	Config Config
}

func (SchemaLoading) Phase() Phase   { return PhaseSchemaLoading }
func (SchemaLoading) Terminal() bool { return false }

// TemplateResolving carries the fully resolved schema.
type TemplateResolving struct {
	Config Config
	Schema *schema.Node
}

func (TemplateResolving) Phase() Phase   { return PhaseTemplateResolving }
func (TemplateResolving) Terminal() bool { return false }

// DocumentProcessing carries the resolved schema plus template paths and
// the output format in force.
type DocumentProcessing struct {
	Config            Config
	Schema            *schema.Node
	TemplatePath      string
	ItemsTemplatePath string
	OutputFormat      string
}

func (DocumentProcessing) Phase() Phase   { return PhaseDocumentProcessing }
func (DocumentProcessing) Terminal() bool { return false }

// DataPreparing additionally carries the processed document records in
// input order.
type DataPreparing struct {
	Config             Config
	Schema             *schema.Node
	TemplatePath       string
	ItemsTemplatePath  string
	OutputFormat       string
	DocumentPaths      []string
	ProcessedDocuments []frontmatter.Data
}

func (DataPreparing) Phase() Phase   { return PhaseDataPreparing }
func (DataPreparing) Terminal() bool { return false }

// OutputRendering carries the aggregated result ready for the renderer.
type OutputRendering struct {
	Config            Config
	Schema            *schema.Node
	TemplatePath      string
	ItemsTemplatePath string
	OutputFormat      string
	Aggregated        *aggregate.Result
}

func (OutputRendering) Phase() Phase   { return PhaseOutputRendering }
func (OutputRendering) Terminal() bool { return false }

// Completed is the success terminal state.
type Completed struct {
	OutputPath string
	Metadata   aggregate.Metadata
}

func (Completed) Phase() Phase   { return PhaseCompleted }
func (Completed) Terminal() bool { return true }

// Failed is the failure terminal state. It carries the error, the stage
// that produced it, and whatever partial data existed at that point for
// diagnostics. It is never re-entered or left.
type Failed struct {
	Err                error
	Stage              string
	Schema             *schema.Node
	TemplatePath       string
	ProcessedDocuments []frontmatter.Data
	MainData           frontmatter.Data
}

func (Failed) Phase() Phase   { return PhaseFailed }
func (Failed) Terminal() bool { return true }
