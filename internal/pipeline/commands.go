package pipeline

import (
	"context"

	"harvest/internal/aggregate"
	"harvest/internal/frontmatter"
	"harvest/internal/schema"
)

// Collaborator contracts consumed by the commands. Concrete
// implementations live outside this package and are wired in by the
// caller; tests supply stubs.

// SchemaLoader reads and fully resolves the schema document at a path.
type SchemaLoader interface {
	Load(schemaPath string, maxRefDepth int) (*schema.Node, error)
}

// TemplateResolver locates the output templates named by the schema's
// x-template keys. Empty paths mean plain serialization.
type TemplateResolver interface {
	Resolve(resolved *schema.Node, schemaPath string) (templatePath, itemsTemplatePath string, err error)
}

// Discoverer expands the input pattern into a deterministic file list.
type Discoverer interface {
	Discover(pattern string) ([]string, error)
}

// Extractor produces one document's frontmatter record.
type Extractor interface {
	Extract(path string) (frontmatter.Data, error)
}

// Aggregator folds the document records into the final result.
type Aggregator interface {
	Aggregate(records []frontmatter.Data, resolved *schema.Node) (*aggregate.Result, error)
}

// RenderRequest is everything the rendering step needs to write output.
type RenderRequest struct {
	TemplatePath      string
	ItemsTemplatePath string
	MainData          map[string]any
	ItemsData         []any
	OutputPath        string
	OutputFormat      string
}

// Renderer writes the formatted output document.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) error
}

// Command is one legal state transition. CanExecute is a structural tag
// check; Execute returns the next state, or a Failed state when the
// stage's domain work fails. A non-nil error is reserved for invoking the
// command against a state it does not accept.
type Command interface {
	Name() string
	CanExecute(s State) bool
	Execute(ctx context.Context, s State) (State, error)
}

func refuse(name string, s State) error {
	return &ConfigError{Command: name, Got: s.Phase()}
}

// InitializeCommand validates the configuration.
type InitializeCommand struct{}

func (InitializeCommand) Name() string { return "Initialize" }

func (InitializeCommand) CanExecute(s State) bool {
	_, ok := s.(Initializing)
	return ok
}

func (c InitializeCommand) Execute(_ context.Context, s State) (State, error) {
	st, ok := s.(Initializing)
	if !ok {
		return nil, refuse(c.Name(), s)
	}
	cfg := st.Config
	if err := cfg.Validate(); err != nil {
		return Failed{Err: err, Stage: "initialize"}, nil
	}
	return SchemaLoading{Config: cfg}, nil
}

// LoadSchemaCommand reads and resolves the schema.
type LoadSchemaCommand struct {
	Schemas SchemaLoader
}

func (LoadSchemaCommand) Name() string { return "LoadSchema" }

func (LoadSchemaCommand) CanExecute(s State) bool {
	_, ok := s.(SchemaLoading)
	return ok
}

func (c LoadSchemaCommand) Execute(_ context.Context, s State) (State, error) {
	st, ok := s.(SchemaLoading)
	if !ok {
		return nil, refuse(c.Name(), s)
	}
	resolved, err := c.Schemas.Load(st.Config.SchemaPath, st.Config.MaxRefDepth)
	if err != nil {
		return Failed{Err: err, Stage: "schema-load"}, nil
	}
	return TemplateResolving{Config: st.Config, Schema: resolved}, nil
}

// ResolveTemplateCommand locates output templates from the schema.
type ResolveTemplateCommand struct {
	Templates TemplateResolver
}

func (ResolveTemplateCommand) Name() string { return "ResolveTemplate" }

func (ResolveTemplateCommand) CanExecute(s State) bool {
	_, ok := s.(TemplateResolving)
	return ok
}

func (c ResolveTemplateCommand) Execute(_ context.Context, s State) (State, error) {
	st, ok := s.(TemplateResolving)
	if !ok {
		return nil, refuse(c.Name(), s)
	}
	tmpl, itemsTmpl, err := c.Templates.Resolve(st.Schema, st.Config.SchemaPath)
	if err != nil {
		return Failed{Err: err, Stage: "template-resolve", Schema: st.Schema}, nil
	}
	return DocumentProcessing{
		Config:            st.Config,
		Schema:            st.Schema,
		TemplatePath:      tmpl,
		ItemsTemplatePath: itemsTmpl,
		OutputFormat:      st.Config.OutputFormat,
	}, nil
}

// ProcessDocumentsCommand discovers the input files and extracts one
// frontmatter record per document, sequentially or fanned out.
type ProcessDocumentsCommand struct {
	Files     Discoverer
	Documents Extractor
}

func (ProcessDocumentsCommand) Name() string { return "ProcessDocuments" }

func (ProcessDocumentsCommand) CanExecute(s State) bool {
	_, ok := s.(DocumentProcessing)
	return ok
}

func (c ProcessDocumentsCommand) Execute(ctx context.Context, s State) (State, error) {
	st, ok := s.(DocumentProcessing)
	if !ok {
		return nil, refuse(c.Name(), s)
	}
	files, err := c.Files.Discover(st.Config.InputPattern)
	if err != nil {
		return Failed{Err: err, Stage: "document-processing", Schema: st.Schema, TemplatePath: st.TemplatePath}, nil
	}
	records, err := processDocuments(ctx, files, c.Documents, st.Config)
	if err != nil {
		return Failed{Err: err, Stage: "document-processing", Schema: st.Schema, TemplatePath: st.TemplatePath}, nil
	}
	return DataPreparing{
		Config:             st.Config,
		Schema:             st.Schema,
		TemplatePath:       st.TemplatePath,
		ItemsTemplatePath:  st.ItemsTemplatePath,
		OutputFormat:       st.OutputFormat,
		DocumentPaths:      files,
		ProcessedDocuments: records,
	}, nil
}

// PrepareDataCommand aggregates the document records.
type PrepareDataCommand struct {
	Aggregates Aggregator
}

func (PrepareDataCommand) Name() string { return "PrepareData" }

func (PrepareDataCommand) CanExecute(s State) bool {
	_, ok := s.(DataPreparing)
	return ok
}

func (c PrepareDataCommand) Execute(_ context.Context, s State) (State, error) {
	st, ok := s.(DataPreparing)
	if !ok {
		return nil, refuse(c.Name(), s)
	}
	result, err := c.Aggregates.Aggregate(st.ProcessedDocuments, st.Schema)
	if err != nil {
		return Failed{
			Err:                err,
			Stage:              "data-preparing",
			Schema:             st.Schema,
			TemplatePath:       st.TemplatePath,
			ProcessedDocuments: st.ProcessedDocuments,
		}, nil
	}
	return OutputRendering{
		Config:            st.Config,
		Schema:            st.Schema,
		TemplatePath:      st.TemplatePath,
		ItemsTemplatePath: st.ItemsTemplatePath,
		OutputFormat:      st.OutputFormat,
		Aggregated:        result,
	}, nil
}

// RenderOutputCommand hands the aggregated result to the renderer.
type RenderOutputCommand struct {
	Output Renderer
}

func (RenderOutputCommand) Name() string { return "RenderOutput" }

func (RenderOutputCommand) CanExecute(s State) bool {
	_, ok := s.(OutputRendering)
	return ok
}

func (c RenderOutputCommand) Execute(ctx context.Context, s State) (State, error) {
	st, ok := s.(OutputRendering)
	if !ok {
		return nil, refuse(c.Name(), s)
	}
	err := c.Output.Render(ctx, RenderRequest{
		TemplatePath:      st.TemplatePath,
		ItemsTemplatePath: st.ItemsTemplatePath,
		MainData:          st.Aggregated.Frontmatter.AsMap(),
		ItemsData:         st.Aggregated.Items,
		OutputPath:        st.Config.OutputPath,
		OutputFormat:      st.OutputFormat,
	})
	if err != nil {
		return Failed{
			Err:                err,
			Stage:              "output-rendering",
			Schema:             st.Schema,
			TemplatePath:       st.TemplatePath,
			ProcessedDocuments: nil,
			MainData:           st.Aggregated.Frontmatter,
		}, nil
	}
	return Completed{OutputPath: st.Config.OutputPath, Metadata: st.Aggregated.Metadata}, nil
}
