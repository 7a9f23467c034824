package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"harvest/internal/logging"
)

// ErrTimeout is the cause carried by the forced Failed state when a run
// exceeds its wall-clock budget.
var ErrTimeout = errors.New("max execution time exceeded")

// Deps are the collaborators the six commands are built from.
type Deps struct {
	Schemas    SchemaLoader
	Templates  TemplateResolver
	Files      Discoverer
	Documents  Extractor
	Aggregates Aggregator
	Output     Renderer
}

// CommandTiming records one executed command and how long it took.
type CommandTiming struct {
	Command  string
	Duration time.Duration
}

// RunReport is the executor's final account of a run, success or not.
type RunReport struct {
	FinalState         State
	TotalTime          time.Duration
	StagesReached      []string
	CommandsExecuted   []string
	Timings            []CommandTiming
	TransitionCount    int
	AverageCommandTime time.Duration
	Success            bool
}

// Err returns the error carried by a failed final state, nil otherwise.
func (r *RunReport) Err() error {
	if f, ok := r.FinalState.(Failed); ok {
		return f.Err
	}
	return nil
}

// Executor runs the six pipeline commands in their fixed order on a
// single logical thread, stopping at the first terminal state and
// enforcing the wall-clock budget between command boundaries.
type Executor struct {
	commands []Command
}

// NewExecutor builds an executor whose commands are wired to the given
// collaborators.
func NewExecutor(deps Deps) *Executor {
	return &Executor{
		commands: []Command{
			InitializeCommand{},
			LoadSchemaCommand{Schemas: deps.Schemas},
			ResolveTemplateCommand{Templates: deps.Templates},
			ProcessDocumentsCommand{Files: deps.Files, Documents: deps.Documents},
			PrepareDataCommand{Aggregates: deps.Aggregates},
			RenderOutputCommand{Output: deps.Output},
		},
	}
}

// ExecutePipeline drives one run from Initializing to a terminal state.
// A run that ends in Failed is still a successful execution from the
// executor's point of view; the report carries the failure for the
// caller to inspect.
func (e *Executor) ExecutePipeline(ctx context.Context, cfg Config) (*RunReport, error) {
	logger := logging.New("pipeline")
	start := time.Now()

	maxTime := cfg.MaxExecutionTime
	if maxTime <= 0 {
		maxTime = DefaultMaxExecutionTime
	}

	var state State = Initializing{Config: cfg}
	report := &RunReport{StagesReached: []string{string(state.Phase())}}

	for _, cmd := range e.commands {
		if state.Terminal() {
			break
		}

		cmdStart := time.Now()
		next, err := e.runCommand(ctx, cmd, state)
		elapsed := time.Since(cmdStart)

		report.CommandsExecuted = append(report.CommandsExecuted, cmd.Name())
		report.Timings = append(report.Timings, CommandTiming{Command: cmd.Name(), Duration: elapsed})
		if err != nil {
			// Wrong-state invocation is a programming error at this
			// level, not a run outcome.
			report.FinalState = state
			report.TotalTime = time.Since(start)
			return report, err
		}

		state = next
		report.TransitionCount++
		report.StagesReached = append(report.StagesReached, string(state.Phase()))
		logger.Debug("command executed", "command", cmd.Name(), "state", string(state.Phase()), "took", elapsed)

		if !state.Terminal() && time.Since(start) > maxTime {
			stage := string(state.Phase())
			logger.Warn("run exceeded max execution time", "stage", stage, "limit", maxTime)
			state = Failed{
				Err:   &ExecError{Stage: stage, Err: ErrTimeout},
				Stage: stage,
			}
			report.TransitionCount++
			report.StagesReached = append(report.StagesReached, string(PhaseFailed))
			break
		}
	}

	report.FinalState = state
	report.TotalTime = time.Since(start)
	if n := len(report.CommandsExecuted); n > 0 {
		report.AverageCommandTime = report.TotalTime / time.Duration(n)
	}
	report.Success = state.Phase() == PhaseCompleted
	return report, nil
}

// runCommand executes one command, converting an escaped panic into a
// Failed state with stage "unknown".
func (e *Executor) runCommand(ctx context.Context, cmd Command, s State) (next State, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.New("pipeline").Error("command panicked", "command", cmd.Name(), "panic", r)
			next, err = Failed{
				Err:   &ExecError{Stage: "unknown", Err: fmt.Errorf("command %s: %v", cmd.Name(), r)},
				Stage: "unknown",
			}, nil
		}
	}()
	if !cmd.CanExecute(s) {
		return nil, &ConfigError{Command: cmd.Name(), Got: s.Phase()}
	}
	return cmd.Execute(ctx, s)
}
