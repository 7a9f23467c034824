package pipeline

import "fmt"

// ConfigError reports invalid configuration or a command invoked against
// a state it does not accept.
type ConfigError struct {
	Command string
	Got     Phase
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("pipeline: command %s cannot execute in state %q", e.Command, e.Got)
	}
	return fmt.Sprintf("pipeline: %s", e.Reason)
}

// ExecError reports an executor-level failure: a wall-clock timeout or a
// panic escaping a command body.
type ExecError struct {
	Stage string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("pipeline: stage %s: %v", e.Stage, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
