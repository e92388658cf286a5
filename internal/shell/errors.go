package shell

import (
	"errors"
	"fmt"
)

// Startup stages, recorded on StartupError for diagnostics only. All stages
// share the same fatal handling.
const (
	StageConfigure = "configure"
	StageGenerate  = "generate"
	StageStart     = "start"
	StageRun       = "run"
)

// ErrSealed is returned when a builder is reused after Build or Run.
var ErrSealed = errors.New("shell: builder already sealed")

// ErrNoHost is returned when no application framework host was bound.
var ErrNoHost = errors.New("shell: no host bound")

// StartupError is the single failure kind of the bootstrap sequence. Every
// sub-cause (bad runtime context, module setup failure, host failure)
// collapses into it; the entry point turns it into a fatal diagnostic.
type StartupError struct {
	Stage string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed during %s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

func startupErr(stage string, err error) *StartupError {
	return &StartupError{Stage: stage, Err: err}
}
