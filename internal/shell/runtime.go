package shell

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"skiff/internal/config"
	"skiff/internal/logger"
	"skiff/internal/shutdown"
)

// State tracks the runtime through its single pass: Uninitialized while
// the builder is still open, Configuring once the runtime exists, Running
// inside the host loop, then Exited or Aborted. No transition goes back.
type State int32

const (
	StateUninitialized State = iota
	StateConfiguring
	StateRunning
	StateExited
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfiguring:
		return "configuring"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Runtime is the single application runtime handle: constructed once in the
// entry point, never duplicated. It owns the capability module graph and
// the host run loop for the remainder of the process lifetime.
type Runtime struct {
	id      uuid.UUID
	host    Host
	rc      *RuntimeContext
	cfg     *config.Config
	log     logger.Logger
	modules []string
	fxApp   *fx.App
	state   atomic.Int32
	ran     atomic.Bool
}

func newRuntime(host Host, rc *RuntimeContext, cfg *config.Config, log logger.Logger, plugins []Plugin) *Runtime {
	r := &Runtime{
		id:   uuid.New(),
		host: host,
		rc:   rc,
		cfg:  cfg,
		log:  log,
	}

	opts := []fx.Option{
		fx.Supply(rc),
		fx.Provide(func() logger.Logger { return log }),
		fx.WithLogger(func(l logger.Logger) fxevent.Logger {
			return logger.NewFxEventAdapter(l)
		}),
	}
	for _, p := range plugins {
		r.modules = append(r.modules, p.Name())
		opts = append(opts, fx.Module(p.Name(), p.Options()))
	}

	r.fxApp = fx.New(opts...)
	r.state.Store(int32(StateConfiguring))
	return r
}

// State reports where the runtime is in its lifecycle.
func (r *Runtime) State() State {
	return State(r.state.Load())
}

// Modules lists the registered capability modules, in registration order.
func (r *Runtime) Modules() []string {
	return append([]string(nil), r.modules...)
}

// Run starts the capability modules and blocks in the host run loop until
// the application exits. It may be called once.
func (r *Runtime) Run() error {
	if !r.ran.CompareAndSwap(false, true) {
		return startupErr(StageRun, errors.New("runtime already ran"))
	}

	startCtx, cancel := context.WithTimeout(context.Background(), r.cfg.StartTimeout)
	defer cancel()
	if err := r.fxApp.Start(startCtx); err != nil {
		r.state.Store(int32(StateAborted))
		return startupErr(StageStart, err)
	}

	r.state.Store(int32(StateRunning))
	r.log.Info("Runtime", "run loop entered", map[string]interface{}{
		"run_id":  r.id.String(),
		"app":     r.rc.App.Identifier,
		"version": r.rc.App.Version,
		"windows": len(r.rc.App.Windows),
		"modules": r.modules,
	})

	// OS signals end the run loop; module teardown then happens below on
	// the normal path rather than inside the signal handler.
	signals := shutdown.NewManager(r.log, r.host.Quit)
	signals.Listen()
	defer signals.Close()

	runErr := r.host.Run(context.Background(), r.rc)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), r.cfg.StopTimeout)
	defer cancelStop()
	if err := r.fxApp.Stop(stopCtx); err != nil {
		r.log.Error("Runtime", "module teardown failed", err, map[string]interface{}{
			"run_id": r.id.String(),
		})
	}

	if runErr != nil {
		r.state.Store(int32(StateAborted))
		return startupErr(StageRun, runErr)
	}

	r.state.Store(int32(StateExited))
	r.log.Info("Runtime", "run loop exited", map[string]interface{}{
		"run_id": r.id.String(),
	})
	return nil
}
