package logger

import (
	"go.uber.org/fx/fxevent"
)

// FxEventAdapter routes the dependency graph's lifecycle events into the
// application log stream instead of fx's default console logger.
type FxEventAdapter struct {
	log Logger
}

func NewFxEventAdapter(log Logger) *FxEventAdapter {
	return &FxEventAdapter{log: log}
}

func (a *FxEventAdapter) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		a.log.Debug("Lifecycle", "start hook executing", map[string]interface{}{
			"callee": e.FunctionName,
			"caller": e.CallerName,
		})
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			a.log.Error("Lifecycle", "start hook failed", e.Err, map[string]interface{}{
				"callee": e.FunctionName,
			})
			return
		}
		a.log.Debug("Lifecycle", "start hook executed", map[string]interface{}{
			"callee":  e.FunctionName,
			"runtime": e.Runtime.String(),
		})
	case *fxevent.OnStopExecuting:
		a.log.Debug("Lifecycle", "stop hook executing", map[string]interface{}{
			"callee": e.FunctionName,
			"caller": e.CallerName,
		})
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			a.log.Error("Lifecycle", "stop hook failed", e.Err, map[string]interface{}{
				"callee": e.FunctionName,
			})
			return
		}
		a.log.Debug("Lifecycle", "stop hook executed", map[string]interface{}{
			"callee":  e.FunctionName,
			"runtime": e.Runtime.String(),
		})
	case *fxevent.Provided:
		if e.Err != nil {
			a.log.Error("Lifecycle", "provide failed", e.Err, map[string]interface{}{
				"constructor": e.ConstructorName,
			})
			return
		}
		a.log.Debug("Lifecycle", "constructor provided", map[string]interface{}{
			"constructor": e.ConstructorName,
			"types":       e.OutputTypeNames,
		})
	case *fxevent.Supplied:
		if e.Err != nil {
			a.log.Error("Lifecycle", "supply failed", e.Err, map[string]interface{}{
				"type": e.TypeName,
			})
			return
		}
		a.log.Debug("Lifecycle", "value supplied", map[string]interface{}{
			"type": e.TypeName,
		})
	case *fxevent.Invoked:
		if e.Err != nil {
			a.log.Error("Lifecycle", "invoke failed", e.Err, map[string]interface{}{
				"function": e.FunctionName,
			})
		}
	case *fxevent.Started:
		if e.Err != nil {
			a.log.Error("Lifecycle", "dependency graph start failed", e.Err, nil)
			return
		}
		a.log.Debug("Lifecycle", "dependency graph started", nil)
	case *fxevent.Stopped:
		if e.Err != nil {
			a.log.Error("Lifecycle", "dependency graph stop failed", e.Err, nil)
			return
		}
		a.log.Debug("Lifecycle", "dependency graph stopped", nil)
	}
}
