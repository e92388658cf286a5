package shell

import (
	"context"

	"go.uber.org/fx"
)

// Plugin is a named capability module. Its options are mounted into the
// application graph under the module name; lifecycle hooks registered there
// run before the host run loop starts and after it returns.
type Plugin interface {
	Name() string
	Options() fx.Option
}

// Host is the application framework boundary: it owns the windows and the
// blocking run loop. Run must not return until the application exits or
// Quit is called; Quit must be safe to call from any goroutine, at any
// time, any number of times.
type Host interface {
	Run(ctx context.Context, rc *RuntimeContext) error
	Quit()
}
