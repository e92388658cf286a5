package shell

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"skiff/internal/config"
	"skiff/internal/logger"
)

// Builder is the application configuration sink. Capability modules are
// registered against it before the runtime is materialized; Build seals it
// and no further mutation is possible.
//
// Registration calls are chainable and therefore cannot report problems at
// the call site; anything recorded during configuration (duplicate module
// name, registration after seal) is surfaced collectively by Build.
type Builder struct {
	mu      sync.Mutex
	host    Host
	log     logger.Logger
	plugins []Plugin
	names   map[string]struct{}
	errs    *multierror.Error
	sealed  bool
}

// NewBuilder returns a default application configuration builder.
func NewBuilder() *Builder {
	return &Builder{names: make(map[string]struct{})}
}

// Host binds the application framework host that owns the run loop.
func (b *Builder) Host(h Host) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sealed {
		b.errs = multierror.Append(b.errs, fmt.Errorf("host bound after seal: %w", ErrSealed))
		return b
	}
	b.host = h
	return b
}

// Logger overrides the logger constructed from the ambient configuration.
func (b *Builder) Logger(log logger.Logger) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = log
	return b
}

// Plugin registers a named capability module.
func (b *Builder) Plugin(p Plugin) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.sealed:
		b.errs = multierror.Append(b.errs, fmt.Errorf("module registered after seal: %w", ErrSealed))
	case p == nil:
		b.errs = multierror.Append(b.errs, errors.New("nil module registered"))
	case p.Name() == "":
		b.errs = multierror.Append(b.errs, errors.New("module with empty name registered"))
	default:
		if _, dup := b.names[p.Name()]; dup {
			b.errs = multierror.Append(b.errs, fmt.Errorf("duplicate module %q registered", p.Name()))
			break
		}
		b.names[p.Name()] = struct{}{}
		b.plugins = append(b.plugins, p)
	}
	return b
}

// Build seals the builder and materializes the runtime for the given
// context. It fails when configuration was invalid, no host is bound, or
// the context could not be generated.
func (b *Builder) Build(rc *RuntimeContext) (*Runtime, error) {
	b.mu.Lock()
	if b.sealed {
		b.mu.Unlock()
		return nil, startupErr(StageConfigure, ErrSealed)
	}
	b.sealed = true
	host := b.host
	log := b.log
	plugins := append([]Plugin(nil), b.plugins...)
	errs := b.errs.ErrorOrNil()
	b.mu.Unlock()

	if errs != nil {
		return nil, startupErr(StageConfigure, errs)
	}
	if host == nil {
		return nil, startupErr(StageConfigure, ErrNoHost)
	}
	if rc == nil {
		return nil, startupErr(StageGenerate, errors.New("nil runtime context"))
	}
	if err := rc.Err(); err != nil {
		return nil, startupErr(StageGenerate, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, startupErr(StageConfigure, err)
	}
	if log == nil {
		level := logger.ParseLevel(cfg.LogLevel)
		if cfg.LogJSON {
			log = logger.NewJSONLogger(level)
		} else {
			log = logger.NewConsoleLogger(level)
		}
	}

	return newRuntime(host, rc, cfg, log, plugins), nil
}

// Run builds the runtime and hands the calling goroutine to the host run
// loop. It blocks until the application exits and returns non-nil only on
// the single fatal startup path.
func (b *Builder) Run(rc *RuntimeContext) error {
	rt, err := b.Build(rc)
	if err != nil {
		return err
	}
	return rt.Run()
}
