// Package fs provides the filesystem capability module. The module owns
// its startup contract only: it resolves permission grants and the path
// scope from the runtime context's capability manifests and refuses to
// start on a malformed grant. The operations it exposes to the UI layer
// are routed by the application framework, not here.
package fs

import (
	"context"

	"go.uber.org/fx"

	"skiff/internal/logger"
	"skiff/internal/shell"
)

// Name is the module name recorded in the application configuration.
const Name = "fs"

type plugin struct{}

// Init returns the filesystem capability module for registration against
// the configuration builder.
func Init() shell.Plugin { return plugin{} }

func (plugin) Name() string { return Name }

func (plugin) Options() fx.Option {
	return fx.Options(
		fx.Provide(NewScope),
		fx.Invoke(announce),
	)
}

func announce(lc fx.Lifecycle, scope *Scope, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if scope.Empty() {
				log.Warning("FSCapability", "no filesystem grants in any capability, scope denies everything", nil)
				return nil
			}
			log.Info("FSCapability", "filesystem capability enabled", map[string]interface{}{
				"permissions": scope.Permissions(),
				"allow":       scope.AllowPatterns(),
				"deny":        scope.DenyPatterns(),
			})
			return nil
		},
		OnStop: func(context.Context) error {
			log.Debug("FSCapability", "filesystem capability disabled", nil)
			return nil
		},
	})
}
