package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skiff/internal/logger"
	fsplugin "skiff/internal/plugin/fs"
	"skiff/internal/shell"
)

func contextWithCapabilities(caps ...shell.Capability) *shell.RuntimeContext {
	return &shell.RuntimeContext{
		App: shell.AppManifest{
			Identifier: "com.example.demo",
			Name:       "Demo",
			Windows:    []shell.WindowManifest{{Label: "main"}},
		},
		Capabilities: caps,
	}
}

func TestScopeCompile(t *testing.T) {
	rc := contextWithCapabilities(shell.Capability{
		Identifier:  "default",
		Windows:     []string{"main"},
		Permissions: []string{"fs:read", "fs:write"},
		Scope: shell.ScopeManifest{
			Allow: []string{"/data/**", "/logs/app-*.log"},
			Deny:  []string{"/data/secret/**"},
		},
	})

	scope, err := fsplugin.NewScope(rc, logger.NewNop())
	require.NoError(t, err)

	assert.True(t, scope.Granted("read"))
	assert.True(t, scope.Granted("write"))
	assert.False(t, scope.Granted("exec"))

	assert.True(t, scope.Allowed("/data/reports/2026/q1.csv"))
	assert.True(t, scope.Allowed("/data"))
	assert.False(t, scope.Allowed("/data/secret/key.pem"))
	assert.True(t, scope.Allowed("/logs/app-1.log"))
	assert.False(t, scope.Allowed("/logs/other.log"))
	assert.False(t, scope.Allowed("/elsewhere"))
}

func TestScopeBaseDirectoryExpansion(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	rc := contextWithCapabilities(shell.Capability{
		Identifier:  "default",
		Windows:     []string{"main"},
		Permissions: []string{"fs:read"},
		Scope: shell.ScopeManifest{
			Allow: []string{"$HOME/Documents/**"},
		},
	})

	scope, err := fsplugin.NewScope(rc, logger.NewNop())
	require.NoError(t, err)

	assert.True(t, scope.Allowed("/home/tester/Documents/notes.txt"))
	assert.False(t, scope.Allowed("/home/tester/Downloads/notes.txt"))
	assert.Equal(t, []string{"$HOME/Documents/**"}, scope.AllowPatterns())
}

func TestScopeMalformedGrants(t *testing.T) {
	tests := []struct {
		name  string
		scope shell.ScopeManifest
		perms []string
		want  string
	}{
		{
			name:  "unknown base directory",
			perms: []string{"fs:read"},
			scope: shell.ScopeManifest{Allow: []string{"$BOGUS/data"}},
			want:  "unknown base directory",
		},
		{
			name:  "invalid glob",
			perms: []string{"fs:read"},
			scope: shell.ScopeManifest{Allow: []string{"/data/["}},
			want:  "invalid glob",
		},
		{
			name:  "interior double star",
			perms: []string{"fs:read"},
			scope: shell.ScopeManifest{Allow: []string{"/a/**/b"}},
			want:  "trailing /**",
		},
		{
			name:  "glob before subtree suffix",
			perms: []string{"fs:read"},
			scope: shell.ScopeManifest{Deny: []string{"/a/*/**"}},
			want:  "not allowed before",
		},
		{
			name:  "empty pattern",
			perms: []string{"fs:read"},
			scope: shell.ScopeManifest{Allow: []string{""}},
			want:  "empty pattern",
		},
		{
			name:  "empty permission",
			perms: []string{"fs:"},
			want:  "empty permission",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := contextWithCapabilities(shell.Capability{
				Identifier:  "broken",
				Windows:     []string{"main"},
				Permissions: tt.perms,
				Scope:       tt.scope,
			})

			_, err := fsplugin.NewScope(rc, logger.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScopeIgnoresForeignCapabilities(t *testing.T) {
	rc := contextWithCapabilities(shell.Capability{
		Identifier:  "network",
		Windows:     []string{"main"},
		Permissions: []string{"net:fetch"},
		Scope: shell.ScopeManifest{
			Allow: []string{"/ignored/**"},
		},
	})

	scope, err := fsplugin.NewScope(rc, logger.NewNop())
	require.NoError(t, err)

	assert.True(t, scope.Empty())
	assert.False(t, scope.Allowed("/ignored/file"))
}

func TestScopeDefaultDeny(t *testing.T) {
	scope, err := fsplugin.NewScope(contextWithCapabilities(), logger.NewNop())
	require.NoError(t, err)

	assert.True(t, scope.Empty())
	assert.False(t, scope.Granted("read"))
	assert.False(t, scope.Allowed("/anything"))
}
