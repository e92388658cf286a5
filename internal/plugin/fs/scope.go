package fs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"skiff/internal/logger"
	"skiff/internal/shell"
)

const permissionPrefix = Name + ":"

// Scope is the compiled path scope of the filesystem capability. It is
// default-deny: a path is allowed only when it matches an allow pattern
// and no deny pattern.
type Scope struct {
	grants map[string]struct{}
	allow  []pattern
	deny   []pattern
}

// pattern is a compiled scope entry. Entries ending in "/**" match the
// whole subtree by prefix; everything else is a plain glob where * does
// not cross path separators.
type pattern struct {
	raw    string
	prefix string
	glob   string
}

func (p pattern) matches(cleaned string) bool {
	if p.prefix != "" {
		return cleaned == p.prefix || strings.HasPrefix(cleaned, p.prefix+"/")
	}
	ok, err := path.Match(p.glob, cleaned)
	return err == nil && ok
}

// NewScope resolves the filesystem grants from the runtime context's
// capability manifests and compiles the merged path scope. A malformed
// grant is a startup failure.
func NewScope(rc *shell.RuntimeContext, log logger.Logger) (*Scope, error) {
	scope := &Scope{grants: make(map[string]struct{})}

	for _, capability := range rc.Capabilities {
		granted := false
		for _, permission := range capability.Permissions {
			if !strings.HasPrefix(permission, permissionPrefix) {
				continue
			}
			name := strings.TrimPrefix(permission, permissionPrefix)
			if name == "" {
				return nil, fmt.Errorf("capability %q: empty permission %q", capability.Identifier, permission)
			}
			scope.grants[name] = struct{}{}
			granted = true
		}
		if !granted {
			continue
		}

		for _, raw := range capability.Scope.Allow {
			compiled, err := compilePattern(raw)
			if err != nil {
				return nil, fmt.Errorf("capability %q: allow %q: %w", capability.Identifier, raw, err)
			}
			scope.allow = append(scope.allow, compiled)
		}
		for _, raw := range capability.Scope.Deny {
			compiled, err := compilePattern(raw)
			if err != nil {
				return nil, fmt.Errorf("capability %q: deny %q: %w", capability.Identifier, raw, err)
			}
			scope.deny = append(scope.deny, compiled)
		}
	}

	log.Debug("FSCapability", "scope compiled", map[string]interface{}{
		"grants": len(scope.grants),
		"allow":  len(scope.allow),
		"deny":   len(scope.deny),
	})
	return scope, nil
}

func compilePattern(raw string) (pattern, error) {
	if raw == "" {
		return pattern{}, fmt.Errorf("empty pattern")
	}

	expanded, err := expandBase(raw)
	if err != nil {
		return pattern{}, err
	}
	expanded = filepath.ToSlash(expanded)

	if rest, ok := strings.CutSuffix(expanded, "/**"); ok {
		if strings.ContainsAny(rest, "*?[") {
			return pattern{}, fmt.Errorf("globs are not allowed before a trailing /**")
		}
		return pattern{raw: raw, prefix: path.Clean(rest)}, nil
	}

	if strings.Contains(expanded, "**") {
		return pattern{}, fmt.Errorf("** is only valid as a trailing /** segment")
	}
	if _, err := path.Match(expanded, ""); err != nil {
		return pattern{}, fmt.Errorf("invalid glob: %w", err)
	}
	return pattern{raw: raw, glob: expanded}, nil
}

// expandBase substitutes a leading base-directory variable. Anything else
// starting with $ is a malformed grant.
func expandBase(raw string) (string, error) {
	if !strings.HasPrefix(raw, "$") {
		return raw, nil
	}

	name, rest, _ := strings.Cut(raw[1:], "/")
	var (
		base string
		err  error
	)
	switch name {
	case "HOME":
		base, err = os.UserHomeDir()
	case "CONFIG":
		base, err = os.UserConfigDir()
	case "TEMP":
		base = os.TempDir()
	default:
		return "", fmt.Errorf("unknown base directory $%s", name)
	}
	if err != nil {
		return "", fmt.Errorf("resolve $%s: %w", name, err)
	}
	if rest == "" {
		return base, nil
	}
	return base + "/" + rest, nil
}

// Empty reports whether no capability granted anything to this module.
func (s *Scope) Empty() bool {
	return len(s.grants) == 0 && len(s.allow) == 0 && len(s.deny) == 0
}

// Granted reports whether a permission such as "read" or "write" was
// granted by any capability.
func (s *Scope) Granted(name string) bool {
	_, ok := s.grants[name]
	return ok
}

// Allowed reports whether a path falls inside the scope.
func (s *Scope) Allowed(p string) bool {
	cleaned := path.Clean(filepath.ToSlash(p))
	for _, d := range s.deny {
		if d.matches(cleaned) {
			return false
		}
	}
	for _, a := range s.allow {
		if a.matches(cleaned) {
			return true
		}
	}
	return false
}

// Permissions lists the granted permission names.
func (s *Scope) Permissions() []string {
	out := make([]string, 0, len(s.grants))
	for name := range s.grants {
		out = append(out, name)
	}
	return out
}

// AllowPatterns lists the allow patterns as written in the manifests.
func (s *Scope) AllowPatterns() []string { return rawPatterns(s.allow) }

// DenyPatterns lists the deny patterns as written in the manifests.
func (s *Scope) DenyPatterns() []string { return rawPatterns(s.deny) }

func rawPatterns(patterns []pattern) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.raw)
	}
	return out
}
