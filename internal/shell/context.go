package shell

import (
	"bytes"
	"fmt"
	"io/fs"
	"regexp"
	"sort"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

const (
	manifestFile    = "app.yaml"
	capabilitiesDir = "capabilities"

	defaultWindowWidth  = 800
	defaultWindowHeight = 600
)

var identifierPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*(\.[a-z0-9][a-z0-9-]*)+$`)

// AppManifest is the build-time application descriptor.
type AppManifest struct {
	Identifier string           `yaml:"identifier"`
	Name       string           `yaml:"name"`
	Version    string           `yaml:"version"`
	Windows    []WindowManifest `yaml:"windows"`
	// Assets names a directory inside the bundled resources holding the
	// UI layer. Optional; its contents are opaque to the shell.
	Assets string `yaml:"assets"`
}

type WindowManifest struct {
	Label     string  `yaml:"label"`
	Title     string  `yaml:"title"`
	Width     float32 `yaml:"width"`
	Height    float32 `yaml:"height"`
	Resizable *bool   `yaml:"resizable"`
	Center    bool    `yaml:"center"`
}

// IsResizable defaults to true when the manifest leaves the field unset.
func (w WindowManifest) IsResizable() bool {
	return w.Resizable == nil || *w.Resizable
}

// Size returns the manifest size, substituting defaults for unset axes.
func (w WindowManifest) Size() (width, height float32) {
	width, height = w.Width, w.Height
	if width <= 0 {
		width = defaultWindowWidth
	}
	if height <= 0 {
		height = defaultWindowHeight
	}
	return width, height
}

// Capability binds permission grants and a path scope to window labels.
type Capability struct {
	Identifier  string        `yaml:"identifier"`
	Description string        `yaml:"description"`
	Windows     []string      `yaml:"windows"`
	Permissions []string      `yaml:"permissions"`
	Scope       ScopeManifest `yaml:"scope"`
}

type ScopeManifest struct {
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// RuntimeContext is the environment-derived descriptor consumed once by the
// run loop: application identity, window definitions, capability manifests
// and the bundled asset tree.
//
// A generation failure is carried inside the context and surfaced when the
// run loop is asked to start, so the entry point never branches on it.
type RuntimeContext struct {
	App          AppManifest
	Capabilities []Capability
	Assets       fs.FS

	err error
}

// Err reports why generation failed, or nil.
func (rc *RuntimeContext) Err() error { return rc.err }

// CapabilitiesFor returns the capabilities granted to a window label.
func (rc *RuntimeContext) CapabilitiesFor(label string) []Capability {
	var out []Capability
	for _, capability := range rc.Capabilities {
		for _, window := range capability.Windows {
			if window == label {
				out = append(out, capability)
				break
			}
		}
	}
	return out
}

func failedContext(err error) *RuntimeContext {
	return &RuntimeContext{err: err}
}

// GenerateContext materializes the runtime context from the bundled
// resource tree: app.yaml, capabilities/*.yaml and the optional asset
// directory. dir names the subtree of fsys holding the resources; pass ""
// when they sit at the root.
func GenerateContext(fsys fs.FS, dir string) *RuntimeContext {
	if dir != "" {
		sub, err := fs.Sub(fsys, dir)
		if err != nil {
			return failedContext(fmt.Errorf("resource tree %q: %w", dir, err))
		}
		fsys = sub
	}

	raw, err := fs.ReadFile(fsys, manifestFile)
	if err != nil {
		return failedContext(fmt.Errorf("read %s: %w", manifestFile, err))
	}

	rc := &RuntimeContext{}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rc.App); err != nil {
		return failedContext(fmt.Errorf("parse %s: %w", manifestFile, err))
	}

	if err := loadCapabilities(fsys, rc); err != nil {
		return failedContext(err)
	}

	if rc.App.Assets != "" {
		assets, err := fs.Sub(fsys, rc.App.Assets)
		if err != nil {
			return failedContext(fmt.Errorf("asset tree %q: %w", rc.App.Assets, err))
		}
		if _, err := fs.Stat(assets, "."); err != nil {
			return failedContext(fmt.Errorf("asset tree %q: %w", rc.App.Assets, err))
		}
		rc.Assets = assets
	}

	if err := validateContext(rc); err != nil {
		return failedContext(err)
	}
	return rc
}

func loadCapabilities(fsys fs.FS, rc *RuntimeContext) error {
	matches, err := fs.Glob(fsys, capabilitiesDir+"/*.yaml")
	if err != nil {
		return fmt.Errorf("scan %s: %w", capabilitiesDir, err)
	}
	sort.Strings(matches)

	for _, name := range matches {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		var capability Capability
		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(true)
		if err := decoder.Decode(&capability); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		rc.Capabilities = append(rc.Capabilities, capability)
	}
	return nil
}

func validateContext(rc *RuntimeContext) error {
	var errs *multierror.Error

	if rc.App.Identifier == "" {
		errs = multierror.Append(errs, fmt.Errorf("%s: identifier is required", manifestFile))
	} else if !identifierPattern.MatchString(rc.App.Identifier) {
		errs = multierror.Append(errs, fmt.Errorf("%s: identifier %q is not reverse-DNS shaped", manifestFile, rc.App.Identifier))
	}
	if rc.App.Name == "" {
		errs = multierror.Append(errs, fmt.Errorf("%s: name is required", manifestFile))
	}
	if len(rc.App.Windows) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("%s: at least one window is required", manifestFile))
	}

	labels := make(map[string]struct{}, len(rc.App.Windows))
	for _, window := range rc.App.Windows {
		if window.Label == "" {
			errs = multierror.Append(errs, fmt.Errorf("%s: window label is required", manifestFile))
			continue
		}
		if _, dup := labels[window.Label]; dup {
			errs = multierror.Append(errs, fmt.Errorf("%s: duplicate window label %q", manifestFile, window.Label))
		}
		labels[window.Label] = struct{}{}
	}

	for _, capability := range rc.Capabilities {
		if capability.Identifier == "" {
			errs = multierror.Append(errs, fmt.Errorf("capability without identifier"))
			continue
		}
		for _, label := range capability.Windows {
			if _, ok := labels[label]; !ok {
				errs = multierror.Append(errs, fmt.Errorf("capability %q references unknown window %q", capability.Identifier, label))
			}
		}
	}

	return errs.ErrorOrNil()
}
