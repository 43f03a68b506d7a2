// Package config loads scrollwatch.yaml.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/scrollwatch/pkg/errors"
)

// FileName is the configuration file looked up by FindConfig.
const FileName = "scrollwatch.yaml"

// Config is the scrollwatch.yaml document.
type Config struct {
	// Version is the semantic version of the file format. Only v1 is
	// understood.
	Version     string            `yaml:"version"`
	Container   ContainerConfig   `yaml:"container"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Log         LogConfig         `yaml:"log"`
	Scene       Scene             `yaml:"scene"`
}

// ContainerConfig tunes scroll containers.
type ContainerConfig struct {
	ResizeDebounce time.Duration `yaml:"resizeDebounce,omitempty"`
}

// DiagnosticsConfig configures the inspection server.
type DiagnosticsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

// Scene describes a document, what to watch in it and how to drive it.
type Scene struct {
	Viewport   float64     `yaml:"viewport"`
	Nodes      []Node      `yaml:"nodes"`
	Containers []Container `yaml:"containers,omitempty"`
	Watchers   []Watcher   `yaml:"watchers"`
	Script     []Step      `yaml:"script,omitempty"`
}

// Node is a box in the document.
type Node struct {
	ID         string   `yaml:"id,omitempty"`
	Tag        string   `yaml:"tag,omitempty"`
	Classes    []string `yaml:"classes,omitempty"`
	Top        float64  `yaml:"top,omitempty"`
	Height     float64  `yaml:"height,omitempty"`
	Hidden     bool     `yaml:"hidden,omitempty"`
	Scrollable bool     `yaml:"scrollable,omitempty"`
	Text       string   `yaml:"text,omitempty"`
	Width      int      `yaml:"width,omitempty"`
	Children   []Node   `yaml:"children,omitempty"`
}

// Container binds a scrollable node as a nested container.
type Container struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
	// Parent names the enclosing container. Empty means the root.
	Parent string `yaml:"parent,omitempty"`
}

// Watcher is an element to watch. Exactly one of Target, Position and
// Bounds is set.
type Watcher struct {
	Name      string   `yaml:"name"`
	Target    string   `yaml:"target,omitempty"`
	Position  *float64 `yaml:"position,omitempty"`
	Bounds    *Bounds  `yaml:"bounds,omitempty"`
	Offset    any      `yaml:"offset,omitempty"`
	Container string   `yaml:"container,omitempty"`
}

// Bounds is a fixed rectangle target.
type Bounds struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
}

// Step is one script action. Exactly one field is set.
type Step struct {
	Scroll       *float64       `yaml:"scroll,omitempty"`
	ScrollRegion *RegionScroll  `yaml:"scrollRegion,omitempty"`
	Resize       *float64       `yaml:"resize,omitempty"`
	Wait         *time.Duration `yaml:"wait,omitempty"`
	Update       string         `yaml:"update,omitempty"`
	Recalculate  string         `yaml:"recalculate,omitempty"`
	Lock         string         `yaml:"lock,omitempty"`
	Unlock       string         `yaml:"unlock,omitempty"`
	Destroy      string         `yaml:"destroy,omitempty"`
	Hide         string         `yaml:"hide,omitempty"`
	Show         string         `yaml:"show,omitempty"`
	Move         *Move          `yaml:"move,omitempty"`
}

// RegionScroll scrolls a scrollable node.
type RegionScroll struct {
	Target string  `yaml:"target"`
	To     float64 `yaml:"to"`
}

// Move repositions a node.
type Move struct {
	Target string   `yaml:"target"`
	Top    *float64 `yaml:"top,omitempty"`
	Height *float64 `yaml:"height,omitempty"`
}

// Action returns the name of the step's action, or "" when the step sets
// no field or more than one.
func (s Step) Action() string {
	var set []string
	add := func(ok bool, name string) {
		if ok {
			set = append(set, name)
		}
	}
	add(s.Scroll != nil, "scroll")
	add(s.ScrollRegion != nil, "scrollRegion")
	add(s.Resize != nil, "resize")
	add(s.Wait != nil, "wait")
	add(s.Update != "", "update")
	add(s.Recalculate != "", "recalculate")
	add(s.Lock != "", "lock")
	add(s.Unlock != "", "unlock")
	add(s.Destroy != "", "destroy")
	add(s.Hide != "", "hide")
	add(s.Show != "", "show")
	add(s.Move != nil, "move")
	if len(set) != 1 {
		return ""
	}
	return set[0]
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Version:     "v1.0.0",
		Diagnostics: DiagnosticsConfig{Addr: "127.0.0.1:7070"},
		Log:         LogConfig{Level: "info"},
		Scene:       Scene{Viewport: 800},
	}
}

// Load reads and validates the file at path. Missing values take their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("config.Load", fmt.Errorf("failed to read %s: %w", path, err))
	}
	return Parse(data)
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, configError("config.Parse", fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the version and every scene reference that can be
// checked without building the document.
func (c *Config) Validate() error {
	var errs []error
	v := strings.TrimSpace(c.Version)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	switch {
	case !semver.IsValid(v):
		errs = append(errs, fmt.Errorf("version %q is not a semantic version", c.Version))
	case semver.Major(v) != "v1":
		errs = append(errs, fmt.Errorf("version %s is not supported (want v1.x)", c.Version))
	}
	if c.Container.ResizeDebounce < 0 {
		errs = append(errs, fmt.Errorf("container.resizeDebounce must not be negative"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	errs = append(errs, c.Scene.validate()...)
	if err := stderrors.Join(errs...); err != nil {
		return configError("config.Validate", err)
	}
	return nil
}

func (s *Scene) validate() []error {
	var errs []error
	if s.Viewport <= 0 {
		errs = append(errs, fmt.Errorf("scene.viewport must be positive"))
	}

	containers := map[string]bool{"": true}
	for i, c := range s.Containers {
		switch {
		case c.Name == "":
			errs = append(errs, fmt.Errorf("scene.containers[%d]: name is required", i))
		case containers[c.Name]:
			errs = append(errs, fmt.Errorf("scene.containers[%d]: duplicate name %q", i, c.Name))
		case !containers[c.Parent]:
			errs = append(errs, fmt.Errorf("scene.containers[%d]: unknown parent %q", i, c.Parent))
		}
		containers[c.Name] = true
	}

	watchers := make(map[string]bool)
	for i, w := range s.Watchers {
		targets := 0
		for _, set := range []bool{w.Target != "", w.Position != nil, w.Bounds != nil} {
			if set {
				targets++
			}
		}
		switch {
		case w.Name == "":
			errs = append(errs, fmt.Errorf("scene.watchers[%d]: name is required", i))
		case watchers[w.Name]:
			errs = append(errs, fmt.Errorf("scene.watchers[%d]: duplicate name %q", i, w.Name))
		case targets != 1:
			errs = append(errs, fmt.Errorf("scene.watchers[%d]: exactly one of target, position and bounds is required", i))
		case !containers[w.Container]:
			errs = append(errs, fmt.Errorf("scene.watchers[%d]: unknown container %q", i, w.Container))
		}
		watchers[w.Name] = true
	}

	for i, step := range s.Script {
		if step.Action() == "" {
			errs = append(errs, fmt.Errorf("scene.script[%d]: exactly one action is required", i))
		}
	}
	return errs
}

// FindConfig walks up from dir looking for scrollwatch.yaml.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found", FileName)
		}
		dir = parent
	}
}

func configError(op string, err error) error {
	return &errors.ScrollError{Op: op, Kind: errors.KindConfig, Err: err}
}
