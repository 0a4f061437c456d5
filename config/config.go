// Package config handles objcore.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"

	"github.com/chazu/objcore/vm"
)

// FileName is the name of the configuration file.
const FileName = "objcore.toml"

var log = commonlog.GetLogger("objcore.config")

// Config represents an objcore.toml file.
type Config struct {
	Runtime Runtime     `toml:"runtime"`
	Classes []ClassDecl `toml:"class"`

	// Dir is the directory containing the objcore.toml file (set at load time).
	Dir string `toml:"-"`
}

// Runtime configures the Context.
type Runtime struct {
	// AttrCacheSize is the number of attribute lookups cached. Zero or a
	// negative value disables the cache; when the key is absent the
	// runtime default is used.
	AttrCacheSize int `toml:"attr-cache-size"`

	// LogVerbosity is passed to commonlog.Configure by the CLI.
	LogVerbosity int `toml:"log-verbosity"`
}

// ClassDecl declares a class to register at startup. Bases are full
// class names ("bytes", "net::Packet") of built-in classes or of classes
// declared earlier in the file. With no bases the class derives from
// object.
type ClassDecl struct {
	Name      string   `toml:"name"`
	Namespace string   `toml:"namespace"`
	Bases     []string `toml:"bases"`
}

// FullName returns namespace::name, or just name without a namespace.
func (d ClassDecl) FullName() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "::" + d.Name
}

// Default returns the configuration used when no objcore.toml exists.
func Default() *Config {
	return &Config{
		Runtime: Runtime{AttrCacheSize: vm.DefaultAttrCacheSize},
	}
}

// Load parses an objcore.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find an objcore.toml file,
// then loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks the class declarations for missing and repeated names.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Classes))
	for i, d := range c.Classes {
		if d.Name == "" {
			return fmt.Errorf("class %d: missing name", i+1)
		}
		if seen[d.FullName()] {
			return fmt.Errorf("class %s declared twice", d.FullName())
		}
		seen[d.FullName()] = true
	}
	return nil
}

// ContextOptions returns the vm options for this configuration.
func (c *Config) ContextOptions() []vm.Option {
	return []vm.Option{vm.WithAttrCacheSize(c.Runtime.AttrCacheSize)}
}

// Apply registers the declared classes in ctx, in file order.
func (c *Config) Apply(ctx *vm.Context) error {
	for _, d := range c.Classes {
		bases := make([]*vm.Class, 0, len(d.Bases))
		for _, name := range d.Bases {
			b := ctx.Classes.Lookup(name)
			if b == nil {
				return fmt.Errorf("class %s: unknown base %q", d.FullName(), name)
			}
			bases = append(bases, b)
		}
		cls, err := ctx.NewClassInNamespace(d.Namespace, d.Name, bases...)
		if err != nil {
			return fmt.Errorf("class %s: %w", d.FullName(), err)
		}
		log.Infof("declared class %s (layout %s)", cls.FullName(), cls.Layout().Name)
	}
	return nil
}

// NewContext creates a Context configured by c with its declared
// classes registered.
func (c *Config) NewContext() (*vm.Context, error) {
	ctx := vm.NewContext(c.ContextOptions()...)
	if err := c.Apply(ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}
