// Package config loads the optional per-user profile file (~/.rcon.yaml)
// that names servers so the CLI can be invoked as "rcon -s <name>".
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the whole profile file.
type File struct {
	DefaultServer string            `yaml:"default_server"`
	Servers       map[string]Server `yaml:"servers"`
}

// Server is one named endpoint.
type Server struct {
	Addr           string   `yaml:"addr"`
	Password       string   `yaml:"password"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
	ReadTimeout    Duration `yaml:"read_timeout"`
}

// Duration parses "30s"-style values out of yaml.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// DefaultPath returns ~/.rcon.yaml, or "" when the home dir is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rcon.yaml")
}

// Load reads and parses the file at path. A missing file is not an error:
// it loads as an empty File, so the CLI works from flags and env alone.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, nil
	}
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for name, s := range f.Servers {
		if s.Addr == "" {
			return nil, fmt.Errorf("%s: server %q has no addr", path, name)
		}
	}
	return &f, nil
}

// Lookup resolves name, falling back to the file's default server when name
// is empty. Returns false when nothing matches.
func (f *File) Lookup(name string) (Server, bool) {
	if name == "" {
		name = f.DefaultServer
	}
	s, ok := f.Servers[name]
	return s, ok
}
