package config

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader loads engine configuration using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// BasePath returns the directory the loader was created for
func (l *Loader) BasePath() string {
	return l.basePath
}

// LoadSettings loads a key=value settings file.
//
// The returned Settings are always usable: if the file cannot be read they are the defaults,
// and malformed values keep their defaults while being reported as ParseErrors.
func (l *Loader) LoadSettings(name string) (Settings, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to read %s: %w", name, err)
	}
	return ParseSettings(bytes.NewReader(data))
}

// LoadManifest loads and validates a YAML sprite manifest
func (l *Loader) LoadManifest(name string) (*Manifest, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", name, err)
	}
	return &m, nil
}
