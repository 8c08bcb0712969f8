package eventboard

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"
)

const (
	// LogoAssetsPath is the URL prefix the embedded logos are served under.
	LogoAssetsPath = "/assets/logos/"
	// DefaultLogoPath is used for events without a mapped logo.
	DefaultLogoPath = LogoAssetsPath + "default.svg"
)

var defaultLogos = map[string]string{
	"IT Manager":  LogoAssetsPath + "it-manager.svg",
	"CodeSustain": LogoAssetsPath + "code-sustain.svg",
	"Web Weavers": LogoAssetsPath + "web-weavers.svg",
	"Anime Quiz":  LogoAssetsPath + "anime-quiz.svg",
	"TechJar":     LogoAssetsPath + "techjar.svg",
	"Illustra":    LogoAssetsPath + "illustra.svg",
	"Sensorize":   LogoAssetsPath + "sensorize.svg",
	"Chronoscape": LogoAssetsPath + "chronoscape.svg",
}

// LogoMapping resolves event names to logo image paths. It is immutable once
// built; unknown names resolve to the fallback path.
type LogoMapping struct {
	paths    map[string]string
	fallback string
}

// NewLogoMapping copies paths into a new mapping. An empty fallback uses
// DefaultLogoPath.
func NewLogoMapping(paths map[string]string, fallback string) LogoMapping {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultLogoPath
	}
	copied := make(map[string]string, len(paths))
	for name, p := range paths {
		if name == "" || p == "" {
			continue
		}
		copied[name] = p
	}
	return LogoMapping{paths: copied, fallback: fallback}
}

// DefaultLogoMapping returns the logos bundled with the board.
func DefaultLogoMapping() LogoMapping {
	return NewLogoMapping(defaultLogos, DefaultLogoPath)
}

// Resolve returns the logo path for name, or the fallback.
func (m LogoMapping) Resolve(name string) string {
	if p, ok := m.paths[name]; ok {
		return p
	}
	return m.Fallback()
}

// Fallback returns the path used for unknown names.
func (m LogoMapping) Fallback() string {
	if m.fallback == "" {
		return DefaultLogoPath
	}
	return m.fallback
}

// Paths returns a copy of the explicit mappings.
func (m LogoMapping) Paths() map[string]string {
	out := make(map[string]string, len(m.paths))
	for name, p := range m.paths {
		out[name] = p
	}
	return out
}

// Names returns the mapped event names sorted alphabetically.
func (m LogoMapping) Names() []string {
	names := make([]string, 0, len(m.paths))
	for name := range m.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DerivedLogoPath builds the conventional logo path for an event name.
func DerivedLogoPath(name string) string {
	slug := strcase.ToKebab(strings.TrimSpace(name))
	if slug == "" {
		return DefaultLogoPath
	}
	return path.Join(LogoAssetsPath, slug+".svg")
}

// LogoFile is the YAML document format for logo overrides.
type LogoFile struct {
	Default string            `yaml:"default,omitempty"`
	Logos   map[string]string `yaml:"logos"`
}

// Mapping converts the file into a LogoMapping.
func (f LogoFile) Mapping() LogoMapping {
	return NewLogoMapping(f.Logos, f.Default)
}

// DecodeLogoFile reads a logo document from any reader.
func DecodeLogoFile(r io.Reader) (LogoFile, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc LogoFile
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return LogoFile{}, fmt.Errorf("eventboard: logo file is empty")
		}
		return LogoFile{}, fmt.Errorf("eventboard: parse logo file: %w", err)
	}
	for name, p := range doc.Logos {
		if strings.TrimSpace(name) == "" {
			return LogoFile{}, fmt.Errorf("eventboard: logo file has an empty event name")
		}
		if strings.TrimSpace(p) == "" {
			return LogoFile{}, fmt.Errorf("eventboard: logo for %q is empty", name)
		}
	}
	return doc, nil
}

// ReadLogoFile loads a logo document from disk.
func ReadLogoFile(filename string) (LogoFile, error) {
	f, err := os.Open(filename) //nolint:gosec
	if err != nil {
		return LogoFile{}, fmt.Errorf("eventboard: open logo file %s: %w", filename, err)
	}
	defer f.Close()
	return DecodeLogoFile(f)
}

// LoadLogoMapping reads filename and merges it over the bundled defaults.
func LoadLogoMapping(filename string) (LogoMapping, error) {
	if filename == "" {
		return DefaultLogoMapping(), nil
	}
	doc, err := ReadLogoFile(filename)
	if err != nil {
		return LogoMapping{}, err
	}
	merged := DefaultLogoMapping().Paths()
	for name, p := range doc.Logos {
		merged[name] = p
	}
	return NewLogoMapping(merged, doc.Default), nil
}

// WriteLogoFile encodes doc as YAML to filename.
func WriteLogoFile(filename string, doc LogoFile) error {
	f, err := os.Create(filename) //nolint:gosec
	if err != nil {
		return fmt.Errorf("eventboard: create logo file %s: %w", filename, err)
	}
	defer f.Close()
	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("eventboard: write logo file: %w", err)
	}
	return nil
}
