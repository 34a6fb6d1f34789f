package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// File is an ordered collection of sections. Section and key order follow the
// source document.
type File struct {
	sections []*Section
	index    map[string]*Section
}

// NewFile returns an empty configuration.
func NewFile() *File {
	return &File{index: make(map[string]*Section)}
}

// AddSection appends a new empty section.
func (f *File) AddSection(name string) (*Section, error) {
	if _, ok := f.index[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateSection, "%q", name)
	}
	s := &Section{Name: name, values: make(map[string]string)}
	f.sections = append(f.sections, s)
	f.index[name] = s
	return s, nil
}

// Section returns the section called name.
func (f *File) Section(name string) (*Section, bool) {
	s, ok := f.index[name]
	return s, ok
}

// Sections returns the sections in order.
func (f *File) Sections() []*Section {
	return append([]*Section(nil), f.sections...)
}

// Get returns the value of key in section.
func (f *File) Get(section, key string) (string, bool) {
	s, ok := f.index[section]
	if !ok {
		return "", false
	}
	return s.Get(key)
}

// Section is an ordered set of key/value pairs.
type Section struct {
	Name   string
	keys   []string
	values map[string]string
}

// Set appends key. Keys are unique within a section.
func (s *Section) Set(key, value string) error {
	if _, ok := s.values[key]; ok {
		return errors.Wrapf(ErrDuplicateKey, "%q", key)
	}
	s.keys = append(s.keys, key)
	s.values[key] = value
	return nil
}

// Get returns the value stored under key.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Section) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the keys in order.
func (s *Section) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Bool interprets key with ParseBool.
func (s *Section) Bool(key string) (bool, error) {
	v, ok := s.Get(key)
	if !ok {
		return false, errors.Wrapf(ErrMissingKey, "%q", key)
	}
	return ParseBool(v)
}

// ParseBool accepts 1/yes/true/on and 0/no/false/off, case-insensitive.
func ParseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, errors.Wrapf(ErrInvalidBool, "%q", v)
}

// List splits a comma separated value and trims each element.
func List(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads a configuration file, choosing the decoder from its extension:
// .toml, .yaml/.yml/.json, anything else is read as INI.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return ParseTOML(data)
	case ".yaml", ".yml", ".json":
		return ParseYAML(data)
	default:
		return ParseINI(data)
	}
}
