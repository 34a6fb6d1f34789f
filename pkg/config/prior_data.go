package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SplineData is one entry of a spline prior resource.
type SplineData struct {
	Knots  []float64 `yaml:"knots"`
	Coeffs []float64 `yaml:"coeffs"`
	Deg    int       `yaml:"deg"`
	Units  string    `yaml:"units"`
}

// PriorDataLoader resolves the resource named by a ".prior.data" key into
// spline tables keyed by prior name.
type PriorDataLoader interface {
	Load(resource string) (map[string]SplineData, error)
}

// FileLoader reads YAML or JSON resources from disk. Relative resources are
// resolved against BaseDir. Decoded resources are cached.
type FileLoader struct {
	BaseDir string

	mu    sync.Mutex
	cache map[string]map[string]SplineData
}

// NewFileLoader returns a loader rooted at baseDir.
func NewFileLoader(baseDir string) *FileLoader {
	return &FileLoader{BaseDir: baseDir}
}

// Load implements PriorDataLoader.
func (l *FileLoader) Load(resource string) (map[string]SplineData, error) {
	path := resource
	if !filepath.IsAbs(path) && l.BaseDir != "" {
		path = filepath.Join(l.BaseDir, path)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if data, ok := l.cache[path]; ok {
		return data, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read prior data %s", path)
	}
	data := make(map[string]SplineData)
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrapf(ErrPriorData, "%s: %v", path, err)
	}
	if l.cache == nil {
		l.cache = make(map[string]map[string]SplineData)
	}
	l.cache[path] = data
	return data, nil
}
