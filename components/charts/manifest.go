package charts

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current page manifest format version.
	ManifestVersion = manifestVersionV1
)

// ChartOverride customizes a single chart beyond the mode defaults.
type ChartOverride struct {
	Kind   ChartKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Height string    `json:"height,omitempty" yaml:"height,omitempty"`
}

// DatasetRef points at the dataset document backing a page.
type DatasetRef struct {
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// PageManifest is the YAML document describing one chart page: where its
// dataset lives, which filters, categories, and computed series apply, and
// the default view.
type PageManifest struct {
	Version      string                   `json:"version" yaml:"version"`
	Title        string                   `json:"title,omitempty" yaml:"title,omitempty"`
	Dataset      DatasetRef               `json:"dataset" yaml:"dataset"`
	Mode         Mode                     `json:"mode,omitempty" yaml:"mode,omitempty"`
	Horizon      int                      `json:"horizon,omitempty" yaml:"horizon,omitempty"`
	TotalID      string                   `json:"total_id,omitempty" yaml:"total_id,omitempty"`
	ExcludedID   string                   `json:"excluded_id,omitempty" yaml:"excluded_id,omitempty"`
	Exclude      []string                 `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	FilterGroups []string                 `json:"filter_groups,omitempty" yaml:"filter_groups,omitempty"`
	Filters      []Filter                 `json:"filters,omitempty" yaml:"filters,omitempty"`
	Cities       []CityFilter             `json:"cities,omitempty" yaml:"cities,omitempty"`
	Categories   []Category               `json:"categories,omitempty" yaml:"categories,omitempty"`
	Computed     []ComputedSeries         `json:"computed,omitempty" yaml:"computed,omitempty"`
	Charts       map[string]ChartOverride `json:"charts,omitempty" yaml:"charts,omitempty"`
	Source       string                   `json:"-" yaml:"-"`
}

// ReadPageManifest loads a page manifest from disk.
func ReadPageManifest(path string) (*PageManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("charts: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodePageManifest(f)
	if err != nil {
		return nil, fmt.Errorf("charts: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodePageManifest reads a page manifest from any reader. Unknown fields
// are rejected.
func DecodePageManifest(r io.Reader) (*PageManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc PageManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("charts: manifest is empty")
		}
		return nil, fmt.Errorf("charts: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields and that the view
// configuration it describes is internally consistent.
func (doc *PageManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("charts: unsupported manifest version %q", doc.Version)
	}
	if doc.Dataset.URL == "" && doc.Dataset.Path == "" {
		return fmt.Errorf("charts: manifest needs dataset.url or dataset.path")
	}
	if doc.Mode != "" && !doc.Mode.Valid() {
		return fmt.Errorf("charts: unknown mode %q", doc.Mode)
	}
	for id, override := range doc.Charts {
		if override.Kind != "" && override.Kind != KindLine && override.Kind != KindBar {
			return fmt.Errorf("charts: chart %s has unknown kind %q", id, override.Kind)
		}
	}
	return doc.ViewConfig().Validate()
}

func (doc *PageManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if doc.Mode == "" {
		doc.Mode = ModeYoY
	}
}

// ViewConfig converts the manifest into the controller configuration.
func (doc *PageManifest) ViewConfig() ViewConfig {
	return ViewConfig{
		Filters:        doc.Filters,
		FilterGroups:   doc.FilterGroups,
		Cities:         doc.Cities,
		Categories:     doc.Categories,
		Computed:       doc.Computed,
		Exclude:        doc.Exclude,
		TotalID:        doc.TotalID,
		ExcludedID:     doc.ExcludedID,
		DefaultMode:    doc.Mode,
		DefaultHorizon: doc.Horizon,
	}
}

// Loader builds the dataset loader the manifest points at.
func (doc *PageManifest) Loader() (Loader, error) {
	if doc.Dataset.Path != "" {
		return FileLoader{Path: doc.Dataset.Path}, nil
	}
	return NewHTTPLoader(HTTPLoaderConfig{URL: doc.Dataset.URL})
}
