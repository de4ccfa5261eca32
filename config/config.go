package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/nomis52/goplan/export"
	"github.com/nomis52/goplan/layout"
	"github.com/nomis52/goplan/logging"
	"github.com/nomis52/goplan/record"
	"github.com/nomis52/goplan/statusreporter"
	"github.com/nomis52/goplan/store"
	"github.com/nomis52/goplan/suggest"
)

const (
	defaultVariant     = "placement"
	defaultCatalogPath = "kompetencemal.json"

	// Default store settings
	defaultStoreBackend = store.BackendFile
	defaultStorePath    = "data"

	// Default export settings
	defaultOutputDir   = "."
	defaultBreakPolicy = "coarse"

	// Default monitoring settings
	defaultMetricsPrefix = "planner"
	defaultJobName       = "goplan"
)

// Config represents the complete application configuration
type Config struct {
	// Variant selects the form flavour: "placement" or "course".
	Variant     string            `yaml:"variant"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Store       StoreConfig       `yaml:"store"`
	Export      ExportConfig      `yaml:"export"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Status      StatusConfig      `yaml:"status"`
	Logging     logging.Config    `yaml:"logging"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
}

// CatalogConfig locates the goal catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
	// Shape is "structured" or "combined". Defaults to the variant's shape.
	Shape string `yaml:"shape"`
}

// StoreConfig selects where the activity collection is kept.
type StoreConfig struct {
	// Backend is one of file, bolt, sqlite, memory.
	Backend string `yaml:"backend"`
	// Path is a directory for the file backend, a database file otherwise.
	Path string `yaml:"path"`
	Key  string `yaml:"key"`
	// Cap overrides the variant's record limit. 0 keeps the variant's
	// limit, a negative value removes it.
	Cap int `yaml:"cap"`
}

// ExportConfig controls the PDF export.
type ExportConfig struct {
	Title     string `yaml:"title"`
	Filename  string `yaml:"filename"`
	OutputDir string `yaml:"output_dir"`
	// BreakPolicy is "coarse" or "fit".
	BreakPolicy string `yaml:"break_policy"`
	// Schedule is a 5-field cron expression for periodic export. Empty disables it.
	Schedule  string          `yaml:"schedule"`
	PageWidth float64         `yaml:"page_width"`
	Geometry  layout.Geometry `yaml:"geometry"`
}

// SuggestionsConfig controls the suggestion source.
type SuggestionsConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// StatusConfig controls transient status messages.
type StatusConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// MonitoringConfig holds metrics and monitoring settings
type MonitoringConfig struct {
	// RemoteWriteURL enables pushing metrics from one-shot commands.
	RemoteWriteURL string `yaml:"remote_write_url"`
	// Listen enables a /metrics endpoint while the schedule command runs.
	Listen        string `yaml:"listen"`
	MetricsPrefix string `yaml:"metrics_prefix"`
	JobName       string `yaml:"jobname"`
	Instance      string `yaml:"instance"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errs []error

	variant, err := record.VariantByName(c.Variant)
	if err != nil {
		errs = append(errs, err)
	}
	if c.Catalog.Path == "" {
		errs = append(errs, fmt.Errorf("catalog path is required"))
	}
	if c.Catalog.Shape != record.ShapeStructured && c.Catalog.Shape != record.ShapeCombined {
		errs = append(errs, fmt.Errorf("catalog shape must be %q or %q, got %q",
			record.ShapeStructured, record.ShapeCombined, c.Catalog.Shape))
	}

	switch strings.ToLower(c.Store.Backend) {
	case store.BackendFile, store.BackendBolt, store.BackendSQLite:
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store path is required for backend %q", c.Store.Backend))
		}
	case store.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.Key == "" {
		errs = append(errs, fmt.Errorf("store key is required"))
	}

	if c.Export.Filename == "" || strings.ContainsAny(c.Export.Filename, `/\`) {
		errs = append(errs, fmt.Errorf("export filename %q must be a plain file name", c.Export.Filename))
	}
	if _, err := layout.ParseBreakPolicy(c.Export.BreakPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.Export.Schedule != "" {
		if _, err := cron.ParseStandard(c.Export.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("export schedule %q: %w", c.Export.Schedule, err))
		}
	}
	if c.Export.PageWidth <= 0 {
		errs = append(errs, fmt.Errorf("page width must be positive"))
	} else if c.Export.Geometry.MarginLeft+c.Export.Geometry.TextWidth > c.Export.PageWidth {
		errs = append(errs, fmt.Errorf("text width %.1f does not fit page width %.1f",
			c.Export.Geometry.TextWidth, c.Export.PageWidth))
	}
	if err := c.Export.Geometry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("export geometry: %w", err))
	}

	if c.Suggestions.Delay < 0 {
		errs = append(errs, fmt.Errorf("suggestion delay must not be negative"))
	}
	if c.Status.TTL <= 0 {
		errs = append(errs, fmt.Errorf("status ttl must be positive"))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}

	if err == nil && c.Store.Cap > 0 && variant.Cap > 0 && c.Store.Cap > variant.Cap {
		errs = append(errs, fmt.Errorf("store cap %d exceeds the %s variant limit of %d",
			c.Store.Cap, variant.Name, variant.Cap))
	}

	return errors.Join(errs...)
}

// SetDefaults sets reasonable default values for optional fields
func (c *Config) SetDefaults() {
	if c.Variant == "" {
		c.Variant = defaultVariant
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	if c.Catalog.Shape == "" {
		if v, err := record.VariantByName(c.Variant); err == nil {
			c.Catalog.Shape = v.CatalogShape
		}
	}

	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath
	}
	if c.Store.Key == "" {
		c.Store.Key = store.DefaultKey
	}

	if c.Export.Title == "" {
		c.Export.Title = export.DefaultTitle
	}
	if c.Export.Filename == "" {
		c.Export.Filename = export.DefaultFilename
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = defaultOutputDir
	}
	if c.Export.BreakPolicy == "" {
		c.Export.BreakPolicy = defaultBreakPolicy
	}
	if c.Export.PageWidth == 0 {
		c.Export.PageWidth = export.DefaultPageWidth
	}
	c.Export.Geometry = mergeGeometry(c.Export.Geometry, layout.DefaultGeometry())

	if c.Suggestions.Delay == 0 {
		c.Suggestions.Delay = suggest.DefaultDelay
	}
	if c.Status.TTL == 0 {
		c.Status.TTL = statusreporter.DefaultTTL
	}

	c.Logging.SetDefaults()

	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
	if c.Monitoring.JobName == "" {
		c.Monitoring.JobName = defaultJobName
	}
}

// ResolveVariant returns the selected variant with the store cap override applied.
func (c *Config) ResolveVariant() (record.Variant, error) {
	v, err := record.VariantByName(c.Variant)
	if err != nil {
		return record.Variant{}, err
	}
	switch {
	case c.Store.Cap > 0:
		v.Cap = c.Store.Cap
	case c.Store.Cap < 0:
		v.Cap = 0
	}
	return v, nil
}

// ResolveBreakPolicy parses export.break_policy.
func (c *Config) ResolveBreakPolicy() (layout.BreakPolicy, error) {
	return layout.ParseBreakPolicy(c.Export.BreakPolicy)
}

// mergeGeometry fills every zero field of g from def.
func mergeGeometry(g, def layout.Geometry) layout.Geometry {
	fields := []struct {
		dst *float64
		src float64
	}{
		{&g.PageHeight, def.PageHeight},
		{&g.MarginTop, def.MarginTop},
		{&g.MarginLeft, def.MarginLeft},
		{&g.BottomThreshold, def.BottomThreshold},
		{&g.TextWidth, def.TextWidth},
		{&g.TitleSize, def.TitleSize},
		{&g.TitleHeight, def.TitleHeight},
		{&g.HeadingSize, def.HeadingSize},
		{&g.HeadingHeight, def.HeadingHeight},
		{&g.BodySize, def.BodySize},
		{&g.LineHeight, def.LineHeight},
		{&g.BlockSpacing, def.BlockSpacing},
	}
	for _, f := range fields {
		if *f.dst == 0 {
			*f.dst = f.src
		}
	}
	return g
}

// LoadConfig reads the YAML config file at the given path and returns a Config struct
func LoadConfig(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
