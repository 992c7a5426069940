// Package config loads the YAML configuration shared by the blockgraph tools.
//
//	label: "Invoice"
//	labels: ["Invoice", "Poliza", "Packing List", "Other"]
//	on_duplicate_key: "overwrite"   # overwrite | collect | error
//	missing_geometry: "skip"        # skip | reject
//	normalize_text: false
//	workers: 4
//	table_format: "csv"             # csv | tsv | markdown | html
//	textract:
//	  region: "us-east-1"
//	documentai:
//	  project_id: "your-gcp-project-id"
//	  location: "us"
//	  processor_id: "your-processor-id"
//	tesseract:
//	  languages: ["eng"]
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/gardar/blockgraph/pkg/blocks"
	"github.com/gardar/blockgraph/pkg/export"
	"github.com/gardar/blockgraph/pkg/gdocai"
	"github.com/gardar/blockgraph/pkg/textract"
)

// Config is the resolved tool configuration
type Config struct {
	Label           string   `yaml:"label"`
	Labels          []string `yaml:"labels"` // Known classifier labels, used for warnings only
	OnDuplicateKey  string   `yaml:"on_duplicate_key"`
	MissingGeometry string   `yaml:"missing_geometry"`
	NormalizeText   bool     `yaml:"normalize_text"`
	Workers         int      `yaml:"workers"`
	TableFormat     string   `yaml:"table_format"`

	Textract   TextractConfig   `yaml:"textract"`
	DocumentAI DocumentAIConfig `yaml:"documentai"`
	Tesseract  TesseractConfig  `yaml:"tesseract"`
}

type TextractConfig struct {
	Region string `yaml:"region"`
}

type DocumentAIConfig struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

type TesseractConfig struct {
	Languages []string `yaml:"languages"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		OnDuplicateKey:  string(blocks.DuplicateOverwrite),
		MissingGeometry: string(blocks.GeometrySkip),
		Workers:         runtime.NumCPU(),
		TableFormat:     string(export.FormatCSV),
		Textract:        TextractConfig{Region: "us-east-1"},
		DocumentAI:      DocumentAIConfig{Location: "us"},
		Tesseract:       TesseractConfig{Languages: []string{"eng"}},
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	if _, err := blocks.ParseDuplicatePolicy(c.OnDuplicateKey); err != nil {
		return err
	}
	if _, err := blocks.ParseGeometryPolicy(c.MissingGeometry); err != nil {
		return err
	}
	if _, err := export.ParseTableFormat(c.TableFormat); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// DuplicatePolicy returns the parsed on_duplicate_key setting
func (c *Config) DuplicatePolicy() blocks.DuplicatePolicy {
	p, _ := blocks.ParseDuplicatePolicy(c.OnDuplicateKey)
	return p
}

// LayoutConfig maps the layout settings onto the builder's config
func (c *Config) LayoutConfig() blocks.LayoutConfig {
	lc := blocks.DefaultLayoutConfig()
	lc.MissingGeometry, _ = blocks.ParseGeometryPolicy(c.MissingGeometry)
	lc.NormalizeText = c.NormalizeText
	return lc
}

// Format returns the parsed table_format setting
func (c *Config) Format() export.TableFormat {
	f, _ := export.ParseTableFormat(c.TableFormat)
	return f
}

// KnownLabel reports whether label is in Labels. An empty Labels list knows every label.
func (c *Config) KnownLabel(label string) bool {
	if len(c.Labels) == 0 {
		return true
	}
	for _, l := range c.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// GDocAI maps the documentai section onto the Document AI client config
func (c *Config) GDocAI() *gdocai.Config {
	return &gdocai.Config{
		ProjectID:   c.DocumentAI.ProjectID,
		Location:    c.DocumentAI.Location,
		ProcessorID: c.DocumentAI.ProcessorID,
	}
}

// TextractClient maps the textract section onto the Textract client config
func (c *Config) TextractClient() textract.Config {
	return textract.Config{Region: c.Textract.Region}
}
