// Package clean provides the table cleaning engine: a fixed pipeline of
// deduplication, null handling, name normalization, type inference, and
// outlier detection over a single table, producing a cleaned copy and a
// structured report.
package clean

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fill strategies for null handling.
const (
	FillMean   = "mean"
	FillMedian = "median"
	FillMode   = "mode"
	FillFFill  = "ffill"
	FillBFill  = "bfill"
	FillDrop   = "drop"
)

// Config controls which cleaning steps run and how. The zero value disables
// everything; use DefaultConfig for the usual defaults.
type Config struct {
	// Duplicate handling
	RemoveDuplicates bool     `yaml:"remove_duplicates"`
	DuplicateSubset  []string `yaml:"duplicate_subset"` // nil = whole row
	KeepDuplicate    string   `yaml:"keep_duplicate"`   // "first" or "last"

	// Null handling
	HandleNulls   bool    `yaml:"handle_nulls"`
	NullThreshold float64 `yaml:"null_threshold"` // drop column if null fraction exceeds this
	FillStrategy  string  `yaml:"fill_strategy"`

	// Type inference
	InferTypes bool `yaml:"infer_types"`
	ParseDates bool `yaml:"parse_dates"`

	// Column name normalization
	NormalizeNames bool `yaml:"normalize_names"`

	// Outlier detection (opt-in)
	DetectOutliers bool   `yaml:"detect_outliers"`
	OutlierMethod  string `yaml:"outlier_method"` // "iqr"
}

// DefaultConfig returns the standard cleaning configuration: everything on
// except outlier detection, mean fill, 50% null threshold.
func DefaultConfig() Config {
	return Config{
		RemoveDuplicates: true,
		KeepDuplicate:    "first",
		HandleNulls:      true,
		NullThreshold:    0.5,
		FillStrategy:     FillMean,
		InferTypes:       true,
		ParseDates:       true,
		NormalizeNames:   true,
		DetectOutliers:   false,
		OutlierMethod:    "iqr",
	}
}

// LoadConfig reads a YAML cleaning configuration, applied over the defaults
// so partial files work.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading cleaning config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing cleaning config: %w", err)
	}
	return cfg, nil
}
