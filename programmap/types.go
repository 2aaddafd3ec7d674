package programmap

import "encoding/json"

// ProjectionMethod selects how feature vectors are reduced to two plot coordinates.
type ProjectionMethod string

const (
	// ProjectionAxes plots two vocabulary columns directly.
	ProjectionAxes ProjectionMethod = "axes"
	// ProjectionPCA plots the first two principal components.
	ProjectionPCA ProjectionMethod = "pca"
)

// ProgramRecord describes a single academic program in the catalog.
type ProgramRecord struct {
	Name               string   `json:"name" yaml:"name"`
	CoreObjective      string   `json:"core_objective,omitempty" yaml:"core_objective,omitempty"`
	KeyStrength        string   `json:"key_strength,omitempty" yaml:"key_strength,omitempty"`
	SpecializedCourses []string `json:"specialized_courses" yaml:"specialized_courses"`
	CareerOutcomes     []string `json:"career_outcomes" yaml:"career_outcomes"`
}

// Catalog is the on-disk shape of a program catalog.
type Catalog struct {
	Programs []ProgramRecord `json:"programs" yaml:"programs"`
}

// LogConfig controls the zap logger built by NewLogger.
type LogConfig struct {
	Level       string `json:"level" yaml:"level" toml:"level"`
	Development bool   `json:"development" yaml:"development" toml:"development"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	K                  int              `json:"k" yaml:"k" toml:"k"`
	MaxIterations      int              `json:"maxIterations" yaml:"maxIterations" toml:"maxIterations"`
	Seed               *int64           `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
	IncludeDescriptive bool             `json:"includeDescriptive" yaml:"includeDescriptive" toml:"includeDescriptive"`
	FoldUnicode        bool             `json:"foldUnicode" yaml:"foldUnicode" toml:"foldUnicode"`
	Projection         ProjectionMethod `json:"projection" yaml:"projection" toml:"projection"`
	AxisX              string           `json:"axisX,omitempty" yaml:"axisX,omitempty" toml:"axisX,omitempty"`
	AxisY              string           `json:"axisY,omitempty" yaml:"axisY,omitempty" toml:"axisY,omitempty"`
	CatalogPath        string           `json:"catalogPath,omitempty" yaml:"catalogPath,omitempty" toml:"catalogPath,omitempty"`
	Columns            ColumnCandidates `json:"columns" yaml:"columns" toml:"columns"`
	Log                LogConfig        `json:"log" yaml:"log" toml:"log"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults fills unset values. Negative K or MaxIterations are left in
// place so the clustering engine rejects them.
func (c *Config) ApplyDefaults() {
	if c.K == 0 {
		c.K = DefaultK
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	switch c.Projection {
	case ProjectionAxes, ProjectionPCA:
	default:
		c.Projection = ProjectionAxes
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ClusterOptions converts the configuration into engine options.
func (c Config) ClusterOptions() Options {
	opts := Options{K: c.K, MaxIterations: c.MaxIterations}
	if c.Seed != nil {
		seed := *c.Seed
		opts.Seed = &seed
	}
	return opts
}

// ExtractOptions converts the configuration into feature extraction options.
func (c Config) ExtractOptions() ExtractOptions {
	return ExtractOptions{IncludeDescriptive: c.IncludeDescriptive, FoldUnicode: c.FoldUnicode}
}

// CatalogOptions returns the CSV/TSV parse options driven by the configuration.
func (c Config) CatalogOptions() CatalogParseOptions {
	return CatalogParseOptions{Candidates: c.Columns}
}
