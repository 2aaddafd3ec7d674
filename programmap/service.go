package programmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Point is one program placed in the plot plane.
type Point struct {
	Name    string  `json:"name"`
	Cluster int     `json:"cluster"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Result is a self-contained clustering run. Feature vectors are only
// meaningful together with the vocabulary stored next to them.
type Result struct {
	Query      string           `json:"query"`
	Matched    bool             `json:"matched"`
	Records    []ProgramRecord  `json:"records"`
	Features   FeatureMatrix    `json:"features"`
	Clustering *Clustering      `json:"clustering"`
	Projection Projection       `json:"projection"`
	Clusters   []ClusterSummary `json:"clusters"`
}

// Points merges record names, cluster ids and projected coordinates.
func (r *Result) Points() []Point {
	out := make([]Point, len(r.Records))
	for i, rec := range r.Records {
		out[i] = Point{Name: rec.Name, Cluster: r.Clustering.Assignments[i]}
		if i < len(r.Projection.Coords) {
			out[i].X = r.Projection.Coords[i].X
			out[i].Y = r.Projection.Coords[i].Y
		}
	}
	return out
}

// Run filters, extracts, clusters and projects records in one call. K and
// MaxIterations reach the engine unchanged, so K < 1 or a negative iteration
// count fail with ErrInvalidArgument.
func Run(ctx context.Context, records []ProgramRecord, query string, cfg Config) (*Result, error) {
	subset, matched := Filter(records, query)
	if len(subset) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrInvalidArgument)
	}
	features := ExtractFeatureMatrix(subset, cfg.ExtractOptions())
	clustering, err := ClusterContext(ctx, features.Vectors, cfg.ClusterOptions())
	if err != nil {
		return nil, err
	}
	return &Result{
		Query:      strings.TrimSpace(query),
		Matched:    matched,
		Records:    subset,
		Features:   features,
		Clustering: clustering,
		Projection: Project(features, ProjectionOptions{Method: cfg.Projection, AxisX: cfg.AxisX, AxisY: cfg.AxisY}),
		Clusters:   Summarize(subset, features.Vocabulary, clustering),
	}, nil
}

// Service keeps the catalog and the latest clustering result for a UI.
// Every catalog replacement, configuration update and recluster starts a new
// generation; only a run that is still the latest generation when it finishes
// becomes Current.
type Service struct {
	mu      sync.RWMutex
	catalog []ProgramRecord
	cfg     Config
	current *Result
	gen     uint64

	logger *zap.Logger
}

// NewService constructs a service over the given catalog. The configuration
// is used as given; LoadConfig fills unset values.
func NewService(records []ProgramRecord, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog: cloneRecords(records),
		cfg:     cfg.Clone(),
		logger:  logger,
	}
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig replaces the configuration. The current result is kept until
// the next Recluster; runs already in flight are superseded.
func (s *Service) UpdateConfig(cfg Config) {
	cfg = cfg.Clone()
	s.mu.Lock()
	s.cfg = cfg
	s.gen++
	s.mu.Unlock()
}

// Catalog returns a copy of the full catalog.
func (s *Service) Catalog() []ProgramRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.catalog)
}

// ReplaceCatalog swaps the catalog, drops the current result and supersedes
// runs in flight.
func (s *Service) ReplaceCatalog(records []ProgramRecord) {
	s.mu.Lock()
	s.catalog = cloneRecords(records)
	s.current = nil
	s.gen++
	s.mu.Unlock()
	s.logger.Info("catalog replaced", zap.Int("programs", len(records)))
}

// Current returns the latest result, or nil before the first Recluster.
func (s *Service) Current() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Recluster runs the pipeline for query and replaces the current result. A
// run overtaken by a newer generation returns ErrSuperseded and leaves
// Current untouched.
func (s *Service) Recluster(ctx context.Context, query string) (*Result, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	catalog := s.catalog
	cfg := s.cfg.Clone()
	s.mu.Unlock()

	res, err := Run(ctx, catalog, query, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("recluster canceled", zap.String("query", query))
		} else {
			s.logger.Error("recluster failed", zap.String("query", query), zap.Error(err))
		}
		return nil, fmt.Errorf("recluster: %w", err)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Debug("recluster superseded", zap.String("query", res.Query), zap.Uint64("generation", gen))
		return nil, fmt.Errorf("recluster: %w", ErrSuperseded)
	}
	s.current = res
	s.mu.Unlock()

	if !res.Matched {
		s.logger.Warn("no programs matched, clustering full catalog", zap.String("query", res.Query))
	}
	s.logger.Info("reclustered",
		zap.String("query", res.Query),
		zap.Int("programs", len(res.Records)),
		zap.Int("vocabulary", len(res.Features.Vocabulary)),
		zap.Int("k", res.Clustering.K),
		zap.Int("reseeds", res.Clustering.Reseeds),
		zap.Float64("sse", res.Clustering.SSE))
	return res, nil
}
