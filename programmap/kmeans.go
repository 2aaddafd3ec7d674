package programmap

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultK is the cluster count used when none is configured.
	DefaultK = 3
	// DefaultMaxIterations is the number of assign/update passes.
	DefaultMaxIterations = 30
)

// Source supplies the randomness used for initial centroids and for
// reseeding empty clusters. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// Options controls a clustering run.
type Options struct {
	K             int
	MaxIterations int
	// Seed makes initialization reproducible when Rand is nil.
	Seed *int64
	// Rand takes precedence over Seed.
	Rand Source
}

// Clustering is the outcome of a k-means run.
type Clustering struct {
	// K is the effective cluster count after clamping to the number of vectors.
	K           int         `json:"k"`
	Assignments []int       `json:"assignments"`
	Centroids   [][]float64 `json:"centroids"`
	Iterations  int         `json:"iterations"`
	// Reseeds counts how many times an empty cluster was reseeded.
	Reseeds int `json:"reseeds"`
	// SSE is the sum of squared distances from each vector to its centroid.
	SSE float64 `json:"sse"`
}

// Sizes returns the number of members per cluster.
func (c *Clustering) Sizes() []int {
	sizes := make([]int, c.K)
	for _, a := range c.Assignments {
		sizes[a]++
	}
	return sizes
}

// Members returns the row indices assigned to cluster id.
func (c *Clustering) Members(id int) []int {
	var out []int
	for i, a := range c.Assignments {
		if a == id {
			out = append(out, i)
		}
	}
	return out
}

// Cluster partitions vectors into at most opts.K groups with Lloyd's algorithm.
func Cluster(vectors [][]float64, opts Options) (*Clustering, error) {
	return ClusterContext(context.Background(), vectors, opts)
}

// ClusterContext is Cluster with a context checked once per iteration.
//
// The run always performs exactly MaxIterations assign/update passes; there is
// no convergence check. Clusters left empty by an assignment pass are reseeded
// to a random input vector, so the objective is not guaranteed to decrease.
func ClusterContext(ctx context.Context, vectors [][]float64, opts Options) (*Clustering, error) {
	if err := validateVectors(vectors); err != nil {
		return nil, err
	}
	if opts.K < 1 {
		return nil, fmt.Errorf("%w: cluster count must be at least 1, got %d", ErrInvalidArgument, opts.K)
	}
	if opts.MaxIterations < 0 {
		return nil, fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidArgument, opts.MaxIterations)
	}
	maxIter := opts.MaxIterations
	if maxIter == 0 {
		maxIter = DefaultMaxIterations
	}
	k := opts.K
	if k > len(vectors) {
		k = len(vectors)
	}

	km := &lloyd{
		vectors:     vectors,
		k:           k,
		rng:         resolveSource(opts),
		assignments: make([]int, len(vectors)),
		scratch:     make([]float64, len(vectors[0])),
	}
	km.initCentroids()

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cluster iteration %d: %w", iter, err)
		}
		km.assign()
		km.update()
	}

	return &Clustering{
		K:           k,
		Assignments: km.assignments,
		Centroids:   km.centroids,
		Iterations:  maxIter,
		Reseeds:     km.reseeds,
		SSE:         km.sse(),
	}, nil
}

func validateVectors(vectors [][]float64) error {
	if len(vectors) == 0 {
		return fmt.Errorf("%w: no vectors to cluster", ErrInvalidArgument)
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has length %d, want %d", ErrInvalidArgument, i, len(v), dim)
		}
	}
	return nil
}

func resolveSource(opts Options) Source {
	if opts.Rand != nil {
		return opts.Rand
	}
	if opts.Seed != nil {
		return rand.New(rand.NewSource(*opts.Seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

type lloyd struct {
	vectors     [][]float64
	k           int
	rng         Source
	centroids   [][]float64
	assignments []int
	reseeds     int
	scratch     []float64
}

// initCentroids picks k distinct rows with a partial Fisher-Yates shuffle.
func (km *lloyd) initCentroids() {
	n := len(km.vectors)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	km.centroids = make([][]float64, km.k)
	for j := 0; j < km.k; j++ {
		r := j + km.rng.Intn(n-j)
		perm[j], perm[r] = perm[r], perm[j]
		km.centroids[j] = cloneVector(km.vectors[perm[j]])
	}
}

func (km *lloyd) assign() {
	for i, vec := range km.vectors {
		best := 0
		bestDist := math.Inf(1)
		for c, centroid := range km.centroids {
			// strict comparison keeps the lowest index on ties
			if d := km.sqDist(vec, centroid); d < bestDist {
				bestDist = d
				best = c
			}
		}
		km.assignments[i] = best
	}
}

func (km *lloyd) update() {
	dim := len(km.vectors[0])
	sums := make([][]float64, km.k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	counts := make([]int, km.k)
	for i, vec := range km.vectors {
		c := km.assignments[i]
		counts[c]++
		floats.Add(sums[c], vec)
	}
	for c := range sums {
		if counts[c] == 0 {
			km.centroids[c] = cloneVector(km.vectors[km.rng.Intn(len(km.vectors))])
			km.reseeds++
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		km.centroids[c] = sums[c]
	}
}

func (km *lloyd) sqDist(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	floats.SubTo(km.scratch, a, b)
	return floats.Dot(km.scratch, km.scratch)
}

func (km *lloyd) sse() float64 {
	total := 0.0
	for i, vec := range km.vectors {
		total += km.sqDist(vec, km.centroids[km.assignments[i]])
	}
	return total
}

func cloneVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
