package programmap

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed values, then returns 0.
type scriptedSource struct {
	vals []int
	pos  int
}

func (s *scriptedSource) Intn(n int) int {
	if s.pos >= len(s.vals) {
		return 0
	}
	v := s.vals[s.pos] % n
	s.pos++
	return v
}

func seed(v int64) *int64 { return &v }

func TestClusterScenario(t *testing.T) {
	_, vectors := ExtractFeatures(scenarioRecords())

	for _, iters := range []int{1, 2, 30} {
		// Intn(3)=0 selects row 0, Intn(2)=1 swaps row 2 into the second slot.
		res, err := Cluster(vectors, Options{K: 2, MaxIterations: iters, Rand: &scriptedSource{vals: []int{0, 1}}})
		require.NoError(t, err)

		assert.Equal(t, []int{0, 0, 1}, res.Assignments, "iterations=%d", iters)
		assert.Equal(t, []float64{1, 1, 0, 0}, res.Centroids[0])
		assert.Equal(t, []float64{0, 0, 1, 1}, res.Centroids[1])
		assert.Equal(t, iters, res.Iterations)
		assert.Zero(t, res.Reseeds)
		assert.InDelta(t, 0, res.SSE, 1e-12)
	}
}

func TestClusterInvalidArguments(t *testing.T) {
	cases := []struct {
		name    string
		vectors [][]float64
		opts    Options
	}{
		{name: "no vectors", vectors: nil, opts: Options{K: 1}},
		{name: "ragged vectors", vectors: [][]float64{{1, 0}, {1}}, opts: Options{K: 1}},
		{name: "zero k", vectors: [][]float64{{1}}, opts: Options{K: 0}},
		{name: "negative k", vectors: [][]float64{{1}}, opts: Options{K: -2}},
		{name: "negative iterations", vectors: [][]float64{{1}}, opts: Options{K: 1, MaxIterations: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Cluster(tc.vectors, tc.opts)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, res)
		})
	}
}

func TestClusterClampsK(t *testing.T) {
	vectors := [][]float64{{1, 0}, {0, 1}}
	res, err := Cluster(vectors, Options{K: 5, Seed: seed(7)})
	require.NoError(t, err)

	assert.Equal(t, 2, res.K)
	require.Len(t, res.Centroids, 2)
	assert.NotEqual(t, res.Centroids[0], res.Centroids[1])
	assert.NotEqual(t, res.Assignments[0], res.Assignments[1])
	assert.Equal(t, []int{1, 1}, res.Sizes())
}

func TestClusterAssignmentCompleteness(t *testing.T) {
	records, err := DefaultCatalog()
	require.NoError(t, err)
	_, vectors := ExtractFeatures(records)

	for k := 1; k <= len(vectors)+2; k++ {
		res, err := Cluster(vectors, Options{K: k, Seed: seed(int64(k))})
		require.NoError(t, err)
		require.Len(t, res.Assignments, len(vectors))
		require.Len(t, res.Centroids, res.K)
		for i, a := range res.Assignments {
			assert.GreaterOrEqual(t, a, 0, "row %d", i)
			assert.Less(t, a, res.K, "row %d", i)
		}
		total := 0
		for _, size := range res.Sizes() {
			total += size
		}
		assert.Equal(t, len(vectors), total)
	}
}

func TestClusterCentroidMeans(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vectors := make([][]float64, 40)
	for i := range vectors {
		vec := make([]float64, 6)
		for j := range vec {
			if rng.Intn(2) == 1 {
				vec[j] = 1
			}
		}
		vectors[i] = vec
	}

	res, err := Cluster(vectors, Options{K: 4, MaxIterations: 12, Seed: seed(11)})
	require.NoError(t, err)

	for c := 0; c < res.K; c++ {
		members := res.Members(c)
		if len(members) == 0 {
			continue
		}
		for j := range res.Centroids[c] {
			sum := 0.0
			for _, m := range members {
				sum += vectors[m][j]
			}
			assert.InDelta(t, sum/float64(len(members)), res.Centroids[c][j], 1e-9, "cluster %d coord %d", c, j)
		}
	}
}

func TestClusterFixedSeedIsDeterministic(t *testing.T) {
	records, err := DefaultCatalog()
	require.NoError(t, err)
	_, vectors := ExtractFeatures(records)

	first, err := Cluster(vectors, Options{K: 3, Seed: seed(42)})
	require.NoError(t, err)
	second, err := Cluster(vectors, Options{K: 3, Seed: seed(42)})
	require.NoError(t, err)

	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Centroids, second.Centroids)
	assert.Equal(t, first.SSE, second.SSE)
}

func TestClusterEmptyClusterReseed(t *testing.T) {
	// Only two distinct patterns for three clusters: one centroid always
	// duplicates another and loses every tie.
	vectors := [][]float64{{1, 0}, {1, 0}, {0, 1}}

	res, err := Cluster(vectors, Options{K: 3, MaxIterations: 10, Seed: seed(5)})
	require.NoError(t, err)

	assert.Equal(t, 3, res.K)
	require.Len(t, res.Centroids, 3)
	for c, centroid := range res.Centroids {
		require.Len(t, centroid, 2)
		for _, v := range centroid {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "centroid %d has %v", c, v)
		}
	}
	assert.Equal(t, 10, res.Reseeds)
	assert.Equal(t, res.Assignments[0], res.Assignments[1])
	assert.NotEqual(t, res.Assignments[0], res.Assignments[2])
}

func TestClusterZeroWidthVectors(t *testing.T) {
	res, err := Cluster([][]float64{{}, {}, {}}, Options{K: 2, Seed: seed(1)})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, res.Assignments)
	assert.Equal(t, 2, res.K)
}

func TestClusterDefaultIterationsAndRandomSeed(t *testing.T) {
	_, vectors := ExtractFeatures(scenarioRecords())
	res, err := Cluster(vectors, Options{K: 2})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, res.Iterations)
	assert.Equal(t, res.Assignments[0], res.Assignments[1])
}

func TestClusterContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, vectors := ExtractFeatures(scenarioRecords())
	_, err := ClusterContext(ctx, vectors, Options{K: 2, Seed: seed(1)})
	require.ErrorIs(t, err, context.Canceled)
}
