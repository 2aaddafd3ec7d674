package programmap

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newObservedService(t *testing.T, records []ProgramRecord, cfg Config) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewService(records, cfg, zap.New(core)), logs
}

func TestRunScenario(t *testing.T) {
	res, err := Run(context.Background(), scenarioRecords(), "", Config{K: 2, Seed: seed(1)})
	require.NoError(t, err)

	assert.True(t, res.Matched)
	assert.Equal(t, Vocabulary{"ai", "analyst", "erp", "consultant"}, res.Features.Vocabulary)
	assert.Equal(t, 2, res.Clustering.K)
	require.Len(t, res.Clustering.Assignments, 3)
	assert.Equal(t, "ai", res.Projection.XLabel)

	points := res.Points()
	require.Len(t, points, 3)
	assert.Equal(t, "c", points[2].Name)
	assert.Equal(t, res.Clustering.Assignments[2], points[2].Cluster)
	assert.Equal(t, res.Projection.Coords[2].X, points[2].X)
	require.Len(t, res.Clusters, 2)
}

func TestRunEmptyCatalog(t *testing.T) {
	_, err := Run(context.Background(), nil, "", Config{K: 2})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRunRejectsInvalidClusterSettings(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "negative k", cfg: Config{K: -1}},
		{name: "zero k", cfg: Config{K: 0}},
		{name: "negative iterations", cfg: Config{K: 2, MaxIterations: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Run(context.Background(), scenarioRecords(), "", tc.cfg)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, res)
		})
	}
}

func TestServiceRejectsInvalidClusterSettings(t *testing.T) {
	svc := NewService(scenarioRecords(), Config{K: -1}, nil)
	_, err := svc.Recluster(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidArgument)

	svc.UpdateConfig(Config{K: 2, MaxIterations: -5})
	_, err = svc.Recluster(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, svc.Current())
}

func TestRunZeroIterationsUsesDefault(t *testing.T) {
	res, err := Run(context.Background(), scenarioRecords(), "", Config{K: 2, Seed: seed(1)})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, res.Clustering.Iterations)
}

func TestServiceReclusterReplacesResult(t *testing.T) {
	records, err := DefaultCatalog()
	require.NoError(t, err)
	svc, logs := newObservedService(t, records, Config{K: DefaultK, Seed: seed(8)})
	assert.Nil(t, svc.Current())

	ctx := context.Background()
	all, err := svc.Recluster(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all.Records, len(records))
	assert.Same(t, all, svc.Current())
	assert.Equal(t, DefaultK, all.Clustering.K)

	erp, err := svc.Recluster(ctx, "erp")
	require.NoError(t, err)
	assert.Same(t, erp, svc.Current())
	assert.Less(t, len(erp.Records), len(records))
	for _, rec := range erp.Records {
		assert.True(t, Matches(rec, "erp"), rec.Name)
	}
	// vocabulary is rebuilt from the filtered subset only
	assert.Less(t, len(erp.Features.Vocabulary), len(all.Features.Vocabulary))

	assert.Equal(t, 2, logs.FilterMessage("reclustered").Len())
}

func TestServiceFallbackWhenNothingMatches(t *testing.T) {
	records, err := DefaultCatalog()
	require.NoError(t, err)
	svc, logs := newObservedService(t, records, Config{K: DefaultK, Seed: seed(8)})

	res, err := svc.Recluster(context.Background(), "underwater basket weaving")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Len(t, res.Records, len(records))

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "underwater basket weaving", warns[0].ContextMap()["query"])
}

func TestServiceReclusterError(t *testing.T) {
	svc, logs := newObservedService(t, nil, Config{K: 2})
	_, err := svc.Recluster(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Nil(t, svc.Current())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestServiceConfigAndCatalog(t *testing.T) {
	svc := NewService(scenarioRecords(), Config{K: 2, Seed: seed(4)}, nil)
	assert.Equal(t, 2, svc.Config().K)

	svc.UpdateConfig(Config{K: 1, Seed: seed(2)})
	res, err := svc.Recluster(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Clustering.K)
	assert.Equal(t, []int{0, 0, 0}, res.Clustering.Assignments)

	catalog := svc.Catalog()
	catalog[0].Name = "changed"
	assert.Equal(t, "a", svc.Catalog()[0].Name)

	svc.ReplaceCatalog(catalog[:1])
	assert.Nil(t, svc.Current())
	assert.Len(t, svc.Catalog(), 1)
}

// gatedContext blocks the first Err call until released, holding a recluster
// after it has captured its inputs.
type gatedContext struct {
	context.Context
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedContext() *gatedContext {
	return &gatedContext{
		Context: context.Background(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (c *gatedContext) Err() error {
	c.once.Do(func() {
		close(c.entered)
		<-c.release
	})
	return nil
}

func TestServiceDropsSupersededResult(t *testing.T) {
	cases := []struct {
		name    string
		between func(svc *Service)
	}{
		{name: "catalog replaced", between: func(svc *Service) { svc.ReplaceCatalog(scenarioRecords()[:1]) }},
		{name: "config updated", between: func(svc *Service) { svc.UpdateConfig(Config{K: 1, Seed: seed(2)}) }},
		{name: "newer recluster", between: func(*Service) {}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(scenarioRecords(), Config{K: 2, Seed: seed(1)}, nil)

			gate := newGatedContext()
			type outcome struct {
				res *Result
				err error
			}
			done := make(chan outcome, 1)
			go func() {
				res, err := svc.Recluster(gate, "")
				done <- outcome{res, err}
			}()
			<-gate.entered

			tc.between(svc)
			fresh, err := svc.Recluster(context.Background(), "")
			require.NoError(t, err)

			close(gate.release)
			stale := <-done
			require.ErrorIs(t, stale.err, ErrSuperseded)
			assert.Nil(t, stale.res)
			assert.Same(t, fresh, svc.Current())
			assert.Len(t, svc.Current().Records, len(svc.Catalog()))
		})
	}
}

func TestServiceCanceledRecluster(t *testing.T) {
	svc, logs := newObservedService(t, scenarioRecords(), Config{K: 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Recluster(ctx, "")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, svc.Current())
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)

	var sink bufferSink
	logger, err := NewLogger(LogConfig{Level: "warn"}, &sink)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", zap.Int("k", 3))
	assert.NotContains(t, sink.String(), "hidden")
	assert.Contains(t, sink.String(), "shown")
}

type bufferSink struct {
	data []byte
}

func (b *bufferSink) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *bufferSink) Sync() error { return nil }

func (b *bufferSink) String() string { return string(b.data) }
