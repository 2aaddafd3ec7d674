package programmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioRecords() []ProgramRecord {
	return []ProgramRecord{
		{Name: "a", SpecializedCourses: []string{"AI"}, CareerOutcomes: []string{"Analyst"}},
		{Name: "b", SpecializedCourses: []string{"AI"}, CareerOutcomes: []string{"Analyst"}},
		{Name: "c", SpecializedCourses: []string{"ERP"}, CareerOutcomes: []string{"Consultant"}},
	}
}

func TestExtractFeaturesScenario(t *testing.T) {
	vocab, vectors := ExtractFeatures(scenarioRecords())

	if diff := cmp.Diff(Vocabulary{"ai", "analyst", "erp", "consultant"}, vocab); diff != "" {
		t.Fatalf("vocabulary mismatch (-want +got):\n%s", diff)
	}
	want := [][]float64{
		{1, 1, 0, 0},
		{1, 1, 0, 0},
		{0, 0, 1, 1},
	}
	if diff := cmp.Diff(want, vectors); diff != "" {
		t.Fatalf("vectors mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFeaturesNormalizesAndDeduplicates(t *testing.T) {
	records := []ProgramRecord{
		{Name: "x", SpecializedCourses: []string{"  Machine  Learning ", "ERP", "erp "}, CareerOutcomes: []string{"machine learning"}},
		{Name: "y", SpecializedCourses: []string{"\uff25\uff32\uff30", ""}, CareerOutcomes: []string{"  ", "Machine  learning"}},
	}

	vocab, vectors := ExtractFeatures(records)
	assert.Equal(t, Vocabulary{"machine  learning", "erp", "machine learning", "\uff45\uff52\uff50"}, vocab)
	assert.Equal(t, [][]float64{{1, 1, 1, 0}, {1, 0, 0, 1}}, vectors)

	folded := ExtractFeatureMatrix(records, ExtractOptions{FoldUnicode: true})
	assert.Equal(t, Vocabulary{"machine learning", "erp"}, folded.Vocabulary)
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, folded.Vectors)
}

func TestVocabularyIndex(t *testing.T) {
	vocab := Vocabulary{"machine learning", "erp"}
	assert.Equal(t, 0, vocab.Index(" Machine Learning"))
	assert.Equal(t, 0, vocab.Index("Machine   Learning"))
	assert.Equal(t, 1, vocab.Index("\uff25\uff32\uff30"))
	assert.Equal(t, -1, vocab.Index("statistics"))
	assert.Equal(t, -1, vocab.Index(""))
}

func TestExtractFeaturesShapeAndDeterminism(t *testing.T) {
	records, err := DefaultCatalog()
	require.NoError(t, err)

	vocab1, vectors1 := ExtractFeatures(records)
	vocab2, vectors2 := ExtractFeatures(records)
	assert.Equal(t, vocab1, vocab2)
	assert.Equal(t, vectors1, vectors2)

	require.Len(t, vectors1, len(records))
	seen := make(map[string]bool)
	for _, token := range vocab1 {
		assert.False(t, seen[token], "duplicate token %q", token)
		seen[token] = true
	}
	for i, vec := range vectors1 {
		require.Len(t, vec, len(vocab1), "row %d", i)
		for j, v := range vec {
			assert.Contains(t, []float64{0, 1}, v, "row %d col %d", i, j)
		}
	}
}

func TestExtractFeaturesEdgeCases(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		vocab, vectors := ExtractFeatures(nil)
		assert.Empty(t, vocab)
		assert.Empty(t, vectors)
	})

	t.Run("record without attributes", func(t *testing.T) {
		records := []ProgramRecord{
			{Name: "bare"},
			{Name: "full", SpecializedCourses: []string{"Statistics"}},
		}
		vocab, vectors := ExtractFeatures(records)
		assert.Equal(t, Vocabulary{"statistics"}, vocab)
		assert.Equal(t, []float64{0}, vectors[0])
		assert.Equal(t, []float64{1}, vectors[1])
	})

	t.Run("does not mutate records", func(t *testing.T) {
		records := scenarioRecords()
		ExtractFeatures(records)
		assert.Equal(t, scenarioRecords(), records)
	})
}

func TestExtractFeatureMatrixDescriptive(t *testing.T) {
	records := []ProgramRecord{
		{Name: "a", KeyStrength: "Data", CoreObjective: "Insight", SpecializedCourses: []string{"AI"}},
		{Name: "b", KeyStrength: "ERP", SpecializedCourses: []string{"ERP"}},
	}

	plain := ExtractFeatureMatrix(records, ExtractOptions{})
	assert.Equal(t, Vocabulary{"ai", "erp"}, plain.Vocabulary)

	m := ExtractFeatureMatrix(records, ExtractOptions{IncludeDescriptive: true})
	assert.Equal(t, Vocabulary{"ai", "insight", "data", "erp"}, m.Vocabulary)
	assert.Equal(t, []float64{0, 0, 0, 1}, m.Vectors[1])

	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 4, cols)

	col, ok := m.Column("DATA")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0}, col)
	_, ok = m.Column("missing")
	assert.False(t, ok)
}
