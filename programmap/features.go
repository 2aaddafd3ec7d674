package programmap

// Vocabulary is the ordered list of distinct attribute tokens. The position of
// a token is its column index in every vector extracted alongside it.
type Vocabulary []string

// Index returns the column of token, or -1 when absent. The argument is
// normalized like an extracted token; the folded form is tried second.
func (v Vocabulary) Index(token string) int {
	key := NormalizeToken(token)
	if i := v.lookup(key); i >= 0 {
		return i
	}
	if folded := FoldToken(token); folded != key {
		return v.lookup(folded)
	}
	return -1
}

func (v Vocabulary) lookup(key string) int {
	if key == "" {
		return -1
	}
	for i, t := range v {
		if t == key {
			return i
		}
	}
	return -1
}

// ExtractOptions tunes which record fields contribute tokens.
type ExtractOptions struct {
	// IncludeDescriptive adds the core objective and key strength as tokens.
	IncludeDescriptive bool
	// FoldUnicode merges tokens that differ only by Unicode compatibility
	// forms or inner whitespace. Off by default: tokens match exactly after
	// trimming and lower-casing.
	FoldUnicode bool
}

// FeatureMatrix pairs binary feature vectors with the vocabulary that
// produced them. Vectors from different matrices must not be compared.
type FeatureMatrix struct {
	Vocabulary Vocabulary  `json:"vocabulary"`
	Vectors    [][]float64 `json:"vectors"`
}

// Dims returns the number of rows and columns.
func (m FeatureMatrix) Dims() (rows, cols int) {
	return len(m.Vectors), len(m.Vocabulary)
}

// Column returns the values of the named token across all rows.
func (m FeatureMatrix) Column(token string) ([]float64, bool) {
	idx := m.Vocabulary.Index(token)
	if idx < 0 {
		return nil, false
	}
	col := make([]float64, len(m.Vectors))
	for i, vec := range m.Vectors {
		col[i] = vec[idx]
	}
	return col, true
}

// ExtractFeatures builds the vocabulary and one presence vector per record
// from specialized courses and career outcomes.
func ExtractFeatures(records []ProgramRecord) (Vocabulary, [][]float64) {
	m := ExtractFeatureMatrix(records, ExtractOptions{})
	return m.Vocabulary, m.Vectors
}

// ExtractFeatureMatrix is ExtractFeatures with options.
func ExtractFeatureMatrix(records []ProgramRecord, opts ExtractOptions) FeatureMatrix {
	vocab := make(Vocabulary, 0)
	columns := make(map[string]int)
	normalize := NormalizeToken
	if opts.FoldUnicode {
		normalize = FoldToken
	}
	tokenSets := make([]map[string]struct{}, len(records))
	for i, rec := range records {
		set := make(map[string]struct{})
		for _, raw := range recordTokens(rec, opts) {
			token := normalize(raw)
			if token == "" {
				continue
			}
			set[token] = struct{}{}
			if _, ok := columns[token]; ok {
				continue
			}
			columns[token] = len(vocab)
			vocab = append(vocab, token)
		}
		tokenSets[i] = set
	}

	vectors := make([][]float64, len(records))
	for i, set := range tokenSets {
		vec := make([]float64, len(vocab))
		for j, token := range vocab {
			if _, ok := set[token]; ok {
				vec[j] = 1
			}
		}
		vectors[i] = vec
	}
	return FeatureMatrix{Vocabulary: vocab, Vectors: vectors}
}

func recordTokens(rec ProgramRecord, opts ExtractOptions) []string {
	n := len(rec.SpecializedCourses) + len(rec.CareerOutcomes)
	if opts.IncludeDescriptive {
		n += 2
	}
	out := make([]string, 0, n)
	out = append(out, rec.SpecializedCourses...)
	out = append(out, rec.CareerOutcomes...)
	if opts.IncludeDescriptive {
		out = append(out, rec.CoreObjective, rec.KeyStrength)
	}
	return out
}
