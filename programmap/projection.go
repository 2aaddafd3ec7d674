package programmap

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ProjectionOptions selects the plotting coordinates.
type ProjectionOptions struct {
	Method ProjectionMethod
	// AxisX and AxisY name vocabulary tokens for ProjectionAxes. Unknown or
	// empty names fall back to the highest-variance columns.
	AxisX string
	AxisY string
}

// Coord is a 2-D position.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projection holds one coordinate pair per feature vector.
type Projection struct {
	Method ProjectionMethod `json:"method"`
	XLabel string           `json:"xLabel"`
	YLabel string           `json:"yLabel"`
	Coords []Coord          `json:"coords"`
}

// Project reduces the feature matrix to two dimensions.
func Project(m FeatureMatrix, opts ProjectionOptions) Projection {
	if opts.Method == ProjectionPCA {
		if p, ok := projectPCA(m); ok {
			return p
		}
	}
	return projectAxes(m, opts.AxisX, opts.AxisY)
}

func projectAxes(m FeatureMatrix, axisX, axisY string) Projection {
	x := m.Vocabulary.Index(axisX)
	y := m.Vocabulary.Index(axisY)
	if x == y {
		y = -1
	}
	ranked := columnsByVariance(m)
	for _, col := range ranked {
		if x >= 0 && y >= 0 {
			break
		}
		if col == x || col == y {
			continue
		}
		if x < 0 {
			x = col
		} else {
			y = col
		}
	}

	p := Projection{Method: ProjectionAxes, Coords: make([]Coord, len(m.Vectors))}
	if x >= 0 {
		p.XLabel = m.Vocabulary[x]
	}
	if y >= 0 {
		p.YLabel = m.Vocabulary[y]
	}
	for i, vec := range m.Vectors {
		if x >= 0 {
			p.Coords[i].X = vec[x]
		}
		if y >= 0 {
			p.Coords[i].Y = vec[y]
		}
	}
	return p
}

// columnsByVariance returns column indices ordered by decreasing variance,
// lower index first on ties.
func columnsByVariance(m FeatureMatrix) []int {
	rows, cols := m.Dims()
	variances := make([]float64, cols)
	if rows > 0 {
		col := make([]float64, rows)
		for j := 0; j < cols; j++ {
			for i, vec := range m.Vectors {
				col[i] = vec[j]
			}
			variances[j] = stat.PopVariance(col, nil)
		}
	}
	order := make([]int, cols)
	for i := range order {
		order[i] = i
	}
	// insertion sort keeps equal variances in column order
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && variances[order[j]] > variances[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

func projectPCA(m FeatureMatrix) (Projection, bool) {
	rows, cols := m.Dims()
	if rows < 2 || cols < 2 {
		return Projection{}, false
	}
	data := mat.NewDense(rows, cols, nil)
	for i, vec := range m.Vectors {
		data.SetRow(i, vec)
	}
	for j := 0; j < cols; j++ {
		mean := stat.Mean(mat.Col(nil, j, data), nil)
		for i := 0; i < rows; i++ {
			data.Set(i, j, data.At(i, j)-mean)
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return Projection{}, false
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	if _, n := vecs.Dims(); n < 2 {
		return Projection{}, false
	}
	var proj mat.Dense
	proj.Mul(data, vecs.Slice(0, cols, 0, 2))

	p := Projection{Method: ProjectionPCA, XLabel: "PC1", YLabel: "PC2", Coords: make([]Coord, rows)}
	for i := range p.Coords {
		p.Coords[i] = Coord{X: proj.At(i, 0), Y: proj.At(i, 1)}
	}
	return p, true
}
