package programmap

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ResultCSVHeader is the header row written by WriteResultCSV. The column
// names match the catalog loader so an export can be loaded back.
var ResultCSVHeader = []string{
	"name", "cluster", "label", "x", "y",
	"core_objective", "key_strength", "specialized_courses", "career_outcomes",
}

// WriteResultCSV writes one row per clustered program.
func WriteResultCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, p := range res.Points() {
		rec := res.Records[i]
		row := []string{
			p.Name,
			strconv.Itoa(p.Cluster),
			res.ClusterLabel(p.Cluster),
			strconv.FormatFloat(p.X, 'f', -1, 64),
			strconv.FormatFloat(p.Y, 'f', -1, 64),
			rec.CoreObjective,
			rec.KeyStrength,
			strings.Join(rec.SpecializedCourses, "; "),
			strings.Join(rec.CareerOutcomes, "; "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResultJSON writes the full result as indented JSON.
func WriteResultJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// ClusterLabel returns the summary label of cluster id, or "" if unknown.
func (r *Result) ClusterLabel(id int) string {
	for _, c := range r.Clusters {
		if c.ID == id {
			return c.Label
		}
	}
	return ""
}
