package programmap

import "strings"

// Matches reports whether the record contains query as a case-insensitive
// substring of its objective, key strength, any course or any outcome.
func Matches(rec ProgramRecord, query string) bool {
	q := foldCase(query)
	if strings.Contains(foldCase(rec.CoreObjective), q) ||
		strings.Contains(foldCase(rec.KeyStrength), q) {
		return true
	}
	for _, c := range rec.SpecializedCourses {
		if strings.Contains(foldCase(c), q) {
			return true
		}
	}
	for _, o := range rec.CareerOutcomes {
		if strings.Contains(foldCase(o), q) {
			return true
		}
	}
	return false
}

// Filter returns the records matching query. A blank query returns every
// record. When nothing matches, the full catalog is returned with matched set
// to false so callers can still cluster something.
func Filter(records []ProgramRecord, query string) (out []ProgramRecord, matched bool) {
	if strings.TrimSpace(query) == "" {
		return cloneRecords(records), true
	}
	for _, rec := range records {
		if Matches(rec, query) {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		return cloneRecords(records), false
	}
	return out, true
}

func cloneRecords(records []ProgramRecord) []ProgramRecord {
	if records == nil {
		return nil
	}
	out := make([]ProgramRecord, len(records))
	copy(out, records)
	return out
}
