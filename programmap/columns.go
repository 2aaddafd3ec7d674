package programmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ColumnCandidates lists header names recognized for each record field when a
// CSV/TSV catalog is read without explicit columns. A nil field uses the
// built-in names; the comparison ignores case.
type ColumnCandidates struct {
	Name      []string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Objective []string `json:"objective,omitempty" yaml:"objective,omitempty" toml:"objective,omitempty"`
	Strength  []string `json:"strength,omitempty" yaml:"strength,omitempty" toml:"strength,omitempty"`
	Courses   []string `json:"courses,omitempty" yaml:"courses,omitempty" toml:"courses,omitempty"`
	Outcomes  []string `json:"outcomes,omitempty" yaml:"outcomes,omitempty" toml:"outcomes,omitempty"`
}

// DefaultColumnCandidates returns the built-in header names, matching the
// field names of the JSON catalog and the CSV export.
func DefaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		Name:      []string{"name", "program", "program name", "title"},
		Objective: []string{"core_objective", "core objective", "main focus", "focus", "objective"},
		Strength:  []string{"key_strength", "key strength", "strength"},
		Courses:   []string{"specialized_courses", "specialized courses", "courses"},
		Outcomes:  []string{"career_outcomes", "career outcomes", "outcomes", "careers"},
	}
}

// catalogColumns holds the resolved 0-based column of each field, -1 if absent.
type catalogColumns struct {
	Name      int
	Objective int
	Strength  int
	Courses   int
	Outcomes  int
}

// resolveCatalogColumns maps every record field to a header column. An
// explicit column in opts wins over the candidates; only the name is required.
func resolveCatalogColumns(header []string, opts CatalogParseOptions) (catalogColumns, error) {
	defaults := DefaultColumnCandidates()
	var cols catalogColumns
	fields := []struct {
		dst        *int
		explicit   string
		candidates []string
		fallback   []string
	}{
		{&cols.Name, opts.NameColumn, opts.Candidates.Name, defaults.Name},
		{&cols.Objective, opts.ObjectiveColumn, opts.Candidates.Objective, defaults.Objective},
		{&cols.Strength, opts.StrengthColumn, opts.Candidates.Strength, defaults.Strength},
		{&cols.Courses, opts.CoursesColumn, opts.Candidates.Courses, defaults.Courses},
		{&cols.Outcomes, opts.OutcomesColumn, opts.Candidates.Outcomes, defaults.Outcomes},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.explicit) != "" {
			idx, err := matchExplicitColumn(header, f.explicit)
			if err != nil {
				return cols, err
			}
			*f.dst = idx
			continue
		}
		candidates := f.candidates
		if candidates == nil {
			candidates = f.fallback
		}
		*f.dst = findColumn(header, candidates)
	}
	if cols.Name < 0 {
		return cols, errors.New("no program name column found")
	}
	return cols, nil
}

func findColumn(header []string, candidates []string) int {
	for i, col := range header {
		for _, cand := range candidates {
			if strings.EqualFold(col, strings.TrimSpace(cand)) {
				return i
			}
		}
	}
	return -1
}

func matchExplicitColumn(header []string, explicit string) (int, error) {
	trimmed := strings.TrimSpace(explicit)
	for i, col := range header {
		if strings.EqualFold(col, trimmed) {
			return i, nil
		}
	}
	if !strings.HasPrefix(trimmed, "#") {
		return -1, fmt.Errorf("column %q not found", explicit)
	}
	idx, err := parseColumnIndex(trimmed)
	if err != nil {
		return -1, err
	}
	if idx >= len(header) {
		return -1, fmt.Errorf("column index %s is out of range", trimmed)
	}
	return idx, nil
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}
