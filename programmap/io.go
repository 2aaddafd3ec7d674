package programmap

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogParseOptions lets callers choose which CSV/TSV columns map to record
// fields. Column values are header names or 1-based "#n" indices; fields
// without one are detected through Candidates.
type CatalogParseOptions struct {
	NameColumn      string
	ObjectiveColumn string
	StrengthColumn  string
	CoursesColumn   string
	OutcomesColumn  string
	Candidates      ColumnCandidates
}

// LoadCatalog reads a JSON, YAML, CSV or TSV catalog chosen by file extension.
func LoadCatalog(path string) ([]ProgramRecord, error) {
	return LoadCatalogWithOptions(path, CatalogParseOptions{})
}

// LoadCatalogWithOptions is LoadCatalog with explicit CSV/TSV column mappings.
func LoadCatalogWithOptions(path string, opts CatalogParseOptions) ([]ProgramRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	var records []ProgramRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		records, err = decodeYAMLCatalog(data)
	case ".csv":
		records, err = decodeDelimitedCatalog(bytes.NewReader(data), ',', opts)
	case ".tsv":
		records, err = decodeDelimitedCatalog(bytes.NewReader(data), '\t', opts)
	default:
		records, err = DecodeJSONCatalog(data)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// DecodeJSONCatalog accepts either {"programs": [...]} or a bare array.
func DecodeJSONCatalog(data []byte) ([]ProgramRecord, error) {
	trimmed := bytes.TrimSpace(data)
	var records []ProgramRecord
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
	} else {
		var cat Catalog
		if err := json.Unmarshal(trimmed, &cat); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		records = cat.Programs
	}
	return cleanCatalog(records)
}

func decodeYAMLCatalog(data []byte) ([]ProgramRecord, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	var records []ProgramRecord
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&records); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
	} else {
		var cat Catalog
		if err := node.Decode(&cat); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		records = cat.Programs
	}
	return cleanCatalog(records)
}

// cleanCatalog trims every field, drops blank list entries and rejects
// unnamed or duplicate programs.
func cleanCatalog(records []ProgramRecord) ([]ProgramRecord, error) {
	seen := make(map[string]struct{}, len(records))
	out := make([]ProgramRecord, 0, len(records))
	for i, rec := range records {
		rec.Name = cleanCell(rec.Name)
		rec.CoreObjective = cleanCell(rec.CoreObjective)
		rec.KeyStrength = cleanCell(rec.KeyStrength)
		rec.SpecializedCourses = cleanList(rec.SpecializedCourses)
		rec.CareerOutcomes = cleanList(rec.CareerOutcomes)
		if rec.Name == "" {
			return nil, fmt.Errorf("%w: program %d has no name", ErrInvalidCatalog, i+1)
		}
		if _, dup := seen[rec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate program name %q", ErrInvalidCatalog, rec.Name)
		}
		seen[rec.Name] = struct{}{}
		out = append(out, rec)
	}
	return out, nil
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = cleanCell(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// splitListCell splits a CSV cell holding several courses or outcomes.
func splitListCell(cell string) []string {
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ';' || r == '|' || r == '\n'
	})
	return cleanList(parts)
}

func decodeDelimitedCatalog(r io.Reader, comma rune, opts CatalogParseOptions) ([]ProgramRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty catalog file")
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	cols, err := resolveCatalogColumns(header, opts)
	if err != nil {
		return nil, err
	}
	records := make([]ProgramRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := ProgramRecord{
			Name:               cellAt(row, cols.Name),
			CoreObjective:      cellAt(row, cols.Objective),
			KeyStrength:        cellAt(row, cols.Strength),
			SpecializedCourses: splitListCell(cellAt(row, cols.Courses)),
			CareerOutcomes:     splitListCell(cellAt(row, cols.Outcomes)),
		}
		if rec.Name == "" && len(rec.SpecializedCourses) == 0 && len(rec.CareerOutcomes) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return cleanCatalog(records)
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}
