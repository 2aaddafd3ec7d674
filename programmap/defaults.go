package programmap

import (
	_ "embed"
	"fmt"
)

//go:embed programs.json
var defaultCatalogJSON []byte

// DefaultCatalog returns the built-in sample catalog.
func DefaultCatalog() ([]ProgramRecord, error) {
	records, err := DecodeJSONCatalog(defaultCatalogJSON)
	if err != nil {
		return nil, fmt.Errorf("default catalog: %w", err)
	}
	return records, nil
}
