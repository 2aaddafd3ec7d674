package programmap

import "errors"

var (
	// ErrInvalidArgument reports input the clustering pipeline cannot work with:
	// no vectors, ragged vectors or a non-positive cluster count.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidCatalog reports a catalog file whose records are unusable.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrSuperseded reports a recluster whose result was dropped because the
	// catalog, the configuration or a later recluster replaced its inputs.
	ErrSuperseded = errors.New("result superseded")
)
