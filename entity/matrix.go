package entity

import (
	"fmt"

	"github.com/routeplan/cvrptw/cvrptwerr"
)

// DepotID is the first-class id reserved for the depot node. It must appear
// in every matrix passed to a solver for every customer id used.
const DepotID = "depot"

// Matrix is a symmetric-in-practice, asymmetric-capable id->id->value
// lookup used for both the distance matrix (km) and the time matrix
// (minutes). Unlike the original Python implementation (which used a bare
// dict and silently defaulted missing entries to 0), Matrix distinguishes
// "no entry" from "entry is zero" so callers can reject incomplete input
// per spec.md §9.
type Matrix struct {
	values map[string]map[string]float64
}

// NewMatrix builds a Matrix from a nested id->id->value map.
func NewMatrix(values map[string]map[string]float64) Matrix {
	if values == nil {
		values = map[string]map[string]float64{}
	}
	return Matrix{values: values}
}

// Get returns the value for (from, to) and whether it was present.
func (m Matrix) Get(from, to string) (float64, bool) {
	row, ok := m.values[from]
	if !ok {
		return 0, false
	}
	v, ok := row[to]
	return v, ok
}

// MustGet returns the value for (from, to), or an error wrapping
// cvrptwerr.ErrMissingMatrixEntry if absent. Callers that must reject
// missing entries (distance lookups, per spec.md §9) use this.
func (m Matrix) MustGet(from, to string) (float64, error) {
	v, ok := m.Get(from, to)
	if !ok {
		return 0, fmt.Errorf("%w: (%s, %s)", cvrptwerr.ErrMissingMatrixEntry, from, to)
	}
	return v, nil
}

// Has reports whether (from, to) has an entry.
func (m Matrix) Has(from, to string) bool {
	_, ok := m.Get(from, to)
	return ok
}
