// Package cvrptwerr defines the sentinel errors shared across the CVRPTW+
// packages.
//
// Error policy:
//   - Only sentinel variables are exported. Callers branch with errors.Is.
//   - Sentinels are never formatted with parameters at definition site;
//     call sites attach context with fmt.Errorf("%w: ...", Err...).
//   - Per spec.md §7, only InputError is ever surfaced as a Go error value.
//     InfeasibleRoute, NoCompatibleVehicle, and NoSolutionFound are folded
//     into the returned Solution (is_feasible, unserved_stores,
//     constraint_violations) and are documented here, not returned.
package cvrptwerr

import "errors"

var (
	// ErrInputInvalid is wrapped around malformed entity input: a time
	// window with earliest > latest, an unparsable clock string, negative
	// demand, non-positive vehicle capacity, or an unknown weekday tag in a
	// customer's day sets. A missing matrix entry is reported with
	// ErrMissingMatrixEntry instead.
	ErrInputInvalid = errors.New("cvrptw: invalid input")

	// ErrMissingMatrixEntry indicates a distance (or, where no fallback is
	// documented, time) lookup between two stops used in a route has no
	// entry in the supplied matrix. Per spec.md §9 this must be rejected,
	// not silently defaulted to zero.
	ErrMissingMatrixEntry = errors.New("cvrptw: missing matrix entry")

	// ErrUnknownWeekday indicates a day tag outside the closed-world
	// {Mon, Tue, Wed, Thu, Fri} set.
	ErrUnknownWeekday = errors.New("cvrptw: unknown weekday")

	// ErrNoVehicles indicates a solve was requested with an empty fleet.
	ErrNoVehicles = errors.New("cvrptw: no vehicles supplied")
)
