// Package consolidation implements the weekly consolidation planner of
// spec.md §4.5: it decides which weekday each customer is served on, then
// delegates the actual routing to a per-day single-day solver.
package consolidation
