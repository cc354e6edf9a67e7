// Package entity holds the CVRPTW+ data model: customers, vehicles, time
// windows, blackout intervals, routes, and solutions. Types here are
// immutable for the duration of a solve (spec.md §3) — solvers take
// read-only views of customers/vehicles/matrices and own the routes and
// solutions they produce.
package entity
