// Package feasibility implements the constraint kernel shared by every
// single-day solver: route validation with arrival/departure scheduling,
// marginal insertion cost, and a fast preflight check. It is a pure
// library — no solver in this module mutates shared state through it.
package feasibility
