package entity

import (
	"fmt"
	"time"

	"github.com/routeplan/cvrptw/cvrptwerr"
)

// Vehicle is a fleet member, ported field-for-field from
// vrp_solver/models/vehicle.py's Vehicle dataclass.
type Vehicle struct {
	ID           string
	Name         string
	CapacityM3   float64
	AllowedIDs   map[string]struct{} // empty/nil = serves all customers
	ForbiddenIDs map[string]struct{}

	MaxRouteDurationHours float64
	StartTime             time.Time // wall-clock, see ParseClock

	FixedCost  float64
	CostPerKM  float64
	Type       string
	DriverName string
}

// Defaults mirrored from spec.md §6.
const (
	DefaultMaxRouteDurationHours = 12.0
	DefaultStartTime             = "08:00"
	DefaultFixedCost             = 1000.0
	DefaultCostPerKM             = 2.0
)

// Validate checks that CapacityM3 is positive.
func (v Vehicle) Validate() error {
	if v.CapacityM3 <= 0 {
		return fmt.Errorf("%w: vehicle %s has non-positive capacity %.2f", cvrptwerr.ErrInputInvalid, v.ID, v.CapacityM3)
	}
	return nil
}

// CanServe reports whether this vehicle may serve customerID, per spec.md
// §3: forbidden customers are never serviceable; if AllowedIDs is
// non-empty, only its members are serviceable.
func (v Vehicle) CanServe(customerID string) bool {
	if _, forbidden := v.ForbiddenIDs[customerID]; forbidden {
		return false
	}
	if len(v.AllowedIDs) > 0 {
		_, ok := v.AllowedIDs[customerID]
		return ok
	}
	return true
}

// CanFitDemand reports whether adding demand to currentLoad stays within
// capacity.
func (v Vehicle) CanFitDemand(currentLoad, demand float64) bool {
	return currentLoad+demand <= v.CapacityM3
}

// RemainingCapacity returns the unused capacity given currentLoad.
func (v Vehicle) RemainingCapacity(currentLoad float64) float64 {
	remaining := v.CapacityM3 - currentLoad
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MaxRouteDurationMinutes is a convenience accessor for the duration cap in
// minutes (spec.md §4.1 rule 6).
func (v Vehicle) MaxRouteDurationMinutes() float64 {
	return v.MaxRouteDurationHours * 60
}
