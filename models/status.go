package models

import "fmt"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusOpen      OrderStatus = "open"      // created by a waiter, sent to the kitchen
	StatusPreparing OrderStatus = "preparing" // a cook took the ticket
	StatusReady     OrderStatus = "ready"     // dishes done, waiting to be delivered
	StatusClosed    OrderStatus = "closed"    // delivered and paid out
	StatusCancelled OrderStatus = "cancelled" // voided before completion
)

// Valid reports whether s is one of the defined statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusPreparing, StatusReady, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further item or status mutation.
// CANCELLED is terminal for everyone except an administrator reopening it.
func (s OrderStatus) Terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// ParseOrderStatus converts a raw string into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q", s)
	}
	return st, nil
}

// IllegalTransitionError reports a (from, to) pair that is not an edge of
// the lifecycle graph, regardless of who asked for it.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// UnauthorizedRoleError reports a legal edge requested by a role that is
// not allowed to take it. Kept distinct from IllegalTransitionError so
// clients can tell "never allowed" apart from "not allowed for you".
type UnauthorizedRoleError struct {
	Role Role
	From OrderStatus
	To   OrderStatus
}

func (e *UnauthorizedRoleError) Error() string {
	return fmt.Sprintf("role %s may not transition an order from %s to %s", e.Role, e.From, e.To)
}

type transition struct {
	From OrderStatus
	To   OrderStatus
}

// transitions is the whole lifecycle in one place: which edges exist and
// who may take them. A (from, to) pair absent from this map does not exist
// as a transition for any role.
var transitions = map[transition][]Role{
	{StatusOpen, StatusPreparing}:      {RoleCook, RoleAdministrator},
	{StatusPreparing, StatusReady}:     {RoleCook, RoleAdministrator},
	{StatusReady, StatusClosed}:        {RoleWaiter, RoleAdministrator},
	{StatusOpen, StatusCancelled}:      {RoleWaiter, RoleAdministrator},
	{StatusPreparing, StatusCancelled}: {RoleWaiter, RoleAdministrator},
	{StatusCancelled, StatusOpen}:      {RoleAdministrator},
}

// CheckTransition validates the edge (from -> to) for the given role.
// It returns *IllegalTransitionError if the edge does not exist and
// *UnauthorizedRoleError if it exists but the role is not listed for it.
func CheckTransition(from, to OrderStatus, role Role) error {
	allowed, ok := transitions[transition{From: from, To: to}]
	if !ok {
		return &IllegalTransitionError{From: from, To: to}
	}
	for _, r := range allowed {
		if r == role {
			return nil
		}
	}
	return &UnauthorizedRoleError{Role: role, From: from, To: to}
}
