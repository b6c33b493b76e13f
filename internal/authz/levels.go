// Package authz declares the minimum access level of every operation and
// the single comparison used to enforce it.
package authz

import (
	"fmt"

	apperrors "semapa/pkg/errors"
)

type Level int

const (
	LevelUsuario    Level = 1
	LevelTecnico    Level = 2
	LevelAdmin      Level = 3
	LevelSuperAdmin Level = 4
)

func (l Level) Valid() bool {
	return l >= LevelUsuario && l <= LevelSuperAdmin
}

func (l Level) String() string {
	switch l {
	case LevelUsuario:
		return "usuario"
	case LevelTecnico:
		return "tecnico"
	case LevelAdmin:
		return "admin"
	case LevelSuperAdmin:
		return "super_admin"
	default:
		return fmt.Sprintf("nivel(%d)", int(l))
	}
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID    uint64
	Nivel Level
}

// Rule is the access requirement of an operation. OwnerMayAct lets the
// record's creator act below MinLevel.
type Rule struct {
	MinLevel    Level
	OwnerMayAct bool
}

// Allows reports whether the actor satisfies the rule. Higher levels are more privileged.
func (r Rule) Allows(actor Actor, ownerID *uint64) bool {
	if actor.Nivel >= r.MinLevel {
		return true
	}
	return r.OwnerMayAct && ownerID != nil && *ownerID == actor.ID
}

func RuleFor(op Operation) (Rule, bool) {
	rule, ok := rules[op]
	return rule, ok
}

// Authorize fails closed: no actor is Unauthorized, an undeclared operation or
// an insufficient level is Forbidden.
func Authorize(actor *Actor, op Operation, ownerID *uint64) error {
	if actor == nil || actor.ID == 0 {
		return apperrors.NewUnauthorizedError("")
	}
	rule, ok := rules[op]
	if !ok {
		return &apperrors.ForbiddenError{Operation: string(op)}
	}
	if !rule.Allows(*actor, ownerID) {
		return &apperrors.ForbiddenError{Operation: string(op), Required: int(rule.MinLevel), Actual: int(actor.Nivel)}
	}
	return nil
}

// Precheck is the route-level gate. It cannot see the target record, so an
// operation with OwnerMayAct passes here and is decided again by the service.
func Precheck(actor *Actor, op Operation) error {
	if actor == nil || actor.ID == 0 {
		return apperrors.NewUnauthorizedError("")
	}
	rule, ok := rules[op]
	if !ok {
		return &apperrors.ForbiddenError{Operation: string(op)}
	}
	if actor.Nivel >= rule.MinLevel || rule.OwnerMayAct {
		return nil
	}
	return &apperrors.ForbiddenError{Operation: string(op), Required: int(rule.MinLevel), Actual: int(actor.Nivel)}
}
