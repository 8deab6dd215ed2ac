// Package guard detects domain objects and commands that bypassed their constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded into value types whose zero value is not a valid
// instance. Constructors set it with NewConstructorGuard; Validate fails on a zero guard.
//
// Example:
//
//	type StartRouteCommand struct {
//	    routeID kernel.UUID
//	    guard   guard.ConstructorGuard
//	}
//
//	func (c StartRouteCommand) Validate() error {
//	    return c.guard.Validate(ErrStartRouteCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marking its owner as properly constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the owner was not created through its constructor.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
