// Package sequence manages the persistent per company counters behind
// consecutive number allocation, plus the fixed per company security
// code used in document keys.
package sequence

import (
	"context"
	"fmt"
)

// Environment selects the Hacienda environment a counter belongs to.
// Switching a company between environments resets its counters.
type Environment string

// Supported environments.
const (
	EnvironmentTest       Environment = "test"
	EnvironmentProduction Environment = "production"
)

// Valid reports whether the environment is one of the supported values.
func (e Environment) Valid() bool {
	return e == EnvironmentTest || e == EnvironmentProduction
}

// Scope identifies a single counter. Two documents share a counter only
// when all four fields match.
type Scope struct {
	CompanyID    string
	DocumentType string
	Terminal     string
	Branch       string
}

// String renders the scope for error messages and log fields.
func (s Scope) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", s.CompanyID, s.DocumentType, s.Terminal, s.Branch)
}

// UnavailableError reports that the counter storage could not be
// reached or mutated. Allocation must fail loudly in this case: minting
// a substitute value would break the global uniqueness guarantee.
type UnavailableError struct {
	Scope Scope
	Err   error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("sequence: storage unavailable for scope %s: %v", e.Scope, e.Err)
}

// Unwrap exposes the underlying storage error.
func (e *UnavailableError) Unwrap() error { return e.Err }

// Store persists monotonic counters and company security codes.
//
// AllocateNext must never return the same value twice for one scope,
// even under concurrent invocation. A value returned by AllocateNext is
// consumed: there is no rollback path, gaps are tolerable but
// duplicates are not.
type Store interface {
	// AllocateNext atomically increments the counter for the scope
	// and returns the new value. The first allocation for a scope
	// returns 1.
	AllocateNext(ctx context.Context, scope Scope) (int64, error)

	// ResetForEnvironment zeroes every counter belonging to the
	// company when the stored environment differs from env. It is a
	// no-op when the environment is unchanged.
	ResetForEnvironment(ctx context.Context, companyID string, env Environment) error

	// SecurityCode returns the company's fixed 8 digit security
	// code, generating and persisting one on first use. Once
	// persisted the code is never regenerated.
	SecurityCode(ctx context.Context, companyID string) (string, error)
}
