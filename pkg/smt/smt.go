// Package smt declares the two seams spec.md §6 calls the "External
// Interfaces": a raw incremental solver context (push/pop/assert/check
// with model and interpolant extraction) and, in pkg/smt's
// sub-packages, concrete backends implementing it (pkg/smt/mock for
// tests, pkg/smt/z3 for real verification runs).
package smt

import (
	"context"

	"github.com/hornverify/hornverify/pkg/term"
)

// Status is the three-valued result of a solver check (spec.md §6).
type Status uint8

const (
	// Unknown means the solver could not decide, or was not asked to.
	Unknown Status = iota
	// Sat means the last checked conjunction is satisfiable.
	Sat
	// Unsat means the last checked conjunction is unsatisfiable.
	Unsat
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Model evaluates variables under a satisfying assignment returned by
// a Sat check.
type Model interface {
	// Eval returns the integer value assigned to v, or false if v does
	// not occur in the model's signature.
	Eval(v term.VarKey) (int64, bool)
}

// Solver is one incremental assertion-stack context, created with a
// name for diagnostics (spec.md §6: "create a context tagged with a
// name"). Implementations are not required to be safe for concurrent
// use; the engines in this module each own their contexts exclusively
// (Design Note "Solver contexts").
type Solver interface {
	// Name returns the diagnostic tag this context was created with.
	Name() string
	// Push opens a new assertion scope.
	Push()
	// Pop closes the most recently opened scope, discarding its
	// assertions.
	Pop()
	// Assert adds fla to the current scope.
	Assert(fla term.Term)
	// Check decides satisfiability of the conjunction of all asserted
	// formulas still in scope, honouring ctx cancellation by returning
	// Unknown promptly (spec.md §5).
	Check(ctx context.Context) (Status, error)
	// Model returns a model for the most recent Sat check. Calling it
	// after any other result is implementation-defined.
	Model() Model
	// Interpolant returns an interpolant for the most recent Unsat
	// check, separating the formulas asserted before the last Push
	// (the A-part) from those asserted after (the B-part), per spec.md
	// §6's "demarcated at assertion time".
	Interpolant() (term.Term, error)
}

// Factory creates a fresh, empty Solver context tagged with name. Each
// engine package receives one so it never imports a concrete backend
// directly (the term/SMT "out of scope" boundary, spec.md §1).
type Factory func(name string) Solver
