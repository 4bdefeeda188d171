// Package witness holds the verdict and witness types shared by every
// transition-system solver (pkg/kind, pkg/accel, pkg/accel/single) and
// by pkg/engine, which dispatches to them. It is a deliberately
// dependency-free leaf package so the solver engines never need to
// import the dispatcher that selects between them (spec.md §6,
// Design Note "Polymorphic engines").
package witness

import "github.com/hornverify/hornverify/pkg/term"

// Answer is the three-valued verdict of spec.md §1/§6.
type Answer uint8

const (
	// Unknown is returned when the engine could not decide within its
	// resource bounds (timeout, maxK, or an unsupported fragment).
	Unknown Answer = iota
	// Safe means the bad states are provably unreachable from init.
	Safe
	// Unsafe means a concrete path from init to a bad state exists.
	Unsafe
)

func (a Answer) String() string {
	switch a {
	case Safe:
		return "SAFE"
	case Unsafe:
		return "UNSAFE"
	default:
		return "UNKNOWN"
	}
}

// Step is one state of a counterexample path, as a full model
// evaluation of the state vector at that step.
type Step struct {
	Values map[term.VarKey]int64
}

// InvalidityWitness is the path description for an Unsafe verdict:
// its length and a per-step model (spec.md §6).
type InvalidityWitness struct {
	Length int
	Steps  []Step
}

// ValidityWitness is a 1-inductive invariant per vertex, for a Safe
// verdict (spec.md §6). For a single transition-system solve the map
// has exactly one entry, keyed by the loop predicate's name; pkg/engine
// merges per-component results (and rewriter-eliminated vertices, via
// pkg/rewrite.WitnessTranslator) into the full-graph map.
type ValidityWitness struct {
	Invariant map[string]term.Term
}

// Result is the outcome of a single transition-system solve.
type Result struct {
	Answer  Answer
	Valid   *ValidityWitness
	Invalid *InvalidityWitness
}
