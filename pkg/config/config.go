// Package config exposes spec.md §6's configuration options
// (verbosity, engine selection, witness computation, timeout) as a
// plain Go struct populated from cobra flags, in the style of
// Consensys-go-corset's pkg/cmd/check.go checkConfig.
package config

import "time"

// EngineKind selects which transition-system solver the driver
// dispatches to (spec.md §6 `engine` option). The set is closed, per
// spec.md §9 Design Note "Polymorphic engines": a tagged union, not
// open-ended dynamic dispatch.
type EngineKind uint8

const (
	// Kind selects the k-induction engine (pkg/kind).
	Kind EngineKind = iota
	// AccelSplit selects the split Exact/LessThan accelerated engine
	// (pkg/accel).
	AccelSplit
	// AccelSingle selects the single-hierarchy accelerated engine
	// variant (pkg/accel/single).
	AccelSingle
)

func (e EngineKind) String() string {
	switch e {
	case Kind:
		return "kind"
	case AccelSplit:
		return "accel-split"
	case AccelSingle:
		return "accel-single"
	default:
		return "unknown"
	}
}

// ParseEngineKind parses the --engine flag value.
func ParseEngineKind(s string) (EngineKind, bool) {
	switch s {
	case "kind":
		return Kind, true
	case "accel-split":
		return AccelSplit, true
	case "accel-single":
		return AccelSingle, true
	default:
		return 0, false
	}
}

// Config collects the options spec.md §6 requires the core to honour.
type Config struct {
	// Verbosity: 0 = silent, 1 = verdict trace, 2 = per-step trace.
	Verbosity int
	// Engine selects the transition-system solver variant.
	Engine EngineKind
	// ComputeWitness controls whether a full witness is constructed,
	// or only the three-valued verdict.
	ComputeWitness bool
	// Timeout is the wall-clock deadline sampled before each solver
	// check (spec.md §5 Cancellation).
	Timeout time.Duration
	// MaxK bounds the k-induction/acceleration unrolling depth; zero
	// means unbounded (subject only to Timeout).
	MaxK uint
}

// Default returns the configuration the driver uses when no flags
// override it.
func Default() Config {
	return Config{
		Verbosity:      0,
		Engine:         Kind,
		ComputeWitness: true,
		Timeout:        0,
		MaxK:           0,
	}
}
