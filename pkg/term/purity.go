package term

// Signature is the ordered list of base variable names making up a
// transition system's state vector X (spec.md §3 "Transition
// system").
type Signature []string

func (sig Signature) contains(base string) bool {
	for _, b := range sig {
		if b == base {
			return true
		}
	}

	return false
}

// IsPureState reports whether fla is a pure state formula over X: every
// versioned free variable has time index 0 and a base name in X
// (spec.md §4.4).
func (s *Store) IsPureState(fla Term, x Signature) bool {
	for _, v := range s.FreeVars(fla) {
		if !IsVersioned(v) {
			continue
		}

		if v.Time != 0 || !x.contains(v.Base) {
			return false
		}
	}

	return true
}

// IsPureTransition reports whether fla is a pure transition formula
// over X: every versioned free variable has time index 0 or 1 and a
// base name in X (spec.md §4.4).
func (s *Store) IsPureTransition(fla Term, x Signature) bool {
	for _, v := range s.FreeVars(fla) {
		if !IsVersioned(v) {
			continue
		}

		if (v.Time != 0 && v.Time != 1) || !x.contains(v.Base) {
			return false
		}
	}

	return true
}
