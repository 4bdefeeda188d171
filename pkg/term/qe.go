package term

// conjuncts flattens a (possibly nested) conjunction into its
// top-level operands; a non-conjunction formula is returned as a
// single-element slice.
func (s *Store) conjuncts(fla Term) []Term {
	if op, args, ok := s.IsApp(fla); ok && op == OpAnd {
		return args
	}

	return []Term{fla}
}

// TrivialQuantifierElimination eliminates every auxiliary variable in
// toEliminate that is bound by a top-level equality `v = t`, where t
// does not mention v, substituting it out everywhere and dropping the
// defining equality. This is exactly the pass spec.md §4.1 calls for
// after conjoining two edge labels during contraction: it never
// attempts elimination beyond trivial variable solving, per the
// Non-goals of spec.md §1.
func (s *Store) TrivialQuantifierElimination(fla Term, toEliminate []VarKey) Term {
	elim := make(map[VarKey]bool, len(toEliminate))
	for _, v := range toEliminate {
		elim[v] = true
	}

	return s.eliminate(fla, elim)
}

// TrivialQuantifierEliminationExcept eliminates every free auxiliary
// variable of fla that is *not* in keep, using the same trivial
// equality-solving pass. This is the variant used when merging a
// chain of edges (spec.md §4.1's repeated multi-edge merge / chain
// contraction), where the signature to preserve is known but the set
// of auxiliaries introduced along the chain is not enumerated ahead of
// time.
func (s *Store) TrivialQuantifierEliminationExcept(fla Term, keep []VarKey) Term {
	keepSet := make(map[VarKey]bool, len(keep))
	for _, v := range keep {
		keepSet[v] = true
	}

	elim := make(map[VarKey]bool)

	for _, v := range s.FreeVars(fla) {
		if !keepSet[v] {
			elim[v] = true
		}
	}

	return s.eliminate(fla, elim)
}

func (s *Store) eliminate(fla Term, elim map[VarKey]bool) Term {
	for {
		conjuncts := s.conjuncts(fla)

		var (
			defVar  VarKey
			defTerm Term
			found   bool
			kept    []Term
		)

		for _, c := range conjuncts {
			if found {
				kept = append(kept, c)
				continue
			}

			if v, t, ok := s.asTrivialEquality(c, elim); ok {
				defVar, defTerm, found = v, t, true
				continue
			}

			kept = append(kept, c)
		}

		if !found {
			return fla
		}

		subst := map[VarKey]Term{defVar: defTerm}

		for i, c := range kept {
			kept[i] = s.Substitute(c, subst)
		}

		fla = s.And(kept...)
		delete(elim, defVar)
	}
}

// asTrivialEquality checks whether c is `v = t` or `t = v` for some v
// in elim such that t does not mention v.
func (s *Store) asTrivialEquality(c Term, elim map[VarKey]bool) (VarKey, Term, bool) {
	op, args, ok := s.IsApp(c)
	if !ok || op != OpEq {
		return VarKey{}, Term{}, false
	}

	lhs, rhs := args[0], args[1]

	if v, ok := s.IsVar(lhs); ok && elim[v] && !s.mentions(rhs, v) {
		return v, rhs, true
	}

	if v, ok := s.IsVar(rhs); ok && elim[v] && !s.mentions(lhs, v) {
		return v, lhs, true
	}

	return VarKey{}, Term{}, false
}

func (s *Store) mentions(t Term, v VarKey) bool {
	for _, fv := range s.FreeVars(t) {
		if fv == v {
			return true
		}
	}

	return false
}
