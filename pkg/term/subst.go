package term

// Substitute applies a simultaneous substitution of variables to
// terms, rebuilding t bottom-up. Variables not present in subst are
// left unchanged.
func (s *Store) Substitute(t Term, subst map[VarKey]Term) Term {
	memo := make(map[ID]Term)
	return s.substitute(t, subst, memo)
}

func (s *Store) substitute(t Term, subst map[VarKey]Term, memo map[ID]Term) Term {
	if r, ok := memo[t.id]; ok {
		return r
	}

	var result Term

	switch {
	case s.IsTrue(t), s.IsFalse(t):
		result = t
	default:
		if v, ok := s.IsVar(t); ok {
			if repl, ok := subst[v]; ok {
				result = repl
			} else {
				result = t
			}

			break
		}

		if _, ok := s.IntConst(t); ok {
			result = t
			break
		}

		op, args, ok := s.IsApp(t)
		if !ok {
			result = t
			break
		}

		newArgs := make([]Term, len(args))
		changed := false

		for i, a := range args {
			newArgs[i] = s.substitute(a, subst, memo)
			if newArgs[i].id != a.id {
				changed = true
			}
		}

		if !changed {
			result = t
			break
		}

		result = s.rebuild(op, newArgs)
	}

	memo[t.id] = result

	return result
}

// rebuild reconstructs an application node from a possibly-changed
// argument list, routing through the simplifying builders so
// substitution does not reintroduce redundant structure.
func (s *Store) rebuild(op Op, args []Term) Term {
	switch op {
	case OpAnd:
		return s.And(args...)
	case OpOr:
		return s.Or(args...)
	case OpNot:
		return s.Not(args[0])
	case OpEq:
		return s.Eq(args[0], args[1])
	case OpLt:
		return s.Lt(args[0], args[1])
	case OpLe:
		return s.Le(args[0], args[1])
	case OpAdd:
		return s.Add(args...)
	case OpSub:
		return s.Sub(args[0], args[1])
	case OpNeg:
		return s.Neg(args[0])
	case OpMul:
		c, _ := s.IntConst(args[0])
		return s.Mul(c, args[1])
	default:
		return s.app(op, s.Sort(args[0]), args...)
	}
}

// RenameVar is a convenience wrapper over Substitute for the common
// case of replacing a single variable with another variable's term
// occurrence at the same sort.
func (s *Store) RenameVar(t Term, from, to VarKey, sort Sort) Term {
	return s.Substitute(t, map[VarKey]Term{from: s.Var(to, sort)})
}
