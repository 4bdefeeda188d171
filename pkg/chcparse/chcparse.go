// Package chcparse is the CHC front-end: it reads a small SMT-LIB
// flavoured Horn-clause dialect (declare-var, declare-rel, rule,
// query) and materialises it directly into a graph.HyperGraph ready
// for pkg/rewrite, following the Graph Model of spec.md §2/§3.
//
// original_source carries no retrievable CHC text-format reader
// (Golem's front end parses through a third-party SMT-LIB library
// never pulled into this retrieval pack), so this dialect is designed
// from the general declare-rel/rule/query convention rather than
// ported line-for-line from a source file. Parsing itself builds on
// pkg/sexp.ParseAll for tokenisation; this package implements its own
// small recursive-descent expression translator on top of it, which
// reports an undeclared relation as a plain parse error rather than
// panicking. An undeclared variable symbol is not an error: it is
// read as an auxiliary variable local to its rule.
package chcparse

import (
	"fmt"
	"strconv"

	"github.com/hornverify/hornverify/pkg/graph"
	"github.com/hornverify/hornverify/pkg/sexp"
	"github.com/hornverify/hornverify/pkg/term"
	"github.com/hornverify/hornverify/pkg/util/collection/set"
)

// annotateSyntaxError turns a bare sexp.SyntaxError into a CHC-flavoured
// "line N: msg\n  <offending line>" error, using sexp.FindFirstEnclosingLine
// to recover the line the parser's byte offset falls in. Any other error
// (there are none today, but sexp.ParseAll's signature doesn't guarantee it)
// is passed through wrapped only with the package prefix.
func annotateSyntaxError(src string, err error) error {
	synErr, ok := err.(*sexp.SyntaxError)
	if !ok {
		return fmt.Errorf("chcparse: %w", err)
	}

	line := sexp.FindFirstEnclosingLine([]rune(src), synErr.Span())

	return fmt.Errorf("chcparse: line %d: %s\n  %s", line.Number(), synErr.Message(), line.String())
}

// relInfo is what the parser remembers about a declared relation: its
// vertex and its argument sorts, in declaration order.
type relInfo struct {
	id    graph.VertexID
	sorts []term.Sort
}

type parser struct {
	store *term.Store
	g     *graph.HyperGraph

	rels     map[string]relInfo
	varSorts map[string]term.Sort

	ruleIndex int
}

// Parse reads src as a sequence of top-level CHC forms and returns the
// hypergraph they describe. Every predicate symbol referenced in a
// rule must have a preceding declare-rel; every rule's implicitly
// quantified variables need no prior declaration (their sort is
// inferred from where they are used), but declare-var may be used to
// pin a sort for a name that otherwise only ever appears in positions
// whose sort can't be inferred.
func Parse(src string) (*graph.HyperGraph, error) {
	forms, err := sexp.ParseAll(src)
	if err != nil {
		return nil, annotateSyntaxError(src, err)
	}

	store := term.NewStore()
	p := &parser{
		store:    store,
		g:        graph.NewHyperGraph(store),
		rels:     make(map[string]relInfo),
		varSorts: make(map[string]term.Sort),
	}

	for _, f := range forms {
		if err := p.topLevel(f); err != nil {
			return nil, err
		}
	}

	return p.g, nil
}

func (p *parser) topLevel(f sexp.SExp) error {
	list, ok := f.(*sexp.List)
	if !ok || list.Len() == 0 {
		return fmt.Errorf("chcparse: expected a top-level form, got %q", f.String())
	}

	head, ok := list.Elements[0].(*sexp.Symbol)
	if !ok {
		return fmt.Errorf("chcparse: malformed top-level form %q", f.String())
	}

	switch head.Value {
	case "declare-var":
		return p.declareVar(list)
	case "declare-rel":
		return p.declareRel(list)
	case "rule":
		return p.rule(list)
	case "query":
		return p.query(list)
	default:
		return fmt.Errorf("chcparse: unknown top-level form %q", head.Value)
	}
}

func (p *parser) declareVar(list *sexp.List) error {
	if list.Len() != 3 {
		return fmt.Errorf("chcparse: declare-var expects (declare-var name sort), got %q", list.String())
	}

	name, ok := list.Elements[1].(*sexp.Symbol)
	if !ok {
		return fmt.Errorf("chcparse: declare-var name must be a symbol, got %q", list.Elements[1].String())
	}

	sortSym, ok := list.Elements[2].(*sexp.Symbol)
	if !ok {
		return fmt.Errorf("chcparse: declare-var sort must be a symbol, got %q", list.Elements[2].String())
	}

	sort, err := parseSort(sortSym.Value)
	if err != nil {
		return err
	}

	p.varSorts[name.Value] = sort

	return nil
}

func (p *parser) declareRel(list *sexp.List) error {
	if list.Len() != 3 {
		return fmt.Errorf("chcparse: declare-rel expects (declare-rel name (sort...)), got %q", list.String())
	}

	name, ok := list.Elements[1].(*sexp.Symbol)
	if !ok {
		return fmt.Errorf("chcparse: declare-rel name must be a symbol, got %q", list.Elements[1].String())
	}

	if _, exists := p.rels[name.Value]; exists {
		return fmt.Errorf("chcparse: relation %q declared more than once", name.Value)
	}

	sortsList, ok := list.Elements[2].(*sexp.List)
	if !ok {
		return fmt.Errorf("chcparse: declare-rel arity must be a list of sorts, got %q", list.Elements[2].String())
	}

	sorts := make([]term.Sort, sortsList.Len())
	args := make([]graph.Arg, sortsList.Len())

	for i, e := range sortsList.Elements {
		sym, ok := e.(*sexp.Symbol)
		if !ok {
			return fmt.Errorf("chcparse: declare-rel sort must be a symbol, got %q", e.String())
		}

		sort, err := parseSort(sym.Value)
		if err != nil {
			return err
		}

		sorts[i] = sort
		args[i] = graph.Arg{Name: fmt.Sprintf("%s!%d", name.Value, i), Sort: sort}
	}

	id := p.g.AddVertex(name.Value, args)
	p.rels[name.Value] = relInfo{id: id, sorts: sorts}

	return nil
}

func parseSort(s string) (term.Sort, error) {
	switch s {
	case "Bool":
		return term.Bool, nil
	case "Int":
		return term.Int, nil
	case "Real":
		return term.Real, nil
	default:
		return 0, fmt.Errorf("chcparse: unknown sort %q", s)
	}
}

// query is sugar for (rule (=> body false)).
func (p *parser) query(list *sexp.List) error {
	if list.Len() != 2 {
		return fmt.Errorf("chcparse: query expects (query body), got %q", list.String())
	}

	return p.addRule(list.Elements[1], &sexp.Symbol{Value: "false"})
}

// rule accepts either (rule (=> body head)) or the bare-fact shorthand
// (rule head), which is equivalent to (rule (=> true head)).
func (p *parser) rule(list *sexp.List) error {
	if list.Len() != 2 {
		return fmt.Errorf("chcparse: rule expects exactly one operand, got %q", list.String())
	}

	inner := list.Elements[1]

	if impl, ok := inner.(*sexp.List); ok && impl.MatchSymbols(1, "=>") {
		if impl.Len() != 3 {
			return fmt.Errorf("chcparse: => expects (=> body head), got %q", impl.String())
		}

		return p.addRule(impl.Elements[1], impl.Elements[2])
	}

	return p.addRule(&sexp.Symbol{Value: "true"}, inner)
}

// atomOccurrence is one predicate atom found as a conjunct of a rule's
// body, pending translation once every atom in the body has been
// located (so that a later atom's argument can still bind a name an
// earlier constraint already referenced).
type atomOccurrence struct {
	vertex graph.VertexID
	sorts  []term.Sort
	args   []sexp.SExp
}

// addRule lowers one CHC rule into a single hyperedge: one source per
// distinct predicate atom in the body (graph.HyperGraph's From), the
// head's predicate (or hg.Exit() for a denial clause) as To, and the
// conjunction of every argument-binding equality plus every background
// constraint as Label.
func (p *parser) addRule(bodyExp, headExp sexp.SExp) error {
	p.ruleIndex++
	env := make(map[string]term.Term)

	var (
		from        []graph.VertexID
		atoms       []atomOccurrence
		constraints []sexp.SExp
		seen        = set.NewSortedSet[graph.VertexID]()
	)

	for _, c := range collectConjuncts(bodyExp) {
		if vertex, sorts, args, ok := p.matchAtom(c); ok {
			if seen.Contains(vertex) {
				return fmt.Errorf("chcparse: relation %q occurs more than once in one rule's body, which this parser does not support", p.g.Vertex(vertex).Name)
			}

			seen.Insert(vertex)
			from = append(from, vertex)
			atoms = append(atoms, atomOccurrence{vertex: vertex, sorts: sorts, args: args})

			continue
		}

		constraints = append(constraints, c)
	}

	if len(from) == 0 {
		from = []graph.VertexID{p.g.Entry()}
	}

	var extra []term.Term

	for _, a := range atoms {
		eqs, err := p.bindAtomArgs(env, p.g.StateVars(a.vertex), a.sorts, a.args)
		if err != nil {
			return err
		}

		extra = append(extra, eqs...)
	}

	for _, c := range constraints {
		t, err := p.translateFormula(c, env)
		if err != nil {
			return err
		}

		extra = append(extra, t)
	}

	to, headEqs, err := p.bindHead(env, headExp)
	if err != nil {
		return err
	}

	extra = append(extra, headEqs...)

	p.g.AddEdge(from, to, p.store.And(extra...))

	return nil
}

func (p *parser) bindHead(env map[string]term.Term, headExp sexp.SExp) (graph.VertexID, []term.Term, error) {
	if sym, ok := headExp.(*sexp.Symbol); ok {
		if sym.Value == "false" {
			return p.g.Exit(), nil, nil
		}

		rel, ok := p.rels[sym.Value]
		if !ok {
			return 0, nil, fmt.Errorf("chcparse: undeclared relation %q in rule head", sym.Value)
		}

		return rel.id, nil, nil
	}

	list, ok := headExp.(*sexp.List)
	if !ok || list.Len() == 0 {
		return 0, nil, fmt.Errorf("chcparse: malformed rule head %q", headExp.String())
	}

	name, ok := list.Elements[0].(*sexp.Symbol)
	if !ok {
		return 0, nil, fmt.Errorf("chcparse: malformed rule head %q", headExp.String())
	}

	rel, ok := p.rels[name.Value]
	if !ok {
		return 0, nil, fmt.Errorf("chcparse: undeclared relation %q in rule head", name.Value)
	}

	eqs, err := p.bindAtomArgs(env, p.g.NextVars(rel.id), rel.sorts, list.Elements[1:])
	if err != nil {
		return 0, nil, err
	}

	return rel.id, eqs, nil
}

// matchAtom reports whether c is an occurrence of a declared relation,
// either as a nullary symbol or as an application.
func (p *parser) matchAtom(c sexp.SExp) (graph.VertexID, []term.Sort, []sexp.SExp, bool) {
	switch v := c.(type) {
	case *sexp.Symbol:
		if rel, ok := p.rels[v.Value]; ok {
			return rel.id, rel.sorts, nil, true
		}
	case *sexp.List:
		if v.Len() == 0 {
			return 0, nil, nil, false
		}

		sym, ok := v.Elements[0].(*sexp.Symbol)
		if !ok {
			return 0, nil, nil, false
		}

		if rel, ok := p.rels[sym.Value]; ok {
			return rel.id, rel.sorts, v.Elements[1:], true
		}
	}

	return 0, nil, nil, false
}

// collectConjuncts flattens nested (and ...) forms into a flat list of
// conjuncts, dropping a bare "true".
func collectConjuncts(e sexp.SExp) []sexp.SExp {
	if list, ok := e.(*sexp.List); ok && list.MatchSymbols(1, "and") {
		var out []sexp.SExp

		for _, sub := range list.Elements[1:] {
			out = append(out, collectConjuncts(sub)...)
		}

		return out
	}

	if sym, ok := e.(*sexp.Symbol); ok && sym.Value == "true" {
		return nil
	}

	return []sexp.SExp{e}
}

// bindAtomArgs binds each of a predicate occurrence's argument
// expressions against its canonical (state or next-state) variable:
// a bare, not-yet-seen variable name is aliased directly onto the
// canonical variable so no redundant equality is emitted; anything
// else (a literal, a compound expression, or a variable already bound
// to something else) is related to the canonical variable by an
// explicit equality.
func (p *parser) bindAtomArgs(env map[string]term.Term, canonical []term.VarKey, sorts []term.Sort, argExprs []sexp.SExp) ([]term.Term, error) {
	if len(argExprs) != len(canonical) {
		return nil, fmt.Errorf("chcparse: relation applied to %d argument(s), expected %d", len(argExprs), len(canonical))
	}

	var extra []term.Term

	for i, e := range argExprs {
		canon := p.store.Var(canonical[i], sorts[i])

		if sym, ok := e.(*sexp.Symbol); ok && !isReservedOrLiteral(sym.Value) {
			if existing, bound := env[sym.Value]; bound {
				extra = append(extra, p.store.Eq(canon, existing))
			} else {
				env[sym.Value] = canon
			}

			continue
		}

		t, err := p.translateTerm(e, env, sorts[i])
		if err != nil {
			return nil, err
		}

		extra = append(extra, p.store.Eq(canon, t))
	}

	return extra, nil
}

func isReservedOrLiteral(s string) bool {
	if s == "true" || s == "false" {
		return true
	}

	_, err := strconv.ParseInt(s, 10, 64)

	return err == nil
}

// translateFormula translates e as a boolean-sorted expression.
func (p *parser) translateFormula(e sexp.SExp, env map[string]term.Term) (term.Term, error) {
	return p.translateTerm(e, env, term.Bool)
}

// translateTerm translates e into a term, creating and memoising a
// fresh local (existentially free) variable the first time an
// undeclared, unbound symbol is encountered. sort is used only as a
// fallback for that case, when declare-var gave no better answer.
func (p *parser) translateTerm(e sexp.SExp, env map[string]term.Term, sort term.Sort) (term.Term, error) {
	switch v := e.(type) {
	case *sexp.Symbol:
		return p.translateSymbol(v.Value, env, sort)
	case *sexp.List:
		return p.translateApp(v, env)
	default:
		return term.Term{}, fmt.Errorf("chcparse: malformed term %q", e.String())
	}
}

func (p *parser) translateSymbol(name string, env map[string]term.Term, sort term.Sort) (term.Term, error) {
	if n, err := strconv.ParseInt(name, 10, 64); err == nil {
		return p.store.IntLit(n), nil
	}

	switch name {
	case "true":
		return p.store.True(), nil
	case "false":
		return p.store.False(), nil
	}

	if t, ok := env[name]; ok {
		return t, nil
	}

	s := sort
	if declared, ok := p.varSorts[name]; ok {
		s = declared
	}

	t := p.store.AuxVar(fmt.Sprintf("%s!r%d", name, p.ruleIndex), s)
	env[name] = t

	return t, nil
}

func (p *parser) translateApp(list *sexp.List, env map[string]term.Term) (term.Term, error) {
	if list.Len() == 0 {
		return term.Term{}, fmt.Errorf("chcparse: empty application")
	}

	head, ok := list.Elements[0].(*sexp.Symbol)
	if !ok {
		return term.Term{}, fmt.Errorf("chcparse: malformed application %q", list.String())
	}

	args := list.Elements[1:]

	switch head.Value {
	case "and":
		return p.translateNAry(args, env, p.store.And)
	case "or":
		return p.translateNAry(args, env, p.store.Or)
	case "not":
		if len(args) != 1 {
			return term.Term{}, fmt.Errorf("chcparse: not expects exactly one operand, got %q", list.String())
		}

		t, err := p.translateFormula(args[0], env)
		if err != nil {
			return term.Term{}, err
		}

		return p.store.Not(t), nil
	case "=>":
		if len(args) != 2 {
			return term.Term{}, fmt.Errorf("chcparse: => expects exactly two operands, got %q", list.String())
		}

		a, err := p.translateFormula(args[0], env)
		if err != nil {
			return term.Term{}, err
		}

		b, err := p.translateFormula(args[1], env)
		if err != nil {
			return term.Term{}, err
		}

		return p.store.Or(p.store.Not(a), b), nil
	case "=":
		return p.translateBinary(args, env, p.store.Eq)
	case "<":
		return p.translateBinary(args, env, p.store.Lt)
	case "<=":
		return p.translateBinary(args, env, p.store.Le)
	case ">":
		return p.translateBinary(args, env, p.store.Gt)
	case ">=":
		return p.translateBinary(args, env, p.store.Ge)
	case "+":
		ts, err := p.translateEach(args, env)
		if err != nil {
			return term.Term{}, err
		}

		return p.store.Add(ts...), nil
	case "-":
		return p.translateMinus(args, env)
	case "*":
		return p.translateMul(args, env)
	default:
		if _, declared := p.rels[head.Value]; declared {
			return term.Term{}, fmt.Errorf("chcparse: relation %q may only appear as a top-level conjunct of a rule's body; it must not be nested under a connective", head.Value)
		}

		return term.Term{}, fmt.Errorf("chcparse: unknown operator %q", head.Value)
	}
}

func (p *parser) translateNAry(args []sexp.SExp, env map[string]term.Term, combine func(...term.Term) term.Term) (term.Term, error) {
	ts, err := p.translateEachFormula(args, env)
	if err != nil {
		return term.Term{}, err
	}

	return combine(ts...), nil
}

func (p *parser) translateEachFormula(args []sexp.SExp, env map[string]term.Term) ([]term.Term, error) {
	ts := make([]term.Term, len(args))

	for i, a := range args {
		t, err := p.translateFormula(a, env)
		if err != nil {
			return nil, err
		}

		ts[i] = t
	}

	return ts, nil
}

func (p *parser) translateEach(args []sexp.SExp, env map[string]term.Term) ([]term.Term, error) {
	ts := make([]term.Term, len(args))

	for i, a := range args {
		t, err := p.translateTerm(a, env, term.Int)
		if err != nil {
			return nil, err
		}

		ts[i] = t
	}

	return ts, nil
}

func (p *parser) translateBinary(args []sexp.SExp, env map[string]term.Term, op func(a, b term.Term) term.Term) (term.Term, error) {
	if len(args) != 2 {
		return term.Term{}, fmt.Errorf("chcparse: expected exactly two operands, got %d", len(args))
	}

	a, err := p.translateTerm(args[0], env, term.Int)
	if err != nil {
		return term.Term{}, err
	}

	b, err := p.translateTerm(args[1], env, term.Int)
	if err != nil {
		return term.Term{}, err
	}

	return op(a, b), nil
}

func (p *parser) translateMinus(args []sexp.SExp, env map[string]term.Term) (term.Term, error) {
	switch len(args) {
	case 1:
		t, err := p.translateTerm(args[0], env, term.Int)
		if err != nil {
			return term.Term{}, err
		}

		return p.store.Neg(t), nil
	case 2:
		a, err := p.translateTerm(args[0], env, term.Int)
		if err != nil {
			return term.Term{}, err
		}

		b, err := p.translateTerm(args[1], env, term.Int)
		if err != nil {
			return term.Term{}, err
		}

		return p.store.Sub(a, b), nil
	default:
		return term.Term{}, fmt.Errorf("chcparse: - expects one or two operands, got %d", len(args))
	}
}

// translateMul supports only linear-arithmetic multiplication: exactly
// one side must be an integer literal.
func (p *parser) translateMul(args []sexp.SExp, env map[string]term.Term) (term.Term, error) {
	if len(args) != 2 {
		return term.Term{}, fmt.Errorf("chcparse: * expects exactly two operands, got %d", len(args))
	}

	if lit, ok := intLiteral(args[0]); ok {
		t, err := p.translateTerm(args[1], env, term.Int)
		if err != nil {
			return term.Term{}, err
		}

		return p.store.Mul(lit, t), nil
	}

	if lit, ok := intLiteral(args[1]); ok {
		t, err := p.translateTerm(args[0], env, term.Int)
		if err != nil {
			return term.Term{}, err
		}

		return p.store.Mul(lit, t), nil
	}

	return term.Term{}, fmt.Errorf("chcparse: * requires one integer-literal operand (only linear arithmetic is supported)")
}

func intLiteral(e sexp.SExp) (int64, bool) {
	sym, ok := e.(*sexp.Symbol)
	if !ok {
		return 0, false
	}

	n, err := strconv.ParseInt(sym.Value, 10, 64)

	return n, err == nil
}
