package analyzer

import (
	"fmt"

	"github.com/dn2d-project/dn2d/internal/ast"
)

// ValidationError is a single, recoverable, batched stratification
// failure: a recursive rule (its head and at least one positive body
// relation sit in the same recursive SCC) declared outside an '.iterate'
// block.
type ValidationError struct {
	Message string
	Span    ast.RuleSpan
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (lines %d-%d): %s", e.Span.LineStart, e.Span.LineEnd, e.Message)
}

// Stratum is a maximal group of mutually-recursive relations evaluated
// together, in the order they must run relative to other strata.
type Stratum struct {
	IsRecursive   bool
	RelationNames []string
	Rules         []ast.Rule
}

// OrderedProgram is the sole artifact this package exposes to the
// dataflow backend collaborator: input directives, strata in
// executable order, and output directives.
type OrderedProgram struct {
	Inputs  []ast.ReadDirective
	Strata  []Stratum
	Outputs []ast.WriteDirective
}

type ruleInfo struct {
	rule      ast.Rule
	inIterate bool
}

// collectRules walks the program in source order, pulling out every
// rule (top-level and inside iterate blocks) along with whether it was
// declared inside an '.iterate' block. Facts do not participate in the
// dependency graph.
func collectRules(program *ast.Program) []ruleInfo {
	var rules []ruleInfo
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case ast.RuleStatement:
			rules = append(rules, ruleInfo{rule: s.Rule, inIterate: false})
		case ast.IterateStatement:
			for _, rof := range s.Block.Rules {
				if r, ok := rof.(ast.Rule); ok {
					rules = append(rules, ruleInfo{rule: r, inIterate: true})
				}
			}
		}
	}
	return rules
}

func buildDependencyGraph(rules []ruleInfo) *dependencyGraph {
	g := newDependencyGraph()
	for _, ri := range rules {
		headID := g.getOrCreate(string(ri.rule.Head.Name))
		for _, lit := range ri.rule.Body {
			if pos, ok := lit.(ast.PositiveLiteral); ok {
				bodyID := g.getOrCreate(string(pos.Atom.Name))
				g.addEdge(bodyID, headID)
			}
		}
	}
	return g
}

// Analyze builds the dependency graph, validates the recursion-in-
// iterate discipline, and, if validation passes, emits the ordered,
// stratified program. A non-empty validation error batch means planning
// was aborted; callers must not use a nil OrderedProgram in that case.
func Analyze(program *ast.Program) (*OrderedProgram, []*ValidationError) {
	rules := collectRules(program)
	g := buildDependencyGraph(rules)
	sccs := g.tarjanSCCs()

	if errs := validate(g, sccs, rules); len(errs) > 0 {
		return nil, errs
	}

	return plan(program, g, sccs, rules), nil
}

func validate(g *dependencyGraph, sccs []scc, rules []ruleInfo) []*ValidationError {
	var errs []*ValidationError
	for _, c := range sccs {
		if !c.isRecursive {
			continue
		}
		inSCC := make(map[string]bool, len(c.nodes))
		for _, n := range c.nodes {
			inSCC[g.names[n]] = true
		}
		for _, ri := range rules {
			if !inSCC[string(ri.rule.Head.Name)] || ri.inIterate {
				continue
			}
			// A rule is part of the recursion only if a positive body
			// literal reaches back into its own SCC; base rules that feed
			// the SCC from outside may stay at the top level.
			recursive := false
			for _, lit := range ri.rule.Body {
				if pos, ok := lit.(ast.PositiveLiteral); ok && inSCC[string(pos.Atom.Name)] {
					recursive = true
					break
				}
			}
			if recursive {
				errs = append(errs, &ValidationError{
					Message: fmt.Sprintf(
						"The rule defining '%s' is part of a recursive definition. Should be in a '.iterate' block.",
						ri.rule.Head.Name,
					),
					Span: ri.rule.Span,
				})
			}
		}
	}
	return errs
}

func plan(program *ast.Program, g *dependencyGraph, sccs []scc, rules []ruleInfo) *OrderedProgram {
	var inputs []ast.ReadDirective
	var outputs []ast.WriteDirective
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case ast.ReadStatement:
			inputs = append(inputs, s.Directive)
		case ast.WriteStatement:
			outputs = append(outputs, s.Directive)
		}
	}

	componentOrder := topoSortComponents(g, sccs)

	var strata []Stratum
	for _, ci := range componentOrder {
		c := sccs[ci]
		relationSet := make(map[string]bool, len(c.nodes))
		var relationNames []string
		for _, nodeID := range c.nodes {
			name := g.names[nodeID]
			relationNames = append(relationNames, name)
			relationSet[name] = true
		}
		// Rules are gathered by their first appearance in the program
		// (iterate-block rules in block order, interleaved with
		// top-level rules as encountered), not grouped by relation name,
		// so mutually recursive relations interleave their rules as
		// written rather than clustering by head.
		var stratumRules []ast.Rule
		for _, ri := range rules {
			if relationSet[string(ri.rule.Head.Name)] {
				stratumRules = append(stratumRules, ri.rule)
			}
		}
		if len(stratumRules) == 0 {
			continue
		}
		strata = append(strata, Stratum{
			IsRecursive:   c.isRecursive,
			RelationNames: relationNames,
			Rules:         stratumRules,
		})
	}

	return &OrderedProgram{Inputs: inputs, Strata: strata, Outputs: outputs}
}
