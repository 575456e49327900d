package ast

import (
	"fmt"
	"strings"
)

func (a Atom) String() string {
	terms := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		terms[i] = fmt.Sprint(t)
	}
	return fmt.Sprintf("%s(%s)", a.Name, strings.Join(terms, ", "))
}

func (l PositiveLiteral) String() string  { return l.Atom.String() }
func (l NegativeLiteral) String() string  { return "not " + l.Atom.String() }
func (l ConditionLiteral) String() string { return fmt.Sprint(l.Expr) }

func (e ConstantExpr) String() string { return fmt.Sprint(e.Value) }
func (e VariableExpr) String() string { return string(e.Name) }
func (e WildcardExpr) String() string { return "_" }
func (e AggregateExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Aggregate.Func, e.Aggregate.Arg)
}
func (e BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
}
func (e UnaryExpr) String() string { return fmt.Sprintf("%s%s", e.Op, e.Expr) }
func (e ParenExpr) String() string { return fmt.Sprintf("(%s)", e.Expr) }

func (c IntegerConstant) String() string { return fmt.Sprintf("%d", c.Value) }
func (c FloatConstant) String() string   { return fmt.Sprintf("%g", c.Value) }
func (c StringConstant) String() string  { return fmt.Sprintf("%q", c.Value) }
func (c BooleanConstant) String() string { return fmt.Sprintf("%t", c.Value) }

func (r Rule) String() string {
	body := make([]string, len(r.Body))
	for i, l := range r.Body {
		body[i] = fmt.Sprint(l)
	}
	return fmt.Sprintf("%s :- %s.", r.Head, strings.Join(body, ", "))
}

func (f Fact) String() string { return f.Head.String() + "." }
