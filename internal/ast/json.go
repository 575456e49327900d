package ast

import "encoding/json"

// MarshalJSON re-materializes the sum types using a "kind" discriminator
// field, so downstream tooling consuming `--ast-as-json` output can
// dispatch on a single field.

type taggedJSON struct {
	Kind string `json:"kind"`
	Data any    `json:"data,omitempty"`
}

func (p Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Statements []Statement `json:"statements"`
	}{p.Statements})
}

func (s ReadStatement) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "read", Data: s.Directive})
}
func (s WriteStatement) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "write", Data: s.Directive})
}
func (s IterateStatement) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "iterate", Data: s.Block})
}
func (s RuleStatement) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "rule", Data: s.Rule})
}
func (s FactStatement) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "fact", Data: s.Fact})
}

func (l PositiveLiteral) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "positive", Data: l.Atom})
}
func (l NegativeLiteral) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "negative", Data: l.Atom})
}
func (l ConditionLiteral) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "condition", Data: l.Expr})
}

func (e ConstantExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "constant", Data: e.Value})
}
func (e VariableExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "variable", Data: e.Name})
}
func (e WildcardExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "wildcard"})
}
func (e AggregateExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "aggregate", Data: e.Aggregate})
}
func (e BinaryExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "binary", Data: struct {
		Left  Expression     `json:"left"`
		Op    BinaryOperator `json:"op"`
		Right Expression     `json:"right"`
	}{e.Left, e.Op, e.Right}})
}
func (e UnaryExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "unary", Data: struct {
		Op   UnaryOperator `json:"op"`
		Expr Expression    `json:"expr"`
	}{e.Op, e.Expr}})
}
func (e ParenExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "paren", Data: e.Expr})
}

func (op BinaryOperator) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}
func (op UnaryOperator) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}
func (f AggregateFunction) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (c IntegerConstant) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "integer", Data: c.Value})
}
func (c FloatConstant) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "float", Data: c.Value})
}
func (c StringConstant) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "string", Data: c.Value})
}
func (c BooleanConstant) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedJSON{Kind: "boolean", Data: c.Value})
}
