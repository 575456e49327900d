package parser

import (
	"fmt"

	"github.com/dn2d-project/dn2d/internal/ast"
)

// Error is the single fatal error the parser returns. Per the core's
// halt-at-first-error policy there is no batching: the parser stops at
// the first malformed construct.
type Error struct {
	Message    string
	Span       ast.Span
	SourceLine string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parser error at %s: %s", e.Span, e.Message)
}
