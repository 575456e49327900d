// Package diagnostics renders validation error batches against the
// source text that produced them. It takes no part in compilation and
// has no side effects beyond building a string.
package diagnostics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dn2d-project/dn2d/internal/analyzer"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Render formats errs against source: a line-number gutter padded to the
// width of the largest line number, the offending source lines, a red
// error message appended to the last line of each error's span, and a
// vertical ellipsis separating one error's block from the next.
func Render(source string, errs []*analyzer.ValidationError) string {
	if len(errs) == 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	width := len(strconv.Itoa(len(lines)))

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%sValidation ERROR(s):%s\n", ansiRed, ansiReset)

	for _, e := range errs {
		for idx := e.Span.LineStart - 1; idx < e.Span.LineEnd; idx++ {
			var line string
			if idx >= 0 && idx < len(lines) {
				line = lines[idx]
			}
			fmt.Fprintf(&sb, "%*d┃ %s", width, idx+1, line)

			if idx == e.Span.LineEnd-1 {
				fmt.Fprintf(&sb, " %s%s%s\n", ansiRed, e.Message, ansiReset)
				fmt.Fprintf(&sb, "%*s┃\n", width, "⋮")
			} else {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
