// Package diag renders CompileError and RuntimeError diagnostics with
// a boxed source snippet and caret, adapted from the teacher's
// pkg/errors (CompileError/RuntimeError, ANSI color constants,
// FormatError, ExtractSourceSnippet) and narrowed to the error shapes
// this toolchain renders through it: a type-checker CheckError, plus a
// runtime error.
package diag

import (
	"fmt"
	"strings"

	"tetra/internal/typecheck"
)

// ANSI color codes, carried verbatim from the teacher's convention so
// that --no-color can simply skip applying them.
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"
	Bold   = "\033[1m"
)

// CompileError is a positioned diagnostic produced while parsing or
// type-checking a source file.
type CompileError struct {
	Message       string
	Line, Column  int
	SourceSnippet string
	ErrorType     string // "Parse Error" or "Type Error"
}

// FromCheckError wraps a typecheck.CheckError with its source position
// and a snippet pulled from the original source text.
func FromCheckError(e *typecheck.CheckError, source string) *CompileError {
	return &CompileError{
		Message:       e.Error(),
		Line:          e.Line,
		Column:        e.Col,
		SourceSnippet: ExtractSnippet(source, e.Line),
		ErrorType:     "Type Error",
	}
}

func (e *CompileError) Error() string { return e.FormatError(true) }

// FormatError renders the boxed snippet-plus-caret diagnostic, with
// useColors controlling whether ANSI escapes are emitted.
func (e *CompileError) FormatError(useColors bool) string {
	var b strings.Builder
	errType := e.ErrorType
	if errType == "" {
		errType = "Compile Error"
	}
	if useColors {
		b.WriteString(fmt.Sprintf("%s%s%s", Bold+Red, errType, Reset))
	} else {
		b.WriteString(errType)
	}
	b.WriteString(fmt.Sprintf(" at line %d, column %d\n", e.Line, e.Column))

	if e.SourceSnippet != "" {
		lines := strings.Split(e.SourceSnippet, "\n")
		b.WriteString("\n")
		errIdx := 0
		if len(lines) > 1 {
			errIdx = 1
			if useColors {
				b.WriteString(fmt.Sprintf("  %s%4d |%s %s\n", Gray, e.Line-1, Reset, lines[0]))
			} else {
				b.WriteString(fmt.Sprintf("  %4d | %s\n", e.Line-1, lines[0]))
			}
		}
		if errIdx < len(lines) {
			if useColors {
				b.WriteString(fmt.Sprintf("  %s%4d |%s %s\n", Cyan, e.Line, Reset, lines[errIdx]))
			} else {
				b.WriteString(fmt.Sprintf("  %4d | %s\n", e.Line, lines[errIdx]))
			}
			if e.Column > 0 {
				spaces := strings.Repeat(" ", e.Column-1)
				if useColors {
					b.WriteString(fmt.Sprintf("       %s|%s %s%s^ error here%s\n", Gray, Reset, Red, spaces, Reset))
				} else {
					b.WriteString(fmt.Sprintf("       | %s^ error here\n", spaces))
				}
			}
		}
		if errIdx+1 < len(lines) {
			if useColors {
				b.WriteString(fmt.Sprintf("  %s%4d |%s %s\n", Gray, e.Line+1, Reset, lines[errIdx+1]))
			} else {
				b.WriteString(fmt.Sprintf("  %4d | %s\n", e.Line+1, lines[errIdx+1]))
			}
		}
	}

	b.WriteString("\n")
	if useColors {
		b.WriteString(fmt.Sprintf("%s%s%s\n", Red, e.Message, Reset))
	} else {
		b.WriteString(e.Message + "\n")
	}
	return b.String()
}

// RuntimeError reports a failed program execution by its message.
// StackTrace is printed when set; NewRuntimeError leaves it empty.
type RuntimeError struct {
	Message    string
	StackTrace []string
}

func NewRuntimeError(message string) *RuntimeError {
	return &RuntimeError{Message: message}
}

func (e *RuntimeError) Error() string { return e.FormatError(true) }

func (e *RuntimeError) FormatError(useColors bool) string {
	var b strings.Builder
	if useColors {
		b.WriteString(fmt.Sprintf("%s%sRuntime Error%s\n", Bold, Red, Reset))
		b.WriteString(fmt.Sprintf("%s%s%s\n", Red, e.Message, Reset))
	} else {
		b.WriteString("Runtime Error\n")
		b.WriteString(e.Message + "\n")
	}
	if len(e.StackTrace) > 0 {
		b.WriteString("\n")
		if useColors {
			b.WriteString(fmt.Sprintf("%sStack trace:%s\n", Bold, Reset))
		} else {
			b.WriteString("Stack trace:\n")
		}
		for i, frame := range e.StackTrace {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, frame))
		}
	}
	return b.String()
}

// ExtractSnippet pulls the line before/at/after the 1-indexed line
// number out of source, the same window the teacher's
// ExtractSourceSnippet produces.
func ExtractSnippet(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line <= 0 || line > len(lines) {
		return ""
	}
	var b strings.Builder
	if line > 1 {
		b.WriteString(lines[line-2])
		b.WriteString("\n")
	}
	b.WriteString(lines[line-1])
	if line < len(lines) {
		b.WriteString("\n")
		b.WriteString(lines[line])
	}
	return b.String()
}
