package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a class of ingestion or linking problem.
type ErrorCode string

const (
	// ErrXMLParse indicates the document could not be parsed as XML.
	ErrXMLParse ErrorCode = "xml-parse-error"
	// ErrNilReader indicates a parse was attempted with a nil input.
	ErrNilReader ErrorCode = "nil-reader"
	// ErrMissingID indicates an element lacked its required id attribute.
	ErrMissingID ErrorCode = "id-missing"
	// ErrDuplicateID indicates two elements of one type shared an id.
	ErrDuplicateID ErrorCode = "id-duplicate"
	// ErrUnresolvedRef indicates a reference with no match in its target table.
	ErrUnresolvedRef ErrorCode = "ref-unresolved"
	// ErrOccurrenceCycle indicates a child reference pointing back at an ancestor.
	ErrOccurrenceCycle ErrorCode = "occurrence-cycle"
)

// Diagnostic describes one data-quality or structural problem found while
// ingesting or linking a document. Path carries the id of the entity the
// problem was found on, when one is known.
type Diagnostic struct {
	Code    string
	Message string
	Path    string
}

// DiagnosticList is an error that wraps one or more diagnostics.
type DiagnosticList []Diagnostic

// Error returns a compact summary of the diagnostics.
func (d DiagnosticList) Error() string {
	switch len(d) {
	case 0:
		return "no diagnostics"
	case 1:
		return d[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", d[0].Error(), len(d)-1)
	}
}

// Error formats the diagnostic for display, including code and context.
func (d *Diagnostic) Error() string {
	if d == nil {
		return "diagnostic <nil>"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", d.Code, d.Message))
	if d.Path != "" {
		b.WriteString(fmt.Sprintf(" at %s", d.Path))
	}
	return b.String()
}

// NewDiagnostic builds a Diagnostic with a code, message, and optional path.
func NewDiagnostic(code ErrorCode, msg, path string) Diagnostic {
	return Diagnostic{Code: string(code), Message: msg, Path: path}
}

// NewDiagnosticf formats a message and builds a Diagnostic.
func NewDiagnosticf(code ErrorCode, path, format string, args ...any) Diagnostic {
	return NewDiagnostic(code, fmt.Sprintf(format, args...), path)
}

// AsDiagnostics extracts diagnostics from an error returned by the parser.
func AsDiagnostics(err error) ([]Diagnostic, bool) {
	list, ok := asDiagnosticList(err)
	if !ok {
		return nil, false
	}
	return []Diagnostic(list), true
}

func asDiagnosticList(err error) (DiagnosticList, bool) {
	if err == nil {
		return nil, false
	}
	var list DiagnosticList
	if errors.As(err, &list) {
		return list, true
	}

	var listPtr *DiagnosticList
	if errors.As(err, &listPtr) && listPtr != nil {
		return *listPtr, true
	}

	return nil, false
}
