package jenkins

import (
	"fmt"
	"strconv"
)

// A Severity classifies a diagnostic. The pipeline linter only ever reports errors.
type Severity string

// SeverityError is the severity of every finding the server emits.
const SeverityError Severity = "error"

// A Diagnostic is a single finding reported by the Jenkins linter for one file.
type Diagnostic struct {
	File     string
	Line     int // 1-based; 0 when the server gave no line
	Column   int // 1-based; 0 when the server gave no column
	Severity Severity
	Message  string
}

// String renders the diagnostic in file:line:column: severity: message form,
// with '-' standing in for an absent line or column.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%s:%s: %s: %s", d.File, orDash(d.Line), orDash(d.Column), d.Severity, d.Message)
}

func orDash(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

// A Result holds the outcome of linting one file. Diagnostics are kept in the
// order the server emitted them; OK being false implies there is at least one.
type Result struct {
	File        string
	OK          bool
	Diagnostics []Diagnostic
}
