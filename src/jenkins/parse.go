package jenkins

import (
	"bufio"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// successMarker is the exact body Jenkins returns for a valid Jenkinsfile.
const successMarker = "Jenkinsfile successfully validated."

// diagnosticRe matches the first line of each finding in a lint response.
var diagnosticRe = regexp.MustCompile(`^WorkflowScript:\s*(\d+):\s*(.*)$`)

// locationRe matches the line/column fragment Jenkins embeds at the end of some messages.
var locationRe = regexp.MustCompile(`:?\s*@ line\s*(\d+),\s*column\s*(\d+)\.?$`)

// contentRe matches the leading echo of the submitted file that some messages carry.
var contentRe = regexp.MustCompile(`^Jenkinsfile content '.+' did not`)

// isSuccess reports whether body is the success marker, modulo surrounding whitespace.
func isSuccess(body string) bool {
	return strings.TrimSpace(body) == successMarker
}

// newResult interprets a lint response for one file. The HTTP status is
// authoritative for telling server errors from lint outcomes; the body only
// supplies detail. Jenkins answers 200 for invalid pipelines too, so on a 2xx
// the body decides between valid and invalid.
func newResult(file string, status int, body string) *Result {
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		if isSuccess(body) {
			log.Warning("Jenkins returned status %d for %s with a success response body; trusting the status", status, file)
		}
		message := strings.TrimSpace(body)
		if message == "" {
			message = "unknown error"
		}
		return &Result{File: file, Diagnostics: []Diagnostic{{File: file, Severity: SeverityError, Message: message}}}
	}
	if isSuccess(body) {
		return &Result{File: file, OK: true}
	}
	diags := parseDiagnostics(file, body)
	if len(diags) == 0 {
		// Not the success marker, and nothing to extract detail from either.
		diags = []Diagnostic{{File: file, Severity: SeverityError, Message: "unknown error"}}
	}
	return &Result{File: file, Diagnostics: diags}
}

// parseDiagnostics scans a failure body line by line. It's a small state
// machine: a line matching the diagnostic pattern starts a new diagnostic, a
// blank line ends the current one, and any other line while a diagnostic is
// open continues its message (Jenkins wraps long messages without re-emitting
// the prefix). Lines before the first diagnostic are preamble, e.g. the
// "Errors encountered validating Jenkinsfile:" header. If nothing matches at
// all the whole body becomes one generic diagnostic.
func parseDiagnostics(file, body string) []Diagnostic {
	var diags []Diagnostic
	last := -1 // index of the diagnostic accepting continuation lines
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		text := scanner.Text()
		if m := diagnosticRe.FindStringSubmatch(text); m != nil {
			diags = append(diags, newDiagnostic(file, m[1], m[2]))
			last = len(diags) - 1
		} else if strings.TrimSpace(text) == "" {
			last = -1
		} else if last != -1 {
			diags[last].Message += " " + strings.TrimSpace(text)
		}
	}
	if len(diags) == 0 && strings.TrimSpace(body) != "" {
		return []Diagnostic{{File: file, Severity: SeverityError, Message: strings.TrimSpace(body)}}
	}
	return diags
}

// newDiagnostic builds a diagnostic from the captures of one matching line.
// Some messages carry their own "@ line N, column M." suffix; that gives us
// the column (and a more precise line), and is stripped from the message.
func newDiagnostic(file, line, message string) Diagnostic {
	d := Diagnostic{File: file, Severity: SeverityError}
	d.Line, _ = strconv.Atoi(line)
	if m := locationRe.FindStringSubmatch(message); m != nil {
		d.Line, _ = strconv.Atoi(m[1])
		d.Column, _ = strconv.Atoi(m[2])
		message = message[:len(message)-len(m[0])]
	}
	// Don't echo the user's whole file back at them.
	message = contentRe.ReplaceAllString(message, "Jenkinsfile did not")
	d.Message = strings.TrimSpace(message)
	return d
}
