package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category groups error codes by the subsystem that raised them.
type Category string

const (
	CategoryScan    Category = "scan"
	CategoryConfig  Category = "config"
	CategoryDev     Category = "dev"
	CategoryBuild   Category = "build"
	CategoryDeploy  Category = "deploy"
	CategoryRuntime Category = "runtime"
)

// Location points at the file (and optionally line) an error refers to.
// For route scan errors the line is usually zero; the file alone identifies
// the offending route module.
type Location struct {
	File string
	Line int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return l.File
}

// Error is a structured error with a stable code, fix suggestion, and
// optional source location.
type Error struct {
	// Code is a unique identifier (e.g. "F101"). Empty for ad-hoc errors.
	Code string

	// Category is the subsystem that raised the error.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, usually with the concrete values
	// involved.
	Detail string

	// Location is where the error occurred, if known.
	Location *Location

	// Context contains source lines surrounding Location.Line.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL links to documentation about this error code.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithLocation records the file and line the error refers to and captures
// surrounding source lines when the file is readable.
func (e *Error) WithLocation(file string, line int) *Error {
	e.Location = &Location{File: file, Line: line}
	if line > 0 {
		e.Context = readContextLines(file, line, 5)
	}
	return e
}

// WithFile records a file-level location without a line number.
func (e *Error) WithFile(file string) *Error {
	e.Location = &Location{File: file}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new Error with a formatted message and no code.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error under a registered code. An *Error passes
// through unchanged so codes assigned close to the failure survive.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*Error); ok {
		return fe
	}
	return New(code).Wrap(err)
}
