package router

import (
	"fmt"
	"strings"
)

// DiagnosticKind categorizes a route diagnostic.
type DiagnosticKind string

const (
	// DiagDuplicatePattern reports multiple files resolving to the same
	// URL pattern. Only the first one in scan order is ever matched.
	DiagDuplicatePattern DiagnosticKind = "DUPLICATE_PATTERN"

	// DiagUnnamedParam reports a named-parameter segment with an empty name.
	DiagUnnamedParam DiagnosticKind = "UNNAMED_PARAM"

	// DiagShadowedRoute reports a route declared after a catch-all that
	// covers its whole subtree, making it unreachable.
	DiagShadowedRoute DiagnosticKind = "SHADOWED_ROUTE"
)

// Diagnostic is a non-fatal finding about a compiled route list. Diagnostics
// never abort a compile; they surface through the CLI and the dev server.
type Diagnostic struct {
	Kind    DiagnosticKind
	Pattern string
	Files   []string
	Message string
}

func (d Diagnostic) String() string {
	if len(d.Files) > 0 {
		return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, strings.Join(d.Files, ", "))
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Diagnose inspects a compiled route list for likely mistakes. First-match
// semantics make every finding survivable, so all results are advisory.
func Diagnose(routes []Route) []Diagnostic {
	var diags []Diagnostic
	diags = append(diags, diagnoseDuplicates(routes)...)
	diags = append(diags, diagnoseUnnamedParams(routes)...)
	diags = append(diags, diagnoseShadowed(routes)...)
	return diags
}

func diagnoseDuplicates(routes []Route) []Diagnostic {
	byPattern := make(map[string][]string)
	order := make([]string, 0, len(routes))
	for _, r := range routes {
		if _, seen := byPattern[r.Pattern]; !seen {
			order = append(order, r.Pattern)
		}
		byPattern[r.Pattern] = append(byPattern[r.Pattern], r.SourcePath)
	}

	var diags []Diagnostic
	for _, pattern := range order {
		files := byPattern[pattern]
		if len(files) <= 1 {
			continue
		}
		diags = append(diags, Diagnostic{
			Kind:    DiagDuplicatePattern,
			Pattern: pattern,
			Files:   files,
			Message: fmt.Sprintf("%d files compile to %s; only the first in scan order matches", len(files), pattern),
		})
	}
	return diags
}

func diagnoseUnnamedParams(routes []Route) []Diagnostic {
	var diags []Diagnostic
	for _, r := range routes {
		for _, tok := range r.Matcher.Tokens() {
			if tok.Kind == TokenParam && tok.Value == "" {
				diags = append(diags, Diagnostic{
					Kind:    DiagUnnamedParam,
					Pattern: r.Pattern,
					Files:   []string{r.SourcePath},
					Message: fmt.Sprintf("pattern %s has a parameter segment with no name", r.Pattern),
				})
			}
		}
	}
	return diags
}

func diagnoseShadowed(routes []Route) []Diagnostic {
	var diags []Diagnostic
	for i, earlier := range routes {
		if !earlier.Matcher.IsCatchAll() {
			continue
		}
		prefix := literalPrefix(earlier)
		for _, later := range routes[i+1:] {
			if !strings.HasPrefix(later.Pattern+"/", prefix+"/") {
				continue
			}
			if len(patternSegments(later.Pattern)) <= len(patternSegments(prefix)) {
				continue
			}
			diags = append(diags, Diagnostic{
				Kind:    DiagShadowedRoute,
				Pattern: later.Pattern,
				Files:   []string{earlier.SourcePath, later.SourcePath},
				Message: fmt.Sprintf("%s is unreachable: declared after catch-all %s", later.Pattern, earlier.Pattern),
			})
		}
	}
	return diags
}

// literalPrefix returns the pattern path up to (excluding) the first
// non-literal segment.
func literalPrefix(r Route) string {
	var segs []string
	for _, tok := range r.Matcher.Tokens() {
		if tok.Kind != TokenLiteral {
			break
		}
		segs = append(segs, tok.Value)
	}
	if len(segs) == 0 {
		return ""
	}
	return "/" + strings.Join(segs, "/")
}
