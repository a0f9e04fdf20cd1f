// Package errors provides structured, coded errors for the flexi toolchain.
//
// Every error carries a stable code (e.g. "F101"), a category, and optional
// detail, source location, and fix suggestion. Codes are registered once in
// registry.go so the CLI, the dev server, and logs all describe a failure
// the same way.
//
// Typical construction goes through the registry:
//
//	return errors.New("F102").
//	    WithDetail(fmt.Sprintf("parsing %s: %v", path, err)).
//	    Wrap(err)
//
// Ad-hoc errors without a registered code use Newf:
//
//	return errors.Newf(errors.CategoryScan, "route directory %s is not readable", dir)
//
// Formatting is split into Format (multi-line terminal output with colors),
// FormatCompact (one line with an editor-friendly file:line prefix), and
// FormatJSON (the shape the dev server's diagnostics endpoint emits).
package errors
