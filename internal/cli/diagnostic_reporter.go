package cli

import (
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	colors  bool
	out     io.Writer
	errOut  io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stdout and stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		colors:  !color.NoColor,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
}

// SetOutput redirects the reporter and disables colors
func (r *DiagnosticReporter) SetOutput(out, errOut io.Writer) {
	r.out = out
	r.errOut = errOut
	r.colors = false
}

func (r *DiagnosticReporter) paint(c *color.Color, text string) string {
	if !r.colors {
		return text
	}
	return c.Sprint(text)
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	fmt.Fprintf(r.errOut, "%s%s\n", r.paint(color.New(color.FgYellow, color.Bold), "! "), message)
	for _, suggestion := range suggestions {
		fmt.Fprintf(r.errOut, "    hint: %s\n", suggestion)
	}
}

// ReportDiagnostics prints resolution diagnostics grouped by declaration. Warnings are
// prefixed with "!", errors with "x".
func (r *DiagnosticReporter) ReportDiagnostics(diagnostics errors.Diagnostics) {
	for _, d := range diagnostics.Sorted() {
		r.ReportDiagnostic(d)
	}
}

// ReportDiagnostic prints one diagnostic
func (r *DiagnosticReporter) ReportDiagnostic(d *errors.Diagnostic) {
	marker := r.paint(color.New(color.FgYellow, color.Bold), "! ")
	if d.IsError() {
		marker = r.paint(color.New(color.FgRed, color.Bold), "x ")
	}

	location := ""
	if loc := d.Location(); !loc.IsEmpty() {
		location = loc.String() + ": "
	}
	fmt.Fprintf(r.errOut, "%s%s%s [%s]\n", marker, location, d.Message, d.Code)
	if r.verbose {
		fmt.Fprintf(r.errOut, "    at: %s\n", d.Anchor)
	}
	for _, suggestion := range d.Suggestions() {
		fmt.Fprintf(r.errOut, "    hint: %s\n", suggestion)
	}
}

// ReportError provides comprehensive error reporting with user-friendly output
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.errOut, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.errOut, "=============================\n\n")

	var genErr *models.GeneratorError
	var injectErr errors.InjectError
	switch {
	case goerrors.As(err, &genErr):
		r.reportGeneratorError(genErr)
	case goerrors.As(err, &injectErr):
		r.reportInjectError(injectErr)
	default:
		r.reportBasicError(err)
	}

	fmt.Fprintf(r.errOut, "\n")
}

// reportGeneratorError reports a GeneratorError with full context and suggestions
func (r *DiagnosticReporter) reportGeneratorError(genErr *models.GeneratorError) {
	r.printErrorHeader(errorTypeName(genErr.Type))

	fmt.Fprintf(r.errOut, "Message: %s\n\n", genErr.Message)

	if r.verbose && genErr.Cause != nil {
		fmt.Fprintf(r.errOut, "Underlying cause: %s\n\n", genErr.Cause.Error())
	}

	if genErr.File != "" {
		if genErr.Line > 0 {
			fmt.Fprintf(r.errOut, "Location: %s:%d\n\n", genErr.File, genErr.Line)
		} else {
			fmt.Fprintf(r.errOut, "File: %s\n\n", genErr.File)
		}
	}

	if len(genErr.Context) > 0 {
		r.printContext(genErr.Context)
	}

	if len(genErr.Suggestions) > 0 {
		r.printSuggestions(genErr.Suggestions)
	}

	r.printAdditionalHelp(genErr.Type)

	if r.verbose {
		r.printErrorChain(genErr.Cause)
	}
}

// reportInjectError reports a coded error from the core packages
func (r *DiagnosticReporter) reportInjectError(injectErr errors.InjectError) {
	r.printErrorHeader(injectErr.ErrorCode().String())

	fmt.Fprintf(r.errOut, "Message: %s\n\n", injectErr.Error())

	if loc := injectErr.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.errOut, "Location: %s\n\n", loc)
	}
	if ctx := injectErr.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if suggestions := injectErr.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}

	if injectErr.ErrorCode() == errors.ConfigurationErrorCode {
		r.printAdditionalHelp(models.ErrorTypeConfiguration)
	}

	if r.verbose {
		r.printErrorChain(goerrors.Unwrap(injectErr))
	}
}

// reportBasicError reports a basic error without rich context
func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.errOut, "Message: %s\n\n", err.Error())

	errorMsg := strings.ToLower(err.Error())
	if strings.Contains(errorMsg, "no such file") || strings.Contains(errorMsg, "failed to access") {
		fmt.Fprintf(r.errOut, "This appears to be a file system issue.\n")
		fmt.Fprintf(r.errOut, "Common solutions:\n")
		fmt.Fprintf(r.errOut, "  - Check that the fixture paths exist\n")
		fmt.Fprintf(r.errOut, "  - Run from the directory the paths are relative to\n\n")
	}
}

func errorTypeName(errorType models.ErrorType) string {
	switch errorType {
	case models.ErrorTypeDeclarationSyntax:
		return "Declaration Syntax Error"
	case models.ErrorTypeValidation:
		return "Validation Error"
	case models.ErrorTypeGeneration:
		return "Code Generation Error"
	case models.ErrorTypeFileSystem:
		return "File System Error"
	case models.ErrorTypeConfiguration:
		return "Configuration Error"
	case models.ErrorTypeResolution:
		return "Resolution Error"
	default:
		return "Unknown Error"
	}
}

// printErrorHeader prints a formatted error header
func (r *DiagnosticReporter) printErrorHeader(title string) {
	fmt.Fprintf(r.errOut, "Type: %s\n", title)
	fmt.Fprintf(r.errOut, "%s\n\n", strings.Repeat("-", len(title)+6))
}

// printContext prints context information, well-known keys first
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.errOut, "Context:\n")

	importantKeys := []string{"declaration", "element", "fixtures", "path"}
	printed := make(map[string]bool)
	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.errOut, "   %s: %v\n", formatContextKey(key), value)
			printed[key] = true
		}
	}

	keys := make([]string, 0, len(context))
	for key := range context {
		if !printed[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(r.errOut, "   %s: %v\n", formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.errOut, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.errOut, "Suggestions:\n")

	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.errOut, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.errOut, "      %s\n", line)
			}
		}
	}

	fmt.Fprintf(r.errOut, "\n")
}

// printAdditionalHelp prints additional help based on error type
func (r *DiagnosticReporter) printAdditionalHelp(errorType models.ErrorType) {
	switch errorType {
	case models.ErrorTypeDeclarationSyntax:
		fmt.Fprintf(r.errOut, "Declaration Document Help:\n")
		fmt.Fprintf(r.errOut, "  - Each document has a 'package' key and a 'declarations' list\n")
		fmt.Fprintf(r.errOut, "  - Types are written like 'Provider<Pump>' or 'kotlin.collections.List<*>?'\n")
		fmt.Fprintf(r.errOut, "  - Annotations are written like '@Inject' or '@Named(\"value\")'\n\n")

	case models.ErrorTypeConfiguration:
		fmt.Fprintf(r.errOut, "Configuration Help:\n")
		fmt.Fprintf(r.errOut, "  - Options are read from injectgen.yaml, INJECTGEN_* variables and flags\n")
		fmt.Fprintf(r.errOut, "  - Nested keys use '__' in variable names, e.g. INJECTGEN_OUTPUT__DIR\n\n")

	case models.ErrorTypeResolution:
		fmt.Fprintf(r.errOut, "Resolution Help:\n")
		fmt.Fprintf(r.errOut, "  - Fix the diagnostics marked with 'x' above\n")
		fmt.Fprintf(r.errOut, "  - Run 'injectgen explain <fixture> <class>' to inspect one class\n\n")
	}

	fmt.Fprintf(r.errOut, "For more help:\n")
	fmt.Fprintf(r.errOut, "  - Run with --verbose for more detailed output\n")
}

// printErrorChain prints the unwrapped causes in verbose mode
func (r *DiagnosticReporter) printErrorChain(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.errOut, "Error Chain:\n")
	for level := 1; err != nil; level++ {
		fmt.Fprintf(r.errOut, "  %d. %s\n", level, err.Error())
		err = goerrors.Unwrap(err)
	}
	fmt.Fprintf(r.errOut, "\n")
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(r.errOut, "[DEBUG] "+format+"\n", args...)
	}
}

// ReportSuccess reports a finished generation with summary information
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	fmt.Fprintf(r.out, "\nCode Generation Completed Successfully!\n")
	fmt.Fprintf(r.out, "=======================================\n\n")

	fmt.Fprintf(r.out, "Loaded %d declarations from %d documents\n", summary.DeclarationsLoaded, summary.DocumentsLoaded)
	if summary.FactoriesGenerated > 0 {
		fmt.Fprintf(r.out, "Generated %d factories\n", summary.FactoriesGenerated)
	}
	if summary.MemberInjectorsGenerated > 0 {
		fmt.Fprintf(r.out, "Generated %d member injectors\n", summary.MemberInjectorsGenerated)
	}
	if summary.Skipped > 0 {
		fmt.Fprintf(r.out, "Skipped %d declarations\n", summary.Skipped)
	}
	if summary.Warnings > 0 {
		fmt.Fprintf(r.out, "Reported %d warnings\n", summary.Warnings)
	}

	if len(summary.GeneratedFiles) > 0 {
		fmt.Fprintf(r.out, "\nGenerated files:\n")
		for _, file := range summary.GeneratedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}

	if r.verbose {
		fmt.Fprintf(r.out, "\nRound %s finished in %v\n", summary.Round, summary.Duration.Round(time.Millisecond))
	}
}

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	Round                    string
	DocumentsLoaded          int
	DeclarationsLoaded       int
	CandidatesResolved       int
	FactoriesGenerated       int
	MemberInjectorsGenerated int
	Skipped                  int
	Warnings                 int
	Errors                   int
	GeneratedFiles           []string
	Duration                 time.Duration
}
