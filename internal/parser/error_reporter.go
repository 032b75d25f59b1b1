package parser

import (
	"fmt"
	"strings"

	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

var (
	validKinds        = []string{"class", "interface", "object", "enum", "annotation", "typealias"}
	validVisibilities = []string{"public", "internal", "package", "protected", "private"}
)

// DocumentErrorReporter builds located errors for malformed declaration documents
type DocumentErrorReporter struct {
	file string
}

// NewDocumentErrorReporter creates a reporter for one document file
func NewDocumentErrorReporter(file string) *DocumentErrorReporter {
	return &DocumentErrorReporter{file: file}
}

// ReportSyntaxError reports a document that is not valid YAML or misses its package
func (r *DocumentErrorReporter) ReportSyntaxError(cause error) error {
	return &models.GeneratorError{
		Type:    models.ErrorTypeDeclarationSyntax,
		File:    r.file,
		Message: fmt.Sprintf("invalid declaration document: %v", cause),
		Cause:   errors.WrapParseError(r.file, cause),
		Suggestions: []string{
			"Every document needs a 'package' key and a 'declarations' list",
			"Separate several documents in one file with '---'",
		},
	}
}

// ReportInvalidKind reports an unknown declaration kind
func (r *DocumentErrorReporter) ReportInvalidKind(declaration, kind string, line int) error {
	return &models.GeneratorError{
		Type:        models.ErrorTypeDeclarationSyntax,
		File:        r.file,
		Line:        line,
		Message:     fmt.Sprintf("declaration '%s' has unknown kind '%s'", declaration, kind),
		Suggestions: []string{"Valid kinds: " + strings.Join(validKinds, ", ")},
		Context: map[string]interface{}{
			"declaration": declaration,
			"kind":        kind,
		},
	}
}

// ReportInvalidVisibility reports an unknown visibility keyword on a declaration or member
func (r *DocumentErrorReporter) ReportInvalidVisibility(element, visibility string, line int) error {
	return &models.GeneratorError{
		Type:        models.ErrorTypeDeclarationSyntax,
		File:        r.file,
		Line:        line,
		Message:     fmt.Sprintf("'%s' has unknown visibility '%s'", element, visibility),
		Suggestions: []string{"Valid visibilities: " + strings.Join(validVisibilities, ", ")},
		Context: map[string]interface{}{
			"element":    element,
			"visibility": visibility,
		},
	}
}

// ReportInvalidExpression reports a type or annotation expression that does not parse
func (r *DocumentErrorReporter) ReportInvalidExpression(element string, line int, cause error) error {
	return &models.GeneratorError{
		Type:    models.ErrorTypeDeclarationSyntax,
		File:    r.file,
		Line:    line,
		Message: fmt.Sprintf("'%s': %v", element, cause),
		Cause:   cause,
		Suggestions: []string{
			"Types look like 'a.B<c.D<T>, *>?'",
			"Annotations look like '@Named(\"value\")' or 'javax.inject.Singleton'",
		},
		Context: map[string]interface{}{
			"element": element,
		},
	}
}

// ReportDuplicate reports a declaration defined twice
func (r *DocumentErrorReporter) ReportDuplicate(declaration string, line int, cause error) error {
	return &models.GeneratorError{
		Type:        models.ErrorTypeDeclarationSyntax,
		File:        r.file,
		Line:        line,
		Message:     fmt.Sprintf("declaration '%s' is defined more than once", declaration),
		Cause:       cause,
		Suggestions: []string{"Each fully-qualified name may appear only once across all loaded documents"},
	}
}

// ReportMissingName reports a declaration, member or parameter without a name
func (r *DocumentErrorReporter) ReportMissingName(element string, line int) error {
	return &models.GeneratorError{
		Type:    models.ErrorTypeDeclarationSyntax,
		File:    r.file,
		Line:    line,
		Message: fmt.Sprintf("%s has no name", element),
	}
}
