package generator

import (
	"strings"
	"unicode"

	"github.com/toyz/injectgen/internal/models"
)

// Suffixes of generated artifacts
const (
	FactorySuffix        = "__Factory"
	MemberInjectorSuffix = "__MemberInjector"
)

// FactoryName returns the simple name of the factory generated for decl: the nesting
// path joined with '$' followed by __Factory
func FactoryName(decl *models.Declaration) string {
	return generatedSimpleName(decl) + FactorySuffix
}

// MemberInjectorName returns the simple name of the member injector generated for decl
func MemberInjectorName(decl *models.Declaration) string {
	return generatedSimpleName(decl) + MemberInjectorSuffix
}

// QualifiedName joins a package and a simple name
func QualifiedName(pkg, simpleName string) string {
	if pkg == "" {
		return simpleName
	}
	return pkg + "." + simpleName
}

func generatedSimpleName(decl *models.Declaration) string {
	names := decl.SimpleNames
	if len(names) == 0 {
		names = []string{decl.SimpleName()}
	}
	return strings.Join(names, "$")
}

// SplitClassName splits a fully-qualified class name into its package and its nesting
// path. Declarations known to the table are split exactly; unknown names are split at
// the first segment starting with an upper-case letter.
func SplitClassName(table *models.Table, fqcn string) (pkg string, simpleNames []string) {
	if table != nil {
		if decl, ok := table.Lookup(fqcn); ok {
			return decl.Package, append([]string(nil), decl.SimpleNames...)
		}
	}

	segments := strings.Split(fqcn, ".")
	for i, segment := range segments {
		if segment != "" && unicode.IsUpper([]rune(segment)[0]) {
			return strings.Join(segments[:i], "."), segments[i:]
		}
	}
	return models.PackageOf(fqcn), []string{models.SimpleNameOf(fqcn)}
}

// GeneratedVisibility folds the visibility of decl with every enclosing declaration, from
// the innermost outwards. Private dominates everything, protected dominates all but
// private, internal dominates public. Package visibility has no counterpart in generated
// code and folds as public.
func GeneratedVisibility(table *models.Table, decl *models.Declaration) models.Visibility {
	visibility := normalizeVisibility(decl.Visibility)
	for _, enclosing := range table.EnclosingChain(decl) {
		visibility = foldVisibility(normalizeVisibility(enclosing.Visibility), visibility)
	}
	return visibility
}

func normalizeVisibility(v models.Visibility) models.Visibility {
	if v == models.VisibilityPackage {
		return models.VisibilityPublic
	}
	return v
}

func foldVisibility(parent, source models.Visibility) models.Visibility {
	switch parent {
	case models.VisibilityInternal:
		if source == models.VisibilityPrivate || source == models.VisibilityProtected {
			return source
		}
		return parent
	case models.VisibilityProtected:
		if source == models.VisibilityPrivate {
			return source
		}
		return parent
	case models.VisibilityPrivate:
		return parent
	default:
		return source
	}
}
