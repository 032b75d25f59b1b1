package annotations

import (
	"sort"
	"strings"

	"github.com/toyz/injectgen/internal/models"
)

// Registry answers meta-annotation questions about the annotation types of one round.
// Annotation types are looked up in the declaration table; a few built-in identities
// are known without a declaration.
type Registry struct {
	table      *models.Table
	configured map[string]bool
}

// NewRegistry creates a registry over table. scopeAnnotationNames lists extra annotation
// identities treated as runtime-retained scope markers when the table does not declare them.
func NewRegistry(table *models.Table, scopeAnnotationNames []string) *Registry {
	configured := make(map[string]bool, len(scopeAnnotationNames))
	for _, name := range scopeAnnotationNames {
		if name = strings.TrimSpace(name); name != "" {
			configured[name] = true
		}
	}
	return &Registry{table: table, configured: configured}
}

func (r *Registry) annotationDecl(annotationType string) (*models.Declaration, bool) {
	if r.table == nil {
		return nil, false
	}
	decl, ok := r.table.Lookup(annotationType)
	if !ok || decl.Kind != models.KindAnnotation {
		return nil, false
	}
	return decl, true
}

// IsQualifier reports whether annotationType is meta-annotated with @Qualifier
func (r *Registry) IsQualifier(annotationType string) bool {
	if annotationType == Named {
		return true
	}
	decl, ok := r.annotationDecl(annotationType)
	return ok && decl.HasAnnotation(Qualifier)
}

// IsScope reports whether annotationType marks a scope
func (r *Registry) IsScope(annotationType string) bool {
	if annotationType == Singleton {
		return true
	}
	if decl, ok := r.annotationDecl(annotationType); ok {
		return decl.HasAnnotation(Scope)
	}
	return r.configured[annotationType]
}

// HasRuntimeRetention reports whether annotationType is retained at runtime
func (r *Registry) HasRuntimeRetention(annotationType string) bool {
	if annotationType == Singleton {
		return true
	}
	decl, ok := r.annotationDecl(annotationType)
	if !ok {
		return r.configured[annotationType]
	}
	if strings.EqualFold(decl.Retention, RetentionRuntime) {
		return true
	}
	for _, retention := range []string{JavaRetention, KotlinRetention} {
		if a, found := models.FindAnnotation(decl.Annotations, retention); found {
			return isRuntime(a.Value())
		}
	}
	return false
}

func isRuntime(value string) bool {
	return models.SimpleNameOf(value) == RetentionRuntime
}

// ScopeAnnotations returns every scope marker known to the round, sorted
func (r *Registry) ScopeAnnotations() []string {
	seen := map[string]bool{Singleton: true}
	for name := range r.configured {
		if r.IsScope(name) {
			seen[name] = true
		}
	}
	if r.table != nil {
		for _, decl := range r.table.All() {
			if decl.Kind == models.KindAnnotation && decl.HasAnnotation(Scope) {
				seen[decl.Name] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsSuppressed reports whether annotations carry @SuppressWarnings or @Suppress with value
func IsSuppressed(annotations []models.Annotation, value string) bool {
	for _, a := range annotations {
		if a.Type != SuppressWarnings && a.Type != Suppress {
			continue
		}
		for _, v := range a.Values {
			if strings.EqualFold(v, value) {
				return true
			}
		}
	}
	return false
}
