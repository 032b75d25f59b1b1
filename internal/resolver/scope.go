package resolver

import (
	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

// ScopeName returns the scope decl is bound to. A scope annotation other than @Singleton
// wins over @Singleton; @Singleton alone yields the singleton identity; no scope marker
// yields nil. Every scope marker must be runtime-retained and at most one non-singleton
// marker is allowed.
func (r *Resolver) ScopeName(decl *models.Declaration) (*string, errors.Diagnostics) {
	var diags errors.Diagnostics
	var scopeName *string
	hasSingleton := false
	anchor := anchorOf(decl, "", "class")
	loc := locationOf(decl, 0)

	for _, a := range decl.Annotations {
		if a.Type == annotations.Singleton {
			hasSingleton = true
			continue
		}
		if !r.annotations.IsScope(a.Type) {
			continue
		}
		if !r.annotations.HasRuntimeRetention(a.Type) {
			diags.Add(errors.Errorf(errors.ScopeAnnotationMissingRuntimeRetentionErrorCode, anchor,
				"Scope Annotation %s does not have RUNTIME retention policy.", a.Type).WithLocation(loc))
		}
		if scopeName != nil {
			diags.Add(errors.Errorf(errors.MultipleScopeAnnotationsErrorCode, anchor,
				"Only one @Scope qualified annotation is allowed : %s", *scopeName).WithLocation(loc))
		}
		name := a.Type
		scopeName = &name
	}

	if hasSingleton && scopeName == nil {
		name := annotations.Singleton
		scopeName = &name
	}
	return scopeName, diags
}

// checkScopeMarkers cross-checks the singleton and releasable markers of decl
func (r *Resolver) checkScopeMarkers(decl *models.Declaration, scopeName *string) errors.Diagnostics {
	var diags errors.Diagnostics
	anchor := anchorOf(decl, "", "class")
	loc := locationOf(decl, 0)

	if decl.HasAnnotation(annotations.Releasable) && !decl.HasAnnotation(annotations.Singleton) {
		diags.Add(errors.Errorf(errors.ReleasableWithoutSingletonErrorCode, anchor,
			"Class %s is annotated with @Releasable, it should also be annotated with either @Singleton.", decl.Name).WithLocation(loc))
	}
	if decl.HasAnnotation(annotations.ProvidesReleasable) && !decl.HasAnnotation(annotations.ProvidesSingleton) {
		diags.Add(errors.Errorf(errors.ProvidesReleasableWithoutProvidesSingletonErrorCode, anchor,
			"Class %s is annotated with @ProvidesReleasable, it should also be annotated with either @ProvidesSingleton.", decl.Name).WithLocation(loc))
	}
	if decl.HasAnnotation(annotations.ProvidesSingleton) && scopeName == nil {
		diags.Add(errors.Errorf(errors.ProvidesSingletonWithoutScopeErrorCode, anchor,
			"The type %s uses @ProvidesSingleton but doesn't have a scope annotation.", decl.Name).WithLocation(loc))
	}
	return diags
}
