package resolver

import (
	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

// constructorName is how constructors are named in parameter diagnostics
const constructorName = "<init>"

// variable is a field or parameter about to become a VariableInjectionTarget
type variable struct {
	name        string
	kind        models.MemberKind
	typ         *models.TypeRef
	annotations []models.Annotation
	owner       string // method or constructor declaring a parameter
	line        int
}

func fieldVariable(f models.Field) variable {
	return variable{
		name:        f.Name,
		kind:        models.MemberField,
		typ:         f.Type,
		annotations: f.Annotations,
		line:        f.Line,
	}
}

func parameterVariable(p models.Parameter, kind models.MemberKind, owner string, line int) variable {
	return variable{
		name:        p.Name,
		kind:        kind,
		typ:         p.Type,
		annotations: p.Annotations,
		owner:       owner,
		line:        line,
	}
}

func (v variable) anchor(decl *models.Declaration) errors.Anchor {
	if v.kind == models.MemberField {
		return anchorOf(decl, v.name, "field")
	}
	return anchorOf(decl, v.owner+"("+v.name+")", "parameter")
}

// buildVariable converts a field or parameter of decl into a VariableInjectionTarget.
// The target is nil when any error diagnostic was produced.
func (r *Resolver) buildVariable(decl *models.Declaration, v variable) (*models.VariableInjectionTarget, errors.Diagnostics) {
	var diags errors.Diagnostics
	anchor := v.anchor(decl)
	loc := locationOf(decl, v.line)

	target := &models.VariableInjectionTarget{
		MemberName:   v.name,
		MemberKind:   v.kind,
		DeclaredType: v.typ,
	}

	switch declared := v.typ; {
	case declared != nil && annotations.IsWrapper(declared.Name) && !declared.TypeParam:
		target.Kind = models.InjectionProvider
		if declared.Name == annotations.Lazy {
			target.Kind = models.InjectionLazy
		}
		if len(declared.Args) != 1 || declared.Args[0].Star {
			diags.Add(invalidWrapper(decl, v, anchor).WithLocation(loc))
			return nil, diags
		}
		injected := declared.Args[0]
		if injected.HasArgs() {
			diags.Add(errors.Errorf(errors.GenericWrapperErrorCode, anchor,
				"Lazy/Provider %s is not a valid in %s. Lazy/Provider cannot be used on generic types.",
				v.name, decl.Name).WithLocation(loc))
			return nil, diags
		}
		target.InjectedType = injected
		target.DisplayType = declared
	default:
		target.Kind = models.InjectionInstance
		target.InjectedType = r.unwrapAlias(declared)
		target.DisplayType = declared
	}

	qualifier, diag := r.Qualifier(v.annotations, anchor)
	if diag != nil {
		diags.Add(diag.WithLocation(loc))
		return nil, diags
	}
	target.Qualifier = qualifier

	if v.kind == models.MemberField && v.typ.IsPrimitive() {
		diags.Add(errors.Errorf(errors.UnsupportedPrimitiveErrorCode, anchor,
			"Field %s#%s is of type %s which is not supported by Toothpick.",
			decl.Name, v.name, v.typ.Name).WithLocation(loc))
		return nil, diags
	}

	return target, diags
}

func invalidWrapper(decl *models.Declaration, v variable, anchor errors.Anchor) *errors.Diagnostic {
	if v.kind == models.MemberField {
		return errors.Errorf(errors.InvalidWrapperErrorCode, anchor,
			"Field %s#%s is not a valid %s.", decl.Name, v.name, v.typ.Name)
	}
	return errors.Errorf(errors.InvalidWrapperErrorCode, anchor,
		"Parameter %s in method/constructor %s#%s is not a valid %s.", v.name, decl.Name, v.owner, v.typ.Name)
}

// unwrapAlias follows type aliases down to the nominal type they stand for
func (r *Resolver) unwrapAlias(ref *models.TypeRef) *models.TypeRef {
	current := ref
	visited := make(map[string]bool)
	for current != nil && !current.TypeParam {
		decl, ok := r.table.Lookup(current.Name)
		if !ok || decl.Kind != models.KindTypeAlias || decl.AliasOf == nil || visited[decl.Name] {
			return current
		}
		visited[decl.Name] = true
		current = decl.AliasOf
	}
	return current
}

// Qualifier resolves the qualifier of a member from its annotations: every annotation
// meta-annotated with @Qualifier other than @Named contributes its type, every @Named
// contributes its value. More than one contribution is an error.
func (r *Resolver) Qualifier(memberAnnotations []models.Annotation, anchor errors.Anchor) (*string, *errors.Diagnostic) {
	var names []string
	for _, a := range memberAnnotations {
		if a.Type != annotations.Named && r.annotations.IsQualifier(a.Type) {
			names = append(names, a.Type)
		}
	}
	for _, a := range memberAnnotations {
		if a.Type == annotations.Named {
			names = append(names, a.Value())
		}
	}

	if len(names) > 1 {
		return nil, errors.Errorf(errors.MultipleQualifiersErrorCode, anchor,
			"Only one javax.inject.Qualifier annotation is allowed to name injections.")
	}
	if len(names) == 0 {
		return nil, nil
	}
	name := names[0]
	return &name, nil
}
