package resolver

import (
	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

func injectedFields(decl *models.Declaration) []models.Field {
	var out []models.Field
	for _, f := range decl.Fields {
		if models.HasAnnotation(f.Annotations, annotations.Inject) {
			out = append(out, f)
		}
	}
	return out
}

func injectedMethods(decl *models.Declaration) []models.Method {
	var out []models.Method
	for _, m := range decl.Methods {
		if models.HasAnnotation(m.Annotations, annotations.Inject) {
			out = append(out, m)
		}
	}
	return out
}

func injectedConstructors(decl *models.Declaration) []models.Constructor {
	var out []models.Constructor
	for _, c := range decl.Constructors {
		if models.HasAnnotation(c.Annotations, annotations.Inject) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Resolver) hasInjectedMembers(decl *models.Declaration) bool {
	return len(injectedFields(decl)) > 0 || len(injectedMethods(decl)) > 0
}

// DiscoverMembers collects the injected fields and methods declared directly on decl,
// in declaration order, and the nearest strict ancestor with injected members.
// Invalid members are reported and left out.
func (r *Resolver) DiscoverMembers(decl *models.Declaration) (*models.MemberInjectionTarget, errors.Diagnostics) {
	var diags errors.Diagnostics
	target := &models.MemberInjectionTarget{
		TargetClass:                  decl.ID,
		SuperClassThatNeedsInjection: r.NearestInjectedAncestor(decl, true),
	}

	for _, field := range injectedFields(decl) {
		if fieldDiags := r.validateInjectedField(decl, field); fieldDiags.HasErrors() {
			diags.Merge(fieldDiags)
			continue
		}
		variable, varDiags := r.buildVariable(decl, fieldVariable(field))
		diags.Merge(varDiags)
		if variable != nil {
			target.Fields = append(target.Fields, models.FieldInjectionTarget{Target: variable})
		}
	}

	for _, method := range injectedMethods(decl) {
		methodDiags := r.validateInjectedMethod(decl, method)
		diags.Merge(methodDiags)
		if methodDiags.HasErrors() {
			continue
		}

		parameters, ok := r.buildParameters(decl, method.Parameters, models.MemberMethodParameter, method.Name, method.Line, &diags)
		if !ok {
			continue
		}
		target.Methods = append(target.Methods, models.MethodInjectionTarget{
			MethodName:            method.Name,
			IsOverride:            r.isOverride(decl, method),
			Parameters:            parameters,
			CheckedExceptionTypes: append([]string(nil), method.Throws...),
		})
	}

	return target, diags
}

// buildParameters builds a target per parameter. ok is false when any parameter failed.
func (r *Resolver) buildParameters(decl *models.Declaration, params []models.Parameter, kind models.MemberKind, owner string, line int, diags *errors.Diagnostics) ([]*models.VariableInjectionTarget, bool) {
	out := make([]*models.VariableInjectionTarget, 0, len(params))
	ok := true
	for _, p := range params {
		variable, varDiags := r.buildVariable(decl, parameterVariable(p, kind, owner, line))
		diags.Merge(varDiags)
		if variable == nil {
			ok = false
			continue
		}
		out = append(out, variable)
	}
	return out, ok
}

// ancestorKey memoizes nearest-ancestor lookups
type ancestorKey struct {
	id          models.DeclID
	onlyParents bool
}

// NearestInjectedAncestor returns the closest declaration in decl's superclass chain that
// declares injected fields or methods. With onlyParents false decl itself is considered
// first. It returns NoDecl when there is none.
func (r *Resolver) NearestInjectedAncestor(decl *models.Declaration, onlyParents bool) models.DeclID {
	return r.nearestInjectedAncestor(decl, onlyParents, make(map[models.DeclID]bool))
}

func (r *Resolver) nearestInjectedAncestor(decl *models.Declaration, onlyParents bool, visiting map[models.DeclID]bool) models.DeclID {
	if decl == nil || visiting[decl.ID] {
		return models.NoDecl
	}
	key := ancestorKey{id: decl.ID, onlyParents: onlyParents}
	if id, ok := r.ancestors.Get(key); ok {
		return id
	}
	visiting[decl.ID] = true

	var found models.DeclID
	switch {
	case !onlyParents && r.hasInjectedMembers(decl):
		found = decl.ID
	default:
		found = r.nearestInjectedAncestor(r.table.SuperOf(decl), false, visiting)
	}

	r.ancestors.Add(key, found)
	return found
}

// isOverride reports whether method overrides an injected, non-private method of an ancestor
func (r *Resolver) isOverride(decl *models.Declaration, method models.Method) bool {
	visited := map[models.DeclID]bool{decl.ID: true}
	for ancestor := r.table.SuperOf(decl); ancestor != nil && !visited[ancestor.ID]; ancestor = r.table.SuperOf(ancestor) {
		visited[ancestor.ID] = true
		for _, candidate := range injectedMethods(ancestor) {
			if candidate.Visibility != models.VisibilityPrivate && sameSignature(candidate, method) {
				return true
			}
		}
	}
	return false
}

func sameSignature(a, b models.Method) bool {
	if a.Name != b.Name || len(a.Parameters) != len(b.Parameters) {
		return false
	}
	for i := range a.Parameters {
		if a.Parameters[i].Type.String() != b.Parameters[i].Type.String() {
			return false
		}
	}
	return true
}
