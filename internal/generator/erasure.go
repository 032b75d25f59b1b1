package generator

import "github.com/toyz/injectgen/internal/models"

// eraser replaces the type parameters visible from one declaration by their first
// bound, or by the top type when unbounded. Erased parameters stay TypeParam references
// whose name is the rendered bound, so renderers print them verbatim.
type eraser struct {
	params map[string]models.TypeParam
}

func newEraser(table *models.Table, decl *models.Declaration) *eraser {
	params := make(map[string]models.TypeParam)
	scopes := append([]*models.Declaration{decl}, table.EnclosingChain(decl)...)
	for _, scope := range scopes {
		for _, tp := range scope.TypeParams {
			if _, shadowed := params[tp.Name]; !shadowed {
				params[tp.Name] = tp
			}
		}
	}
	return &eraser{params: params}
}

// Erase returns a copy of ref with every type parameter replaced
func (e *eraser) Erase(ref *models.TypeRef) *models.TypeRef {
	return e.erase(ref, make(map[string]bool))
}

func (e *eraser) erase(ref *models.TypeRef, visiting map[string]bool) *models.TypeRef {
	if ref == nil {
		return nil
	}
	if ref.Star {
		return ref.Clone()
	}
	if !ref.TypeParam {
		out := &models.TypeRef{Name: ref.Name, Nullable: ref.Nullable}
		for _, arg := range ref.Args {
			out.Args = append(out.Args, e.erase(arg, visiting))
		}
		return out
	}

	bound := e.bound(ref.Name, visiting)
	return &models.TypeRef{
		Name:      bound.String(),
		TypeParam: true,
		Nullable:  ref.Nullable && !bound.Nullable,
	}
}

// bound returns the erased first bound of the named parameter
func (e *eraser) bound(name string, visiting map[string]bool) *models.TypeRef {
	tp, ok := e.params[name]
	if !ok || len(tp.Bounds) == 0 || visiting[name] {
		return models.T(models.TopType)
	}
	visiting[name] = true
	defer delete(visiting, name)
	return e.erase(tp.Bounds[0], visiting)
}

// Class returns the class requested from the scope for ref: its own name, or the class
// of the first bound for a type parameter
func (e *eraser) Class(ref *models.TypeRef) string {
	seen := make(map[string]bool)
	for ref != nil && ref.TypeParam {
		tp, ok := e.params[ref.Name]
		if !ok || len(tp.Bounds) == 0 || seen[ref.Name] {
			return models.TopType
		}
		seen[ref.Name] = true
		ref = tp.Bounds[0]
	}
	if ref == nil {
		return models.TopType
	}
	return ref.Name
}

// StarProjected returns the class of decl with every type parameter star-projected
func StarProjected(decl *models.Declaration) *models.TypeRef {
	ref := models.T(decl.Name)
	for range decl.TypeParams {
		ref.Args = append(ref.Args, models.Star())
	}
	return ref
}
