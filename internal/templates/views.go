package templates

import (
	"strconv"
	"strings"

	"github.com/toyz/injectgen/internal/models"
)

var classSuppressions = []string{"ClassName", "RedundantVisibilityModifier"}

// primitiveClasses maps primitive names to the classes requested from the scope
var primitiveClasses = map[string]string{
	"boolean": "kotlin.Boolean",
	"byte":    "kotlin.Byte",
	"short":   "kotlin.Short",
	"int":     "kotlin.Int",
	"long":    "kotlin.Long",
	"char":    "kotlin.Char",
	"float":   "kotlin.Float",
	"double":  "kotlin.Double",
}

func useClass(name string, im *ImportManager) string {
	if boxed, ok := primitiveClasses[name]; ok {
		name = boxed
	}
	return im.Use(name)
}

type fileView struct {
	Version string
	Source  string
	Package string
	Imports []string
}

type lookupView struct {
	Var  string
	Call string // scope call without receiver
	Type string // cast target
}

type catchView struct {
	Var  string
	Type string
}

type fieldView struct {
	Member string
	Call   string
	Cast   string
}

type invokeView struct {
	Lookups []lookupView
	Member  string
	Args    []string
	Catches []catchView
}

type flagView struct {
	Name  string
	Value bool
}

type factoryView struct {
	Visibility     string
	Name           string
	ReturnType     string
	ClassSuppress  []string
	MethodSuppress []string

	FactoryType        string
	MemberInjectorType string
	ScopeType          string
	BooleanType        string
	RuntimeException   string

	Wrap          bool
	ShadowScope   bool
	Receiver      string
	Return        string
	InjectorType  string
	InjectorInit  string
	InjectorScope string

	Lookups     []lookupView
	Construct   string
	Catches     []catchView
	TargetScope string
	Flags       []flagView
}

type injectorView struct {
	Visibility     string
	Name           string
	TargetType     string
	ClassSuppress  []string
	InjectSuppress []string

	MemberInjectorType string
	ScopeType          string
	RuntimeException   string

	SuperType string
	SuperInit string
	Fields    []fieldView
	Methods   []invokeView
}

func (r *Renderer) factoryView(plan *models.GenerationPlan, im *ImportManager) factoryView {
	im.Use(suppressClass)
	v := factoryView{
		Visibility:    plan.Visibility.String(),
		Name:          identifier(plan.Name),
		ReturnType:    typeName(plan.SourceRef, plan.SourceType, im),
		ClassSuppress: classSuppressions,
		FactoryType:   im.Use(factoryClass),
		ScopeType:     im.Use(scopeClass),
		BooleanType:   im.Use(booleanClass),
		Wrap:          plan.WrapScopeAccessInBlock,
		ShadowScope:   plan.UseTargetScope && !plan.WrapScopeAccessInBlock,
		Receiver:      "scope.",
		Return:        "return ",
		InjectorScope: "scope",
	}
	if v.Wrap {
		v.Receiver = ""
		v.Return = ""
		v.InjectorScope = "this@with"
	}

	if plan.UncheckedCast {
		v.MethodSuppress = append(v.MethodSuppress, "UNCHECKED_CAST")
	}
	if v.ShadowScope {
		v.MethodSuppress = append(v.MethodSuppress, "NAME_SHADOWING")
	}

	if plan.DelegateClass != "" {
		v.MemberInjectorType = im.Use(memberInjectorClass)
		v.InjectorType = typeName(plan.DelegateRef, plan.DelegateClass, im)
		v.InjectorInit = r.injectorClass(plan, im)
	}

	for _, step := range plan.Steps {
		switch step.Kind {
		case models.StepLookup:
			v.Lookups = append(v.Lookups, lookupLine(step, im))
		case models.StepConstruct:
			v.Construct = im.Use(plan.Source)
			if !step.Object {
				v.Construct += "(" + strings.Join(step.Args, ", ") + ")"
			}
			v.Catches = catches(step.Guard, im)
		}
	}
	if len(v.Catches) > 0 {
		v.RuntimeException = im.Use(runtimeExceptionClass)
	}

	switch plan.TargetScope.Kind {
	case models.TargetScopeRoot:
		v.TargetScope = "scope.rootScope"
	case models.TargetScopeParent:
		v.TargetScope = "scope.getParentScope(" + im.Use(plan.TargetScope.ScopeName) + "::class.java)"
	default:
		v.TargetScope = "scope"
	}

	v.Flags = []flagView{
		{Name: "hasScopeAnnotation", Value: plan.HasScopeAnnotation},
		{Name: "hasSingletonAnnotation", Value: plan.HasSingletonAnnotation},
		{Name: "hasReleasableAnnotation", Value: plan.HasReleasableAnnotation},
		{Name: "hasProvidesSingletonAnnotation", Value: plan.HasProvidesSingletonAnnotation},
		{Name: "hasProvidesReleasableAnnotation", Value: plan.HasProvidesReleasableAnnotation},
	}
	return v
}

func (r *Renderer) injectorView(plan *models.GenerationPlan, im *ImportManager) injectorView {
	im.Use(suppressClass)
	v := injectorView{
		Visibility:         plan.Visibility.String(),
		Name:               identifier(plan.Name),
		TargetType:         typeName(plan.SourceRef, plan.SourceType, im),
		ClassSuppress:      classSuppressions,
		MemberInjectorType: im.Use(memberInjectorClass),
		ScopeType:          im.Use(scopeClass),
	}
	if plan.UncheckedCast {
		v.InjectSuppress = []string{"UNCHECKED_CAST"}
	}

	if plan.DelegateClass != "" {
		v.SuperType = typeName(plan.DelegateRef, plan.DelegateClass, im)
		v.SuperInit = r.injectorClass(plan, im)
	}

	var pending []lookupView
	hasCatches := false
	for _, step := range plan.Steps {
		switch step.Kind {
		case models.StepAssignField:
			field := fieldView{Member: step.Member, Call: scopeCall(step.Lookup, im)}
			if step.Lookup.Generic && step.Lookup.Kind == models.InjectionInstance {
				field.Cast = typeName(step.Lookup.Display, step.Lookup.DisplayType, im)
			}
			v.Fields = append(v.Fields, field)
		case models.StepLookup:
			pending = append(pending, lookupLine(step, im))
		case models.StepInvokeMethod:
			invoke := invokeView{
				Lookups: pending,
				Member:  step.Member,
				Args:    step.Args,
				Catches: catches(step.Guard, im),
			}
			hasCatches = hasCatches || len(invoke.Catches) > 0
			v.Methods = append(v.Methods, invoke)
			pending = nil
		}
	}
	if hasCatches {
		v.RuntimeException = im.Use(runtimeExceptionClass)
	}
	return v
}

// injectorClass returns how the member injector delegated to is written
func (r *Renderer) injectorClass(plan *models.GenerationPlan, im *ImportManager) string {
	pkg, _ := r.split(plan.DelegateClass)
	simple := plan.DelegateInjector
	if pkg != "" {
		simple = strings.TrimPrefix(simple, pkg+".")
	}
	return identifier(im.UseParts(pkg, []string{simple}))
}

// identifier quotes generated names of nested classes, which contain '$'
func identifier(name string) string {
	if strings.Contains(name, "$") {
		return "`" + name + "`"
	}
	return name
}

func lookupLine(step models.Step, im *ImportManager) lookupView {
	return lookupView{
		Var:  step.Var,
		Call: scopeCall(step.Lookup, im),
		Type: typeName(step.Lookup.Display, step.Lookup.DisplayType, im),
	}
}

// scopeCall prints getInstance, getLazy or getProvider for the lookup
func scopeCall(lookup *models.Lookup, im *ImportManager) string {
	call := lookup.Kind.ScopeMethod() + "(" + useClass(lookup.Class, im) + "::class.java"
	if lookup.Qualifier != nil {
		call += ", " + strconv.Quote(*lookup.Qualifier)
	}
	return call + ")"
}

func catches(guard []string, im *ImportManager) []catchView {
	if len(guard) == 0 {
		return nil
	}
	out := make([]catchView, len(guard))
	for i, exception := range guard {
		out[i] = catchView{Var: "e" + strconv.Itoa(i), Type: im.Use(exception)}
	}
	return out
}

// typeName prints ref through the import manager. Type parameters that were erased keep
// their rendered bound verbatim. fallback is used when ref is missing.
func typeName(ref *models.TypeRef, fallback string, im *ImportManager) string {
	if ref == nil {
		return im.Use(fallback)
	}
	if ref.Star {
		return "*"
	}

	var b strings.Builder
	if ref.TypeParam {
		b.WriteString(ref.Name)
	} else {
		b.WriteString(useClass(ref.Name, im))
	}
	if len(ref.Args) > 0 {
		b.WriteByte('<')
		for i, arg := range ref.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(typeName(arg, models.TopType, im))
		}
		b.WriteByte('>')
	}
	if ref.Nullable {
		b.WriteByte('?')
	}
	return b.String()
}
