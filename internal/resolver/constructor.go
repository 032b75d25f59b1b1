package resolver

import (
	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

// Outcome of constructor selection
type Outcome int

const (
	OutcomeSkip Outcome = iota
	OutcomeTarget
	OutcomeError
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeTarget:
		return "target"
	case OutcomeError:
		return "error"
	default:
		return "skip"
	}
}

// Selection is the result of constructor selection for one declaration
type Selection struct {
	Outcome     Outcome
	Target      *models.ConstructorInjectionTarget
	Reason      string // why the declaration was skipped
	Diagnostics errors.Diagnostics
}

const cannotCreateFactoryMessage = " Toothpick can't create a factory for it." +
	" If this class is itself a DI entry point (i.e. you call TP.inject(this) at some point), " +
	" then you can remove this warning by adding @SuppressWarnings(\"Injectable\") to the class." +
	" A typical example is a class using injection to assign its fields, that calls TP.inject(this)," +
	" but it needs a parameter for its constructor and this parameter is not injectable."

func skip(reason string, diags errors.Diagnostics) Selection {
	return Selection{Outcome: OutcomeSkip, Reason: reason, Diagnostics: diags}
}

func fail(diags errors.Diagnostics) Selection {
	return Selection{Outcome: OutcomeError, Diagnostics: diags}
}

// SelectConstructor decides whether decl gets a factory and which constructor backs it:
// the constructor of an @InjectConstructor class, the single @Inject constructor, or in
// relaxed mode a non-private constructor without parameters.
func (r *Resolver) SelectConstructor(decl *models.Declaration) Selection {
	if r.IsExcluded(decl) {
		return skip("excluded by filters", nil)
	}
	if !isClassLike(decl) {
		return skip(decl.Kind.String()+" declarations are not constructible", nil)
	}

	constructors := effectiveConstructors(decl)

	if decl.HasAnnotation(annotations.InjectConstructor) {
		if len(constructors) != 1 || models.HasAnnotation(constructors[0].Annotations, annotations.Inject) {
			line := 0
			if len(constructors) > 0 {
				line = constructors[0].Line
			}
			var diags errors.Diagnostics
			diags.Add(errors.Errorf(errors.InvalidInjectConstructorErrorCode, anchorOf(decl, constructorName, "constructor"),
				"Class %s is annotated with @InjectConstructor. Therefore, It must have one unique constructor and it should not be annotated with @Inject.",
				decl.Name).WithLocation(locationOf(decl, line)))
			return fail(diags)
		}
		return r.selectInjected(decl, constructors[0])
	}

	injected := injectedConstructors(decl)
	switch {
	case len(injected) > 1:
		var diags errors.Diagnostics
		diags.Add(errors.Errorf(errors.MultipleInjectedConstructorsErrorCode, anchorOf(decl, constructorName, "constructor"),
			"Class %s cannot have more than one @Inject annotated constructor.", decl.Name).
			WithLocation(locationOf(decl, injected[1].Line)))
		return fail(diags)
	case len(injected) == 1:
		return r.selectInjected(decl, injected[0])
	}

	return r.selectRelaxed(decl, constructors)
}

// effectiveConstructors returns the declared constructors, or the implicit public
// constructor without parameters when a class declares none
func effectiveConstructors(decl *models.Declaration) []models.Constructor {
	if len(decl.Constructors) > 0 || decl.Kind == models.KindObject {
		return decl.Constructors
	}
	return []models.Constructor{{Visibility: models.VisibilityPublic, Line: decl.Line}}
}

func (r *Resolver) selectInjected(decl *models.Declaration, ctor models.Constructor) Selection {
	var diags errors.Diagnostics
	if diag := r.validateInjectedConstructor(decl, ctor); diag != nil {
		diags.Add(diag)
		return fail(diags)
	}

	parameters, ok := r.buildParameters(decl, ctor.Parameters, models.MemberConstructorParameter, constructorName, ctor.Line, &diags)
	if !ok {
		return fail(diags)
	}

	if !canHaveFactory(decl) {
		diags.Add(errors.Errorf(errors.AbstractOrPrivateInjectedClassErrorCode, anchorOf(decl, "", "class"),
			"The class %s is abstract or private. It cannot have an injected constructor.", decl.Name).
			WithLocation(locationOf(decl, 0)))
		return fail(diags)
	}

	target, targetDiags := r.newTarget(decl, parameters, ctor.Throws)
	diags.Merge(targetDiags)
	if diags.HasErrors() {
		return fail(diags)
	}
	return Selection{Outcome: OutcomeTarget, Target: target, Diagnostics: diags}
}

func (r *Resolver) selectRelaxed(decl *models.Declaration, constructors []models.Constructor) Selection {
	if decl.Abstract || r.privateInChain(decl) != nil {
		return skip("abstract or private classes are not constructible", nil)
	}

	triggered := decl.HasAnnotation(annotations.ProvidesSingleton) ||
		r.hasInjectedMembers(decl) ||
		r.hasScopeAnnotation(decl)
	if !triggered {
		return skip("no injected constructor, injected member or scope annotation", nil)
	}

	// scope markers are cross-checked before any constructor is considered
	scopeName, diags := r.ScopeName(decl)
	diags.Merge(r.checkScopeMarkers(decl, scopeName))
	if diags.HasErrors() {
		return fail(diags)
	}

	if decl.Kind == models.KindObject {
		return r.relaxedTarget(decl)
	}

	for _, ctor := range constructors {
		if len(ctor.Parameters) > 0 {
			continue
		}
		if ctor.Visibility == models.VisibilityPrivate {
			return r.noFactory(decl, ctor.Line,
				"The class %s has a private default constructor. "+cannotCreateFactoryMessage, decl.Name)
		}
		return r.relaxedTarget(decl)
	}

	return r.noFactory(decl, 0,
		"The class %s has injected members or a scope annotation but has no "+
			"@Inject annotated (non-private) constructor  nor a non-private default constructor. "+
			cannotCreateFactoryMessage, decl.Name)
}

func (r *Resolver) relaxedTarget(decl *models.Declaration) Selection {
	target, diags := r.newTarget(decl, nil, nil)
	if diags.HasErrors() {
		return fail(diags)
	}
	return Selection{Outcome: OutcomeTarget, Target: target, Diagnostics: diags}
}

// noFactory reports that relaxed mode cannot build decl. The severity follows the missing
// factory policy; @SuppressWarnings("injectable") silences the report.
func (r *Resolver) noFactory(decl *models.Declaration, line int, format string, args ...interface{}) Selection {
	const reason = "no usable constructor for relaxed factory"
	if annotations.IsSuppressed(decl.Annotations, annotations.SuppressInjectable) {
		return skip(reason, nil)
	}

	var diags errors.Diagnostics
	diags.Add(errors.NewDiagnostic(r.opts.MissingFactoryPolicy.Severity(), errors.NoFactoryErrorCode,
		anchorOf(decl, constructorName, "constructor"), format, args...).WithLocation(locationOf(decl, line)))
	if diags.HasErrors() {
		return fail(diags)
	}
	return skip(reason, diags)
}

// newTarget resolves the scope of decl and assembles its ConstructorInjectionTarget
func (r *Resolver) newTarget(decl *models.Declaration, parameters []*models.VariableInjectionTarget, throws []string) (*models.ConstructorInjectionTarget, errors.Diagnostics) {
	scopeName, diags := r.ScopeName(decl)
	diags.Merge(r.checkScopeMarkers(decl, scopeName))

	return &models.ConstructorInjectionTarget{
		BuiltClass:                      decl.ID,
		ScopeName:                       scopeName,
		HasSingletonAnnotation:          decl.HasAnnotation(annotations.Singleton),
		HasReleasableAnnotation:         decl.HasAnnotation(annotations.Releasable),
		HasProvidesSingletonAnnotation:  decl.HasAnnotation(annotations.ProvidesSingleton),
		HasProvidesReleasableAnnotation: decl.HasAnnotation(annotations.ProvidesReleasable),
		Parameters:                      parameters,
		SuperClassThatNeedsInjection:    r.NearestInjectedAncestor(decl, false),
		IsObject:                        decl.Kind == models.KindObject,
		ThrowsChecked:                   len(throws) > 0,
		CheckedExceptionTypes:           append([]string(nil), throws...),
	}, diags
}
