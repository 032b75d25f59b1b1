// Package generator turns resolved injection targets into generation plans: ordered,
// named instructions that a renderer prints as factory and member injector sources.
// Plans depend only on their inputs, so unchanged declarations yield identical plans.
package generator

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
	"github.com/toyz/injectgen/internal/resolver"
)

// Options controls plan emission
type Options struct {
	WrapScopeAccessInBlock bool // render factory bodies inside with(getTargetScope(scope)) { ... }
}

// Generator implements the PlanGenerator interface
type Generator struct {
	table  *models.Table
	opts   Options
	logger *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the structured logger used for debug traces
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a plan generator over table
func NewGenerator(table *models.Table, opts Options, options ...Option) *Generator {
	g := &Generator{
		table:  table,
		opts:   opts,
		logger: zap.NewNop(),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Generate returns the plans of one resolution result: the factory plan first, then the
// member injector plan. Failed or skipped results yield no plan.
func (g *Generator) Generate(result *resolver.Result) ([]*models.GenerationPlan, error) {
	if result == nil || result.Failed() {
		return nil, nil
	}

	var plans []*models.GenerationPlan
	if result.Constructor != nil {
		plan, err := g.FactoryPlan(result.Constructor)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if result.Members != nil {
		plan, err := g.MemberInjectorPlan(result.Members)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	g.logger.Debug("generated plans",
		zap.String("declaration", result.Declaration.Name),
		zap.Int("plans", len(plans)),
	)
	return plans, nil
}

// FactoryPlan builds the plan of the factory for target
func (g *Generator) FactoryPlan(target *models.ConstructorInjectionTarget) (*models.GenerationPlan, error) {
	decl := g.table.Get(target.BuiltClass)
	if decl == nil {
		return nil, errors.WrapGenerateError("factory", fmt.Errorf("unknown declaration id %d", target.BuiltClass))
	}
	erase := newEraser(g.table, decl)

	plan := g.newPlan(models.PlanFactory, decl, FactoryName(decl))
	plan.TargetScope = targetScope(target.ScopeName)
	plan.HasScopeAnnotation = target.HasScope()
	plan.HasSingletonAnnotation = target.HasSingletonAnnotation
	plan.HasReleasableAnnotation = target.HasReleasableAnnotation
	plan.HasProvidesSingletonAnnotation = target.HasProvidesSingletonAnnotation
	plan.HasProvidesReleasableAnnotation = target.HasProvidesReleasableAnnotation
	plan.WrapScopeAccessInBlock = g.opts.WrapScopeAccessInBlock
	plan.UseTargetScope = len(target.Parameters) > 0 || target.SuperClassThatNeedsInjection != models.NoDecl

	if plan.UseTargetScope {
		plan.Steps = append(plan.Steps, models.Step{Kind: models.StepResolveTargetScope})
	}

	args := make([]string, 0, len(target.Parameters))
	for i, parameter := range target.Parameters {
		name := paramVar(i + 1)
		lookup := erase.lookup(parameter)
		plan.UncheckedCast = plan.UncheckedCast || lookup.Generic
		plan.Steps = append(plan.Steps, models.Step{Kind: models.StepLookup, Var: name, Lookup: lookup})
		args = append(args, name)
	}

	plan.Steps = append(plan.Steps, models.Step{
		Kind:   models.StepConstruct,
		Member: decl.Name,
		Args:   args,
		Guard:  append([]string(nil), target.CheckedExceptionTypes...),
		Object: target.IsObject,
	})

	if err := g.delegate(plan, target.SuperClassThatNeedsInjection); err != nil {
		return nil, err
	}
	return plan, nil
}

// MemberInjectorPlan builds the plan of the member injector for target. Methods that
// override an injected ancestor method are left to the ancestor's injector.
func (g *Generator) MemberInjectorPlan(target *models.MemberInjectionTarget) (*models.GenerationPlan, error) {
	decl := g.table.Get(target.TargetClass)
	if decl == nil {
		return nil, errors.WrapGenerateError("member injector", fmt.Errorf("unknown declaration id %d", target.TargetClass))
	}
	erase := newEraser(g.table, decl)

	plan := g.newPlan(models.PlanMemberInjector, decl, MemberInjectorName(decl))
	if err := g.delegate(plan, target.SuperClassThatNeedsInjection); err != nil {
		return nil, err
	}

	for _, field := range target.Fields {
		plan.Steps = append(plan.Steps, models.Step{
			Kind:   models.StepAssignField,
			Member: field.Target.MemberName,
			Lookup: erase.lookup(field.Target),
		})
	}

	n := 0
	for _, method := range target.Methods {
		if method.IsOverride {
			continue
		}
		args := make([]string, 0, len(method.Parameters))
		for _, parameter := range method.Parameters {
			n++
			name := paramVar(n)
			lookup := erase.lookup(parameter)
			plan.UncheckedCast = plan.UncheckedCast || lookup.Generic
			plan.Steps = append(plan.Steps, models.Step{Kind: models.StepLookup, Var: name, Lookup: lookup})
			args = append(args, name)
		}
		plan.Steps = append(plan.Steps, models.Step{
			Kind:   models.StepInvokeMethod,
			Member: method.MethodName,
			Args:   args,
			Guard:  append([]string(nil), method.CheckedExceptionTypes...),
		})
	}
	return plan, nil
}

func (g *Generator) newPlan(kind models.PlanKind, decl *models.Declaration, name string) *models.GenerationPlan {
	source := StarProjected(decl)
	return &models.GenerationPlan{
		Kind:          kind,
		Package:       decl.Package,
		Name:          name,
		QualifiedName: QualifiedName(decl.Package, name),
		Source:        decl.Name,
		SourceType:    source.String(),
		SourceRef:     source,
		Visibility:    GeneratedVisibility(g.table, decl),
		Steps:         make([]models.Step, 0),
	}
}

// delegate records the injector of ancestor and adds the delegation step
func (g *Generator) delegate(plan *models.GenerationPlan, ancestor models.DeclID) error {
	if ancestor == models.NoDecl {
		return nil
	}
	super := g.table.Get(ancestor)
	if super == nil {
		return errors.WrapGenerateError(plan.Name, fmt.Errorf("unknown ancestor id %d", ancestor))
	}
	plan.DelegateClass = super.Name
	plan.DelegateRef = StarProjected(super)
	plan.DelegateInjector = QualifiedName(super.Package, MemberInjectorName(super))

	step := models.Step{Kind: models.StepDelegateInjector, Member: plan.DelegateInjector}
	if plan.Kind == models.PlanMemberInjector {
		plan.Steps = append([]models.Step{step}, plan.Steps...)
	} else {
		plan.Steps = append(plan.Steps, step)
	}
	return nil
}

func targetScope(scopeName *string) models.TargetScope {
	switch {
	case scopeName == nil:
		return models.TargetScope{Kind: models.TargetScopeIdentity}
	case *scopeName == annotations.Singleton:
		return models.TargetScope{Kind: models.TargetScopeRoot}
	default:
		return models.TargetScope{Kind: models.TargetScopeParent, ScopeName: *scopeName}
	}
}

func paramVar(n int) string {
	return "param" + strconv.Itoa(n)
}

// lookup describes the scope call for v with type parameters erased
func (e *eraser) lookup(v *models.VariableInjectionTarget) *models.Lookup {
	display := e.Erase(v.DisplayType)
	lookup := &models.Lookup{
		Kind:        v.Kind,
		Class:       e.Class(v.InjectedType),
		DisplayType: display.String(),
		Generic:     display.HasArgs(),
		Display:     display,
	}
	if v.Qualifier != nil {
		qualifier := *v.Qualifier
		lookup.Qualifier = &qualifier
	}
	return lookup
}
