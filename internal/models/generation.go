package models

// PlanKind distinguishes factory plans from member-injector plans
type PlanKind int

const (
	PlanFactory PlanKind = iota
	PlanMemberInjector
)

// String returns the plan kind name
func (k PlanKind) String() string {
	if k == PlanMemberInjector {
		return "MemberInjector"
	}
	return "Factory"
}

// MarshalText implements encoding.TextMarshaler
func (k PlanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// TargetScopeKind is how a factory resolves the scope it creates instances in
type TargetScopeKind int

const (
	TargetScopeIdentity TargetScopeKind = iota
	TargetScopeRoot
	TargetScopeParent
)

// String returns the target scope kind name
func (k TargetScopeKind) String() string {
	switch k {
	case TargetScopeRoot:
		return "root"
	case TargetScopeParent:
		return "parent"
	default:
		return "identity"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k TargetScopeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// TargetScope is the resolved target-scope step of a factory
type TargetScope struct {
	Kind      TargetScopeKind `json:"kind" yaml:"kind"`
	ScopeName string          `json:"scope_name,omitempty" yaml:"scope_name,omitempty"`
}

// StepKind enumerates generation instructions
type StepKind int

const (
	StepResolveTargetScope StepKind = iota
	StepLookup
	StepConstruct
	StepDelegateInjector
	StepAssignField
	StepInvokeMethod
)

// String returns the step kind name
func (k StepKind) String() string {
	switch k {
	case StepResolveTargetScope:
		return "resolve-target-scope"
	case StepLookup:
		return "lookup"
	case StepConstruct:
		return "construct"
	case StepDelegateInjector:
		return "delegate-injector"
	case StepAssignField:
		return "assign-field"
	case StepInvokeMethod:
		return "invoke-method"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k StepKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Lookup is one scope call
type Lookup struct {
	Kind        InjectionKind `json:"kind" yaml:"kind"`
	Class       string        `json:"class" yaml:"class"`               // erased class requested from the scope
	DisplayType string        `json:"display_type" yaml:"display_type"` // declared type with bound type parameters
	Qualifier   *string       `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Generic     bool          `json:"generic,omitempty" yaml:"generic,omitempty"` // display type is parameterized
	Display     *TypeRef      `json:"-" yaml:"-"`                                 // DisplayType as a reference, for renderers
}

// Step is one ordered generation instruction
type Step struct {
	Kind   StepKind `json:"kind" yaml:"kind"`
	Var    string   `json:"var,omitempty" yaml:"var,omitempty"`       // variable bound by a lookup
	Lookup *Lookup  `json:"lookup,omitempty" yaml:"lookup,omitempty"` // lookup and assign-field
	Member string   `json:"member,omitempty" yaml:"member,omitempty"` // field, method or constructed class
	Args   []string `json:"args,omitempty" yaml:"args,omitempty"`
	Guard  []string `json:"guard,omitempty" yaml:"guard,omitempty"` // exception types caught and rethrown, in order
	Object bool     `json:"object,omitempty" yaml:"object,omitempty"`
}

// GenerationPlan is the abstract description of one generated artifact
type GenerationPlan struct {
	Kind           PlanKind    `json:"kind" yaml:"kind"`
	Package        string      `json:"package" yaml:"package"`
	Name           string      `json:"name" yaml:"name"`
	QualifiedName  string      `json:"qualified_name" yaml:"qualified_name"`
	Source         string      `json:"source" yaml:"source"`
	SourceType     string      `json:"source_type" yaml:"source_type"` // class as referenced by the artifact, star-projected when generic
	Visibility     Visibility  `json:"visibility" yaml:"visibility"`
	TargetScope    TargetScope `json:"target_scope" yaml:"target_scope"`
	UseTargetScope bool        `json:"use_target_scope,omitempty" yaml:"use_target_scope,omitempty"`

	HasScopeAnnotation              bool `json:"has_scope_annotation" yaml:"has_scope_annotation"`
	HasSingletonAnnotation          bool `json:"has_singleton_annotation" yaml:"has_singleton_annotation"`
	HasReleasableAnnotation         bool `json:"has_releasable_annotation" yaml:"has_releasable_annotation"`
	HasProvidesSingletonAnnotation  bool `json:"has_provides_singleton_annotation" yaml:"has_provides_singleton_annotation"`
	HasProvidesReleasableAnnotation bool `json:"has_provides_releasable_annotation" yaml:"has_provides_releasable_annotation"`

	DelegateInjector       string `json:"delegate_injector,omitempty" yaml:"delegate_injector,omitempty"` // qualified name of the injector delegated to
	DelegateClass          string `json:"delegate_class,omitempty" yaml:"delegate_class,omitempty"`
	WrapScopeAccessInBlock bool   `json:"wrap_scope_access_in_block,omitempty" yaml:"wrap_scope_access_in_block,omitempty"`
	UncheckedCast          bool   `json:"unchecked_cast,omitempty" yaml:"unchecked_cast,omitempty"` // a lookup is cast to a parameterized type

	SourceRef   *TypeRef `json:"-" yaml:"-"` // SourceType as a reference, for renderers
	DelegateRef *TypeRef `json:"-" yaml:"-"` // DelegateClass star-projected, for renderers

	Steps []Step `json:"steps" yaml:"steps"`
}

// LookupSteps returns the lookup steps in order
func (p *GenerationPlan) LookupSteps() []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Kind == StepLookup {
			out = append(out, s)
		}
	}
	return out
}

// StepsOf returns the steps of the given kind in order
func (p *GenerationPlan) StepsOf(kind StepKind) []Step {
	var out []Step
	for _, s := range p.Steps {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
