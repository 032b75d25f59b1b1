package models

// InjectionKind tags how a variable is requested from the scope
type InjectionKind int

const (
	InjectionInstance InjectionKind = iota
	InjectionLazy
	InjectionProvider
)

// String returns the kind name
func (k InjectionKind) String() string {
	switch k {
	case InjectionLazy:
		return "Lazy"
	case InjectionProvider:
		return "Provider"
	default:
		return "Instance"
	}
}

// ScopeMethod returns the scope lookup used for the kind
func (k InjectionKind) ScopeMethod() string {
	switch k {
	case InjectionLazy:
		return "getLazy"
	case InjectionProvider:
		return "getProvider"
	default:
		return "getInstance"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k InjectionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MemberKind says which kind of member a variable target came from
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberConstructorParameter
	MemberMethodParameter
)

// VariableInjectionTarget is one constructor parameter, method parameter or field
// supplied by the scope.
type VariableInjectionTarget struct {
	Kind         InjectionKind
	MemberName   string
	MemberKind   MemberKind
	DeclaredType *TypeRef // as written, possibly a wrapper or alias
	InjectedType *TypeRef // requested class: wrapper argument, or the unwrapped alias target
	DisplayType  *TypeRef // type used for casts: the alias keeps its own arguments
	Qualifier    *string
}

// ConstructorInjectionTarget describes how a factory builds a class
type ConstructorInjectionTarget struct {
	BuiltClass                      DeclID
	ScopeName                       *string
	HasSingletonAnnotation          bool
	HasReleasableAnnotation         bool
	HasProvidesSingletonAnnotation  bool
	HasProvidesReleasableAnnotation bool
	Parameters                      []*VariableInjectionTarget
	SuperClassThatNeedsInjection    DeclID // non-owning; NoDecl when absent
	IsObject                        bool
	ThrowsChecked                   bool
	CheckedExceptionTypes           []string // declared on the constructor, in order
}

// HasScope reports whether a scope name was resolved
func (c *ConstructorInjectionTarget) HasScope() bool {
	return c.ScopeName != nil
}

// FieldInjectionTarget is one injected field
type FieldInjectionTarget struct {
	Target *VariableInjectionTarget
}

// MethodInjectionTarget is one injected method
type MethodInjectionTarget struct {
	MethodName            string
	IsOverride            bool
	Parameters            []*VariableInjectionTarget
	CheckedExceptionTypes []string
}

// MemberInjectionTarget groups everything a generated member injector needs
type MemberInjectionTarget struct {
	TargetClass                  DeclID
	Fields                       []FieldInjectionTarget
	Methods                      []MethodInjectionTarget
	SuperClassThatNeedsInjection DeclID
}

// NeedsInjector reports whether an injector must be generated: at least one field,
// one non-override method, or an ancestor to delegate to.
func (m *MemberInjectionTarget) NeedsInjector() bool {
	if m == nil {
		return false
	}
	if len(m.Fields) > 0 || m.SuperClassThatNeedsInjection != NoDecl {
		return true
	}
	for _, method := range m.Methods {
		if !method.IsOverride {
			return true
		}
	}
	return false
}
