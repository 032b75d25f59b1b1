package models

import (
	"fmt"
	"strings"
)

// Visibility represents the declared visibility of a declaration or member
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityInternal
	VisibilityPackage
	VisibilityProtected
	VisibilityPrivate
)

// String returns the source keyword for the visibility
func (v Visibility) String() string {
	switch v {
	case VisibilityInternal:
		return "internal"
	case VisibilityPackage:
		return "package"
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	default:
		return "public"
	}
}

// ParseVisibility converts a keyword into a Visibility. Empty means public.
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "public":
		return VisibilityPublic, nil
	case "internal":
		return VisibilityInternal, nil
	case "package", "package-private", "default":
		return VisibilityPackage, nil
	case "protected":
		return VisibilityProtected, nil
	case "private":
		return VisibilityPrivate, nil
	}
	return VisibilityPublic, fmt.Errorf("unknown visibility %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (v Visibility) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// DeclKind is the kind of a declaration in the table
type DeclKind int

const (
	KindClass DeclKind = iota
	KindInterface
	KindObject
	KindEnum
	KindAnnotation
	KindTypeAlias
)

// String returns the fixture keyword for the kind
func (k DeclKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindObject:
		return "object"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	case KindTypeAlias:
		return "typealias"
	default:
		return "class"
	}
}

// ParseDeclKind converts a fixture keyword into a DeclKind. Empty means class.
func ParseDeclKind(s string) (DeclKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "class":
		return KindClass, nil
	case "interface":
		return KindInterface, nil
	case "object":
		return KindObject, nil
	case "enum":
		return KindEnum, nil
	case "annotation":
		return KindAnnotation, nil
	case "typealias", "alias":
		return KindTypeAlias, nil
	}
	return KindClass, fmt.Errorf("unknown declaration kind %q", s)
}

// TopType is substituted for unbounded type parameters when erasing
const TopType = "kotlin.Any"

var primitiveTypes = map[string]bool{
	"boolean": true,
	"byte":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"char":    true,
	"float":   true,
	"double":  true,
}

// IsPrimitiveName reports whether name denotes a value type with no reference representation
func IsPrimitiveName(name string) bool {
	return primitiveTypes[name]
}

// TypeRef is a resolved reference to a type as written in source
type TypeRef struct {
	Name      string     // fully-qualified class name, type parameter name or primitive
	Args      []*TypeRef // type arguments in declaration order
	TypeParam bool       // Name refers to a type parameter of the enclosing declaration
	Star      bool       // star projection / unbounded wildcard
	Nullable  bool
}

// IsPrimitive reports whether the reference is a primitive
func (t *TypeRef) IsPrimitive() bool {
	return t != nil && !t.TypeParam && !t.Star && len(t.Args) == 0 && IsPrimitiveName(t.Name)
}

// HasArgs reports whether the reference carries type arguments
func (t *TypeRef) HasArgs() bool {
	return t != nil && len(t.Args) > 0
}

// String renders the reference the way it is written in source
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	if t.Star {
		return "*"
	}
	var b strings.Builder
	b.WriteString(t.Name)
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.String())
		}
		b.WriteByte('>')
	}
	if t.Nullable {
		b.WriteByte('?')
	}
	return b.String()
}

// Clone returns a deep copy of the reference
func (t *TypeRef) Clone() *TypeRef {
	if t == nil {
		return nil
	}
	c := *t
	if len(t.Args) > 0 {
		c.Args = make([]*TypeRef, len(t.Args))
		for i, arg := range t.Args {
			c.Args[i] = arg.Clone()
		}
	}
	return &c
}

// Equal reports structural equality of two references
func (t *TypeRef) Equal(o *TypeRef) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Name != o.Name || t.TypeParam != o.TypeParam || t.Star != o.Star || t.Nullable != o.Nullable || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// PackageOf returns everything before the last dot of a qualified name
func PackageOf(qualifiedName string) string {
	if i := strings.LastIndex(qualifiedName, "."); i >= 0 {
		return qualifiedName[:i]
	}
	return ""
}

// SimpleNameOf returns the last segment of a dotted name
func SimpleNameOf(qualifiedName string) string {
	if i := strings.LastIndex(qualifiedName, "."); i >= 0 {
		return qualifiedName[i+1:]
	}
	return qualifiedName
}
