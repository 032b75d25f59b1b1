package models

import "strings"

// DeclarationBuilder provides a fluent interface for building declarations, mostly in tests
type DeclarationBuilder struct {
	decl    *Declaration
	nested  []*DeclarationBuilder
	enclose string
}

// NewClass starts a class declaration. pkg is the package; name may contain dots for nested types.
func NewClass(pkg, name string) *DeclarationBuilder {
	return &DeclarationBuilder{
		decl: &Declaration{
			Name:        qualify(pkg, name),
			Package:     pkg,
			SimpleNames: strings.Split(name, "."),
			Kind:        KindClass,
			Enclosing:   NoDecl,
		},
	}
}

// NewAnnotationClass starts an annotation declaration
func NewAnnotationClass(pkg, name string) *DeclarationBuilder {
	return NewClass(pkg, name).Kind(KindAnnotation)
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// Kind sets the declaration kind
func (b *DeclarationBuilder) Kind(kind DeclKind) *DeclarationBuilder {
	b.decl.Kind = kind
	return b
}

// Visibility sets the declaration visibility
func (b *DeclarationBuilder) Visibility(v Visibility) *DeclarationBuilder {
	b.decl.Visibility = v
	return b
}

// Abstract marks the declaration abstract
func (b *DeclarationBuilder) Abstract() *DeclarationBuilder {
	b.decl.Abstract = true
	return b
}

// Inner marks a nested declaration as capturing its outer instance
func (b *DeclarationBuilder) Inner() *DeclarationBuilder {
	b.decl.Inner = true
	return b
}

// Extends sets the supertype
func (b *DeclarationBuilder) Extends(super *TypeRef) *DeclarationBuilder {
	b.decl.Super = super
	return b
}

// TypeParam adds a generic type parameter
func (b *DeclarationBuilder) TypeParam(name string, bounds ...*TypeRef) *DeclarationBuilder {
	b.decl.TypeParams = append(b.decl.TypeParams, TypeParam{Name: name, Bounds: bounds})
	return b
}

// Annotate attaches annotations
func (b *DeclarationBuilder) Annotate(annotations ...Annotation) *DeclarationBuilder {
	b.decl.Annotations = append(b.decl.Annotations, annotations...)
	return b
}

// Retention sets the retention of an annotation declaration
func (b *DeclarationBuilder) Retention(policy string) *DeclarationBuilder {
	b.decl.Retention = policy
	return b
}

// AliasOf makes the declaration a type alias of target
func (b *DeclarationBuilder) AliasOf(target *TypeRef) *DeclarationBuilder {
	b.decl.Kind = KindTypeAlias
	b.decl.AliasOf = target
	return b
}

// Constructor adds a constructor
func (b *DeclarationBuilder) Constructor(c Constructor) *DeclarationBuilder {
	b.decl.Constructors = append(b.decl.Constructors, c)
	return b
}

// Field adds a field
func (b *DeclarationBuilder) Field(f Field) *DeclarationBuilder {
	b.decl.Fields = append(b.decl.Fields, f)
	return b
}

// Method adds a method
func (b *DeclarationBuilder) Method(m Method) *DeclarationBuilder {
	b.decl.Methods = append(b.decl.Methods, m)
	return b
}

// Nested adds a nested declaration named relative to this one
func (b *DeclarationBuilder) Nested(simpleName string, configure func(*DeclarationBuilder)) *DeclarationBuilder {
	child := &DeclarationBuilder{
		decl: &Declaration{
			Name:        b.decl.Name + "." + simpleName,
			Package:     b.decl.Package,
			SimpleNames: append(append([]string{}, b.decl.SimpleNames...), simpleName),
			Kind:        KindClass,
			Enclosing:   NoDecl,
		},
		enclose: b.decl.Name,
	}
	if configure != nil {
		configure(child)
	}
	b.nested = append(b.nested, child)
	return b
}

// Build returns the declaration without nested declarations
func (b *DeclarationBuilder) Build() *Declaration {
	return b.decl
}

// AddTo inserts the declaration and its nested declarations into table
func (b *DeclarationBuilder) AddTo(table *Table) (DeclID, error) {
	if b.enclose != "" {
		if parent, ok := table.Lookup(b.enclose); ok {
			b.decl.Enclosing = parent.ID
		}
	}
	id, err := table.Add(b.decl)
	if err != nil {
		return NoDecl, err
	}
	for _, child := range b.nested {
		if _, err := child.AddTo(table); err != nil {
			return NoDecl, err
		}
	}
	return id, nil
}

// MustTable builds a table from builders and panics on error
func MustTable(builders ...*DeclarationBuilder) *Table {
	table := NewTable()
	for _, b := range builders {
		if _, err := b.AddTo(table); err != nil {
			panic(err)
		}
	}
	table.Freeze()
	return table
}

// T builds a class type reference
func T(name string, args ...*TypeRef) *TypeRef {
	return &TypeRef{Name: name, Args: args}
}

// P builds a type parameter reference
func P(name string) *TypeRef {
	return &TypeRef{Name: name, TypeParam: true}
}

// Star builds a star projection
func Star() *TypeRef {
	return &TypeRef{Star: true}
}

// A builds an annotation
func A(annotationType string, values ...string) Annotation {
	return Annotation{Type: annotationType, Values: values}
}
