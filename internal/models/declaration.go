package models

import (
	"fmt"
	"sort"
	"strings"
)

// DeclID indexes a declaration inside a Table
type DeclID int

// NoDecl marks an absent declaration reference
const NoDecl DeclID = -1

// Annotation is one annotation attached to a declaration, member or parameter
type Annotation struct {
	Type   string   `json:"type" yaml:"type"`                         // fully-qualified annotation class
	Values []string `json:"values,omitempty" yaml:"values,omitempty"` // positional literal values
}

// Value returns the first literal value or ""
func (a Annotation) Value() string {
	if len(a.Values) == 0 {
		return ""
	}
	return a.Values[0]
}

// TypeParam is a generic type parameter with its declared upper bounds
type TypeParam struct {
	Name   string
	Bounds []*TypeRef
}

// Parameter is a constructor or method parameter
type Parameter struct {
	Name        string
	Type        *TypeRef
	Annotations []Annotation
}

// Constructor is a declared constructor
type Constructor struct {
	Visibility  Visibility
	Parameters  []Parameter
	Annotations []Annotation
	Throws      []string // declared checked failures in declaration order
	Line        int
}

// Field is a declared field or property
type Field struct {
	Name        string
	Type        *TypeRef
	Visibility  Visibility
	Annotations []Annotation
	Line        int
}

// Method is a declared method
type Method struct {
	Name        string
	Visibility  Visibility
	Parameters  []Parameter
	Annotations []Annotation
	Throws      []string
	Line        int
}

// Declaration is the immutable, resolved view of one class-like declaration
type Declaration struct {
	ID           DeclID
	Name         string // fully-qualified dotted name, nested types included
	Package      string
	SimpleNames  []string // nesting path inside the package, outermost first
	Kind         DeclKind
	Visibility   Visibility
	Abstract     bool
	Inner        bool // nested class capturing an outer instance
	Enclosing    DeclID
	Super        *TypeRef
	TypeParams   []TypeParam
	Annotations  []Annotation
	Constructors []Constructor
	Fields       []Field
	Methods      []Method
	AliasOf      *TypeRef // target of a type alias
	Retention    string   // retention of annotation declarations
	File         string   // source document
	Line         int
}

// HasAnnotation reports whether an annotation of the given type is attached
func (d *Declaration) HasAnnotation(annotationType string) bool {
	return HasAnnotation(d.Annotations, annotationType)
}

// SimpleName returns the innermost simple name
func (d *Declaration) SimpleName() string {
	if len(d.SimpleNames) == 0 {
		return SimpleNameOf(d.Name)
	}
	return d.SimpleNames[len(d.SimpleNames)-1]
}

// IsNested reports whether the declaration is enclosed by another declaration
func (d *Declaration) IsNested() bool {
	return d.Enclosing != NoDecl
}

// HasAnnotation reports whether annotations contains the given type
func HasAnnotation(annotations []Annotation, annotationType string) bool {
	_, ok := FindAnnotation(annotations, annotationType)
	return ok
}

// FindAnnotation returns the first annotation of the given type
func FindAnnotation(annotations []Annotation, annotationType string) (Annotation, bool) {
	for _, a := range annotations {
		if a.Type == annotationType {
			return a, true
		}
	}
	return Annotation{}, false
}

// Table is an arena of declarations for one compilation round. Declarations are
// addressed by DeclID and never mutated after Freeze.
type Table struct {
	decls  []*Declaration
	byName map[string]DeclID
	frozen bool
}

// NewTable creates an empty declaration table
func NewTable() *Table {
	return &Table{
		decls:  make([]*Declaration, 0),
		byName: make(map[string]DeclID),
	}
}

// Add inserts a declaration and assigns its ID
func (t *Table) Add(d *Declaration) (DeclID, error) {
	if t.frozen {
		return NoDecl, fmt.Errorf("declaration table is frozen")
	}
	if d.Name == "" {
		return NoDecl, fmt.Errorf("declaration name cannot be empty")
	}
	if _, exists := t.byName[d.Name]; exists {
		return NoDecl, fmt.Errorf("declaration '%s' is already defined", d.Name)
	}
	d.ID = DeclID(len(t.decls))
	if len(d.SimpleNames) == 0 {
		d.SimpleNames = strings.Split(strings.TrimPrefix(d.Name, d.Package+"."), ".")
	}
	t.decls = append(t.decls, d)
	t.byName[d.Name] = d.ID
	return d.ID, nil
}

// Freeze forbids further additions
func (t *Table) Freeze() {
	t.frozen = true
}

// Get returns the declaration for id, or nil
func (t *Table) Get(id DeclID) *Declaration {
	if id < 0 || int(id) >= len(t.decls) {
		return nil
	}
	return t.decls[id]
}

// Lookup finds a declaration by fully-qualified name
func (t *Table) Lookup(name string) (*Declaration, bool) {
	id, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.decls[id], true
}

// Len returns the number of declarations
func (t *Table) Len() int {
	return len(t.decls)
}

// All returns declarations in insertion order
func (t *Table) All() []*Declaration {
	out := make([]*Declaration, len(t.decls))
	copy(out, t.decls)
	return out
}

// Sorted returns declarations ordered by fully-qualified name
func (t *Table) Sorted() []*Declaration {
	out := t.All()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SuperOf returns the declaration of d's supertype, if it is known to the table
func (t *Table) SuperOf(d *Declaration) *Declaration {
	if d == nil || d.Super == nil {
		return nil
	}
	super, ok := t.Lookup(d.Super.Name)
	if !ok {
		return nil
	}
	return super
}

// EnclosingChain returns the enclosing declarations of d, innermost first
func (t *Table) EnclosingChain(d *Declaration) []*Declaration {
	var chain []*Declaration
	for id := d.Enclosing; id != NoDecl; {
		parent := t.Get(id)
		if parent == nil {
			break
		}
		chain = append(chain, parent)
		id = parent.Enclosing
	}
	return chain
}
