package annotations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

// NameResolver maps a name as written in a document to a fully-qualified name.
// typeParam is true when the name refers to a type parameter in scope.
type NameResolver func(name string) (qualified string, typeParam bool)

// TypeExpr is the grammar of a type reference such as `a.B<c.D<T>, *>?`
type TypeExpr struct {
	Star *string   `parser:"  @'*'"`
	Ref  *ClassRef `parser:"| @@"`
}

// ClassRef is a named type with optional arguments
type ClassRef struct {
	Name     []string    `parser:"@Ident ( '.' @Ident )*"`
	Args     []*TypeExpr `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
	Nullable bool        `parser:"@'?'?"`
}

// AnnotationExpr is the grammar of an annotation such as `@javax.inject.Named("x")`
type AnnotationExpr struct {
	Name []string         `parser:"'@'? @Ident ( '.' @Ident )*"`
	Args []*AnnotationArg `parser:"( '(' ( @@ ( ',' @@ )* )? ')' )?"`
}

// AnnotationArg is a literal annotation argument
type AnnotationArg struct {
	String *string  `parser:"  @String"`
	Ident  []string `parser:"| @Ident ( '.' @Ident )*"`
}

// ExpressionParser parses type and annotation expressions found in declaration documents
type ExpressionParser struct {
	types       *participle.Parser[TypeExpr]
	annotations *participle.Parser[AnnotationExpr]
}

// NewExpressionParser creates a parser using alecthomas/participle
func NewExpressionParser() *ExpressionParser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `"(\\"|[^"])*"`},
		{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
		{Name: "Punct", Pattern: `[.<>,*?()@=]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	return &ExpressionParser{
		types: participle.MustBuild[TypeExpr](
			participle.Lexer(lex),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
		annotations: participle.MustBuild[AnnotationExpr](
			participle.Lexer(lex),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
	}
}

// ParseType parses expr and resolves every name with resolve
func (p *ExpressionParser) ParseType(expr string, resolve NameResolver) (*models.TypeRef, error) {
	parsed, err := p.types.ParseString("", strings.TrimSpace(expr))
	if err != nil {
		return nil, errors.NewSyntaxError(expr, fmt.Sprintf("invalid type expression %q: %v", expr, err), errors.SourceLocation{}).
			WithCause(err)
	}
	return toTypeRef(parsed, resolve), nil
}

func toTypeRef(expr *TypeExpr, resolve NameResolver) *models.TypeRef {
	if expr.Star != nil {
		return &models.TypeRef{Star: true}
	}
	ref := &models.TypeRef{Nullable: expr.Ref.Nullable}
	name := strings.Join(expr.Ref.Name, ".")
	if resolve != nil {
		ref.Name, ref.TypeParam = resolve(name)
	} else {
		ref.Name = name
	}
	for _, arg := range expr.Ref.Args {
		ref.Args = append(ref.Args, toTypeRef(arg, resolve))
	}
	return ref
}

// ParseAnnotation parses expr into an annotation whose type is resolved with resolve
func (p *ExpressionParser) ParseAnnotation(expr string, resolve NameResolver) (models.Annotation, error) {
	parsed, err := p.annotations.ParseString("", strings.TrimSpace(expr))
	if err != nil {
		return models.Annotation{}, errors.NewSyntaxError(expr, fmt.Sprintf("invalid annotation %q: %v", expr, err), errors.SourceLocation{}).
			WithCause(err)
	}

	annotation := models.Annotation{Type: strings.Join(parsed.Name, ".")}
	if resolve != nil {
		annotation.Type, _ = resolve(annotation.Type)
	}
	for _, arg := range parsed.Args {
		if arg.String != nil {
			value, err := strconv.Unquote(*arg.String)
			if err != nil {
				return models.Annotation{}, fmt.Errorf("invalid string literal %s in %q: %w", *arg.String, expr, err)
			}
			annotation.Values = append(annotation.Values, value)
			continue
		}
		annotation.Values = append(annotation.Values, strings.Join(arg.Ident, "."))
	}
	return annotation, nil
}
