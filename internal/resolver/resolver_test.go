package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

const pkg = "test"

func inject() models.Annotation {
	return models.A(annotations.Inject)
}

func injectedField(name string, typ *models.TypeRef, extra ...models.Annotation) models.Field {
	return models.Field{
		Name:        name,
		Type:        typ,
		Visibility:  models.VisibilityPackage,
		Annotations: append([]models.Annotation{inject()}, extra...),
	}
}

func injectedMethod(name string, params ...models.Parameter) models.Method {
	return models.Method{
		Name:        name,
		Visibility:  models.VisibilityPackage,
		Parameters:  params,
		Annotations: []models.Annotation{inject()},
	}
}

func injectedCtor(params ...models.Parameter) models.Constructor {
	return models.Constructor{
		Visibility:  models.VisibilityPublic,
		Parameters:  params,
		Annotations: []models.Annotation{inject()},
	}
}

func param(name string, typ *models.TypeRef, annotations ...models.Annotation) models.Parameter {
	return models.Parameter{Name: name, Type: typ, Annotations: annotations}
}

func customScope(name string) *models.DeclarationBuilder {
	return models.NewAnnotationClass(pkg, name).
		Annotate(models.A(annotations.Scope)).
		Retention(annotations.RetentionRuntime)
}

func customQualifier(name string) *models.DeclarationBuilder {
	return models.NewAnnotationClass(pkg, name).Annotate(models.A(annotations.Qualifier))
}

func newResolver(t *testing.T, opts Options, builders ...*models.DeclarationBuilder) *Resolver {
	t.Helper()
	r, err := New(models.MustTable(builders...), opts)
	require.NoError(t, err)
	return r
}

func resolve(t *testing.T, r *Resolver, name string) *Result {
	t.Helper()
	decl, ok := r.Table().Lookup(name)
	require.True(t, ok, "declaration %s not found", name)
	return r.Resolve(decl)
}

func TestNew(t *testing.T) {
	t.Run("nil table", func(t *testing.T) {
		_, err := New(nil, Options{})
		assert.Error(t, err)
	})

	t.Run("invalid exclude filter", func(t *testing.T) {
		_, err := New(models.MustTable(), Options{ExcludeFilters: []string{"test.[abc"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid exclude filter")
	})

	t.Run("blank filters are ignored", func(t *testing.T) {
		r, err := New(models.MustTable(), Options{ExcludeFilters: []string{"", "  "}})
		require.NoError(t, err)
		assert.Empty(t, r.excludes)
	})
}

func TestResolve_FieldOnlyClassGetsRelaxedFactory(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Bar"),
		models.NewClass(pkg, "Foo").Field(injectedField("bar", models.T("test.Bar"))),
	)

	result := resolve(t, r, "test.Foo")
	require.False(t, result.Failed())
	assert.Empty(t, result.Diagnostics)

	require.NotNil(t, result.Constructor)
	assert.Empty(t, result.Constructor.Parameters)
	assert.Equal(t, result.Declaration.ID, result.Constructor.SuperClassThatNeedsInjection)

	require.NotNil(t, result.Members)
	require.Len(t, result.Members.Fields, 1)
	field := result.Members.Fields[0].Target
	assert.Equal(t, "bar", field.MemberName)
	assert.Equal(t, models.InjectionInstance, field.Kind)
	assert.Equal(t, "test.Bar", field.InjectedType.Name)
	assert.Nil(t, field.Qualifier)
	assert.Equal(t, models.NoDecl, result.Members.SuperClassThatNeedsInjection)
}

func TestResolve_InjectedConstructorParameters(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Foo").Constructor(injectedCtor(
			param("bar", models.T("test.Bar")),
			param("lazyBar", models.T(annotations.Lazy, models.T("test.Bar"))),
			param("barProvider", models.T(annotations.Provider, models.T("test.Bar"))),
			param("count", models.T("int")),
		)),
	)

	result := resolve(t, r, "test.Foo")
	require.False(t, result.Failed(), result.Diagnostics.Messages())
	require.NotNil(t, result.Constructor)
	assert.Nil(t, result.Members)

	params := result.Constructor.Parameters
	require.Len(t, params, 4)

	tests := []struct {
		name     string
		kind     models.InjectionKind
		injected string
	}{
		{"bar", models.InjectionInstance, "test.Bar"},
		{"lazyBar", models.InjectionLazy, "test.Bar"},
		{"barProvider", models.InjectionProvider, "test.Bar"},
		{"count", models.InjectionInstance, "int"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, params[i].MemberName)
			assert.Equal(t, tt.kind, params[i].Kind)
			assert.Equal(t, tt.injected, params[i].InjectedType.Name)
			assert.Equal(t, models.MemberConstructorParameter, params[i].MemberKind)
		})
	}
	assert.Equal(t, models.NoDecl, result.Constructor.SuperClassThatNeedsInjection)
	assert.False(t, result.Constructor.ThrowsChecked)
}

func TestResolve_ConstructorErrors(t *testing.T) {
	tests := []struct {
		name     string
		builders []*models.DeclarationBuilder
		target   string
		code     errors.ErrorCode
		message  string
	}{
		{
			name: "more than one injected constructor",
			builders: []*models.DeclarationBuilder{
				models.NewClass(pkg, "Foo").
					Constructor(injectedCtor()).
					Constructor(injectedCtor(param("s", models.T("kotlin.String")))),
			},
			target:  "test.Foo",
			code:    errors.MultipleInjectedConstructorsErrorCode,
			message: "Class test.Foo cannot have more than one @Inject annotated constructor.",
		},
		{
			name: "private injected constructor",
			builders: []*models.DeclarationBuilder{
				models.NewClass(pkg, "Foo").Constructor(models.Constructor{
					Visibility:  models.VisibilityPrivate,
					Annotations: []models.Annotation{inject()},
				}),
			},
			target:  "test.Foo",
			code:    errors.PrivateConstructorErrorCode,
			message: "@Inject constructors must not be private in class test.Foo.",
		},
		{
			name: "private enclosing class",
			builders: []*models.DeclarationBuilder{
				models.NewClass(pkg, "Outer").
					Visibility(models.VisibilityPrivate).
					Nested("Inner", func(b *models.DeclarationBuilder) {
						b.Constructor(injectedCtor())
					}),
			},
			target:  "test.Outer.Inner",
			code:    errors.PrivateClassErrorCode,
			message: "Class test.Outer is private. @Inject constructors are not allowed in private classes.",
		},
		{
			name: "non static inner class",
			builders: []*models.DeclarationBuilder{
				models.NewClass(pkg, "Outer").
					Nested("Inner", func(b *models.DeclarationBuilder) {
						b.Inner().Constructor(injectedCtor())
					}),
			},
			target:  "test.Outer.Inner",
			code:    errors.NonStaticInnerClassErrorCode,
			message: "Class test.Outer.Inner is a non static inner class. @Inject constructors are not allowed in non static inner classes.",
		},
		{
			name: "abstract class with injected constructor",
			builders: []*models.DeclarationBuilder{
				models.NewClass(pkg, "Foo").Abstract().Constructor(injectedCtor()),
			},
			target:  "test.Foo",
			code:    errors.AbstractOrPrivateInjectedClassErrorCode,
			message: "The class test.Foo is abstract or private. It cannot have an injected constructor.",
		},
		{
			name: "inject constructor with two constructors",
			builders: []*models.DeclarationBuilder{
				models.NewClass(pkg, "Foo").
					Annotate(models.A(annotations.InjectConstructor)).
					Constructor(models.Constructor{}).
					Constructor(models.Constructor{Parameters: []models.Parameter{param("s", models.T("kotlin.String"))}}),
			},
			target:  "test.Foo",
			code:    errors.InvalidInjectConstructorErrorCode,
			message: "Class test.Foo is annotated with @InjectConstructor. Therefore, It must have one unique constructor and it should not be annotated with @Inject.",
		},
		{
			name: "inject constructor on an injected constructor",
			builders: []*models.DeclarationBuilder{
				models.NewClass(pkg, "Foo").
					Annotate(models.A(annotations.InjectConstructor)).
					Constructor(injectedCtor()),
			},
			target:  "test.Foo",
			code:    errors.InvalidInjectConstructorErrorCode,
			message: "Class test.Foo is annotated with @InjectConstructor. Therefore, It must have one unique constructor and it should not be annotated with @Inject.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, Options{}, tt.builders...)
			result := resolve(t, r, tt.target)

			require.True(t, result.Failed())
			assert.Nil(t, result.Constructor)
			assert.Nil(t, result.Members)
			errs := result.Diagnostics.Errors()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.message, errs[0].Message)
			assert.Equal(t, tt.target, errs[0].Anchor.Declaration)
		})
	}
}

func TestResolve_InjectConstructor(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Foo").
			Annotate(models.A(annotations.InjectConstructor)).
			Constructor(models.Constructor{
				Parameters: []models.Parameter{param("bar", models.T("test.Bar"))},
				Throws:     []string{"java.io.IOException"},
			}),
		models.NewClass(pkg, "Implicit").Annotate(models.A(annotations.InjectConstructor)),
	)

	result := resolve(t, r, "test.Foo")
	require.NotNil(t, result.Constructor)
	require.Len(t, result.Constructor.Parameters, 1)
	assert.Equal(t, "bar", result.Constructor.Parameters[0].MemberName)
	assert.True(t, result.Constructor.ThrowsChecked)

	implicit := resolve(t, r, "test.Implicit")
	require.NotNil(t, implicit.Constructor)
	assert.Empty(t, implicit.Constructor.Parameters)
}

func TestResolve_RelaxedMode(t *testing.T) {
	privateDefault := models.Constructor{Visibility: models.VisibilityPrivate}
	withArgs := models.Constructor{Parameters: []models.Parameter{param("s", models.T("kotlin.String"))}}

	tests := []struct {
		name        string
		builder     *models.DeclarationBuilder
		policy      errors.Policy
		wantFactory bool
		wantSkipped bool
		severity    *errors.Severity
		message     string
	}{
		{
			name:        "no trigger",
			builder:     models.NewClass(pkg, "Foo"),
			wantSkipped: true,
		},
		{
			name:        "scope annotation with implicit constructor",
			builder:     models.NewClass(pkg, "Foo").Annotate(models.A(annotations.Singleton)),
			wantFactory: true,
		},
		{
			name:        "abstract class is skipped silently",
			builder:     models.NewClass(pkg, "Foo").Abstract().Annotate(models.A(annotations.Singleton)),
			wantSkipped: true,
		},
		{
			name:        "private class is skipped silently",
			builder:     models.NewClass(pkg, "Foo").Visibility(models.VisibilityPrivate).Annotate(models.A(annotations.Singleton)),
			wantSkipped: true,
		},
		{
			name:        "private default constructor warns",
			builder:     models.NewClass(pkg, "Foo").Annotate(models.A(annotations.Singleton)).Constructor(privateDefault),
			wantSkipped: true,
			severity:    severityPtr(errors.SeverityWarning),
			message:     "The class test.Foo has a private default constructor. ",
		},
		{
			name:     "private default constructor fails in strict mode",
			builder:  models.NewClass(pkg, "Foo").Annotate(models.A(annotations.Singleton)).Constructor(privateDefault),
			policy:   errors.PolicyError,
			severity: severityPtr(errors.SeverityError),
			message:  "The class test.Foo has a private default constructor. ",
		},
		{
			name:        "no default constructor warns",
			builder:     models.NewClass(pkg, "Foo").Annotate(models.A(annotations.Singleton)).Constructor(withArgs),
			wantSkipped: true,
			severity:    severityPtr(errors.SeverityWarning),
			message:     "The class test.Foo has injected members or a scope annotation but has no @Inject annotated (non-private) constructor  nor a non-private default constructor. ",
		},
		{
			name: "suppressed injectable",
			builder: models.NewClass(pkg, "Foo").
				Annotate(models.A(annotations.Singleton), models.A(annotations.SuppressWarnings, "Injectable")).
				Constructor(withArgs),
			policy:      errors.PolicyError,
			wantSkipped: true,
		},
		{
			name: "non-private default constructor among others",
			builder: models.NewClass(pkg, "Foo").
				Annotate(models.A(annotations.Singleton)).
				Constructor(withArgs).
				Constructor(models.Constructor{Visibility: models.VisibilityProtected}),
			wantFactory: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, Options{MissingFactoryPolicy: tt.policy}, tt.builder)
			result := resolve(t, r, "test.Foo")

			assert.Equal(t, tt.wantFactory, result.Constructor != nil)
			assert.Equal(t, tt.wantSkipped, result.Skipped)
			if tt.severity == nil {
				assert.Empty(t, result.Diagnostics)
				return
			}
			require.Len(t, result.Diagnostics, 1)
			diag := result.Diagnostics[0]
			assert.Equal(t, *tt.severity, diag.Severity)
			assert.Equal(t, errors.NoFactoryErrorCode, diag.Code)
			assert.Contains(t, diag.Message, tt.message)
			assert.Contains(t, diag.Message, `@SuppressWarnings("Injectable")`)
		})
	}
}

func severityPtr(s errors.Severity) *errors.Severity {
	return &s
}

func TestResolve_PrivateDefaultConstructorKeepsMemberInjector(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Foo").
			Constructor(models.Constructor{Visibility: models.VisibilityPrivate}).
			Field(injectedField("bar", models.T("test.Bar"))),
	)

	result := resolve(t, r, "test.Foo")
	assert.False(t, result.Failed())
	assert.Nil(t, result.Constructor)
	assert.NotNil(t, result.Members)
	assert.False(t, result.Skipped)
	require.Len(t, result.Diagnostics.Warnings(), 1)
}

func TestResolve_ObjectDeclaration(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Foo").Kind(models.KindObject).Field(injectedField("bar", models.T("test.Bar"))),
	)

	result := resolve(t, r, "test.Foo")
	require.NotNil(t, result.Constructor)
	assert.True(t, result.Constructor.IsObject)
	assert.Empty(t, result.Constructor.Parameters)
}

func TestResolve_NonClassKindsAreSkipped(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Foo").Kind(models.KindInterface).Annotate(models.A(annotations.Singleton)),
	)

	result := resolve(t, r, "test.Foo")
	assert.True(t, result.Skipped)
	assert.Nil(t, result.Constructor)
	assert.Empty(t, result.Diagnostics)
}

func TestBuildVariable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		builder *models.DeclarationBuilder
		code    errors.ErrorCode
		message string
	}{
		{
			name:    "generic lazy field",
			builder: models.NewClass(pkg, "Foo").Field(injectedField("bar", models.T(annotations.Lazy, models.T("test.Bar", models.T("kotlin.String"))))),
			code:    errors.GenericWrapperErrorCode,
			message: "Lazy/Provider bar is not a valid in test.Foo. Lazy/Provider cannot be used on generic types.",
		},
		{
			name:    "generic provider parameter",
			builder: models.NewClass(pkg, "Foo").Constructor(injectedCtor(param("bar", models.T(annotations.Provider, models.T("test.Bar", models.Star()))))),
			code:    errors.GenericWrapperErrorCode,
			message: "Lazy/Provider bar is not a valid in test.Foo. Lazy/Provider cannot be used on generic types.",
		},
		{
			name:    "raw lazy field",
			builder: models.NewClass(pkg, "Foo").Field(injectedField("bar", models.T(annotations.Lazy))),
			code:    errors.InvalidWrapperErrorCode,
			message: "Field test.Foo#bar is not a valid toothpick.Lazy.",
		},
		{
			name:    "star provider parameter",
			builder: models.NewClass(pkg, "Foo").Constructor(injectedCtor(param("bar", models.T(annotations.Provider, models.Star())))),
			code:    errors.InvalidWrapperErrorCode,
			message: "Parameter bar in method/constructor test.Foo#<init> is not a valid javax.inject.Provider.",
		},
		{
			name:    "primitive field",
			builder: models.NewClass(pkg, "Foo").Field(injectedField("count", models.T("int"))),
			code:    errors.UnsupportedPrimitiveErrorCode,
			message: "Field test.Foo#count is of type int which is not supported by Toothpick.",
		},
		{
			name: "two qualifiers",
			builder: models.NewClass(pkg, "Foo").Field(injectedField("bar", models.T("test.Bar"),
				models.A(annotations.Named, "a"), models.A("test.Blue"))),
			code:    errors.MultipleQualifiersErrorCode,
			message: "Only one javax.inject.Qualifier annotation is allowed to name injections.",
		},
		{
			name:    "private field",
			builder: models.NewClass(pkg, "Foo").Field(models.Field{Name: "bar", Type: models.T("test.Bar"), Visibility: models.VisibilityPrivate, Annotations: []models.Annotation{inject()}}),
			code:    errors.PrivateFieldErrorCode,
			message: "@Inject annotated fields must be non private : test.Foo#bar",
		},
		{
			name:    "field in private class",
			builder: models.NewClass(pkg, "Foo").Visibility(models.VisibilityPrivate).Field(injectedField("bar", models.T("test.Bar"))),
			code:    errors.PrivateClassErrorCode,
			message: "@Injected fields in class Foo. The class must be non private.",
		},
		{
			name:    "private method",
			builder: models.NewClass(pkg, "Foo").Method(models.Method{Name: "m", Visibility: models.VisibilityPrivate, Annotations: []models.Annotation{inject()}}),
			code:    errors.PrivateMethodErrorCode,
			message: "@Inject annotated methods must not be private : test.Foo#m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, Options{}, tt.builder, customQualifier("Blue"))
			result := resolve(t, r, "test.Foo")

			require.True(t, result.Failed())
			assert.Nil(t, result.Constructor)
			assert.Nil(t, result.Members)
			errs := result.Diagnostics.Errors()
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}
}

func TestBuildVariable_PrimitiveParametersAreAccepted(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Foo").Method(injectedMethod("setCount", param("count", models.T("int")))),
	)

	result := resolve(t, r, "test.Foo")
	require.False(t, result.Failed())
	require.Len(t, result.Members.Methods, 1)
	assert.Equal(t, "int", result.Members.Methods[0].Parameters[0].InjectedType.Name)
}

func TestQualifier(t *testing.T) {
	r := newResolver(t, Options{}, customQualifier("Blue"), models.NewAnnotationClass(pkg, "Plain"))
	anchor := errors.Anchor{Declaration: "test.Foo", Member: "bar"}

	tests := []struct {
		name        string
		annotations []models.Annotation
		want        *string
		wantErr     bool
	}{
		{name: "none", annotations: nil},
		{name: "named", annotations: []models.Annotation{models.A(annotations.Named, "blue")}, want: strPtr("blue")},
		{name: "qualifier annotation", annotations: []models.Annotation{models.A("test.Blue")}, want: strPtr("test.Blue")},
		{name: "unrelated annotation", annotations: []models.Annotation{models.A("test.Plain")}},
		{name: "two named", annotations: []models.Annotation{models.A(annotations.Named, "a"), models.A(annotations.Named, "b")}, wantErr: true},
		{name: "named and qualifier", annotations: []models.Annotation{models.A("test.Blue"), models.A(annotations.Named, "b")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diag := r.Qualifier(tt.annotations, anchor)
			if tt.wantErr {
				require.NotNil(t, diag)
				assert.Equal(t, errors.MultipleQualifiersErrorCode, diag.Code)
				assert.Nil(t, got)
				return
			}
			assert.Nil(t, diag)
			assert.Equal(t, tt.want, got)
		})
	}
}

func strPtr(s string) *string {
	return &s
}

func TestResolve_TypeAlias(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Repo").TypeParam("T"),
		models.NewClass(pkg, "StringRepo").AliasOf(models.T("test.Repo", models.T("kotlin.String"))),
		models.NewClass(pkg, "AliasOfAlias").AliasOf(models.T("test.StringRepo")),
		models.NewClass(pkg, "Foo").Constructor(injectedCtor(param("repo", models.T("test.AliasOfAlias")))),
	)

	result := resolve(t, r, "test.Foo")
	require.NotNil(t, result.Constructor)
	repo := result.Constructor.Parameters[0]
	assert.Equal(t, "test.Repo", repo.InjectedType.Name)
	assert.Equal(t, "test.AliasOfAlias", repo.DisplayType.Name)
}

func TestScopeName(t *testing.T) {
	tests := []struct {
		name      string
		class     []models.Annotation
		want      *string
		code      errors.ErrorCode
		message   string
		wantError bool
	}{
		{name: "no scope"},
		{name: "singleton", class: []models.Annotation{models.A(annotations.Singleton)}, want: strPtr(annotations.Singleton)},
		{name: "custom scope", class: []models.Annotation{models.A("test.ActivityScope")}, want: strPtr("test.ActivityScope")},
		{
			name:  "custom scope wins over singleton",
			class: []models.Annotation{models.A(annotations.Singleton), models.A("test.ActivityScope")},
			want:  strPtr("test.ActivityScope"),
		},
		{
			name:      "two custom scopes",
			class:     []models.Annotation{models.A("test.ActivityScope"), models.A("test.FragmentScope")},
			wantError: true,
			code:      errors.MultipleScopeAnnotationsErrorCode,
			message:   "Only one @Scope qualified annotation is allowed : test.ActivityScope",
		},
		{
			name:      "scope without runtime retention",
			class:     []models.Annotation{models.A("test.ClassScope")},
			wantError: true,
			code:      errors.ScopeAnnotationMissingRuntimeRetentionErrorCode,
			message:   "Scope Annotation test.ClassScope does not have RUNTIME retention policy.",
		},
		{name: "configured scope", class: []models.Annotation{models.A("test.ConfiguredScope")}, want: strPtr("test.ConfiguredScope")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, Options{ScopeAnnotationNames: []string{"test.ConfiguredScope"}},
				customScope("ActivityScope"),
				customScope("FragmentScope"),
				models.NewAnnotationClass(pkg, "ClassScope").Annotate(models.A(annotations.Scope)),
				models.NewClass(pkg, "Foo").Annotate(tt.class...),
			)
			decl, _ := r.Table().Lookup("test.Foo")

			got, diags := r.ScopeName(decl)
			if tt.wantError {
				require.Len(t, diags, 1)
				assert.Equal(t, tt.code, diags[0].Code)
				assert.Equal(t, tt.message, diags[0].Message)
				return
			}
			assert.Empty(t, diags)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ScopeMarkers(t *testing.T) {
	tests := []struct {
		name    string
		class   []models.Annotation
		code    errors.ErrorCode
		message string
	}{
		{
			name:    "releasable without singleton",
			class:   []models.Annotation{models.A(annotations.Releasable), models.A("test.ActivityScope")},
			code:    errors.ReleasableWithoutSingletonErrorCode,
			message: "Class test.Foo is annotated with @Releasable, it should also be annotated with either @Singleton.",
		},
		{
			name:    "provides releasable without provides singleton",
			class:   []models.Annotation{models.A(annotations.ProvidesReleasable), models.A(annotations.Singleton)},
			code:    errors.ProvidesReleasableWithoutProvidesSingletonErrorCode,
			message: "Class test.Foo is annotated with @ProvidesReleasable, it should also be annotated with either @ProvidesSingleton.",
		},
		{
			name:    "provides singleton without scope",
			class:   []models.Annotation{models.A(annotations.ProvidesSingleton)},
			code:    errors.ProvidesSingletonWithoutScopeErrorCode,
			message: "The type test.Foo uses @ProvidesSingleton but doesn't have a scope annotation.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, Options{}, customScope("ActivityScope"), models.NewClass(pkg, "Foo").Annotate(tt.class...))
			result := resolve(t, r, "test.Foo")

			require.True(t, result.Failed())
			assert.Nil(t, result.Constructor)
			errs := result.Diagnostics.Errors()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}

	relaxed := []struct {
		name  string
		class *models.DeclarationBuilder
		code  errors.ErrorCode
	}{
		{
			name: "releasable with private default constructor",
			class: models.NewClass(pkg, "Foo").
				Annotate(models.A(annotations.Releasable)).
				Constructor(models.Constructor{Visibility: models.VisibilityPrivate}).
				Field(injectedField("bar", models.T("test.Bar"))),
			code: errors.ReleasableWithoutSingletonErrorCode,
		},
		{
			name: "provides singleton without default constructor",
			class: models.NewClass(pkg, "Foo").
				Annotate(models.A(annotations.ProvidesSingleton)).
				Constructor(models.Constructor{
					Visibility: models.VisibilityPublic,
					Parameters: []models.Parameter{param("bar", models.T("test.Bar"))},
				}).
				Field(injectedField("bar", models.T("test.Bar"))),
			code: errors.ProvidesSingletonWithoutScopeErrorCode,
		},
		{
			name: "provides releasable with suppressed warning",
			class: models.NewClass(pkg, "Foo").
				Annotate(
					models.A(annotations.Singleton),
					models.A(annotations.ProvidesReleasable),
					models.A(annotations.SuppressWarnings, annotations.SuppressInjectable),
				).
				Constructor(models.Constructor{Visibility: models.VisibilityPrivate}).
				Field(injectedField("bar", models.T("test.Bar"))),
			code: errors.ProvidesReleasableWithoutProvidesSingletonErrorCode,
		},
	}

	for _, tt := range relaxed {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, Options{}, tt.class)
			result := resolve(t, r, "test.Foo")

			require.True(t, result.Failed())
			assert.Nil(t, result.Constructor)
			assert.Nil(t, result.Members, "a failed class gets no member injector either")
			errs := result.Diagnostics.Errors()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Empty(t, result.Diagnostics.Warnings())
		})
	}

	t.Run("all markers", func(t *testing.T) {
		r := newResolver(t, Options{}, customScope("ActivityScope"), models.NewClass(pkg, "Foo").Annotate(
			models.A("test.ActivityScope"),
			models.A(annotations.Singleton),
			models.A(annotations.Releasable),
			models.A(annotations.ProvidesSingleton),
			models.A(annotations.ProvidesReleasable),
		))
		result := resolve(t, r, "test.Foo")

		require.False(t, result.Failed())
		c := result.Constructor
		require.NotNil(t, c)
		assert.Equal(t, "test.ActivityScope", *c.ScopeName)
		assert.True(t, c.HasSingletonAnnotation)
		assert.True(t, c.HasReleasableAnnotation)
		assert.True(t, c.HasProvidesSingletonAnnotation)
		assert.True(t, c.HasProvidesReleasableAnnotation)
	})
}

func TestDiscoverMembers_Inheritance(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "GrandParent").
			Field(injectedField("a", models.T("test.A"))).
			Method(injectedMethod("init")),
		models.NewClass(pkg, "Parent").Extends(models.T("test.GrandParent")),
		models.NewClass(pkg, "Child").
			Extends(models.T("test.Parent")).
			Method(injectedMethod("init")).
			Method(injectedMethod("setB", param("b", models.T("test.B")))),
		models.NewClass(pkg, "OnlyOverride").
			Extends(models.T("test.GrandParent")).
			Method(injectedMethod("init")),
		models.NewClass(pkg, "Plain").
			Extends(models.T("test.Child")).
			Constructor(injectedCtor()),
	)

	t.Run("child delegates to nearest injected ancestor", func(t *testing.T) {
		result := resolve(t, r, "test.Child")
		require.NotNil(t, result.Members)
		grandParent, _ := r.Table().Lookup("test.GrandParent")
		assert.Equal(t, grandParent.ID, result.Members.SuperClassThatNeedsInjection)

		require.Len(t, result.Members.Methods, 2)
		assert.True(t, result.Members.Methods[0].IsOverride)
		assert.False(t, result.Members.Methods[1].IsOverride)
		assert.Equal(t, models.MemberMethodParameter, result.Members.Methods[1].Parameters[0].MemberKind)

		require.NotNil(t, result.Constructor)
		assert.Equal(t, result.Declaration.ID, result.Constructor.SuperClassThatNeedsInjection)
	})

	t.Run("override only still delegates", func(t *testing.T) {
		result := resolve(t, r, "test.OnlyOverride")
		require.NotNil(t, result.Members)
		assert.True(t, result.Members.NeedsInjector())
		assert.Empty(t, result.Members.Fields)
	})

	t.Run("factory delegates to nearest ancestor including self", func(t *testing.T) {
		result := resolve(t, r, "test.Plain")
		assert.Nil(t, result.Members)
		require.NotNil(t, result.Constructor)
		child, _ := r.Table().Lookup("test.Child")
		assert.Equal(t, child.ID, result.Constructor.SuperClassThatNeedsInjection)
	})

	t.Run("ancestor lookups are memoized", func(t *testing.T) {
		plain, _ := r.Table().Lookup("test.Plain")
		first := r.NearestInjectedAncestor(plain, true)
		assert.True(t, r.ancestors.Contains(ancestorKey{id: plain.ID, onlyParents: true}))
		assert.Equal(t, first, r.NearestInjectedAncestor(plain, true))
	})
}

func TestNearestInjectedAncestor_Cycle(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "A").Extends(models.T("test.B")),
		models.NewClass(pkg, "B").Extends(models.T("test.A")),
	)
	a, _ := r.Table().Lookup("test.A")
	assert.Equal(t, models.NoDecl, r.NearestInjectedAncestor(a, false))
}

func TestDiscoverMembers_MethodVisibility(t *testing.T) {
	public := models.Method{Name: "setBar", Visibility: models.VisibilityPublic, Annotations: []models.Annotation{inject()}}
	suppressed := public
	suppressed.Annotations = []models.Annotation{inject(), models.A(annotations.Suppress, "visible")}

	tests := []struct {
		name     string
		method   models.Method
		policy   errors.Policy
		severity *errors.Severity
	}{
		{name: "public method warns", method: public, severity: severityPtr(errors.SeverityWarning)},
		{name: "public method fails in strict mode", method: public, policy: errors.PolicyError, severity: severityPtr(errors.SeverityError)},
		{name: "suppressed", method: suppressed, policy: errors.PolicyError},
		{name: "package method", method: injectedMethod("setBar")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t, Options{MethodVisibilityPolicy: tt.policy}, models.NewClass(pkg, "Foo").Method(tt.method))
			result := resolve(t, r, "test.Foo")

			if tt.severity == nil {
				assert.Empty(t, result.Diagnostics)
				require.NotNil(t, result.Members)
				return
			}
			require.Len(t, result.Diagnostics, 1)
			diag := result.Diagnostics[0]
			assert.Equal(t, *tt.severity, diag.Severity)
			assert.Equal(t, errors.NonPackageVisibleMethodErrorCode, diag.Code)
			assert.Equal(t, "@Inject annotated methods should have package visibility: test.Foo#setBar", diag.Message)
			assert.Equal(t, *tt.severity == errors.SeverityError, result.Members == nil)
		})
	}
}

func TestDiscoverMembers_CheckedExceptions(t *testing.T) {
	method := injectedMethod("open", param("path", models.T("kotlin.String")))
	method.Throws = []string{"java.io.IOException", "java.sql.SQLException"}
	r := newResolver(t, Options{}, models.NewClass(pkg, "Foo").Method(method))

	result := resolve(t, r, "test.Foo")
	require.NotNil(t, result.Members)
	require.Len(t, result.Members.Methods, 1)
	assert.Equal(t, []string{"java.io.IOException", "java.sql.SQLException"}, result.Members.Methods[0].CheckedExceptionTypes)
}

func TestCandidates(t *testing.T) {
	r := newResolver(t, Options{ExcludeFilters: []string{"test.excluded.**"}},
		models.NewClass(pkg, "ZScoped").Annotate(models.A(annotations.Singleton)),
		models.NewClass(pkg, "YMethod").Method(injectedMethod("m")),
		models.NewClass(pkg, "XField").Field(injectedField("f", models.T("test.A"))),
		models.NewClass(pkg, "WProvides").Annotate(models.A(annotations.ProvidesSingleton), models.A(annotations.Singleton)),
		models.NewClass(pkg, "VInjectCtor").Constructor(injectedCtor()).Field(injectedField("f", models.T("test.A"))),
		models.NewClass(pkg, "UInjectConstructor").Annotate(models.A(annotations.InjectConstructor)),
		models.NewClass(pkg, "APlain"),
		models.NewClass(pkg, "Iface").Kind(models.KindInterface).Annotate(models.A(annotations.Singleton)),
		models.NewClass("test.excluded", "Hidden").Constructor(injectedCtor()),
	)

	var names []string
	for _, decl := range r.Candidates() {
		names = append(names, decl.Name)
	}
	assert.Equal(t, []string{
		"test.UInjectConstructor",
		"test.VInjectCtor",
		"test.WProvides",
		"test.XField",
		"test.YMethod",
		"test.ZScoped",
	}, names)
}

func TestResolve_Excluded(t *testing.T) {
	r := newResolver(t, Options{ExcludeFilters: []string{"test.gen.*"}},
		models.NewClass("test.gen", "Foo").Constructor(injectedCtor()).Field(injectedField("f", models.T("test.A"))),
		models.NewClass("test.gen.deep", "Bar").Constructor(injectedCtor()),
	)

	result := resolve(t, r, "test.gen.Foo")
	assert.True(t, result.Skipped)
	assert.Nil(t, result.Constructor)
	assert.Nil(t, result.Members)

	deep := resolve(t, r, "test.gen.deep.Bar")
	assert.False(t, deep.Skipped)
	assert.NotNil(t, deep.Constructor)
}

func TestResolveAll_IsolatesFailures(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Bad").Field(injectedField("count", models.T("int"))),
		models.NewClass(pkg, "Good").Constructor(injectedCtor(param("bar", models.T("test.Bar")))),
	)

	results := r.ResolveAll()
	require.Len(t, results, 2)
	byName := map[string]*Result{}
	for _, res := range results {
		byName[res.Declaration.Name] = res
	}
	assert.True(t, byName["test.Bad"].Failed())
	assert.False(t, byName["test.Good"].Failed())
	assert.NotNil(t, byName["test.Good"].Constructor)

	assert.Equal(t, results, r.ResolveAll())
}

func TestParameterAnchor(t *testing.T) {
	r := newResolver(t, Options{},
		models.NewClass(pkg, "Foo").Method(injectedMethod("setBar",
			param("bar", models.T("test.Bar"), models.A(annotations.Named, "a"), models.A(annotations.Named, "b")))),
	)

	result := resolve(t, r, "test.Foo")
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, errors.Anchor{Declaration: "test.Foo", Member: "setBar(bar)", MemberKind: "parameter"}, result.Diagnostics[0].Anchor)
	assert.Equal(t, "test.Foo#setBar(bar)", result.Diagnostics[0].Anchor.String())
}
