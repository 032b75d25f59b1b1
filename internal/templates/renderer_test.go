package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/generator"
	"github.com/toyz/injectgen/internal/models"
	"github.com/toyz/injectgen/internal/resolver"
)

func inject() models.Annotation {
	return models.A(annotations.Inject)
}

func injectedCtor(params ...models.Parameter) models.Constructor {
	return models.Constructor{Parameters: params, Annotations: []models.Annotation{inject()}}
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

func param(name string, typ *models.TypeRef, extra ...models.Annotation) models.Parameter {
	return models.Parameter{Name: name, Type: typ, Annotations: extra}
}

// render resolves, plans and renders the declaration name
func render(t *testing.T, opts generator.Options, name string, builders ...*models.DeclarationBuilder) []*File {
	t.Helper()
	table := models.MustTable(builders...)
	r, err := resolver.New(table, resolver.Options{})
	require.NoError(t, err)

	decl, ok := table.Lookup(name)
	require.True(t, ok)
	result := r.Resolve(decl)
	require.False(t, result.Failed(), "diagnostics: %v", result.Diagnostics.Messages())

	plans, err := generator.NewGenerator(table, opts).Generate(result)
	require.NoError(t, err)

	renderer, err := NewRenderer(func(fqcn string) (string, []string) {
		return generator.SplitClassName(table, fqcn)
	})
	require.NoError(t, err)

	files, err := renderer.RenderAll(plans)
	require.NoError(t, err)
	return files
}

func genericFixture(name string) []*models.DeclarationBuilder {
	return []*models.DeclarationBuilder{
		models.NewClass("test", "Nullable").Kind(models.KindInterface).TypeParam("T"),
		models.NewClass("test", "TestRepository").Kind(models.KindInterface).
			TypeParam("N", models.T("test.Nullable", models.P("T"))).
			TypeParam("T", models.T("kotlin.Any")),
		models.NewClass("test", name).
			TypeParam("T", models.T("kotlin.Any")).
			Constructor(injectedCtor(param("repository",
				models.T("test.TestRepository", models.T("test.Nullable", models.P("T")), models.P("T"))))),
	}
}

func TestRender_Factory(t *testing.T) {
	files := render(t, generator.Options{}, "test.TestNoWrap", genericFixture("TestNoWrap")...)
	require.Len(t, files, 1)

	file := files[0]
	assert.Equal(t, "test/TestNoWrap__Factory.kt", file.Path)
	assert.Equal(t, "test.TestNoWrap__Factory", file.QualifiedName)

	expected := `// Generated by injectgen v0.0.0-dev from test.TestNoWrap. Do not edit.
package test

import kotlin.Boolean
import kotlin.Suppress
import toothpick.Factory
import toothpick.Scope

@Suppress(
  "ClassName",
  "RedundantVisibilityModifier",
)
public class TestNoWrap__Factory : Factory<TestNoWrap<*>> {
  @Suppress(
    "UNCHECKED_CAST",
    "NAME_SHADOWING",
  )
  public override fun createInstance(scope: Scope): TestNoWrap<*> {
    val scope = getTargetScope(scope)
    val param1 = scope.getInstance(TestRepository::class.java) as TestRepository<Nullable<kotlin.Any>, kotlin.Any>
    return TestNoWrap(param1)
  }

  public override fun getTargetScope(scope: Scope): Scope = scope

  public override fun hasScopeAnnotation(): Boolean = false

  public override fun hasSingletonAnnotation(): Boolean = false

  public override fun hasReleasableAnnotation(): Boolean = false

  public override fun hasProvidesSingletonAnnotation(): Boolean = false

  public override fun hasProvidesReleasableAnnotation(): Boolean = false
}
`
	assert.Equal(t, expected, file.Content)
}

func TestRender_FactoryWrappedInWith(t *testing.T) {
	files := render(t, generator.Options{WrapScopeAccessInBlock: true}, "test.TestWrap", genericFixture("TestWrap")...)
	require.Len(t, files, 1)

	content := files[0].Content
	assert.Contains(t, content, "  @Suppress(\"UNCHECKED_CAST\")\n")
	assert.NotContains(t, content, "NAME_SHADOWING")
	assert.Contains(t, content, "public override fun createInstance(scope: Scope): TestWrap<*> = with(getTargetScope(scope)) {\n")
	assert.Contains(t, content, "    val param1 = getInstance(TestRepository::class.java) as TestRepository<Nullable<kotlin.Any>, kotlin.Any>\n")
	assert.Contains(t, content, "    TestWrap(param1)\n")
	assert.NotContains(t, content, "val scope =")
}

func TestRender_FactoryDelegatesToInjector(t *testing.T) {
	files := render(t, generator.Options{}, "test.Foo",
		models.NewClass("test", "Foo").Field(injectedField("bar", models.T("other.Bar"))),
	)
	require.Len(t, files, 2)

	factory := files[0].Content
	assert.Contains(t, factory, "import toothpick.MemberInjector\n")
	assert.Contains(t, factory, "  private val memberInjector: MemberInjector<Foo> = Foo__MemberInjector()\n\n")
	assert.Contains(t, factory, "  @Suppress(\"NAME_SHADOWING\")\n")
	assert.Contains(t, factory, "    return Foo().apply {\n      memberInjector.inject(this, scope)\n    }\n")

	injector := files[1]
	assert.Equal(t, "test/Foo__MemberInjector.kt", injector.Path)
	assert.Contains(t, injector.Content, "import other.Bar\n")
	assert.Contains(t, injector.Content, "public class Foo__MemberInjector : MemberInjector<Foo> {\n")
	assert.Contains(t, injector.Content, "  public override fun inject(target: Foo, scope: Scope) {\n    target.bar = scope.getInstance(Bar::class.java)\n  }\n")
	assert.NotContains(t, injector.Content, "superMemberInjector")
}

func TestRender_EmptyNamedQualifier(t *testing.T) {
	files := render(t, generator.Options{}, "test.Foo",
		models.NewClass("test", "Foo").Field(injectedField("bar", models.T("test.Bar"), models.A(annotations.Named, ""))),
	)
	require.Len(t, files, 2)
	assert.Contains(t, files[1].Content, "    target.bar = scope.getInstance(Bar::class.java, \"\")\n")
}

func TestRender_TargetScopes(t *testing.T) {
	tests := []struct {
		name       string
		annotation models.Annotation
		expected   []string
	}{
		{
			name:       "singleton",
			annotation: models.A(annotations.Singleton),
			expected: []string{
				"getTargetScope(scope: Scope): Scope = scope.rootScope\n",
				"hasScopeAnnotation(): Boolean = true\n",
				"hasSingletonAnnotation(): Boolean = true\n",
			},
		},
		{
			name:       "custom scope",
			annotation: models.A("scopes.ActivityScope"),
			expected: []string{
				"import scopes.ActivityScope\n",
				"getTargetScope(scope: Scope): Scope = scope.getParentScope(ActivityScope::class.java)\n",
				"hasScopeAnnotation(): Boolean = true\n",
				"hasSingletonAnnotation(): Boolean = false\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := render(t, generator.Options{}, "test.Foo",
				models.NewAnnotationClass("scopes", "ActivityScope").
					Annotate(models.A(annotations.Scope)).
					Retention(annotations.RetentionRuntime),
				models.NewClass("test", "Foo").Annotate(tt.annotation).Constructor(injectedCtor()),
			)
			require.Len(t, files, 1)
			for _, line := range tt.expected {
				assert.Contains(t, files[0].Content, line)
			}
			assert.NotContains(t, files[0].Content, "@Suppress(\"NAME_SHADOWING\")")
		})
	}
}

func TestRender_MemberInjector(t *testing.T) {
	open := injectedMethod("open", param("path", models.T("kotlin.String")))
	open.Throws = []string{"java.io.IOException", "test.Failure"}

	files := render(t, generator.Options{}, "test.Child",
		models.NewClass("test", "Parent").Field(injectedField("p", models.T("test.P"))),
		models.NewClass("test", "Child").
			Extends(models.T("test.Parent")).
			Field(injectedField("lazyBar", models.T(annotations.Lazy, models.T("test.Bar")), models.A(annotations.Named, "main"))).
			Method(injectedMethod("setBaz", param("baz", models.T("test.Baz")))).
			Method(open),
	)

	injector := files[len(files)-1].Content
	expected := `  private val superMemberInjector: MemberInjector<Parent> = Parent__MemberInjector()

  public override fun inject(target: Child, scope: Scope) {
    superMemberInjector.inject(target, scope)
    target.lazyBar = scope.getLazy(Bar::class.java, "main")
    val param1 = scope.getInstance(Baz::class.java) as Baz
    target.setBaz(param1)
    val param2 = scope.getInstance(String::class.java) as String
    try {
      target.open(param2)
    } catch (e0: IOException) {
      throw RuntimeException(e0)
    } catch (e1: Failure) {
      throw RuntimeException(e1)
    }
  }
}
`
	assert.True(t, strings.HasSuffix(injector, expected), "unexpected injector:\n%s", injector)
	assert.Contains(t, injector, "import java.io.IOException\n")
	assert.Contains(t, injector, "import java.lang.RuntimeException\n")
	assert.Contains(t, injector, "import kotlin.String\n")
}

func TestRender_NestedClass(t *testing.T) {
	files := render(t, generator.Options{}, "test.Outer.Inner",
		models.NewClass("test", "Outer").Visibility(models.VisibilityInternal).Nested("Inner", func(b *models.DeclarationBuilder) {
			b.Constructor(injectedCtor(param("bar", models.T("test.Bar"))))
		}),
	)
	require.Len(t, files, 1)

	assert.Equal(t, "test/Outer$Inner__Factory.kt", files[0].Path)
	assert.Contains(t, files[0].Content, "internal class `Outer$Inner__Factory` : Factory<Outer.Inner> {\n")
	assert.Contains(t, files[0].Content, "    return Outer.Inner(param1)\n")
}

func TestRender_ObjectAndGuardedConstructor(t *testing.T) {
	files := render(t, generator.Options{}, "test.Single",
		models.NewClass("test", "Single").Kind(models.KindObject).Annotate(models.A(annotations.Singleton)),
	)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Content, "    return Single\n")

	ctor := injectedCtor(param("count", models.T("int")))
	ctor.Throws = []string{"java.io.IOException"}
	files = render(t, generator.Options{}, "test.Risky", models.NewClass("test", "Risky").Constructor(ctor))
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Content, "    val param1 = scope.getInstance(Int::class.java) as Int\n")
	assert.Contains(t, files[0].Content, "    val instance = try {\n      Risky(param1)\n    } catch (e0: IOException) {\n      throw RuntimeException(e0)\n    }\n    return instance\n")
}

func TestNewRenderer_Version(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    string
		wantErr bool
	}{
		{name: "canonical", version: "v1.2.3", want: "v1.2.3"},
		{name: "missing prefix", version: "1.4", want: "v1.4.0"},
		{name: "prerelease", version: "v2.0.0-rc.1", want: "v2.0.0-rc.1"},
		{name: "invalid", version: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer, err := NewRenderer(generatorSplit, WithVersion(tt.version))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, renderer.Version())
		})
	}
}

func TestNewRenderer_BadTemplate(t *testing.T) {
	registry := NewTemplateRegistry()
	registry.Set(HeaderTemplate, "{{ .Version ")

	_, err := NewRenderer(generatorSplit, WithRegistry(registry))
	assert.Error(t, err)
}

func TestRender_UnknownPlanKind(t *testing.T) {
	renderer, err := NewRenderer(generatorSplit)
	require.NoError(t, err)

	_, err = renderer.Render(&models.GenerationPlan{Kind: models.PlanKind(9), Name: "X"})
	assert.Error(t, err)
}

func generatorSplit(fqcn string) (string, []string) {
	return generator.SplitClassName(nil, fqcn)
}
