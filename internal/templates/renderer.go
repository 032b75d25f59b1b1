package templates

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/mod/semver"

	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

// DefaultVersion is stamped in generated headers when no version is configured
const DefaultVersion = "v0.0.0-dev"

// Runtime classes referenced by generated sources
const (
	factoryClass          = "toothpick.Factory"
	memberInjectorClass   = "toothpick.MemberInjector"
	scopeClass            = "toothpick.Scope"
	booleanClass          = "kotlin.Boolean"
	suppressClass         = "kotlin.Suppress"
	runtimeExceptionClass = "java.lang.RuntimeException"
)

// File is one rendered source file
type File struct {
	Path          string // slash-separated, relative to the output root
	QualifiedName string
	Source        string // declaration the file was generated from
	Content       string
}

// Renderer prints generation plans as source files
type Renderer struct {
	registry *TemplateRegistry
	split    ClassSplitter
	version  string
	tmpl     *template.Template
}

// RendererOption configures a Renderer
type RendererOption func(*Renderer)

// WithVersion sets the version stamped in file headers
func WithVersion(version string) RendererOption {
	return func(r *Renderer) {
		r.version = version
	}
}

// WithRegistry replaces the default template registry
func WithRegistry(registry *TemplateRegistry) RendererOption {
	return func(r *Renderer) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// NewRenderer creates a renderer. split resolves class names to package and nesting path.
func NewRenderer(split ClassSplitter, options ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		registry: DefaultTemplateRegistry,
		split:    split,
		version:  DefaultVersion,
	}
	for _, option := range options {
		option(r)
	}

	if !strings.HasPrefix(r.version, "v") {
		r.version = "v" + r.version
	}
	if !semver.IsValid(r.version) {
		return nil, errors.Newf(errors.ConfigurationErrorCode, "invalid version %q", r.version).
			WithSuggestion("Use a semantic version such as v1.2.3")
	}
	r.version = semver.Canonical(r.version)

	root := template.New("root").Funcs(templateFuncs())
	for _, name := range r.registry.Names() {
		if _, err := root.New(name).Parse(r.registry.MustGet(name)); err != nil {
			return nil, errors.WrapTemplateError(name, "parse", err)
		}
	}
	r.tmpl = root
	return r, nil
}

// Version returns the canonical version stamped in headers
func (r *Renderer) Version() string {
	return r.version
}

func templateFuncs() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["suppress"] = suppressAnnotation
	return funcs
}

// suppressAnnotation prints a Suppress annotation, one member per line when there are several
func suppressAnnotation(members []string) string {
	if len(members) == 1 {
		return "@Suppress(" + strconv.Quote(members[0]) + ")"
	}
	var b strings.Builder
	b.WriteString("@Suppress(\n")
	for _, m := range members {
		b.WriteString("  " + strconv.Quote(m) + ",\n")
	}
	b.WriteString(")")
	return b.String()
}

// Render prints one plan
func (r *Renderer) Render(plan *models.GenerationPlan) (*File, error) {
	imports := NewImportManager(plan.Package, r.split)
	imports.Reserve(plan.Name)

	var (
		body string
		err  error
	)
	switch plan.Kind {
	case models.PlanFactory:
		body, err = r.execute(FactoryTemplate, r.factoryView(plan, imports))
	case models.PlanMemberInjector:
		body, err = r.execute(MemberInjectorTemplate, r.injectorView(plan, imports))
	default:
		err = fmt.Errorf("unknown plan kind %v", plan.Kind)
	}
	if err != nil {
		return nil, errors.WrapGenerateError(plan.QualifiedName, err)
	}

	header, err := r.execute(HeaderTemplate, fileView{
		Version: r.version,
		Source:  plan.Source,
		Package: plan.Package,
		Imports: imports.Imports(),
	})
	if err != nil {
		return nil, errors.WrapGenerateError(plan.QualifiedName, err)
	}

	return &File{
		Path:          filePath(plan.Package, plan.Name),
		QualifiedName: plan.QualifiedName,
		Source:        plan.Source,
		Content:       header + body,
	}, nil
}

// RenderAll prints plans in order and stops at the first failure
func (r *Renderer) RenderAll(plans []*models.GenerationPlan) ([]*File, error) {
	files := make([]*File, 0, len(plans))
	for _, plan := range plans {
		file, err := r.Render(plan)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (r *Renderer) execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}
	return buf.String(), nil
}

func filePath(pkg, name string) string {
	if pkg == "" {
		return name + ".kt"
	}
	return strings.ReplaceAll(pkg, ".", "/") + "/" + name + ".kt"
}
