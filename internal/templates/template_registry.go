package templates

import "sort"

// Template names
const (
	HeaderTemplate         = "header"
	FactoryTemplate        = "factory"
	FactoryApplyTemplate   = "factory-apply"
	MemberInjectorTemplate = "member-injector"
)

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerFactoryTemplates()
	registry.registerMemberInjectorTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	template, exists := tr.templates[name]
	return template, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

// Set registers or replaces a template
func (tr *TemplateRegistry) Set(name, text string) {
	tr.templates[name] = text
}

// Names returns the registered template names sorted
func (tr *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates[HeaderTemplate] = `// Generated by injectgen {{ .Version }} from {{ .Source }}. Do not edit.
{{- if .Package }}
package {{ .Package }}
{{- end }}
{{- if .Imports }}
{{ range .Imports }}
import {{ . }}
{{- end }}
{{- end }}

`
}

func (tr *TemplateRegistry) registerFactoryTemplates() {
	tr.templates[FactoryTemplate] = `{{ suppress .ClassSuppress }}
{{ .Visibility }} class {{ .Name }} : {{ .FactoryType }}<{{ .ReturnType }}> {
{{- if .InjectorType }}
  private val memberInjector: {{ .MemberInjectorType }}<{{ .InjectorType }}> = {{ .InjectorInit }}()
{{ end }}
{{- if .MethodSuppress }}
{{ suppress .MethodSuppress | indent 2 }}
{{- end }}
  public override fun createInstance(scope: {{ .ScopeType }}): {{ .ReturnType }} {{ if .Wrap }}= with(getTargetScope(scope)) {{ end }}{
{{- if .ShadowScope }}
    val scope = getTargetScope(scope)
{{- end }}
{{- range .Lookups }}
    val {{ .Var }} = {{ $.Receiver }}{{ .Call }} as {{ .Type }}
{{- end }}
{{- if .Catches }}
    val instance = try {
      {{ .Construct }}
    }{{ range .Catches }} catch ({{ .Var }}: {{ .Type }}) {
      throw {{ $.RuntimeException }}({{ .Var }})
    }{{ end }}
    {{ .Return }}instance{{ template "factory-apply" . }}
{{- else }}
    {{ .Return }}{{ .Construct }}{{ template "factory-apply" . }}
{{- end }}
  }

  public override fun getTargetScope(scope: {{ .ScopeType }}): {{ .ScopeType }} = {{ .TargetScope }}
{{- range .Flags }}

  public override fun {{ .Name }}(): {{ $.BooleanType }} = {{ .Value }}
{{- end }}
}
`

	tr.templates[FactoryApplyTemplate] = `{{ if .InjectorType }}.apply {
      memberInjector.inject(this, {{ .InjectorScope }})
    }{{ end }}`
}

func (tr *TemplateRegistry) registerMemberInjectorTemplates() {
	tr.templates[MemberInjectorTemplate] = `{{ suppress .ClassSuppress }}
{{ .Visibility }} class {{ .Name }} : {{ .MemberInjectorType }}<{{ .TargetType }}> {
{{- if .SuperType }}
  private val superMemberInjector: {{ .MemberInjectorType }}<{{ .SuperType }}> = {{ .SuperInit }}()
{{ end }}
{{- if .InjectSuppress }}
{{ suppress .InjectSuppress | indent 2 }}
{{- end }}
  public override fun inject(target: {{ .TargetType }}, scope: {{ .ScopeType }}) {
{{- if .SuperType }}
    superMemberInjector.inject(target, scope)
{{- end }}
{{- range .Fields }}
    target.{{ .Member }} = scope.{{ .Call }}{{ if .Cast }} as {{ .Cast }}{{ end }}
{{- end }}
{{- range .Methods }}
{{- range .Lookups }}
    val {{ .Var }} = scope.{{ .Call }} as {{ .Type }}
{{- end }}
{{- if .Catches }}
    try {
      target.{{ .Member }}({{ join ", " .Args }})
    }{{ range .Catches }} catch ({{ .Var }}: {{ .Type }}) {
      throw {{ $.RuntimeException }}({{ .Var }})
    }{{ end }}
{{- else }}
    target.{{ .Member }}({{ join ", " .Args }})
{{- end }}
{{- end }}
  }
}
`
}

// DefaultTemplateRegistry is the global template registry instance
var DefaultTemplateRegistry = NewTemplateRegistry()
