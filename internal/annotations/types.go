package annotations

// Well-known annotation and wrapper identities
const (
	Inject             = "javax.inject.Inject"
	Named              = "javax.inject.Named"
	Qualifier          = "javax.inject.Qualifier"
	Scope              = "javax.inject.Scope"
	Singleton          = "javax.inject.Singleton"
	Provider           = "javax.inject.Provider"
	Lazy               = "toothpick.Lazy"
	InjectConstructor  = "toothpick.InjectConstructor"
	ProvidesSingleton  = "toothpick.ProvidesSingleton"
	Releasable         = "toothpick.Releasable"
	ProvidesReleasable = "toothpick.ProvidesReleasable"

	SuppressWarnings = "java.lang.SuppressWarnings"
	Suppress         = "kotlin.Suppress"
	JavaRetention    = "java.lang.annotation.Retention"
	KotlinRetention  = "kotlin.annotation.Retention"

	// RetentionRuntime is the retention required on scope annotations
	RetentionRuntime = "RUNTIME"
)

// Values accepted by @SuppressWarnings, compared case-insensitively
const (
	SuppressInjectable = "injectable"
	SuppressVisible    = "visible"
)

// shortNames lets declaration documents use simple names for well-known identities
var shortNames = map[string]string{
	"Inject":             Inject,
	"Named":              Named,
	"Qualifier":          Qualifier,
	"Scope":              Scope,
	"Singleton":          Singleton,
	"Provider":           Provider,
	"Lazy":               Lazy,
	"InjectConstructor":  InjectConstructor,
	"ProvidesSingleton":  ProvidesSingleton,
	"Releasable":         Releasable,
	"ProvidesReleasable": ProvidesReleasable,
	"SuppressWarnings":   SuppressWarnings,
	"Suppress":           Suppress,
	"Retention":          JavaRetention,
	"Any":                "kotlin.Any",
	"String":             "kotlin.String",
	"KClass":             "kotlin.reflect.KClass",
}

// WellKnown returns the fully-qualified identity for a simple well-known name
func WellKnown(simpleName string) (string, bool) {
	fqcn, ok := shortNames[simpleName]
	return fqcn, ok
}

// IsWrapper reports whether name is the Provider or Lazy wrapper identity
func IsWrapper(name string) bool {
	return name == Provider || name == Lazy
}
