package config

import (
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/generator"
	"github.com/toyz/injectgen/internal/resolver"
)

// Output formats
const (
	FormatSource = "source"
	FormatYAML   = "yaml"
	FormatJSON   = "json"
)

// DefaultFileName is looked up when no config file is given explicitly
const DefaultFileName = "injectgen.yaml"

// EnvPrefix prefixes every environment override; `__` separates nested keys
const EnvPrefix = "INJECTGEN_"

// Options holds every generation option
type Options struct {
	// ExcludeFilters are globs over fully-qualified class names; '.' separates segments
	ExcludeFilters []string `koanf:"exclude_filters" validate:"dive,required,glob"`

	// ScopeAnnotationNames are extra scope annotations, not necessarily meta-annotated with @Scope
	ScopeAnnotationNames []string `koanf:"scope_annotation_names" validate:"dive,required"`

	StrictOnMissingFactory                  bool `koanf:"strict_on_missing_factory"`
	StrictOnNonPackageVisibleInjectedMethod bool `koanf:"strict_on_non_package_visible_injected_method"`
	WrapScopeAccessInBlock                  bool `koanf:"wrap_scope_access_in_block"`

	// Workers bounds parallel resolution; 0 means GOMAXPROCS
	Workers int `koanf:"workers" validate:"gte=0"`

	AncestorCacheSize int `koanf:"ancestor_cache_size" validate:"gt=0"`

	Output OutputOptions `koanf:"output"`
	Log    LogOptions    `koanf:"log"`
}

// OutputOptions controls where and how artifacts are written
type OutputOptions struct {
	Dir    string `koanf:"dir" validate:"required"`
	Format string `koanf:"format" validate:"oneof=source yaml json"`
}

// LogOptions controls console and structured logging
type LogOptions struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// Default returns the default options
func Default() *Options {
	return &Options{
		ExcludeFilters:       []string{},
		ScopeAnnotationNames: []string{},
		AncestorCacheSize:    resolver.DefaultAncestorCacheSize,
		Output: OutputOptions{
			Dir:    "generated",
			Format: FormatSource,
		},
		Log: LogOptions{
			Level: "info",
		},
	}
}

// ResolverOptions returns the resolution options
func (o *Options) ResolverOptions() resolver.Options {
	return resolver.Options{
		ExcludeFilters:         o.ExcludeFilters,
		ScopeAnnotationNames:   o.ScopeAnnotationNames,
		MissingFactoryPolicy:   errors.PolicyFor(o.StrictOnMissingFactory),
		MethodVisibilityPolicy: errors.PolicyFor(o.StrictOnNonPackageVisibleInjectedMethod),
		AncestorCacheSize:      o.AncestorCacheSize,
	}
}

// GeneratorOptions returns the plan generation options
func (o *Options) GeneratorOptions() generator.Options {
	return generator.Options{WrapScopeAccessInBlock: o.WrapScopeAccessInBlock}
}
