// Package resolver decides, for each declaration of a round, which factory and member
// injector it needs and what each of them injects. Every function here is pure with
// respect to the declaration table; problems are returned as diagnostics.
package resolver

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/toyz/injectgen/internal/annotations"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/models"
)

// DefaultAncestorCacheSize bounds the memo of nearest-injected-ancestor lookups
const DefaultAncestorCacheSize = 4096

// Options controls resolution
type Options struct {
	ExcludeFilters         []string      // glob patterns over fully-qualified names
	ScopeAnnotationNames   []string      // extra scope markers not declared in the table
	MissingFactoryPolicy   errors.Policy // relaxed mode without a usable default constructor
	MethodVisibilityPolicy errors.Policy // public or protected injected methods
	AncestorCacheSize      int
}

// Resolver resolves injection targets over one frozen declaration table
type Resolver struct {
	table       *models.Table
	annotations *annotations.Registry
	opts        Options
	excludes    []string
	ancestors   *lru.Cache[ancestorKey, models.DeclID]
	logger      *zap.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the structured logger used for debug traces
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a resolver for table
func New(table *models.Table, opts Options, options ...Option) (*Resolver, error) {
	if table == nil {
		return nil, fmt.Errorf("declaration table cannot be nil")
	}

	excludes := make([]string, 0, len(opts.ExcludeFilters))
	for _, filter := range opts.ExcludeFilters {
		filter = strings.TrimSpace(filter)
		if filter == "" {
			continue
		}
		pattern := dotsToSlashes(filter)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude filter %q", filter)
		}
		excludes = append(excludes, pattern)
	}

	size := opts.AncestorCacheSize
	if size <= 0 {
		size = DefaultAncestorCacheSize
	}
	cache, err := lru.New[ancestorKey, models.DeclID](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create ancestor cache: %w", err)
	}

	r := &Resolver{
		table:       table,
		annotations: annotations.NewRegistry(table, opts.ScopeAnnotationNames),
		opts:        opts,
		excludes:    excludes,
		ancestors:   cache,
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

// Table returns the declaration table
func (r *Resolver) Table() *models.Table {
	return r.table
}

// Annotations returns the annotation registry of the round
func (r *Resolver) Annotations() *annotations.Registry {
	return r.annotations
}

func dotsToSlashes(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// IsExcluded reports whether decl matches one of the exclude filters
func (r *Resolver) IsExcluded(decl *models.Declaration) bool {
	name := dotsToSlashes(decl.Name)
	for _, pattern := range r.excludes {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Result is the outcome of resolving one declaration
type Result struct {
	Declaration *models.Declaration
	Constructor *models.ConstructorInjectionTarget // nil when no factory is generated
	Members     *models.MemberInjectionTarget      // nil when no member injector is generated
	Skipped     bool
	SkipReason  string
	Diagnostics errors.Diagnostics
}

// Failed reports whether an error diagnostic stopped generation for the declaration
func (res *Result) Failed() bool {
	return res.Diagnostics.HasErrors()
}

// Resolve runs member discovery and constructor selection for decl. Any error diagnostic
// drops both artifacts of the declaration; other declarations are unaffected.
func (r *Resolver) Resolve(decl *models.Declaration) *Result {
	result := &Result{Declaration: decl}
	if r.IsExcluded(decl) {
		result.Skipped = true
		result.SkipReason = "excluded by filters"
		return result
	}

	if r.hasInjectedMembers(decl) {
		members, diags := r.DiscoverMembers(decl)
		result.Diagnostics.Merge(diags)
		if members.NeedsInjector() {
			result.Members = members
		}
	}

	selection := r.SelectConstructor(decl)
	result.Diagnostics.Merge(selection.Diagnostics)
	switch selection.Outcome {
	case OutcomeTarget:
		result.Constructor = selection.Target
	case OutcomeSkip:
		result.Skipped = result.Members == nil
		result.SkipReason = selection.Reason
	}

	if result.Failed() {
		result.Constructor = nil
		result.Members = nil
		result.Skipped = false
	}

	r.logger.Debug("resolved declaration",
		zap.String("declaration", decl.Name),
		zap.Bool("factory", result.Constructor != nil),
		zap.Bool("member_injector", result.Members != nil),
		zap.Int("diagnostics", len(result.Diagnostics)),
	)
	return result
}

// Candidates enumerates the declarations that may need a factory or an injector, in a
// deterministic order: @InjectConstructor classes, classes with @Inject constructors,
// @ProvidesSingleton classes, classes with injected fields, classes with injected methods,
// then scope-annotated classes. Excluded declarations are left out.
func (r *Resolver) Candidates() []*models.Declaration {
	sorted := r.table.Sorted()
	seen := make(map[models.DeclID]bool)
	var out []*models.Declaration

	pass := func(match func(*models.Declaration) bool) {
		for _, decl := range sorted {
			if seen[decl.ID] || !isClassLike(decl) || r.IsExcluded(decl) || !match(decl) {
				continue
			}
			seen[decl.ID] = true
			out = append(out, decl)
		}
	}

	pass(func(d *models.Declaration) bool { return d.HasAnnotation(annotations.InjectConstructor) })
	pass(func(d *models.Declaration) bool { return len(injectedConstructors(d)) > 0 })
	pass(func(d *models.Declaration) bool { return d.HasAnnotation(annotations.ProvidesSingleton) })
	pass(func(d *models.Declaration) bool { return len(injectedFields(d)) > 0 })
	pass(func(d *models.Declaration) bool { return len(injectedMethods(d)) > 0 })
	pass(r.hasScopeAnnotation)

	return out
}

// ResolveAll resolves every candidate sequentially, in candidate order
func (r *Resolver) ResolveAll() []*Result {
	candidates := r.Candidates()
	results := make([]*Result, len(candidates))
	for i, decl := range candidates {
		results[i] = r.Resolve(decl)
	}
	return results
}

func isClassLike(decl *models.Declaration) bool {
	return decl.Kind == models.KindClass || decl.Kind == models.KindObject
}

func (r *Resolver) hasScopeAnnotation(decl *models.Declaration) bool {
	for _, a := range decl.Annotations {
		if r.annotations.IsScope(a.Type) {
			return true
		}
	}
	return false
}

func anchorOf(decl *models.Declaration, member, kind string) errors.Anchor {
	return errors.Anchor{Declaration: decl.Name, Member: member, MemberKind: kind}
}

func locationOf(decl *models.Declaration, line int) errors.SourceLocation {
	if line == 0 {
		line = decl.Line
	}
	return errors.SourceLocation{File: decl.File, Line: line}
}
