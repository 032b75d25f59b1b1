package cli

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/toyz/injectgen/internal/config"
	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/generator"
	"github.com/toyz/injectgen/internal/models"
	"github.com/toyz/injectgen/internal/parser"
	"github.com/toyz/injectgen/internal/registry"
	"github.com/toyz/injectgen/internal/resolver"
	"github.com/toyz/injectgen/internal/templates"
	"github.com/toyz/injectgen/internal/utils"
)

// Generator coordinates the CLI generation process
type Generator struct {
	files       *utils.FileProcessor
	scanner     *DirectoryScanner
	loader      *parser.Loader
	reporter    *DiagnosticReporter
	diagnostics *utils.DiagnosticSystem
	logger      *zap.Logger
	version     string
	registry    registry.AuditRegistry
	summary     GenerationSummary
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithDiagnostics sets the console diagnostic system
func WithDiagnostics(diagnostics *utils.DiagnosticSystem) GeneratorOption {
	return func(g *Generator) {
		if diagnostics != nil {
			g.diagnostics = diagnostics
		}
	}
}

// WithLogger sets the structured logger passed down to the core packages
func WithLogger(logger *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithVersion sets the version stamped in generated headers
func WithVersion(version string) GeneratorOption {
	return func(g *Generator) {
		if version != "" {
			g.version = version
		}
	}
}

// WithFileProcessor shares a file processor, and with it the file content cache
func WithFileProcessor(files *utils.FileProcessor) GeneratorOption {
	return func(g *Generator) {
		if files != nil {
			g.files = files
		}
	}
}

// WithReporter replaces the diagnostic reporter
func WithReporter(reporter *DiagnosticReporter) GeneratorOption {
	return func(g *Generator) {
		if reporter != nil {
			g.reporter = reporter
		}
	}
}

// NewGenerator creates a new CLI generator
func NewGenerator(verbose bool, options ...GeneratorOption) *Generator {
	g := &Generator{
		files:       utils.NewFileProcessor(),
		reporter:    NewDiagnosticReporter(verbose),
		diagnostics: utils.NewQuietDiagnostics(),
		logger:      zap.NewNop(),
		version:     templates.DefaultVersion,
		registry:    registry.NewAuditRegistry(),
	}
	for _, option := range options {
		option(g)
	}
	g.scanner = NewDirectoryScanner(g.files)
	g.loader = parser.NewLoader(parser.WithFileProcessor(g.files), parser.WithLogger(g.logger))
	return g
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Registry returns the audit registry of the last run
func (g *Generator) Registry() registry.AuditRegistry {
	return g.registry
}

// Round is everything one resolution round produced
type Round struct {
	Table       *models.Table
	Results     []*resolver.Result
	Plans       []*models.GenerationPlan
	Diagnostics errors.Diagnostics
	Registry    registry.AuditRegistry
}

// Failed returns the results stopped by an error diagnostic
func (r *Round) Failed() []*resolver.Result {
	var out []*resolver.Result
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Run executes the complete generation process. Artifacts of successful declarations are
// written even when other declarations fail; the failure is then reported as an error.
func (g *Generator) Run(ctx context.Context, cfg Config) error {
	startTime := time.Now()
	opts := cfg.Options
	if opts == nil {
		opts = config.Default()
	}

	g.registry = registry.NewAuditRegistry()
	g.summary = GenerationSummary{Round: g.registry.Round().String()}
	g.diagnostics.Verbose("Starting round %s at %s", g.summary.Round, startTime.Format("15:04:05"))

	g.diagnostics.PhaseHeader("Loading declarations")
	table, err := g.Load(cfg.Fixtures)
	if err != nil {
		return err
	}
	g.diagnostics.PhaseItem(fmt.Sprintf("%d declarations from %d documents", g.summary.DeclarationsLoaded, g.summary.DocumentsLoaded))

	g.diagnostics.PhaseHeader("Resolving injection targets")
	round, err := g.Resolve(ctx, table, opts)
	if err != nil {
		return err
	}
	g.diagnostics.PhaseItem(fmt.Sprintf("%d candidates, %d plans", len(round.Results), len(round.Plans)))

	g.diagnostics.PhaseHeader("Emitting " + opts.Output.Format)
	emitter, err := NewEmitter(table, opts.Output.Format, g.version)
	if err != nil {
		return err
	}
	artifacts, err := emitter.Emit(round.Plans)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeGeneration,
			Message: fmt.Sprintf("Failed to emit generated code: %v", err),
			Cause:   err,
			Suggestions: []string{
				"Run with --verbose to see which artifact failed",
				"Try --format yaml to inspect the plans without rendering them",
			},
			Context: map[string]interface{}{
				"format": opts.Output.Format,
			},
		}
	}

	if !cfg.DryRun {
		if err := g.write(opts.Output.Dir, artifacts); err != nil {
			return err
		}
	}

	g.reporter.ReportDiagnostics(round.Diagnostics)
	g.summary.Duration = time.Since(startTime)
	g.logger.Debug("generation round finished",
		zap.String("round", g.summary.Round),
		zap.Int("plans", len(round.Plans)),
		zap.Int("warnings", g.summary.Warnings),
		zap.Int("errors", g.summary.Errors),
		zap.Duration("duration", g.summary.Duration),
	)

	if failed := round.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, res := range failed {
			names[i] = res.Declaration.Name
		}
		return &models.GeneratorError{
			Type:    models.ErrorTypeResolution,
			Message: fmt.Sprintf("%d of %d declarations failed to resolve", len(failed), len(round.Results)),
			Cause:   round.Diagnostics.Err(),
			Context: map[string]interface{}{
				"declaration": strings.Join(names, ", "),
				"errors":      g.summary.Errors,
			},
		}
	}
	return nil
}

// Load scans fixtures and loads every declaration document into a frozen table
func (g *Generator) Load(fixtures []string) (*models.Table, error) {
	documents, err := g.scanner.ScanFixtures(fixtures)
	if err != nil {
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			Message: fmt.Sprintf("Failed to scan fixtures: %v", err),
			Cause:   err,
			Suggestions: []string{
				"Check that the specified paths exist",
				"Ensure you have read permissions for the directories",
			},
			Context: map[string]interface{}{
				"fixtures": fixtures,
			},
		}
	}
	if len(documents) == 0 {
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: "No declaration documents found",
			Suggestions: []string{
				"Declaration documents end in .yaml, .yml or .txtar",
				"Hidden, vendor and build directories are not scanned",
			},
			Context: map[string]interface{}{
				"fixtures": fixtures,
			},
		}
	}
	g.diagnostics.Indent()
	for _, doc := range documents {
		g.diagnostics.Debug("document %s", doc)
	}
	g.diagnostics.Unindent()

	table, err := g.loader.Load(documents...)
	if err != nil {
		var genErr *models.GeneratorError
		if goerrors.As(err, &genErr) {
			return nil, genErr
		}
		return nil, &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			Message: fmt.Sprintf("Failed to load declarations: %v", err),
			Cause:   err,
			Context: map[string]interface{}{
				"fixtures": fixtures,
			},
		}
	}

	g.summary.DocumentsLoaded = len(documents)
	g.summary.DeclarationsLoaded = table.Len()
	return table, nil
}

// Resolve resolves every candidate of table in parallel and generates the plans of the
// successful ones, in candidate order. Every plan is recorded in the round's audit registry.
func (g *Generator) Resolve(ctx context.Context, table *models.Table, opts *config.Options) (*Round, error) {
	res, err := resolver.New(table, opts.ResolverOptions(), resolver.WithLogger(g.logger))
	if err != nil {
		return nil, errors.WrapConfigurationError("resolver", "create", err).
			WithSuggestion("Check the exclude_filters patterns")
	}

	results, err := resolveParallel(ctx, res, res.Candidates(), opts.Workers)
	if err != nil {
		return nil, err
	}

	round := &Round{
		Table:    table,
		Results:  results,
		Registry: g.registry,
	}
	planner := generator.NewGenerator(table, opts.GeneratorOptions(), generator.WithLogger(g.logger))
	for _, result := range results {
		round.Diagnostics.Merge(result.Diagnostics)
		if err := g.plan(round, planner, result); err != nil {
			return nil, err
		}
	}

	g.summary.CandidatesResolved += len(results)
	g.summary.Warnings += len(round.Diagnostics.Warnings())
	g.summary.Errors += len(round.Diagnostics.Errors())
	return round, nil
}

func (g *Generator) plan(round *Round, planner *generator.Generator, result *resolver.Result) error {
	if result.Skipped {
		g.summary.Skipped++
		g.diagnostics.Verbose("skipped %s: %s", result.Declaration.Name, result.SkipReason)
		return nil
	}

	plans, err := planner.Generate(result)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeGeneration,
			File:    result.Declaration.File,
			Line:    result.Declaration.Line,
			Message: fmt.Sprintf("Failed to generate plans for %s: %v", result.Declaration.Name, err),
			Cause:   err,
			Context: map[string]interface{}{
				"declaration": result.Declaration.Name,
			},
		}
	}

	for _, plan := range plans {
		if err := round.Registry.Record(plan, result.Declaration); err != nil {
			return &models.GeneratorError{
				Type:    models.ErrorTypeGeneration,
				File:    result.Declaration.File,
				Line:    result.Declaration.Line,
				Message: err.Error(),
				Cause:   err,
				Suggestions: []string{
					"Two declarations map to the same generated class name",
				},
			}
		}
		switch plan.Kind {
		case models.PlanFactory:
			g.summary.FactoriesGenerated++
		case models.PlanMemberInjector:
			g.summary.MemberInjectorsGenerated++
		}
		round.Plans = append(round.Plans, plan)
	}
	return nil
}

// resolveParallel resolves decls with at most workers goroutines; results keep the order
// of decls
func resolveParallel(ctx context.Context, res *resolver.Resolver, decls []*models.Declaration, workers int) ([]*resolver.Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*resolver.Result, len(decls))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, decl := range decls {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = res.Resolve(decl)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// write stores artifacts below outputDir
func (g *Generator) write(outputDir string, artifacts []Artifact) error {
	for _, artifact := range artifacts {
		path := filepath.Join(outputDir, filepath.FromSlash(artifact.Path))
		if err := g.files.WriteFile(path, artifact.Content); err != nil {
			return &models.GeneratorError{
				Type:    models.ErrorTypeFileSystem,
				Message: fmt.Sprintf("Failed to write %s: %v", artifact.QualifiedName, err),
				Cause:   errors.WrapFileSystemError("write", path, err),
				Suggestions: []string{
					"Check write permissions for the output directory",
					"Verify there's enough disk space",
				},
				Context: map[string]interface{}{
					"path": path,
				},
			}
		}
		g.diagnostics.Verbose("wrote %s", path)
		g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, path)
	}
	return nil
}

// Explanation is the resolution of one declaration with everything generated for it
type Explanation struct {
	Declaration *models.Declaration
	Result      *resolver.Result
	Plans       []*models.GenerationPlan
	Artifacts   []Artifact
}

// Explain loads fixtures and resolves the single declaration fqcn, whether or not it is a
// generation candidate
func (g *Generator) Explain(ctx context.Context, fixtures []string, fqcn string, opts *config.Options) (*Explanation, error) {
	if opts == nil {
		opts = config.Default()
	}
	g.registry = registry.NewAuditRegistry()

	table, err := g.Load(fixtures)
	if err != nil {
		return nil, err
	}
	decl, ok := table.Lookup(fqcn)
	if !ok {
		return nil, &models.GeneratorError{
			Type:        models.ErrorTypeValidation,
			Message:     fmt.Sprintf("Declaration '%s' is not defined in the loaded documents", fqcn),
			Suggestions: similarNames(table, fqcn),
			Context: map[string]interface{}{
				"declaration": fqcn,
				"fixtures":    fixtures,
			},
		}
	}

	res, err := resolver.New(table, opts.ResolverOptions(), resolver.WithLogger(g.logger))
	if err != nil {
		return nil, errors.WrapConfigurationError("resolver", "create", err)
	}
	results, err := resolveParallel(ctx, res, []*models.Declaration{decl}, 1)
	if err != nil {
		return nil, err
	}

	round := &Round{Table: table, Results: results, Registry: g.registry}
	planner := generator.NewGenerator(table, opts.GeneratorOptions(), generator.WithLogger(g.logger))
	if err := g.plan(round, planner, results[0]); err != nil {
		return nil, err
	}

	emitter, err := NewEmitter(table, opts.Output.Format, g.version)
	if err != nil {
		return nil, err
	}
	artifacts, err := emitter.Emit(round.Plans)
	if err != nil {
		return nil, err
	}

	return &Explanation{
		Declaration: decl,
		Result:      results[0],
		Plans:       round.Plans,
		Artifacts:   artifacts,
	}, nil
}

// similarNames suggests loaded declarations sharing the simple name of fqcn
func similarNames(table *models.Table, fqcn string) []string {
	simple := models.SimpleNameOf(fqcn)
	var names []string
	for _, decl := range table.Sorted() {
		if decl.SimpleNames[len(decl.SimpleNames)-1] == simple {
			names = append(names, "Did you mean "+decl.Name+"?")
		}
	}
	if len(names) == 0 {
		names = append(names, "Use the fully-qualified name, e.g. com.example.Foo or com.example.Outer.Inner")
	}
	return names
}

// PrintExplanation writes exp as a human readable report
func (g *Generator) PrintExplanation(w io.Writer, exp *Explanation) {
	fmt.Fprintf(w, "%s (%s, %s)\n", exp.Declaration.Name, exp.Declaration.Kind, exp.Declaration.Visibility)
	if exp.Declaration.File != "" {
		fmt.Fprintf(w, "  declared at %s:%d\n", exp.Declaration.File, exp.Declaration.Line)
	}

	result := exp.Result
	switch {
	case result.Failed():
		fmt.Fprintf(w, "  status: failed\n")
	case result.Skipped:
		fmt.Fprintf(w, "  status: skipped (%s)\n", result.SkipReason)
	case len(exp.Plans) == 0:
		fmt.Fprintf(w, "  status: nothing to generate\n")
	default:
		fmt.Fprintf(w, "  status: ok\n")
	}

	if len(result.Diagnostics) > 0 {
		fmt.Fprintf(w, "\nDiagnostics:\n")
		for _, d := range result.Diagnostics {
			fmt.Fprintf(w, "  %s [%s] %s\n", d.Severity, d.Code, d.Message)
		}
	}

	generated := make([]string, 0, len(exp.Plans))
	for _, plan := range exp.Plans {
		generated = append(generated, plan.QualifiedName)
	}
	sort.Strings(generated)
	if len(generated) > 0 {
		fmt.Fprintf(w, "\nGenerates:\n")
		for _, name := range generated {
			fmt.Fprintf(w, "  - %s\n", name)
		}
	}

	for _, artifact := range exp.Artifacts {
		fmt.Fprintf(w, "\n--- %s ---\n", artifact.Path)
		w.Write(artifact.Content)
	}
}

// ReportSuccess reports successful generation using the diagnostic reporter
func (g *Generator) ReportSuccess() {
	g.reporter.ReportSuccess(g.summary)
}

// ReportError reports a failed run using the diagnostic reporter
func (g *Generator) ReportError(err error) {
	g.reporter.ReportError(err)
}
