package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toyz/injectgen/internal/cli"
	"github.com/toyz/injectgen/internal/config"
	"github.com/toyz/injectgen/internal/utils"
)

// reportedError marks an error already printed by the diagnostic reporter
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// globalFlags are the flags shared by every command
type globalFlags struct {
	configFile string
	verbose    bool
	quiet      bool
}

// session is what a command needs after options are resolved
type session struct {
	opts        *config.Options
	diagnostics *utils.DiagnosticSystem
	reporter    *cli.DiagnosticReporter
	logger      *zap.Logger
	generator   *cli.Generator
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "injectgen",
		Short: "Dependency injection factory and member injector generator",
		Long: `injectgen reads class declarations annotated with javax.inject and toothpick
annotations and generates a __Factory for every injectable class and a
__MemberInjector for every class with injected fields or methods.

Declarations are YAML documents (.yaml, .yml) or txtar bundles of them (.txtar).
Options are read from injectgen.yaml, INJECTGEN_* environment variables and flags,
later sources overriding earlier ones.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (default: injectgen.yaml in the working directory or module root)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output and detailed error reporting")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "only show errors")
	config.BindFlags(pf)

	root.AddCommand(
		generateCmd(flags),
		explainCmd(flags),
		cleanCmd(flags),
	)
	return root
}

// open resolves the options and builds the console, logger and generator for cmd
func (f *globalFlags) open(cmd *cobra.Command) (*session, error) {
	reporter := cli.NewDiagnosticReporter(f.verbose)
	redirected := cmd.OutOrStdout() != os.Stdout || cmd.ErrOrStderr() != os.Stderr
	if redirected {
		reporter.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	reader := utils.NewFileReader()
	opts, configFile, err := config.NewLoader(config.WithFileReader(reader)).Load(f.configFile, cmd.Flags())
	if err != nil {
		reporter.ReportError(err)
		return nil, &reportedError{err: err}
	}

	level, err := utils.ParseDiagnosticLevel(opts.Log.Level)
	if err != nil {
		level = utils.DiagnosticInfo
	}
	switch {
	case f.quiet:
		level = utils.DiagnosticError
	case f.verbose && level < utils.DiagnosticVerbose:
		level = utils.DiagnosticVerbose
	}
	diagnostics := utils.NewDiagnosticSystem(level)
	if redirected {
		diagnostics.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	logger, err := utils.NewLogger(opts.Log.Level)
	if err != nil {
		reporter.ReportError(err)
		return nil, &reportedError{err: err}
	}

	if configFile != "" {
		diagnostics.Verbose("Using config file %s", configFile)
	}
	diagnostics.Debug("Options: %+v", *opts)

	return &session{
		opts:        opts,
		diagnostics: diagnostics,
		reporter:    reporter,
		logger:      logger,
		generator: cli.NewGenerator(f.verbose,
			cli.WithDiagnostics(diagnostics),
			cli.WithLogger(logger),
			cli.WithReporter(reporter),
			cli.WithVersion(version),
			cli.WithFileProcessor(utils.NewFileProcessorWithReader(reader)),
		),
	}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func generateCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "generate [fixtures...]",
		Short: "Generate factories and member injectors",
		Long: `Loads every declaration document below the given paths (default: the working
directory), resolves injection targets and writes the generated artifacts to the
output directory. Go-style patterns like ./... are accepted.

The command exits with a non-zero status when any declaration has an error
diagnostic; artifacts of the other declarations are still written.`,
		Example: `  injectgen generate ./fixtures/...
  injectgen generate --format yaml -o plans app.yaml
  injectgen generate --exclude 'com.example.legacy.**' --strict-missing-factory ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			s.diagnostics.Header("generating " + s.opts.Output.Format + " into " + s.opts.Output.Dir)
			err = s.generator.Run(cmd.Context(), cli.Config{
				Fixtures: args,
				Options:  s.opts,
				DryRun:   dryRun,
			})
			if err != nil {
				s.generator.ReportError(err)
				return &reportedError{err: err}
			}

			if !flags.quiet {
				s.generator.ReportSuccess()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve and render everything but write nothing")
	return cmd
}

func explainCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <fixture> <class>",
		Short: "Show the resolution, diagnostics and generated code of one class",
		Example: `  injectgen explain fixtures/coffee.yaml coffee.CoffeeMaker
  injectgen explain --format json fixtures/ coffee.CoffeeMaker.Filter`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			exp, err := s.generator.Explain(cmd.Context(), []string{args[0]}, args[1], s.opts)
			if err != nil {
				s.generator.ReportError(err)
				return &reportedError{err: err}
			}
			s.generator.PrintExplanation(cmd.OutOrStdout(), exp)
			return nil
		},
	}
}

func cleanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [dirs...]",
		Short: "Remove generated __Factory and __MemberInjector files",
		Long: `Removes every generated artifact below the given directories
(default: the configured output directory). Go-style patterns like ./... are accepted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if len(args) == 0 {
				args = []string{s.opts.Output.Dir}
			}

			s.diagnostics.Info("Cleaning generated files in %v", args)
			removed, err := cli.NewCleaner(nil).CleanGeneratedFiles(args)
			if err != nil {
				s.reporter.ReportError(err)
				return &reportedError{err: err}
			}

			s.diagnostics.Indent()
			for _, path := range removed {
				s.diagnostics.Verbose("removed %s", path)
			}
			s.diagnostics.Unindent()
			s.diagnostics.Success("Removed %d generated files", len(removed))
			return nil
		},
	}
}
