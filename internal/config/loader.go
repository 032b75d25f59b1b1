package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/toyz/injectgen/internal/errors"
	"github.com/toyz/injectgen/internal/utils"
)

// Flag names bound by BindFlags, mapped to their option keys
var flagKeys = map[string]string{
	"exclude":                  "exclude_filters",
	"scope-annotation":         "scope_annotation_names",
	"strict-missing-factory":   "strict_on_missing_factory",
	"strict-method-visibility": "strict_on_non_package_visible_injected_method",
	"wrap-scope-access":        "wrap_scope_access_in_block",
	"workers":                  "workers",
	"ancestor-cache-size":      "ancestor_cache_size",
	"output":                   "output.dir",
	"format":                   "output.format",
	"log-level":                "log.level",
}

// BindFlags registers the option flags on fs
func BindFlags(fs *pflag.FlagSet) {
	defaults := Default()
	fs.StringSlice("exclude", nil, "glob over fully-qualified class names to skip (repeatable)")
	fs.StringSlice("scope-annotation", nil, "extra scope annotation class (repeatable)")
	fs.Bool("strict-missing-factory", defaults.StrictOnMissingFactory, "report classes that need a factory but cannot have one as errors")
	fs.Bool("strict-method-visibility", defaults.StrictOnNonPackageVisibleInjectedMethod, "report non package-private injected methods as errors")
	fs.Bool("wrap-scope-access", defaults.WrapScopeAccessInBlock, "render factory bodies inside with(getTargetScope(scope))")
	fs.Int("workers", defaults.Workers, "parallel resolution workers (0 = GOMAXPROCS)")
	fs.Int("ancestor-cache-size", defaults.AncestorCacheSize, "entries kept by the ancestor lookup cache")
	fs.StringP("output", "o", defaults.Output.Dir, "output directory")
	fs.String("format", defaults.Output.Format, "output format: source, yaml or json")
	fs.String("log-level", defaults.Log.Level, "log level: debug, info, warn or error")
}

// Loader builds Options from defaults, a YAML file, the environment and flags
type Loader struct {
	koanf     *koanf.Koanf
	validator *validator.Validate
	reader    *utils.FileReader
	gomod     *utils.GoModParser
	workDir   string
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithFileReader shares a cached file reader
func WithFileReader(reader *utils.FileReader) LoaderOption {
	return func(l *Loader) {
		if reader != nil {
			l.reader = reader
			l.gomod = utils.NewGoModParser(reader)
		}
	}
}

// WithWorkDir sets the directory config discovery starts from
func WithWorkDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.workDir = dir
	}
}

// NewLoader creates a configuration loader
func NewLoader(opts ...LoaderOption) *Loader {
	reader := utils.NewFileReader()
	l := &Loader{
		koanf:     koanf.New("."),
		validator: newValidator(),
		reader:    reader,
		gomod:     utils.NewGoModParser(reader),
		workDir:   ".",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		return doublestar.ValidatePattern(strings.ReplaceAll(fl.Field().String(), ".", "/"))
	})
	return v
}

// Load resolves the options. configFile may be empty to use discovery; flags may be nil.
// It returns the options and the config file that was applied, if any.
func (l *Loader) Load(configFile string, flags *pflag.FlagSet) (*Options, string, error) {
	l.koanf = koanf.New(".")

	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, "", errors.WrapConfigurationError("defaults", "load", err)
	}

	file, err := l.Discover(configFile)
	if err != nil {
		return nil, "", err
	}
	if file != "" {
		if err := l.loadFile(file); err != nil {
			return nil, "", err
		}
	}

	if err := l.loadEnvironment(); err != nil {
		return nil, "", err
	}

	if flags != nil {
		if err := l.koanf.Load(rawMap(changedFlags(flags)), nil); err != nil {
			return nil, "", errors.WrapConfigurationError("flags", "load", err)
		}
	}

	opts, err := l.unmarshalAndValidate()
	if err != nil {
		return nil, "", err
	}
	return opts, file, nil
}

// Discover returns the config file to apply: explicit if given, else injectgen.yaml in the
// working directory, else injectgen.yaml next to the nearest go.mod. "" means none.
func (l *Loader) Discover(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.WrapConfigurationError(explicit, "find", err).
				WithSuggestion("Pass an existing file to --config or omit the flag")
		}
		return explicit, nil
	}

	candidate := filepath.Join(l.workDir, DefaultFileName)
	if isFile(candidate) {
		return candidate, nil
	}

	root, err := l.gomod.FindModuleRoot(l.workDir)
	if err != nil {
		return "", nil
	}
	// a go.mod without a module line does not mark a project root
	if _, err := l.gomod.ParseModuleName(filepath.Join(root, "go.mod")); err != nil {
		return "", nil
	}
	candidate = filepath.Join(root, DefaultFileName)
	if isFile(candidate) {
		return candidate, nil
	}
	return "", nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (l *Loader) loadFile(path string) error {
	content, err := l.reader.ReadFile(path)
	if err != nil {
		return errors.WrapConfigurationError(path, "read", err)
	}

	data := make(map[string]any)
	if err := yaml.Unmarshal(content, &data); err != nil {
		return errors.WrapConfigurationError(path, "parse", err).
			WithLocation(errors.SourceLocation{File: path})
	}
	if err := l.koanf.Load(rawMap(data), nil); err != nil {
		return errors.WrapConfigurationError(path, "apply", err)
	}
	return nil
}

// envKey maps INJECTGEN_OUTPUT__DIR to output.dir
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func (l *Loader) loadEnvironment() error {
	if err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key string, value string) (string, any) {
			return envKey(key), value
		},
	}), nil); err != nil {
		return errors.WrapConfigurationError("environment", "load", err)
	}
	return nil
}

// changedFlags collects the flags set on the command line
func changedFlags(flags *pflag.FlagSet) map[string]any {
	data := make(map[string]any)
	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if slice, ok := f.Value.(pflag.SliceValue); ok {
			data[key] = slice.GetSlice()
			return
		}
		data[key] = f.Value.String()
	})
	return nestKeys(data)
}

// nestKeys turns dotted keys into nested maps as koanf expects from a provider
func nestKeys(flat map[string]any) map[string]any {
	nested := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		m := nested
		for _, part := range parts[:len(parts)-1] {
			child, ok := m[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				m[part] = child
			}
			m = child
		}
		m[parts[len(parts)-1]] = value
	}
	return nested
}

func (l *Loader) unmarshalAndValidate() (*Options, error) {
	var opts Options
	if err := l.koanf.UnmarshalWithConf("", &opts, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &opts,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, errors.WrapConfigurationError("options", "decode", err)
	}

	opts.ExcludeFilters = compact(opts.ExcludeFilters)
	opts.ScopeAnnotationNames = compact(opts.ScopeAnnotationNames)

	if err := l.Validate(&opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// compact trims entries and drops empty ones, as left by "a, b," style lists
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks opts against its struct tags
func (l *Loader) Validate(opts *Options) error {
	if opts == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := l.validator.Struct(opts); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.WrapConfigurationError("options", "validate", err)
		}

		var fields *errors.MultipleErrors
		suggestions := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			suggestion := suggestionFor(fieldErr)
			errors.AddToMultiple(&fields, errors.NewValidationError(fieldErr.Namespace(), fieldErr.Value(), fieldErr.Tag()).
				WithSuggestion(suggestion))
			suggestions = append(suggestions, suggestion)
		}
		return errors.WrapConfigurationError("options", "validate", fields).WithSuggestions(suggestions...)
	}
	return nil
}

func suggestionFor(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldErr.Namespace(), fieldErr.Param())
	case "glob":
		return fmt.Sprintf("%s is not a valid glob: %v", fieldErr.Namespace(), fieldErr.Value())
	case "gte", "gt":
		return fmt.Sprintf("%s must be %s %s", fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Param())
	}
	return fmt.Sprintf("%s failed the '%s' check", fieldErr.Namespace(), fieldErr.Tag())
}

// rawMap is a koanf.Provider over an already decoded map
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
