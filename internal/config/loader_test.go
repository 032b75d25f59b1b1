package config

import (
	goerrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/injectgen/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoader_Defaults(t *testing.T) {
	opts, file, err := NewLoader(WithWorkDir(t.TempDir())).Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, file)
	assert.Equal(t, Default(), opts)
}

func TestLoader_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), `
exclude_filters: ["com.example.generated.**"]
workers: 2
wrap_scope_access_in_block: true
output:
  dir: out
  format: yaml
log:
  level: warn
`)

	t.Setenv("INJECTGEN_WORKERS", "6")
	t.Setenv("INJECTGEN_OUTPUT__FORMAT", "json")
	t.Setenv("INJECTGEN_SCOPE_ANNOTATION_NAMES", "app.ActivityScope, app.FragmentScope,")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"--workers=8", "--strict-missing-factory", "--exclude", "a.B", "--exclude", "c.*"}))

	opts, file, err := NewLoader(WithWorkDir(dir)).Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultFileName), file)
	assert.Equal(t, 8, opts.Workers, "flags override environment")
	assert.Equal(t, FormatJSON, opts.Output.Format, "environment overrides the file")
	assert.Equal(t, "out", opts.Output.Dir, "file overrides defaults")
	assert.Equal(t, "warn", opts.Log.Level)
	assert.True(t, opts.WrapScopeAccessInBlock)
	assert.True(t, opts.StrictOnMissingFactory)
	assert.False(t, opts.StrictOnNonPackageVisibleInjectedMethod)
	assert.Equal(t, []string{"a.B", "c.*"}, opts.ExcludeFilters)
	assert.Equal(t, []string{"app.ActivityScope", "app.FragmentScope"}, opts.ScopeAnnotationNames)
}

func TestLoader_UnchangedFlagsKeepFileValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), "output:\n  dir: from-file\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse(nil))

	opts, _, err := NewLoader(WithWorkDir(dir)).Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-file", opts.Output.Dir)
}

func TestLoader_Discover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/app\n")
	writeFile(t, filepath.Join(root, DefaultFileName), "workers: 3\n")
	nested := filepath.Join(root, "fixtures", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	loader := NewLoader(WithWorkDir(nested))

	file, err := loader.Discover("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, DefaultFileName), file, "falls back to the module root")

	writeFile(t, filepath.Join(nested, DefaultFileName), "workers: 4\n")
	file, err = loader.Discover("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nested, DefaultFileName), file, "working directory wins")

	explicit := filepath.Join(root, "custom.yaml")
	writeFile(t, explicit, "workers: 5\n")
	opts, file, err := loader.Load(explicit, nil)
	require.NoError(t, err)
	assert.Equal(t, explicit, file)
	assert.Equal(t, 5, opts.Workers)

	_, err = loader.Discover(filepath.Join(root, "missing.yaml"))
	var injectErr errors.InjectError
	require.True(t, goerrors.As(err, &injectErr))
	assert.Equal(t, errors.ConfigurationErrorCode, injectErr.ErrorCode())
}

func TestLoader_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		suggestion string
	}{
		{
			name:       "unknown format",
			file:       "output:\n  format: xml\n",
			suggestion: "Options.Output.Format must be one of: source yaml json",
		},
		{
			name:       "negative workers",
			file:       "workers: -1\n",
			suggestion: "Options.Workers must be gte 0",
		},
		{
			name:       "zero cache",
			file:       "ancestor_cache_size: 0\n",
			suggestion: "Options.AncestorCacheSize must be gt 0",
		},
		{
			name:       "bad glob",
			file:       "exclude_filters: [\"com.[a\"]\n",
			suggestion: "is not a valid glob",
		},
		{
			name:       "unknown level",
			file:       "log:\n  level: trace\n",
			suggestion: "Options.Log.Level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, DefaultFileName), tt.file)

			_, _, err := NewLoader(WithWorkDir(dir)).Load("", nil)
			require.Error(t, err)

			var injectErr errors.InjectError
			require.True(t, goerrors.As(err, &injectErr))
			assert.Equal(t, errors.ConfigurationErrorCode, injectErr.ErrorCode())
			require.NotEmpty(t, injectErr.Suggestions())
			assert.Contains(t, injectErr.Suggestions()[0], tt.suggestion)

			var fieldErr *errors.ValidationError
			require.True(t, goerrors.As(err, &fieldErr))
			assert.NotEmpty(t, fieldErr.Field)
		})
	}
}

func TestLoader_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), "workers: [\n")

	_, _, err := NewLoader(WithWorkDir(dir)).Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse configuration")
}

func TestOptions_Conversions(t *testing.T) {
	opts := Default()
	opts.ExcludeFilters = []string{"a.**"}
	opts.StrictOnNonPackageVisibleInjectedMethod = true
	opts.WrapScopeAccessInBlock = true

	ro := opts.ResolverOptions()
	assert.Equal(t, []string{"a.**"}, ro.ExcludeFilters)
	assert.Equal(t, errors.PolicyWarn, ro.MissingFactoryPolicy)
	assert.Equal(t, errors.PolicyError, ro.MethodVisibilityPolicy)
	assert.Equal(t, opts.AncestorCacheSize, ro.AncestorCacheSize)

	assert.True(t, opts.GeneratorOptions().WrapScopeAccessInBlock)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "output.dir", envKey("INJECTGEN_OUTPUT__DIR"))
	assert.Equal(t, "strict_on_missing_factory", envKey("INJECTGEN_STRICT_ON_MISSING_FACTORY"))
}
