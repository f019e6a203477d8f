package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/payjar/internal/testutil"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlags mirrors the persistent flags registered by the root command.
func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.BoolP("verbose", "v", false, "verbose")
	flags.StringP("output", "o", "", "output format")
	flags.Int("max-call-depth", 0, "max call depth")
	flags.Int("tape-length", 0, "tape length")
	flags.Int("max-steps", 0, "max steps")
	flags.Bool("history", true, "record history")
	flags.String("history-db", "", "history database")
	return flags
}

// TestConfig_Validate tests the Config.Validate method.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"markdown output", func(c *Config) { c.OutputFormat = "markdown" }, ""},
		{"unknown output", func(c *Config) { c.OutputFormat = "xml" }, "invalid output format"},
		{"zero call depth", func(c *Config) { c.Interpreter.MaxCallDepth = 0 }, "max_call_depth must be positive"},
		{"zero tape length", func(c *Config) { c.Tape.MinLength = 0 }, "min_length must be positive"},
		{"negative steps", func(c *Config) { c.Tape.MaxSteps = -1 }, "max_steps must not be negative"},
		{"history without path", func(c *Config) { c.History.Path = "" }, "history.path is required"},
		{"history disabled without path", func(c *Config) {
			c.History.Enabled = false
			c.History.Path = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
	assert.False(t, cfg.Verbose)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultMaxCallDepth, cfg.Interpreter.MaxCallDepth)
	assert.Equal(t, DefaultTapeLength, cfg.Tape.MinLength)
	assert.Zero(t, cfg.Tape.MaxSteps)
	assert.True(t, cfg.History.Enabled)

	root, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(root, DefaultHistoryFile), cfg.History.Path)
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	testutil.WriteSource(t, tmpDir, "payjar.yml", `output: json
interpreter:
  max_call_depth: 50
tape:
  max_steps: 1000
history:
  path: data/runs.db
`)
	nested := filepath.Join(tmpDir, "programs", "demo")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "payjar.yml", filepath.Base(GetConfigFileUsed()))
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 50, cfg.Interpreter.MaxCallDepth)
	assert.Equal(t, 1000, cfg.Tape.MaxSteps)
	assert.Equal(t, DefaultTapeLength, cfg.Tape.MinLength)

	// Relative paths resolve against the directory holding the config file.
	assert.Equal(t, filepath.Base(tmpDir), filepath.Base(cfg.ProjectRoot))
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "data", "runs.db"), cfg.History.Path)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	cfgPath := testutil.WriteSource(t, tmpDir, "payjar.yaml", "output: [unterminated\n")

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	cfgPath := testutil.WriteSource(t, tmpDir, "payjar.yaml", "output: xml\n")

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := testutil.WriteSource(t, tmpDir, "payjar.yaml", `interpreter:
  max_call_depth: 10
tape:
  max_steps: 10
`)

	require.NoError(t, os.Setenv("PAYJAR_INTERPRETER__MAX_CALL_DEPTH", "20"))
	defer func() { _ = os.Unsetenv("PAYJAR_INTERPRETER__MAX_CALL_DEPTH") }()

	flags := newFlags()
	require.NoError(t, flags.Set("max-call-depth", "30"))
	require.NoError(t, flags.Set("max-steps", "40"))
	require.NoError(t, flags.Set("output", "text"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Interpreter.MaxCallDepth, "flag value should override config file and env var")
	assert.Equal(t, 40, cfg.Tape.MaxSteps)
	assert.Equal(t, "text", cfg.OutputFormat)
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := testutil.WriteSource(t, tmpDir, "payjar.yaml", `output: text
tape:
  min_length: 100
`)

	require.NoError(t, os.Setenv("PAYJAR_OUTPUT", "markdown"))
	defer func() { _ = os.Unsetenv("PAYJAR_OUTPUT") }()
	require.NoError(t, os.Setenv("PAYJAR_TAPE__MIN_LENGTH", "200"))
	defer func() { _ = os.Unsetenv("PAYJAR_TAPE__MIN_LENGTH") }()

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.OutputFormat, "env var should override config file")
	assert.Equal(t, 200, cfg.Tape.MinLength)
}

// TestLoadConfig_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := testutil.WriteSource(t, tmpDir, "payjar.yaml", "tape:\n  max_steps: 5\n")

	require.NoError(t, os.Setenv("PAYJAR_TAPE__MAX_STEPS", "7"))
	defer func() { _ = os.Unsetenv("PAYJAR_TAPE__MAX_STEPS") }()

	// Flags registered but never set keep Changed false.
	cfg, err := LoadConfig(cfgPath, newFlags())
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Tape.MaxSteps, "env var should be used when flag is not set")
	assert.True(t, cfg.History.Enabled)
}

func TestLoadConfig_HistoryFlags(t *testing.T) {
	ResetConfig()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	flags := newFlags()
	require.NoError(t, flags.Set("history-db", "custom.db"))
	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "custom.db"), cfg.History.Path)

	ResetConfig()
	flags = newFlags()
	require.NoError(t, flags.Set("history", "false"))
	cfg, err = LoadConfig("", flags)
	require.NoError(t, err)
	assert.False(t, cfg.History.Enabled)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "missing logger falls back to discard")

	logger := testutil.NewTestLogger(t)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
