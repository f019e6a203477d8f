// Package config loads PayJar CLI configuration.
//
// Values are layered with koanf, lowest to highest precedence: built-in
// defaults, payjar.yaml (or payjar.yml), PAYJAR_ environment variables and
// explicitly set command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool              `koanf:"verbose"`
	OutputFormat string            `koanf:"output"`
	Interpreter  InterpreterConfig `koanf:"interpreter"`
	Tape         TapeConfig        `koanf:"tape"`
	History      HistoryConfig     `koanf:"history"`

	// ProjectRoot is the directory holding the config file, or the working
	// directory when there is none. Relative paths resolve against it.
	ProjectRoot string `koanf:"-"`
}

// InterpreterConfig configures PayJar program runs.
type InterpreterConfig struct {
	MaxCallDepth int `koanf:"max_call_depth"`
}

// TapeConfig configures tape machine runs.
type TapeConfig struct {
	MinLength int `koanf:"min_length"`
	MaxSteps  int `koanf:"max_steps"` // 0 means unlimited
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Default configuration values.
const (
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultMaxCallDepth = 2000
	DefaultTapeLength   = 30000
	DefaultHistoryFile  = ".payjar/history.db"
)

// Default returns the built-in configuration with paths relative to the
// working directory.
func Default() *Config {
	return &Config{
		OutputFormat: DefaultOutput,
		Interpreter:  InterpreterConfig{MaxCallDepth: DefaultMaxCallDepth},
		Tape:         TapeConfig{MinLength: DefaultTapeLength},
		History:      HistoryConfig{Enabled: true, Path: DefaultHistoryFile},
	}
}

// Output modes accepted by the output key.
var OutputModes = []string{"auto", "text", "markdown", "json"}
