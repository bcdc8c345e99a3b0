// Package config supplies environment-driven defaults layered underneath
// the CLI's explicit flags, per SPEC_FULL.md §4.10. Grounded on
// inbucket/pkg/config/config.go's envconfig usage.
package config

import "github.com/kelseyhightower/envconfig"

// Config holds the ambient settings that may be overridden by flags at the
// CLI layer (CLI flag > environment > these defaults).
type Config struct {
	// LogLevel is the zerolog level name (trace/debug/info/warn/error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// OutputDir is loaded from the environment; the export commands do not
	// read it and require -o.
	OutputDir string `envconfig:"OUTPUT_DIR" default:"."`

	// MaxPSTBytes mirrors diag.KindPstSpaceExhausted's ceiling: a
	// synthesized PST larger than this aborts rather than writing a
	// truncated file. 50 GiB matches spec.md §7's PST output guard.
	MaxPSTBytes int64 `envconfig:"MAX_PST_BYTES" default:"53687091200"`

	// ReportFormat selects the job-end summary's serialization
	// ("text" or "yaml").
	ReportFormat string `envconfig:"REPORT_FORMAT" default:"text"`
}

// Load reads process environment variables prefixed EDBXTRACT_ into a
// Config, falling back to the struct tag defaults above when unset.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("edbxtract", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
