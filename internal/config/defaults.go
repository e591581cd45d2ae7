package config

import "github.com/leapstack-labs/mlabgo/pkg/compiler"

// Config file names, in lookup order.
const (
	ConfigFileName    = "mlabgo.yaml"
	ConfigFileNameAlt = "mlabgo.yml"
)

// EnvPrefix prefixes every environment variable read as configuration.
const EnvPrefix = "MLABGO_"

// Default configuration values.
const (
	DefaultRuleSet = "default"
	DefaultRebase  = RebaseParser
	DefaultJobs    = 0
	DefaultOutput  = "auto" // styled text on a terminal, plain text otherwise
)

// OutputFormats lists the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "json", "yaml"}

// defaults returns the lowest configuration layer. Its keys are also the
// only keys accepted from flags.
func defaults() map[string]any {
	return map[string]any{
		"autoload":  append([]string{}, compiler.DefaultAutoload...),
		"path":      []string{"."},
		"rules":     []string{DefaultRuleSet},
		"rebase":    DefaultRebase,
		"trace":     false,
		"dump_tree": false,
		"verbose":   false,
		"jobs":      DefaultJobs,
		"output":    DefaultOutput,
	}
}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		Autoload: append([]string{}, compiler.DefaultAutoload...),
		Path:     []string{"."},
		Rules:    []string{DefaultRuleSet},
		Rebase:   DefaultRebase,
		Jobs:     DefaultJobs,
		Output:   DefaultOutput,
	}
}
