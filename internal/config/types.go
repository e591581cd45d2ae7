// Package config loads mlabgo process configuration.
//
// Values are layered from lowest to highest precedence: built-in defaults,
// the project config file (mlabgo.yaml or mlabgo.yml), MLABGO_* environment
// variables and explicitly set command line flags.
package config

import "github.com/leapstack-labs/mlabgo/pkg/compiler"

// Where index bounds are rebased from 1-based to 0-based.
const (
	RebaseParser = "parser" // inline while parsing
	RebaseRules  = "rules"  // by the rebase rule set after parsing
)

// Config holds all mlabgo configuration options.
type Config struct {
	// Autoload lists modules a host imports before running a program.
	Autoload []string `koanf:"autoload"`
	// Path is the module search path. Relative entries are resolved
	// against ProjectRoot.
	Path []string `koanf:"path"`
	// Rules names the rewrite rule sets applied after parsing.
	Rules    []string `koanf:"rules"`
	Rebase   string   `koanf:"rebase"`
	Trace    bool     `koanf:"trace"`
	DumpTree bool     `koanf:"dump_tree"`
	Verbose  bool     `koanf:"verbose"`
	// Output is the report format: auto, text, json or yaml.
	Output string `koanf:"output"`
	// Jobs bounds concurrent compilations. Zero uses one per CPU.
	Jobs int `koanf:"jobs"`

	// ProjectRoot is the directory holding the config file, or the
	// working directory when there is none.
	ProjectRoot string `koanf:"-"`
}

// CompilerOptions returns compiler options reflecting c. Rule set names
// must have passed Validate.
func (c *Config) CompilerOptions() (compiler.Options, error) {
	rules, err := resolveRules(c.Rules)
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		Autoload:   append([]string{}, c.Autoload...),
		Rules:      rules,
		RuleRebase: c.Rebase == RebaseRules,
		DumpTree:   c.DumpTree,
		Trace:      c.Trace,
	}, nil
}
