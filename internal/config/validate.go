package config

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/mlabgo/pkg/rewrite"
)

// Validate checks option values that decoding alone cannot.
func (c *Config) Validate() error {
	switch c.Rebase {
	case RebaseParser, RebaseRules:
	default:
		return fmt.Errorf("invalid rebase %q: must be %q or %q (check %s)",
			c.Rebase, RebaseParser, RebaseRules, ConfigFileName)
	}
	if !slices.Contains(OutputFormats, c.Output) {
		return fmt.Errorf("invalid output %q: must be one of %v", c.Output, OutputFormats)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("invalid jobs %d: must not be negative", c.Jobs)
	}
	for _, name := range c.Rules {
		if name == "rebase" {
			return fmt.Errorf("rule set %q is selected with rebase: %s", name, RebaseRules)
		}
		if _, ok := rewrite.Lookup(name); !ok {
			return fmt.Errorf("unknown rule set %q (available: %v)", name, rewrite.SetNames())
		}
	}
	return nil
}

func resolveRules(names []string) ([]*rewrite.Rule, error) {
	rules, err := rewrite.Resolve(names)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		// An explicitly empty list runs no rules; nil would select the defaults.
		rules = []*rewrite.Rule{}
	}
	return rules, nil
}
