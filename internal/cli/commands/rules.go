package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/mlabgo/internal/cli/output"
	"github.com/leapstack-labs/mlabgo/pkg/rewrite"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [set|rule]",
		Short: "List the rewrite rule sets",
		Long: `List the registered rewrite rule sets and the rules each one runs, in
application order.

The rules option of the configuration selects which sets a compilation
uses. Give a set name to list only that set, or a rule name to show one
rule.`,
		Example: `  # List every set
  mlabgo rules

  # List the folding set
  mlabgo rules folding

  # Show one rule
  mlabgo rules fold-arith

  # Output as JSON
  mlabgo rules -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := NewCommandContext(cmd).Renderer
			sets := rewrite.SetNames()
			if len(args) == 0 {
				return listRuleSets(r, sets)
			}
			if _, ok := rewrite.Lookup(args[0]); ok {
				return listRuleSets(r, []string{args[0]})
			}
			if rule := findRule(sets, args[0]); rule != nil {
				return showRule(r, rule)
			}
			return fmt.Errorf("no rule set or rule named %q (sets: %v)", args[0], sets)
		},
	}
}

// RuleInfo describes one rule for structured output.
type RuleInfo struct {
	Name        string `json:"name" yaml:"name"`
	Group       string `json:"group" yaml:"group"`
	Matches     string `json:"matches" yaml:"matches"`
	Replacement string `json:"replacement" yaml:"replacement"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// RuleSetInfo describes one registered rule set for structured output.
type RuleSetInfo struct {
	Name  string     `json:"name" yaml:"name"`
	Rules []RuleInfo `json:"rules" yaml:"rules"`
}

func ruleInfo(rule *rewrite.Rule) RuleInfo {
	replacement := "template"
	if rule.HasEvaluator() {
		replacement = "evaluator"
	}
	return RuleInfo{
		Name:        rule.Name(),
		Group:       rule.Group(),
		Matches:     rule.Pattern().Kind().String(),
		Replacement: replacement,
		Description: rule.Description(),
	}
}

func findRule(sets []string, name string) *rewrite.Rule {
	for _, set := range sets {
		rules, _ := rewrite.Lookup(set)
		for _, rule := range rules {
			if rule.Name() == name {
				return rule
			}
		}
	}
	return nil
}

func listRuleSets(r *output.Renderer, names []string) error {
	infos := make([]RuleSetInfo, 0, len(names))
	for _, name := range names {
		rules, _ := rewrite.Lookup(name)
		info := RuleSetInfo{Name: name, Rules: make([]RuleInfo, 0, len(rules))}
		for _, rule := range rules {
			info.Rules = append(info.Rules, ruleInfo(rule))
		}
		infos = append(infos, info)
	}

	if ok, err := r.Structured(infos); ok {
		return err
	}

	styles := r.Styles()
	titleCaser := cases.Title(language.English)
	r.Println(styles.Header1.Render(fmt.Sprintf("Rewrite Rule Sets (%d)", len(infos))))
	for _, info := range infos {
		r.Println("")
		r.Println(styles.Header2.Render(titleCaser.String(info.Name)))
		if len(info.Rules) == 0 {
			r.Println(styles.Muted.Render("  (no rules)"))
			continue
		}
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Rule", "Group", "Matches", "Replacement", "Description"})
		for _, rule := range info.Rules {
			t.AppendRow(table.Row{rule.Name, rule.Group, rule.Matches, rule.Replacement, rule.Description})
		}
		t.Render()
	}
	r.Println("")
	r.Println(styles.Muted.Render("Select sets with the rules option, e.g. --rules builtins,folding"))
	return nil
}

func showRule(r *output.Renderer, rule *rewrite.Rule) error {
	info := ruleInfo(rule)
	if ok, err := r.Structured(info); ok {
		return err
	}

	styles := r.Styles()
	r.Println(styles.Header1.Render(info.Name))
	r.Println("")
	r.Printf("  %s: %s\n", styles.Bold.Render("Group"), info.Group)
	r.Printf("  %s: %s\n", styles.Bold.Render("Matches"), info.Matches)
	r.Printf("  %s: %s\n", styles.Bold.Render("Replacement"), info.Replacement)
	if info.Description != "" {
		r.Println("")
		r.Println("  " + info.Description)
	}
	return nil
}
