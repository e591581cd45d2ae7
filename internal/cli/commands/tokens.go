package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/mlabgo/pkg/parser"
	"github.com/leapstack-labs/mlabgo/pkg/token"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file|module>",
		Short: "Print the token stream of a source file",
		Long: `Tokenize a source file and print one row per token with its position,
type and literal. Newlines that end statements appear as ";" tokens and
command syntax words as strings.`,
		Example: `  mlabgo tokens script.m
  mlabgo tokens -o json script.m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args[0])
		},
	}
}

type tokenRow struct {
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
	Type    string `json:"type" yaml:"type"`
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

func runTokens(cmd *cobra.Command, arg string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	_, src, err := cmdCtx.readSource(arg)
	if err != nil {
		return err
	}
	toks, err := parser.Tokenize(src)
	if err != nil {
		return err
	}

	rows := make([]tokenRow, 0, len(toks))
	for _, tok := range toks {
		if tok.Type == token.EOF {
			break
		}
		rows = append(rows, tokenRow{
			Line:    tok.Pos.Line,
			Column:  tok.Pos.Column,
			Type:    tok.Type.String(),
			Literal: tok.Literal,
		})
	}

	if ok, err := r.Structured(rows); ok {
		return err
	}

	if len(rows) == 0 {
		r.Println("(0 tokens)")
		return nil
	}
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Pos", "Type", "Literal"})
	for _, row := range rows {
		t.AppendRow(table.Row{fmt.Sprintf("%d:%d", row.Line, row.Column), row.Type, row.Literal})
	}
	t.Render()
	r.Printf("(%d tokens)\n", len(rows))
	return nil
}
