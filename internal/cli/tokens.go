package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/midiscript/midiscript/internal/lexer"
)

// TokenView is the JSON form of a token.
type TokenView struct {
	Kind    string `json:"kind"`
	Literal string `json:"literal,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tokens <file.ms>",
		Short:         "Print the token stream of a program",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(rootOpts, args[0], cmd)
		},
	}
}

func runTokens(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	src, err := loadSingle(path)
	if err != nil {
		return formatter.fail(toCLIError(path, err))
	}

	tokens, err := lexer.Tokenize(src.Text)
	if err != nil {
		return formatter.fail(toCLIError(src.Path, err))
	}

	if formatter.JSON() {
		views := make([]TokenView, len(tokens))
		for i, tok := range tokens {
			views[i] = TokenView{Kind: tok.Kind.String(), Literal: tok.Literal, Line: tok.Line, Column: tok.Column}
		}
		return formatter.Success(views)
	}

	for _, tok := range tokens {
		fmt.Fprintf(formatter.Writer, "%4d:%-3d %s\n", tok.Line, tok.Column, tok)
	}
	return nil
}
