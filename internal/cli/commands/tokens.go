package commands

import (
	"strconv"

	"github.com/leapstack-labs/payjar/internal/cli/output"
	"github.com/leapstack-labs/payjar/pkg/lexer"
	"github.com/spf13/cobra"
)

// TokenOutput is the JSON form of one token.
type TokenOutput struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Lexeme string `json:"lexeme"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a program",
		Long: `Lex a program and print each token's index, kind and lexeme.
Indexes are the positions reported by syntax errors.`,
		Example: `  payjar tokens hello.pj
  payjar tokens hello.pj --output json`,
		Args: cobra.ExactArgs(1),
		RunE: runTokens,
	}
}

func runTokens(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	src, err := readSource(cmd, args[0])
	if err != nil {
		return err
	}

	toks, err := lexer.Tokenize(src)
	if err != nil {
		r.Error(err.Error())
		return ErrFailed
	}
	cmdCtx.Logger.Debug("tokenized", "file", args[0], "tokens", len(toks))

	if r.EffectiveMode() == output.ModeJSON {
		out := make([]TokenOutput, len(toks))
		for i, tok := range toks {
			out[i] = TokenOutput{Index: i, Kind: tok.Type.String(), Lexeme: tok.Literal}
		}
		return r.JSON(out)
	}

	rows := make([][]string, len(toks))
	for i, tok := range toks {
		rows[i] = []string{strconv.Itoa(i), tok.Type.String(), tok.Literal}
	}
	r.Table([]string{"Index", "Kind", "Lexeme"}, rows)
	return nil
}
