package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bloodline/internal/cli/output"
	"github.com/leapstack-labs/bloodline/pkg/format"
)

// FormatOptions holds options for the format command.
type FormatOptions struct {
	KeywordCase   string
	NoReindent    bool
	StripComments bool
	KeepSemicolon bool
}

// NewFormatCommand creates the format command.
func NewFormatCommand() *cobra.Command {
	opts := &FormatOptions{}

	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Print normalised SQL",
		Long: `Print SQL the way it is normalised before analysis: keywords in one
case, whitespace collapsed and every clause on its own line.

Use "-" to read from standard input.`,
		Example: `  bloodline format etl.sql
  cat etl.sql | bloodline format -
  bloodline format etl.sql --keyword-case lower --no-reindent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.KeywordCase, "keyword-case", "upper", "Keyword case (upper|lower|preserve)")
	cmd.Flags().BoolVar(&opts.NoReindent, "no-reindent", false, "Keep clauses on their original lines")
	cmd.Flags().BoolVar(&opts.StripComments, "strip-comments", false, "Remove comments")
	cmd.Flags().BoolVar(&opts.KeepSemicolon, "keep-semicolon", false, "Keep the trailing semicolon")

	_ = cmd.RegisterFlagCompletionFunc("keyword-case", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"upper", "lower", "preserve"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (o *FormatOptions) formatOptions() (format.Options, error) {
	fo := format.DefaultOptions()
	switch strings.ToLower(o.KeywordCase) {
	case "upper", "":
		fo.KeywordCase = format.KeywordUpper
	case "lower":
		fo.KeywordCase = format.KeywordLower
	case "preserve":
		fo.KeywordCase = format.KeywordPreserve
	default:
		return fo, fmt.Errorf("unknown keyword case %q (want upper|lower|preserve)", o.KeywordCase)
	}
	fo.Reindent = !o.NoReindent
	fo.StripComments = o.StripComments
	fo.TrimSemicolon = !o.KeepSemicolon
	return fo, nil
}

func runFormat(cmd *cobra.Command, path string, opts *FormatOptions) error {
	fo, err := opts.formatOptions()
	if err != nil {
		return err
	}

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // path comes from the user
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	c := NewCommandContext(cmd)
	formatted := format.SQL(string(data), fo)
	if c.Renderer.EffectiveMode() == output.ModeMarkdown {
		c.Renderer.Println(output.FormatCode("sql", formatted))
		return nil
	}
	c.Renderer.Println(formatted)
	return nil
}
