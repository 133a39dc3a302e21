package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/bloodline/internal/cli/output"
	"github.com/leapstack-labs/bloodline/internal/lineage"
)

const (
	replPrompt         = "bloodline> "
	replContinuePrompt = "     ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Analyze SQL interactively",
		Long: `Start an interactive prompt. Each statement ending with a semicolon is
analyzed and its lineage printed. Dot-commands show parts of the last
result; type .help for the list.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	c := NewCommandContext(cmd)

	historyFile := ""
	if dir := filepath.Dir(c.Cfg.StatePath); c.Cfg.StatePath != ":memory:" {
		if err := os.MkdirAll(dir, 0o750); err == nil {
			historyFile = filepath.Join(dir, "repl_history")
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "bloodline lineage REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	s := newREPLSession(c.Renderer, c.ScriptOptions())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		prompt, quit := s.handleLine(line)
		if quit {
			break
		}
		rl.SetPrompt(prompt)
	}

	return nil
}

// replSession holds the state of one REPL between lines.
type replSession struct {
	r    *output.Renderer
	opts lineage.ScriptOptions
	buf  strings.Builder
	last []lineage.StatementLineage
}

func newREPLSession(r *output.Renderer, opts lineage.ScriptOptions) *replSession {
	return &replSession{r: r, opts: opts}
}

// handleLine processes one input line and returns the next prompt and
// whether the session should end.
func (s *replSession) handleLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return s.prompt(), false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return replPrompt, s.handleDotCommand(line)
	}

	// Accumulate multi-line SQL until semicolon
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return replContinuePrompt, false
	}

	sql := s.buf.String()
	s.buf.Reset()
	s.analyze(sql)
	return replPrompt, false
}

func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return replContinuePrompt
	}
	return replPrompt
}

func (s *replSession) analyze(sql string) {
	s.last = lineage.AnalyzeScript(sql, s.opts)

	shown := 0
	for _, stmt := range s.last {
		if !stmt.HasTables() {
			continue
		}
		shown++
		renderStatement(s.r, stmt, reportAll)
	}
	if shown == 0 {
		s.r.Println(s.r.Muted("No tables found."))
	}
}

func (s *replSession) handleDotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.r.Writer())

	case ".tables":
		s.each(func(stmt lineage.StatementLineage) {
			renderStatement(s.r, stmt, reportTables)
		})

	case ".columns":
		s.each(func(stmt lineage.StatementLineage) {
			renderStatement(s.r, stmt, reportColumns)
		})

	case ".state":
		s.each(func(stmt lineage.StatementLineage) {
			s.r.Header(2, fmt.Sprintf("Statement %d (%s)", stmt.Index+1, stmt.Type))
			s.r.KeyValue("Table names", strings.Join(stmt.TableNames, ", "))
			for i, cols := range stmt.ColumnNames {
				s.r.KeyValue(fmt.Sprintf("Columns[%d]", i), strings.Join(cols, ", "))
			}
			s.r.Println("")
		})

	case ".normalize":
		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "on", "true":
				s.opts.Normalize = true
			case "off", "false":
				s.opts.Normalize = false
			default:
				s.r.Error("Usage: .normalize [on|off]")
				return false
			}
		}
		s.r.KeyValue("Normalize", fmt.Sprintf("%t", s.opts.Normalize))

	case ".clear":
		s.r.Printf("\033[H\033[2J")

	default:
		s.r.Error(fmt.Sprintf("Unknown command: %s (type .help for commands)", command))
	}
	return false
}

// each calls fn for every statement with tables in the last result.
func (s *replSession) each(fn func(stmt lineage.StatementLineage)) {
	if len(s.last) == 0 {
		s.r.Println(s.r.Muted("Nothing analyzed yet."))
		return
	}
	for _, stmt := range s.last {
		if stmt.HasTables() {
			fn(stmt)
		}
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help               Show this help message
  .tables             Table lineage of the last input
  .columns            Column lineage of the last input
  .state              Raw table and column names of the last input
  .normalize [on|off] Show or set SQL normalisation
  .clear              Clear the screen
  .quit / .exit       Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter creates a readline completer for dot-commands and
// common keywords.
func newREPLCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, kw := range []string{"SELECT", "INSERT INTO", "UPDATE", "DELETE FROM", "CREATE TABLE", "WITH"} {
		items = append(items, readline.PcItem(kw))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".columns"),
		readline.PcItem(".state"),
		readline.PcItem(".normalize", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}
