package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/gsconf/lang"
	"github.com/ardnew/gsconf/log"
)

const defaultEditor = "vi"

// editedMsg is sent when a cell edited in the external editor parsed.
type editedMsg struct {
	source string
	value  lang.Value
}

// editCancelledMsg is sent when the user saved an empty cell or declined to
// re-edit after a parse error.
type editCancelledMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

// editCellCommand implements [tea.ExecCommand] for the edit-parse-retry
// loop. It writes a seed cell to a temp file, opens the user's editor, and
// parses the result. On parse error the user is prompted to re-edit.
type editCellCommand struct {
	parser  *lang.Parser
	seed    string
	ctxFunc func() context.Context
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer

	source string
	value  lang.Value
	done   bool
}

// SetStdin sets the stdin reader for the command.
func (c *editCellCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCellCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCellCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop. done stays false when the user
// clears the cell or declines to re-edit.
func (c *editCellCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp("", "gsconf-cell-*.txt")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	f.Close()

	content := c.seed

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		v, parseErr := c.parser.Parse(ctx, content)

		c.logger.TraceContext(ctx, "editor parse attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", parseErr == nil))

		if parseErr == nil {
			c.source, c.value, c.done = content, v, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nParse error: %s\n", parseErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return nil
		}

		if response := strings.TrimSpace(strings.ToLower(scanner.Text())); response == "n" || response == "no" {
			return nil
		}
	}
}

// runEditor launches the user's editor on the file at path.
func runEditor(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}

// lastCell returns the newest cell in h, or "".
func lastCell(h *History) string {
	entries := h.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Mode == modeEval {
			return entries[i].Line
		}
	}

	return ""
}
