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

	"github.com/ardnew/scrip/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]: it writes the session's
// accepted lines to a temporary file, opens the user's editor on it and
// replays the result into a fresh session environment. On error the user
// may edit again; declining leaves the session unchanged.
type editCommand struct {
	ctx     context.Context
	session *Session
	editor  string
	changed bool
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func newEditCommand(ctx context.Context, s *Session) *editCommand {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	return &editCommand{
		ctx:     ctx,
		session: s,
		editor:  editor,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-replay loop. It returns [ErrEditDeclined] when the
// user gives up after an error.
func (c *editCommand) Run() error {
	f, err := os.CreateTemp("", "scrip-repl-*.scrip")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	content := c.session.Source()

	if _, err := io.WriteString(f, content); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	in := bufio.NewReader(c.stdin)

	for {
		if err := c.launch(path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if string(data) == content {
			return nil
		}

		err = c.session.Replace(c.ctx, string(data))
		log.TraceContext(c.ctx, "editor replay",
			slog.Int("content_length", len(data)),
			slog.Bool("success", err == nil),
		)

		if err == nil {
			c.changed = true

			return nil
		}

		fmt.Fprintln(c.stderr, errorStyle.Render(Diagnose(string(data), err)))
		fmt.Fprint(c.stdout, "Edit again? [Y/n] ")

		answer, readErr := in.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))

		if answer == "n" || answer == "no" || (readErr != nil && answer == "") {
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// editorStdin returns the input handed to the editor. Only a file is
// shared: any other reader also feeds the retry prompt, and the copy
// exec would start for it could consume the user's answer.
func (c *editCommand) editorStdin() io.Reader {
	if f, ok := c.stdin.(*os.File); ok {
		return f
	}

	return nil
}

// launch runs the editor on path and waits for it to exit. The editor
// setting may carry arguments, as in "code --wait".
func (c *editCommand) launch(path string) error {
	args := strings.Fields(c.editor)
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	args = append(args, path)

	cmd := exec.CommandContext(c.ctx, args[0], args[1:]...) //nolint:gosec
	cmd.Stdin = c.editorStdin()
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", c.editor, err)
	}

	return nil
}
