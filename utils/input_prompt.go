package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/morler/commitgpt/constants/lipgloss"
	"github.com/pterm/pterm"
)

// MessageEditor shows a proposed message and lets the user edit it.
// ok is false when the user cancelled.
type MessageEditor interface {
	EditMessage(initial string) (message string, ok bool, err error)
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(question string, defaultValue bool) (bool, error)
}

const (
	optionCommit = "Commit"
	optionEdit   = "Edit message"
	optionCancel = "Cancel"
)

// PtermPrompter drives the preview and confirmation through pterm's interactive printers.
type PtermPrompter struct {
	Out io.Writer
}

func NewPtermPrompter() *PtermPrompter {
	return &PtermPrompter{Out: os.Stdout}
}

func (p *PtermPrompter) EditMessage(initial string) (string, bool, error) {
	message := initial
	for {
		RenderMessage(p.Out, "Proposed commit message:", message)

		choice, err := pterm.DefaultInteractiveSelect.
			WithOptions([]string{optionCommit, optionEdit, optionCancel}).
			WithDefaultOption(optionCommit).
			Show("Commit with this message?")
		if err != nil {
			return "", false, fmt.Errorf("error reading choice: %w", err)
		}

		switch choice {
		case optionCommit:
			if strings.TrimSpace(message) == "" {
				fmt.Fprintln(p.Out, lipgloss.Red.Render("The commit message cannot be empty."))
				continue
			}
			return message, true, nil
		case optionEdit:
			edited, err := EditInEditor(message)
			if err != nil {
				return "", false, err
			}
			if edited == "" {
				return "", false, nil
			}
			message = edited
		default:
			return "", false, nil
		}
	}
}

func (p *PtermPrompter) Confirm(question string, defaultValue bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.WithDefaultValue(defaultValue).Show(question)
}

// ReaderPrompter reads answers line by line, for terminals where the interactive printers are unavailable.
type ReaderPrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewReaderPrompter(in io.Reader, out io.Writer) *ReaderPrompter {
	return &ReaderPrompter{reader: bufio.NewReader(in), out: out}
}

func (p *ReaderPrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		if err == io.EOF {
			return "", io.EOF
		}
		return "", fmt.Errorf("error reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *ReaderPrompter) EditMessage(initial string) (string, bool, error) {
	message := initial
	for {
		RenderMessage(p.out, "Proposed commit message:", message)
		fmt.Fprint(p.out, lipgloss.BlueSky.Render("Commit with this message? [Y]es / [e]dit / [n]o: "))

		answer, err := p.readLine()
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}

		switch strings.ToLower(answer) {
		case "", "y", "yes":
			if strings.TrimSpace(message) == "" {
				fmt.Fprintln(p.out, lipgloss.Red.Render("The commit message cannot be empty."))
				continue
			}
			return message, true, nil
		case "e", "edit":
			fmt.Fprint(p.out, lipgloss.BlueSky.Render("> "))
			edited, err := p.readLine()
			if err == io.EOF {
				return "", false, nil
			}
			if err != nil {
				return "", false, err
			}
			if edited != "" {
				message = edited
			}
		default:
			return "", false, nil
		}
	}
}

func (p *ReaderPrompter) Confirm(question string, defaultValue bool) (bool, error) {
	hint := "(y/N)"
	if defaultValue {
		hint = "(Y/n)"
	}
	fmt.Fprintf(p.out, "%s %s: ", question, hint)

	answer, err := p.readLine()
	if err == io.EOF {
		return defaultValue, nil
	}
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "":
		return defaultValue, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// EditInEditor opens the message in the user's editor, the same way git does, and strips '#' comment lines.
func EditInEditor(message string) (string, error) {
	editor := firstNonEmpty(os.Getenv("GIT_EDITOR"), os.Getenv("VISUAL"), os.Getenv("EDITOR"), "vi")

	file, err := os.CreateTemp("", "COMMIT_EDITMSG-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(file.Name())

	content := message + "\n\n# Lines starting with '#' are ignored. An empty message cancels the commit.\n"
	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], file.Name())...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor '%s' failed: %w", editor, err)
	}

	edited, err := os.ReadFile(file.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read edited message: %w", err)
	}
	return StripCommentLines(string(edited)), nil
}

// StripCommentLines drops lines starting with '#' and trims surrounding whitespace.
func StripCommentLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t\r"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
