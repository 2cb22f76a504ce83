package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CommandOutput represents a box for displaying raw subprocess output.
// Used in verbose mode to show what snap and snapctl actually printed.
type CommandOutput struct {
	Title    string   // e.g., "Command Output"
	Content  string   // The raw output
	Lines    []string // Parsed output lines (for filtering)
	Width    int      // Terminal width
	MaxLines int      // Maximum lines to display (0 = unlimited)
}

// NewCommandOutput creates a new command output box
func NewCommandOutput(content string) *CommandOutput {
	return &CommandOutput{
		Title:    "Command Output",
		Content:  content,
		Lines:    strings.Split(content, "\n"),
		Width:    GetTerminalWidth(),
		MaxLines: 0,
	}
}

// SetWidth sets the terminal width for responsive rendering
func (c *CommandOutput) SetWidth(width int) *CommandOutput {
	c.Width = width
	return c
}

// SetTitle sets a custom title for the box
func (c *CommandOutput) SetTitle(title string) *CommandOutput {
	c.Title = title
	return c
}

// SetMaxLines limits the number of lines displayed
func (c *CommandOutput) SetMaxLines(max int) *CommandOutput {
	c.MaxLines = max
	return c
}

// FilterLines filters the output to only show lines matching the given patterns.
// Useful for extracting the interesting parts of noisy snap output.
func (c *CommandOutput) FilterLines(patterns ...string) *CommandOutput {
	var filtered []string
	for _, line := range c.Lines {
		for _, pattern := range patterns {
			if strings.Contains(line, pattern) {
				filtered = append(filtered, line)
				break
			}
		}
	}
	c.Lines = filtered
	c.Content = strings.Join(filtered, "\n")
	return c
}

// FilterPrefix filters to only lines starting with given prefixes
func (c *CommandOutput) FilterPrefix(prefixes ...string) *CommandOutput {
	var filtered []string
	for _, line := range c.Lines {
		for _, prefix := range prefixes {
			if strings.HasPrefix(strings.TrimSpace(line), prefix) {
				filtered = append(filtered, line)
				break
			}
		}
	}
	c.Lines = filtered
	c.Content = strings.Join(filtered, "\n")
	return c
}

// Render returns the styled output box as a string
func (c *CommandOutput) Render() string {
	width := c.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	// Apply max lines limit
	lines := c.Lines
	if c.MaxLines > 0 && len(lines) > c.MaxLines {
		lines = lines[:c.MaxLines]
		lines = append(lines, "... (output truncated)")
	}

	// Title styled
	titleStyled := CommandOutputTitleStyle.Render(c.Title)

	// Content styled (preserve monospace formatting)
	contentStyled := CommandOutputContentStyle.Render(strings.Join(lines, "\n"))

	// Combine title and content
	inner := lipgloss.JoinVertical(lipgloss.Left, titleStyled, "", contentStyled)

	// Box with muted border
	boxWidth := width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(boxWidth).
		Padding(0, 1).
		MarginLeft(2).
		Render(inner)
}

// String implements fmt.Stringer
func (c *CommandOutput) String() string {
	return c.Render()
}

// RenderCommandOutput renders an output box with the given content
func RenderCommandOutput(content string) string {
	return NewCommandOutput(content).Render()
}
