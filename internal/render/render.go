// Package render formats flows for terminal output.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"golang.org/x/term"

	"github.com/Crozal/openml-go/flow"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#67e8f9")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Width returns the terminal width, clamped to 40-120, with a sane default
// when stdout is not a terminal.
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	if w < 40 {
		return 40
	}
	if w > 120 {
		return 120
	}
	return w
}

// Summary renders the flow's scalar metadata as a labelled block.
func Summary(f *flow.Flow) string {
	var b strings.Builder

	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label), value)
	}

	row("Flow:", nameStyle.Render(fmt.Sprintf("%s (id %d)", f.Name, f.ID)))
	row("Version:", f.Version)
	if f.ExternalVersion != nil {
		row("External version:", *f.ExternalVersion)
	}
	row("Uploaded:", f.UploadDate.Format("2006-01-02 15:04:05"))
	row("Creators:", strings.Join(f.Creators, ", "))
	row("Contributors:", strings.Join(f.Contributors, ", "))
	if f.Licence != nil {
		row("Licence:", *f.Licence)
	}
	if f.Language != nil {
		row("Language:", *f.Language)
	}
	if f.Dependencies != nil {
		row("Dependencies:", *f.Dependencies)
	}
	row("Tags:", strings.Join(f.Tags, ", "))
	row("Parameters:", countLabel(len(f.Parameters)))
	row("Qualities:", countLabel(len(f.Qualities)))
	row("References:", countLabel(len(f.References)))
	if f.SourcePath != "" {
		row("Source file:", f.SourcePath)
	}
	if f.BinaryPath != "" {
		row("Binary file:", f.BinaryPath)
	}

	return b.String()
}

func countLabel(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

// ComponentTree renders the flow and its nested components as a tree.
// Returns an empty string when the flow embeds no components.
func ComponentTree(f *flow.Flow) string {
	if len(f.Components) == 0 {
		return ""
	}
	return componentNode(f, f.Name).String()
}

func componentNode(f *flow.Flow, label string) *tree.Tree {
	t := tree.Root(nameStyle.Render(label) + mutedStyle.Render(fmt.Sprintf(" (id %d)", f.ID)))
	for _, c := range f.Components {
		t.Child(componentNode(c.Flow, c.Identifier+": "+c.Flow.Name))
	}
	return t
}

// Description renders the flow's description as markdown. The full
// description is preferred when present.
func Description(f *flow.Flow, width int) string {
	text := f.Description
	if f.FullDescription != nil && strings.TrimSpace(*f.FullDescription) != "" {
		text = *f.FullDescription
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// Parameters renders the flow's parameters as a two-column listing.
func Parameters(f *flow.Flow) string {
	if len(f.Parameters) == 0 {
		return ""
	}

	var b strings.Builder
	for _, p := range f.Parameters {
		meta := make([]string, 0, 2)
		if p.DataType != nil {
			meta = append(meta, *p.DataType)
		}
		if p.DefaultValue != nil {
			meta = append(meta, "default "+*p.DefaultValue)
		}
		line := nameStyle.Render(p.Name)
		if len(meta) > 0 {
			line += " " + mutedStyle.Render("("+strings.Join(meta, ", ")+")")
		}
		b.WriteString("  " + line + "\n")
		if p.Description != nil && *p.Description != "" {
			b.WriteString("    " + mutedStyle.Render(*p.Description) + "\n")
		}
	}
	return b.String()
}
