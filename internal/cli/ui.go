package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette, as ANSI 256 codes.
var (
	accent  = lipgloss.Color("36")
	okColor = lipgloss.Color("35")
	amber   = lipgloss.Color("220")
	errRed  = lipgloss.Color("167")
	cmdBlue = lipgloss.Color("75")
	bright  = lipgloss.Color("255")
	muted   = lipgloss.Color("245")
	faint   = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	StyleHighlight = lipgloss.NewStyle().Foreground(accent)
	StyleDim       = lipgloss.NewStyle().Foreground(faint)

	styleValue   = lipgloss.NewStyle().Foreground(bright)
	styleCommand = lipgloss.NewStyle().Foreground(cmdBlue)
	styleSpinner = lipgloss.NewStyle().Foreground(accent)
)

// level selects the mark and color of a status line.
type level int

const (
	levelOK level = iota
	levelFail
	levelWarn
	levelNote
)

var marks = [...]struct {
	glyph string
	style lipgloss.Style
}{
	levelOK:   {"✓", lipgloss.NewStyle().Foreground(okColor)},
	levelFail: {"✗", lipgloss.NewStyle().Foreground(errRed)},
	levelWarn: {"!", lipgloss.NewStyle().Foreground(amber)},
	levelNote: {"›", lipgloss.NewStyle().Foreground(muted)},
}

// console writes human-readable status lines. Results never go through it,
// so a command can stream JSON to stdout while reporting on another writer.
type console struct {
	w io.Writer
}

func (c console) line(s string) {
	fmt.Fprintln(c.w, s)
}

func (c console) status(lv level, format string, args ...any) {
	m := marks[lv]
	msg := fmt.Sprintf(format, args...)
	if lv == levelWarn {
		msg = m.style.Render(msg)
	}
	c.line(m.style.Render(m.glyph) + " " + msg)
}

func (c console) ok(format string, args ...any)   { c.status(levelOK, format, args...) }
func (c console) fail(format string, args ...any) { c.status(levelFail, format, args...) }
func (c console) warn(format string, args ...any) { c.status(levelWarn, format, args...) }
func (c console) note(format string, args ...any) { c.status(levelNote, format, args...) }

// detail prints an indented, dimmed line.
func (c console) detail(format string, args ...any) {
	c.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written output path.
func (c console) file(path string) {
	c.line("  " + StyleDim.Render("→") + " " + styleValue.Render(path))
}

// stats prints graph size and whether the stage came from the cache, as
// in "12 nodes · 14 flows · cached".
func (c console) stats(nodes, flows int, cached bool) {
	var parts []string
	if nodes > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodes)))
	}
	if flows > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d flows", flows)))
	}
	if cached {
		parts = append(parts, marks[levelOK].style.Render("cached"))
	} else {
		parts = append(parts, marks[levelNote].style.Render("fresh"))
	}
	c.line("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// next suggests a follow-up command after a blank line.
func (c console) next(description, cmd string) {
	c.line("")
	c.line(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
