package utils

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// MessageType selects the color and prefix of a Box.
type MessageType int

const (
	InfoMessage MessageType = iota
	SuccessMessage
	WarningMessage
	ErrorMessage
)

type tone struct {
	prefix string
	color  lipgloss.Color
}

var tones = map[MessageType]tone{
	InfoMessage:    {"ℹ", lipgloss.Color("86")},
	SuccessMessage: {"✓", lipgloss.Color("42")},
	WarningMessage: {"⚠", lipgloss.Color("178")},
	ErrorMessage:   {"✗", lipgloss.Color("196")},
}

const minBoxWidth = 30

// Box is a titled, bordered block of text for end-of-run summaries.
type Box struct {
	messageType MessageType
	title       string
	content     []string
	width       int
}

// NewBox creates a box sized to the terminal.
func NewBox(messageType MessageType, title string) *Box {
	return &Box{
		messageType: messageType,
		title:       title,
		width:       terminalWidth() - 8,
	}
}

// WithWidth overrides the maximum box width, borders included.
func (b *Box) WithWidth(width int) *Box {
	b.width = width
	return b
}

// AddLine adds one content line.
func (b *Box) AddLine(text string) *Box {
	b.content = append(b.content, text)
	return b
}

// AddText adds multi-line text, one content line per input line.
func (b *Box) AddText(text string) *Box {
	b.content = append(b.content, strings.Split(strings.TrimRight(text, "\n"), "\n")...)
	return b
}

// AddBullet adds a bulleted content line.
func (b *Box) AddBullet(text string) *Box {
	b.content = append(b.content, "• "+text)
	return b
}

// Render returns the box. Lines longer than the box are word-wrapped.
func (b *Box) Render() string {
	t, ok := tones[b.messageType]
	if !ok {
		t = tones[InfoMessage]
	}

	// two border columns and one column of padding on each side
	inner := max(b.width, minBoxWidth) - 4

	title := lipgloss.NewStyle().Bold(true).Foreground(t.color).
		Render(strings.Join(wrapText(t.prefix+" "+b.title, inner), "\n"))

	lines := []string{title}
	for _, line := range b.content {
		lines = append(lines, wrapText(line, inner)...)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.color).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// terminalWidth returns the stdout terminal width, or 80 when stdout is
// not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// wrapText splits text at word boundaries into lines of at most maxWidth
// runes. Words longer than maxWidth get a line of their own.
func wrapText(text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	if utf8.RuneCountInString(text) <= maxWidth {
		return []string{text}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= maxWidth {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
