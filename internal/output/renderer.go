package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KHET-1/meowlogger/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Renderer writes entries to an output stream.
type Renderer interface {
	Render(e model.Entry) error
}

// ---------------------------------------------------------------------------
// Text Renderer (colorized terminal output)
// ---------------------------------------------------------------------------

var (
	styleInfo     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleDebug    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // yellow
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleCritical = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true) // white on red
	styleSource   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true)
	stylePatterns = lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Faint(true)
)

// TextRenderer prints entries to the terminal with severity-based colors.
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer returns a Renderer that writes colorized text to stdout.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{w: os.Stdout}
}

func (r *TextRenderer) Render(e model.Entry) error {
	tag := styleLevelTag(e.Level)
	ts := e.Timestamp.Format("15:04:05")

	line := fmt.Sprintf("%s %s", ts, tag)
	if e.FilePath != "" {
		line += " " + styleSource.Render(e.FilePath)
	}
	line += " " + e.Message
	if pats := e.Patterns(); len(pats) > 0 {
		line += " " + stylePatterns.Render("["+strings.Join(pats, ",")+"]")
	}

	_, err := fmt.Fprintln(r.w, line)
	return err
}

func styleLevelTag(level string) string {
	padded := fmt.Sprintf("%-8s", level)
	switch level {
	case model.LevelDebug:
		return styleDebug.Render(padded)
	case model.LevelWarning:
		return styleWarning.Render(padded)
	case model.LevelError:
		return styleError.Render(padded)
	case model.LevelCritical:
		return styleCritical.Render(padded)
	default:
		return styleInfo.Render(padded)
	}
}

// ---------------------------------------------------------------------------
// JSON Renderer (structured output for piping)
// ---------------------------------------------------------------------------

// JSONRenderer prints each entry as a single JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON lines to stdout.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(os.Stdout)}
}

func (r *JSONRenderer) Render(e model.Entry) error {
	return r.enc.Encode(e)
}
