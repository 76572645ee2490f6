package markdown

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const DefaultWordWrap = 80

// Renderer turns assistant replies into terminal markdown. A nil or plain Renderer returns text unchanged.
type Renderer struct {
	mu    sync.Mutex
	term  *glamour.TermRenderer
	plain bool
}

// New builds a renderer styled for the current terminal background.
func New(wordWrap int) (*Renderer, error) {
	if wordWrap <= 0 {
		wordWrap = DefaultWordWrap
	}

	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}

	return &Renderer{term: term}, nil
}

// NewWithStyle uses a fixed glamour style such as "dark", "light" or "notty".
func NewWithStyle(style string, wordWrap int) (*Renderer, error) {
	if wordWrap <= 0 {
		wordWrap = DefaultWordWrap
	}

	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}

	return &Renderer{term: term}, nil
}

// Plain returns a renderer that passes text through, for pipes and --json output.
func Plain() *Renderer {
	return &Renderer{plain: true}
}

// Render falls back to the raw text when glamour cannot parse it.
func (r *Renderer) Render(text string) string {
	if r == nil || r.plain || r.term == nil {
		return text
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out, err := r.term.Render(text)
	if err != nil {
		return text
	}

	return strings.TrimRight(out, "\n") + "\n"
}
