package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// Transcript accumulates the turns of a chat session for export.
type Transcript struct {
	startedAt time.Time
	turns     []*Turn
}

// Turn is one user query and the assistant outputs it produced, in node
// order.
type Turn struct {
	User    string
	Answers []NodeAnswer
}

// NodeAnswer is one node's printed output within a turn.
type NodeAnswer struct {
	Node string
	Text string
}

// NewTranscript creates an empty transcript stamped with the current time.
func NewTranscript() *Transcript {
	return &Transcript{startedAt: time.Now()}
}

// StartTurn records a new user query and returns the turn so node outputs
// can be attached as they stream in.
func (t *Transcript) StartTurn(user string) *Turn {
	turn := &Turn{User: user}
	t.turns = append(t.turns, turn)
	return turn
}

// Len returns the number of recorded turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// AddAnswer attaches one node's output to the turn.
func (tu *Turn) AddAnswer(node, text string) {
	tu.Answers = append(tu.Answers, NodeAnswer{Node: node, Text: text})
}

// Markdown renders the transcript as a Markdown document with one section
// per turn.
func (t *Transcript) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# Chat Transcript\n\n")
	fmt.Fprintf(&sb, "Recorded %s\n", t.startedAt.Format(time.RFC1123))

	for i, turn := range t.turns {
		fmt.Fprintf(&sb, "\n## Turn %d\n\n", i+1)
		fmt.Fprintf(&sb, "**User:** %s\n", turn.User)
		for _, answer := range turn.Answers {
			fmt.Fprintf(&sb, "\n**Assistant (%s):** %s\n", answer.Node, answer.Text)
		}
	}
	return sb.String()
}

// HTML renders the Markdown transcript to sanitized HTML.
func (t *Transcript) HTML() []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(t.Markdown()))

	opts := html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank}
	renderer := html.NewRenderer(opts)
	htmlBytes := markdown.Render(doc, renderer)

	return bluemonday.UGCPolicy().SanitizeBytes(htmlBytes)
}

// WriteFiles writes the Markdown transcript to path and an HTML rendering
// next to it, swapping the extension for .html.
func (t *Transcript) WriteFiles(path string) error {
	if err := os.WriteFile(path, []byte(t.Markdown()), 0644); err != nil {
		return fmt.Errorf("write markdown transcript: %w", err)
	}

	htmlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	if err := os.WriteFile(htmlPath, t.HTML(), 0644); err != nil {
		return fmt.Errorf("write html transcript: %w", err)
	}
	return nil
}
