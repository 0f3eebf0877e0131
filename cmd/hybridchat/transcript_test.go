package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptMarkdown(t *testing.T) {
	tr := NewTranscript()

	turn := tr.StartTurn("What is Go?")
	turn.AddAnswer("chatbot", "Go is a programming language.")
	turn.AddAnswer("compare", "Go is a statically typed language from Google.")

	tr.StartTurn("And Rust?").AddAnswer("chatbot", "Rust is a systems language.")

	md := tr.Markdown()
	assert.Contains(t, md, "# Chat Transcript")
	assert.Contains(t, md, "## Turn 1")
	assert.Contains(t, md, "## Turn 2")
	assert.Contains(t, md, "**User:** What is Go?")
	assert.Contains(t, md, "**Assistant (chatbot):** Go is a programming language.")
	assert.Contains(t, md, "**Assistant (compare):** Go is a statically typed language from Google.")

	// Turns appear in order.
	assert.Less(t, strings.Index(md, "What is Go?"), strings.Index(md, "And Rust?"))
}

func TestTranscriptMarkdown_Empty(t *testing.T) {
	tr := NewTranscript()

	md := tr.Markdown()
	assert.Contains(t, md, "# Chat Transcript")
	assert.NotContains(t, md, "## Turn")
	assert.Equal(t, 0, tr.Len())
}

func TestTranscriptHTML(t *testing.T) {
	tr := NewTranscript()
	tr.StartTurn("hello").AddAnswer("chatbot", "hi there")

	out := string(tr.HTML())
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "hi there")
}

func TestTranscriptHTML_Sanitized(t *testing.T) {
	tr := NewTranscript()
	tr.StartTurn("evil").AddAnswer("chatbot", `<script>alert("x")</script>done`)

	out := string(tr.HTML())
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "done")
}

func TestTranscriptWriteFiles(t *testing.T) {
	tr := NewTranscript()
	tr.StartTurn("question").AddAnswer("compare", "answer")

	dir := t.TempDir()
	path := filepath.Join(dir, "chat.md")
	require.NoError(t, tr.WriteFiles(path))

	md, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(md), "**User:** question")

	htmlOut, err := os.ReadFile(filepath.Join(dir, "chat.html"))
	require.NoError(t, err)
	assert.Contains(t, string(htmlOut), "answer")
}
