// Command hybridchat runs an interactive terminal chat over the hybrid
// memory+tools agent. Configuration comes from the environment, optionally
// seeded from a .env file; GROQ_API_KEY and SERP_API_KEY are required.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tmc/langchaingo/tools"

	"github.com/smallnest/hybridchat/agent"
	"github.com/smallnest/hybridchat/graph"
	"github.com/smallnest/hybridchat/llms/groq"
	chatlog "github.com/smallnest/hybridchat/log"
	"github.com/smallnest/hybridchat/tool"
)

// fallbackQuestion replaces the user's input when a turn fails. The loop
// runs it once more and exits.
const fallbackQuestion = "What do you know about LangGraph?"

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	goodbyeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	graphOnly := flag.Bool("graph", false, "print the agent graph as a Mermaid diagram and exit")
	transcriptPath := flag.String("transcript", "", "write a Markdown transcript plus an HTML rendering to this path on exit")
	flag.Parse()

	loadEnv(*envFile)
	cfg := loadConfig()
	validateConfig(cfg)

	logger := chatlog.NewGolog(chatlog.ParseLevel(cfg.LogLevel))
	chatlog.SetDefaultLogger(logger)

	model, err := groq.New(
		groq.WithAPIKey(cfg.GroqAPIKey),
		groq.WithModel(groq.ModelName(cfg.Model)),
	)
	if err != nil {
		log.Fatalf("Failed to create model client: %v", err)
	}

	webSearch, err := tool.NewSerperSearch(cfg.SerpAPIKey)
	if err != nil {
		log.Fatalf("Failed to create web search tool: %v", err)
	}
	var wikiOpts []tool.WikipediaOption
	if cfg.WikipediaBaseURL != "" {
		wikiOpts = append(wikiOpts, tool.WithWikipediaBaseURL(cfg.WikipediaBaseURL))
	}
	wiki := tool.NewWikipediaSearch(wikiOpts...)

	ag, err := agent.New(model, []tools.Tool{webSearch, wiki},
		agent.WithLogger(logger),
		agent.WithTemperature(cfg.Temperature),
	)
	if err != nil {
		log.Fatalf("Failed to build agent: %v", err)
	}

	if *graphOnly {
		fmt.Println(graph.NewExporter(ag.Graph()).DrawMermaid())
		return
	}

	tr := NewTranscript()
	runREPL(context.Background(), agent.NewSession(ag), tr, logger)

	if *transcriptPath != "" && tr.Len() > 0 {
		if err := tr.WriteFiles(*transcriptPath); err != nil {
			logger.Error("write transcript: %v", err)
		}
	}
}

// runREPL reads user input until quit/exit/q or EOF. A failed turn is
// retried once with fallbackQuestion, then the loop ends.
func runREPL(ctx context.Context, session *agent.Session, tr *Transcript, logger chatlog.Logger) {
	fmt.Println("Ask a question, or type 'quit', 'exit' or 'q' to leave.")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(userStyle.Render("User: "))
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				fmt.Println(goodbyeStyle.Render("Goodbye!"))
				return
			}
			logger.Error("read input: %v", err)
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Println(goodbyeStyle.Render("Goodbye!"))
			return
		}

		if err := runTurn(ctx, session, tr, input); err != nil {
			logger.Warn("turn failed: %v, retrying with a fallback question", err)
			fmt.Println(userStyle.Render("User: ") + fallbackQuestion)
			if err := runTurn(ctx, session, tr, fallbackQuestion); err != nil {
				logger.Error("fallback question failed: %v", err)
			}
			return
		}
	}
}

// runTurn streams one query through the agent and prints each node update
// that carries a message. Router updates carry no message and print nothing.
func runTurn(ctx context.Context, session *agent.Session, tr *Transcript, input string) error {
	turn := tr.StartTurn(input)

	stream := session.Ask(ctx, input)
	for event := range stream.Events {
		if event.Err != nil {
			continue
		}
		text := agent.LastMessageText(event.State.Messages)
		if text == "" {
			continue
		}
		fmt.Println(assistantStyle.Render("Assistant:") + " " + text)
		turn.AddAnswer(event.Node, text)
	}

	_, err := stream.Wait()
	return err
}
