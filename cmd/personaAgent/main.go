package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reinhart/personaAgent/internal/assistant"
	"github.com/reinhart/personaAgent/internal/configuration"
	"github.com/reinhart/personaAgent/internal/errorsx"
	"github.com/reinhart/personaAgent/internal/logger"
)

const usage = `Usage: personaAgent <command> [flags]

Commands:
  weather    ask the travel assistant a question, it may call get_weather
  team       have the writer, SEO and fact checker personas work on a topic
  supervise  plan a goal and execute it with the writer, censor and SEO personas
  chat       interactive chat with the travel assistant

Run 'personaAgent <command> -h' for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	cfg, err := configuration.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger.Init()
	if cfg.Agent.Debug {
		logger.DebugMode = true
	}
	// Debug logs go to a file so they do not interleave with command output or the TUI
	if logger.DebugMode {
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			fmt.Println("fatal: could not open debug.log:", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
		logger.Debug("Logger initialized, config source: %q", cfg.Source)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "weather":
		err = runWeather(cfg, args)
	case "team":
		err = runTeam(cfg, args)
	case "supervise":
		err = runSupervise(cfg, args)
	case "chat":
		err = runChat(cfg, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Printf("Unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		reportError(cfg, err)
		os.Exit(1)
	}
}

// newProvider builds the configured model, failing before any request is made
func newProvider(ctx context.Context, cfg *configuration.Config) (assistant.LLMProvider, error) {
	return assistant.NewProviderFromConfig(ctx, cfg)
}

func closeProvider(p assistant.LLMProvider) {
	if c, ok := p.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			logger.Warn("Closing provider: %v", err)
		}
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: personaAgent %s [flags] [text]\n", name)
		fs.PrintDefaults()
	}
	return fs
}

// textArg joins the positional arguments, falling back to def
func textArg(fs *flag.FlagSet, def string) string {
	if text := strings.TrimSpace(strings.Join(fs.Args(), " ")); text != "" {
		return text
	}
	return def
}

func reportError(cfg *configuration.Config, err error) {
	if !errorsx.HasReason(err, errorsx.ReasonMissingCredential) {
		fmt.Printf("Error: %v\n", err)
		return
	}

	envVar, tomlKey := credentialKeys(cfg.LLM.Provider)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("❌ Error: %s not set\n", envVar)
	fmt.Println("")
	fmt.Println("Set it via environment variable or a .env file:")
	fmt.Printf("  export %s='...'\n", envVar)
	fmt.Println("")
	fmt.Println("Or add it to ~/.config/personaagent/config.toml:")
	fmt.Println("  [llm]")
	fmt.Printf("  %s = \"...\"\n", tomlKey)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}

func credentialKeys(provider string) (envVar, tomlKey string) {
	switch provider {
	case configuration.ProviderAnthropic:
		return "ANTHROPIC_API_KEY", "anthropic_api_key"
	case configuration.ProviderGemini:
		return "GEMINI_API_KEY", "gemini_api_key"
	default:
		return "OPENAI_API_KEY", "openai_api_key"
	}
}
