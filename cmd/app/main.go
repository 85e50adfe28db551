// Terminal chat shell for the research & market insights assistant.
//
// Examples:
//
//	export OPENAI_API_KEY=...
//	go run ./cmd/app
//
//	export ANTHROPIC_API_KEY=...
//	go run ./cmd/app -provider anthropic -model claude-3-5-sonnet-latest
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantbrief/go-insight-agent/pkg/config"
	"github.com/quantbrief/go-insight-agent/pkg/models"
	"github.com/quantbrief/go-insight-agent/pkg/runtime"
	"github.com/quantbrief/go-insight-agent/pkg/tools"
)

var (
	flagProvider = flag.String("provider", "", "LLM provider: openai|anthropic|gemini|ollama (overrides MODEL_PROVIDER)")
	flagModel    = flag.String("model", "", "Model ID for the selected provider (overrides MODEL)")
	flagVerbose  = flag.Bool("verbose", false, "Log tool rounds and invocations")
	flagTimeout  = flag.Duration("timeout", 120*time.Second, "Per-turn timeout")
)

const welcome = `Research & Market Insights Agent
Ask about stock prices, current events, or general knowledge, e.g.:
  What is the price of AAPL?
  Summarize recent developments in generative AI.
  Who invented the transistor?
Type "exit" to quit.`

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *flagVerbose {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.WarnLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration")
	}
	for _, name := range cfg.MissingToolCredentials() {
		fmt.Printf("note: %s is not set; the corresponding tool will report it when used\n", name)
	}

	sink := &terminalChartSink{out: os.Stdout}
	rt, err := runtime.New(context.Background(),
		runtime.WithModel(modelLoader(cfg)),
		runtime.WithTools(tools.Default(sink)...),
		runtime.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("start runtime")
	}

	session := rt.NewSession("")
	defer rt.RemoveSession(session.ID())

	fmt.Println(welcome)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Bye!")
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
		result, err := session.Respond(ctx, input)
		cancel()
		if err != nil {
			fmt.Printf("agent error: %v\n", err)
			continue
		}
		fmt.Println(result.Output)
	}
}

func loadConfig() (*config.Config, error) {
	if *flagProvider != "" {
		os.Setenv("MODEL_PROVIDER", *flagProvider)
	}
	if *flagModel != "" {
		os.Setenv("MODEL", *flagModel)
	}
	return config.Load()
}

func modelLoader(cfg *config.Config) runtime.ModelLoader {
	return func(ctx context.Context) (models.ChatModel, error) {
		switch cfg.Provider {
		case config.ProviderAnthropic:
			return models.NewAnthropicLLM(cfg.Model), nil
		case config.ProviderGemini:
			return models.NewGeminiLLM(ctx, cfg.Model)
		case config.ProviderOllama:
			return models.NewOllamaLLM(cfg.Model)
		default:
			return models.NewOpenAILLM(cfg.Model), nil
		}
	}
}
