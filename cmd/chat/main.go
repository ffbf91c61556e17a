// Command chat is a small interactive demo for the provider layer: it sends
// one prompt to the selected vendor and prints the streamed answer to stdout.
//
// Credentials come from the environment (or a .env file in the working
// directory): OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY depending
// on the -provider flag.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/bigduu/llmbridge/internal/utils"
	"github.com/bigduu/llmbridge/providers/ai"
	"github.com/bigduu/llmbridge/providers/ai/anthropic"
	"github.com/bigduu/llmbridge/providers/ai/gemini"
	"github.com/bigduu/llmbridge/providers/ai/openai"
	"github.com/bigduu/llmbridge/providers/observability"
	"github.com/bigduu/llmbridge/providers/observability/slogobs"
)

var defaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-sonnet-4-5",
	"gemini":    "gemini-2.0-flash",
}

func main() {
	providerName := flag.String("provider", "openai", "provider to use: openai, anthropic or gemini")
	model := flag.String("model", "", "model name (defaults per provider)")
	systemPrompt := flag.String("system", "You are a helpful assistant.", "system prompt")
	verbose := flag.Bool("v", false, "enable trace logging")
	flag.Parse()

	prompt := "What is the capital of France?"
	if flag.NArg() > 0 {
		prompt = flag.Arg(0)
	}

	provider, err := selectProvider(*providerName)
	if err != nil {
		slog.Error("Unknown provider", "provider", *providerName)
		os.Exit(1)
	}
	if *model == "" {
		*model = defaultModels[*providerName]
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	observer := slogobs.New(logger)

	overview := &ai.Overview{}
	ctx := observability.ContextWithObserver(context.Background(), observer)
	ctx = overview.ToContext(ctx)

	ctx, span := observer.StartSpan(ctx, "chat",
		observability.String(observability.AttrLLMProvider, *providerName),
		observability.String(observability.AttrLLMModel, *model),
	)
	defer span.End()

	request := ai.ChatRequest{
		Model:        *model,
		SystemPrompt: *systemPrompt,
		Messages:     []ai.Message{ai.User(prompt)},
	}
	overview.AddRequest(&request)

	stream, err := provider.StreamMessage(ctx, request)
	if err != nil {
		span.RecordError(err)
		slog.Error("Error starting stream", "error", err)
		os.Exit(1)
	}

	var finishReason string
	for chunk, streamErr := range stream.Iter() {
		if streamErr != nil {
			span.RecordError(streamErr)
			slog.Error("Stream failed", "error", streamErr)
			os.Exit(1)
		}
		switch chunk.Kind {
		case ai.ChunkToken:
			fmt.Print(chunk.Token)
		case ai.ChunkToolCalls:
			for _, call := range chunk.ToolCalls {
				arguments, parseErr := utils.ParseStringAs[map[string]any](call.Function.Arguments)
				if parseErr != nil {
					fmt.Printf("\n[tool call] %s(%s)\n", call.Function.Name, call.Function.Arguments)
					continue
				}
				fmt.Printf("\n[tool call] %s %v\n", call.Function.Name, arguments)
			}
		case ai.ChunkDone:
			finishReason = chunk.FinishReason
			overview.IncludeUsage(chunk.Usage)
		case ai.ChunkError:
			slog.Error("Provider reported an error", "error", chunk.Error)
			os.Exit(1)
		}
	}
	fmt.Println()

	fmt.Printf("Finish Reason: %s\n", finishReason)
	if usage := overview.TotalUsage; usage.TotalTokens > 0 {
		fmt.Printf("Tokens: %d prompt / %d completion / %d total\n",
			usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
	}
}

func selectProvider(name string) (ai.StreamProvider, error) {
	switch name {
	case "openai":
		return openai.NewOpenAIProvider(), nil
	case "anthropic":
		return anthropic.New(), nil
	case "gemini":
		return gemini.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
