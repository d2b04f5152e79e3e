package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kapu/courtside-go/internal/config"
	"github.com/kapu/courtside-go/internal/service/ai"
	"github.com/kapu/courtside-go/internal/util"
	"go.uber.org/zap"
)

// Prints the Gemini models this API key can call for text generation.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger("warn", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Gemini.APIKey == "" {
		logger.Error("GOOGLE_API_KEY is not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := ai.NewGeminiClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		logger.Error("Failed to create Gemini client", zap.Error(err))
		os.Exit(1)
	}

	count := 0
	for model, err := range client.Models.All(ctx) {
		if err != nil {
			logger.Error("Failed to list models", zap.Error(err))
			os.Exit(1)
		}
		if !slices.Contains(model.SupportedActions, "generateContent") {
			continue
		}
		marker := " "
		if strings.TrimPrefix(model.Name, "models/") == cfg.Gemini.Model {
			marker = "*"
		}
		fmt.Printf("%s %-40s %s\n", marker, strings.TrimPrefix(model.Name, "models/"), model.DisplayName)
		count++
	}
	fmt.Printf("%d models support generateContent (* = GEMINI_MODEL)\n", count)
}
