package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kapu/courtside-go/internal/adapter"
	"github.com/kapu/courtside-go/internal/client"
	"github.com/kapu/courtside-go/internal/command"
	"github.com/kapu/courtside-go/internal/config"
	"github.com/kapu/courtside-go/internal/constants"
	"github.com/kapu/courtside-go/internal/domain"
	"github.com/kapu/courtside-go/internal/util"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Client.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	storage, err := client.OpenBadgerStorage(cfg.Client.DataDir)
	if err != nil {
		logger.Error("Failed to open client storage", zap.String("dir", cfg.Client.DataDir), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", cfg.Client.DataDir, err)
		os.Exit(1)
	}

	presenter := adapter.NewPresenter(os.Stdout, logger)
	api := client.NewAPIClient(cfg.Client.ServerURL, constants.APIConfig.ClientTimeout, logger)
	session := client.NewSession(api, storage, presenter, logger)
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("Failed to close client storage", zap.Error(err))
		}
	}()

	logger.Info("Courtside client starting",
		zap.String("server", cfg.Client.ServerURL),
		zap.String("data_dir", cfg.Client.DataDir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := &command.Dependencies{
		Session:   session,
		Presenter: presenter,
		Registry:  command.NewRegistry(),
		Quit:      stop,
		Logger:    logger,
	}
	command.RegisterAll(deps)

	parser := adapter.NewCommandParser("/")
	dispatcher := command.NewSequentialDispatcher(deps.Registry, command.Normalize)

	fmt.Println("courtside · type \"help\" for commands")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Warn("Failed to read input", zap.Error(err))
		}
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				return
			}
			parsed := parser.ParseLine(line)
			if parsed.Type == domain.CommandUnknown {
				if parsed.RawMessage != "" {
					presenter.ShowStatus("Unknown command. Type \"help\".")
				}
				continue
			}
			if _, err := dispatcher.Publish(ctx, command.CommandEvent{Type: parsed.Type, Params: parsed.Params}); err != nil {
				logger.Error("Command failed", zap.String("command", parsed.Type.String()), zap.Error(err))
			}
		}
	}
}
