package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"sourcehound/internal/adapter/channel"
	"sourcehound/internal/adapter/llm"
	"sourcehound/internal/adapter/search"
	"sourcehound/internal/domain"
	"sourcehound/internal/infra/config"
	"sourcehound/internal/infra/logger"
	"sourcehound/internal/infra/tracer"
	"sourcehound/internal/usecase"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`sourcehound - source discovery and relevance ranking bot

USAGE:
    sourcehound [FLAGS]

FLAGS:
    -h, --help         Show this help message
    --config PATH      Config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml
    Environment: SOURCEHOUND_* variables override config

EXAMPLES:
    sourcehound                               # Run with config.yaml
    sourcehound --config /etc/sourcehound.yaml
    SOURCEHOUND_TELEGRAM_TOKEN=... sourcehound`)
}

func run() error {
	// 1. Config
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// 2. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Channels. The Telegram channel doubles as the post fetcher, so it
	// must exist before the normalizer.
	var channels []domain.Channel
	var fetcher domain.PostFetcher
	var webformCfg *config.WebFormChannelConfig

	for _, cc := range cfg.Channels {
		switch cc.Type {
		case "telegram":
			tg := channel.NewTelegramChannel(cc.Telegram.Token, log)
			fetcher = tg
			channels = append(channels, tg)
		case "webform":
			webformCfg = cc.WebForm // built below, needs the pipeline
		default:
			return fmt.Errorf("unknown channel type: %s", cc.Type)
		}
	}

	// 4. Providers
	searchProvider, err := buildSearchProvider(cfg.Search, log)
	if err != nil {
		return fmt.Errorf("search provider: %w", err)
	}

	var scoringLLM domain.LLMProvider = llm.NewOpenAIProvider(cfg.Scorer.Provider, log)
	if cfg.Scorer.CircuitBreaker.Enabled {
		scoringLLM = llm.NewCircuitBreakerProvider(scoringLLM, cfg.Scorer.CircuitBreaker, log)
	}

	// 5. Pipeline
	pipeline := usecase.NewPipeline(
		usecase.NewNormalizer(fetcher, log),
		usecase.NewSearchClient(searchProvider, log),
		usecase.NewRelevanceScorer(scoringLLM, log),
		cfg.Pipeline.DesiredResults,
		cfg.Pipeline.TopN,
		cfg.Pipeline.StageTimeout,
		log,
	)

	if webformCfg != nil {
		channels = append(channels, channel.NewWebFormChannel(webformCfg.Addr, pipeline, log))
	}
	if len(channels) == 0 {
		return fmt.Errorf("no channels configured")
	}

	// 6. Graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 7. Message handler: each inbound message runs the pipeline as its own
	// unit of work so a slow request never stalls the channel's receive loop.
	handler := func(ch domain.Channel) domain.MessageHandler {
		return func(ctx context.Context, msg domain.InboundMessage) error {
			go handleMessage(ctx, pipeline, ch, msg, log)
			return nil
		}
	}

	log.Info("sourcehound starting",
		"search_provider", searchProvider.Name(),
		"scoring_provider", scoringLLM.Name(),
		"channels", len(channels),
	)

	// 8. Start channels
	var wg sync.WaitGroup
	errCh := make(chan error, len(channels))

	for _, ch := range channels {
		wg.Add(1)
		go func(c domain.Channel) {
			defer wg.Done()
			if err := c.Start(ctx, handler(c)); err != nil {
				errCh <- fmt.Errorf("channel %s: %w", c.Name(), err)
			}
		}(ch)
	}

	<-ctx.Done()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	for _, ch := range channels {
		if err := ch.Stop(shutdownCtx); err != nil {
			log.Error("channel stop error", "channel", ch.Name(), "error", err)
		}
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// handleMessage runs the pipeline for one inbound message and delivers
// progress and the final reply. Delivery failures are logged, never fatal.
func handleMessage(ctx context.Context, pipeline *usecase.Pipeline, ch domain.Channel, msg domain.InboundMessage, log *slog.Logger) {
	notify := func(text string) {
		err := ch.Send(ctx, domain.OutboundMessage{SessionID: msg.SessionID, Content: text})
		if err != nil {
			log.Warn("progress notification failed", "channel", ch.Name(), "error", err)
		}
	}

	outcome := pipeline.Run(ctx, msg.Content, msg.Caption, notify)

	err := ch.Send(ctx, domain.OutboundMessage{
		SessionID: msg.SessionID,
		Content:   usecase.FormatOutcome(outcome),
		IsError:   outcome.IsError(),
	})
	if err != nil {
		log.Error("reply delivery failed", "channel", ch.Name(), "error", err)
	}
}

func buildSearchProvider(cfg config.SearchConfig, log *slog.Logger) (domain.SearchProvider, error) {
	switch cfg.Provider {
	case "google", "":
		return search.NewGoogleProvider(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}
}

func configPath() string {
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("SOURCEHOUND_CONFIG"); p != "" {
		return p
	}
	return "config.yaml"
}
