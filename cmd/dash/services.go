package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskdash/internal/config"
	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/internal/providers/llm"
	"github.com/sandevgo/tuskdash/internal/providers/quote"
	"github.com/sandevgo/tuskdash/internal/providers/rag"
	"github.com/sandevgo/tuskdash/internal/service/analysis"
	"github.com/sandevgo/tuskdash/internal/service/market"
	"github.com/sandevgo/tuskdash/internal/service/memory"
	"github.com/sandevgo/tuskdash/internal/storage/sqlite"
	"github.com/sandevgo/tuskdash/internal/transport/api"
	"github.com/sandevgo/tuskdash/internal/transport/telegram"
	"github.com/sandevgo/tuskdash/pkg/log"
	"github.com/sandevgo/tuskdash/pkg/srv"
	"google.golang.org/genai"
)

type repos struct {
	turns     *sqlite.TurnsRepo
	knowledge *sqlite.KnowledgeRepo
	market    *sqlite.MarketRepo
}

// NewServices wires the application. Services are started in slice order and
// shut down in reverse, so the store is closed last.
func NewServices(ctx context.Context) ([]srv.Service, error) {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, err
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	aiCfg := config.NewGenAIConfig(ctx)
	tgCfg := config.NewTelegramConfig(ctx)
	marketCfg := config.NewMarketConfig(ctx)

	// 2. Storage
	db, r, err := initStorage(ctx, appCfg)
	if err != nil {
		return nil, err
	}
	services = append(services, srv.NewCleanup("sqlite", db.Close))

	// 3. Gemini chat model and embedder, both degrade when no key is set
	client, err := llm.NewClient(ctx, aiCfg)
	if err != nil && !errors.Is(err, core.ErrUnavailable) {
		return nil, err
	}
	model := llm.NewChatModel(ctx, aiCfg, client)
	embedder := initEmbedder(aiCfg, client)

	// 4. Memory and knowledge
	assembler := memory.NewAssembler(
		appCfg,
		r.turns,
		r.knowledge,
		embedder,
		model,
		memory.NewSysPrompt(filepath.Join(appCfg.GetRuntimePath(), memory.PersonaFileName)),
	)
	ingester := memory.NewIngester(r.knowledge, embedder)
	services = append(services, memory.NewRetentionWorker(
		r.turns,
		r.knowledge,
		appCfg.TurnRetention,
		appCfg.FragmentRetention,
		appCfg.RetentionInterval,
	))

	// 5. Market watcher
	quotes := quote.NewYahoo(marketCfg.QuoteBaseURL, nil)
	watcher := market.NewWatcher(marketCfg, quotes, r.market, telegram.NewAlertNotifier(ctx, tgCfg))
	services = append(services, watcher)

	// 6. HTTP API
	handler := api.NewHandler(
		assembler,
		ingester,
		analysis.NewAnalyzer(model),
		watcher,
		quotes,
		marketCfg.Symbol,
	)
	services = append(services, api.NewServer(ctx, appCfg.HTTPAddr, handler))

	logger.Debug().
		Str("runtime", appCfg.GetRuntimePath()).
		Bool("gemini", model.Available()).
		Bool("telegram", tgCfg.Enabled()).
		Str("symbol", marketCfg.Symbol).
		Msg("services wired")

	return services, nil
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, repos, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, repos{}, err
	}
	return db, repos{
		turns:     sqlite.NewTurnsRepo(db),
		knowledge: sqlite.NewKnowledgeRepo(db),
		market:    sqlite.NewMarketRepo(db),
	}, nil
}

func initEmbedder(cfg *config.GenAIConfig, client *genai.Client) core.Embedder {
	if client == nil {
		return rag.NewUnavailable(cfg.EmbeddingDims)
	}
	return rag.NewEmbedder(
		rag.NewGenAIEmbedder(client, cfg.EmbeddingModel, cfg.EmbeddingDims),
		rag.DefaultEmbedTimeout,
	)
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
