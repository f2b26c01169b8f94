package app

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"valutatrade/internal/auth"
	"valutatrade/internal/cli"
	"valutatrade/internal/domain"
	"valutatrade/internal/infra"
	"valutatrade/internal/infra/storage"
	"valutatrade/internal/ledger"
	"valutatrade/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config *infra.Config
	CLI    *cli.App
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, stores,
// services) and wires the command surface.
func (b *Bootstrap) Initialize() error {
	// 1. Load secrets from .env when present. Missing .env is fine; the
	// config file and environment still apply.
	_ = godotenv.Load()

	// 2. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 3. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("bootstrapping",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)

	// 4. Initialize Storage
	docs, err := storage.NewDocumentStore(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	users := storage.NewUserStore(docs)
	portfolios := storage.NewPortfolioStore(docs)
	ratesStore := storage.NewRatesStore(docs)

	history, err := storage.NewHistoryDB(cfg.Storage.HistoryDB)
	if err != nil {
		return err
	}
	slog.Info("storage initialized", slog.String("dir", cfg.Storage.Dir))

	// 5. Domain services
	catalog := domain.DefaultCatalog()

	rates, err := service.NewRatesService(ratesStore, cfg.RatesTTL())
	if err != nil {
		return err
	}
	slog.Info("rates snapshot loaded",
		slog.Int("pairs", rates.Table().Len()),
		slog.Time("last_refresh", rates.LastRefresh()),
	)

	authSvc := auth.NewService(users, portfolios, cfg.BaseCurrency)
	engine := ledger.NewEngine(catalog, rates, portfolios, history, cfg.BaseCurrency)

	// 6. Rate providers, queried in registration order. The crypto provider
	// needs no key; the fiat provider is enabled only when a key is set.
	providers := []infra.RateProvider{
		infra.NewCoinGeckoClient(
			cfg.Rates.CoinGecko.URL,
			cfg.Rates.CoinGecko.IDs,
			cfg.BaseCurrency,
			cfg.RequestTimeout(),
		),
	}
	if cfg.Rates.ExchangeRate.APIKey != "" {
		erc, err := infra.NewExchangeRateClient(
			cfg.Rates.ExchangeRate.URL,
			cfg.Rates.ExchangeRate.APIKey,
			cfg.BaseCurrency,
			cfg.RequestTimeout(),
		)
		if err != nil {
			return err
		}
		providers = append(providers, erc)
	} else {
		slog.Warn("EXCHANGERATE_API_KEY not set; fiat rate provider disabled")
	}

	updater := infra.NewRatesUpdater(providers, catalog, ratesStore, history, cfg.RequestTimeout())

	// 7. Command surface
	b.CLI = cli.NewApp(cli.Deps{
		Auth:         authSvc,
		Ledger:       engine,
		Rates:        rates,
		Updater:      updater,
		History:      history,
		Catalog:      catalog,
		BaseCurrency: cfg.BaseCurrency,
	}, os.Stdout)

	return nil
}
