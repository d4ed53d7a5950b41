package container

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-trip-planner/app/db"
	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/api/compare"
	"github.com/FACorreiaa/go-trip-planner/internal/api/feasibilitycache"
	generativeAI "github.com/FACorreiaa/go-trip-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerarylock"
	"github.com/FACorreiaa/go-trip-planner/internal/api/processor"
	"github.com/FACorreiaa/go-trip-planner/internal/api/rates"
	"github.com/FACorreiaa/go-trip-planner/internal/api/search"
	"github.com/FACorreiaa/go-trip-planner/internal/api/templatecache"
	"github.com/FACorreiaa/go-trip-planner/internal/api/trip"
	"github.com/FACorreiaa/go-trip-planner/internal/api/visa"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Pool   *pgxpool.Pool

	TemplateCache *templatecache.Cache

	TripHandler    *trip.Handler
	LockHandler    *itinerarylock.Handler
	CompareHandler *compare.Handler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	aiClient, err := generativeAI.NewAIClient(ctx)
	if err != nil {
		logger.Error("Failed to initialize AI client", slog.Any("error", err))
		return nil, err
	}

	visaService, err := visa.NewServiceImpl(
		cfg.Providers.Visa.BaseURL,
		os.Getenv("VISA_API_KEY"),
		logger,
	)
	if err != nil {
		logger.Error("Failed to load visa datasets", slog.Any("error", err))
		return nil, err
	}

	searchService := search.NewServiceImpl(
		cfg.Providers.Search.BaseURL,
		os.Getenv("SEARCH_API_KEY"),
		logger,
	)
	ratesService := rates.NewServiceImpl(cfg.Providers.Rates.BaseURL, logger)

	feasCache := feasibilitycache.New()
	templateCache := templatecache.New(logger)

	lockRepo := itinerarylock.NewRepositoryImpl(pool, logger)
	lockService := itinerarylock.NewServiceImpl(lockRepo, logger)
	lockHandler := itinerarylock.NewHandler(lockService, logger)

	tripRepo := trip.NewPostgresTripRepo(pool, logger)
	processorService := processor.NewServiceImpl(
		tripRepo,
		aiClient,
		visaService,
		searchService,
		ratesService,
		lockService,
		feasCache,
		templateCache,
		logger,
	)
	tripService := trip.NewServiceImpl(tripRepo, processorService, ratesService, logger)
	tripHandler := trip.NewHandler(tripService, logger)

	compareHandler := compare.NewHandler(tripRepo, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Pool:           pool,
		TemplateCache:  templateCache,
		TripHandler:    tripHandler,
		LockHandler:    lockHandler,
		CompareHandler: compareHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
