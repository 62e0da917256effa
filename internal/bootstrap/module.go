package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"autoqa/internal/bootstrap/config"
	"autoqa/internal/bootstrap/database"
	"autoqa/internal/bootstrap/logging"
	cacheinfra "autoqa/internal/infrastructure/cache"
	"autoqa/internal/infrastructure/objectstore"
	sqliterepo "autoqa/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "autoqa/internal/infrastructure/persistence/sqlite/uow"
	"autoqa/internal/infrastructure/testrail"
	"autoqa/internal/ports"
	"autoqa/internal/usecase/ingest"
	"autoqa/internal/usecase/scripts"
)

// Services bundles the usecase surface handed to commands.
type Services struct {
	Ingest  *ingest.Service
	Scripts *scripts.Service
	Catalog ports.CatalogRepository
	Uow     ports.UnitOfWork
}

func NewServices(ingestSvc *ingest.Service, scriptsSvc *scripts.Service, repo ports.CatalogRepository, uow ports.UnitOfWork) *Services {
	return &Services{
		Ingest:  ingestSvc,
		Scripts: scriptsSvc,
		Catalog: repo,
		Uow:     uow,
	}
}

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewCatalogRepository,
			fx.As(new(ports.CatalogRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideTestRailAPI),
	fx.Provide(provideObjectStore),
	fx.Provide(ingest.NewService),
	fx.Provide(scripts.NewService),
	fx.Provide(NewServices),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideTestRailAPI(cfg config.Config) ports.TestRailAPI {
	return testrail.NewClient(cfg.TestRail)
}

// provideObjectStore degrades to a disabled store when no endpoint is
// configured, so commands that never touch storage still bootstrap.
func provideObjectStore(cfg config.Config) (ports.ObjectStore, error) {
	if cfg.Storage.Endpoint == "" {
		return objectstore.NewDisabled(), nil
	}
	return objectstore.NewMinioStore(cfg.Storage)
}
