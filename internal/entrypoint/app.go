package entrypoint

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/memberimport/internal/audit"
	"github.com/mrlokans/memberimport/internal/backend"
	"github.com/mrlokans/memberimport/internal/config"
	"github.com/mrlokans/memberimport/internal/database"
	auditrepo "github.com/mrlokans/memberimport/internal/database/audit"
	"github.com/mrlokans/memberimport/internal/database/sessions"
	"github.com/mrlokans/memberimport/internal/entities"
	"github.com/mrlokans/memberimport/internal/importers"
	"github.com/mrlokans/memberimport/internal/importers/matchers"
	"github.com/mrlokans/memberimport/internal/logging"
	"github.com/mrlokans/memberimport/internal/records"
	"github.com/mrlokans/memberimport/internal/services"
)

// App holds the services shared by the HTTP server and the CLI commands.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Database *database.Database
	Audit    *audit.Service
	Imports  *services.ImportService

	// Local is the members database served to remote importers. Nil in
	// remote mode.
	Local   *backend.Local
	Backend importers.Backend
}

// NewApp wires the application from cfg. Close releases what it opened.
func NewApp(cfg *config.Config) (*App, error) {
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	gormLevel := logger.Warn
	if cfg.Log.Development {
		gormLevel = logger.Info
	}
	db, err := database.NewDatabase(cfg.Database.Path, database.WithLogLevel(gormLevel), database.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		Config:   cfg,
		Logger:   log,
		Database: db,
		Audit:    audit.NewService(auditrepo.NewRepository(db.DB), log),
	}

	if err := app.initBackend(); err != nil {
		_ = db.Close()
		return nil, err
	}

	categories, err := records.Load(cfg.Import.RecordsPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if len(categories) > 0 {
		log.Info("loaded record categories", zap.Int("count", len(categories)), zap.String("path", cfg.Import.RecordsPath))
	}

	pipelines := func(period *entities.RegistrationPeriod) *importers.Pipeline {
		return importers.NewPipeline(
			matchers.Default(matchers.Options{
				Country:          cfg.Import.Country,
				Period:           period,
				RecordCategories: categories,
			}),
			importers.WithWorkers(cfg.Import.PreviewWorkers),
			importers.WithLogger(log),
		)
	}

	app.Imports = services.NewImportService(
		pipelines,
		app.Backend,
		sessions.NewRepository(db.DB),
		services.NewSessionStore(cfg.Import.SessionTTL),
		services.Options{
			OrganizationID:  cfg.Import.OrganizationID,
			DefaultPeriodID: cfg.Import.PeriodID,
			ImporterOptions: []importers.ImporterOption{
				importers.WithRowDelay(cfg.Import.RowDelay),
				importers.WithRecordCategories(categories),
			},
			Auditor: app.Audit,
			Logger:  log,
		},
	)

	return app, nil
}

func (a *App) initBackend() error {
	switch a.Config.Backend.Mode {
	case config.BackendModeLocal, "":
		a.Local = backend.NewLocal(a.Database.DB, a.Logger)
		a.Backend = a.Local
		a.Logger.Info("using local members database")
	case config.BackendModeRemote:
		if a.Config.Backend.BaseURL == "" {
			return errors.New("BACKEND_BASE_URL is required in remote backend mode")
		}
		if a.Config.Backend.Token == "" {
			a.Logger.Warn("BACKEND_TOKEN is not set, the remote API will likely reject requests")
		}
		a.Backend = backend.NewRemote(a.Config.Backend.BaseURL, a.Config.Backend.Token, a.Config.Backend.Timeout,
			backend.WithLogger(a.Logger))
		a.Logger.Info("using remote members API", zap.String("base_url", a.Config.Backend.BaseURL))
	default:
		return fmt.Errorf("unknown backend mode %q", a.Config.Backend.Mode)
	}
	return nil
}

// Close waits for pending audit events and closes the database.
func (a *App) Close() error {
	a.Audit.Wait()
	// Sync fails on terminals; there is nothing left to flush then.
	_ = a.Logger.Sync()
	return a.Database.Close()
}
