package database

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/memberimport/internal/entities"
)

// Models lists every table managed by AutoMigrate.
var Models = []any{
	&entities.Member{},
	&entities.RegistrationPeriod{},
	&entities.Group{},
	&entities.GroupCategory{},
	&entities.Registration{},
	&entities.BalanceItem{},
	&entities.Payment{},
	&entities.BalanceItemPayment{},
	&entities.ImportSession{},
	&entities.AuditEvent{},
}

type Database struct {
	DB *gorm.DB
}

// Option configures NewDatabase.
type Option func(*options)

type options struct {
	logLevel logger.LogLevel
	logger   *zap.Logger
}

// WithLogLevel sets the gorm log level. Default: Warn.
func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) {
		o.logLevel = level
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	o := options{logLevel: logger.Warn, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(o.logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	o.logger.Info("database initialized", zap.String("path", dbPath))

	return &Database{DB: db}, nil
}

// dsn adds a busy timeout so concurrent writers wait for the lock.
func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_busy_timeout=5000"
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
