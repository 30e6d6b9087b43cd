package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/emilythestrangee/pyra/backend/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver   string
	DSN      string
	LogLevel string
	Logger   *slog.Logger
}

type Database struct {
	DB     *gorm.DB
	driver string
}

// Open connects to postgres or sqlite and tunes the connection pool.
func Open(opts Options) (*Database, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(opts.DSN))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(opts.Logger, opts.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// SQLite allows one writer; a single connection turns lock errors into queueing.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	opts.Logger.Info("database connected", "driver", opts.Driver)
	return &Database{DB: db, driver: opts.Driver}, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Migrate creates or updates every table.
func (d *Database) Migrate() error {
	if err := d.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database migrations completed")
	return nil
}

func (d *Database) Driver() string {
	return d.driver
}

// Health checks the health of the database connection by pinging the database.
func (d *Database) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats := make(map[string]string)

	sqlDB, err := d.DB.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db error: %v", err)
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["driver"] = d.driver

	dbStats := sqlDB.Stats()
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)

	return stats
}

// Close closes the database connection.
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	slog.Info("disconnected from database", "driver", d.driver)
	return sqlDB.Close()
}

// IsNotFound reports whether err is gorm's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// ForShare is a query scope that holds a shared row lock until the
// transaction ends, so a concurrent ForUpdate reader waits for it.
// SQLite serializes writers on its own and gets no clause.
func ForShare(db *gorm.DB) *gorm.DB {
	return lockRows(db, "SHARE")
}

// ForUpdate is a query scope that takes an exclusive row lock.
func ForUpdate(db *gorm.DB) *gorm.DB {
	return lockRows(db, "UPDATE")
}

func lockRows(db *gorm.DB, strength string) *gorm.DB {
	if db.Dialector == nil || db.Dialector.Name() != DriverPostgres {
		return db
	}
	return db.Clauses(clause.Locking{Strength: strength})
}

type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}

func newGormLogger(l *slog.Logger, level string) logger.Interface {
	gormLevel := logger.Warn
	switch strings.ToLower(level) {
	case "debug":
		gormLevel = logger.Info
	case "error":
		gormLevel = logger.Error
	}
	return logger.New(slogWriter{logger: l}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
