package gormstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

type Config struct {
	Type  string
	DSN   string
	Debug bool
}

// Tables lists every model managed by AutoMigrate.
var Tables = []any{
	&productRecord{},
	&trackRecord{},
	&orderRecord{},
	&orderLineRecord{},
}

// Open connects to the configured database. For sqlite the parent directory of the file is created.
func Open(cfg Config, zl *zap.Logger) (*gorm.DB, error) {
	const op = "gormstore.Open"

	if zl == nil {
		zl = zap.NewNop()
	}
	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger: logger.New(zap.NewStdLog(zl.Named("gorm")), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Type) {
	case "", TypeSQLite:
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		dialector = sqlite.Open(cfg.DSN)
	case TypePostgres, "postgresql":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("%s: unsupported database type %q", op, cfg.Type)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if strings.ToLower(cfg.Type) != TypePostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// sqlite serializes writers; one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates the storefront tables.
func Migrate(db *gorm.DB) error {
	if err := db.Migrator().AutoMigrate(Tables...); err != nil {
		return fmt.Errorf("gormstore.Migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ensureDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return nil
	}
	path := dsn
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
