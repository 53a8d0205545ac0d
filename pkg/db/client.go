package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"

	"github.com/procurehub/portal/pkg/config"
	"github.com/procurehub/portal/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client wraps the shared GORM connection.
type Client struct {
	conn *gorm.DB
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options selects the dialect the client opens.
type Options struct {
	UseSQLite bool
}

// New boots a GORM client using the provided configuration.
func New(ctx context.Context, cfg config.DBConfig, opts Options, logg *logger.Logger) (*Client, error) {
	dialector, err := dialectorFor(cfg, opts)
	if err != nil {
		return nil, err
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	gormCfg := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}

	applyPoolSettings(sqlDB, cfg, opts)

	if logg != nil {
		logg.Info(logg.WithField(ctx, "dialect", dialector.Name()), "database connection established")
	}

	return &Client{conn: conn}, nil
}

// NewFromGorm wraps an already opened connection.
func NewFromGorm(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

func dialectorFor(cfg config.DBConfig, opts Options) (gorm.Dialector, error) {
	if opts.UseSQLite {
		path := cfg.SQLitePath
		if path == "" {
			path = "file::memory:?cache=shared"
		}
		return sqlite.Open(path), nil
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	return postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true,
	}), nil
}

func applyPoolSettings(sqlDB *sql.DB, cfg config.DBConfig, opts Options) {
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY.
	if opts.UseSQLite {
		sqlDB.SetMaxOpenConns(1)
		return
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Dialect returns the name of the active GORM dialector.
func (c *Client) Dialect() string {
	return c.conn.Dialector.Name()
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
