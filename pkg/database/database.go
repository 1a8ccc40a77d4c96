package database

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/sims-core/pkg/config"
)

// Registry owns the process-wide connection pool. It is created once at
// startup and passed explicitly to every component that issues statements.
type Registry struct {
	db     *sqlx.DB
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// Open connects to the configured store and verifies it with a ping.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	configurePool(db, cfg)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	logger.Sugar().Infow("database connected", "driver", driver, "max_open_conns", db.Stats().MaxOpenConnections)
	return &Registry{db: db, logger: logger}, nil
}

// NewRegistry wraps an already opened handle. Used by tests.
func NewRegistry(db *sqlx.DB, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{db: db, logger: logger}
}

// DB returns the live handle.
func (r *Registry) DB() *sqlx.DB {
	return r.db
}

// Close releases the pool. Safe to call more than once.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.logger.Sugar().Infow("database closed")
	return r.db.Close()
}

// DSN translates config into a driver name and connection string.
func DSN(cfg config.DatabaseConfig) (string, string, error) {
	switch cfg.Driver {
	case config.DriverPostgres, config.DriverPgx:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			quoteValue(cfg.Host),
			cfg.Port,
			quoteValue(cfg.User),
			quoteValue(cfg.Password),
			quoteValue(cfg.Name),
			quoteValue(cfg.SSLMode),
		)
		return cfg.Driver, dsn, nil
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		if cfg.ConnectTimeout > 0 {
			mc.Timeout = cfg.ConnectTimeout
		}
		return config.DriverMySQL, mc.FormatDSN(), nil
	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = ":memory:"
		}
		return config.DriverSQLite, path + "?_pragma=foreign_keys(1)", nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// quoteValue renders v as a single-quoted keyword/value DSN literal.
func quoteValue(v string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

// configurePool sizes the pool for concurrent statement execution. SQLite
// gets a single connection so every statement is serialized.
func configurePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	if db.DriverName() == config.DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)
}
