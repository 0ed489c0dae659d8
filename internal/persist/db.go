package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/fragd/server/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// retryDelay is the pause before the first reconnect; it doubles per attempt.
var retryDelay = 500 * time.Millisecond

// DB wraps a pgx connection pool to the Postgres save database.
type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

// NewDB connects and pings the save database. A failed ping is retried
// cfg.ConnectRetries times so the server can boot alongside its database.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	delay := retryDelay
	for attempt := 0; ; attempt++ {
		pool, err := connect(ctx, poolCfg)
		if err == nil {
			log.Info("connected to postgres",
				zap.String("host", poolCfg.ConnConfig.Host),
				zap.String("database", poolCfg.ConnConfig.Database),
				zap.Int32("max_conns", poolCfg.MaxConns),
				zap.Int("attempts", attempt+1))
			return &DB{Pool: pool, log: log}, nil
		}
		if attempt >= cfg.ConnectRetries {
			return nil, err
		}
		log.Warn("postgres not ready, retrying", zap.Duration("in", delay), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to db: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	if poolCfg.MinConns > poolCfg.MaxConns {
		poolCfg.MinConns = poolCfg.MaxConns
	}
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	return poolCfg, nil
}

func connect(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func (db *DB) Close() {
	db.log.Debug("closing postgres pool")
	db.Pool.Close()
}
