package db

import (
	"database/sql"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dealroom/internal/config"
)

type DB struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

func Open(cfg config.DBConfig) (*DB, error) {
	gcfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN), gcfg)
	if err != nil {
		return nil, err
	}

	sqldb, err := gdb.DB()
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	return &DB{Gorm: gdb, SQL: sqldb}, nil
}

// Connect opens the store with a bounded retry loop. Classroom machines
// often race the database container at startup, so connection errors are
// retried with a fixed backoff before becoming fatal.
func Connect(cfg config.DBConfig, log *zap.Logger) (*DB, error) {
	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := Open(cfg)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if log != nil {
			log.Warn("db connect failed",
				zap.Int("attempt", i),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
		}
		if i < attempts {
			time.Sleep(cfg.ConnectBackoff)
		}
	}
	return nil, lastErr
}

func Close(db *DB) error {
	if db == nil || db.SQL == nil {
		return nil
	}
	return db.SQL.Close()
}

func Ping(db *DB) error {
	if db == nil || db.SQL == nil {
		return nil
	}
	return db.SQL.Ping()
}

func NowUTC() time.Time {
	return time.Now().UTC()
}
