package database

import (
	"errors"
	"fmt"
	"strings"

	"buffr-host/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnsupportedURL is returned when the DSN scheme has no dialector.
var ErrUnsupportedURL = errors.New("unsupported database url")

// Dialector picks the GORM driver from the DSN scheme.
// Postgres uses PreferSimpleProtocol so pooled connections (PgBouncer,
// Supabase) do not hit 42P05 "prepared statement already exists".
func Dialector(dsn string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil
	case strings.HasPrefix(dsn, "mysql://"):
		return mysql.Open(mysqlDSN(strings.TrimPrefix(dsn, "mysql://"))), nil
	case strings.HasPrefix(dsn, "sqlserver://"):
		return sqlserver.Open(dsn), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return sqlite.Open(dsn), nil
	}
	return nil, ErrUnsupportedURL
}

// mysqlDSN turns user:pass@host:port/db into the go-sql-driver form.
func mysqlDSN(rest string) string {
	if strings.Contains(rest, "@tcp(") {
		return rest
	}
	creds, hostDB, ok := strings.Cut(rest, "@")
	if !ok {
		hostDB, creds = rest, ""
	}
	host, db, _ := strings.Cut(hostDB, "/")
	params := "charset=utf8mb4&parseTime=True&loc=UTC"
	if name, q, found := strings.Cut(db, "?"); found {
		db, params = name, q
	}
	if creds != "" {
		creds += "@"
	}
	return fmt.Sprintf("%stcp(%s)/%s?%s", creds, host, db, params)
}

// Open opens a GORM DB from the DSN and sizes its pool.
func Open(dsn string, maxConns int) (*gorm.DB, error) {
	dialector, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if maxConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(max(1, maxConns/2))
	}
	return db, nil
}

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&domain.Tenant{},
		&domain.User{},
		&domain.Invitation{},
		&domain.Property{},
		&domain.Room{},
		&domain.Booking{},
		&domain.BookingEvent{},
		&domain.Payment{},
		&domain.MenuItem{},
		&domain.Order{},
		&domain.OrderItem{},
	}
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Pinger adapts *gorm.DB for the health check.
type Pinger struct {
	DB *gorm.DB
}

func (p *Pinger) Ping() error {
	if p == nil || p.DB == nil {
		return errors.New("database not configured")
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the pool; nil is a no-op.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
