package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	categorydomain "github.com/smallbiznis/rentbook/internal/category/domain"
	expensedomain "github.com/smallbiznis/rentbook/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/rentbook/internal/invoice/domain"
	leasedomain "github.com/smallbiznis/rentbook/internal/lease/domain"
	meterdomain "github.com/smallbiznis/rentbook/internal/meter/domain"
	propertydomain "github.com/smallbiznis/rentbook/internal/property/domain"
	"github.com/smallbiznis/rentbook/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every persisted type, in dependency order.
func Models() []any {
	return []any{
		&propertydomain.Building{},
		&propertydomain.Room{},
		&leasedomain.Contract{},
		&leasedomain.Tenant{},
		&meterdomain.MeterReading{},
		&invoicedomain.Invoice{},
		&categorydomain.ExpenseCategory{},
		&expensedomain.OpexLog{},
		&expensedomain.SetupCost{},
		&expensedomain.AssetLog{},
	}
}

// Run brings the schema up to date. Postgres is migrated from the embedded
// SQL files; other dialects use gorm AutoMigrate.
func Run(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case db.TypePostgres, "":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	default:
		if err := conn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return seedCategories(conn)
	}
}

func RunMigrations(sqlDB *sql.DB) error {
	if sqlDB == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// seedCategories mirrors 000002_default_categories for AutoMigrate dialects.
func seedCategories(conn *gorm.DB) error {
	now := time.Now().UTC()
	rows := []categorydomain.ExpenseCategory{
		{ID: 1, Type: categorydomain.TypeOpex, Code: "other", Label: "Other", CreatedAt: now, UpdatedAt: now},
		{ID: 2, Type: categorydomain.TypeSetup, Code: "other", Label: "Other", CreatedAt: now, UpdatedAt: now},
		{ID: 3, Type: categorydomain.TypeCapex, Code: "other", Label: "Other", CreatedAt: now, UpdatedAt: now},
	}
	return conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
