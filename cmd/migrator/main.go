package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/linemk/storefront/internal/config"
	"github.com/pkg/errors"
)

const migrationTableName = "migrations"

// buildMigrateDSN собирает строку подключения (DSN) для мигратора
func buildMigrateDSN(dbCfg config.DatabaseConfig, migrationTable string) string {
	return buildQueryDSN(dbCfg) + "&x-migrations-table=" + migrationTable
}

// buildQueryDSN собирает DSN для обычных SQL запросов
func buildQueryDSN(dbCfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		dbCfg.User, dbCfg.Password, dbCfg.Host, dbCfg.Port, dbCfg.Name,
	)
}

func main() {
	var (
		migrationsPathFlag string
		down               bool
	)
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")
	flag.BoolVar(&down, "down", false, "roll back all migrations")

	// config.MustLoad сам вызывает flag.Parse
	cfg := config.MustLoad()

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	if err := run(cfg.Database, migrationsPath, down); err != nil {
		log.Fatal(err)
	}

	if err := printTables(cfg.Database); err != nil {
		log.Fatal(err)
	}
}

func run(dbCfg config.DatabaseConfig, migrationsPath string, down bool) error {
	m, err := migrate.New("file://"+migrationsPath, buildMigrateDSN(dbCfg, migrationTableName))
	if err != nil {
		return errors.Wrap(err, "failed to create migrate instance")
	}
	defer m.Close()

	apply, name := m.Up, "up"
	if down {
		apply, name = m.Down, "down"
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("No migrations to apply")
			return nil
		}
		return errors.Wrapf(err, "migration %s failed", name)
	}
	log.Printf("Migrations applied successfully (%s)", name)
	return nil
}

func printTables(dbCfg config.DatabaseConfig) error {
	db, err := sql.Open("postgres", buildQueryDSN(dbCfg))
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`)
	if err != nil {
		return errors.Wrap(err, "failed to query tables")
	}
	defer rows.Close()

	fmt.Println("Current tables in the database:")
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return errors.Wrap(err, "failed to scan row")
		}
		fmt.Println(" -", tableName)
	}
	return errors.Wrap(rows.Err(), "error reading rows")
}
