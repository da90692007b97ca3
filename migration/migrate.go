package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const DefaultSource = "file://database/migrations"

// WaitForDB retries connecting until Postgres answers or attempts run out.
func WaitForDB(dsn string, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		var db *sql.DB
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			db.Close()
			if err == nil {
				log.Println("Connected to the database successfully.")
				return nil
			}
		}
		log.Printf("Waiting for the database to be ready... (attempt %d)", i+1)
		time.Sleep(delay)
	}
	return fmt.Errorf("could not connect to the database: %w", err)
}

// RunMigrations applies every pending up migration from source.
func RunMigrations(dsn, source string) error {
	if err := WaitForDB(dsn, 10, 3*time.Second); err != nil {
		return err
	}

	m, err := migrate.New(source, dsn)
	if err != nil {
		return fmt.Errorf("could not start migrations: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations applied successfully!")
	return nil
}
