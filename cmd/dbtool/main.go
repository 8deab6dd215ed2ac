// Command dbtool creates the fleet database when it is missing and migrates
// its schema.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"fleet/cmd"
	"fleet/internal/adapters/out/postgres"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/lib/pq"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// duplicateDatabase is the SQLSTATE of CREATE DATABASE for an existing name.
const duplicateDatabase = "42P04"

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file loaded: %v", err)
	}

	config, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	created, err := createDatabase(config)
	if err != nil {
		log.Fatalf("Error creating database: %v", err)
	}
	if created {
		log.Infof("Created database %s", config.DBName)
	}

	gormDB, err := gorm.Open(gormpostgres.Open(config.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	log.Infof("Database %s is up to date", config.DBName)
}

// createDatabase connects to the maintenance database and creates the
// configured one. It reports false when the database already exists.
func createDatabase(config cmd.Config) (bool, error) {
	db, err := sql.Open("postgres", config.DSNFor("postgres"))
	if err != nil {
		return false, err
	}
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(config.DBName)))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == duplicateDatabase {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
