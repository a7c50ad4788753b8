package database

import (
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jltdev15/crime-analytics/internal/config"
)

// Connect opens the postgres connection, retrying with exponential
// backoff so the server survives the database coming up after it.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB

	operation := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		if err != nil {
			log.Printf("database not ready, retrying: %v", err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return db, nil
}
