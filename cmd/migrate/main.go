package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/jltdev15/crime-analytics/internal/config"
	"github.com/jltdev15/crime-analytics/internal/database/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close connection: %v", err)
		}
	}()

	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database: ", err)
	}

	sqlBytes, err := migrations.Files.ReadFile("schema.sql")
	if err != nil {
		log.Fatal("failed to read embedded schema: ", err)
	}

	fmt.Println("Applying schema...")
	if _, err := db.Exec(string(sqlBytes)); err != nil {
		log.Fatal("migration failed: ", err)
	}

	rows, err := db.Query(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('crimes', 'barangays', 'predictions', 'recommendations', 'import_history')
		ORDER BY table_name
	`)
	if err != nil {
		log.Fatal("failed to verify tables: ", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	fmt.Println("Tables present:")
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			log.Printf("failed to scan table name: %v", err)
			continue
		}
		fmt.Printf("  %s\n", table)
	}
	if err := rows.Err(); err != nil {
		log.Fatal("failed to iterate tables: ", err)
	}

	fmt.Println("Migration complete.")
}
