// Command migrate applies the GORM schema for the backend database.
package main

import (
	"flag"
	"fmt"
	"log"

	"vesti/internal/config"
	"vesti/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dryRun := flag.Bool("dry-run", false, "Print the managed models without touching the database")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if *dryRun {
		for _, m := range database.PersistentModels() {
			fmt.Printf("%T\n", m)
		}
		return nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	// Connect auto-migrates outside production; production runs explicitly.
	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	log.Println("schema applied")
	return nil
}
