package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/your-org/photodisplay/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	source := flag.String("source", "migrations", "path to migrations directory")
	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("create database driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", *source),
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatalf("create migrate instance: %v", err)
	}

	if *down {
		if err := m.Down(); err != nil {
			if err == migrate.ErrNoChange {
				log.Println("no migrations to roll back")
				return
			}
			log.Fatalf("run down migrations: %v", err)
		}
		log.Println("down migrations completed")
		return
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Println("no new migrations to apply")
			return
		}
		log.Fatalf("run up migrations: %v", err)
	}
	log.Println("up migrations completed")
}
