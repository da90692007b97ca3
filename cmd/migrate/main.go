package main

import (
	"flag"
	"log"

	"quadtree-index/config"
	"quadtree-index/migration"
)

func main() {
	source := flag.String("source", migration.DefaultSource, "migration source URL")
	flag.Parse()

	config.InitConfig()

	if err := migration.RunMigrations(config.Cfg.DB.DSN(), *source); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
}
