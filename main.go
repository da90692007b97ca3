package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"

	"quadtree-index/api"
	"quadtree-index/cache"
	"quadtree-index/config"
	"quadtree-index/database"
	"quadtree-index/geoindex"
)

func main() {
	// Initialize configuration
	config.InitConfig()
	cfg := config.Cfg

	// Initialize database
	if err := database.InitDB(cfg.DB); err != nil {
		log.Fatal(err)
	}
	defer database.DB.Close()

	// Initialize Redis
	if err := cache.InitializeRedis(cfg.Redis); err != nil {
		log.Fatal(err)
	}
	defer cache.Rdb.Close()

	h := &api.Handler{
		Store:    database.NewStore(database.DB),
		Cache:    cache.NewPointSetCache(cache.Rdb, cfg.Redis.TTL),
		Registry: geoindex.NewRegistry(geoindex.Options{GeohashPrecision: cfg.Index.GeohashPrecision}),
		Index:    cfg.Index,
	}

	// Register routes
	router := api.RegisterRoutes(h)

	// Start the server
	log.Printf("Server started on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handlers.LoggingHandler(os.Stdout, router)))
}
