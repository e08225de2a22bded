package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salesledger/api/internal/config"
	"github.com/salesledger/api/internal/database"
	"github.com/salesledger/api/internal/router"
	"github.com/salesledger/api/internal/storage"
	"github.com/salesledger/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("Unable to initialize attachment storage: %v", err)
	}
	log.Printf("Attachment storage: %s", cfg.StorageDriver)

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, queries, pool, store, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}

func newStorage(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "s3":
		return storage.NewS3Store(storage.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		})
	case "disk":
		return storage.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
