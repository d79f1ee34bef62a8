package main

import (
	"context"
	"log"
	"time"

	"qa-paper-be/internal/bootstrap"
	"qa-paper-be/internal/config"
	"qa-paper-be/internal/server"
	"qa-paper-be/internal/tracer"
	"qa-paper-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional: without it the knowledge base is off)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		log.Println("DB_CONNECTION_STRING not set, running without knowledge base")
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	// The job bus is in-process, so the consumer runs next to the HTTP server.
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// Artifact retention sweep, once a day.
	go func() {
		for {
			removed, err := container.ArtifactStore.CleanupExpired(cfg.Artifact.RetentionDays)
			if err != nil {
				log.Printf("Background Artifact Sweep Error: %v", err)
			} else if removed > 0 {
				log.Printf("Background: removed %d expired artifacts", removed)
			}
			time.Sleep(24 * time.Hour)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
