package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/EmpoweredVote/civicsearch/internal/config"
	"github.com/EmpoweredVote/civicsearch/internal/db"
	"github.com/EmpoweredVote/civicsearch/internal/districts"
	"github.com/EmpoweredVote/civicsearch/internal/metrics"
	"github.com/EmpoweredVote/civicsearch/internal/middleware"
	"github.com/EmpoweredVote/civicsearch/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Persistence is optional; without it ?save=true is refused.
	var gdb *gorm.DB
	if cfg.DatabaseURL != "" {
		db.Connect(cfg.DatabaseURL)
		if err := store.Init(db.DB); err != nil {
			log.Fatalf("Failed to prepare schema: %v", err)
		}
		gdb = db.DB
	}

	svc, err := districts.Init(cfg, gdb)
	if err != nil {
		log.Fatalf("Failed to load datasets: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)
	r.Handle("/metrics", metrics.Handler())

	limit := middleware.RateLimit(cfg.RateLimit)
	r.Mount("/districts", limit(svc.SetupRoutes(cfg.AdminTokenHash)))

	log.Printf("Server listening on port :%s...", cfg.Port)

	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
