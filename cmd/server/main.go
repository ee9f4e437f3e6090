package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/RedSkyFlow/Goose/internal/config"
	"github.com/RedSkyFlow/Goose/internal/db"
	"github.com/RedSkyFlow/Goose/internal/payment"
	"github.com/RedSkyFlow/Goose/internal/server"
	"github.com/RedSkyFlow/Goose/internal/services"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	dbConn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	if *migrateOnlyFlag {
		log.Println("migrations completed; exiting as requested")
		return
	}
	log.Printf("Starting server env=%s port=%s", cfg.Env, cfg.Port)

	handler := server.New(dbConn, server.Options{
		Gateway:     payment.StubGateway{},
		ProposalTTL: cfg.ProposalTTL,
	})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	// Background expiry sweeper: SENT/VIEWED proposals past their deadline
	// become EXPIRED without waiting for a request to observe them.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		proposalSvc := services.NewProposalService(dbConn, payment.StubGateway{}, nil, cfg.ProposalTTL)
		ticker := time.NewTicker(cfg.ExpireSweep)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case now := <-ticker.C:
				n, err := proposalSvc.ExpireStale(now.UTC())
				if err != nil {
					log.Printf("expire sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("expired %d stale proposals", n)
				}
			}
		}
	}()

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
