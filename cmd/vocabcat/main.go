// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command vocabcat starts the adaptive vocabulary diagnostic engine's HTTP
// API server.
//
// Usage:
//
//	go run ./cmd/vocabcat
//	go run ./cmd/vocabcat -port 9090
//	go run ./cmd/vocabcat -data-dir /var/lib/vocabcat -corpus-size 5000
//
// Example requests:
//
//	curl http://localhost:8080/v1/health
//	curl -X POST http://localhost:8080/v1/test/start \
//	  -H "Content-Type: application/json" \
//	  -d '{"nickname": "yeji", "grade": "high2"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/config"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/httpapi"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/item"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/metrics"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/persistence"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/service"
	badgerstore "github.com/aleutian-labs/vocabcat/services/vocabcat/storage/badger"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	dataDir := flag.String("data-dir", "", "BadgerDB directory for session/user archival (empty disables persistence)")
	corpusSize := flag.Int("corpus-size", 2000, "Size of the synthetic item bank seeded at startup (spec.md's CSV ingestion is out of scope; see item.SyntheticCorpus)")
	corpusSeed := flag.Int64("corpus-seed", 1, "Deterministic seed for the synthetic item bank")
	configPath := flag.String("config", "", "Path to a YAML config override file (empty uses embedded defaults)")
	flag.Parse()

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := config.Default()
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			slog.Error("failed to read config override", slog.String("path", *configPath), slog.String("error", err.Error()))
			os.Exit(1)
		}
		cfg, err = config.Load(raw)
		if err != nil {
			slog.Error("failed to parse config override", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	bank := item.NewBank(item.SyntheticCorpus(*corpusSize, *corpusSeed), 1)
	metrics.SetBankSize(bank.Size())

	var store persistence.Port
	var db *badgerstore.DB
	if *dataDir != "" {
		bcfg := badgerstore.DefaultConfig()
		bcfg.Path = *dataDir
		var err error
		db, err = badgerstore.OpenDB(bcfg)
		if err != nil {
			slog.Warn("BadgerDB unavailable, running with archival disabled",
				slog.String("path", *dataDir), slog.String("error", err.Error()))
		} else {
			store = persistence.NewBadgerPort(db)
			slog.Info("persistence opened", slog.String("path", *dataDir))
		}
	} else {
		slog.Info("no -data-dir given, running with archival disabled")
	}

	svc := service.New(cfg, bank, store)
	handlers := httpapi.NewHandlers(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("vocabcat"))
	router.Use(httpapi.RequestID())
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	httpapi.RegisterRoutes(v1, handlers)
	httpapi.RegisterMetrics(router)

	sweepInterval := cfg.Session.SweepInterval
	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Minute
	}
	ticker := time.NewTicker(sweepInterval)
	sweepDone := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				svc.SweepExpiredSessions(context.Background())
			case <-sweepDone:
				return
			}
		}
	}()

	printBanner(*port, bank.Size(), store != nil)

	addr := fmt.Sprintf(":%d", *port)
	srv := &http.Server{Addr: addr, Handler: router}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("shutting down vocabcat server")
		ticker.Stop()
		close(sweepDone)

		grace := cfg.Server.ShutdownGracePeriod
		if grace <= 0 {
			grace = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("graceful shutdown failed", slog.String("error", err.Error()))
		}
		if db != nil {
			if err := db.Close(); err != nil {
				slog.Warn("failed to close persistence db", slog.String("error", err.Error()))
			}
		}
	}()

	slog.Info("starting vocabcat server", slog.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func printBanner(port, bankSize int, persisted bool) {
	fmt.Println(`
 __   __              _    ____      _
 \ \ / /__   ___ __ _ | |__| __ )ecat
  \ V / _ \ / __/ _` + "`" + ` | '_ \  _ \ / __|
   | | (_) | (_| (_| | |_) | |_) | (__
   |_|\___/ \___\__,_|_.__/|____/ \___|

 Adaptive Vocabulary Diagnostic Engine`)
	fmt.Printf(" listening on :%d | bank size %d | persistence %v\n\n", port, bankSize, persisted)
	_ = filepath.Separator
}
