// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/gops/agent"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/bus"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/catalog"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/config"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/decode"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/log"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/metrics"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/runtimeenv"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/store"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/worker"
)

func main() {
	var flagGops bool
	var flagEnvFile string
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.StringVar(&flagEnvFile, "env-file", "./.env", "Load environment variables from `file` before reading configuration")
	flag.Parse()

	// See https://github.com/google/gops (Runtime overhead is almost zero)
	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if err := runtimeenv.LoadEnv(flagEnvFile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("parsing %q failed: %s", flagEnvFile, err.Error())
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %s", err.Error())
	}
	log.SetLogLevel(cfg.LogLevel)

	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("failed to load score catalog: %s", err.Error())
	}

	registry := prometheus.NewRegistry()
	workerMetrics := metrics.New(registry)

	httpServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(registry)}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infof("metrics endpoint listening at %s", cfg.MetricsAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server failed: %s", err.Error())
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())

	var workerWG sync.WaitGroup
	for i := 0; i < cfg.NumWorkers; i++ {
		consumer, err := bus.NewConsumer(cfg.Brokers, cfg.InputTopic)
		if err != nil {
			log.Fatalf("worker %d: failed to start consumer: %s", i, err.Error())
		}

		decoder := decode.NewSchemaRegistryDecoder(cfg.SchemaRegistryURLs)
		assessmentStore := store.NewHTTPAssessmentStore(cfg.ScoringAPIURL, cfg.APIKey, cfg.HTTPTimeout())
		handler := worker.NewEventHandler(decoder, cat, assessmentStore)
		loop := worker.NewWorkerLoop(i, consumer, handler, workerMetrics)

		workerWG.Add(1)
		go func(id int) {
			defer workerWG.Done()
			if err := loop.Run(ctx); err != nil {
				log.Fatalf("worker %d: transport failure, restart required: %s", id, err.Error())
			}
		}(i)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-sigs
		runtimeenv.SystemdNotify(false, "shutting down")
		cancel()
		_ = httpServer.Shutdown(context.Background())
	}()

	runtimeenv.SystemdNotify(true, "running")
	workerWG.Wait()
	wg.Wait()
	log.Info("graceful shutdown completed")
}
