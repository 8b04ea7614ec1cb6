// Copyright (C) 2025 Web8080
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst"
	"github.com/Web8080/AI-Business-Analytics-Chatbot/services/analyst/config"
)

// servePort and serveDebug hold flag values for the serve command.
var (
	servePort  int
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analyst API server",
	Run:   runServeCommand,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug mode")
}

func runServeCommand(_ *cobra.Command, _ []string) {
	if serveDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagation so trace context flows from incoming
	// HTTP headers through all handlers.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	cfg, err := config.LoadEngineConfig()
	if err != nil {
		log.Fatalf("Error: invalid configuration: %v", err)
	}

	engine := analyst.NewEngine(cfg)
	store := analyst.NewSessionStore()
	handlers := analyst.NewHandlers(engine, store)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("analyst"))
	if serveDebug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	analyst.RegisterRoutes(v1, handlers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	printBanner(servePort, cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("Shutting down analyst server")
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", servePort)
	slog.Info("Starting analyst server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func printBanner(port int, cfg *config.EngineConfig) {
	remote := "disabled"
	if cfg.OpenAIAPIKey != "" {
		remote = cfg.OpenAIModel
	}
	local := "disabled"
	if cfg.OllamaBaseURL != "" {
		local = fmt.Sprintf("%s (%s)", cfg.OllamaModel, cfg.OllamaBaseURL)
	}

	fmt.Printf(`
=========================================
  Analyst API Server
=========================================
  Port:         %d
  Remote model: %s
  Local model:  %s

  Health:   GET  /v1/analyst/health
  Sessions: POST /v1/analyst/sessions
  Ask:      POST /v1/analyst/sessions/:id/ask
  Metrics:  GET  /metrics
=========================================

`, port, remote, local)
}
