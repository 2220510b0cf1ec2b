package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"terrainkit/internal/config"
	"terrainkit/internal/pipeline"
	"terrainkit/internal/server"
)

func main() {
	var (
		cfgPath string
		addr    string
	)
	flag.StringVar(&cfgPath, "config", "", "path to generation config (JSON or YAML)")
	flag.StringVar(&addr, "listen", "127.0.0.1:8080", "HTTP listen address")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := pipeline.NewLogger(os.Stderr)
	res, err := pipeline.Run(cfg, logger)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.New(res, addr, logger).Run(ctx); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			return
		}

		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
