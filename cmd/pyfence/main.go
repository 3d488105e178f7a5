package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pyfence-ai/pyfence/internal/activation"
	"github.com/pyfence-ai/pyfence/internal/auth"
	"github.com/pyfence-ai/pyfence/internal/config"
	"github.com/pyfence-ai/pyfence/internal/detector"
	"github.com/pyfence-ai/pyfence/internal/guard"
	"github.com/pyfence-ai/pyfence/internal/server"
	"github.com/pyfence-ai/pyfence/internal/telemetry"
)

const version = "0.1.0"

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "pyfence.yaml", "Path to pyfence config file")
	flag.Parse()

	// A missing .env is fine; environment variables may come from anywhere.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	ctx := context.Background()
	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  "pyfence",
		Version:  version,
	})
	if err != nil {
		log.Fatalf("telemetry setup failed: %v", err)
	}
	defer tel.Shutdown(ctx)

	g := guard.Load(cfg.Guard)

	var emitter *activation.Emitter
	if cfg.Activation.Enabled {
		sinks, err := buildSinks(cfg.Activation)
		if err != nil {
			log.Fatalf("activation setup failed: %v", err)
		}
		emitter = activation.NewEmitter(activation.EmitterConfig{
			QueueSize: cfg.Activation.QueueSize,
			Workers:   cfg.Activation.Workers,
		}, sinks)
		defer emitter.Close(ctx)
	}

	det, err := detector.New(cfg.Detector,
		detector.WithGuard(g),
		detector.WithTelemetry(tel),
		detector.WithVerbose(cfg.Logging.Verbose),
	)
	if err != nil {
		log.Fatalf("detector setup failed: %v", err)
	}

	authz, err := auth.New(cfg.Auth)
	if err != nil {
		log.Fatalf("auth setup failed: %v", err)
	}

	srv := server.New(cfg, authz, det, g, emitter)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
	}
}

func buildSinks(cfg config.ActivationConfig) ([]activation.Sink, error) {
	var sinks []activation.Sink
	if cfg.File != "" {
		fs, err := activation.NewFileSink(cfg.File)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fs)
	}
	if cfg.WebhookURL != "" {
		ws, err := activation.NewWebhookSink(cfg.WebhookURL, cfg.WebhookHeaders, time.Duration(cfg.WebhookTimeout)*time.Second)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, ws)
	}
	return sinks, nil
}
