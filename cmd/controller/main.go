package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aang-iot/aircontrol/internal/actuator"
	"github.com/aang-iot/aircontrol/internal/advisory"
	"github.com/aang-iot/aircontrol/internal/client"
	"github.com/aang-iot/aircontrol/internal/config"
	"github.com/aang-iot/aircontrol/internal/fuzzy"
	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/aang-iot/aircontrol/internal/sensor"
)

const version = "v0.3.0"

// uploadBatchSize bounds how many buffered evaluations go out per flush
const uploadBatchSize = 50

func main() {
	configPath := flag.String("config", "configs/controller.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", version).
		Str("controller_id", cfg.Controller.ID).
		Str("source", cfg.Sensor.Source).
		Msg("Starting air controller")

	// A broken rule base or membership table must never run
	controller, err := fuzzy.New(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Fuzzy controller validation failed")
	}

	source, err := newSource(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open sensor source")
	}

	info := models.NewControllerInfo(cfg.Controller.ID, cfg.Controller.Location, cfg.Sensor.Source, version)
	reader := sensor.NewReader(source, info, cfg.Sensor.ReadInterval, logger)
	defer reader.Close()

	gate := actuator.NewGate(actuator.NewLogDriver(logger), logger)
	buffer := client.NewEvaluationBuffer(cfg.Buffer.Size, cfg.Buffer.DropOldest)

	conn := client.NewConnection(client.ConnectionConfig{
		URL:                  cfg.Server.URL,
		AuthToken:            cfg.Server.AuthToken,
		ReconnectInterval:    cfg.Server.ReconnectInterval,
		MaxReconnectInterval: cfg.Server.MaxReconnectInterval,
		PingInterval:         cfg.Server.PingInterval,
		PongTimeout:          cfg.Server.PongTimeout,
	}, info, logger)
	conn.SetBufferSizeFunc(buffer.Size)
	defer conn.Close()

	var advisor *advisory.Client
	if cfg.Advisory.Enabled {
		advisor = advisory.NewClient(cfg.Advisory.URL, cfg.Advisory.Timeout, logger)
		logger.Info().Str("url", cfg.Advisory.URL).Msg("Advisory classifier enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := conn.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("Connection manager stopped")
		}
	}()

	go func() {
		if err := reader.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("Sensor reader stopped")
		}
	}()

	go uploadLoop(ctx, conn, buffer, logger)

	logger.Info().Dur("interval", cfg.Sensor.ReadInterval).Msg("Control loop running")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Shutting down controller")
			return

		case reading := <-reader.Readings():
			decision := controller.Evaluate(reading)

			if _, err := gate.Apply(&decision); err != nil {
				logger.Error().Err(err).Msg("Actuation failed")
			}

			eval := models.NewEvaluation(reading, decision)
			if !buffer.Push(eval) {
				logger.Warn().Msg("Evaluation buffer full, dropped newest")
			}

			if advisor != nil {
				go logAdvisory(ctx, advisor, reading, logger)
			}
		}
	}
}

// newLogger builds the process logger from config
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.With().Timestamp().Logger().Level(level)
}

// newSource opens the configured measurement backend
func newSource(cfg *config.Config, logger zerolog.Logger) (sensor.Source, error) {
	switch cfg.Sensor.Source {
	case "dht11":
		air := sensor.StaticAir{
			Particulate: cfg.Sensor.StaticParticulate,
			Gas:         cfg.Sensor.StaticGas,
		}
		return sensor.NewDHTSource(cfg.Sensor.GPIOPin, air)
	default:
		logger.Info().Msg("Using simulated sensor source")
		return sensor.NewSimSource(), nil
	}
}

// uploadLoop periodically drains the buffer to the collector server
func uploadLoop(ctx context.Context, conn *client.Connection, buffer *client.EvaluationBuffer, logger zerolog.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !conn.IsConnected() || buffer.IsEmpty() {
				continue
			}
			batch := buffer.PopBatch(uploadBatchSize)
			if err := conn.SendBatch(batch); err != nil {
				logger.Warn().Err(err).Int("count", len(batch)).Msg("Upload failed, requeueing batch")
				for _, eval := range batch {
					buffer.Push(eval)
				}
			}
		}
	}
}

// logAdvisory fetches and logs the external classifier's verdict. It is
// informational only and never influences the control decision.
func logAdvisory(ctx context.Context, advisor *advisory.Client, reading *models.Reading, logger zerolog.Logger) {
	prediction, err := advisor.Predict(ctx, reading)
	if err != nil {
		logger.Debug().Err(err).Msg("Advisory prediction unavailable")
		return
	}
	logger.Info().
		Str("label", prediction.Label).
		Float64("confidence", prediction.Confidence).
		Msg("Advisory assessment")
}
