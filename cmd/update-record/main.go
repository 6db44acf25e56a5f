package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/phambaophuc/face-detection/internal/config"
	"github.com/phambaophuc/face-detection/internal/functions"
	"github.com/phambaophuc/face-detection/internal/logging"
	"github.com/phambaophuc/face-detection/internal/services/records"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// The store is opened once per container and reused across invocations.
	store, err := records.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Records store unavailable", zap.Error(err))
	}

	updater := functions.NewRecordUpdater(store, records.MutationFromConfig(cfg.Records), logger)
	lambda.Start(updater.Handle)
}
