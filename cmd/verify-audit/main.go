package main

import (
	"context"
	"fmt"
	"ms-verify/internal/config"
	"ms-verify/internal/kafka"
	"ms-verify/internal/logger"
	"ms-verify/internal/models"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

// verify-audit tails the verification topic and logs each check.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(os.Stdout)

	groupID := os.Getenv("KAFKA_GROUP_ID")
	if groupID == "" {
		groupID = "verify-audit"
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.Verifications, groupID, log)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("APP", fmt.Sprintf("Tailing %s on %v as %s", cfg.Kafka.Topics.Verifications, cfg.Kafka.Brokers, groupID))
	err := consumer.Start(ctx, func(e models.VerificationEvent) {
		log.Info("AUDIT", fmt.Sprintf("%s wallet=%s verified=%t chain=%d contests=%v",
			e.CheckedAt.Format("2006-01-02T15:04:05Z"), e.WalletAddress, e.Verified, e.ChainID, e.ContestIDs))
	})
	if err != nil {
		log.Fatal("KAFKA", fmt.Sprintf("Consumer stopped: %v", err))
	}
	log.Info("APP", "✅ Audit consumer shutdown complete")
}
