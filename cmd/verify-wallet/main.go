package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"ms-verify/internal/config"
	"ms-verify/internal/logger"
	"ms-verify/internal/models"
	"ms-verify/internal/ownership"
	"ms-verify/internal/verify"
	"os"

	"github.com/joho/godotenv"
)

// run checks one wallet and writes the same JSON body the HTTP endpoint would.
func run(ctx context.Context, svc *verify.Service, wallet string, out io.Writer) error {
	verified, err := svc.Verify(ctx, wallet)
	enc := json.NewEncoder(out)
	if err != nil {
		if encErr := enc.Encode(models.ErrorResponse{Error: verify.PublicMessage(err)}); encErr != nil {
			return encErr
		}
		return err
	}
	return enc.Encode(models.VerifyResponse{Verified: verified})
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.New(os.Stderr)

	wallet := ""
	if len(os.Args) > 1 {
		wallet = os.Args[1]
	}

	ctx := context.Background()
	lookup, err := ownership.New(ctx, cfg, nil)
	if err != nil {
		log.Fatal("CONFIG", fmt.Sprintf("Failed to build ownership lookup: %v", err))
	}

	svc := verify.NewService(lookup, cfg.Chain, log)
	svc.Timeout = cfg.Ownership.Timeout

	if err := run(ctx, svc, wallet, os.Stdout); err != nil {
		os.Exit(1)
	}
}
