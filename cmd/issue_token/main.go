package main

import (
	"flag"
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/service"
)

// issue_token prints a bearer token for the write routes when AUTH_ENABLED
// is set. The secret comes from JWT_SECRET.
func main() {
	owner := flag.String("owner", "", "owner recorded in the token subject")
	flag.Parse()

	if *owner == "" {
		logger.Fatal("-owner is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	tokens, err := service.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatal("init tokens", "error", err)
	}

	token, err := tokens.Generate(*owner)
	if err != nil {
		logger.Fatal("generate token", "error", err)
	}

	// verify before printing
	if got, err := tokens.Parse(token); err != nil || got != *owner {
		logger.Fatal("token did not verify", "error", err)
	}
	fmt.Println(token)
}
