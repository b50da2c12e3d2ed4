// Command regcat compiles a CSV register file into a typed catalog and
// prints it, stores it in PostgreSQL, or serves it over HTTP.
//
// Usage:
//
//	regcat [flags] regs-file.csv
//
// Settings come from the environment (and a .env file when present);
// flags override them. Run regcat -h for the flag list.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// Variables already set in the environment win over .env
	envLoaded := godotenv.Load() == nil

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], env{getenv: os.Getenv, dotenv: envLoaded}, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
