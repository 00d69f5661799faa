package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	scorebookcmd "github.com/fieldside/scorebook/internal/cmd/scorebook"
)

func main() {
	cfg, err := scorebookcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SCOREBOOK] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scorebookcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("scorebook: %v", err)
	}
}
