package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/basekit-io/basekit/internal/client/cli"
)

// Populated at build time via -ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=$(git rev-parse --short HEAD)"
var (
	version = "N/A"
	commit  = "N/A"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig
		cancel()
	}()

	if err := cli.Execute(ctx, version, commit); err != nil {
		os.Exit(1)
	}
}
