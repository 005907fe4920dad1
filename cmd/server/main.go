package main

import (
	"context"
	"log"

	"github.com/basekit-io/basekit/internal/server"
	"github.com/basekit-io/basekit/internal/server/config"
)

// Populated at build time via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "N/A"
	commit  = "N/A"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := server.NewApp(cfg, version, commit)

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server stopped: %v", err)
	}

}
