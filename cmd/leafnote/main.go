// Package main provides the entry point for the LeafNote server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/NiGhtKinG17/LeafNote/internal/di"
	"github.com/NiGhtKinG17/LeafNote/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		_ = injector.Shutdown()
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container shuts handles down in reverse dependency order:
	// HTTP server, cleanup job, services, search index, store.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Goodbye")
}
