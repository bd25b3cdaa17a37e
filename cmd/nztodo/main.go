// Package main is the entry point for the nztodo CLI and server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nztodo/internal/backend/remote"
	"nztodo/internal/cli"
	"nztodo/internal/commands"
	"nztodo/internal/config"
	"nztodo/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals; serve shuts down gracefully on either
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Client commands talk to the configured server
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return remote.New(cfg)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
