package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mewert/greenbar/cmd/greenbar/internal/bootstrap"
	"github.com/mewert/greenbar/internal/site"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runServe(os.Args[1:]); err != nil {
		log.Fatalf("greenbar serve: %v", err)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("greenbar-serve", flag.ExitOnError)
	configPath := fs.String("config", "site.yaml", "Path to the site configuration file")
	addr := fs.String("addr", "", "Override the preview listen address")
	drafts := fs.Bool("drafts", true, "Include draft posts in the preview")
	rebuild := fs.Bool("rebuild", true, "Rebuild when content or theme files change")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: *configPath,
		Addr:       *addr,
		Drafts:     drafts,
		Rebuild:    rebuild,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Build once up front so the first request has something to serve.
	if _, err := module.Module.Site().Build(ctx, site.BuildOptions{}); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	server, err := module.Module.Preview()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "serving %s on http://%s\n", module.Config.Generator.OutputDir, module.Config.Preview.Addr)
	return server.Start(ctx)
}
